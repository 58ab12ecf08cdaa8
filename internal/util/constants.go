package util

// 导出文件名里的时间戳
const ExportStampFormat = "20060102T150405"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	MimeCSV = "text/csv"
)
