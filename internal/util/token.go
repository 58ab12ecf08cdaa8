package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewPublicToken returns an opaque 64-character token built from two random UUIDs.
func NewPublicToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
