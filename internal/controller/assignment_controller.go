package controller

import (
	"tutorhub_backend/internal/service"
	"tutorhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AssignmentController 老师端作业管理
type AssignmentController struct {
	AssignmentService *service.AssignmentService
	Hub               *service.ResultsHub
}

func NewAssignmentController(assignmentService *service.AssignmentService, hub *service.ResultsHub) *AssignmentController {
	return &AssignmentController{AssignmentService: assignmentService, Hub: hub}
}

// SetActiveRequest toggles the kill switch.
// swagger:model SetActiveRequest
type SetActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// ListAssignments godoc
// @Summary 获取我的作业列表
// @Tags 作业管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]repository.AssignmentListRow} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/teacher/assignments [get]
func (c *AssignmentController) ListAssignments(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	rows, err := c.AssignmentService.List(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// CreateAssignment godoc
// @Summary 创建作业
// @Description 保存作业、题目与接收学生，并生成分享令牌
// @Tags 作业管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AssignmentReq true "作业内容"
// @Success 201 {object} util.Response{data=service.AssignmentDetail} "创建成功"
// @Failure 400 {object} util.Response "参数错误"
// @Failure 500 {object} util.Response "保存失败"
// @Router /api/teacher/assignments [post]
func (c *AssignmentController) CreateAssignment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AssignmentReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	detail, err := c.AssignmentService.Save(ctx.Request.Context(), user.UserID, "", req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Created(ctx, detail)
}

// GetAssignment godoc
// @Summary 获取作业详情
// @Tags 作业管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response{data=service.AssignmentDetail} "成功"
// @Failure 404 {object} util.Response "作业不存在"
// @Router /api/teacher/assignments/{id} [get]
func (c *AssignmentController) GetAssignment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.AssignmentService.Get(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// UpdateAssignment godoc
// @Summary 更新作业
// @Description 整体替换题目与接收学生；分享令牌保持不变
// @Tags 作业管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "作业ID"
// @Param body body service.AssignmentReq true "作业内容"
// @Success 200 {object} util.Response{data=service.AssignmentDetail} "成功"
// @Failure 400 {object} util.Response "参数错误"
// @Failure 404 {object} util.Response "作业不存在"
// @Router /api/teacher/assignments/{id} [put]
func (c *AssignmentController) UpdateAssignment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AssignmentReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	detail, err := c.AssignmentService.Save(ctx.Request.Context(), user.UserID, ctx.Param("id"), req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// DeleteAssignment godoc
// @Summary 删除作业
// @Description 同时删除题目、接收学生与提交记录
// @Tags 作业管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "作业不存在"
// @Router /api/teacher/assignments/{id} [delete]
func (c *AssignmentController) DeleteAssignment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.AssignmentService.Delete(ctx.Request.Context(), user.UserID, ctx.Param("id")); err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SetActive godoc
// @Summary 启用或停用作业
// @Tags 作业管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "作业ID"
// @Param body body SetActiveRequest true "开关"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "作业不存在"
// @Router /api/teacher/assignments/{id}/active [patch]
func (c *AssignmentController) SetActive(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SetActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AssignmentService.SetActive(ctx.Request.Context(), user.UserID, ctx.Param("id"), *req.IsActive); err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"isActive": *req.IsActive})
}

// GetResults godoc
// @Summary 查看作业提交结果
// @Tags 作业管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response{data=service.AssignmentResults} "成功"
// @Failure 404 {object} util.Response "作业不存在"
// @Router /api/teacher/assignments/{id}/results [get]
func (c *AssignmentController) GetResults(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	res, err := c.AssignmentService.Results(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// ExportResults godoc
// @Summary 导出提交结果为CSV
// @Tags 作业管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response{data=map[string]string} "文件地址"
// @Failure 404 {object} util.Response "作业不存在"
// @Router /api/teacher/assignments/{id}/results/export [post]
func (c *AssignmentController) ExportResults(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	url, err := c.AssignmentService.ExportResults(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}

// AutoDraft godoc
// @Summary 根据课程内容生成题目草稿
// @Description 词汇生成连线题，语法例句生成填空题；结果追加到已有题目之后，不会保存
// @Tags 作业管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AutoDraftReq true "已有题目与课程章节"
// @Success 200 {object} util.Response{data=[]service.ExerciseReq} "成功"
// @Failure 400 {object} util.Response "参数错误"
// @Router /api/teacher/assignments/auto-draft [post]
func (c *AssignmentController) AutoDraft(ctx *gin.Context) {
	var req service.AutoDraftReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, gin.H{"exercises": c.AssignmentService.AutoDraft(req)})
}

// LiveResults godoc
// @Summary 实时成绩推送
// @Description 建立 WebSocket 连接，学生每次提交后推送一条 SUBMISSION 消息
// @Tags 作业管理
// @Security BearerAuth
// @Param access_token query string false "JWT Token（浏览器无法设置请求头时使用）"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/teacher/live [get]
func (c *AssignmentController) LiveResults(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	service.ServeFeed(c.Hub, ctx.Writer, ctx.Request, user.UserID)
}
