package controller

import (
	"tutorhub_backend/internal/service"
	"tutorhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// PublicAssignmentController serves the share link. No login is required; a
// bearer token, when present, is used to link the taker to a roster student.
type PublicAssignmentController struct {
	Attempts    *service.AttemptService
	Submissions *service.SubmissionService
}

func NewPublicAssignmentController(attempts *service.AttemptService, submissions *service.SubmissionService) *PublicAssignmentController {
	return &PublicAssignmentController{
		Attempts:    attempts,
		Submissions: submissions,
	}
}

// GetAssignment godoc
// @Summary 通过分享链接获取作业
// @Description 返回作业信息与题目（不含答案）。不可作答时返回 not_found / inactive / expired
// @Tags 公开作业
// @Produce json
// @Param token path string true "公开令牌"
// @Success 200 {object} util.Response{data=service.PublicAssignment} "成功"
// @Failure 403 {object} util.Response{data=service.PublicView} "作业已停用"
// @Failure 404 {object} util.Response{data=service.PublicView} "作业不存在"
// @Failure 410 {object} util.Response{data=service.PublicView} "已过截止时间"
// @Router /api/public/assignments/{token} [get]
func (c *PublicAssignmentController) GetAssignment(ctx *gin.Context) {
	view, err := c.Attempts.View(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	if view.State != service.StateEligible {
		kind, status, msg := util.Classify(view.State.Err())
		ctx.JSON(status, util.Response{
			Code:    status,
			Kind:    kind,
			Message: msg,
			Data:    view,
		})
		return
	}

	util.Success(ctx, view.Assignment)
}

// StartAttempt godoc
// @Summary 开始作答
// @Description 记录服务端开始时间；启用快照时冻结当前题目
// @Tags 公开作业
// @Produce json
// @Param token path string true "公开令牌"
// @Success 200 {object} util.Response{data=service.AttemptTicket} "成功"
// @Failure 403 {object} util.Response "作业已停用"
// @Failure 404 {object} util.Response "作业不存在"
// @Failure 410 {object} util.Response "已过截止时间"
// @Router /api/public/assignments/{token}/start [post]
func (c *PublicAssignmentController) StartAttempt(ctx *gin.Context) {
	ticket, err := c.Attempts.Start(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, ticket)
}

// Submit godoc
// @Summary 提交作业
// @Description 重新校验可用性、时限与受众后评分并保存一次提交
// @Tags 公开作业
// @Accept json
// @Produce json
// @Param body body service.SubmitReq true "作答内容"
// @Success 200 {object} util.Response{data=service.SubmitResult} "成功"
// @Failure 400 {object} util.Response "参数错误或超时"
// @Failure 403 {object} util.Response "作业已停用或仅限指定学生"
// @Failure 404 {object} util.Response "作业不存在"
// @Failure 410 {object} util.Response "已过截止时间"
// @Failure 500 {object} util.Response "保存失败"
// @Router /api/public/assignments/submit [post]
func (c *PublicAssignmentController) Submit(ctx *gin.Context) {
	var req service.SubmitReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Submissions.Submit(ctx.Request.Context(), req, util.CallerID(ctx))
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, res)
}
