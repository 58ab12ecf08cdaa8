package controller

import (
	"tutorhub_backend/internal/service"
	"tutorhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	StudentService *service.StudentService
}

func NewStudentController(studentService *service.StudentService) *StudentController {
	return &StudentController{StudentService: studentService}
}

// ListStudents godoc
// @Summary 获取我的学生名单
// @Tags 学生管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Student} "成功"
// @Router /api/teacher/students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	list, err := c.StudentService.List(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// CreateStudent godoc
// @Summary 添加学生
// @Tags 学生管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.StudentReq true "学生信息"
// @Success 201 {object} util.Response{data=model.Student} "创建成功"
// @Failure 400 {object} util.Response "参数错误"
// @Router /api/teacher/students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.StudentReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	st, err := c.StudentService.Create(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Created(ctx, st)
}
