package controller

import (
	"errors"
	"mentora_backend/internal/service"
	"mentora_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// MentorController 处理AI出题与评估相关的HTTP请求
type MentorController struct {
	AuthService   *service.AuthService
	MentorService *service.MentorService
}

func NewMentorController(authService *service.AuthService, mentorService *service.MentorService) *MentorController {
	return &MentorController{
		AuthService:   authService,
		MentorService: mentorService,
	}
}

// GenerateTaskRequest 出题请求
// swagger:model GenerateTaskRequest
type GenerateTaskRequest struct {
	TrackSlug string `json:"track_slug" binding:"required"`
}

// GenerateTask godoc
// @Summary 生成练习任务
// @Description 结合当前课程进度、学习偏好与最近一次评估反馈生成下一道任务
// @Tags 导师
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body GenerateTaskRequest true "出题请求"
// @Success 200 {object} util.Response{data=service.GeneratedTask} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Failure 503 {object} util.Response "生成服务不可用"
// @Router /api/mentor/generate-task [post]
func (c *MentorController) GenerateTask(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req GenerateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	task, err := c.MentorService.GenerateTask(ctx.Request.Context(), user, req.TrackSlug)
	if err != nil {
		if errors.Is(err, util.ErrAIUnavailable) {
			util.ServiceUnavailable(ctx, "Task generation is temporarily unavailable")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, task)
}

// EvaluateRequest 评估请求
// swagger:model EvaluateRequest
type EvaluateRequest struct {
	TrackSlug  string `json:"track_slug" binding:"required"`
	UserPrompt string `json:"user_prompt" binding:"required"`
	UserOutput string `json:"user_output"`
}

// Evaluate godoc
// @Summary 评估练习结果
// @Description 按当前课程对应的评分标准评估用户提交的prompt与输出
// @Tags 导师
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body EvaluateRequest true "评估请求"
// @Success 200 {object} util.Response "成功"
// @Failure 401 {object} util.Response "未授权"
// @Failure 503 {object} util.Response "评估服务不可用"
// @Router /api/mentor/evaluate [post]
func (c *MentorController) Evaluate(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req EvaluateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	evaluation, err := c.MentorService.Evaluate(ctx.Request.Context(), user, req.TrackSlug, req.UserPrompt, req.UserOutput)
	if err != nil {
		if errors.Is(err, util.ErrAIUnavailable) {
			util.ServiceUnavailable(ctx, "Evaluation is temporarily unavailable")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"evaluation": evaluation})
}
