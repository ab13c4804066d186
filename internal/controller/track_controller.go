package controller

import (
	"errors"
	"mentora_backend/internal/service"
	"mentora_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// TrackController 处理轨道报名、进度与任务完成相关的HTTP请求
type TrackController struct {
	AuthService       *service.AuthService
	ProgressService   *service.ProgressService
	CompletionService *service.CompletionService
}

func NewTrackController(
	authService *service.AuthService,
	progressService *service.ProgressService,
	completionService *service.CompletionService,
) *TrackController {
	return &TrackController{
		AuthService:       authService,
		ProgressService:   progressService,
		CompletionService: completionService,
	}
}

// GetEnrolled godoc
// @Summary 获取已报名的轨道
// @Description 返回当前用户所有已报名的轨道进度，历史零百分比记录会被修复
// @Tags 轨道
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.TrackProgress} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/tracks/enrolled [get]
func (c *TrackController) GetEnrolled(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	records, err := c.ProgressService.ListEnrolled(user.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, records)
}

// GetProgress godoc
// @Summary 获取单个轨道进度
// @Description 未报名时返回零值进度视图而不是404
// @Tags 轨道
// @Produce  json
// @Security ApiKeyAuth
// @Param   slug path string true "轨道标识"
// @Success 200 {object} util.Response{data=model.TrackProgress} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/tracks/{slug}/progress [get]
func (c *TrackController) GetProgress(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.ProgressService.GetProgress(user.ID, ctx.Param("slug"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// EnrollRequest 报名请求
// swagger:model EnrollRequest
type EnrollRequest struct {
	TrackName   string                 `json:"track_name"`
	Preferences map[string]interface{} `json:"preferences"`
}

// Enroll godoc
// @Summary 报名轨道
// @Description 幂等报名：重复报名时仅更新偏好并返回已有记录
// @Tags 轨道
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   slug path string true "轨道标识"
// @Param   body body EnrollRequest true "报名信息"
// @Success 200 {object} util.Response{data=model.TrackProgress} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/tracks/{slug}/enroll [post]
func (c *TrackController) Enroll(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	progress, err := c.ProgressService.Enroll(user.ID, ctx.Param("slug"), req.TrackName, req.Preferences)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// UpdateProgress godoc
// @Summary 更新轨道进度
// @Description 部分更新进度字段，未报名返回404
// @Tags 轨道
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   slug path string true "轨道标识"
// @Param   body body service.ProgressUpdate true "进度更新"
// @Success 200 {object} util.Response "成功"
// @Failure 401 {object} util.Response "未授权"
// @Failure 404 {object} util.Response "进度记录不存在"
// @Router /api/tracks/{slug}/progress [put]
func (c *TrackController) UpdateProgress(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ProgressUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ProgressService.UpdateProgress(user.ID, ctx.Param("slug"), req); err != nil {
		if errors.Is(err, util.ErrProgressNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"message": "Progress updated successfully"})
}

// GetCompletedTasks godoc
// @Summary 获取已完成任务
// @Description 按完成时间升序返回某轨道的全部完成记录
// @Tags 轨道
// @Produce  json
// @Security ApiKeyAuth
// @Param   slug path string true "轨道标识"
// @Success 200 {object} util.Response{data=[]model.TaskCompletion} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/tracks/{slug}/tasks/completed [get]
func (c *TrackController) GetCompletedTasks(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	completions, err := c.CompletionService.ListCompletions(user.ID, ctx.Param("slug"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, completions)
}

// CompleteTaskRequest 任务完成请求。xp_earned 缺省为10，time_spent_minutes 缺省为0。
// swagger:model CompleteTaskRequest
type CompleteTaskRequest struct {
	TrackSlug        string `json:"track_slug" binding:"required"`
	LessonIndex      int    `json:"lesson_index"`
	TaskIndex        int    `json:"task_index"`
	Prompt           string `json:"prompt"`
	UserOutput       string `json:"user_output"`
	AIEvaluation     string `json:"ai_evaluation"`
	Score            int    `json:"score"`
	XPEarned         *int   `json:"xp_earned"`
	TimeSpentMinutes int    `json:"time_spent_minutes"`
	FeedbackSummary  string `json:"feedback_summary"`
}

// CompleteTask godoc
// @Summary 标记任务完成
// @Description 追加完成记录并在同一事务内更新用户统计、轨道进度与当日活动
// @Tags 轨道
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   task_id path string true "任务ID"
// @Param   body body CompleteTaskRequest true "完成信息"
// @Success 200 {object} util.Response{data=model.TaskCompletion} "成功"
// @Failure 400 {object} util.Response "任务已完成或参数错误"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/tracks/tasks/{task_id}/complete [post]
func (c *TrackController) CompleteTask(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CompleteTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	xpEarned := util.DefaultTaskXP
	if req.XPEarned != nil {
		xpEarned = *req.XPEarned
	}

	completion, err := c.CompletionService.CompleteTask(user.ID, ctx.Param("task_id"), service.CompletionInput{
		TrackSlug:        req.TrackSlug,
		LessonIndex:      req.LessonIndex,
		TaskIndex:        req.TaskIndex,
		Prompt:           req.Prompt,
		UserOutput:       req.UserOutput,
		AIEvaluation:     req.AIEvaluation,
		Score:            req.Score,
		XPEarned:         xpEarned,
		TimeSpentMinutes: req.TimeSpentMinutes,
		FeedbackSummary:  req.FeedbackSummary,
	})
	if err != nil {
		if errors.Is(err, util.ErrTaskCompleted) {
			util.BadRequest(ctx, "Task already completed")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, completion)
}
