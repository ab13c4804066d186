package controller

import (
	"fmt"
	"mentora_backend/internal/service"
	"mentora_backend/internal/util"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserController 处理用户资料与统计相关的HTTP请求
type UserController struct {
	AuthService    *service.AuthService
	UserService    *service.UserService
	StorageService *service.StorageService
}

func NewUserController(authService *service.AuthService, userService *service.UserService, storageService *service.StorageService) *UserController {
	return &UserController{
		AuthService:    authService,
		UserService:    userService,
		StorageService: storageService,
	}
}

// Me godoc
// @Summary 获取当前用户信息
// @Description 获取当前已认证用户的资料与统计
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/auth/me [get]
func (c *UserController) Me(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, user)
}

// Stats godoc
// @Summary 获取用户统计
// @Description 首页统计：连续天数、总经验、已报名课程数、总学时
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.UserStatsView} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/user/stats [get]
func (c *UserController) Stats(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.UserService.Stats(user)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

// DailyProgress godoc
// @Summary 获取今日进度
// @Description 今日完成任务数、经验与目标完成百分比；无记录时返回全零
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.DailyProgressView} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/user/daily-progress [get]
func (c *UserController) DailyProgress(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.UserService.DailyProgress(user.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// UpdateProfile godoc
// @Summary 更新用户资料
// @Description 部分更新展示名与头像图标，两者都缺省时返回400
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ProfileUpdate true "资料更新"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "没有可更新的字段"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/user/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ProfileUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if req.DisplayName == nil && req.AvatarIcon == nil {
		util.BadRequest(ctx, "No update data provided")
		return
	}

	if err := c.UserService.UpdateProfile(user.ID, req); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Profile updated successfully"})
}

// UploadAvatar godoc
// @Summary 上传头像图片
// @Description 上传头像图片文件，返回可访问的URL
// @Tags 用户
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "头像图片"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "文件缺失或类型不允许"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/user/avatar/upload [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "No file provided")
		return
	}

	if !service.IsAllowedImage(fileHeader.Filename) {
		util.BadRequest(ctx, "File type not allowed")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("avatars/%d/%s%s", user.ID, uuid.New().String(), filepath.Ext(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")

	url, err := c.StorageService.Provider.Upload(ctx.Request.Context(), filename, file, fileHeader.Size, contentType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if err := c.UserService.UpdateAvatarURL(user.ID, url); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"avatar_url": url})
}
