package controller

import (
	"mentora_backend/internal/service"
	"mentora_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CurriculumController 提供课程大纲的公开只读接口
type CurriculumController struct {
	CurriculumService *service.CurriculumService
}

func NewCurriculumController(curriculumService *service.CurriculumService) *CurriculumController {
	return &CurriculumController{CurriculumService: curriculumService}
}

// GetLessons godoc
// @Summary 获取轨道课程列表
// @Description 返回指定轨道的全部课程，未知轨道回退到默认轨道
// @Tags 课程
// @Produce  json
// @Param   track path string true "轨道标识"
// @Success 200 {object} util.Response{data=[]service.CurriculumLesson} "成功"
// @Router /api/curriculum/lessons/{track} [get]
func (c *CurriculumController) GetLessons(ctx *gin.Context) {
	util.Success(ctx, c.CurriculumService.Lessons(ctx.Param("track")))
}

// GetTasks godoc
// @Summary 获取轨道任务模板
// @Description 返回指定轨道的静态任务模板列表
// @Tags 课程
// @Produce  json
// @Param   track path string true "轨道标识"
// @Success 200 {object} util.Response "成功"
// @Router /api/curriculum/tasks/{track} [get]
func (c *CurriculumController) GetTasks(ctx *gin.Context) {
	util.Success(ctx, c.CurriculumService.Tasks(ctx.Param("track")))
}
