package service

import (
	"encoding/json"
	"mentora_backend/internal/config"
	"mentora_backend/pkg/logger"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// CurriculumLesson 课程目录中的一节课
// swagger:model CurriculumLesson
type CurriculumLesson struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Topics      []string `json:"topics"`
}

type Curriculum struct {
	Track   string                   `json:"track"`
	Lessons []CurriculumLesson       `json:"lessons"`
	Tasks   []map[string]interface{} `json:"tasks"`
}

// CurriculumService 启动时加载各 track 的课程定义文件，之后只读。
// 配置了但文件缺失的 track 记为空课程，不阻塞启动。
type CurriculumService struct {
	curricula    map[string]*Curriculum
	defaultTrack string
}

func NewCurriculumService(cfg config.CurriculumConfig) *CurriculumService {
	s := &CurriculumService{
		curricula: make(map[string]*Curriculum, len(cfg.Tracks)),
	}

	for i, track := range cfg.Tracks {
		if i == 0 {
			s.defaultTrack = track
		}

		path := filepath.Join(cfg.Path, track+".json")
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Log.Warn("curriculum file not found, track will be empty",
				zap.String("track", track), zap.String("path", path))
			s.curricula[track] = &Curriculum{Track: track}
			continue
		}

		var curriculum Curriculum
		if err := json.Unmarshal(data, &curriculum); err != nil {
			logger.Log.Warn("curriculum file is invalid, track will be empty",
				zap.String("track", track), zap.Error(err))
			s.curricula[track] = &Curriculum{Track: track}
			continue
		}

		if curriculum.Track == "" {
			curriculum.Track = track
		}
		s.curricula[track] = &curriculum

		logger.Log.Info("curriculum loaded",
			zap.String("track", track), zap.Int("lessons", len(curriculum.Lessons)))
	}

	return s
}

// Get 返回指定 track 的课程；未知 track 回落到默认 track
func (s *CurriculumService) Get(trackSlug string) *Curriculum {
	if c, ok := s.curricula[trackSlug]; ok {
		return c
	}
	if c, ok := s.curricula[s.defaultTrack]; ok {
		return c
	}
	return &Curriculum{Track: trackSlug}
}

// Known 仅当该 track 被配置并成功加载出课时为 true
func (s *CurriculumService) Known(trackSlug string) bool {
	c, ok := s.curricula[trackSlug]
	return ok && len(c.Lessons) > 0
}

func (s *CurriculumService) Lessons(trackSlug string) []CurriculumLesson {
	c, ok := s.curricula[trackSlug]
	if !ok {
		return []CurriculumLesson{}
	}
	return c.Lessons
}

func (s *CurriculumService) Tasks(trackSlug string) []map[string]interface{} {
	c, ok := s.curricula[trackSlug]
	if !ok || c.Tasks == nil {
		return []map[string]interface{}{}
	}
	return c.Tasks
}

// TotalLessons 返回课时数，0 表示 track 未知或为空
func (s *CurriculumService) TotalLessons(trackSlug string) int {
	c, ok := s.curricula[trackSlug]
	if !ok {
		return 0
	}
	return len(c.Lessons)
}

// Lesson 按索引取课。越界时回落到第一节课，完全没有课时返回 false。
func (s *CurriculumService) Lesson(trackSlug string, lessonIndex int) (CurriculumLesson, bool) {
	c := s.Get(trackSlug)
	if len(c.Lessons) == 0 {
		return CurriculumLesson{}, false
	}
	if lessonIndex < 0 || lessonIndex >= len(c.Lessons) {
		return c.Lessons[0], true
	}
	return c.Lessons[lessonIndex], true
}
