package service

import (
	"context"
	"errors"
	"fmt"
	"mentora_backend/internal/model"
	"mentora_backend/internal/repository"
	"mentora_backend/internal/util"
	"mentora_backend/pkg/monitoring"
	"strings"

	"gorm.io/gorm"
)

const (
	basicsCriteria   = "Clarity, Specificity, Role Assignment, Output Format, Conciseness"
	advancedCriteria = "Persona, Context, Clear Task, Examples, Iteration"
)

// MentorService 把课程、进度与历史反馈拼装成提示词，交给外部补全服务
// 生成练习任务或评估学员提交
type MentorService struct {
	AI             *AIService
	Curriculum     *CurriculumService
	ProgressRepo   *repository.TrackProgressRepository
	CompletionRepo *repository.TaskCompletionRepository
}

func NewMentorService(
	ai *AIService,
	curriculum *CurriculumService,
	progressRepo *repository.TrackProgressRepository,
	completionRepo *repository.TaskCompletionRepository,
) *MentorService {
	return &MentorService{
		AI:             ai,
		Curriculum:     curriculum,
		ProgressRepo:   progressRepo,
		CompletionRepo: completionRepo,
	}
}

// GeneratedTask 一次出题的结果
type GeneratedTask struct {
	Task             string `json:"task"`
	LessonIndex      int    `json:"lesson_index"`
	PreviousFeedback string `json:"previous_feedback,omitempty"`
}

// GenerateTask 依据用户当前进度和最近一次反馈摘要生成下一道练习任务
func (s *MentorService) GenerateTask(ctx context.Context, user *model.User, trackSlug string) (*GeneratedTask, error) {
	lessonIndex := 0
	taskNumber := 1
	var preferences map[string]interface{}

	progress, err := s.ProgressRepo.FindByUserAndTrack(user.ID, trackSlug)
	if err == nil {
		lessonIndex = progress.CurrentLessonIndex
		taskNumber = progress.TasksCompleted%util.TasksPerLesson + 1
		if progress.Preferences != nil {
			preferences = map[string]interface{}(progress.Preferences)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	previousFeedback, err := s.CompletionRepo.FindLatestFeedback(user.ID, trackSlug)
	if err != nil {
		return nil, err
	}

	systemPrompt := s.buildTaskPrompt(trackSlug, lessonIndex, taskNumber, previousFeedback, preferences)

	task, err := s.AI.Complete(ctx, systemPrompt, "Generate ONE practical task")
	if err != nil {
		monitoring.GenerationCounter.WithLabelValues("task", "error").Inc()
		return nil, err
	}
	monitoring.GenerationCounter.WithLabelValues("task", "ok").Inc()

	return &GeneratedTask{
		Task:             task,
		LessonIndex:      lessonIndex,
		PreviousFeedback: previousFeedback,
	}, nil
}

// Evaluate 按当前课程选定评分标准，评估一组 prompt/output
func (s *MentorService) Evaluate(ctx context.Context, user *model.User, trackSlug, userPrompt, userOutput string) (string, error) {
	lessonIndex := 0
	progress, err := s.ProgressRepo.FindByUserAndTrack(user.ID, trackSlug)
	if err == nil {
		lessonIndex = progress.CurrentLessonIndex
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	lessonTitle := "General Practice"
	if lesson, ok := s.Curriculum.Lesson(trackSlug, lessonIndex); ok {
		lessonTitle = lesson.Title
	}

	evalPrompt := buildEvaluationPrompt(userPrompt, userOutput, lessonTitle, "User's current task")

	evaluation, err := s.AI.Complete(ctx, "", evalPrompt)
	if err != nil {
		monitoring.GenerationCounter.WithLabelValues("evaluation", "error").Inc()
		return "", err
	}
	monitoring.GenerationCounter.WithLabelValues("evaluation", "ok").Inc()

	return evaluation, nil
}

// buildTaskPrompt 由课程数据加自适应/个性化片段确定性拼装出题提示词
func (s *MentorService) buildTaskPrompt(trackSlug string, lessonIndex, taskNumber int, previousFeedback string, preferences map[string]interface{}) string {
	curriculum := s.Curriculum.Get(trackSlug)

	lesson, ok := s.Curriculum.Lesson(trackSlug, lessonIndex)
	if !ok {
		lesson = CurriculumLesson{Title: "General Practice"}
	}

	feedbackInstruction := ""
	if previousFeedback != "" {
		feedbackInstruction = fmt.Sprintf(`
ADAPTIVE INSTRUCTION:
The user previously struggled with: %q.
You MUST include a requirement in this new task that specifically forces the user to practice this weak area.
`, previousFeedback)
	}

	preferenceInstruction := ""
	if preferences != nil {
		goal := stringPref(preferences, "goal", "general learning")
		level := stringPref(preferences, "level", "intermediate")
		role := stringPref(preferences, "role", "student")

		preferenceInstruction = fmt.Sprintf(`
PERSONALIZATION:
- User Role: %s
- User Goal: %s
- Skill Level: %s
(Adjust the difficulty and context of the task to match this profile. e.g. if 'Developer', use code examples. If 'Beginner', keep it simple.)
`, role, goal, level)
	}

	return fmt.Sprintf(`
You are an AI Learning Mentor.

Track: %s
Lesson: %s
Lesson Description: %s
Topics: %s

User State:
- Task Number: %d
%s
%s
Rules:
- Practical real-world task
- ONE TASK ONLY
- Increasing difficulty
- No theory
- Focus only on current lesson topics
- Clear instructions
`, curriculum.Track, lesson.Title, lesson.Description, strings.Join(lesson.Topics, ", "),
		taskNumber, preferenceInstruction, feedbackInstruction)
}

// evaluationCriteria 依据课程标题挑选评分标准：基础课与进阶课两套
func evaluationCriteria(lessonTitle string) string {
	if lessonTitle == "Core Basics" || strings.Contains(lessonTitle, "Introduction") {
		return basicsCriteria
	}
	return advancedCriteria
}

func buildEvaluationPrompt(userPrompt, userOutput, lessonTitle, taskText string) string {
	criteria := evaluationCriteria(lessonTitle)

	return fmt.Sprintf(`
You are a friendly AI Mentor evaluating a student.
TASK: %s
LESSON: %s
CRITERIA: %s

USER PROMPT: %s
LLM OUTPUT: %s

Evaluate. Format exactly like this:

Score: X/10

What You Did Well:
- ...

What You Missed:
- (Crucial: List 1-2 specific missing concepts)

How To Improve:
- ...

Feedback Summary:
(One short sentence summarizing the main mistake for the database)
`, taskText, lessonTitle, criteria, userPrompt, userOutput)
}

func stringPref(preferences map[string]interface{}, key, fallback string) string {
	if v, ok := preferences[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}
