package service

import (
	"context"
	"encoding/json"
	"mentora_backend/internal/model"
	"mentora_backend/internal/repository"
	"mentora_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newFakeAIService(t *testing.T, handler http.HandlerFunc) *AIService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	clientConfig := openai.DefaultConfig("test-key")
	clientConfig.BaseURL = server.URL + "/v1"

	return &AIService{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   "gpt-4o-mini",
		timeout: 5 * time.Second,
	}
}

func chatCompletionHandler(t *testing.T, content string, captured *chatRequest) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		})
	}
}

type mentorFixture struct {
	f      *serviceFixture
	mentor *MentorService
	user   *model.User
}

func newMentorFixture(t *testing.T, handler http.HandlerFunc) *mentorFixture {
	t.Helper()
	f := newServiceFixture(t)
	user := createTestUser(t, f)

	progressRepo := repository.NewTrackProgressRepository(f.db)
	completionRepo := repository.NewTaskCompletionRepository(f.db)
	mentor := NewMentorService(newFakeAIService(t, handler), fiveLessonCurriculum(), progressRepo, completionRepo)

	return &mentorFixture{f: f, mentor: mentor, user: user}
}

func TestAICompleteReturnsContent(t *testing.T) {
	var captured chatRequest
	ai := newFakeAIService(t, chatCompletionHandler(t, "hello there", &captured))

	got, err := ai.Complete(context.Background(), "be helpful", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", got)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "be helpful", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
}

func TestAICompleteOmitsEmptySystemPrompt(t *testing.T) {
	var captured chatRequest
	ai := newFakeAIService(t, chatCompletionHandler(t, "ok", &captured))

	_, err := ai.Complete(context.Background(), "", "evaluate this")
	require.NoError(t, err)

	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
}

func TestAICompleteServerError(t *testing.T) {
	ai := newFakeAIService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	})

	_, err := ai.Complete(context.Background(), "", "hi")
	assert.ErrorIs(t, err, util.ErrAIUnavailable)
}

func TestAICompleteEmptyChoices(t *testing.T) {
	ai := newFakeAIService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": "chatcmpl-test", "object": "chat.completion", "choices": []any{},
		})
	})

	_, err := ai.Complete(context.Background(), "", "hi")
	assert.ErrorIs(t, err, util.ErrAIUnavailable)
}

func TestGenerateTaskForNewUser(t *testing.T) {
	var captured chatRequest
	m := newMentorFixture(t, chatCompletionHandler(t, "Write a prompt that summarizes a news article.", &captured))

	task, err := m.mentor.GenerateTask(context.Background(), m.user, "chatgpt")
	require.NoError(t, err)
	assert.Equal(t, "Write a prompt that summarizes a news article.", task.Task)
	assert.Zero(t, task.LessonIndex)
	assert.Empty(t, task.PreviousFeedback)

	require.Len(t, captured.Messages, 2)
	system := captured.Messages[0].Content
	assert.Contains(t, system, "Lesson: Core Basics")
	assert.Contains(t, system, "Task Number: 1")
	assert.NotContains(t, system, "ADAPTIVE INSTRUCTION")
	assert.NotContains(t, system, "PERSONALIZATION")
	assert.Equal(t, "Generate ONE practical task", captured.Messages[1].Content)
}

func TestGenerateTaskUsesProgressAndFeedback(t *testing.T) {
	var captured chatRequest
	m := newMentorFixture(t, chatCompletionHandler(t, "Next task", &captured))

	progress, err := m.f.progress.Enroll(m.user.ID, "chatgpt", "", map[string]interface{}{"role": "Developer"})
	require.NoError(t, err)
	require.NoError(t, m.f.progress.ProgressRepo.UpdateFields(progress.ID, map[string]interface{}{
		"current_lesson_index": 1,
		"tasks_completed":      4,
	}))

	_, err = m.f.completion.CompleteTask(m.user.ID, "prev-task", CompletionInput{
		TrackSlug: "chatgpt", TaskIndex: 1, XPEarned: 10, FeedbackSummary: "Forgot the output format",
	})
	require.NoError(t, err)

	task, err := m.mentor.GenerateTask(context.Background(), m.user, "chatgpt")
	require.NoError(t, err)
	assert.Equal(t, 1, task.LessonIndex)
	assert.Equal(t, "Forgot the output format", task.PreviousFeedback)

	system := captured.Messages[0].Content
	assert.Contains(t, system, "Lesson: Personas and Context")
	// 5 个已完成任务（4+1）对应本课第 3 题
	assert.Contains(t, system, "Task Number: 3")
	assert.Contains(t, system, "ADAPTIVE INSTRUCTION")
	assert.Contains(t, system, "Forgot the output format")
	assert.Contains(t, system, "PERSONALIZATION")
	assert.Contains(t, system, "User Role: Developer")
	// 缺省偏好
	assert.Contains(t, system, "User Goal: general learning")
	assert.Contains(t, system, "Skill Level: intermediate")
}

func TestGenerateTaskUnavailable(t *testing.T) {
	m := newMentorFixture(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	_, err := m.mentor.GenerateTask(context.Background(), m.user, "chatgpt")
	assert.ErrorIs(t, err, util.ErrAIUnavailable)
}

func TestEvaluateUsesBasicsCriteriaForFirstLesson(t *testing.T) {
	var captured chatRequest
	m := newMentorFixture(t, chatCompletionHandler(t, "Score: 7/10", &captured))

	evaluation, err := m.mentor.Evaluate(context.Background(), m.user, "chatgpt", "my prompt", "model output")
	require.NoError(t, err)
	assert.Equal(t, "Score: 7/10", evaluation)

	// 评估提示词整体作为 user 消息发送
	require.Len(t, captured.Messages, 1)
	prompt := captured.Messages[0].Content
	assert.Contains(t, prompt, "LESSON: Core Basics")
	assert.Contains(t, prompt, "Clarity, Specificity, Role Assignment, Output Format, Conciseness")
	assert.Contains(t, prompt, "USER PROMPT: my prompt")
	assert.Contains(t, prompt, "LLM OUTPUT: model output")
	assert.Contains(t, prompt, "Score: X/10")
}

func TestEvaluateUsesAdvancedCriteriaForLaterLessons(t *testing.T) {
	var captured chatRequest
	m := newMentorFixture(t, chatCompletionHandler(t, "Score: 9/10", &captured))

	progress, err := m.f.progress.Enroll(m.user.ID, "chatgpt", "", nil)
	require.NoError(t, err)
	require.NoError(t, m.f.progress.ProgressRepo.UpdateFields(progress.ID, map[string]interface{}{
		"current_lesson_index": 2,
	}))

	_, err = m.mentor.Evaluate(context.Background(), m.user, "chatgpt", "p", "o")
	require.NoError(t, err)

	prompt := captured.Messages[0].Content
	assert.Contains(t, prompt, "LESSON: Structured Output")
	assert.Contains(t, prompt, "Persona, Context, Clear Task, Examples, Iteration")
}

func TestEvaluationCriteriaSelection(t *testing.T) {
	assert.Equal(t, basicsCriteria, evaluationCriteria("Core Basics"))
	assert.Equal(t, basicsCriteria, evaluationCriteria("Introduction to AI Pair Programming"))
	assert.Equal(t, advancedCriteria, evaluationCriteria("Personas and Context"))
	assert.Equal(t, advancedCriteria, evaluationCriteria("General Practice"))
}

func TestEvaluateFallsBackToGeneralPractice(t *testing.T) {
	var captured chatRequest
	f := newServiceFixture(t)
	user := createTestUser(t, f)

	// 空课程的轨道：课程标题回落到 General Practice
	emptyCurriculum := newTestCurriculum(map[string][]CurriculumLesson{"empty": nil}, "empty")
	mentor := NewMentorService(
		newFakeAIService(t, chatCompletionHandler(t, "Score: 5/10", &captured)),
		emptyCurriculum,
		repository.NewTrackProgressRepository(f.db),
		repository.NewTaskCompletionRepository(f.db),
	)

	_, err := mentor.Evaluate(context.Background(), user, "empty", "p", "o")
	require.NoError(t, err)
	assert.Contains(t, captured.Messages[0].Content, "LESSON: General Practice")
}
