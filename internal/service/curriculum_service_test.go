package service

import (
	"mentora_backend/internal/config"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCurriculumFile(t *testing.T, dir, track, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, track+".json"), []byte(content), 0644))
}

func TestCurriculumLoadsFromFiles(t *testing.T) {
	dir := t.TempDir()
	writeCurriculumFile(t, dir, "chatgpt", `{
		"track": "ChatGPT Mastery",
		"lessons": [
			{"title": "Core Basics", "description": "basics", "topics": ["Clarity"]},
			{"title": "Personas", "description": "personas", "topics": ["Persona design"]}
		],
		"tasks": [{"id": "t1", "title": "Rewrite a vague prompt"}]
	}`)

	s := NewCurriculumService(config.CurriculumConfig{Path: dir, Tracks: []string{"chatgpt"}})

	assert.True(t, s.Known("chatgpt"))
	assert.Equal(t, 2, s.TotalLessons("chatgpt"))
	assert.Equal(t, "ChatGPT Mastery", s.Get("chatgpt").Track)
	require.Len(t, s.Tasks("chatgpt"), 1)
	assert.Equal(t, "t1", s.Tasks("chatgpt")[0]["id"])
}

func TestCurriculumMissingFileMeansEmptyTrack(t *testing.T) {
	dir := t.TempDir()
	writeCurriculumFile(t, dir, "chatgpt", `{"lessons": [{"title": "Core Basics"}]}`)

	s := NewCurriculumService(config.CurriculumConfig{Path: dir, Tracks: []string{"chatgpt", "ai-coding"}})

	// 文件缺失的 track 记为空课程，不阻塞启动；没有课时就不算已知
	assert.False(t, s.Known("ai-coding"))
	assert.Zero(t, s.TotalLessons("ai-coding"))
	assert.Empty(t, s.Lessons("ai-coding"))
}

func TestCurriculumInvalidJSONMeansEmptyTrack(t *testing.T) {
	dir := t.TempDir()
	writeCurriculumFile(t, dir, "chatgpt", `{not json`)

	s := NewCurriculumService(config.CurriculumConfig{Path: dir, Tracks: []string{"chatgpt"}})
	assert.Zero(t, s.TotalLessons("chatgpt"))
}

func TestCurriculumUnknownTrack(t *testing.T) {
	dir := t.TempDir()
	writeCurriculumFile(t, dir, "chatgpt", `{"lessons": [{"title": "Core Basics"}]}`)

	s := NewCurriculumService(config.CurriculumConfig{Path: dir, Tracks: []string{"chatgpt"}})

	assert.False(t, s.Known("no-such-track"))
	// 未知 track 课时数为 0，进度换算走按任务折算的兜底公式
	assert.Zero(t, s.TotalLessons("no-such-track"))
	// 取课程内容时回落到第一个配置的 track
	assert.Equal(t, "chatgpt", s.Get("no-such-track").Track)
}

func TestCurriculumLessonLookup(t *testing.T) {
	dir := t.TempDir()
	writeCurriculumFile(t, dir, "chatgpt", `{"lessons": [
		{"title": "Core Basics"},
		{"title": "Personas"}
	]}`)

	s := NewCurriculumService(config.CurriculumConfig{Path: dir, Tracks: []string{"chatgpt"}})

	lesson, ok := s.Lesson("chatgpt", 1)
	require.True(t, ok)
	assert.Equal(t, "Personas", lesson.Title)

	// 越界索引回落到第一节课
	lesson, ok = s.Lesson("chatgpt", 99)
	require.True(t, ok)
	assert.Equal(t, "Core Basics", lesson.Title)
}

func TestCurriculumLessonLookupEmptyTrack(t *testing.T) {
	s := NewCurriculumService(config.CurriculumConfig{Path: t.TempDir(), Tracks: []string{"chatgpt"}})

	_, ok := s.Lesson("chatgpt", 0)
	assert.False(t, ok)
}
