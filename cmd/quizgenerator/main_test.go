package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"interviewquiz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuiz() *interviewquiz.Quiz {
	return &interviewquiz.Quiz{
		Topic:      "css",
		Difficulty: "beginner",
		Questions: []interviewquiz.Question{
			{Text: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 1, Explanation: "b is right"},
			{Text: "Q2", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 3},
			{Text: "Q3", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 0},
		},
	}
}

func TestPlayQuizScoresAnswers(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewScanner(strings.NewReader("b\nx\nA\na\n"))

	result := playQuiz(in, &out, testQuiz())

	assert.Equal(t, []int{1, 0, 0}, result.Answers)
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.Equal(t, "css", result.Topic)

	output := out.String()
	assert.Contains(t, output, "Please enter A, B, C, or D")
	assert.Contains(t, output, "Incorrect. The correct answer is D) d")
	assert.Contains(t, output, "Explanation: b is right")
	assert.Contains(t, output, "Score: 2/3 (67%)")
	assert.Contains(t, output, "Good job!")
}

func TestPlayQuizInputExhausted(t *testing.T) {
	var out bytes.Buffer

	result := playQuiz(bufio.NewScanner(strings.NewReader("b\n")), &out, testQuiz())

	assert.Equal(t, []int{1, -1, -1}, result.Answers)
	assert.Equal(t, 1, result.Score)
	assert.Contains(t, out.String(), "Skipped.")
	assert.Contains(t, out.String(), "Keep studying!")
}

func TestPlayQuizAfterKeyPrompt(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "api_key")
	var out bytes.Buffer
	stdin := bufio.NewScanner(strings.NewReader("gsk_typed\nb\nd\na\n"))

	key := interviewquiz.APIKeySource{KeyFile: keyFile, Prompt: stdin, Out: &out}.Resolve()
	assert.Equal(t, "gsk_typed", key)

	result := playQuiz(stdin, &out, testQuiz())
	assert.Equal(t, []int{1, 3, 0}, result.Answers)
	assert.Equal(t, 3, result.Score)
	assert.Contains(t, out.String(), "Excellent work!")

	saved, err := os.ReadFile(keyFile)
	require.NoError(t, err)
	assert.Equal(t, "gsk_typed\n", string(saved))
}
