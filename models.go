package interviewquiz

import "time"

// Question represents a single multiple choice question with exactly four options
type Question struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"` // 0-based index into Options
	Explanation   string   `json:"explanation"`
}

// QuizSource records where the questions of a quiz came from
type QuizSource string

const (
	SourceAI       QuizSource = "ai"
	SourceFallback QuizSource = "fallback"
)

// Quiz represents a generated quiz with metadata
type Quiz struct {
	ID         string     `json:"id"`
	Topic      string     `json:"topic"`
	Difficulty string     `json:"difficulty"`
	Questions  []Question `json:"questions"`
	Source     QuizSource `json:"source"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// GenerationRequest represents a request to generate questions
type GenerationRequest struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// AttemptInput is what a client submits when a quiz is finished
type AttemptInput struct {
	Topic          string     `json:"topic"`
	Difficulty     string     `json:"difficulty,omitempty"`
	Questions      []Question `json:"questions"`
	Answers        []int      `json:"answers"` // -1 marks an unanswered question
	Score          int        `json:"score"`
	TotalQuestions int        `json:"totalQuestions"`
	TimeSpent      int        `json:"timeSpent"` // seconds
}

// Attempt is a persisted, completed quiz session. It is never modified after it is stored.
type Attempt struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	Topic          string     `json:"topic"`
	Difficulty     string     `json:"difficulty,omitempty"`
	Questions      []Question `json:"questions"`
	Answers        []int      `json:"answers"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"totalQuestions"`
	Percentage     int        `json:"percentage"`
	TimeSpent      int        `json:"timeSpent"`
	CompletedAt    time.Time  `json:"completedAt"`
}

// UserStats are the running aggregates kept on the user record
type UserStats struct {
	QuizzesTaken int        `json:"quizzesTaken"`
	TotalScore   int        `json:"totalScore"`
	AverageScore float64    `json:"averageScore"`
	LastQuizDate *time.Time `json:"lastQuizDate"`
}

// User is an account together with its embedded statistics
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	PreferredTopic string    `json:"preferredTopic"`
	Experience     string    `json:"experience"`
	CreatedAt      time.Time `json:"createdAt"`
	PasswordHash   string    `json:"-"`
	Stats          UserStats `json:"stats"`
}

// Topic describes a quiz topic offered to users
type Topic struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Details string `json:"-"`
}
