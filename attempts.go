package interviewquiz

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
)

// AttemptStore persists attempts and the per-user aggregates
type AttemptStore interface {
	CreateAttempt(ctx context.Context, attempt *Attempt) error
	UpdateUserStats(ctx context.Context, userID string, update func(UserStats) UserStats) (UserStats, error)
}

// AttemptRecorder stores finished quizzes and keeps user stats current
type AttemptRecorder struct {
	store AttemptStore
	cache StatsCache
	now   func() time.Time
}

// NewAttemptRecorder creates a recorder. cache may be nil.
func NewAttemptRecorder(store AttemptStore, cache StatsCache) *AttemptRecorder {
	return &AttemptRecorder{
		store: store,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// RecordAttempt persists the attempt and then updates the user's stats.
// If only the stats update fails, the attempt id is returned together with the error;
// the stored attempt is not rolled back.
func (ar *AttemptRecorder) RecordAttempt(ctx context.Context, userID string, in AttemptInput) (string, error) {
	if err := validateAttempt(userID, in); err != nil {
		return "", err
	}

	attempt := &Attempt{
		ID:             uuid.NewString(),
		UserID:         userID,
		Topic:          in.Topic,
		Difficulty:     in.Difficulty,
		Questions:      in.Questions,
		Answers:        in.Answers,
		Score:          in.Score,
		TotalQuestions: in.TotalQuestions,
		Percentage:     Percentage(in.Score, in.TotalQuestions),
		TimeSpent:      in.TimeSpent,
		CompletedAt:    ar.now(),
	}
	if attempt.Questions == nil {
		attempt.Questions = []Question{}
	}
	if attempt.Answers == nil {
		attempt.Answers = []int{}
	}

	if err := ar.store.CreateAttempt(ctx, attempt); err != nil {
		glog.Errorf("Error saving quiz attempt for user %s: %v", userID, err)
		return "", &PersistenceError{Op: "save quiz attempt", Err: err}
	}

	stats, err := ar.store.UpdateUserStats(ctx, userID, func(current UserStats) UserStats {
		return NextStats(current, attempt.Score, attempt.CompletedAt)
	})
	if err != nil {
		glog.Errorf("Error updating user stats for user %s after attempt %s: %v", userID, attempt.ID, err)
		if ar.cache != nil {
			if cacheErr := ar.cache.Delete(ctx, userID); cacheErr != nil {
				glog.Errorf("Failed to invalidate cached stats for user %s: %v", userID, cacheErr)
			}
		}
		return attempt.ID, &PersistenceError{Op: "update user stats", Err: err}
	}
	if ar.cache != nil {
		if cacheErr := ar.cache.Set(ctx, userID, &stats); cacheErr != nil {
			glog.Errorf("Failed to refresh cached stats for user %s: %v", userID, cacheErr)
		}
	}

	VerboseLog("Recorded attempt %s for user %s: %d/%d, quizzes taken %d, average %.2f",
		attempt.ID, userID, attempt.Score, attempt.TotalQuestions, stats.QuizzesTaken, stats.AverageScore)
	return attempt.ID, nil
}

// Percentage is score/total as a whole percent, rounded half up
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// NextStats folds one more attempt into the running aggregates
func NextStats(current UserStats, score int, completedAt time.Time) UserStats {
	taken := current.QuizzesTaken + 1
	total := current.TotalScore + score
	last := completedAt
	return UserStats{
		QuizzesTaken: taken,
		TotalScore:   total,
		AverageScore: roundTo2(float64(total) / float64(taken)),
		LastQuizDate: &last,
	}
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func validateAttempt(userID string, in AttemptInput) error {
	if strings.TrimSpace(userID) == "" {
		return newValidationError("userId", "user id is required")
	}
	if in.TotalQuestions <= 0 {
		return newValidationError("totalQuestions", "totalQuestions must be positive")
	}
	if in.Score < 0 || in.Score > in.TotalQuestions {
		return newValidationError("score", "score must be between 0 and %d", in.TotalQuestions)
	}
	if in.TimeSpent < 0 {
		return newValidationError("timeSpent", "timeSpent must not be negative")
	}
	for i, answer := range in.Answers {
		if answer < -1 || answer > 3 {
			return newValidationError("answers", "answer %d is out of range", i+1)
		}
	}
	return nil
}
