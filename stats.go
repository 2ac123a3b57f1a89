package interviewquiz

import (
	"context"
	"errors"

	"github.com/golang/glog"
)

// StatsStore reads back aggregates and history
type StatsStore interface {
	GetUserStats(ctx context.Context, userID string) (*UserStats, error)
	ListAttempts(ctx context.Context, userID string, limit int) ([]Attempt, error)
}

// StatsReader answers stats and history queries
type StatsReader struct {
	store StatsStore
	cache StatsCache
}

// NewStatsReader creates a reader. cache may be nil.
func NewStatsReader(store StatsStore, cache StatsCache) *StatsReader {
	return &StatsReader{store: store, cache: cache}
}

// GetStats returns the user's stats. found is false for a user the store has never seen.
func (sr *StatsReader) GetStats(ctx context.Context, userID string) (UserStats, bool, error) {
	if sr.cache != nil {
		cached, err := sr.cache.Get(ctx, userID)
		if err != nil {
			glog.Errorf("Failed to read cached stats for user %s: %v", userID, err)
		} else if cached != nil {
			return *cached, true, nil
		}
	}

	stats, err := sr.store.GetUserStats(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return UserStats{}, false, nil
	}
	if err != nil {
		return UserStats{}, false, &PersistenceError{Op: "get user stats", Err: err}
	}

	// Add never overwrites, so a recorder's fresher Set wins over this fill
	if sr.cache != nil {
		if err := sr.cache.Add(ctx, userID, stats); err != nil {
			glog.Errorf("Failed to cache stats for user %s: %v", userID, err)
		}
	}
	return *stats, true, nil
}

// GetHistory returns up to limit attempts, most recent first. limit <= 0 means 10.
func (sr *StatsReader) GetHistory(ctx context.Context, userID string, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	attempts, err := sr.store.ListAttempts(ctx, userID, limit)
	if err != nil {
		return nil, &PersistenceError{Op: "get quiz history", Err: err}
	}
	if attempts == nil {
		attempts = []Attempt{}
	}
	return attempts, nil
}
