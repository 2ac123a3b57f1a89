package interviewquiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DB is the sqlite backed store for users, their stats and quiz attempts
type DB struct {
	db *sql.DB
}

// OpenDB opens a database and makes sure the schema exists.
// The pool is limited to one connection so read-modify-write transactions serialize.
func OpenDB(dbPath string) (*DB, error) {
	dsn := dbPath
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	store := &DB{db: db}
	if err := store.CreateTables(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			preferred_topic TEXT NOT NULL DEFAULT '',
			experience TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			quizzes_taken INTEGER NOT NULL DEFAULT 0,
			total_score INTEGER NOT NULL DEFAULT 0,
			average_score REAL NOT NULL DEFAULT 0,
			last_quiz_date DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS quiz_attempts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			topic TEXT NOT NULL,
			difficulty TEXT NOT NULL DEFAULT '',
			questions TEXT NOT NULL,
			answers TEXT NOT NULL,
			score INTEGER NOT NULL,
			total_questions INTEGER NOT NULL,
			percentage INTEGER NOT NULL,
			time_spent INTEGER NOT NULL,
			completed_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_attempts_user ON quiz_attempts (user_id, completed_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return errors.Wrapf(err, "failed to execute %s", query)
		}
	}
	return nil
}

// CreateAttempt stores a completed attempt
func (db *DB) CreateAttempt(ctx context.Context, attempt *Attempt) error {
	questionsJSON, err := toJSONColumn(attempt.Questions)
	if err != nil {
		return errors.Wrap(err, "failed to marshal questions")
	}
	answersJSON, err := toJSONColumn(attempt.Answers)
	if err != nil {
		return errors.Wrap(err, "failed to marshal answers")
	}

	_, err = db.db.ExecContext(ctx,
		`INSERT INTO quiz_attempts (id, user_id, topic, difficulty, questions, answers, score, total_questions, percentage, time_spent, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID, attempt.UserID, attempt.Topic, attempt.Difficulty, questionsJSON, answersJSON,
		attempt.Score, attempt.TotalQuestions, attempt.Percentage, attempt.TimeSpent, attempt.CompletedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create attempt")
	}
	return nil
}

// ListAttempts returns up to limit attempts of a user, most recent first
func (db *DB) ListAttempts(ctx context.Context, userID string, limit int) ([]Attempt, error) {
	rows, err := db.db.QueryContext(ctx,
		`SELECT id, user_id, topic, difficulty, questions, answers, score, total_questions, percentage, time_spent, completed_at
		 FROM quiz_attempts WHERE user_id = ? ORDER BY completed_at DESC, rowid DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list attempts")
	}
	defer rows.Close()

	attempts := []Attempt{}
	for rows.Next() {
		var attempt Attempt
		var questionsJSON, answersJSON string
		err := rows.Scan(&attempt.ID, &attempt.UserID, &attempt.Topic, &attempt.Difficulty, &questionsJSON, &answersJSON,
			&attempt.Score, &attempt.TotalQuestions, &attempt.Percentage, &attempt.TimeSpent, &attempt.CompletedAt)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan attempt")
		}
		if err := json.Unmarshal([]byte(questionsJSON), &attempt.Questions); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal questions of attempt %s", attempt.ID)
		}
		if err := json.Unmarshal([]byte(answersJSON), &attempt.Answers); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal answers of attempt %s", attempt.ID)
		}
		attempts = append(attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating attempts")
	}
	return attempts, nil
}

// GetUserStats returns the stats of a user, or ErrNotFound
func (db *DB) GetUserStats(ctx context.Context, userID string) (*UserStats, error) {
	stats, err := scanStats(db.db.QueryRowContext(ctx,
		"SELECT quizzes_taken, total_score, average_score, last_quiz_date FROM users WHERE id = ?", userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user stats")
	}
	return stats, nil
}

// UpdateUserStats reads the current stats of a user (zero values when the user has no row),
// applies update and writes the result back in one transaction.
func (db *DB) UpdateUserStats(ctx context.Context, userID string, update func(UserStats) UserStats) (UserStats, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return UserStats{}, errors.Wrap(err, "failed to begin stats transaction")
	}
	defer tx.Rollback()

	exists := true
	current, err := scanStats(tx.QueryRowContext(ctx,
		"SELECT quizzes_taken, total_score, average_score, last_quiz_date FROM users WHERE id = ?", userID))
	if errors.Is(err, sql.ErrNoRows) {
		exists = false
		current = &UserStats{}
	} else if err != nil {
		return UserStats{}, errors.Wrap(err, "failed to read user stats")
	}

	next := update(*current)

	var lastQuizDate interface{}
	if next.LastQuizDate != nil {
		lastQuizDate = next.LastQuizDate.UTC()
	}

	if exists {
		_, err = tx.ExecContext(ctx,
			"UPDATE users SET quizzes_taken = ?, total_score = ?, average_score = ?, last_quiz_date = ? WHERE id = ?",
			next.QuizzesTaken, next.TotalScore, next.AverageScore, lastQuizDate, userID)
	} else {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO users (id, created_at, quizzes_taken, total_score, average_score, last_quiz_date) VALUES (?, ?, ?, ?, ?, ?)",
			userID, time.Now().UTC(), next.QuizzesTaken, next.TotalScore, next.AverageScore, lastQuizDate)
	}
	if err != nil {
		return UserStats{}, errors.Wrap(err, "failed to write user stats")
	}

	if err := tx.Commit(); err != nil {
		return UserStats{}, errors.Wrap(err, "failed to commit user stats")
	}
	return next, nil
}

// CreateUser stores a new account. A duplicate email yields ErrEmailTaken.
func (db *DB) CreateUser(ctx context.Context, user *User) error {
	_, err := db.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, address, phone, preferred_topic, experience, created_at, quizzes_taken, total_score, average_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, 0)`,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Address, user.Phone, user.PreferredTopic, user.Experience, user.CreatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrEmailTaken
		}
		return errors.Wrap(err, "failed to create user")
	}
	return nil
}

const userColumns = `id, email, name, password_hash, address, phone, preferred_topic, experience, created_at,
	quizzes_taken, total_score, average_score, last_quiz_date`

// GetUser retrieves a user by id, or ErrNotFound
func (db *DB) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := scanUser(db.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email, or ErrNotFound
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	user, err := scanUser(db.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user by email")
	}
	return user, nil
}

func scanStats(row *sql.Row) (*UserStats, error) {
	var stats UserStats
	var lastQuizDate sql.NullTime
	if err := row.Scan(&stats.QuizzesTaken, &stats.TotalScore, &stats.AverageScore, &lastQuizDate); err != nil {
		return nil, err
	}
	if lastQuizDate.Valid {
		t := lastQuizDate.Time.UTC()
		stats.LastQuizDate = &t
	}
	return &stats, nil
}

func scanUser(row *sql.Row) (*User, error) {
	var user User
	var email sql.NullString
	var lastQuizDate sql.NullTime
	err := row.Scan(&user.ID, &email, &user.Name, &user.PasswordHash, &user.Address, &user.Phone,
		&user.PreferredTopic, &user.Experience, &user.CreatedAt,
		&user.Stats.QuizzesTaken, &user.Stats.TotalScore, &user.Stats.AverageScore, &lastQuizDate)
	if err != nil {
		return nil, err
	}
	user.Email = email.String
	if lastQuizDate.Valid {
		t := lastQuizDate.Time.UTC()
		user.Stats.LastQuizDate = &t
	}
	return &user, nil
}

func toJSONColumn(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
