package interviewquiz

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserStore persists accounts
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// RegisterRequest carries the fields of the registration form
type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	PreferredTopic string `json:"preferredTopic"`
	Experience     string `json:"experience"`
}

// Accounts registers and authenticates users
type Accounts struct {
	store UserStore
}

// NewAccounts creates the account service
func NewAccounts(store UserStore) *Accounts {
	return &Accounts{store: store}
}

// ValidEmail reports whether email looks like an address
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Register creates an account with a bcrypt password hash and zeroed stats
func (a *Accounts) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)

	if email == "" {
		return nil, newValidationError("email", "Email is required")
	}
	if !ValidEmail(email) {
		return nil, newValidationError("email", "Invalid email format")
	}
	if name == "" {
		return nil, newValidationError("name", "Name is required")
	}
	if req.Password == "" {
		return nil, newValidationError("password", "Password is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, newValidationError("password", "Password should be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:             uuid.NewString(),
		Email:          email,
		Name:           name,
		Address:        req.Address,
		Phone:          req.Phone,
		PreferredTopic: valueOr(req.PreferredTopic, DefaultTopic),
		Experience:     valueOr(req.Experience, DefaultDifficulty),
		CreatedAt:      time.Now().UTC(),
		PasswordHash:   string(hash),
	}

	if err := a.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, &PersistenceError{Op: "create user", Err: err}
	}

	glog.Infof("Registered user %s", user.ID)
	return user, nil
}

// Login checks an email and password. Both are required.
func (a *Accounts) Login(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, newValidationError("email", "Email is required")
	}
	if !ValidEmail(email) {
		return nil, newValidationError("email", "Invalid email format")
	}
	if password == "" {
		return nil, newValidationError("password", "Password is required")
	}

	user, err := a.store.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get user", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser returns the account with the given id, or ErrNotFound
func (a *Accounts) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := a.store.GetUser(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get user", Err: err}
	}
	return user, nil
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
