package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"interviewquiz"

	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

const (
	sessionName      = "quiz-session"
	sessionUserIDKey = "user_id"
	sessionMaxAge    = 24 * 60 * 60
	backendName      = "Go quiz service with SQLite"
)

// Server exposes the legacy REST surface and the quiz API
type Server struct {
	cfg       interviewquiz.Config
	generator *interviewquiz.QuizGenerator
	recorder  *interviewquiz.AttemptRecorder
	stats     *interviewquiz.StatsReader
	accounts  *interviewquiz.Accounts
	tokens    *interviewquiz.TokenIssuer
	sessions  sessions.Store
	mailer    interviewquiz.Mailer
	staticDir string
}

// NewServer wires the quiz services on top of db. cache may be nil.
// It refuses to start with unset or default token and session secrets.
func NewServer(cfg interviewquiz.Config, db *interviewquiz.DB, bank *interviewquiz.QuestionBank,
	cache interviewquiz.StatsCache, mailer interviewquiz.Mailer) (*Server, error) {
	if err := cfg.ValidateSecrets(); err != nil {
		return nil, err
	}

	return &Server{
		cfg:       cfg,
		generator: interviewquiz.NewQuizGenerator(cfg, bank),
		recorder:  interviewquiz.NewAttemptRecorder(db, cache),
		stats:     interviewquiz.NewStatsReader(db, cache),
		accounts:  interviewquiz.NewAccounts(db),
		tokens:    interviewquiz.NewTokenIssuer(cfg.JWTSecret),
		sessions:  sessions.NewCookieStore([]byte(cfg.SessionSecret)),
		mailer:    mailer,
	}, nil
}

// Handler returns the routes wrapped in CORS, access logging and panic recovery
func (s *Server) Handler() http.Handler {
	corsOrigins := handlers.AllowedOriginValidator(originAllowed(s.cfg.AllowedOrigins))
	corsMethods := handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"})
	corsHeaders := handlers.AllowedHeaders([]string{"Authorization", "Content-Type"})

	var h http.Handler = s.SetupRoutes()
	h = handlers.CORS(corsOrigins, corsMethods, corsHeaders, handlers.AllowCredentials())(h)
	h = handlers.LoggingHandler(os.Stdout, h)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
}

// originAllowed matches only the configured origins. With none configured, cross-origin
// requests get no CORS headers.
func originAllowed(origins []string) handlers.OriginValidator {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return func(origin string) bool {
		return allowed[origin]
	}
}

// SetupRoutes builds the router. Static files are served last so API routes win.
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", s.handleLegacyRegister).Methods("POST")
	api.HandleFunc("/login", s.handleLegacyLogin).Methods("POST")
	api.HandleFunc("/generate-quiz", s.handleLegacyGenerateQuiz).Methods("POST")
	api.HandleFunc("/send-results", s.handleSendResults).Methods("POST")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/config", s.handleConfig).Methods("GET")

	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", s.handleRegister).Methods("POST")
	auth.HandleFunc("/login", s.handleLogin).Methods("POST")
	auth.HandleFunc("/logout", s.handleLogout).Methods("POST")
	auth.HandleFunc("/me", s.requireUser(s.handleMe)).Methods("GET")

	quiz := r.PathPrefix("/quiz").Subrouter()
	quiz.HandleFunc("/topics", s.handleTopics).Methods("GET")
	quiz.HandleFunc("/generate", s.handleGenerate).Methods("POST")
	quiz.HandleFunc("/attempts", s.requireUser(s.handleRecordAttempt)).Methods("POST")
	quiz.HandleFunc("/stats", s.requireUser(s.handleStats)).Methods("GET")
	quiz.HandleFunc("/history", s.requireUser(s.handleHistory)).Methods("GET")

	if s.staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
	}
	return r
}

type userHandler func(w http.ResponseWriter, r *http.Request, userID string)

// requireUser resolves the caller from a bearer token or the session cookie
func (s *Server) requireUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.currentUser(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next(w, r, userID)
	}
}

func (s *Server) currentUser(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		userID, err := s.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			interviewquiz.VerboseLog("Rejected bearer token for %s %s: %v", r.Method, r.URL.Path, err)
			return "", false
		}
		return userID, true
	}

	session, err := s.sessions.Get(r, sessionName)
	if err != nil {
		return "", false
	}
	userID, ok := session.Values[sessionUserIDKey].(string)
	return userID, ok && userID != ""
}

// Legacy endpoints. They validate input and point callers at the account API.

func (s *Server) handleLegacyRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Name and email are required")
		return
	}
	if !interviewquiz.ValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Registration is handled by the account API",
		"note":    "Please use POST /auth/register",
	})
}

func (s *Server) handleLegacyLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}
	if !interviewquiz.ValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Authentication is handled by the account API",
		"note":    "Please use POST /auth/login",
	})
}

func (s *Server) handleLegacyGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Domain     string `json:"domain"`
		Difficulty string `json:"difficulty"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Domain == "" || req.Difficulty == "" {
		writeError(w, http.StatusBadRequest, "Domain and difficulty are required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":    "Quiz questions are generated by the quiz API",
		"note":       "Please use POST /quiz/generate",
		"domain":     req.Domain,
		"difficulty": req.Difficulty,
	})
}

func (s *Server) handleSendResults(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Domain     string  `json:"domain"`
		Difficulty *string `json:"difficulty"`
		Score      *int    `json:"score"`
		Total      *int    `json:"total"`
		UserEmail  string  `json:"userEmail"`
		UserName   string  `json:"userName"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Domain == "" || req.Difficulty == nil || req.Score == nil || req.Total == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if req.UserEmail == "" {
		writeError(w, http.StatusBadRequest, "User email is required")
		return
	}

	email := interviewquiz.ResultsEmail{
		Domain:     req.Domain,
		Difficulty: *req.Difficulty,
		Score:      *req.Score,
		Total:      *req.Total,
		UserEmail:  req.UserEmail,
		UserName:   req.UserName,
	}
	if err := s.mailer.SendResults(r.Context(), email); err != nil {
		glog.Errorf("Error sending results email to %s: %v", req.UserEmail, err)
		writeError(w, http.StatusInternalServerError, "Failed to send email")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Results sent successfully",
		"emailSent": true,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Server is running",
		"backend": backendName,
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	defaultQuestions, maxQuestions := s.generator.QuestionLimits()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"model":            s.cfg.Model,
		"aiEnabled":        s.generator.AIEnabled(),
		"defaultQuestions": defaultQuestions,
		"maxQuestions":     maxQuestions,
		"emailEnabled":     s.cfg.SMTP.Configured(),
	})
}

// Account endpoints

type authResponse struct {
	User  *interviewquiz.User `json:"user"`
	Token string              `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req interviewquiz.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.accounts.Register(r.Context(), req)
	if err != nil {
		s.writeAccountError(w, err)
		return
	}
	s.startSession(w, r, user, http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeAccountError(w, err)
		return
	}
	s.startSession(w, r, user, http.StatusOK)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user *interviewquiz.User, status int) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		glog.Errorf("Failed to issue token for user %s: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	session, _ := s.sessions.Get(r, sessionName)
	session.Options = &sessions.Options{Path: "/", MaxAge: sessionMaxAge, HttpOnly: true}
	session.Values[sessionUserIDKey] = user.ID
	if err := session.Save(r, w); err != nil {
		glog.Errorf("Session save error: %v", err)
	}

	writeJSON(w, status, authResponse{User: user, Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.sessions.Get(r, sessionName)
	delete(session.Values, sessionUserIDKey)
	session.Options = &sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true}
	if err := session.Save(r, w); err != nil {
		glog.Errorf("Session save error: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := s.accounts.GetUser(r.Context(), userID)
	if err != nil {
		s.writeAccountError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) writeAccountError(w http.ResponseWriter, err error) {
	var ve *interviewquiz.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, interviewquiz.ErrEmailTaken):
		writeError(w, http.StatusConflict, "This email is already registered")
	case errors.Is(err, interviewquiz.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, interviewquiz.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	default:
		glog.Errorf("Account request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Quiz endpoints

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, interviewquiz.AvailableTopics())
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req interviewquiz.GenerationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.generator.GenerateQuiz(r.Context(), req))
}

func (s *Server) handleRecordAttempt(w http.ResponseWriter, r *http.Request, userID string) {
	var in interviewquiz.AttemptInput
	if !decodeJSON(w, r, &in) {
		return
	}

	attemptID, err := s.recorder.RecordAttempt(r.Context(), userID, in)
	var ve *interviewquiz.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]string{"attemptId": attemptID})
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case attemptID != "":
		writeJSON(w, http.StatusCreated, map[string]string{
			"attemptId": attemptID,
			"warning":   "Quiz saved but statistics could not be updated",
		})
	default:
		writeError(w, http.StatusInternalServerError, "Failed to save quiz results")
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, userID string) {
	stats, found, err := s.stats.GetStats(r.Context(), userID)
	if err != nil {
		glog.Errorf("Error getting stats for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to load statistics")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "User stats not found")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, userID string) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be a number")
			return
		}
		limit = n
	}

	attempts, err := s.stats.GetHistory(r.Context(), userID, limit)
	if err != nil {
		glog.Errorf("Error getting quiz history for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to load quiz history")
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, "Invalid JSON body")
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		glog.Errorf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
