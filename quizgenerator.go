package interviewquiz

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
)

// QuizGenerator produces quizzes from the completion API, degrading to the question bank
type QuizGenerator struct {
	completer        Completer // nil when no API key is configured
	bank             *QuestionBank
	defaultQuestions int
	maxQuestions     int
	logDir           string
}

// NewQuizGenerator wires a generator from configuration. Without a valid API key every
// quiz comes from the bank.
func NewQuizGenerator(cfg Config, bank *QuestionBank) *QuizGenerator {
	var completer Completer
	if cfg.HasAPIKey() {
		completer = NewQuestionMaker(cfg)
	} else {
		glog.Warning("No valid completion API key configured, quizzes will use the question bank")
	}
	return NewQuizGeneratorWithCompleter(cfg, bank, completer)
}

// NewQuizGeneratorWithCompleter is NewQuizGenerator with an explicit completer
func NewQuizGeneratorWithCompleter(cfg Config, bank *QuestionBank, completer Completer) *QuizGenerator {
	defaultQuestions := cfg.DefaultQuestions
	if defaultQuestions <= 0 {
		defaultQuestions = DefaultQuizQuestions
	}
	maxQuestions := cfg.MaxQuestions
	if maxQuestions <= 0 {
		maxQuestions = MaxQuizQuestions
	}
	if defaultQuestions > maxQuestions {
		defaultQuestions = maxQuestions
	}

	return &QuizGenerator{
		completer:        completer,
		bank:             bank,
		defaultQuestions: defaultQuestions,
		maxQuestions:     maxQuestions,
		logDir:           cfg.LLMLogDir,
	}
}

// AIEnabled reports whether generation will try the completion API
func (qg *QuizGenerator) AIEnabled() bool {
	return qg.completer != nil
}

// QuestionLimits returns the default and maximum question counts
func (qg *QuizGenerator) QuestionLimits() (int, int) {
	return qg.defaultQuestions, qg.maxQuestions
}

// GenerateQuiz returns between 1 and req.Count questions. It never fails: transport, upstream
// and parse errors are logged and answered from the question bank instead.
func (qg *QuizGenerator) GenerateQuiz(ctx context.Context, req GenerationRequest) *Quiz {
	req.Count = qg.boundCount(req.Count)

	quiz := &Quiz{
		ID:         uuid.NewString(),
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		CreatedAt:  time.Now().UTC(),
	}

	var logger *LLMLogger
	if qg.logDir != "" {
		l, err := NewLLMLogger(qg.logDir, quiz.ID, req)
		if err != nil {
			glog.Errorf("Failed to create logger for quiz %s: %v", quiz.ID, err)
		} else {
			logger = l
			defer logger.Close()
		}
	}

	glog.Infof("Generating %d questions for topic %q at %q", req.Count, req.Topic, req.Difficulty)

	if qg.completer == nil {
		qg.useFallback(quiz, req, logger, "no API key configured")
		return quiz
	}

	questions, err := qg.generate(ctx, req, logger)
	if err != nil {
		glog.Errorf("AI generation failed for quiz %s, falling back to question bank: %v", quiz.ID, err)
		qg.useFallback(quiz, req, logger, err.Error())
		return quiz
	}

	if len(questions) > req.Count {
		questions = questions[:req.Count]
	}
	quiz.Questions = questions
	quiz.Source = SourceAI
	if logger != nil {
		logger.LogOutcome(SourceAI, len(questions), "")
	}

	glog.Infof("Generated %d questions for quiz %s", len(quiz.Questions), quiz.ID)
	return quiz
}

// Fallback answers a request from the question bank only
func (qg *QuizGenerator) Fallback(req GenerationRequest) []Question {
	return qg.bank.Fallback(req.Topic, req.Difficulty, qg.boundCount(req.Count))
}

func (qg *QuizGenerator) generate(ctx context.Context, req GenerationRequest, logger *LLMLogger) ([]Question, error) {
	prompt := BuildPrompt(req.Topic, req.Difficulty, req.Count)
	if logger != nil {
		logger.LogLLMRequest(prompt)
	}

	raw, err := qg.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.LogLLMResponse(raw)
	}

	return ParseQuestions(raw)
}

func (qg *QuizGenerator) useFallback(quiz *Quiz, req GenerationRequest, logger *LLMLogger, reason string) {
	quiz.Questions = qg.bank.Fallback(req.Topic, req.Difficulty, req.Count)
	quiz.Source = SourceFallback
	if logger != nil {
		logger.LogOutcome(SourceFallback, len(quiz.Questions), reason)
	}
	VerboseLog("Quiz %s uses %d fallback questions (%s)", quiz.ID, len(quiz.Questions), reason)
}

func (qg *QuizGenerator) boundCount(count int) int {
	if count <= 0 {
		return qg.defaultQuestions
	}
	if count > qg.maxQuestions {
		return qg.maxQuestions
	}
	return count
}
