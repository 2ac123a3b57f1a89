package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"interviewquiz"

	"github.com/golang/glog"
)

func main() {
	var (
		topic        = flag.String("topic", interviewquiz.DefaultTopic, "Quiz topic")
		difficulty   = flag.String("difficulty", interviewquiz.DefaultDifficulty, "Difficulty level (beginner, easy, intermediate, advanced)")
		numQuestions = flag.Int("questions", interviewquiz.DefaultQuizQuestions, "Number of questions to generate")
		outputFile   = flag.String("output", "", "Output file for quiz JSON (default: stdout)")
		apiKey       = flag.String("api-key", "", "Groq API key (or set GROQ_API_KEY env var)")
		clearKey     = flag.Bool("clear-key", false, "Remove the saved API key and exit")
		listTopics   = flag.Bool("list-topics", false, "List the available topics and exit")
		playMode     = flag.Bool("play", false, "Play the quiz interactively")
		userID       = flag.String("user", "", "User id to record the played attempt for")
		dbPath       = flag.String("db", "", "SQLite database path for recorded attempts (overrides QUIZ_DB_PATH)")
		verbose      = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()
	flag.Set("logtostderr", "true")
	interviewquiz.SetVerbose(*verbose)

	keyFile := interviewquiz.DefaultAPIKeyFile()
	if *clearKey {
		if err := interviewquiz.ClearAPIKey(keyFile); err != nil {
			glog.Fatalf("%v", err)
		}
		fmt.Println("Saved API key removed")
		return
	}

	if *listTopics {
		for _, t := range interviewquiz.AvailableTopics() {
			fmt.Printf("%-16s %s\n", t.ID, t.Name)
		}
		return
	}

	cfg := interviewquiz.LoadConfig()
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	// One scanner owns stdin so the key prompt cannot swallow quiz answers
	stdin := bufio.NewScanner(os.Stdin)
	source := interviewquiz.APIKeySource{
		Flag:    *apiKey,
		Env:     cfg.APIKey,
		KeyFile: keyFile,
		Out:     os.Stdout,
	}
	if *playMode {
		source.Prompt = stdin
	}
	cfg.APIKey = source.Resolve()

	bank, err := interviewquiz.LoadQuestionBank()
	if err != nil {
		glog.Fatalf("Failed to load question bank: %v", err)
	}
	if cfg.ShuffleFallback {
		bank = bank.WithRandomShuffle()
	}
	generator := interviewquiz.NewQuizGenerator(cfg, bank)

	req := interviewquiz.GenerationRequest{
		Topic:      *topic,
		Difficulty: *difficulty,
		Count:      *numQuestions,
	}

	interviewquiz.VerboseLog("Starting quiz generation for topic: %s", req.Topic)
	interviewquiz.VerboseLog("Target questions: %d, Difficulty: %s", req.Count, req.Difficulty)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *playMode {
		fmt.Println("Generating questions... (this may take a moment)")
		quiz := generator.GenerateQuiz(ctx, req)
		started := time.Now()
		result := playQuiz(stdin, os.Stdout, quiz)
		result.TimeSpent = int(time.Since(started).Seconds())

		if *userID != "" {
			if err := recordAttempt(ctx, cfg.DatabasePath, *userID, result); err != nil {
				glog.Fatalf("Failed to record attempt: %v", err)
			}
		}
		return
	}

	quiz := generator.GenerateQuiz(ctx, req)
	output, err := json.MarshalIndent(quiz, "", "  ")
	if err != nil {
		glog.Fatalf("Failed to marshal quiz: %v", err)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			glog.Fatalf("Failed to write output file: %v", err)
		}
		glog.Infof("Quiz saved to: %s", *outputFile)
	} else {
		fmt.Println(string(output))
	}

	interviewquiz.VerboseLog("Quiz generation completed with %d %s questions", len(quiz.Questions), quiz.Source)
}

var optionLetters = []string{"A", "B", "C", "D"}

// playQuiz asks every question on out, reads answers from in and scores them.
// An exhausted input leaves the remaining questions unanswered.
func playQuiz(in *bufio.Scanner, out io.Writer, quiz *interviewquiz.Quiz) interviewquiz.AttemptInput {
	result := interviewquiz.AttemptInput{
		Topic:          quiz.Topic,
		Difficulty:     quiz.Difficulty,
		Questions:      quiz.Questions,
		Answers:        make([]int, 0, len(quiz.Questions)),
		TotalQuestions: len(quiz.Questions),
	}

	fmt.Fprintf(out, "Quiz on %s (%s), %d questions\n\n", quiz.Topic, quiz.Difficulty, len(quiz.Questions))

	for i, question := range quiz.Questions {
		fmt.Fprintf(out, "Question %d/%d:\n%s\n\n", i+1, len(quiz.Questions), question.Text)
		for j, option := range question.Options {
			fmt.Fprintf(out, "%s) %s\n", optionLetters[j], option)
		}
		fmt.Fprintln(out)

		answer := readAnswer(in, out)
		result.Answers = append(result.Answers, answer)

		correct := question.CorrectAnswer
		switch {
		case answer == correct:
			result.Score++
			fmt.Fprintln(out, "Correct!")
		case answer < 0:
			fmt.Fprintf(out, "Skipped. The correct answer is %s) %s\n", optionLetters[correct], question.Options[correct])
		default:
			fmt.Fprintf(out, "Incorrect. The correct answer is %s) %s\n", optionLetters[correct], question.Options[correct])
		}
		if question.Explanation != "" {
			fmt.Fprintf(out, "Explanation: %s\n", question.Explanation)
		}
		fmt.Fprintf(out, "\n%s\n\n", strings.Repeat("-", 50))
	}

	percentage := interviewquiz.Percentage(result.Score, result.TotalQuestions)
	fmt.Fprintf(out, "Quiz completed! Score: %d/%d (%d%%)\n", result.Score, result.TotalQuestions, percentage)
	switch {
	case percentage >= 80:
		fmt.Fprintln(out, "Excellent work!")
	case percentage >= 60:
		fmt.Fprintln(out, "Good job!")
	default:
		fmt.Fprintln(out, "Keep studying!")
	}
	return result
}

// readAnswer returns 0-3 for A-D, or -1 when input ran out
func readAnswer(scanner *bufio.Scanner, out io.Writer) int {
	for {
		fmt.Fprint(out, "Your answer (A/B/C/D): ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return -1
		}
		answer := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if idx := strings.Index("ABCD", answer); len(answer) == 1 && idx >= 0 {
			return idx
		}
		fmt.Fprintln(out, "Please enter A, B, C, or D")
	}
}

func recordAttempt(ctx context.Context, dbPath, userID string, result interviewquiz.AttemptInput) error {
	db, err := interviewquiz.OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	attemptID, err := interviewquiz.NewAttemptRecorder(db, nil).RecordAttempt(ctx, userID, result)
	if attemptID != "" {
		fmt.Printf("Attempt %s saved for user %s\n", attemptID, userID)
	}
	if err != nil {
		return err
	}

	stats, _, err := interviewquiz.NewStatsReader(db, nil).GetStats(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Printf("Quizzes taken: %d, average score: %.2f\n", stats.QuizzesTaken, stats.AverageScore)
	return nil
}
