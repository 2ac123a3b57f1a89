package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"interviewquiz"

	"github.com/golang/glog"
)

func main() {
	port := flag.String("port", "", "Port to listen on (overrides PORT)")
	dbPath := flag.String("db", "", "SQLite database path (overrides QUIZ_DB_PATH)")
	staticDir := flag.String("static", "", "Directory of static files to serve at /")
	llmLogDir := flag.String("llm-log-dir", "", "Directory for per-quiz LLM transcripts (overrides QUIZ_LLM_LOG_DIR)")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	flag.Parse()
	flag.Set("logtostderr", "true")
	interviewquiz.SetVerbose(*verbose)

	cfg := interviewquiz.LoadConfig()
	if *port != "" {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	if *llmLogDir != "" {
		cfg.LLMLogDir = *llmLogDir
	}

	db, err := interviewquiz.OpenDB(cfg.DatabasePath)
	if err != nil {
		glog.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	bank, err := interviewquiz.LoadQuestionBank()
	if err != nil {
		glog.Fatalf("Failed to load question bank: %v", err)
	}
	if cfg.ShuffleFallback {
		bank = bank.WithRandomShuffle()
	}

	var cache interviewquiz.StatsCache
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := interviewquiz.NewRedisStatsCache(ctx, cfg.RedisAddr)
		cancel()
		if err != nil {
			glog.Errorf("Redis at %s unavailable, stats cache disabled: %v", cfg.RedisAddr, err)
		} else {
			defer redisCache.Close()
			cache = redisCache
			glog.Infof("Stats cache enabled at %s", cfg.RedisAddr)
		}
	}

	if !cfg.SMTP.Configured() {
		glog.Warning("EMAIL_USER is not set, /api/send-results will fail")
	}

	server, err := NewServer(cfg, db, bank, cache, interviewquiz.NewSMTPMailer(cfg.SMTP))
	if err != nil {
		glog.Fatalf("Refusing to start: %v", err)
	}
	server.staticDir = *staticDir
	if len(cfg.AllowedOrigins) == 0 {
		glog.Info("CORS_ALLOWED_ORIGINS is empty, cross-origin requests get no CORS headers")
	}

	glog.Infof("Starting server on port %s", cfg.Port)
	glog.Fatal(http.ListenAndServe(":"+cfg.Port, server.Handler()))
}
