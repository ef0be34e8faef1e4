package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Pushya04/Mental-Health-Chatbot/internal/chat"
	"github.com/Pushya04/Mental-Health-Chatbot/internal/classify"
	"github.com/Pushya04/Mental-Health-Chatbot/internal/config"
	"github.com/Pushya04/Mental-Health-Chatbot/internal/db"
	"github.com/Pushya04/Mental-Health-Chatbot/internal/interfaces"
	"github.com/Pushya04/Mental-Health-Chatbot/internal/model"
	"github.com/Pushya04/Mental-Health-Chatbot/server/handlers"
	"github.com/Pushya04/Mental-Health-Chatbot/server/middleware"
)

var version = "1.4.0"

func main() {
	// Load .env file if it exists
	loadEnvFile(".env")

	configPath := flag.String("config", config.GetConfigPath(), "Path to configuration file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	noWarmup := flag.Bool("no-warmup", false, "Skip the eager model load at startup")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("EmpaTalk v%s\n", version)
		fmt.Println("Local chat-inference service for mental-health support")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	fmt.Printf("EmpaTalk v%s\n", version)
	fmt.Printf("Default model: %s\n", cfg.ModelName)
	fmt.Println()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	store := model.NewONNXStore(cfg.MaxInputTokens+cfg.MaxNewTokens, cfg.NumThreads)
	registry := model.NewRegistry(store)
	svc := chat.NewService(registry, cfg.ModelName, cfg.GenDefaults(), cfg.MaxInputTokens)

	// Classifier models are optional; without them the API falls back to
	// keyword rules.
	var classifier interfaces.TextClassifier
	alert := classify.NewClassifier(cfg.ClassifierDir)
	if err := alert.Load(); err != nil {
		log.Printf("Warning: classifier unavailable, using keyword rules: %v", err)
	} else {
		classifier = alert
		defer alert.Close()
	}

	// Warm-up is best effort: a failure here is logged and the load retried
	// lazily on the first real request.
	if !*noWarmup {
		start := time.Now()
		if err := svc.Warmup(context.Background()); err != nil {
			log.Printf("Warm-up skipped: %v", err)
		} else {
			log.Printf("Warm-up done in %s", time.Since(start).Round(time.Millisecond))
		}
	}

	h := handlers.New(svc, classifier, database)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/generate", h.Generate)
	mux.HandleFunc("/classify", h.Classify)
	mux.HandleFunc("/history", h.History)

	rateLimiter := middleware.NewRateLimiter(60, 1*time.Minute)

	fmt.Printf("✓ Server ready at http://localhost%s\n", cfg.ListenAddr)
	fmt.Println("  - Health: /health")
	fmt.Println("  - Generate: POST /generate")
	fmt.Println("  - Classify: POST /classify")
	fmt.Println()

	if err := http.ListenAndServe(cfg.ListenAddr, rateLimiter.Limit(mux)); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadEnvFile loads environment variables from a .env file
func loadEnvFile(filename string) {
	file, err := os.Open(filename)
	if err != nil {
		// .env file is optional, silently continue if not found
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), "\"'")

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
