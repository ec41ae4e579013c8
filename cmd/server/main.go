package main

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"mentorspractice/internal/assessment"
	"mentorspractice/internal/audio"
	"mentorspractice/internal/config"
	"mentorspractice/internal/database"
	"mentorspractice/internal/handlers"
	"mentorspractice/internal/limit"
	"mentorspractice/internal/security"
	"mentorspractice/internal/service"
	"mentorspractice/internal/speech"
	"mentorspractice/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Load templates
	templates, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	log.Println("Templates loaded successfully")

	// Initialize services
	store := storage.NewDBStore(db)
	limiter := limit.NewDailyLimiter(store, cfg.DailySubmissionLimit)
	backend := assessment.New(cfg.BackendBaseURL)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.LeadToEmail)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	if !emailService.IsEnabled() {
		log.Println("Lead email notifications disabled (SES_FROM_EMAIL not set)")
	}

	identityService := service.NewIdentityService(store, emailService)
	practiceService := service.NewPracticeService(backend, limiter, identityService)
	chatService := service.NewChatService(backend, 30*time.Minute)
	speechHub := speech.NewSessionHub(30 * time.Minute)
	ttsService := audio.NewTTSService(filepath.Join(cfg.StaticFilesPath, "audio"))

	// Initialize handlers
	visitorTokens := security.NewVisitorTokens(cfg.VisitorTokenSecret, cfg.VisitorTokenTTL)
	rateLimiter := security.NewRateLimiter(20, time.Minute)
	csrf := security.NewCSRFGenerator(cfg.VisitorTokenSecret)

	middleware := handlers.NewMiddleware(visitorTokens, rateLimiter, cfg.VisitorTokenTTL)
	practiceHandler := handlers.NewPracticeHandler(practiceService, identityService, csrf, templates)
	speechHandler := handlers.NewSpeechHandler(speechHub)
	chatHandler := handlers.NewChatHandler(chatService, templates)
	audioHandler := handlers.NewAudioHandler(ttsService)

	// Setup routes
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))

	// Pages
	mux.HandleFunc("GET /{$}", middleware.WithVisitor(practiceHandler.Home))
	mux.HandleFunc("GET /writing", middleware.WithVisitor(practiceHandler.ShowWriting))
	mux.HandleFunc("GET /speaking", middleware.WithVisitor(practiceHandler.ShowSpeaking))
	mux.HandleFunc("POST /identity", middleware.WithVisitor(middleware.RateLimit(practiceHandler.SaveIdentity)))

	// Submission
	mux.HandleFunc("POST /writing/submit", middleware.WithVisitor(middleware.RateLimit(practiceHandler.SubmitWriting)))
	mux.HandleFunc("POST /speaking/submit", middleware.WithVisitor(middleware.RateLimit(practiceHandler.SubmitSpeaking)))

	// Speech capture relay
	mux.HandleFunc("POST /speaking/recording/start", middleware.WithVisitor(speechHandler.StartRecording))
	mux.HandleFunc("POST /speaking/recording/result", middleware.WithVisitor(speechHandler.RecordingResult))
	mux.HandleFunc("POST /speaking/recording/ended", middleware.WithVisitor(speechHandler.RecordingEnded))
	mux.HandleFunc("POST /speaking/recording/error", middleware.WithVisitor(speechHandler.RecordingError))
	mux.HandleFunc("POST /speaking/recording/stop", middleware.WithVisitor(speechHandler.StopRecording))

	// Chat widget
	mux.HandleFunc("GET /chat", middleware.WithVisitor(chatHandler.ShowWidget))
	mux.HandleFunc("POST /chat/category", middleware.WithVisitor(chatHandler.SelectCategory))
	mux.HandleFunc("POST /chat/message", middleware.WithVisitor(middleware.RateLimit(chatHandler.SendMessage)))
	mux.HandleFunc("POST /chat/back", middleware.WithVisitor(chatHandler.Back))

	// Feedback audio playback
	mux.HandleFunc("POST /feedback/audio", middleware.WithVisitor(middleware.RateLimit(audioHandler.FeedbackAudio)))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupStaleSessions(speechHub, chatService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// loadTemplates loads all template files
func loadTemplates(templatesPath string) (*template.Template, error) {
	patterns := []string{
		filepath.Join(templatesPath, "*.tmpl"),
		filepath.Join(templatesPath, "components/*.tmpl"),
	}

	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}

	tmpl, err := template.New("").ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return tmpl, nil
}

// cleanupStaleSessions periodically drops abandoned speech and chat sessions
func cleanupStaleSessions(hub *speech.SessionHub, chatService *service.ChatService) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		if n := hub.CleanupStale(); n > 0 {
			log.Printf("Cleaned up %d stale recording sessions", n)
		}
		if n := chatService.CleanupStale(); n > 0 {
			log.Printf("Cleaned up %d stale chat sessions", n)
		}
	}
}
