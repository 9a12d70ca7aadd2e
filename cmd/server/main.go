package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"core/internal/config"
	"core/internal/engine"
	"core/internal/handler"
	"core/internal/repository"
	"core/internal/rulestore"
	"core/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	log.Printf("Quality Inspection Assistant")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	log.Println("✅ Connected to PostgreSQL database")

	// Load the initial rule snapshot and start the scheduled reload
	store := rulestore.New(repo)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := store.Load(ctx); err != nil {
		log.Fatalf("Failed to load rule snapshot: %v", err)
	}
	go store.Run(ctx, time.Duration(cfg.Assistant.ReloadIntervalSeconds)*time.Second)

	// Initialize the fallback LLM client
	var aiClient *service.OpenAIClient
	if cfg.OpenAI.Enabled {
		aiClient = service.NewOpenAIClient(&cfg.OpenAI)
		log.Printf("✅ Fallback LLM client initialized")
		log.Printf("   - API Base: %s", cfg.OpenAI.APIBase)
		log.Printf("   - Chat model: %s", cfg.OpenAI.ChatModel)
	} else {
		log.Println("⚠️  Fallback LLM is disabled - unmatched questions get a canned reply")
		log.Println("   Set OPENAI_API_KEY environment variable to enable it")
	}

	// Initialize services
	executor := engine.NewExecutor(repo, time.Duration(cfg.Assistant.QueryTimeoutSeconds)*time.Second)
	assistant := service.NewAssistant(store, executor, aiClient, repo)

	log.Println("✅ Services initialized")

	// Initialize handlers
	chatHandler := handler.NewChatHandler(assistant)
	rulesHandler := handler.NewRulesHandler(store)
	embeddingHandler := handler.NewEmbeddingHandler(repo, cfg.Assistant.EmbeddingDimensions)
	feedbackHandler := handler.NewFeedbackHandler(repo)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "quality-inspection-assistant",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Assistant endpoint
		apiV1.POST("/chat", chatHandler.Ask)

		// Rule snapshot endpoints
		apiV1.GET("/rules", rulesHandler.List)
		apiV1.POST("/rules/reload", rulesHandler.Reload)

		// Embedding endpoints
		apiV1.POST("/embeddings/batch", embeddingHandler.BatchUpdate)

		// Feedback endpoint
		apiV1.POST("/feedback", feedbackHandler.Submit)
	}

	// Serve static files (dashboard frontend)
	// Implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API: http://localhost:%d/api/v1", cfg.Server.Port)

	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}
