package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"mynth/internal/config"
	"mynth/internal/handler"
	"mynth/internal/middleware"
	"mynth/internal/repository/postgres"
	"mynth/internal/service"
	"mynth/internal/uuidv7"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	// Log to stdout, plus a rotating file when LOG_DIR is set
	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 5)
		if err != nil {
			log.Printf("warning: file logging disabled: %v", err)
		} else {
			defer logFile.Close()
			logOut = io.MultiWriter(os.Stdout, logFile)
		}
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Ensure schema exists
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	workspaceRepo := postgres.NewWorkspaceRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	chatRepo := postgres.NewChatRepository(repoConfig)
	messageRepo := postgres.NewMessageRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Monotonic time-ordered id generator, shared by every service
	idGen := uuidv7.New()

	// Create services
	workspaceService := service.NewWorkspaceService(workspaceRepo, idGen, logger)
	treeService := service.NewTreeService(workspaceRepo, folderRepo, chatRepo, txManager, idGen, logger)
	threadService := service.NewThreadService(chatRepo, messageRepo, logger)

	// Create handlers
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService, logger)
	treeHandler := handler.NewTreeHandler(treeService, logger)
	messageHandler := handler.NewMessageHandler(threadService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", workspaceHandler.HealthCheck)

	// Workspace routes
	mux.HandleFunc("GET /api/workspaces", workspaceHandler.ListWorkspaces)
	mux.HandleFunc("POST /api/workspaces", workspaceHandler.CreateWorkspace)
	mux.HandleFunc("GET /api/workspaces/{id}", workspaceHandler.GetWorkspace)

	// Tree routes
	mux.HandleFunc("GET /api/workspaces/{id}/tree", treeHandler.GetTree)
	mux.HandleFunc("GET /api/workspaces/{id}/children", treeHandler.GetChildren)
	mux.HandleFunc("GET /api/workspaces/{id}/tree-state", treeHandler.GetTreeUIState)
	mux.HandleFunc("PUT /api/workspaces/{id}/tree-state", treeHandler.SetTreeUIState)

	// Folder routes
	mux.HandleFunc("POST /api/folders", treeHandler.CreateFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", treeHandler.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", treeHandler.DeleteFolder)

	// Chat routes
	mux.HandleFunc("POST /api/chats", treeHandler.CreateChat)
	mux.HandleFunc("GET /api/chats/{id}", treeHandler.GetChat)
	mux.HandleFunc("PATCH /api/chats/{id}", treeHandler.UpdateChat)
	mux.HandleFunc("DELETE /api/chats/{id}", treeHandler.DeleteChat)

	// Message routes
	mux.HandleFunc("GET /api/chats/{id}/messages", messageHandler.ListMessages)
	mux.HandleFunc("PUT /api/messages/{id}", messageHandler.UpsertMessage)

	// Build middleware chain
	var httpHandler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → RequestLog → Routes
	httpHandler = middleware.RequestLog(idGen, logger)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
