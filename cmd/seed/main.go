package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"mynth/internal/config"
	"mynth/internal/domain/models"
	"mynth/internal/domain/services"
	"mynth/internal/repository/postgres"
	"mynth/internal/service"
	"mynth/internal/uuidv7"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: cannot run --drop-tables in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Printf("Dropping tables (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	log.Printf("Schema ready (prefix: %s)", cfg.TablePrefix)

	if *schemaOnly {
		return
	}

	// Wire the services and seed a demo workspace
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
	idGen := uuidv7.New()

	workspaceService := service.NewWorkspaceService(workspaceRepo, idGen, logger)
	treeService := service.NewTreeService(workspaceRepo, folderRepo, chatRepo, txManager, idGen, logger)
	threadService := service.NewThreadService(chatRepo, messageRepo, logger)

	if err := seedDemoData(ctx, workspaceService, treeService, threadService, idGen); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}

	log.Printf("Demo data seeded")
}

// seedDemoData creates one workspace with a small folder tree, a chat in
// each spot, and a short branched conversation.
func seedDemoData(
	ctx context.Context,
	workspaceService services.WorkspaceService,
	treeService services.TreeService,
	threadService services.ThreadService,
	idGen *uuidv7.Generator,
) error {
	workspace, err := workspaceService.CreateWorkspace(ctx, &services.CreateWorkspaceRequest{
		Name: "Demo Workspace",
	})
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	projects, err := treeService.CreateFolder(ctx, &services.CreateFolderRequest{
		WorkspaceID: workspace.ID,
		Name:        "Projects",
	})
	if err != nil {
		return fmt.Errorf("create folder: %w", err)
	}

	drafts, err := treeService.CreateFolder(ctx, &services.CreateFolderRequest{
		WorkspaceID: workspace.ID,
		Name:        "Drafts",
		ParentID:    &projects.ID,
	})
	if err != nil {
		return fmt.Errorf("create folder: %w", err)
	}

	if _, err := treeService.CreateChat(ctx, &services.CreateChatRequest{
		WorkspaceID: workspace.ID,
		Title:       "Scratch pad",
	}); err != nil {
		return fmt.Errorf("create chat: %w", err)
	}

	chat, err := treeService.CreateChat(ctx, &services.CreateChatRequest{
		WorkspaceID: workspace.ID,
		Title:       "Brainstorm",
		FolderID:    &drafts.ID,
	})
	if err != nil {
		return fmt.Errorf("create chat: %w", err)
	}

	// A three-message thread with one regenerated branch under the root.
	rootID, err := idGen.NextString()
	if err != nil {
		return err
	}
	root, err := threadService.UpsertMessage(ctx, &services.UpsertMessageRequest{
		ID:     rootID,
		ChatID: chat.ID,
		Role:   models.RoleUser,
		Parts:  []map[string]interface{}{{"type": "text", "text": "Give me three name ideas."}},
	})
	if err != nil {
		return fmt.Errorf("upsert message: %w", err)
	}

	for _, text := range []string{"First attempt.", "Second, better attempt."} {
		id, err := idGen.NextString()
		if err != nil {
			return err
		}
		if _, err := threadService.UpsertMessage(ctx, &services.UpsertMessageRequest{
			ID:       id,
			ChatID:   chat.ID,
			ParentID: &root.ID,
			Role:     models.RoleAssistant,
			Parts:    []map[string]interface{}{{"type": "text", "text": text}},
		}); err != nil {
			return fmt.Errorf("upsert message: %w", err)
		}
	}

	return nil
}
