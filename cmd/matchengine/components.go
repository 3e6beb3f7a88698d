package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-match-engine/internal/embedding"
	"github.com/jonathan/cv-match-engine/internal/logger"
	"github.com/jonathan/cv-match-engine/internal/repository"
	"github.com/jonathan/cv-match-engine/internal/types"
)

var importCmd = &cobra.Command{
	Use:   "import-components",
	Short: "Import a user's component library from a JSON file",
	Long:  "Load CV components from a JSON file into the PostgreSQL store, embed any components missing vectors, and mirror the library into Qdrant when one is configured.",
	RunE:  runImportComponents,
}

var (
	importFile   string
	importUserID string
	importNoSync bool
)

func init() {
	importCmd.Flags().StringVarP(&importFile, "in", "i", "", "Path to JSON file holding an array of components (required)")
	importCmd.Flags().StringVarP(&importUserID, "user-id", "u", "", "User the components belong to (required)")
	importCmd.Flags().BoolVar(&importNoSync, "no-sync", false, "Skip mirroring embedded components into Qdrant")
	_ = importCmd.MarkFlagRequired("in")
	_ = importCmd.MarkFlagRequired("user-id")

	rootCmd.AddCommand(importCmd)
}

func runImportComponents(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	content, err := os.ReadFile(importFile)
	if err != nil {
		return fmt.Errorf("failed to read components file: %w", err)
	}

	var components []types.Component
	if err := json.Unmarshal(content, &components); err != nil {
		return fmt.Errorf("failed to parse components file: %w", err)
	}
	if len(components) == 0 {
		return fmt.Errorf("components file is empty")
	}
	for i, component := range components {
		if !component.Type.IsValid() {
			return fmt.Errorf("component %d has unknown type %q", i, component.Type)
		}
	}

	log, err := logger.New(flagLogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	apiKey, err := resolveAPIKey()
	if err != nil {
		return err
	}

	dbURL := flagDatabaseURL
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return fmt.Errorf("database URL is required (set DATABASE_URL environment variable or use --db-url flag)")
	}

	store, err := repository.Connect(ctx, dbURL)
	if err != nil {
		return err
	}
	defer store.Close()

	provider, err := embedding.NewGeminiProvider(ctx, apiKey, "")
	if err != nil {
		return err
	}
	defer func() { _ = provider.Close() }()

	for _, component := range components {
		if _, err := store.CreateComponent(ctx, importUserID, component); err != nil {
			return err
		}
	}
	fmt.Printf("Imported %d components for user %s\n", len(components), importUserID)

	if err := store.EnsureEmbeddings(ctx, importUserID, provider); err != nil {
		return fmt.Errorf("failed to embed components: %w", err)
	}
	fmt.Println("Embeddings are up to date")

	if importNoSync {
		return nil
	}

	qdrantURL := flagQdrantURL
	if qdrantURL == "" {
		qdrantURL = os.Getenv("QDRANT_URL")
	}
	if qdrantURL == "" {
		return nil
	}

	qdrantAPIKey := flagQdrantAPIKey
	if qdrantAPIKey == "" {
		qdrantAPIKey = os.Getenv("QDRANT_API_KEY")
	}

	repo, err := repository.NewQdrantRepository(qdrantURL, qdrantAPIKey, flagQdrantCollection, flagQdrantVectorSize)
	if err != nil {
		return err
	}
	if err := repo.InitCollection(ctx); err != nil {
		return err
	}

	stored, err := store.ListComponents(ctx, importUserID)
	if err != nil {
		return err
	}

	synced := 0
	for _, component := range stored {
		if len(component.Embedding) == 0 {
			continue
		}
		if err := repo.UpsertComponent(ctx, importUserID, component); err != nil {
			return err
		}
		synced++
	}
	fmt.Printf("Mirrored %d embedded components into Qdrant collection %s\n", synced, flagQdrantCollection)

	return nil
}
