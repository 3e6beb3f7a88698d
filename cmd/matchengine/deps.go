package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jonathan/cv-match-engine/internal/config"
	"github.com/jonathan/cv-match-engine/internal/decomposer"
	"github.com/jonathan/cv-match-engine/internal/embedding"
	"github.com/jonathan/cv-match-engine/internal/ingestion"
	"github.com/jonathan/cv-match-engine/internal/logger"
	"github.com/jonathan/cv-match-engine/internal/repository"
)

// Global flags shared by the engine commands.
var (
	flagConfigFile string
	flagAPIKey     string
	flagLogLevel   string

	flagQdrantURL        string
	flagQdrantAPIKey     string
	flagQdrantCollection string
	flagQdrantVectorSize uint64
	flagDatabaseURL      string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfigFile, "config", "", "Path to engine config JSON file (optional)")
	pf.StringVar(&flagAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagQdrantURL, "qdrant-url", "", "Qdrant URL (overrides QDRANT_URL env var)")
	pf.StringVar(&flagQdrantAPIKey, "qdrant-api-key", "", "Qdrant API key (overrides QDRANT_API_KEY env var)")
	pf.StringVar(&flagQdrantCollection, "collection", "cv_components", "Qdrant collection name")
	pf.Uint64Var(&flagQdrantVectorSize, "vector-size", 768, "Embedding vector dimensionality")
	pf.StringVar(&flagDatabaseURL, "db-url", "", "PostgreSQL URL (overrides DATABASE_URL env var)")
}

func resolveAPIKey() (string, error) {
	apiKey := flagAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return "", fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}
	return apiKey, nil
}

func loadEngineConfig() (config.Engine, error) {
	if flagConfigFile == "" {
		return config.Default(), nil
	}
	return config.Load(flagConfigFile)
}

// engineDeps bundles the external collaborators an engine command needs.
type engineDeps struct {
	cfg      config.Engine
	log      *zap.Logger
	embedder *embedding.GeminiProvider
	dec      *decomposer.GeminiDecomposer
	repo     repository.ComponentRepository

	store *repository.Store
}

func (d *engineDeps) close() {
	if d.embedder != nil {
		_ = d.embedder.Close()
	}
	if d.dec != nil {
		_ = d.dec.Close()
	}
	if d.store != nil {
		d.store.Close()
	}
	if d.log != nil {
		_ = d.log.Sync()
	}
}

// buildDeps constructs the embedder, decomposer and component repository
// from flags and environment. Qdrant is preferred when configured; the
// PostgreSQL store is the fallback so a single database can serve both the
// component library and similarity search.
func buildDeps(ctx context.Context) (*engineDeps, error) {
	cfg, err := loadEngineConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(flagLogLevel)
	if err != nil {
		return nil, err
	}

	apiKey, err := resolveAPIKey()
	if err != nil {
		return nil, err
	}

	deps := &engineDeps{cfg: cfg, log: log}

	deps.embedder, err = embedding.NewGeminiProvider(ctx, apiKey, "")
	if err != nil {
		deps.close()
		return nil, err
	}

	deps.dec, err = decomposer.NewGeminiDecomposer(ctx, apiKey, "", log)
	if err != nil {
		deps.close()
		return nil, err
	}

	deps.repo, err = buildRepository(ctx, deps)
	if err != nil {
		deps.close()
		return nil, err
	}

	return deps, nil
}

func buildRepository(ctx context.Context, deps *engineDeps) (repository.ComponentRepository, error) {
	qdrantURL := flagQdrantURL
	if qdrantURL == "" {
		qdrantURL = os.Getenv("QDRANT_URL")
	}
	if qdrantURL != "" {
		apiKey := flagQdrantAPIKey
		if apiKey == "" {
			apiKey = os.Getenv("QDRANT_API_KEY")
		}
		repo, err := repository.NewQdrantRepository(qdrantURL, apiKey, flagQdrantCollection, flagQdrantVectorSize)
		if err != nil {
			return nil, err
		}
		if err := repo.InitCollection(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	}

	dbURL := flagDatabaseURL
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return nil, fmt.Errorf("component repository is required (set QDRANT_URL or DATABASE_URL, or use --qdrant-url/--db-url)")
	}

	store, err := repository.Connect(ctx, dbURL)
	if err != nil {
		return nil, err
	}
	deps.store = store
	return store, nil
}

// readJobDescription loads the job description text from a local file or
// fetches and extracts it from a job posting URL.
func readJobDescription(ctx context.Context, path, url string) (string, error) {
	if path != "" && url != "" {
		return "", fmt.Errorf("cannot use --jd with --jd-url")
	}

	switch {
	case path != "":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read job description file: %w", err)
		}
		return string(content), nil
	case url != "":
		return ingestion.FetchJobPosting(ctx, url)
	default:
		return "", fmt.Errorf("must provide either --jd or --jd-url")
	}
}
