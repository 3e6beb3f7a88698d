package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/cv-match-engine/internal/embedding"
	"github.com/jonathan/cv-match-engine/internal/types"
)

// Store wraps a PostgreSQL connection pool holding user component
// libraries. Embeddings are cached on the component row and cleared
// whenever the embedded text changes.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// CreateComponent inserts a component for a user and returns its ID.
func (s *Store) CreateComponent(ctx context.Context, userID string, component types.Component) (string, error) {
	if component.ID == "" {
		component.ID = uuid.NewString()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO components (id, user_id, type, title, organization, description, highlights, start_date, end_date, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		component.ID, userID, string(component.Type), component.Title,
		nullable(component.Organization), nullable(component.Description),
		component.Highlights, component.StartDate, component.EndDate, component.Embedding,
	)
	if err != nil {
		return "", &Error{Op: "create component", Cause: err}
	}
	return component.ID, nil
}

// UpdateComponent updates a user's component. The cached embedding is
// cleared when title, description, or organization changed, forcing a lazy
// recomputation on the next search.
func (s *Store) UpdateComponent(ctx context.Context, userID string, component types.Component) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE components SET
		   embedding = CASE
		     WHEN title IS DISTINCT FROM $4
		       OR description IS DISTINCT FROM $6
		       OR organization IS DISTINCT FROM $5
		     THEN NULL ELSE embedding END,
		   type = $3, title = $4, organization = $5, description = $6,
		   highlights = $7, start_date = $8, end_date = $9, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2`,
		component.ID, userID, string(component.Type), component.Title,
		nullable(component.Organization), nullable(component.Description),
		component.Highlights, component.StartDate, component.EndDate,
	)
	if err != nil {
		return &Error{Op: "update component", Cause: err}
	}
	if tag.RowsAffected() == 0 {
		return &Error{Op: "update component", Cause: fmt.Errorf("component %s not found", component.ID)}
	}
	return nil
}

// DeleteComponent removes a user's component.
func (s *Store) DeleteComponent(ctx context.Context, userID, componentID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM components WHERE id = $1 AND user_id = $2`,
		componentID, userID,
	)
	if err != nil {
		return &Error{Op: "delete component", Cause: err}
	}
	return nil
}

// ListComponents returns all components owned by a user.
func (s *Store) ListComponents(ctx context.Context, userID string) ([]types.Component, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, type, title, COALESCE(organization, ''), COALESCE(description, ''),
		        COALESCE(highlights, '{}'), start_date, end_date, embedding
		 FROM components
		 WHERE user_id = $1
		 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, &Error{Op: "list components", Cause: err}
	}
	defer rows.Close()

	var components []types.Component
	for rows.Next() {
		var c types.Component
		var typ string
		if err := rows.Scan(&c.ID, &typ, &c.Title, &c.Organization, &c.Description,
			&c.Highlights, &c.StartDate, &c.EndDate, &c.Embedding); err != nil {
			return nil, &Error{Op: "list components", Cause: err}
		}
		c.Type = types.ComponentType(typ)
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "list components", Cause: err}
	}

	return components, nil
}

// SaveEmbedding caches a computed embedding on a component row.
func (s *Store) SaveEmbedding(ctx context.Context, componentID string, vector []float32) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE components SET embedding = $2, updated_at = NOW() WHERE id = $1`,
		componentID, vector,
	)
	if err != nil {
		return &Error{Op: "save embedding", Cause: err}
	}
	return nil
}

// EnsureEmbeddings lazily computes and caches embeddings for every
// component of a user that lacks one, in a single batched provider call.
func (s *Store) EnsureEmbeddings(ctx context.Context, userID string, provider embedding.Provider) error {
	components, err := s.ListComponents(ctx, userID)
	if err != nil {
		return err
	}

	var pending []types.Component
	for _, c := range components {
		if len(c.Embedding) == 0 {
			pending = append(pending, c)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	texts := make([]string, len(pending))
	for i, c := range pending {
		texts[i] = c.EmbeddingText()
	}

	vectors, err := provider.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}

	for i, c := range pending {
		if err := s.SaveEmbedding(ctx, c.ID, vectors[i]); err != nil {
			return err
		}
	}
	return nil
}

// SimilaritySearch implements ComponentRepository by ranking the user's
// embedded components by cosine similarity against the query vector.
// Components without a cached embedding are skipped.
func (s *Store) SimilaritySearch(ctx context.Context, userID string, vector []float32, topK int) ([]Match, error) {
	components, err := s.ListComponents(ctx, userID)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(components))
	for _, c := range components {
		if len(c.Embedding) == 0 {
			continue
		}
		sim, err := embedding.CosineSimilarity(vector, c.Embedding)
		if err != nil {
			return nil, &Error{Op: "similarity search", Cause: err}
		}
		matches = append(matches, Match{Component: c, Similarity: sim})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}

	return matches, nil
}

// GetComponent returns a single component owned by a user.
func (s *Store) GetComponent(ctx context.Context, userID, componentID string) (*types.Component, error) {
	var c types.Component
	var typ string
	err := s.pool.QueryRow(ctx,
		`SELECT id, type, title, COALESCE(organization, ''), COALESCE(description, ''),
		        COALESCE(highlights, '{}'), start_date, end_date, embedding
		 FROM components
		 WHERE id = $1 AND user_id = $2`,
		componentID, userID,
	).Scan(&c.ID, &typ, &c.Title, &c.Organization, &c.Description,
		&c.Highlights, &c.StartDate, &c.EndDate, &c.Embedding)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &Error{Op: "get component", Cause: fmt.Errorf("component %s not found", componentID)}
		}
		return nil, &Error{Op: "get component", Cause: err}
	}
	c.Type = types.ComponentType(typ)
	return &c, nil
}

// nullable maps an empty string to NULL for nullable text columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
