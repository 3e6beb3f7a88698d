// Package optimizer computes similarity-weighted match scores between a
// user's component library and a job description, with a single-flight
// TTL cache in front of the expensive embedding and retrieval work.
package optimizer

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/cv-match-engine/internal/config"
	"github.com/jonathan/cv-match-engine/internal/decomposer"
	"github.com/jonathan/cv-match-engine/internal/embedding"
	"github.com/jonathan/cv-match-engine/internal/logger"
	"github.com/jonathan/cv-match-engine/internal/repository"
	"github.com/jonathan/cv-match-engine/internal/types"
)

var validate = validator.New()

// Options controls one optimized match score computation.
type Options struct {
	// UseCache enables the fingerprint cache read. A computation always
	// writes its result regardless.
	UseCache bool
	// TopK caps the per-category retrieval. Zero selects the configured
	// default.
	TopK int
}

// DefaultOptions returns the standard options: cache enabled, configured
// topK.
func DefaultOptions() Options {
	return Options{UseCache: true}
}

// scoreRequest is the validated shape of one calculate call.
type scoreRequest struct {
	UserID         string `validate:"required"`
	JobDescription string `validate:"required"`
	TopK           int    `validate:"gte=1,lte=500"`
}

// Optimizer orchestrates decomposition, embedding, retrieval and weighted
// aggregation for a (user, job description) pair.
type Optimizer struct {
	embedder embedding.Provider
	repo     repository.ComponentRepository
	dec      decomposer.Decomposer
	cfg      config.Engine
	cache    *resultCache
	group    singleflight.Group
	log      *zap.Logger
}

// New creates an optimizer. The logger may be nil.
func New(
	embedder embedding.Provider,
	repo repository.ComponentRepository,
	dec decomposer.Decomposer,
	cfg config.Engine,
	log *zap.Logger,
) *Optimizer {
	return &Optimizer{
		embedder: embedder,
		repo:     repo,
		dec:      dec,
		cfg:      cfg,
		cache:    newResultCache(cfg.CacheTTL),
		log:      logger.OrNop(log),
	}
}

// CalculateOptimizedMatchScore produces the overall score, per-category
// breakdown, missing skills and suggestions for a user against a job
// description. Concurrent calls sharing a fingerprint coalesce into one
// computation; cache hits perform no embedding or retrieval work.
func (o *Optimizer) CalculateOptimizedMatchScore(ctx context.Context, userID, jobDescription string, opts Options) (*types.OptimizedMatchScore, error) {
	if opts.TopK == 0 {
		opts.TopK = o.cfg.TopK
	}

	req := scoreRequest{UserID: userID, JobDescription: jobDescription, TopK: opts.TopK}
	if err := validate.Struct(req); err != nil {
		return nil, requestValidationError(err)
	}

	fingerprint := Fingerprint(userID, jobDescription, opts.TopK)
	log := o.log.With(zap.String("user_id", userID), zap.String("fingerprint", fingerprint[:12]))

	if opts.UseCache {
		if score, ok := o.cache.get(fingerprint); ok {
			log.Debug("cache hit")
			return score, nil
		}
		log.Debug("cache miss")
	}

	// All computations go through the single-flight group so concurrent
	// requests for the same fingerprint share one embedding/retrieval
	// pass. The computation is detached from this caller's cancellation
	// because coalesced callers depend on its result.
	result, err, shared := o.group.Do(fingerprint, func() (any, error) {
		generation := o.cache.currentGeneration()
		score, err := o.compute(context.WithoutCancel(ctx), userID, jobDescription, opts.TopK)
		if err != nil {
			return nil, err
		}
		o.cache.setIfGeneration(fingerprint, score, generation)
		return score, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug("joined in-flight computation")
	}

	return result.(*types.OptimizedMatchScore), nil
}

// GetCacheStats returns the cache hit/miss counters and live entry count.
func (o *Optimizer) GetCacheStats() CacheStats {
	return o.cache.stats()
}

// ClearCache evicts all cache entries unconditionally, e.g. after a bulk
// component re-import.
func (o *Optimizer) ClearCache() {
	o.cache.clear()
	o.log.Info("score cache cleared")
}

// requestValidationError maps the first validator failure onto the
// engine's validation error type.
func requestValidationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		first := errs[0]
		return &ValidationError{Field: first.Field(), Message: "failed " + first.Tag() + " constraint"}
	}
	return &ValidationError{Message: err.Error()}
}
