package optimizer

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-match-engine/internal/config"
	"github.com/jonathan/cv-match-engine/internal/decomposer"
	"github.com/jonathan/cv-match-engine/internal/repository"
	"github.com/jonathan/cv-match-engine/internal/types"
)

// fakeEmbedder returns a fixed vector and counts calls.
type fakeEmbedder struct {
	calls atomic.Int64
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls.Add(1)
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// fakeRepo returns a fixed candidate set and counts calls.
type fakeRepo struct {
	matches []repository.Match
	calls   atomic.Int64
}

func (f *fakeRepo) SimilaritySearch(_ context.Context, _ string, _ []float32, _ int) ([]repository.Match, error) {
	f.calls.Add(1)
	return f.matches, nil
}

// fakeDecomposer returns a fixed decomposition, counts calls, and can
// block until released to hold a computation in flight.
type fakeDecomposer struct {
	dec     *decomposer.Decomposition
	calls   atomic.Int64
	release chan struct{}
}

func (f *fakeDecomposer) Extract(_ context.Context, _ string) (*decomposer.Decomposition, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	return f.dec, nil
}

func testDecomposition() *decomposer.Decomposition {
	return &decomposer.Decomposition{
		Metadata: types.JDMetadata{
			Title:   "Senior Backend Engineer",
			Company: "Acme",
			GroupedSkills: []types.SkillGroup{
				{Category: "backend", Summary: "Server-side development", Technologies: []string{"Go", "PostgreSQL"}},
				{Category: "infrastructure", Summary: "Cloud operations", Technologies: []string{"Kubernetes", "Terraform"}},
			},
		},
	}
}

func testMatches() []repository.Match {
	return []repository.Match{
		{Component: types.Component{ID: "c1", Type: types.ComponentExperience, Title: "Backend Engineer", Description: "Go and PostgreSQL services"}, Similarity: 0.85},
		{Component: types.Component{ID: "c2", Type: types.ComponentSkill, Title: "Go"}, Similarity: 0.9},
		{Component: types.Component{ID: "c3", Type: types.ComponentSkill, Title: "Kubernetes"}, Similarity: 0.6},
		{Component: types.Component{ID: "c4", Type: types.ComponentProject, Title: "Cluster autoscaler", Description: "Kubernetes controller"}, Similarity: 0.5},
		{Component: types.Component{ID: "c5", Type: types.ComponentEducation, Title: "BSc Computer Science"}, Similarity: 0.1},
	}
}

func newTestOptimizer(dec *fakeDecomposer, repo *fakeRepo) (*Optimizer, *fakeEmbedder) {
	embedder := &fakeEmbedder{}
	return New(embedder, repo, dec, config.Default(), nil), embedder
}

func TestCalculateOptimizedMatchScore_SecondCallServedFromCache(t *testing.T) {
	dec := &fakeDecomposer{dec: testDecomposition()}
	repo := &fakeRepo{matches: testMatches()}
	opt, embedder := newTestOptimizer(dec, repo)
	ctx := context.Background()

	first, err := opt.CalculateOptimizedMatchScore(ctx, "user_1", "Senior Go Engineer", DefaultOptions())
	require.NoError(t, err)

	decCalls := dec.calls.Load()
	embedCalls := embedder.calls.Load()
	repoCalls := repo.calls.Load()

	second, err := opt.CalculateOptimizedMatchScore(ctx, "user_1", "Senior Go Engineer", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, decCalls, dec.calls.Load(), "cache hit must not decompose")
	assert.Equal(t, embedCalls, embedder.calls.Load(), "cache hit must not embed")
	assert.Equal(t, repoCalls, repo.calls.Load(), "cache hit must not retrieve")

	stats := opt.GetCacheStats()
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
	assert.Equal(t, 1, stats.Size)
}

func TestCalculateOptimizedMatchScore_EquivalentTextSharesCacheEntry(t *testing.T) {
	dec := &fakeDecomposer{dec: testDecomposition()}
	repo := &fakeRepo{matches: testMatches()}
	opt, _ := newTestOptimizer(dec, repo)
	ctx := context.Background()

	_, err := opt.CalculateOptimizedMatchScore(ctx, "user_1", "Senior  Go\nEngineer", DefaultOptions())
	require.NoError(t, err)
	_, err = opt.CalculateOptimizedMatchScore(ctx, "user_1", "senior go engineer", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, int64(1), dec.calls.Load())
}

func TestCalculateOptimizedMatchScore_NoCacheRecomputesButStoresResult(t *testing.T) {
	dec := &fakeDecomposer{dec: testDecomposition()}
	repo := &fakeRepo{matches: testMatches()}
	opt, _ := newTestOptimizer(dec, repo)
	ctx := context.Background()

	opts := DefaultOptions()
	opts.UseCache = false

	_, err := opt.CalculateOptimizedMatchScore(ctx, "user_1", "Senior Go Engineer", opts)
	require.NoError(t, err)
	_, err = opt.CalculateOptimizedMatchScore(ctx, "user_1", "Senior Go Engineer", opts)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dec.calls.Load(), "cache bypass must recompute")

	// The bypassed computation still populated the cache for cached callers.
	_, err = opt.CalculateOptimizedMatchScore(ctx, "user_1", "Senior Go Engineer", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, int64(2), dec.calls.Load())
}

func TestCalculateOptimizedMatchScore_ConcurrentCallsComputeOnce(t *testing.T) {
	dec := &fakeDecomposer{dec: testDecomposition(), release: make(chan struct{})}
	repo := &fakeRepo{matches: testMatches()}
	opt, _ := newTestOptimizer(dec, repo)
	ctx := context.Background()

	const callers = 8
	results := make([]*types.OptimizedMatchScore, callers)
	errs := make([]error, callers)

	var ready, done sync.WaitGroup
	for i := 0; i < callers; i++ {
		ready.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			ready.Done()
			results[i], errs[i] = opt.CalculateOptimizedMatchScore(ctx, "user_1", "Senior Go Engineer", DefaultOptions())
		}()
	}

	// Hold the computation until every caller has had a chance to join
	// the in-flight group.
	ready.Wait()
	time.Sleep(50 * time.Millisecond)
	close(dec.release)
	done.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, results[0].Score, results[i].Score)
	}
	assert.Equal(t, int64(1), dec.calls.Load(), "coalesced callers must share one computation")
}

func TestClearCache_ForcesRecomputation(t *testing.T) {
	dec := &fakeDecomposer{dec: testDecomposition()}
	repo := &fakeRepo{matches: testMatches()}
	opt, _ := newTestOptimizer(dec, repo)
	ctx := context.Background()

	_, err := opt.CalculateOptimizedMatchScore(ctx, "user_1", "Senior Go Engineer", DefaultOptions())
	require.NoError(t, err)
	missesBefore := opt.GetCacheStats().Misses

	opt.ClearCache()
	assert.Equal(t, 0, opt.GetCacheStats().Size)

	_, err = opt.CalculateOptimizedMatchScore(ctx, "user_1", "Senior Go Engineer", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, int64(2), dec.calls.Load())
	assert.Equal(t, missesBefore+1, opt.GetCacheStats().Misses, "post-clear lookup must register a miss")
}

func TestCalculateOptimizedMatchScore_ScoresStayInRange(t *testing.T) {
	dec := &fakeDecomposer{dec: testDecomposition()}
	repo := &fakeRepo{matches: testMatches()}
	opt, _ := newTestOptimizer(dec, repo)

	score, err := opt.CalculateOptimizedMatchScore(context.Background(), "user_1", "Senior Go Engineer", DefaultOptions())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, score.Score, 0.0)
	assert.LessOrEqual(t, score.Score, 100.0)
	require.Len(t, score.Breakdown, len(types.ComponentTypes))
	for _, entry := range score.Breakdown {
		assert.GreaterOrEqual(t, entry.Score, 0.0, "category %s", entry.Category)
		assert.LessOrEqual(t, entry.Score, 100.0, "category %s", entry.Category)
	}
}

func TestCalculateOptimizedMatchScore_BelowMinSimilarityExcluded(t *testing.T) {
	dec := &fakeDecomposer{dec: testDecomposition()}
	repo := &fakeRepo{matches: testMatches()}
	opt, _ := newTestOptimizer(dec, repo)

	score, err := opt.CalculateOptimizedMatchScore(context.Background(), "user_1", "Senior Go Engineer", DefaultOptions())
	require.NoError(t, err)

	// The 0.1 education match sits below the similarity floor, so the
	// education category scores zero with no counted matches.
	education := score.BreakdownFor(types.ComponentEducation)
	assert.Equal(t, 0.0, education.Score)
	assert.Equal(t, 0, education.Matches)
}

func TestCalculateOptimizedMatchScore_EmptyLibrary(t *testing.T) {
	dec := &fakeDecomposer{dec: testDecomposition()}
	repo := &fakeRepo{}
	opt, _ := newTestOptimizer(dec, repo)

	score, err := opt.CalculateOptimizedMatchScore(context.Background(), "user_1", "Senior Go Engineer", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 0.0, score.Score)
	require.NotEmpty(t, score.Suggestions)
	assert.Contains(t, score.Suggestions[0], "empty")
	assert.ElementsMatch(t, []string{"Go", "PostgreSQL", "Kubernetes", "Terraform"}, score.MissingSkills)
}

func TestCalculateOptimizedMatchScore_MissingSkillsListed(t *testing.T) {
	dec := &fakeDecomposer{dec: testDecomposition()}
	repo := &fakeRepo{matches: testMatches()}
	opt, _ := newTestOptimizer(dec, repo)

	score, err := opt.CalculateOptimizedMatchScore(context.Background(), "user_1", "Senior Go Engineer", DefaultOptions())
	require.NoError(t, err)

	assert.Contains(t, score.MissingSkills, "Terraform")
	assert.NotContains(t, score.MissingSkills, "Go")
}

func TestCalculateOptimizedMatchScore_ValidatesInput(t *testing.T) {
	dec := &fakeDecomposer{dec: testDecomposition()}
	repo := &fakeRepo{matches: testMatches()}
	opt, _ := newTestOptimizer(dec, repo)
	ctx := context.Background()

	_, err := opt.CalculateOptimizedMatchScore(ctx, "", "Senior Go Engineer", DefaultOptions())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = opt.CalculateOptimizedMatchScore(ctx, "user_1", "", DefaultOptions())
	require.ErrorAs(t, err, &verr)

	opts := DefaultOptions()
	opts.TopK = 10000
	_, err = opt.CalculateOptimizedMatchScore(ctx, "user_1", "Senior Go Engineer", opts)
	require.ErrorAs(t, err, &verr)

	assert.Equal(t, int64(0), dec.calls.Load(), "invalid requests must not reach the decomposer")
}

func TestCalculateOptimizedMatchScore_MetadataPopulated(t *testing.T) {
	dec := &fakeDecomposer{dec: testDecomposition()}
	repo := &fakeRepo{matches: testMatches()}
	opt, _ := newTestOptimizer(dec, repo)

	score, err := opt.CalculateOptimizedMatchScore(context.Background(), "user_1", "Senior Go Engineer", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 2, score.Metadata.CategoriesEvaluated)
	assert.Equal(t, len(testMatches()), score.Metadata.ComponentsConsidered)
	assert.False(t, score.Metadata.ComputedAt.IsZero())
}
