package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-match-engine/internal/config"
	"github.com/jonathan/cv-match-engine/internal/decomposer"
	"github.com/jonathan/cv-match-engine/internal/repository"
	"github.com/jonathan/cv-match-engine/internal/types"
)

// fakeEmbedder returns a fixed vector for any text.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

// fakeRepo serves a fixed candidate set for every query.
type fakeRepo struct {
	candidates []repository.Match
}

func (f *fakeRepo) SimilaritySearch(_ context.Context, _ string, _ []float32, _ int) ([]repository.Match, error) {
	return f.candidates, nil
}

// fakeDecomposer returns a canned decomposition.
type fakeDecomposer struct {
	dec *decomposer.Decomposition
}

func (f *fakeDecomposer) Extract(_ context.Context, _ string) (*decomposer.Decomposition, error) {
	return f.dec, nil
}

func newTestService(dec *decomposer.Decomposition, candidates []repository.Match) *Service {
	return NewService(fakeEmbedder{}, &fakeRepo{candidates: candidates}, &fakeDecomposer{dec: dec}, config.Default(), nil)
}

func singleRequirement(title string, required bool) *decomposer.Decomposition {
	return &decomposer.Decomposition{
		Metadata: types.JDMetadata{Title: "Frontend Engineer", Company: "Acme"},
		Requirements: []types.Component{
			{Type: types.ComponentSkill, Title: title, Required: required},
		},
	}
}

func TestMatchJobDescription_StrongCandidateAccepted(t *testing.T) {
	dec := singleRequirement("React", true)
	candidates := []repository.Match{
		{Component: types.Component{ID: "cv_react", Type: types.ComponentSkill, Title: "React"}, Similarity: 0.95},
		{Component: types.Component{ID: "cv_vue", Type: types.ComponentSkill, Title: "Vue"}, Similarity: 0.55},
	}

	results, err := newTestService(dec, candidates).MatchJobDescription(context.Background(), []byte("job text"), "user_1")
	require.NoError(t, err)
	require.Len(t, results.Matches, 1)

	match := results.Matches[0]
	require.NotNil(t, match.CVComponent)
	assert.Equal(t, "React", match.CVComponent.Title)
	assert.Equal(t, types.QualityExcellent, match.Quality)
	assert.InDelta(t, 95, match.Score, 0.001)
	assert.NotEmpty(t, match.Reasoning)
}

func TestMatchJobDescription_WeakCandidateNotAttached(t *testing.T) {
	dec := singleRequirement("Rust", false)
	candidates := []repository.Match{
		{Component: types.Component{ID: "cv_go", Type: types.ComponentSkill, Title: "Go"}, Similarity: 0.25},
	}

	results, err := newTestService(dec, candidates).MatchJobDescription(context.Background(), []byte("job text"), "user_1")
	require.NoError(t, err)
	require.Len(t, results.Matches, 1)

	match := results.Matches[0]
	assert.Nil(t, match.CVComponent)
	assert.LessOrEqual(t, match.Quality.Rank(), types.QualityWeak.Rank())
	assert.Contains(t, match.Reasoning, "Rust")
}

func TestMatchJobDescription_NilComponentImpliesWeakOrNone(t *testing.T) {
	// Sweep the similarity range; any unattached match must carry a band
	// no better than weak.
	for sim := 0.0; sim < 1.0; sim += 0.05 {
		dec := singleRequirement("Kafka", false)
		candidates := []repository.Match{
			{Component: types.Component{ID: "cv_x", Type: types.ComponentSkill, Title: "RabbitMQ"}, Similarity: sim},
		}

		results, err := newTestService(dec, candidates).MatchJobDescription(context.Background(), []byte("job text"), "user_1")
		require.NoError(t, err)

		match := results.Matches[0]
		if match.CVComponent == nil {
			assert.LessOrEqual(t, match.Quality.Rank(), types.QualityWeak.Rank(),
				"similarity %.2f: unattached match carries band %s", sim, match.Quality)
		}
	}
}

func TestMatchJobDescription_NoCandidates(t *testing.T) {
	dec := singleRequirement("COBOL", false)

	results, err := newTestService(dec, nil).MatchJobDescription(context.Background(), []byte("job text"), "user_1")
	require.NoError(t, err)
	require.Len(t, results.Matches, 1)

	match := results.Matches[0]
	assert.Nil(t, match.CVComponent)
	assert.Equal(t, types.QualityNone, match.Quality)
	assert.Equal(t, 0.0, match.Score)
	assert.Contains(t, match.Reasoning, "no candidates")
	assert.Equal(t, 0.0, results.OverallScore)
}

func TestMatchJobDescription_FallsBackToGroupedSkills(t *testing.T) {
	dec := &decomposer.Decomposition{
		Metadata: types.JDMetadata{
			Title: "Platform Engineer",
			GroupedSkills: []types.SkillGroup{
				{Category: "infrastructure", Summary: "Cloud platforms", Technologies: []string{"AWS", "Terraform"}},
			},
		},
	}
	candidates := []repository.Match{
		{Component: types.Component{ID: "cv_infra", Type: types.ComponentExperience, Title: "Platform Engineer", Organization: "Acme"}, Similarity: 0.8},
	}

	results, err := newTestService(dec, candidates).MatchJobDescription(context.Background(), []byte("job text"), "user_1")
	require.NoError(t, err)

	require.Len(t, results.JDComponents, 1)
	assert.Equal(t, "infrastructure", results.JDComponents[0].Title)
	require.Len(t, results.Matches, 1)
	assert.NotNil(t, results.Matches[0].CVComponent)
}

func TestMatchJobDescription_ValidatesInput(t *testing.T) {
	service := newTestService(singleRequirement("Go", false), nil)
	ctx := context.Background()

	var verr *ValidationError
	_, err := service.MatchJobDescription(ctx, []byte("job text"), "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "userId", verr.Field)

	_, err = service.MatchJobDescription(ctx, nil, "user_1")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "document", verr.Field)
}

func TestOverallScore_RequiredCountsDouble(t *testing.T) {
	cv := types.Component{ID: "c1"}
	matches := []types.MatchResult{
		{JDComponent: types.Component{Required: true}, CVComponent: &cv, Score: 90},
		{JDComponent: types.Component{Required: false}, CVComponent: &cv, Score: 60},
	}

	// (90*2 + 60*1) / 3 = 80
	assert.InDelta(t, 80, overallScore(matches), 0.001)
}

func TestOverallScore_SkipsUnmatchedRequirements(t *testing.T) {
	cv := types.Component{ID: "c1"}
	matches := []types.MatchResult{
		{JDComponent: types.Component{Required: false}, CVComponent: &cv, Score: 70},
		{JDComponent: types.Component{Required: true}, Score: 30},
	}

	assert.InDelta(t, 70, overallScore(matches), 0.001)
}

func TestSimilarityToScore_Clamps(t *testing.T) {
	assert.Equal(t, 0.0, similarityToScore(-0.4))
	assert.Equal(t, 100.0, similarityToScore(1.2))
	assert.InDelta(t, 72, similarityToScore(0.72), 0.001)
}
