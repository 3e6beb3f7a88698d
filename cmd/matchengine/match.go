package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-match-engine/internal/matching"
	"github.com/jonathan/cv-match-engine/internal/observability"
	"github.com/jonathan/cv-match-engine/internal/types"
	"github.com/jonathan/cv-match-engine/internal/variants"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Pair job description requirements with the user's components",
	Long:  "Decompose a job description into individual requirements, pair each with at most one library component labeled with a quality band and reasoning, and optionally assemble focus-area CV variants from the matches.",
	RunE:  runMatch,
}

var (
	matchJDFile   string
	matchJDURL    string
	matchUserID   string
	matchVariants bool
	matchJSON     bool
)

func init() {
	matchCmd.Flags().StringVar(&matchJDFile, "jd", "", "Path to job description text file")
	matchCmd.Flags().StringVar(&matchJDURL, "jd-url", "", "URL of a job posting to fetch and extract")
	matchCmd.Flags().StringVarP(&matchUserID, "user-id", "u", "", "User whose component library is matched (required)")
	matchCmd.Flags().BoolVar(&matchVariants, "variants", false, "Also generate and compare focus-area CV variants")
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "Print results as JSON instead of formatted output")
	_ = matchCmd.MarkFlagRequired("user-id")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	jobDescription, err := readJobDescription(ctx, matchJDFile, matchJDURL)
	if err != nil {
		return err
	}

	deps, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.close()

	service := matching.NewService(deps.embedder, deps.repo, deps.dec, deps.cfg, deps.log)

	results, err := service.MatchJobDescription(ctx, []byte(jobDescription), matchUserID)
	if err != nil {
		return fmt.Errorf("failed to match job description: %w", err)
	}

	var recommendation *types.VariantRecommendation
	if matchVariants {
		recommendation, err = recommendVariant(results)
		if err != nil {
			return err
		}
	}

	if matchJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
		if recommendation != nil {
			return encoder.Encode(recommendation)
		}
		return nil
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintMatchResults(results)
	if recommendation != nil {
		printer.PrintVariantRecommendation(recommendation)
	}
	return nil
}

// recommendVariant analyzes the matches for focus-area signals, builds one
// variant per area, and picks the strongest.
func recommendVariant(results *types.JDMatchingResults) (*types.VariantRecommendation, error) {
	analysis, err := variants.AnalyzeFocusAreas(results.Matches, results.JDMetadata, results.JDComponents)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze focus areas: %w", err)
	}

	areas := make([]types.FocusArea, len(analysis.Ranked))
	for i, score := range analysis.Ranked {
		areas[i] = score.FocusArea
	}

	built, err := variants.GenerateVariants(results.Matches, results.JDMetadata, areas)
	if err != nil {
		return nil, fmt.Errorf("failed to generate variants: %w", err)
	}

	recommendation, err := variants.CompareVariants(built)
	if err != nil {
		return nil, fmt.Errorf("failed to compare variants: %w", err)
	}
	return recommendation, nil
}
