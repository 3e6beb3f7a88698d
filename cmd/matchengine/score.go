package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-match-engine/internal/observability"
	"github.com/jonathan/cv-match-engine/internal/optimizer"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute an optimized match score for a user against a job description",
	Long:  "Decompose a job description into skill categories, retrieve the user's closest components per category, and print the weighted overall score with a per-category breakdown, missing skills and suggestions.",
	RunE:  runScore,
}

var (
	scoreJDFile  string
	scoreJDURL   string
	scoreUserID  string
	scoreTopK    int
	scoreNoCache bool
	scoreJSON    bool
)

func init() {
	scoreCmd.Flags().StringVar(&scoreJDFile, "jd", "", "Path to job description text file")
	scoreCmd.Flags().StringVar(&scoreJDURL, "jd-url", "", "URL of a job posting to fetch and extract")
	scoreCmd.Flags().StringVarP(&scoreUserID, "user-id", "u", "", "User whose component library is scored (required)")
	scoreCmd.Flags().IntVar(&scoreTopK, "top-k", 0, "Components retrieved per category (0 uses the configured default)")
	scoreCmd.Flags().BoolVar(&scoreNoCache, "no-cache", false, "Skip the result cache and force a fresh computation")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print the result as JSON instead of formatted output")
	_ = scoreCmd.MarkFlagRequired("user-id")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	jobDescription, err := readJobDescription(ctx, scoreJDFile, scoreJDURL)
	if err != nil {
		return err
	}

	deps, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.close()

	opt := optimizer.New(deps.embedder, deps.repo, deps.dec, deps.cfg, deps.log)

	opts := optimizer.DefaultOptions()
	opts.UseCache = !scoreNoCache
	opts.TopK = scoreTopK

	score, err := opt.CalculateOptimizedMatchScore(ctx, scoreUserID, jobDescription, opts)
	if err != nil {
		return fmt.Errorf("failed to compute match score: %w", err)
	}

	if scoreJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(score)
	}

	observability.NewPrinter(os.Stdout).PrintOptimizedScore(score)
	return nil
}
