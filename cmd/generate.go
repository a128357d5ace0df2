package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-statcard/internal/config"
	"github.com/naka-gawa/github-statcard/internal/domain"
	"github.com/naka-gawa/github-statcard/internal/gateway"
	"github.com/naka-gawa/github-statcard/internal/render"
	"github.com/naka-gawa/github-statcard/internal/sink"
	"github.com/naka-gawa/github-statcard/internal/usecase"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Fetches account metrics and writes the SVG stat card",
	Long: `Fetches public activity metrics for the given GitHub account, grades
them, renders the stat card, and writes it to the output path. The file is
only replaced when its content changed, so repeated runs against unchanged
data are no-ops.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		user, _ := cmd.Flags().GetString("user")
		token, _ := cmd.Flags().GetString("token")
		out, _ := cmd.Flags().GetString("out")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		sample, _ := cmd.Flags().GetInt("commit-sample")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := config.Resolve(user, token, out, timeout, sample)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// The whole run is bounded by one timeout; resources still in
		// flight when it expires degrade to zero instead of hanging.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		fetcher, err := gateway.NewGitHubGateway(cfg.Token, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}

		aggregator := usecase.NewAggregator(fetcher, logger, cfg.CommitSample)
		stats, err := aggregator.Aggregate(ctx, cfg.Handle)
		if err != nil {
			var resErr *domain.ResolutionError
			if errors.As(err, &resErr) {
				fmt.Fprintf(os.Stderr, "Error: %v\n", resErr)
			} else {
				fmt.Fprintf(os.Stderr, "Failed to aggregate stats: %v\n", err)
			}
			os.Exit(1)
		}

		grade := domain.GradeFor(*stats, domain.DefaultWeights())

		svg, err := render.RenderCard(*stats, grade)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render card: %v\n", err)
			os.Exit(1)
		}

		written, err := sink.NewFileSink(cfg.OutputPath).Write(svg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write card: %v\n", err)
			os.Exit(1)
		}

		if asJSON {
			payload := struct {
				domain.Stats
				Grade domain.Grade `json:"grade"`
			}{Stats: *stats, Grade: grade}
			jsonData, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to marshal stats to JSON: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(jsonData))
		}

		if written {
			fmt.Printf("Generated %s (grade %s, score %d)\n", cfg.OutputPath, grade.Label, grade.Score)
		} else {
			fmt.Printf("Unchanged %s (grade %s, score %d)\n", cfg.OutputPath, grade.Label, grade.Score)
		}
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("user", "u", "", "Target GitHub account handle (falls back to GITHUB_USERNAME)")
	generateCmd.Flags().String("token", "", "GitHub API token (falls back to GITHUB_TOKEN; optional)")
	generateCmd.Flags().StringP("out", "o", "", fmt.Sprintf("Output path for the SVG card (default %q)", config.DefaultOutputPath))
	generateCmd.Flags().Duration("timeout", config.DefaultTimeout, "Overall run timeout")
	generateCmd.Flags().Int("commit-sample", config.DefaultCommitSample, "Number of repositories sampled for the commit estimate")
	generateCmd.Flags().Bool("json", false, "Also print the aggregated stats and grade as JSON")
}
