package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/webinsights/webinsights/internal/ailink"
	"github.com/webinsights/webinsights/internal/config"
	"github.com/webinsights/webinsights/internal/core/engine"
	"github.com/webinsights/webinsights/internal/extract"
	"github.com/webinsights/webinsights/internal/observability"
	"github.com/webinsights/webinsights/internal/output"
)

var (
	analyzeQuestions []string
	analyzeFormat    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze a company homepage",
	Long: `Fetch a homepage, run the generative analysis, and print the
structured company profile. No session is created; this is a one-shot
local run of the same pipeline the server uses.

Requires WEBINSIGHTS_AILINK_API_KEY (or the equivalent config entry).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(analyzeFormat)
		if err != nil {
			return err
		}

		cfg, err := config.LoadCLI(cfgFile)
		if err != nil {
			return err
		}

		canonical, err := engine.CanonicalURL(args[0])
		if err != nil {
			return fmt.Errorf("invalid URL %q: %w", args[0], err)
		}

		extractor := extract.NewClient()
		extractor.Timeout = cfg.Extract.Timeout
		extractor.UserAgent = cfg.Extract.UserAgent

		observability.CLILogger.Debug("Fetching homepage",
			zap.String("url", canonical))

		content, err := extractor.HomepageText(cmd.Context(), canonical)
		if err != nil {
			return fmt.Errorf("fetch homepage: %w", err)
		}

		observability.CLILogger.Debug("Running analysis",
			zap.String("model", cfg.AILink.Model),
			zap.Int("content_bytes", len(content)),
			zap.Int("questions", len(analyzeQuestions)))

		service := ailink.NewService(cfg.AILink)
		result, err := service.AnalyzeContent(cmd.Context(), content, canonical, analyzeQuestions)
		if err != nil {
			return fmt.Errorf("analyze content: %w", err)
		}

		rendered, err := output.NewFormatter(format).FormatAnalysis(result)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringSliceVarP(&analyzeQuestions, "question", "q", nil, "question to answer from the page (repeatable)")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "table", "output format (table, json)")
}
