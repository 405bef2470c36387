package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/app"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/config"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/domain"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/logging"
)

var (
	runTopic    string
	runDaysBack int

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Fetch one recent study, summarize it and publish it",
		RunE:  runPipeline,
	}
)

func init() {
	runCmd.Flags().StringVar(&runTopic, "topic", "", "extra PubMed search term")
	runCmd.Flags().IntVar(&runDaysBack, "days-back", 0, "override the publication-date window in days")
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfg := config.Load(cfgFile)
	if runTopic != "" {
		cfg.PubMed.Topic = runTopic
	}
	if runDaysBack > 0 {
		cfg.PubMed.DaysBack = runDaysBack
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format).
		With("run_id", uuid.NewString())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("wiring failed", "error", err)
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close application", "error", err)
		}
	}()

	return reportOutcome(logger, application.Run(ctx))
}

// reportOutcome logs how the run ended and returns an error only for
// failed runs. A day without an unpublished candidate exits clean so the
// scheduled job stays green.
func reportOutcome(logger *slog.Logger, outcome domain.Outcome) error {
	switch outcome.State {
	case domain.StateDone:
		logger.Info("run finished",
			"state", outcome.State,
			"pmid", outcome.Article.PMID,
			"post_id", outcome.Result.PostID,
			"url", outcome.Result.URL)
		return nil
	case domain.StateNoCandidate:
		logger.Info("run finished", "state", outcome.State)
		return nil
	default:
		logger.Error("run failed", "stage", outcome.Stage, "error", outcome.Err)
		return outcome.Err
	}
}
