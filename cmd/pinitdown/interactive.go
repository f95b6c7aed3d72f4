package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pinitdown/pkg/logger"
	"pinitdown/pkg/models"
	"pinitdown/pkg/report"
	"pinitdown/pkg/scraper"
	"pinitdown/pkg/ui"
	"pinitdown/pkg/ui/tui"
)

func newInteractiveCmd(g *globalOptions) *cobra.Command {
	d := &downloadOptions{}
	cmd := &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"menu", "i"},
		Short:   "Open the interactive download menu",
		Long: `Open a menu to download a single pin, paste many links at once, or change
the output folder. Results appear in the log pane as each link finishes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, g, d)
		},
	}
	cmd.Flags().StringVarP(&d.output, "output", "o", "", "initial output directory (default ./downloads)")
	cmd.Flags().IntVar(&d.concurrent, "concurrent", 1, "number of links processed at once")
	cmd.Flags().BoolVar(&d.insecure, "insecure", false, "skip TLS certificate verification")
	return cmd
}

func runInteractive(cmd *cobra.Command, g *globalOptions, d *downloadOptions) error {
	cfg, err := loadConfig(cmd, g, d)
	if err != nil {
		return err
	}

	// console logs would tear the alternate screen, keep only the log file
	log, err := logger.NewWithWriter(&cfg.Logging, io.Discard)
	if err != nil {
		return err
	}
	logger.SetLogger(log)

	notifier := ui.NewNotifier(cfg.UI.Notifications).Silent()
	runner := func(ctx context.Context, dir string, links []string, onResult func(models.DownloadResult)) []models.DownloadResult {
		batchCfg := *cfg
		batchCfg.Output.Directory = dir
		s := scraper.NewFromConfig(&batchCfg)
		return s.ProcessBatch(ctx, links, func(_ int, r models.DownloadResult) { onResult(r) })
	}

	terminal := tui.NewTUI(tui.Options{
		OutputDir: cfg.Output.Directory,
		Runner:    runner,
		OnBatchDone: func(s *report.Summary) {
			s.Log()
			if s.Total > 1 && cfg.UI.Notifications {
				notifier.BatchComplete(s.Succeeded, s.NoAsset, s.Failed)
			}
		},
	}, tea.WithContext(cmd.Context()))

	if err := terminal.Start(); err != nil {
		logger.WithError(err).Error("Interactive session failed")
		return err
	}
	return nil
}
