package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pinitdown/pkg/config"
	"pinitdown/pkg/logger"
	"pinitdown/pkg/models"
	"pinitdown/pkg/pin"
	"pinitdown/pkg/report"
	"pinitdown/pkg/scraper"
	"pinitdown/pkg/ui"
)

// downloadOptions are the flags of the download command
type downloadOptions struct {
	file       string
	output     string
	concurrent int
	insecure   bool
	report     string
}

func addDownloadFlags(cmd *cobra.Command, d *downloadOptions) {
	cmd.Flags().StringVarP(&d.file, "file", "f", "", "read links from a file, one or more per line (- for stdin)")
	cmd.Flags().StringVarP(&d.output, "output", "o", "", "output directory (default ./downloads)")
	cmd.Flags().IntVar(&d.concurrent, "concurrent", 1, fmt.Sprintf("number of links processed at once (1-%d)", config.MaxConcurrent))
	cmd.Flags().BoolVar(&d.insecure, "insecure", false, "skip TLS certificate verification")
	cmd.Flags().StringVar(&d.report, "report", "", "write a JSON or YAML report of the batch (by extension)")
}

func newDownloadCmd(g *globalOptions) *cobra.Command {
	d := &downloadOptions{}
	cmd := &cobra.Command{
		Use:   "download [links...]",
		Short: "Download pins given as arguments or in a file",
		Long: `Download the best image or video of every pin link given.

Links are taken from the arguments and from --file. Lines in the file may
hold several links separated by spaces or commas; text that is not a
Pinterest link is ignored.

The command exits with 1 if any link failed and with 2 if no links were
given at all. Pins without downloadable media do not count as failures.`,
		Example: `  pinitdown download https://www.pinterest.com/pin/123456789/ https://pin.it/3xAbCd
  pinitdown download --file links.txt --concurrent 4 --report report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, g, d, args)
		},
	}
	addDownloadFlags(cmd, d)
	return cmd
}

func runDownload(cmd *cobra.Command, g *globalOptions, d *downloadOptions, args []string) error {
	links, err := collectLinks(args, d.file, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return newUsageError("no links given; pass links as arguments or use --file")
	}

	cfg, err := loadConfig(cmd, g, d)
	if err != nil {
		return err
	}
	if err := setup(cfg); err != nil {
		return err
	}

	if cfg.HTTP.InsecureSkipVerify {
		ui.PrintWarning("TLS certificate verification is disabled")
	}
	ui.PrintInfo("Output", cfg.Output.Directory)

	s := scraper.NewFromConfig(cfg)
	summary := processLinks(cmd, s, links, g.verbose || !isTerminal(os.Stdout))

	summary.Log()
	ui.PrintSummary(summary.Succeeded, summary.NoAsset, summary.Failed, summary.Bytes)

	if d.report != "" {
		if err := summary.Save(d.report); err != nil {
			logger.WithError(err).WithField("path", d.report).Error("Failed to write report")
			ui.PrintError("Failed to write report", err)
		} else {
			ui.PrintInfo("Report", d.report)
		}
	}

	if cfg.UI.Notifications && len(links) > 1 {
		ui.NewNotifier(true).BatchComplete(summary.Succeeded, summary.NoAsset, summary.Failed)
	}

	if summary.Failed > 0 {
		return errLinksFailed
	}
	return nil
}

// processLinks runs the batch, showing a progress bar on a terminal and one
// line per link otherwise
func processLinks(cmd *cobra.Command, s *scraper.Scraper, links []string, lineMode bool) *report.Summary {
	start := time.Now()

	var onResult func(int, models.DownloadResult)
	var display *ui.ProgressDisplay
	if lineMode {
		onResult = func(_ int, r models.DownloadResult) { ui.PrintResult(r) }
	} else {
		display = ui.NewProgressDisplay(len(links), false)
		onResult = func(_ int, r models.DownloadResult) { display.Record(r) }
	}

	results := s.ProcessBatch(cmd.Context(), links, onResult)
	if display != nil {
		display.Complete()
		for _, r := range results {
			if !r.OK() {
				ui.PrintResult(r)
			}
		}
	}
	return report.Summarize(results, time.Since(start))
}

// collectLinks merges argument links with the links found in file. Arguments
// are kept as given so malformed ones are reported instead of dropped.
func collectLinks(args []string, file string, stdin io.Reader) ([]string, error) {
	var links []string
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			links = append(links, a)
		}
	}

	if file == "" {
		return links, nil
	}

	var r io.Reader
	if file == "-" {
		r = stdin
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, newUsageError("cannot read link file: %v", err)
		}
		defer f.Close()
		r = f
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		links = append(links, pin.SplitLinks(line)...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read links: %w", err)
	}
	return links, nil
}
