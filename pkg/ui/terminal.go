package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dustin/go-humanize"

	"pinitdown/pkg/models"
)

// ASCII logo for the application
const ASCIILogo = `
 ██████╗ ██╗███╗   ██╗██╗████████╗██████╗  ██████╗ ██╗    ██╗███╗   ██╗
 ██╔══██╗██║████╗  ██║██║╚══██╔══╝██╔══██╗██╔═══██╗██║    ██║████╗  ██║
 ██████╔╝██║██╔██╗ ██║██║   ██║   ██║  ██║██║   ██║██║ █╗ ██║██╔██╗ ██║
 ██╔═══╝ ██║██║╚██╗██║██║   ██║   ██║  ██║██║   ██║██║███╗██║██║╚██╗██║
 ██║     ██║██║ ╚████║██║   ██║   ██████╔╝╚██████╔╝╚███╔███╔╝██║ ╚████║
 ╚═╝     ╚═╝╚═╝  ╚═══╝╚═╝   ╚═╝   ╚═════╝  ╚═════╝  ╚══╝╚══╝ ╚═╝  ╚═══╝
              pin image and video downloader
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

var (
	outMu        sync.RWMutex
	out          io.Writer = os.Stdout
	colorEnabled           = true
)

// SetColor turns ANSI colors on or off for every helper in this package
func SetColor(enabled bool) {
	outMu.Lock()
	defer outMu.Unlock()
	colorEnabled = enabled
}

// SetOutput redirects terminal output. nil restores stdout.
func SetOutput(w io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	out = w
}

func writer() io.Writer {
	outMu.RLock()
	defer outMu.RUnlock()
	return out
}

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		outMu.RLock()
		enabled := colorEnabled
		outMu.RUnlock()
		if !enabled {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	fmt.Fprint(writer(), Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(writer(), Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(writer(), Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(writer(), Green(msg))
}

// PrintInfo prints a label and value pair
func PrintInfo(label string, value string) {
	fmt.Fprintf(writer(), "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(writer(), Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(writer(), Yellow(msg))
	}
}

// FormatResult renders one link outcome as a single status line
func FormatResult(r models.DownloadResult) string {
	switch r.Outcome {
	case models.OutcomeSuccess:
		return fmt.Sprintf("%s %s -> %s %s", Green("✓"), r.Input, r.Path,
			Dim("("+string(r.Kind)+", "+humanize.Bytes(uint64(r.Bytes))+")"))
	case models.OutcomeNoAsset:
		return fmt.Sprintf("%s %s: %s", Yellow("∅"), r.Input, r.Reason)
	default:
		return fmt.Sprintf("%s %s: %s", Red("✗"), r.Input, Red(r.Reason))
	}
}

// PrintResult prints the status line for one link
func PrintResult(r models.DownloadResult) {
	fmt.Fprintln(writer(), FormatResult(r))
}

// PrintSummary prints the batch totals
func PrintSummary(succeeded, noAsset, failed int, bytes int64) {
	fmt.Fprintf(writer(), "\n%s %s succeeded, %s no asset, %s failed %s\n",
		Magenta("■"),
		Green(fmt.Sprint(succeeded)),
		Yellow(fmt.Sprint(noAsset)),
		Red(fmt.Sprint(failed)),
		Dim("("+humanize.Bytes(uint64(bytes))+")"),
	)
}
