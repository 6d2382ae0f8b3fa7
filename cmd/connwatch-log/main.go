// Command connwatch-log views and analyzes connwatch event capture files.
//
// Capture files are written by connwatch when started with --event-log.
//
// Usage:
//
//	connwatch-log <command> [flags] <file.clog>
//
// Commands:
//
//	view     View capture file in human-readable format
//	export   Export capture file to JSONL or CSV
//	filter   Filter capture file and write to new file
//	stats    Show statistics about the capture file
//
// Examples:
//
//	# View only notifications for one device
//	connwatch-log view --notified --device AA:BB:CC:DD:EE:01 events.clog
//
//	# Export to CSV
//	connwatch-log export --format csv -o events.csv events.clog
//
//	# Keep only failed resolutions
//	connwatch-log filter --outcome resolve-failed -o failures.clog events.clog
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/connwatch/connwatch/cmd/connwatch-log/commands"
)

const usage = `connwatch-log - connwatch event capture analyzer

Usage:
  connwatch-log <command> [flags] <file.clog>

Commands:
  view     View capture file in human-readable format
  export   Export capture file to JSONL or CSV
  filter   Filter capture file and write to new file
  stats    Show statistics about the capture file

Use "connwatch-log <command> --help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "view":
		err = runView(args)
	case "export":
		err = runExport(args)
	case "filter":
		err = runFilter(args)
	case "stats":
		err = runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newFlagSet(name, synopsis string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "connwatch-log %s - %s\n\nUsage:\n  connwatch-log %s [flags] <file.clog>\n\nFlags:\n", name, synopsis, name)
		fs.PrintDefaults()
	}
	return fs
}

// filterFlags registers the flags shared by view and filter.
func filterFlags(fs *pflag.FlagSet) *commands.FilterOptions {
	var opts commands.FilterOptions
	fs.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	fs.StringVar(&opts.DeviceID, "device", "", "Filter by device ID")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (discovery, change, lifecycle)")
	fs.StringVar(&opts.Outcome, "outcome", "", "Filter by outcome (e.g. notified, resolve-failed)")
	fs.BoolVar(&opts.NotifiedOnly, "notified", false, "Only events that raised a notification")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	return &opts
}

func inputPath(fs *pflag.FlagSet) (string, error) {
	if fs.NArg() < 1 {
		fs.Usage()
		return "", errors.New("log file path required")
	}
	return fs.Arg(0), nil
}

func runView(args []string) error {
	fs := newFlagSet("view", "View capture file in human-readable format")
	opts := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := inputPath(fs)
	if err != nil {
		return err
	}

	filter, err := opts.Build()
	if err != nil {
		return err
	}
	return commands.RunView(path, filter, os.Stdout)
}

func runExport(args []string) error {
	fs := newFlagSet("export", "Export capture file to JSONL or CSV")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.StringP("output", "o", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := inputPath(fs)
	if err != nil {
		return err
	}
	return commands.RunExport(path, *format, *output)
}

func runFilter(args []string) error {
	fs := newFlagSet("filter", "Filter capture file and write to new file")
	opts := filterFlags(fs)
	output := fs.StringP("output", "o", "", "Output file (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := inputPath(fs)
	if err != nil {
		return err
	}
	if *output == "" {
		fs.Usage()
		return errors.New("output file (-o) required")
	}
	return commands.RunFilter(path, *output, *opts, os.Stdout)
}

func runStats(args []string) error {
	fs := newFlagSet("stats", "Show statistics about the capture file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := inputPath(fs)
	if err != nil {
		return err
	}
	return commands.RunStats(path, os.Stdout)
}
