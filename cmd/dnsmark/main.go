// Command dnsmark resolves one domain against a list of nameservers and
// writes the distinct A-record addresses into marked blocks of text files.
//
// Usage:
//
//	dnsmark [config]
//
// The optional argument is the configuration file; it defaults to config.ini
// in the working directory. Files ending in .yaml or .yml are read as YAML,
// anything else as INI.
//
// Each resolved address is printed to stdout, one per line. Logs and the
// per-output summary go to stderr. Nameserver failures are logged and
// skipped; the exit status is non-zero only when the configuration cannot be
// loaded or an output file could not be updated.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lc/dnsmark/internal/buildinfo"
	"github.com/lc/dnsmark/internal/config"
	"github.com/lc/dnsmark/internal/dnsresolver"
	"github.com/lc/dnsmark/internal/engine"
	"github.com/lc/dnsmark/internal/filesys"
	"github.com/lc/dnsmark/internal/instance"
	"github.com/lc/dnsmark/internal/log"
	"github.com/lc/dnsmark/internal/marker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Errorf("dnsmark: %v", err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dnsmark [config]",
		Short: "Write a domain's A records into marked blocks of text files",
		Long: `dnsmark asks every configured nameserver for the A records of one domain,
merges the answers, and rewrites the block between #<marker>_Start and
#<marker>_End in each configured output file.`,
		Example:       "dnsmark /etc/dnsmark/config.ini",
		Args:          cobra.MaximumNArgs(1),
		Version:       fmt.Sprintf("%s (%s)", buildinfo.Version, buildinfo.Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			return run(cmd.Context(), path, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func run(ctx context.Context, path string, stdout, stderr io.Writer) error {
	cfg, err := config.New(path).Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	logger := log.With("run", uuid.NewString())

	self := filepath.Base(os.Args[0])
	if n := instance.NewChecker(nil).Others(self); n > 0 {
		logger.Warnw("other instances are running; output files are not locked", "process", self, "count", n)
	}

	enc, err := marker.EncodingByName(cfg.Options.FallbackEncoding)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	writer := marker.NewWriter(filesys.OS(),
		marker.WithFallback(enc),
		marker.WithAtomicWrite(cfg.Options.AtomicWrite),
	)
	agg := dnsresolver.NewAggregator(dnsresolver.New(cfg.Query.Timeout), logger)

	report, runErr := engine.New(cfg, agg, writer, logger).Run(ctx)

	for _, ip := range report.IPs {
		fmt.Fprintln(stdout, ip)
	}
	printSummary(stderr, report)

	return runErr
}

func printSummary(w io.Writer, report *engine.Report) {
	ok := color.New(color.FgGreen, color.Bold)
	fail := color.New(color.FgHiRed, color.Bold)
	dim := color.New(color.FgHiWhite)

	for _, f := range report.Failures {
		fail.Fprint(w, "✗ ")
		dim.Fprintf(w, "nameserver %s: %v\n", f.Nameserver, f.Err)
	}
	for _, t := range report.Targets {
		if t.Err != nil {
			fail.Fprint(w, "✗ ")
			dim.Fprintf(w, "%s [%s]: %v\n", t.Path, t.Marker, t.Err)
			continue
		}
		ok.Fprint(w, "✓ ")
		dim.Fprintf(w, "%s [%s] %d line(s)\n", t.Path, t.Marker, t.Lines)
	}
}
