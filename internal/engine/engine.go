// Package engine runs one dnsmark pass: resolve the configured domain against
// every nameserver, then render the addresses into each output target.
// Targets are independent; one failing target does not stop the others.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/lc/dnsmark/internal/config"
	"github.com/lc/dnsmark/internal/dnsresolver"
	"github.com/lc/dnsmark/internal/marker"
)

// Resolver is the aggregation step.
type Resolver interface {
	Resolve(ctx context.Context, domain string, nameservers []string) *dnsresolver.Result
}

// BlockWriter applies a marker block to a file.
type BlockWriter interface {
	Write(path, name string, lines []string) error
}

var (
	_ Resolver    = (*dnsresolver.Aggregator)(nil)
	_ BlockWriter = (*marker.Writer)(nil)
	_ BlockWriter = (BlockWriterFunc)(nil)
)

// BlockWriterFunc adapts a function to BlockWriter.
type BlockWriterFunc func(path, name string, lines []string) error

// Write calls f.
func (f BlockWriterFunc) Write(path, name string, lines []string) error {
	return f(path, name, lines)
}

// TargetResult is the outcome for one output target.
type TargetResult struct {
	Name   string
	Path   string
	Marker string
	Lines  int
	Err    error
}

// Report summarizes a run.
type Report struct {
	Domain   string
	IPs      []string
	Failures []dnsresolver.Failure
	Targets  []TargetResult
}

// Engine wires the resolver to the writer for one configuration.
type Engine struct {
	cfg      *config.Config
	resolver Resolver
	writer   BlockWriter
	log      *zap.SugaredLogger
}

// New creates an Engine. A nil logger discards log output.
func New(cfg *config.Config, resolver Resolver, writer BlockWriter, logger *zap.SugaredLogger) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{
		cfg:      cfg,
		resolver: resolver,
		writer:   writer,
		log:      logger,
	}
}

// Run resolves once and writes every target in configuration order. The
// returned error combines the failed targets; the report is always
// populated, including when every nameserver failed and the set is empty.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	domain := e.cfg.Query.Domain
	nameservers := e.cfg.NameserverList()

	e.log.Debugw("resolving", "domain", domain, "nameservers", nameservers)
	res := e.resolver.Resolve(ctx, domain, nameservers)

	ips := res.IPs.Slice()
	report := &Report{
		Domain:   domain,
		IPs:      ips,
		Failures: res.Failures,
	}
	if len(ips) == 0 {
		e.log.Warnw("no records found", "domain", domain, "nameservers", len(nameservers))
	}

	var errs error
	for _, out := range e.cfg.Outputs {
		tr := e.writeTarget(out, ips)
		if tr.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("output %s: %w", out.Name, tr.Err))
		}
		report.Targets = append(report.Targets, tr)
	}
	return report, errs
}

func (e *Engine) writeTarget(out config.OutputConfig, ips []string) TargetResult {
	lines := Render(StripQuotes(out.Format), ips)
	tr := TargetResult{
		Name:   out.Name,
		Path:   out.Path,
		Marker: out.Marker,
		Lines:  len(lines),
	}

	if err := e.writer.Write(out.Path, out.Marker, lines); err != nil {
		e.log.Errorw("output failed",
			"output", out.Name,
			"path", out.Path,
			"marker", out.Marker,
			"error", err,
		)
		tr.Err = err
		return tr
	}

	e.log.Infow("output written",
		"output", out.Name,
		"path", out.Path,
		"marker", out.Marker,
		"lines", len(lines),
	)
	return tr
}
