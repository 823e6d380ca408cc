package dnsresolver

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// IPSet is a set of address strings. Duplicates collapse no matter which
// nameserver reported them.
type IPSet struct {
	m map[string]struct{}
}

// NewIPSet returns a set holding ips.
func NewIPSet(ips ...string) *IPSet {
	s := &IPSet{m: make(map[string]struct{}, len(ips))}
	for _, ip := range ips {
		s.Add(ip)
	}
	return s
}

// Add inserts ip and reports whether it was new.
func (s *IPSet) Add(ip string) bool {
	if _, ok := s.m[ip]; ok {
		return false
	}
	s.m[ip] = struct{}{}
	return true
}

// Contains reports whether ip is in the set. A nil set is empty.
func (s *IPSet) Contains(ip string) bool {
	if s == nil {
		return false
	}
	_, ok := s.m[ip]
	return ok
}

// Len returns the number of distinct addresses. A nil set is empty.
func (s *IPSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.m)
}

// Slice returns the addresses in ascending string order. The order carries no
// meaning; it only keeps rewritten files stable between identical runs.
// A nil set yields an empty slice.
func (s *IPSet) Slice() []string {
	out := make([]string, 0, s.Len())
	if s == nil {
		return out
	}
	for ip := range s.m {
		out = append(out, ip)
	}
	sort.Strings(out)
	return out
}

// Failure records why one nameserver produced no addresses.
type Failure struct {
	Nameserver string
	Err        error
}

func (f Failure) Error() string {
	return fmt.Sprintf("querying %s: %v", f.Nameserver, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Result is the outcome of one aggregation run.
type Result struct {
	IPs      *IPSet
	Failures []Failure
}

// Err combines the per-nameserver failures, or returns nil if every
// nameserver answered. An empty IP set with a non-nil Err still means
// "no records found", not a failed run.
func (r *Result) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f)
	}
	return err
}

// Aggregator queries every nameserver once, one after another.
type Aggregator struct {
	lookup Lookuper
	log    *zap.SugaredLogger
}

// NewAggregator returns an Aggregator that logs failures to logger.
// A nil logger discards them.
func NewAggregator(l Lookuper, logger *zap.SugaredLogger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Aggregator{lookup: l, log: logger}
}

// Resolve asks each nameserver, in order, for the A records of domain.
// A failing nameserver is logged and recorded in the result; it never stops
// the remaining queries.
func (a *Aggregator) Resolve(ctx context.Context, domain string, nameservers []string) *Result {
	res := &Result{IPs: NewIPSet()}

	for _, ns := range nameservers {
		ips, err := a.lookup.LookupA(ctx, ns, domain)
		if err != nil {
			a.log.Warnw("nameserver query failed",
				"nameserver", ns,
				"domain", domain,
				"error", err,
			)
			res.Failures = append(res.Failures, Failure{Nameserver: ns, Err: err})
			continue
		}

		added := 0
		for _, ip := range ips {
			if res.IPs.Add(ip) {
				added++
			}
		}
		a.log.Debugw("nameserver answered",
			"nameserver", ns,
			"domain", domain,
			"records", len(ips),
			"new", added,
		)
	}
	return res
}
