// Package dnsresolver resolves a domain's A records against an explicit list
// of nameservers and merges the answers.
//
// # Single-nameserver lookups
//
// Client.LookupA sends exactly one A query to exactly one nameserver; the
// system resolver configuration is never consulted. Nameservers given without
// a port are contacted on port 53:
//
//	c := dnsresolver.New(5 * time.Second)
//	ips, err := c.LookupA(ctx, "1.1.1.1", "example.com")
//
// A truncated UDP answer is asked again over TCP against the same server. There
// are no retries beyond that.
//
// # Aggregation
//
// Aggregator.Resolve walks the nameserver list sequentially and folds every
// returned address into an IPSet:
//
//	agg := dnsresolver.NewAggregator(c, log.Logger)
//	res := agg.Resolve(ctx, "example.com", []string{"8.8.8.8", "1.1.1.1"})
//	for _, ip := range res.IPs.Slice() {
//		fmt.Println(ip)
//	}
//
// Per-nameserver failures (transport errors, timeouts, NXDOMAIN and other
// non-success response codes, answers without A records) are logged at warn
// level and kept in Result.Failures. They never abort the walk. When every
// nameserver fails the set is simply empty; Result.Err combines the failures
// with go.uber.org/multierr for callers that want them.
//
// # Errors
//
//   - ErrNoRecords: the answer section held no A records
//   - ErrRcode: the server replied with a non-success response code
//   - ErrEmptyMsg: no message came back from the exchange
//   - ErrEmptyHostname, ErrEmptyNameserver: invalid input
package dnsresolver
