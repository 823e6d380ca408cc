// Package dnsresolver asks individual nameservers for a domain's A records
// and folds the answers into a deduplicated set.
package dnsresolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

var (
	// ErrNoRecords is returned when the answer section holds no A records.
	ErrNoRecords = errors.New("no records found")
	// ErrEmptyMsg is returned when the exchange yields no message.
	ErrEmptyMsg = errors.New("empty message")
	// ErrEmptyHostname is returned when an empty hostname is provided.
	ErrEmptyHostname = errors.New("empty hostname")
	// ErrEmptyNameserver is returned when an empty nameserver is provided.
	ErrEmptyNameserver = errors.New("empty nameserver")
	// ErrRcode is returned when the nameserver answers with a non-success
	// response code such as NXDOMAIN or SERVFAIL.
	ErrRcode = errors.New("unsuccessful response code")
)

const _defaultPort = "53"

var _ Lookuper = (*Client)(nil)

// Lookuper performs a single A-record query against one nameserver.
type Lookuper interface {
	LookupA(ctx context.Context, nameserver, hostname string) ([]string, error)
}

// Exchanger defines the interface for DNS message exchange.
type Exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, a string) (r *dns.Msg, rtt time.Duration, err error)
}

// Client implements Lookuper on top of github.com/miekg/dns.
type Client struct {
	// Client carries the primary (UDP) exchange.
	Client Exchanger
	// TCP is used to repeat a query whose UDP answer came back truncated.
	// A nil TCP exchanger returns the truncated answer as is.
	TCP     Exchanger
	Timeout time.Duration
}

// Opt is a function option for configuring the Client.
type Opt func(r *Client)

// New creates a new Client with the given per-query timeout.
func New(timeout time.Duration, opts ...Opt) *Client {
	res := &Client{
		Client:  &dns.Client{Net: "udp", Timeout: timeout},
		TCP:     &dns.Client{Net: "tcp", Timeout: timeout},
		Timeout: timeout,
	}

	for _, o := range opts {
		o(res)
	}

	return res
}

// WithExchanger replaces the UDP exchanger and disables the TCP fallback.
func WithExchanger(ex Exchanger) Opt {
	return func(r *Client) {
		r.Client = ex
		r.TCP = nil
	}
}

// LookupA issues one A query for hostname to nameserver and to no other
// server. Nameservers without a port are contacted on port 53.
func (r *Client) LookupA(ctx context.Context, nameserver, hostname string) ([]string, error) {
	if strings.TrimSpace(hostname) == "" {
		return nil, ErrEmptyHostname
	}
	addr, err := serverAddr(nameserver)
	if err != nil {
		return nil, err
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	req := new(dns.Msg)
	req.SetQuestion(dns.Fqdn(strings.TrimSpace(hostname)), dns.TypeA)

	resp, _, err := r.Client.ExchangeContext(ctx, req, addr)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Truncated && r.TCP != nil {
		// Fresh request: ExchangeContext mutates *dns.Msg
		req = req.Copy()
		resp, _, err = r.TCP.ExchangeContext(ctx, req, addr)
		if err != nil {
			return nil, fmt.Errorf("tcp retry after truncation: %w", err)
		}
	}
	return parseA(resp)
}

// parseA validates the response and returns the A record addresses in
// answer order.
func parseA(resp *dns.Msg) ([]string, error) {
	if resp == nil {
		return nil, ErrEmptyMsg
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("%w: %s", ErrRcode, rcodeName(resp.Rcode))
	}

	var ips []string
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok && a.A != nil {
			ips = append(ips, a.A.String())
		}
	}

	if len(ips) == 0 {
		return nil, ErrNoRecords
	}
	return ips, nil
}

func rcodeName(rcode int) string {
	if name, ok := dns.RcodeToString[rcode]; ok {
		return name
	}
	return fmt.Sprintf("RCODE%d", rcode)
}

// serverAddr turns a configured nameserver into a host:port dial address.
// "8.8.8.8" becomes "8.8.8.8:53" and "2001:db8::1" becomes "[2001:db8::1]:53";
// values that already carry a port are kept.
func serverAddr(ns string) (string, error) {
	ns = strings.TrimSpace(ns)
	if ns == "" {
		return "", ErrEmptyNameserver
	}
	if ip := net.ParseIP(strings.Trim(ns, "[]")); ip != nil {
		return net.JoinHostPort(ip.String(), _defaultPort), nil
	}
	if _, _, err := net.SplitHostPort(ns); err == nil {
		return ns, nil
	}
	return net.JoinHostPort(ns, _defaultPort), nil
}
