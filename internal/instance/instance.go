// Package instance reports whether other dnsmark processes are running.
// dnsmark takes no lock on its output files, so the caller can only warn.
package instance

import (
	"os"
	"strings"

	"github.com/mitchellh/go-ps"
)

var _ ProcessLister = (*DefaultProcessLister)(nil)

// ProcessLister lists running processes.
type ProcessLister interface {
	Processes() ([]ps.Process, error)
}

// DefaultProcessLister lists processes through github.com/mitchellh/go-ps.
type DefaultProcessLister struct{}

// Processes returns a snapshot of the process table.
func (DefaultProcessLister) Processes() ([]ps.Process, error) {
	return ps.Processes()
}

// Checker counts processes sharing an executable name.
type Checker struct {
	lister ProcessLister
	self   int
}

// NewChecker returns a Checker that ignores the current process.
func NewChecker(l ProcessLister) *Checker {
	if l == nil {
		l = DefaultProcessLister{}
	}
	return &Checker{lister: l, self: os.Getpid()}
}

// Others returns how many processes other than this one run an executable
// called name. Listing errors count as zero.
func (c *Checker) Others(name string) int {
	procs, err := c.lister.Processes()
	if err != nil {
		return 0
	}

	n := 0
	for _, p := range procs {
		if p.Pid() == c.self {
			continue
		}
		if strings.EqualFold(p.Executable(), name) {
			n++
		}
	}
	return n
}
