package instance

import (
	"errors"
	"os"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/assert"
)

type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.name }

type fakeLister struct {
	procs []ps.Process
	err   error
}

func (f fakeLister) Processes() ([]ps.Process, error) { return f.procs, f.err }

func TestOthers(t *testing.T) {
	self := os.Getpid()
	tests := []struct {
		name     string
		lister   fakeLister
		expected int
	}{
		{
			name:     "only ourselves",
			lister:   fakeLister{procs: []ps.Process{fakeProcess{self, "dnsmark"}, fakeProcess{self + 1, "sshd"}}},
			expected: 0,
		},
		{
			name: "two other runs",
			lister: fakeLister{procs: []ps.Process{
				fakeProcess{self, "dnsmark"},
				fakeProcess{self + 1, "dnsmark"},
				fakeProcess{self + 2, "DNSMARK"},
				fakeProcess{self + 3, "dnsmarkd"},
			}},
			expected: 2,
		},
		{
			name:     "listing error",
			lister:   fakeLister{err: errors.New("no /proc")},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewChecker(tt.lister).Others("dnsmark"))
		})
	}
}
