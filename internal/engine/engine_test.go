package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/lc/dnsmark/internal/config"
	"github.com/lc/dnsmark/internal/dnsresolver"
	"github.com/lc/dnsmark/internal/filesys"
	"github.com/lc/dnsmark/internal/marker"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, domain string, nameservers []string) *dnsresolver.Result {
	args := m.Called(ctx, domain, nameservers)
	return args.Get(0).(*dnsresolver.Result)
}

type EngineTestSuite struct {
	suite.Suite
	dir      string
	resolver *mockResolver
}

func (s *EngineTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.resolver = new(mockResolver)
}

func (s *EngineTestSuite) cfg(outputs ...config.OutputConfig) *config.Config {
	return &config.Config{
		Query: config.QueryConfig{
			Domain:      "api.example.com",
			Nameservers: "8.8.8.8, 1.1.1.1",
		},
		Outputs: outputs,
	}
}

func (s *EngineTestSuite) readFile(p string) string {
	b, err := os.ReadFile(p)
	s.Require().NoError(err)
	return string(b)
}

func (s *EngineTestSuite) TestWritesEveryTarget() {
	hosts := filepath.Join(s.dir, "hosts")
	nginx := filepath.Join(s.dir, "allow.conf")
	s.Require().NoError(os.WriteFile(hosts, []byte("127.0.0.1 localhost\n"), 0o644))

	cfg := s.cfg(
		config.OutputConfig{Name: "hosts", Path: hosts, Format: `"{IP} api.example.com"`, Marker: "API"},
		config.OutputConfig{Name: "nginx", Path: nginx, Format: `'allow {IP};'`, Marker: "ALLOW"},
		config.OutputConfig{Name: "hosts-comment", Path: hosts, Format: `# {IP}={IP}`, Marker: "NOTE"},
	)
	s.resolver.On("Resolve", mock.Anything, "api.example.com", []string{"8.8.8.8", "1.1.1.1"}).
		Return(&dnsresolver.Result{IPs: dnsresolver.NewIPSet("5.6.7.8", "1.2.3.4")})

	eng := New(cfg, s.resolver, marker.NewWriter(filesys.OS()), nil)
	report, err := eng.Run(context.Background())

	s.Require().NoError(err)
	s.Equal([]string{"1.2.3.4", "5.6.7.8"}, report.IPs)
	s.Require().Len(report.Targets, 3)
	s.Equal(2, report.Targets[0].Lines)

	s.Equal("127.0.0.1 localhost\n"+
		"\n#API_Start\n1.2.3.4 api.example.com\n5.6.7.8 api.example.com\n#API_End\n"+
		"\n#NOTE_Start\n# 1.2.3.4=1.2.3.4\n# 5.6.7.8=5.6.7.8\n#NOTE_End\n",
		s.readFile(hosts))
	s.Equal("\n#ALLOW_Start\nallow 1.2.3.4;\nallow 5.6.7.8;\n#ALLOW_End\n", s.readFile(nginx))
}

func (s *EngineTestSuite) TestEmptySetStillWrites() {
	out := filepath.Join(s.dir, "list")
	cfg := s.cfg(config.OutputConfig{Name: "list", Path: out, Format: "{IP}", Marker: "L"})
	boom := errors.New("connection refused")
	s.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything).Return(&dnsresolver.Result{
		IPs: dnsresolver.NewIPSet(),
		Failures: []dnsresolver.Failure{
			{Nameserver: "8.8.8.8", Err: boom},
			{Nameserver: "1.1.1.1", Err: boom},
		},
	})

	report, err := New(cfg, s.resolver, marker.NewWriter(filesys.OS()), nil).Run(context.Background())

	s.Require().NoError(err)
	s.Empty(report.IPs)
	s.Len(report.Failures, 2)
	s.Equal("\n#L_Start\n\n#L_End\n", s.readFile(out))
}

func (s *EngineTestSuite) TestFailedTargetDoesNotStopOthers() {
	cfg := s.cfg(
		config.OutputConfig{Name: "first", Path: "/a", Format: "{IP}", Marker: "A"},
		config.OutputConfig{Name: "broken", Path: "/b", Format: "{IP}", Marker: "B"},
		config.OutputConfig{Name: "last", Path: "/c", Format: "{IP}", Marker: "C"},
	)
	s.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything).
		Return(&dnsresolver.Result{IPs: dnsresolver.NewIPSet("9.9.9.9")})

	var written []string
	w := BlockWriterFunc(func(path, name string, lines []string) error {
		if path == "/b" {
			return marker.ErrUndecodable
		}
		s.Equal([]string{"9.9.9.9"}, lines)
		written = append(written, path+"#"+name)
		return nil
	})

	report, err := New(cfg, s.resolver, w, nil).Run(context.Background())

	s.Require().Error(err)
	s.ErrorIs(err, marker.ErrUndecodable)
	s.ErrorContains(err, "output broken")
	s.Equal([]string{"/a#A", "/c#C"}, written)
	s.Require().Len(report.Targets, 3)
	s.NoError(report.Targets[0].Err)
	s.ErrorIs(report.Targets[1].Err, marker.ErrUndecodable)
	s.NoError(report.Targets[2].Err)
}

func (s *EngineTestSuite) TestNoTargets() {
	s.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything).
		Return(&dnsresolver.Result{IPs: dnsresolver.NewIPSet("9.9.9.9")})

	report, err := New(s.cfg(), s.resolver, BlockWriterFunc(func(string, string, []string) error {
		s.Fail("writer must not be called")
		return nil
	}), nil).Run(context.Background())

	s.NoError(err)
	s.Equal([]string{"9.9.9.9"}, report.IPs)
	s.Empty(report.Targets)
}

func (s *EngineTestSuite) TestResultWithoutIPSet() {
	out := filepath.Join(s.dir, "list")
	cfg := s.cfg(config.OutputConfig{Name: "list", Path: out, Format: "{IP}", Marker: "L"})
	s.resolver.On("Resolve", mock.Anything, mock.Anything, mock.Anything).Return(&dnsresolver.Result{})

	report, err := New(cfg, s.resolver, marker.NewWriter(filesys.OS()), nil).Run(context.Background())

	s.Require().NoError(err)
	s.Empty(report.IPs)
	s.Equal("\n#L_Start\n\n#L_End\n", s.readFile(out))
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func TestStripQuotes(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{in: `"IP={IP};"`, expected: `IP={IP};`},
		{in: `'{IP} host'`, expected: `{IP} host`},
		{in: `"'{IP}'"`, expected: `'{IP}'`},
		{in: `"{IP}'`, expected: `"{IP}'`},
		{in: `"{IP}`, expected: `"{IP}`},
		{in: `{IP} "x"`, expected: `{IP} "x"`},
		{in: `"`, expected: ``},
		{in: `'`, expected: ``},
		{in: `x`, expected: `x`},
		{in: `""`, expected: ``},
		{in: ``, expected: ``},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripQuotes(tt.in))
		})
	}
}

func TestRender(t *testing.T) {
	assert.Equal(t, []string{"IP=9.9.9.9;"}, Render(StripQuotes(`"IP={IP};"`), []string{"9.9.9.9"}))
	assert.Equal(t, []string{"1.1.1.1 -> 1.1.1.1", "2.2.2.2 -> 2.2.2.2"},
		Render("{IP} -> {IP}", []string{"1.1.1.1", "2.2.2.2"}))
	assert.Equal(t, []string{"static", "static"}, Render("static", []string{"1.1.1.1", "2.2.2.2"}))
	assert.Empty(t, Render("{IP}", nil))
}
