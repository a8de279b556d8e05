package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/svnbridge/internal/config"
	"github.com/mrz1836/svnbridge/internal/svn"
)

const testInfoXML = `<?xml version="1.0" encoding="UTF-8"?>
<info>
<entry kind="file" path="a.txt" revision="12">
<url>https://svn.example.com/repo/trunk/a.txt</url>
<repository>
<root>https://svn.example.com/repo</root>
</repository>
<commit revision="11">
<author>carol</author>
<date>2025-02-03T04:05:06.000000Z</date>
</commit>
</entry>
</info>
`

const testLogXML = `<?xml version="1.0" encoding="UTF-8"?>
<log>
<logentry revision="41">
<author>alice</author>
<date>2024-05-05T12:00:00.000000Z</date>
<paths>
<path kind="file" action="M">/trunk/a.txt</path>
</paths>
<msg>Fix overflow in parser</msg>
</logentry>
</log>
`

// stubRunner answers svn subcommands from a table. "info" succeeds by
// default so every path resolves.
type stubRunner struct {
	mu        sync.Mutex
	responses map[string]*svn.Outcome
	errs      map[string]error
	calls     [][]string
}

func newStubRunner() *stubRunner {
	return &stubRunner{
		responses: map[string]*svn.Outcome{
			"info": {Stdout: testInfoXML},
		},
		errs: map[string]error{},
	}
}

func (s *stubRunner) on(subcommand, stdout string) *stubRunner {
	s.responses[subcommand] = &svn.Outcome{Stdout: stdout}
	return s
}

func (s *stubRunner) fail(subcommand string, err error) *stubRunner {
	s.errs[subcommand] = err
	return s
}

func (s *stubRunner) Run(_ context.Context, _ string, args []string, _ svn.RunOptions) (*svn.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, append([]string(nil), args...))

	if err, ok := s.errs[args[0]]; ok {
		return &svn.Outcome{ExitCode: 1}, err
	}
	if out, ok := s.responses[args[0]]; ok {
		copied := *out
		return &copied, nil
	}
	return &svn.Outcome{}, nil
}

func (s *stubRunner) called(subcommand string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out [][]string
	for _, c := range s.calls {
		if c[0] == subcommand {
			out = append(out, c)
		}
	}
	return out
}

// memStore is an in-memory override root store.
type memStore struct {
	mu   sync.Mutex
	root string
}

func (m *memStore) LoadOverrideRoot(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.root, nil
}

func (m *memStore) SaveOverrideRoot(_ context.Context, root string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = root
	return nil
}

func (m *memStore) ClearOverrideRoot(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = ""
	return nil
}

func newTestApp(runner svn.Runner, store *memStore) *app {
	cfg := config.DefaultConfig()
	cfg.SVN.DiffBinary = "svnbridge-test-missing-diff"
	return &app{
		flags: &GlobalFlags{},
		factory: func(ctx context.Context, _ zerolog.Logger, _ *config.Config, w io.Writer) (*services, error) {
			return assembleServices(ctx, cfg, runner, store, zerolog.Nop(), w)
		},
		initLogger: func(verbose, quiet bool) zerolog.Logger {
			return InitLoggerWithWriter(verbose, quiet, io.Discard)
		},
		interactive: func() bool { return false },
		confirm: func(string, string) (bool, error) {
			return false, nil
		},
		width: func() int { return 80 },
	}
}

// execute runs the root command with args and returns everything written.
func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	cmd := newRootCmd(a, BuildInfo{Version: "test"})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// writeFile creates name under dir with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
