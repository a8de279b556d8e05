package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
	"github.com/mrz1836/svnbridge/internal/reconcile"
)

func TestStatusCommand_SingleFile(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.txt", "hello\n")
	runner := newStubRunner().on("status", "M       a.txt\n")

	out, err := execute(t, newTestApp(runner, &memStore{}), "status", file)
	require.NoError(t, err)

	assert.Contains(t, out, "M modified")
	assert.Contains(t, out, file)

	calls := runner.called("status")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"status", "--depth", "empty", "a.txt"}, calls[0])
}

func TestStatusCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "a")
	b := writeFile(t, dir, "b.txt", "b")
	runner := newStubRunner().on("status", "A       x\n")

	out, err := execute(t, newTestApp(runner, &memStore{}), "status", a, b, "--output", "json")
	require.NoError(t, err)

	var entries []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, a, entries[0]["path"])
	assert.Equal(t, "added", entries[0]["status"])
	assert.Equal(t, b, entries[1]["path"])
}

func TestStatusCommand_Directory(t *testing.T) {
	dir := t.TempDir()
	runner := newStubRunner().on("status", "M       a.txt\n?       notes.md\n")

	out, err := execute(t, newTestApp(runner, &memStore{}), "status", dir)
	require.NoError(t, err)

	assert.Contains(t, out, filepath.Join(dir, "a.txt"))
	assert.Contains(t, out, "untracked")
	assert.Contains(t, out, filepath.Join(dir, "notes.md"))
}

func TestStatusCommand_CleanDirectory(t *testing.T) {
	out, err := execute(t, newTestApp(newStubRunner(), &memStore{}), "status", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No local changes")
}

func TestChangedCommand(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.txt", "hello\n")

	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{name: "modified", status: "M       a.txt\n", want: true},
		{name: "added", status: "A       a.txt\n", want: true},
		{name: "clean", status: "", want: false},
		{name: "untracked", status: "?       a.txt\n", want: true},
		{name: "ignored", status: "I       a.txt\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newStubRunner().on("status", tt.status)
			out, err := execute(t, newTestApp(runner, &memStore{}), "changed", file, "-o", "json")
			require.NoError(t, err)

			var got changedResult
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, tt.want, got.Changed)
			assert.Equal(t, file, got.Path)
		})
	}
}

func TestDiffCommand_Native(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.txt", "new\n")
	native := "Index: a.txt\n===================================================================\n--- a.txt\t(revision 3)\n+++ a.txt\t(working copy)\n@@ -1 +1 @@\n-old\n+new\n"
	runner := newStubRunner().on("diff", native)

	out, err := execute(t, newTestApp(runner, &memStore{}), "diff", file)
	require.NoError(t, err)
	assert.Contains(t, out, "-old")
	assert.Contains(t, out, "+new")
}

func TestDiffCommand_JSONProvenance(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.txt", "same\n")
	runner := newStubRunner().on("cat", "same\n")

	out, err := execute(t, newTestApp(runner, &memStore{}), "diff", file, "--output", "json")
	require.NoError(t, err)

	var result reconcile.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, reconcile.ProvenanceContentComparison, result.Provenance)
	assert.True(t, result.Identical)
	assert.Equal(t, reconcile.NoDifferencesMessage, result.Text)
}

func TestDiffCommand_SummaryWhenDiffUnavailable(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.txt", "working copy text\n")
	runner := newStubRunner().on("cat", "base\n")

	out, err := execute(t, newTestApp(runner, &memStore{}), "diff", file, "-o", "json")
	require.NoError(t, err)

	var result reconcile.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, reconcile.ProvenanceSummary, result.Provenance)
	assert.NotEqual(t, reconcile.NoDifferencesMessage, result.Text)
}

func TestDiffCommand_RequiresOnePath(t *testing.T) {
	_, err := execute(t, newTestApp(newStubRunner(), &memStore{}), "diff")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestResolveCommand(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.txt", "x")

	out, err := execute(t, newTestApp(newStubRunner(), &memStore{}), "resolve", file, "-o", "json")
	require.NoError(t, err)

	var tracked map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tracked))
	assert.Equal(t, dir, tracked["root"])
	assert.Equal(t, "a.txt", tracked["relative_path"])
}

func TestResolveCommand_NotInWorkingCopy(t *testing.T) {
	runner := newStubRunner().on("info", "")

	_, err := execute(t, newTestApp(runner, &memStore{}), "resolve", t.TempDir())
	require.ErrorIs(t, err, bridgeerrors.ErrNotInWorkingCopy)
}

func TestRootCommands(t *testing.T) {
	wc := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(wc, ".svn"), 0o750))
	store := &memStore{}
	a := newTestApp(newStubRunner(), store)

	out, err := execute(t, a, "root", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No override root set")

	out, err = execute(t, a, "root", "set", wc)
	require.NoError(t, err)
	assert.Contains(t, out, "Override root set to "+wc)
	assert.Equal(t, wc, store.root)

	out, err = execute(t, a, "root", "show")
	require.NoError(t, err)
	assert.Contains(t, out, wc)

	_, err = execute(t, a, "root", "clear")
	require.NoError(t, err)
	assert.Empty(t, store.root)
}

func TestRootSet_MissingMetadata(t *testing.T) {
	store := &memStore{}

	_, err := execute(t, newTestApp(newStubRunner(), store), "root", "set", t.TempDir())
	require.ErrorIs(t, err, bridgeerrors.ErrMissingMetadata)
	assert.Empty(t, store.root)
}

func TestAddAndRevertCommands(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.txt", "x")
	runner := newStubRunner()
	a := newTestApp(runner, &memStore{})

	out, err := execute(t, a, "add", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Added "+file)

	out, err = execute(t, a, "revert", "--yes", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Reverted "+file)

	assert.Equal(t, []string{"add", "--parents", "a.txt"}, runner.called("add")[0])
	assert.Equal(t, []string{"revert", "a.txt"}, runner.called("revert")[0])
}

func TestRevertCommand_Confirmation(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.txt", "x")

	t.Run("non-interactive without --yes", func(t *testing.T) {
		runner := newStubRunner()
		_, err := execute(t, newTestApp(runner, &memStore{}), "revert", file)
		require.ErrorIs(t, err, bridgeerrors.ErrConfirmationRequired)
		assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
		assert.Empty(t, runner.called("revert"))
	})

	t.Run("declined", func(t *testing.T) {
		runner := newStubRunner()
		a := newTestApp(runner, &memStore{})
		a.interactive = func() bool { return true }
		var asked string
		a.confirm = func(title, _ string) (bool, error) {
			asked = title
			return false, nil
		}

		_, err := execute(t, a, "revert", file)
		require.ErrorIs(t, err, bridgeerrors.ErrOperationCanceled)
		assert.Equal(t, "Revert 1 path(s)?", asked)
		assert.Empty(t, runner.called("revert"))
	})

	t.Run("accepted", func(t *testing.T) {
		runner := newStubRunner()
		a := newTestApp(runner, &memStore{})
		a.interactive = func() bool { return true }
		a.confirm = func(string, string) (bool, error) { return true, nil }

		_, err := execute(t, a, "revert", file)
		require.NoError(t, err)
		assert.Len(t, runner.called("revert"), 1)
	})
}

func TestCommitCommand(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.txt", "x")
	runner := newStubRunner().on("commit", "Sending        a.txt\nTransmitting file data .done\nCommitted revision 7.\n")

	out, err := execute(t, newTestApp(runner, &memStore{}), "commit", "-m", "Fix typo", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Committed revision 7")

	calls := runner.called("commit")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"commit", "-m", "Fix typo", "a.txt"}, calls[0])
}

func TestCommitCommand_MessageRequired(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.txt", "x")

	_, err := execute(t, newTestApp(newStubRunner(), &memStore{}), "commit", file)
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))

	_, err = execute(t, newTestApp(newStubRunner(), &memStore{}), "commit", "-m", "  ", file)
	require.ErrorIs(t, err, bridgeerrors.ErrEmptyValue)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestUpdateCommand(t *testing.T) {
	runner := newStubRunner().on("update", "Updating '.':\nAt revision 12.\n")

	out, err := execute(t, newTestApp(runner, &memStore{}), "update", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "At revision 12")
}

func TestLogCommand(t *testing.T) {
	runner := newStubRunner().on("log", testLogXML)

	out, err := execute(t, newTestApp(runner, &memStore{}), "log", t.TempDir(), "--limit", "3")
	require.NoError(t, err)

	assert.Contains(t, out, "r41 | alice")
	assert.Contains(t, out, "M /trunk/a.txt")
	assert.Contains(t, out, "Fix overflow in parser")

	calls := runner.called("log")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "3")
}

func TestLogCommand_OneLine(t *testing.T) {
	runner := newStubRunner().on("log", testLogXML)
	a := newTestApp(runner, &memStore{})
	a.width = func() int { return 20 }

	out, err := execute(t, a, "log", t.TempDir(), "--oneline")
	require.NoError(t, err)

	assert.Equal(t, "r41 alice Fix overf…\n", out)
}

func TestInfoCommand(t *testing.T) {
	out, err := execute(t, newTestApp(newStubRunner(), &memStore{}), "info", t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, out, "https://svn.example.com/repo/trunk/a.txt")
	assert.Contains(t, out, "Last changed by:   carol")
}

func TestConfigShowCommand(t *testing.T) {
	out, err := execute(t, newTestApp(newStubRunner(), &memStore{}), "config", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "svn:")
	assert.Contains(t, out, "binary: svn")
	assert.Contains(t, out, "locale: en_US.UTF-8")
	assert.Contains(t, out, "enable_detection: true")
}

func TestConfigShowCommand_JSON(t *testing.T) {
	out, err := execute(t, newTestApp(newStubRunner(), &memStore{}), "config", "show", "-o", "json")
	require.NoError(t, err)

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "svn", doc["svn"]["binary"])
}
