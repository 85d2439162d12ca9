package persist

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"

	backoff "github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/stylist/internal/logging"
	"github.com/wharflab/stylist/internal/workspace"
)

func fileDoc(t *testing.T, dir, name, content string) *workspace.Document {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return &workspace.Document{ID: path, ProjectID: dir, Name: name, Path: path, Content: []byte(content)}
}

func TestPersist_ChangedAddedRemoved(t *testing.T) {
	dir := t.TempDir()
	trigger := fileDoc(t, dir, "a.go", "package a\n")
	doomed := fileDoc(t, dir, "b.go", "package a\n")

	changed := *trigger
	changed.Content = []byte("package a // changed\n")
	cs := workspace.ChangeSet{
		Changed: []*workspace.Document{&changed},
		Added:   []*workspace.Document{{ID: dir + "#doc.go", ProjectID: dir, Name: "doc.go", Content: []byte("// Package a.\npackage a\n")}},
		Removed: []*workspace.Document{doomed},
	}

	res, err := NewWriter(false).Persist(context.Background(), trigger, cs)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Persisted())
	assert.Empty(t, res.Failed)
	assert.Empty(t, res.Skipped)

	data, err := os.ReadFile(trigger.Path)
	require.NoError(t, err)
	assert.Equal(t, "package a // changed\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "doc.go"))
	require.NoError(t, err)
	assert.Equal(t, "// Package a.\npackage a\n", string(data))

	_, err = os.Stat(doomed.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestPersist_PreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not preserved on windows")
	}
	dir := t.TempDir()
	doc := fileDoc(t, dir, "a.go", "package a\n")
	require.NoError(t, os.Chmod(doc.Path, 0o600))

	changed := *doc
	changed.Content = []byte("package b\n")
	_, err := NewWriter(false).Persist(context.Background(), doc, workspace.ChangeSet{Changed: []*workspace.Document{&changed}})
	require.NoError(t, err)

	info, err := os.Stat(doc.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestPersist_PathlessSkipped(t *testing.T) {
	mem := &workspace.Document{ID: "p#x.go", ProjectID: "p", Name: "x.go", Content: []byte("package x\n")}
	cs := workspace.ChangeSet{
		Changed: []*workspace.Document{mem},
		Added:   []*workspace.Document{{ID: "p#y.go", ProjectID: "p", Name: "y.go"}},
		Removed: []*workspace.Document{mem},
	}

	res, err := NewWriter(false).Persist(context.Background(), mem, cs)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Persisted())
	assert.Equal(t, []string{"x.go", "y.go", "x.go"}, res.Skipped)
}

func TestPersist_AddedExistingOverwrites(t *testing.T) {
	dir := t.TempDir()
	trigger := fileDoc(t, dir, "a.go", "package a\n")
	fileDoc(t, dir, "doc.go", "// existing content that is longer\n")

	cs := workspace.ChangeSet{Added: []*workspace.Document{{ID: dir + "#doc.go", Name: "doc.go", Content: []byte("new\n")}}}
	res, err := NewWriter(false).Persist(context.Background(), trigger, cs)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "doc.go")}, res.Created)
	assert.Empty(t, res.Failed)

	data, err := os.ReadFile(filepath.Join(dir, "doc.go"))
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(data))
}

func TestRun_RetryAfterPartialCreate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.go")
	w := &Writer{newBackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} }}

	var ok, failed []string
	calls := 0
	w.run(context.Background(), logging.Discard(), opCreate, path, &ok, &failed, func() error {
		calls++
		if calls == 1 {
			require.NoError(t, os.WriteFile(path, []byte("// Package"), 0o644))
			return &os.PathError{Op: "write", Path: path, Err: syscall.EINTR}
		}
		return overwrite(path, []byte("// Package a.\npackage a\n"))
	})
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{path}, ok)
	assert.Empty(t, failed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "// Package a.\npackage a\n", string(data))
}

func TestRun_LogsPastTense(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	log := logging.New(&buf, logging.Options{Verbose: true})

	doc := fileDoc(t, dir, "a.go", "package a\n")
	changed := *doc
	changed.Content = []byte("package b\n")
	cs := workspace.ChangeSet{
		Changed: []*workspace.Document{&changed},
		Added:   []*workspace.Document{{ID: dir + "#doc.go", Name: "doc.go", Content: []byte("package a\n")}},
		Removed: []*workspace.Document{fileDoc(t, dir, "b.go", "package a\n")},
	}
	_, err := NewWriter(false).Persist(logging.WithLogger(context.Background(), log), doc, cs)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "msg=wrote")
	assert.Contains(t, out, "msg=created")
	assert.Contains(t, out, "msg=deleted")
	assert.NotContains(t, out, "writed")
}

func TestPersist_DryRun(t *testing.T) {
	dir := t.TempDir()
	doc := fileDoc(t, dir, "a.go", "package a\n")
	changed := *doc
	changed.Content = []byte("package b\n")

	res, err := NewWriter(true).Persist(context.Background(), doc, workspace.ChangeSet{
		Changed: []*workspace.Document{&changed},
		Removed: []*workspace.Document{doc},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Persisted())

	data, err := os.ReadFile(doc.Path)
	require.NoError(t, err)
	assert.Equal(t, "package a\n", string(data))
}

func TestPersist_Canceled(t *testing.T) {
	dir := t.TempDir()
	doc := fileDoc(t, dir, "a.go", "package a\n")
	changed := *doc
	changed.Content = []byte("package b\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewWriter(false).Persist(ctx, doc, workspace.ChangeSet{Changed: []*workspace.Document{&changed}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	w := &Writer{newBackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} }}
	calls := 0
	err := w.retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &os.PathError{Op: "write", Path: "x", Err: syscall.EAGAIN}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	w := &Writer{newBackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} }}
	calls := 0
	err := w.retry(context.Background(), func() error {
		calls++
		return &os.PathError{Op: "write", Path: "x", Err: syscall.EACCES}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_BoundedTries(t *testing.T) {
	w := &Writer{MaxTries: 2, newBackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} }}
	calls := 0
	err := w.retry(context.Background(), func() error {
		calls++
		return syscall.EBUSY
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestResult_Add(t *testing.T) {
	var total Result
	total.Add(Result{Written: []string{"a"}, Skipped: []string{"b"}})
	total.Add(Result{Created: []string{"c"}, Deleted: []string{"d"}, Failed: []string{"e"}})
	assert.Equal(t, 3, total.Persisted())
	assert.Len(t, total.Skipped, 1)
	assert.Len(t, total.Failed, 1)
}
