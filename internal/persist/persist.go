// Package persist writes change sets back to storage.
package persist

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	backoff "github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"

	"github.com/wharflab/stylist/internal/logging"
	"github.com/wharflab/stylist/internal/workspace"
)

// DefaultMaxTries bounds attempts per file operation (1 original + retries).
const DefaultMaxTries = 4

// Result summarizes one Persist call.
type Result struct {
	// Written lists overwritten paths.
	Written []string
	// Created lists paths of added documents.
	Created []string
	// Deleted lists removed paths.
	Deleted []string
	// Skipped lists documents that had no resolvable path.
	Skipped []string
	// Failed lists paths whose operation failed permanently.
	Failed []string
}

// Persisted returns the number of documents written, created, or deleted.
func (r Result) Persisted() int {
	return len(r.Written) + len(r.Created) + len(r.Deleted)
}

// Add accumulates other into r.
func (r *Result) Add(other Result) {
	r.Written = append(r.Written, other.Written...)
	r.Created = append(r.Created, other.Created...)
	r.Deleted = append(r.Deleted, other.Deleted...)
	r.Skipped = append(r.Skipped, other.Skipped...)
	r.Failed = append(r.Failed, other.Failed...)
}

// Writer persists change sets to the filesystem.
type Writer struct {
	// DryRun reports what would change without touching storage.
	DryRun bool

	// MaxTries bounds attempts per operation. Zero means DefaultMaxTries.
	MaxTries uint

	newBackOff func() backoff.BackOff
}

// NewWriter returns a filesystem writer.
func NewWriter(dryRun bool) *Writer {
	return &Writer{DryRun: dryRun}
}

// Persist writes cs. Changed documents are overwritten in place, keeping
// their permissions. Added documents are written next to trigger, replacing
// any file already at that path. Removed
// documents are deleted. Documents without a resolvable path are logged and
// skipped; failed operations are logged and counted. Only cancellation is
// returned as an error.
func (w *Writer) Persist(ctx context.Context, trigger *workspace.Document, cs workspace.ChangeSet) (Result, error) {
	var res Result
	log := logging.FromContext(ctx)
	if trigger != nil {
		log = log.WithField("document", trigger.DisplayPath())
	}

	for _, d := range cs.Changed {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !d.HasPath() {
			log.WithField("changed", d.Name).Warn("changed document has no path; not persisted")
			res.Skipped = append(res.Skipped, d.Name)
			continue
		}
		w.run(ctx, log, opWrite, d.Path, &res.Written, &res.Failed, func() error {
			return overwrite(d.Path, d.Content)
		})
	}

	for _, d := range cs.Added {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !trigger.HasPath() {
			log.WithField("added", d.Name).Warn("added document has no path; not persisted")
			res.Skipped = append(res.Skipped, d.Name)
			continue
		}
		path := filepath.Join(filepath.Dir(trigger.Path), d.Name)
		w.run(ctx, log, opCreate, path, &res.Created, &res.Failed, func() error {
			return overwrite(path, d.Content)
		})
	}

	for _, d := range cs.Removed {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !d.HasPath() {
			log.WithField("removed", d.Name).Warn("removed document has no path; not persisted")
			res.Skipped = append(res.Skipped, d.Name)
			continue
		}
		w.run(ctx, log, opDelete, d.Path, &res.Deleted, &res.Failed, func() error {
			return remove(d.Path)
		})
	}
	return res, nil
}

type fileOp struct {
	verb, done string
}

var (
	opWrite  = fileOp{verb: "write", done: "wrote"}
	opCreate = fileOp{verb: "create", done: "created"}
	opDelete = fileOp{verb: "delete", done: "deleted"}
)

// run performs op with retries and files path into ok or failed.
func (w *Writer) run(
	ctx context.Context,
	log logrus.FieldLogger,
	kind fileOp,
	path string,
	ok, failed *[]string,
	op func() error,
) {
	if w.DryRun {
		log.WithField("path", path).Infof("would %s", kind.verb)
		*ok = append(*ok, path)
		return
	}
	if err := w.retry(ctx, op); err != nil {
		log.WithField("path", path).Errorf("failed to %s: %v", kind.verb, err)
		*failed = append(*failed, path)
		return
	}
	log.WithField("path", path).Debug(kind.done)
	*ok = append(*ok, path)
}

func (w *Writer) retry(ctx context.Context, op func() error) error {
	tries := w.MaxTries
	if tries == 0 {
		tries = DefaultMaxTries
	}
	newBackOff := w.newBackOff
	if newBackOff == nil {
		newBackOff = defaultBackOff
	}
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op()
		if err == nil {
			return struct{}{}, nil
		}
		if isTransient(err) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	},
		backoff.WithBackOff(newBackOff()),
		backoff.WithMaxTries(tries),
		backoff.WithMaxElapsedTime(0),
	)
	return err
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.Multiplier = 2.0
	return b
}

// isTransient reports whether err is worth retrying.
func isTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.EINTR)
}

// overwrite replaces the file content, keeping its permissions. The file is
// truncated on every attempt, so a retry after a partial write starts over.
func overwrite(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, content, mode)
}

func remove(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
