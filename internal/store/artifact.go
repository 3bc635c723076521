package store

import (
	"bufio"
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/renameio"

	mxerrors "github.com/Aman-CERP/memex/internal/errors"
	"github.com/Aman-CERP/memex/internal/memory"
)

// ArtifactVersion is bumped whenever the encoded layout of Artifact changes.
const ArtifactVersion = 1

// Artifact is the persisted index: entries, the fitted model and the
// document-term matrix, where Matrix.Rows[i] belongs to Entries[i].
type Artifact struct {
	Version   int
	Entries   []*memory.Entry
	Model     *Model
	Matrix    *Matrix
	IndexedAt time.Time
}

// lockPath returns the path of the lock file guarding an artifact.
func lockPath(path string) string {
	return path + ".lock"
}

// SaveArtifact writes a to path atomically under an exclusive file lock.
// Readers never observe a partially written artifact.
func SaveArtifact(ctx context.Context, path string, a *Artifact) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return mxerrors.New(mxerrors.ErrCodeFilePermission, fmt.Sprintf("create index directory %s", dir), err)
	}

	fl := flock.New(lockPath(path))
	if err := acquire(ctx, fl.TryLock, path); err != nil {
		return err
	}
	defer unlock(fl)

	pf, err := renameio.TempFile(dir, path)
	if err != nil {
		return mxerrors.New(mxerrors.ErrCodeFilePermission, "create temporary index file", err)
	}
	defer func() {
		// no-op after a successful replace
		_ = pf.Cleanup()
	}()

	w := bufio.NewWriter(pf)
	if err := gob.NewEncoder(w).Encode(a); err != nil {
		return mxerrors.New(mxerrors.ErrCodeIndexFailed, "encode index artifact", err)
	}
	if err := w.Flush(); err != nil {
		return mxerrors.New(mxerrors.ErrCodeIndexFailed, "write index artifact", err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return mxerrors.New(mxerrors.ErrCodeIndexFailed, "replace index artifact", err)
	}

	slog.Debug("artifact_saved",
		slog.String("path", path),
		slog.Int("entries", len(a.Entries)),
		slog.Int("terms", a.Model.Size()))
	return nil
}

// LoadArtifact reads the artifact at path under a shared file lock.
//
// A missing file yields ErrCodeFileNotFound wrapping os.ErrNotExist. An artifact
// that cannot be decoded or is internally inconsistent yields ErrCorruptIndex; one
// written by a different format version or with different hyperparameters than
// expect yields ErrStaleIndex.
func LoadArtifact(ctx context.Context, path string, expect VectorizerConfig) (*Artifact, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, mxerrors.New(mxerrors.ErrCodeFileNotFound, fmt.Sprintf("index artifact %s not found", path), err)
	}

	fl := flock.New(lockPath(path))
	if err := acquire(ctx, fl.TryRLock, path); err != nil {
		return nil, err
	}
	defer unlock(fl)

	f, err := os.Open(path)
	if err != nil {
		return nil, mxerrors.New(mxerrors.ErrCodeFileNotFound, fmt.Sprintf("open index artifact %s", path), err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("artifact_close_failed", slog.String("error", err.Error()))
		}
	}()

	var a Artifact
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&a); err != nil {
		return nil, mxerrors.New(mxerrors.ErrCodeCorruptIndex, "decode index artifact", err).
			WithDetail("path", path)
	}
	if err := a.validate(expect); err != nil {
		return nil, err
	}

	// Build the vocabulary map before the artifact is shared between readers.
	a.Model.Vocabulary()
	return &a, nil
}

func (a *Artifact) validate(expect VectorizerConfig) error {
	if a.Version != ArtifactVersion {
		return mxerrors.New(mxerrors.ErrCodeStaleIndex,
			fmt.Sprintf("index artifact version %d, want %d", a.Version, ArtifactVersion), nil)
	}
	if a.Model == nil || a.Matrix == nil {
		return mxerrors.New(mxerrors.ErrCodeCorruptIndex, "index artifact has no model", nil)
	}
	if a.Model.Config != expect {
		return mxerrors.New(mxerrors.ErrCodeStaleIndex, "index artifact was built with different vectorizer settings", nil)
	}
	if len(a.Model.IDF) != len(a.Model.Terms) || a.Matrix.Cols != len(a.Model.Terms) {
		return mxerrors.New(mxerrors.ErrCodeCorruptIndex, "index artifact vocabulary is inconsistent", nil)
	}
	if len(a.Matrix.Rows) != len(a.Entries) {
		return mxerrors.New(mxerrors.ErrCodeCorruptIndex,
			fmt.Sprintf("index artifact has %d rows for %d entries", len(a.Matrix.Rows), len(a.Entries)), nil)
	}
	return nil
}

// acquire takes a lock with try, retrying while another process holds it.
func acquire(ctx context.Context, try func() (bool, error), path string) error {
	return mxerrors.Retry(ctx, mxerrors.DefaultRetryConfig(), func() error {
		ok, err := try()
		if err != nil {
			return mxerrors.New(mxerrors.ErrCodeFilePermission, "lock index artifact", err)
		}
		if !ok {
			return mxerrors.New(mxerrors.ErrCodeIndexLocked, fmt.Sprintf("index artifact %s is locked by another process", path), nil)
		}
		return nil
	})
}

func unlock(fl *flock.Flock) {
	if err := fl.Unlock(); err != nil {
		slog.Warn("artifact_unlock_failed",
			slog.String("path", fl.Path()),
			slog.String("error", err.Error()))
	}
}
