package pathmap

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"turnsync/internal/model"
)

type CopyError struct {
	Src string
	Dst string
	Err error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("failed to copy %s to %s: %v", e.Src, e.Dst, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// CopyTo mirrors task.Source, which must live under task.SourceRoot, into
// the same relative location under task.TargetRoot. An existing target is
// overwritten. It returns the target path and the SHA-256 of the bytes
// written.
func CopyTo(task model.CopyTask) (string, []byte, error) {
	src := task.Source

	rel, err := RelativePath(task.SourceRoot, src)
	if err != nil {
		return "", nil, err
	}

	dst := Project(rel, task.TargetRoot)

	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return dst, nil, &CopyError{Src: src, Dst: dst, Err: fmt.Errorf("failed to create parent dir: %w", err)}
	}

	sum, err := copyFile(src, dst)
	if err != nil {
		return dst, nil, &CopyError{Src: src, Dst: dst, Err: err}
	}

	return dst, sum, nil
}

func copyFile(src, dst string) ([]byte, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open src: %w", err)
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	h := sha256.New()
	if err := atomicWrite(dst, io.TeeReader(f, h)); err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

// atomicWrite writes through a uniquely named temp file in the target
// directory so that concurrent copies to one target never interleave bytes.
func atomicWrite(dst string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename: %w", err)
	}

	return nil
}
