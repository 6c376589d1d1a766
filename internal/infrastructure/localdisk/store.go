// Package localdisk stores uploaded videos in a directory served as static files.
package localdisk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/applicant-intake/internal/domain"
	"github.com/applicant-intake/internal/pkg/id"
)

// Store writes files under dir. Keys are bare file names.
type Store struct {
	dir string
	now func() time.Time
}

func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

func (s *Store) Dir() string { return s.dir }

// Save writes r to a new file named <unix-millis>-<ulid>.<ext> and returns its key.
// At most limit bytes are accepted.
func (s *Store) Save(_ context.Context, r io.Reader, ext string, limit int64) (string, int64, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create upload dir: %w", err)
	}
	key := strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + strings.ToLower(id.New()) + "." + ext
	f, err := os.OpenFile(filepath.Join(s.dir, key), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create upload file: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > limit {
		err = fmt.Errorf("file exceeds %d bytes: %w", limit, domain.ErrBadRequest)
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, key))
		return "", 0, err
	}
	return key, n, nil
}

// Head reports whether key exists and its size.
func (s *Store) Head(_ context.Context, key string) (domain.UploadInfo, error) {
	p, err := s.path(key)
	if err != nil {
		return domain.UploadInfo{}, nil
	}
	st, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.UploadInfo{}, nil
	}
	if err != nil {
		return domain.UploadInfo{}, err
	}
	return domain.UploadInfo{Exists: true, Size: st.Size()}, nil
}

// Delete removes key. A missing file is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) path(key string) (string, error) {
	if key == "" || filepath.Base(key) != key || key == "." || key == ".." {
		return "", fmt.Errorf("invalid upload key %q: %w", key, domain.ErrBadRequest)
	}
	return filepath.Join(s.dir, key), nil
}
