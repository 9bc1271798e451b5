// Package archive keeps a filesystem copy of every accepted upload. The
// latest file is stored under a fixed name so the current blog source is
// always easy to find, and each upload also gets a timestamped copy for
// later inspection.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// CurrentName is the fixed name the most recent upload is stored under.
const CurrentName = "contenido_blog.csv"

// Store writes accepted uploads to a directory on local disk.
type Store struct {
	dir string
}

// NewStore creates the archive directory if it does not exist.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Archive stores data as the current blog source and as a timestamped copy.
// The current file is replaced atomically via rename so readers never see a
// partial write.
func (s *Store) Archive(fileName string, data []byte) error {
	tmp := filepath.Join(s.dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write archive file: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, CurrentName)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace current file: %w", err)
	}

	copyName := fmt.Sprintf("%s_%s%s",
		time.Now().UTC().Format("20060102T150405"),
		uuid.NewString()[:8],
		sanitizeExt(fileName),
	)
	if err := os.WriteFile(filepath.Join(s.dir, copyName), data, 0o644); err != nil {
		return fmt.Errorf("write timestamped copy: %w", err)
	}
	return nil
}

// sanitizeExt returns the original file's extension, defaulting to .csv when
// the name carries none.
func sanitizeExt(fileName string) string {
	if ext := filepath.Ext(fileName); ext != "" {
		return ext
	}
	return ".csv"
}
