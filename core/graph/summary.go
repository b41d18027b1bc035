package graph

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// AcrossSummaryFile is the digest spanning all chipmakers.
const AcrossSummaryFile = "summary.md"

// SummaryStore provides precomputed markdown digests of the last seven days.
type SummaryStore interface {
	Summary(chipmaker string) (string, error)
	Across() (string, error)
}

// DirSummaryStore reads digests from "<chipmaker>_7day.md" files in a directory.
type DirSummaryStore struct {
	Dir string
}

// NewDirSummaryStore creates a summary store reading from dir.
func NewDirSummaryStore(dir string) *DirSummaryStore {
	return &DirSummaryStore{Dir: dir}
}

// SummaryFile returns the file name of the chipmaker digest.
func SummaryFile(chipmaker string) string {
	return strings.ToLower(strings.TrimSpace(chipmaker)) + "_7day.md"
}

// Summary reads the digest of the chipmaker.
func (s *DirSummaryStore) Summary(chipmaker string) (string, error) {
	return s.read(SummaryFile(chipmaker))
}

// Across reads the digest spanning all chipmakers.
func (s *DirSummaryStore) Across() (string, error) {
	return s.read(AcrossSummaryFile)
}

func (s *DirSummaryStore) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("no summary %s in %s", name, s.Dir)
	} else if err != nil {
		return "", err
	}
	return string(data), nil
}
