// Package uploads keeps uploaded CV files on the local filesystem.
package uploads

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// URLPrefix is the public path stored CVs are served under
const URLPrefix = "/api/uploads/"

var ErrInvalidName = errors.New("invalid upload file name")

// File describes one stored upload
type File struct {
	Name        string
	CandidateID string
	ModTime     time.Time
	Size        int64
}

type Store struct {
	dir string
}

// NewStore creates dir if needed
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// FileName is the stored name of a candidate's CV
func FileName(candidateID string) string { return candidateID + ".pdf" }

// URL is the public URL of a candidate's CV
func URL(candidateID string) string { return URLPrefix + FileName(candidateID) }

// Save writes the CV atomically and returns its public URL
func (s *Store) Save(candidateID string, data []byte) (string, error) {
	name := FileName(candidateID)
	if err := validName(name); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("store upload: %w", err)
	}
	return URL(candidateID), nil
}

// Open returns a stored file. Names containing path separators or dot
// segments are rejected.
func (s *Store) Open(name string) (*os.File, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.dir, name))
}

func (s *Store) Remove(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// List returns stored CVs, skipping temp files and directories
func (s *Store) List() ([]File, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read uploads dir: %w", err)
	}
	var out []File
	for _, e := range entries {
		if e.IsDir() || validName(e.Name()) != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, File{
			Name:        e.Name(),
			CandidateID: strings.TrimSuffix(e.Name(), ".pdf"),
			ModTime:     info.ModTime(),
			Size:        info.Size(),
		})
	}
	return out, nil
}

func validName(name string) error {
	switch {
	case name == "", strings.HasPrefix(name, "."),
		strings.ContainsAny(name, `/\`), strings.Contains(name, ".."),
		!strings.HasSuffix(name, ".pdf"), filepath.Base(name) != name:
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
