package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/welldanyogia/job-application-tracker/internal/errors"
)

var (
	ErrEmptyFile    = errors.New("file is empty")
	ErrFileNotFound = errors.New("file not found")
)

// FileStorage defines the interface for resume file storage
type FileStorage interface {
	Store(originalFilename string, content io.Reader) (string, error)
	Resolve(storedName string) string
	Stat(storedName string) FileInfo
	Open(storedName string) (io.ReadCloser, error)
	BasePath() string
}

// FileInfo describes what is on disk for a stored name
type FileInfo struct {
	Path     string
	Exists   bool
	Readable bool
}

// localStorage implements FileStorage using a flat local directory
type localStorage struct {
	basePath string
}

// NewLocalStorage resolves baseDir to an absolute path and creates it.
// A failure here is a configuration error, not a per-request one.
func NewLocalStorage(baseDir string) (FileStorage, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid upload directory %q: %w", apperrors.ErrConfiguration, baseDir, err)
	}
	absBase = filepath.Clean(absBase)

	if err := os.MkdirAll(absBase, 0755); err != nil {
		return nil, fmt.Errorf("%w: could not create the directory where uploaded files will be stored: %s: %w",
			apperrors.ErrConfiguration, absBase, err)
	}
	return &localStorage{basePath: absBase}, nil
}

// BasePath returns the absolute storage directory
func (s *localStorage) BasePath() string {
	return s.basePath
}

// extension returns everything from the last dot of the original name,
// or an empty string when there is none.
func extension(originalFilename string) string {
	idx := strings.LastIndex(originalFilename, ".")
	if idx < 0 {
		return ""
	}
	return originalFilename[idx:]
}

// Store writes content under "<uuid><ext>" and returns the stored name
func (s *localStorage) Store(originalFilename string, content io.Reader) (string, error) {
	if content == nil {
		return "", ErrEmptyFile
	}

	// Peek so that empty uploads never reach the disk
	br := bufio.NewReader(content)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrEmptyFile
		}
		return "", fmt.Errorf("%w: could not read file %s: %w", apperrors.ErrStorage, originalFilename, err)
	}

	storedName := uuid.New().String() + extension(originalFilename)
	fullPath := s.Resolve(storedName)

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("%w: could not store file %s: %w", apperrors.ErrStorage, originalFilename, err)
	}

	if _, err := io.Copy(file, br); err != nil {
		file.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("%w: could not store file %s: %w", apperrors.ErrStorage, originalFilename, err)
	}

	if err := file.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("%w: could not store file %s: %w", apperrors.ErrStorage, originalFilename, err)
	}

	return storedName, nil
}

// Resolve joins the stored name onto the base directory. It does not check
// that the file exists.
func (s *localStorage) Resolve(storedName string) string {
	return filepath.Clean(filepath.Join(s.basePath, storedName))
}

// Stat reports whether the stored file exists and whether it can be opened
func (s *localStorage) Stat(storedName string) FileInfo {
	info := FileInfo{Path: s.Resolve(storedName)}

	if _, err := os.Stat(info.Path); err == nil {
		info.Exists = true
	}

	if f, err := os.Open(info.Path); err == nil {
		info.Readable = true
		f.Close()
	}

	return info
}

// Open opens a stored file for reading
func (s *localStorage) Open(storedName string) (io.ReadCloser, error) {
	file, err := os.Open(s.Resolve(storedName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("%w: failed to open file: %w", apperrors.ErrStorage, err)
	}
	return file, nil
}
