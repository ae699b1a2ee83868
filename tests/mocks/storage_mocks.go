package mocks

import (
	"io"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/job-application-tracker/internal/storage"
)

// MockFileStorage implements storage.FileStorage
type MockFileStorage struct {
	mock.Mock
}

// Store stores a file and returns the generated name
func (m *MockFileStorage) Store(originalFilename string, content io.Reader) (string, error) {
	args := m.Called(originalFilename, content)
	return args.String(0), args.Error(1)
}

// Resolve returns the full path for a stored name
func (m *MockFileStorage) Resolve(storedName string) string {
	args := m.Called(storedName)
	return args.String(0)
}

// Stat reports presence of a stored file
func (m *MockFileStorage) Stat(storedName string) storage.FileInfo {
	args := m.Called(storedName)
	return args.Get(0).(storage.FileInfo)
}

// Open opens a stored file
func (m *MockFileStorage) Open(storedName string) (io.ReadCloser, error) {
	args := m.Called(storedName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// BasePath returns the storage directory
func (m *MockFileStorage) BasePath() string {
	args := m.Called()
	return args.String(0)
}
