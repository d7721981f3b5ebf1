package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileSuffix = ".lock"

// BatchLock manages a file-based lock serializing rollup batches and other
// single-writer jobs against the SQLite database.
type BatchLock struct {
	lock *flock.Flock
	path string
}

// NewBatchLock creates a new lock next to the given database path.
func NewBatchLock(dbPath string) (*BatchLock, error) {
	absPath, err := GetAbsDBPath(dbPath)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute db path: %w", err)
	}
	lockPath := absPath + lockFileSuffix
	return &BatchLock{
		lock: flock.New(lockPath),
		path: lockPath,
	}, nil
}

// Lock acquires the batch lock, waiting if necessary.
// It will print a message if it has to wait.
func (l *BatchLock) Lock() error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}

	if !locked {
		fmt.Fprintf(os.Stderr, "Another answerscope batch is writing to the database, waiting for it to finish...\n")
		if err := l.lock.Lock(); err != nil {
			return fmt.Errorf("failed to acquire lock on %s after waiting: %w", l.path, err)
		}
	}
	return nil
}

// Unlock releases the batch lock.
func (l *BatchLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil {
		// Suppress error if the lock file doesn't exist, as it means we don't hold the lock.
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}

// GetAbsDBPath resolves the database path.
func GetAbsDBPath(dbPath string) (string, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "answerscope", "answerscope.sqlite"), nil
	}
	return filepath.Abs(dbPath)
}
