package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/dori/taskdeck/internal/db"
)

// ErrAlreadyRunning means another server holds the data directory lock
var ErrAlreadyRunning = errors.New("another taskdeck server is already running")

// Backend holds the companion server's storage
type Backend struct {
	DB       *db.DB
	DataDir  string
	lockFile *flock.Flock
}

// OpenBackend locks dataDir (db.DefaultDataDir when empty) and opens its database
func OpenBackend(dataDir string) (*Backend, error) {
	if dataDir == "" {
		dataDir = db.DefaultDataDir()
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	b := &Backend{DataDir: dataDir}

	// Acquire lock to ensure single instance
	if err := b.acquireLock(); err != nil {
		return nil, err
	}

	database, err := db.Open(filepath.Join(dataDir, "tasks.db"))
	if err != nil {
		b.releaseLock()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	b.DB = database

	return b, nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (b *Backend) acquireLock() error {
	b.lockFile = flock.New(filepath.Join(b.DataDir, "taskdeck.lock"))

	locked, err := b.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return ErrAlreadyRunning
	}

	return nil
}

// releaseLock releases the file lock
func (b *Backend) releaseLock() {
	if b.lockFile != nil {
		b.lockFile.Unlock()
	}
}

// Close cleans up backend resources
func (b *Backend) Close() error {
	var errs []error

	if b.DB != nil {
		if err := b.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	b.releaseLock()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
