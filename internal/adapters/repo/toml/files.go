// Package toml persists history, sessions and escalations as TOML files.
package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	dataDirKey     = "data.dir"
	defaultDataDir = ".support-agent"
	dataFileMode   = 0o600
	dataDirMode    = 0o700
	lockSuffix     = ".lock"
	lockRetryDelay = 10 * time.Millisecond
)

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

// resolvePath returns cfg[key], else name inside data.dir, else name inside ~/.support-agent.
func resolvePath(cfg *viper.Viper, key, name string) (string, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(key)
	if path == "" {
		dir := cfg.GetString(dataDirKey)
		if dir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home directory: %w", err)
			}
			dir = filepath.Join(homeDir, defaultDataDir)
		}
		path = filepath.Join(dir, name)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", key, err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

// withFileLock runs fn holding the in-process mutex for path and an exclusive
// flock on path+".lock", so a read-modify-write from another sa process
// cannot interleave with this one.
func withFileLock(ctx context.Context, path string, fn func() error) error {
	mu := lockForPath(path)
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), dataDirMode); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	fileLock := flock.New(path + lockSuffix)
	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", filepath.Base(path), err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", filepath.Base(path))
	}
	defer func() { _ = fileLock.Unlock() }()

	return fn()
}

// withFileRLock is the shared counterpart of withFileLock. Nothing is locked
// when the directory does not exist yet, since there is nothing to read.
func withFileRLock(ctx context.Context, path string, fn func() error) error {
	mu := lockForPath(path)
	mu.RLock()
	defer mu.RUnlock()

	if _, err := os.Stat(filepath.Dir(path)); errors.Is(err, os.ErrNotExist) {
		return fn()
	}

	fileLock := flock.New(path + lockSuffix)
	locked, err := fileLock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", filepath.Base(path), err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", filepath.Base(path))
	}
	defer func() { _ = fileLock.Unlock() }()

	return fn()
}

// readTOMLFile decodes path into out. A missing file leaves out untouched and reports false.
func readTOMLFile(path, label string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s file: %w", label, err)
	}

	if err := toml.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %s file: %w", label, err)
	}

	return true, nil
}

// writeTOMLFile replaces path atomically through a temp file in the same directory.
func writeTOMLFile(path, label string, in any) error {
	if err := os.MkdirAll(filepath.Dir(path), dataDirMode); err != nil {
		return fmt.Errorf("create %s directory: %w", label, err)
	}

	data, err := toml.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s file: %w", label, err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), "."+label+"-*.toml.tmp")
	if err != nil {
		return fmt.Errorf("create temp %s file: %w", label, err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp %s file: %w", label, err)
	}

	if err := tempFile.Chmod(dataFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp %s file: %w", label, err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp %s file: %w", label, err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace %s file: %w", label, err)
	}

	cleanup = false
	return nil
}

func removeFile(path, label string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s file: %w", label, err)
	}
	return nil
}
