package modelcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/zkaiera/last30days-skill/internal/db"
)

type fileEntry struct {
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// File persists resolutions in a single JSON document guarded by a
// cross-process lock, so concurrent CLI runs do not clobber each other.
// The flock handle is not goroutine-safe, hence mu.
type File struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
	ttl  time.Duration
	now  func() time.Time
}

// NewFile creates a file-backed cache at path. ttl <= 0 never expires.
func NewFile(path string, ttl time.Duration) *File {
	return &File{
		path: path,
		lock: flock.New(path + ".lock"),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the cached value or db.ErrKeyNotFound (also for expired entries).
func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.acquire(ctx, false); err != nil {
		return nil, err
	}
	defer func() { _ = f.lock.Unlock() }()

	entries, err := f.read()
	if err != nil {
		return nil, err
	}
	e, ok := entries[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	if f.ttl > 0 && f.now().Sub(e.UpdatedAt) > f.ttl {
		return nil, db.ErrKeyNotFound
	}
	return []byte(e.Value), nil
}

// Set stores value at key, rewriting the document atomically.
func (f *File) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.acquire(ctx, true); err != nil {
		return err
	}
	defer func() { _ = f.lock.Unlock() }()

	entries, err := f.read()
	if err != nil {
		// A corrupt cache is rebuilt rather than blocking writes.
		entries = make(map[string]fileEntry)
	}
	entries[key] = fileEntry{Value: string(value), UpdatedAt: f.now().UTC()}
	return f.write(entries)
}

func (f *File) acquire(ctx context.Context, exclusive bool) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = f.lock.TryLockContext(ctx, 20*time.Millisecond)
	} else {
		ok, err = f.lock.TryRLockContext(ctx, 20*time.Millisecond)
	}
	if err != nil {
		return fmt.Errorf("lock model cache: %w", err)
	}
	if !ok {
		return fmt.Errorf("lock model cache: not acquired")
	}
	return nil
}

func (f *File) read() (map[string]fileEntry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]fileEntry), nil
		}
		return nil, fmt.Errorf("read model cache: %w", err)
	}
	entries := make(map[string]fileEntry)
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse model cache: %w", err)
	}
	return entries, nil
}

func (f *File) write(entries map[string]fileEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model cache: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write model cache: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace model cache: %w", err)
	}
	return nil
}
