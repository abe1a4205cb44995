package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// -----------------------------------------------------------------------------
// File Cache Driver
// -----------------------------------------------------------------------------
// One JSON file per key under dir/<first two hash chars>/<md5(key)>.
// A background collector removes expired files every 10 minutes until Stop.
// -----------------------------------------------------------------------------

type FileCacheEntry struct {
	Value     []byte `json:"value"`
	ExpiresAt int64  `json:"expires_at"`
}

type FileCache struct {
	dir    string
	logger *log.Logger
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFileCache creates a file cache rooted at dir.
func NewFileCache(dir string, logger *log.Logger) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Printf("❌ Failed to create cache directory [%s]: %v", dir, err)
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	logger.Printf("✅ File cache started: %s", dir)

	ctx, cancel := context.WithCancel(context.Background())

	fc := &FileCache{
		dir:    dir,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	fc.wg.Add(1)
	go fc.garbageCollectionLoop()

	return fc, nil
}

func (f *FileCache) garbageCollectionLoop() {
	defer f.wg.Done()

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.cleanExpiredFiles()
		case <-f.ctx.Done():
			f.logger.Println("🛑 File cache garbage collector stopping...")
			return
		}
	}
}

// Stop shuts the garbage collector down.
func (f *FileCache) Stop() {
	f.cancel()
	f.wg.Wait()
}

func (f *FileCache) filePath(key string) string {
	hash := md5.Sum([]byte(key))
	hashStr := hex.EncodeToString(hash[:])
	return filepath.Join(f.dir, hashStr[:2], hashStr)
}

// Get reads a value.
func (f *FileCache) Get(key string) ([]byte, error) {
	path := f.filePath(key)

	f.mu.RLock()
	data, err := os.ReadFile(path)
	f.mu.RUnlock()

	if os.IsNotExist(err) {
		return nil, nil // Cache miss
	}
	if err != nil {
		f.logger.Printf("❌ File cache read error [%s]: %v", key, err)
		return nil, fmt.Errorf("file cache read failed: %w", err)
	}

	var entry FileCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		f.logger.Printf("❌ JSON decode error [%s]: %v", key, err)
		f.remove(path)
		return nil, nil
	}

	if entry.ExpiresAt > 0 && time.Now().Unix() > entry.ExpiresAt {
		f.remove(path)
		return nil, nil
	}

	return entry.Value, nil
}

func (f *FileCache) remove(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	os.Remove(path)
}

// Set writes a value. The file is written to a temp name and renamed so a
// crash never leaves a half-written snapshot.
func (f *FileCache) Set(key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).Unix()
	}

	data, err := json.Marshal(FileCacheEntry{Value: value, ExpiresAt: expiresAt})
	if err != nil {
		f.logger.Printf("❌ JSON encode error [%s]: %v", key, err)
		return fmt.Errorf("json encode failed: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.filePath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("file cache write failed: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		f.logger.Printf("❌ File cache write error [%s]: %v", key, err)
		return fmt.Errorf("file cache write failed: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		f.logger.Printf("❌ File cache write error [%s]: %v", key, err)
		return fmt.Errorf("file cache write failed: %w", err)
	}

	return nil
}

// Delete removes a key.
func (f *FileCache) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.filePath(key)); err != nil && !os.IsNotExist(err) {
		f.logger.Printf("❌ File cache delete error [%s]: %v", key, err)
		return fmt.Errorf("file cache delete failed: %w", err)
	}

	return nil
}

// Has reports whether key holds a live value.
func (f *FileCache) Has(key string) (bool, error) {
	val, err := f.Get(key)
	if err != nil {
		return false, err
	}
	return val != nil, nil
}

// Flush removes every cached file.
func (f *FileCache) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.RemoveAll(f.dir); err != nil {
		f.logger.Printf("❌ Cache flush error: %v", err)
		return fmt.Errorf("cache flush failed: %w", err)
	}

	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("failed to recreate cache directory: %w", err)
	}

	f.logger.Println("⚠️  File cache flushed")
	return nil
}

// Stats returns file cache statistics.
func (f *FileCache) Stats() map[string]interface{} {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var fileCount int
	var totalSize int64

	filepath.Walk(f.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			fileCount++
			totalSize += info.Size()
		}
		return nil
	})

	return map[string]interface{}{
		"driver":     DriverFile,
		"directory":  f.dir,
		"file_count": fileCount,
		"total_size": totalSize,
	}
}

func (f *FileCache) cleanExpiredFiles() {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now().Unix()
	var cleaned int

	err := filepath.Walk(f.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}

		var entry FileCacheEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			if err := os.Remove(path); err == nil {
				cleaned++
			}
			return nil
		}

		if entry.ExpiresAt > 0 && now > entry.ExpiresAt {
			if err := os.Remove(path); err == nil {
				cleaned++
			}
		}

		return nil
	})

	if err == nil && cleaned > 0 {
		f.logger.Printf("🧹 Garbage collection: removed %d expired files", cleaned)
	}
}
