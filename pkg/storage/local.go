// -----------------------------------------------------------------------------
// Local Storage Driver
// -----------------------------------------------------------------------------
// Buckets are directories under basePath; objects are files inside them.
//
//	./storage/circle-files/c-1/3f6c...-sample.png
//	→ {baseURL}/circle-files/c-1/3f6c...-sample.png
// -----------------------------------------------------------------------------

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage stores buckets on the local filesystem.
type LocalStorage struct {
	basePath string
	baseURL  string
	logger   Logger
}

// NewLocalStorage creates basePath when missing.
func NewLocalStorage(basePath, baseURL string, logger Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	logger.Printf("✅ Local storage initialized: %s", basePath)

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		logger:   logger,
	}, nil
}

func (s *LocalStorage) fullPath(bucket, key string) (string, string, error) {
	if err := ValidateBucket(bucket); err != nil {
		return "", "", err
	}
	sanitized, err := SanitizePath(key)
	if err != nil {
		return "", "", err
	}
	return filepath.Join(s.basePath, bucket, filepath.FromSlash(sanitized)), sanitized, nil
}

// Put writes the object through a temp file so readers never see a partial
// upload.
func (s *LocalStorage) Put(bucket, key string, contents []byte) (*Object, error) {
	if len(contents) == 0 {
		return nil, ErrEmptyFile
	}

	fullPath, sanitized, err := s.fullPath(bucket, key)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := fullPath + ".tmp"
	if err := os.WriteFile(tmp, contents, 0644); err != nil {
		s.logger.Printf("❌ Failed to write file: %s/%s - %v", bucket, sanitized, err)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("failed to move file into place: %w", err)
	}

	s.logger.Printf("✅ File saved: %s/%s (%d bytes)", bucket, sanitized, len(contents))

	return &Object{
		Bucket:   bucket,
		Key:      sanitized,
		Size:     int64(len(contents)),
		MimeType: DetectMimeType(contents),
		URL:      s.URL(bucket, sanitized),
	}, nil
}

// Get reads an object.
func (s *LocalStorage) Get(bucket, key string) ([]byte, error) {
	fullPath, _, err := s.fullPath(bucket, key)
	if err != nil {
		return nil, err
	}

	contents, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return contents, nil
}

// Delete removes an object.
func (s *LocalStorage) Delete(bucket, key string) error {
	fullPath, sanitized, err := s.fullPath(bucket, key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return ErrFileNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	s.logger.Printf("🗑️  File deleted: %s/%s", bucket, sanitized)
	return nil
}

// Exists reports whether an object is stored.
func (s *LocalStorage) Exists(bucket, key string) (bool, error) {
	fullPath, _, err := s.fullPath(bucket, key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// URL returns the public URL of an object.
func (s *LocalStorage) URL(bucket, key string) string {
	sanitized, _ := SanitizePath(key)
	return s.baseURL + "/" + bucket + "/" + sanitized
}

// Files lists object keys under prefix (a directory inside bucket). An empty
// prefix lists the bucket root.
func (s *LocalStorage) Files(bucket, prefix string) ([]string, error) {
	if err := ValidateBucket(bucket); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.basePath, bucket)
	sanitized := ""
	if prefix != "" {
		var err error
		if sanitized, err = SanitizePath(prefix); err != nil {
			return nil, err
		}
		dir = filepath.Join(dir, filepath.FromSlash(sanitized))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrDirectoryNotFound
		}
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), ".tmp") {
			continue
		}
		if sanitized == "" {
			files = append(files, entry.Name())
		} else {
			files = append(files, sanitized+"/"+entry.Name())
		}
	}
	return files, nil
}

// BasePath returns the root directory.
func (s *LocalStorage) BasePath() string {
	return s.basePath
}
