// -----------------------------------------------------------------------------
// Storage Package - Blob Storage
// -----------------------------------------------------------------------------
// Buckets of uploaded files (circle portfolio samples live in the
// "circle-files" bucket). A bucket is the first path segment; objects below
// it are addressed by a relative key.
//
// Usage:
//
//	store, _ := storage.NewLocalStorage("./storage", "/files", logger)
//	obj, err := store.Put("circle-files", "c-1/sample.png", data)
//	url := store.URL("circle-files", obj.Key)
// -----------------------------------------------------------------------------

package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Storage is a bucketed blob store.
type Storage interface {
	// Put stores contents under bucket/key and returns the stored object.
	Put(bucket, key string, contents []byte) (*Object, error)

	// Get reads an object. Missing objects fail with ErrFileNotFound.
	Get(bucket, key string) ([]byte, error)

	// Delete removes an object.
	Delete(bucket, key string) error

	// Exists reports whether an object is stored.
	Exists(bucket, key string) (bool, error)

	// URL returns the public URL of an object.
	URL(bucket, key string) string

	// Files lists the keys stored under prefix in bucket.
	Files(bucket, prefix string) ([]string, error)
}

// Logger is the logging dependency.
type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// Object describes a stored blob.
type Object struct {
	Bucket   string `json:"bucket"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	URL      string `json:"url"`
}

// Errors
var (
	ErrFileNotFound      = fmt.Errorf("file not found")
	ErrDirectoryNotFound = fmt.Errorf("directory not found")
	ErrInvalidPath       = fmt.Errorf("invalid path")
	ErrInvalidBucket     = fmt.Errorf("invalid bucket name")
	ErrEmptyFile         = fmt.Errorf("file is empty")
)

// ValidateBucket accepts lowercase names made of letters, digits and dashes.
func ValidateBucket(bucket string) error {
	if bucket == "" || len(bucket) > 63 {
		return ErrInvalidBucket
	}
	for _, r := range bucket {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '-' {
			return ErrInvalidBucket
		}
	}
	return nil
}

// SanitizePath normalizes an object key and rejects traversal attempts.
//
//	"/c-1//sample.png" → "c-1/sample.png"
//	"../etc/passwd"    → ErrInvalidPath
func SanitizePath(p string) (string, error) {
	if containsPathTraversal(p) {
		return "", ErrInvalidPath
	}

	p = strings.ReplaceAll(p, "\\", "/")
	cleaned := strings.Trim(path.Clean("/"+p), "/")
	if cleaned == "" || cleaned == "." {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}

func containsPathTraversal(p string) bool {
	for _, segment := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if segment == ".." {
			return true
		}
	}
	return false
}

// GetExtension returns the lowercase extension of p including the dot.
func GetExtension(p string) string {
	return strings.ToLower(path.Ext(strings.ReplaceAll(p, "\\", "/")))
}

// GenerateUniqueName prefixes originalName with a random uuid so uploads never
// overwrite each other. Only the base name of originalName is kept.
//
//	storage.GenerateUniqueName("portfolio.png")
//	// → "3f6c...-portfolio.png"
func GenerateUniqueName(originalName string) string {
	base := path.Base(strings.ReplaceAll(originalName, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		base = "file"
	}
	return fmt.Sprintf("%s-%s", uuid.NewString(), base)
}

// DetectMimeType sniffs the content type of contents.
func DetectMimeType(contents []byte) string {
	return mimetype.Detect(contents).String()
}
