// Package keyfile discovers, validates and writes the IndexNow verification
// key file: a file named <uuid>.txt in the public assets directory whose
// content is the UUID itself.
package keyfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Extension is the suffix every key file carries.
const Extension = ".txt"

// keyLength is the canonical textual length of a UUID.
const keyLength = 36

// Pattern matches key file names. Only version 1 and version 4 UUIDs with the
// RFC 4122 variant are recognized, for both discovery and creation.
var Pattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[14][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}\.txt$`)

var (
	// ErrKeyNotFound reports that the public directory holds no key file.
	ErrKeyNotFound = errors.New("indexnow key file not found")
	// ErrInvalidKey reports a UUID that cannot be used as a key.
	ErrInvalidKey = errors.New("invalid indexnow key")
)

// Key is a discovered key file.
type Key struct {
	Value string
	Path  string
}

// FileName returns the key file name for key.
func FileName(key string) string {
	return key + Extension
}

// Find returns the first key file in dir, ordered by name. A missing
// directory is reported as ErrKeyNotFound.
func Find(dir string) (Key, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Key{}, fmt.Errorf("%w: directory %s does not exist", ErrKeyNotFound, dir)
		}
		return Key{}, fmt.Errorf("read public directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if Pattern.MatchString(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return Key{}, fmt.Errorf("%w in %s", ErrKeyNotFound, dir)
	}
	sort.Strings(names)
	return Key{
		Value: strings.TrimSuffix(names[0], Extension),
		Path:  filepath.Join(dir, names[0]),
	}, nil
}

// Validate trims raw and checks it is a UUID usable as a key.
func Validate(raw string) (string, error) {
	key := strings.TrimSpace(raw)
	if len(key) != keyLength || !strings.Contains(key, "-") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if _, err := uuid.Parse(key); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidKey, key, err)
	}
	// A key whose file name would not be rediscovered is useless.
	if !Pattern.MatchString(FileName(key)) {
		return "", fmt.Errorf("%w: %q is not a version 1 or 4 UUID", ErrInvalidKey, key)
	}
	return key, nil
}

// Write creates dir if needed and writes <key>.txt containing key. The file
// is created exclusively, so an identical key written concurrently fails
// instead of being clobbered. Find followed by Write is still not atomic: two
// processes that both see no key can each write a different key file.
func Write(dir, key string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create public directory: %w", err)
	}
	path := filepath.Join(dir, FileName(key))
	// #nosec G302 G304 -- the key file is a public asset served by the site.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create key file: %w", err)
	}
	if _, err := f.WriteString(key); err != nil {
		closeErr := f.Close()
		if closeErr != nil {
			return "", fmt.Errorf("write key file: %w (close: %v)", err, closeErr)
		}
		return "", fmt.Errorf("write key file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close key file: %w", err)
	}
	return path, nil
}

// Location returns the public URL of the key file under baseURL.
func Location(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + FileName(key)
}
