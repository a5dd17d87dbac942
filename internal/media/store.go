// Package media stores recipe images on local disk. Clients may send images
// inline as data URLs; anything else is treated as an already-stored
// reference and forwarded untouched.
package media

import (
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var dataURLPattern = regexp.MustCompile(`^data:image/([a-zA-Z0-9.+-]+);base64,`)

// Store writes image payloads under a root directory and maps them to URLs
// below a fixed prefix.
type Store struct {
	root    string
	baseURL string
}

// NewStore prepares the media directory and returns a Store serving files
// from it.
func NewStore(root, baseURL string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("media root must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &Store{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the directory files are written to.
func (s *Store) Root() string {
	return s.root
}

// SaveDataURL persists an inline `data:image/<ext>;base64,` payload and
// returns its public URL. An empty payload returns an empty reference, and a
// payload that is not a data URL is returned as-is, so stored references
// survive round trips through recipe updates.
func (s *Store) SaveDataURL(payload string) (string, error) {
	if strings.TrimSpace(payload) == "" {
		return "", nil
	}

	match := dataURLPattern.FindStringSubmatch(payload)
	if match == nil {
		return payload, nil
	}

	encoded := payload[len(match[0]):]
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode image payload: %w", err)
	}

	name := uuid.New().String() + "." + normalizeExtension(match[1])
	if err := os.WriteFile(filepath.Join(s.root, name), decoded, 0o644); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}

	return path.Join(s.baseURL, name), nil
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(ext)
	if ext == "jpeg" {
		return "jpg"
	}
	if ext == "svg+xml" {
		return "svg"
	}
	return ext
}
