// Package issuebody reads issue bodies and extracts form-style question/answer
// pairs from them.
package issuebody

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strings"
)

// Body holds a loaded issue body with its content and metadata.
type Body struct {
	Source string
	Raw    string
	Lines  []string
	Hash   string
}

// Load reads an issue body from a file. A path of "-" reads stdin.
func Load(path string) (*Body, error) {
	if path == "-" {
		return Read(os.Stdin, "stdin")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("issuebody.Load: %w", err)
	}
	return fromBytes(path, data), nil
}

// Read consumes r fully and returns it as a Body labeled with source.
func Read(r io.Reader, source string) (*Body, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("issuebody.Read: %w", err)
	}
	return fromBytes(source, data), nil
}

// FromString wraps an in-memory body, e.g. one fetched from the issue tracker.
func FromString(source, raw string) *Body {
	return fromBytes(source, []byte(raw))
}

func fromBytes(source string, data []byte) *Body {
	raw := strings.ReplaceAll(string(data), "\r\n", "\n")
	h := sha256.Sum256(data)
	return &Body{
		Source: source,
		Raw:    raw,
		Lines:  strings.Split(raw, "\n"),
		Hash:   fmt.Sprintf("sha256:%x", h),
	}
}
