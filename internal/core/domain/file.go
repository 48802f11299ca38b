package domain

import (
	"strings"
	"time"
)

// NeuralFile is a project file handed to the graph builder.
// It is owned by the host; the graph engine only reads it.
type NeuralFile struct {
	// ID is the host's identifier for the file.
	ID string `json:"id"`

	// Name is the file's base name.
	Name string `json:"name"`

	// Path is the slash-separated path relative to the project, without a leading slash.
	Path string `json:"path" validate:"required"`

	// Type is the file-kind discriminator (usually the lowercase extension).
	Type string `json:"type"`

	// Content is the raw text, empty when it was not loaded.
	Content string `json:"content,omitempty"`

	// CreatedAt is when the host first saw the file.
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizePath converts a host path into the builder's canonical form:
// forward slashes, no leading slash, no empty segments.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, "/")
}

// Extension returns the lowercase text after the final dot of the file name,
// or an empty string when there is none.
func Extension(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}
