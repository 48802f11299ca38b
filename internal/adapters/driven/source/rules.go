package source

import (
	"path"
	"strings"
)

// DefaultMaxFileBytes caps how much content a source reads per file.
const DefaultMaxFileBytes int64 = 512 * 1024

// skippedDirs are directory names never descended into.
var skippedDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"vendor":       true,
	"__pycache__":  true,
}

// binaryExts are extensions whose content is never read.
var binaryExts = map[string]bool{
	"exe": true, "dll": true, "so": true, "dylib": true,
	"zip": true, "tar": true, "gz": true, "bz2": true, "7z": true,
	"png": true, "jpg": true, "jpeg": true, "gif": true, "ico": true, "webp": true, "bmp": true,
	"pdf": true, "doc": true, "docx": true, "xls": true, "xlsx": true,
	"mp3": true, "mp4": true, "avi": true, "mov": true, "wav": true,
	"woff": true, "woff2": true, "ttf": true, "eot": true, "otf": true,
	"bin": true, "dat": true, "db": true, "sqlite": true,
	"pyc": true, "pyo": true, "class": true, "o": true, "a": true,
}

// SkipDir reports whether a directory with this base name is excluded.
func SkipDir(name string) bool {
	return IsHidden(name) || skippedDirs[name]
}

// IsHidden reports whether a base name is a dotfile.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// SkipPath reports whether any segment of a slash-separated relative path is excluded.
func SkipPath(rel string) bool {
	segments := strings.Split(rel, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if i == len(segments)-1 {
			if IsHidden(seg) {
				return true
			}
			continue
		}
		if SkipDir(seg) {
			return true
		}
	}
	return false
}

// IsBinary reports whether the file's extension marks it as binary.
func IsBinary(name string) bool {
	return binaryExts[FileType(name)]
}

// FileType returns the lowercase extension of name, or "file" when it has none.
func FileType(name string) string {
	ext := strings.TrimPrefix(path.Ext(path.Base(name)), ".")
	if ext == "" {
		return "file"
	}
	return strings.ToLower(ext)
}

// LooksBinary reports whether content contains a NUL byte in its first 8 KiB.
func LooksBinary(content []byte) bool {
	if len(content) > 8192 {
		content = content[:8192]
	}
	for _, b := range content {
		if b == 0 {
			return true
		}
	}
	return false
}
