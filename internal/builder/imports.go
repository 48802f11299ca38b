package builder

import (
	"regexp"
	"strings"
)

// importPattern captures the module specifier of import, from and require statements.
var importPattern = regexp.MustCompile(`(?:import|from|require)\s*\(?\s*['"]([^'"]+)['"]`)

// probeExtensions are appended to a specifier when looking it up in the file table.
var probeExtensions = []string{"", ".ts", ".tsx", ".js", ".jsx", ".py"}

// importSpecifiers returns every module specifier referenced in content, in order.
func importSpecifiers(content string) []string {
	matches := importPattern.FindAllStringSubmatch(content, -1)
	specs := make([]string, 0, len(matches))
	for _, m := range matches {
		specs = append(specs, m[1])
	}
	return specs
}

// resolveImport finds the path of the file that specifier refers to when imported
// from the file at fromPath. ok is false when no known file matches.
func resolveImport(fromPath, specifier, projectName string, known map[string]string) (string, bool) {
	if strings.HasPrefix(specifier, ".") {
		base := joinRelative(dirOf(fromPath), specifier)
		if p, ok := probe(base, known); ok {
			return p, true
		}
		if base == "" {
			return probe("index", known)
		}
		return probe(base+"/index", known)
	}

	bare := strings.Trim(specifier, "/")
	if bare == "" {
		return "", false
	}
	if p, ok := probe(bare, known); ok {
		return p, true
	}
	if projectName != "" {
		return probe(projectName+"/"+bare, known)
	}
	return "", false
}

func probe(base string, known map[string]string) (string, bool) {
	if base == "" {
		return "", false
	}
	for _, ext := range probeExtensions {
		candidate := base + ext
		if _, ok := known[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

// joinRelative applies the . and .. segments of rel to dir.
// Leading .. segments that would climb above the project root are dropped.
func joinRelative(dir, rel string) string {
	var segs []string
	if dir != "" {
		segs = strings.Split(dir, "/")
	}
	for _, seg := range strings.Split(rel, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segs) > 0 {
				segs = segs[:len(segs)-1]
			}
		default:
			segs = append(segs, seg)
		}
	}
	return strings.Join(segs, "/")
}

func dirOf(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return ""
}
