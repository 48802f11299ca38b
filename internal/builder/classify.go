package builder

import "github.com/custodia-labs/neuralmap-cli/internal/core/domain"

// classify maps a lowercase file extension onto a node type.
func classify(ext string) domain.NodeType {
	switch ext {
	case "ts", "tsx", "js", "jsx":
		return domain.NodeCode
	case "css", "scss":
		return domain.NodeStyle
	case "json", "env":
		return domain.NodeConfig
	case "md":
		return domain.NodeDoc
	default:
		return domain.NodeFile
	}
}

func isHTML(ext string) bool {
	return ext == "html" || ext == "htm"
}

func isStylesheet(ext string) bool {
	return ext == "css" || ext == "scss"
}

// fileTags returns [ext, kind] with empty values dropped and duplicates collapsed.
func fileTags(ext, kind string) []string {
	tags := make([]string, 0, 2)
	if ext != "" {
		tags = append(tags, ext)
	}
	if kind != "" && kind != ext {
		tags = append(tags, kind)
	}
	return tags
}
