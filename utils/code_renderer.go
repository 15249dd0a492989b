package utils

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// DetectLanguageFromExtension maps a file extension to a chroma lexer name.
// Unknown extensions fall back to plain text.
func DetectLanguageFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".kt", ".kts":
		return "kotlin"
	case ".java":
		return "java"
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".js":
		return "javascript"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".xml":
		return "xml"
	case ".sh":
		return "bash"
	default:
		return "plaintext"
	}
}

// RenderSourceWithChroma highlights code with chroma's lexers, used as the
// fallback path when no RuleSet applies to the file.
func RenderSourceWithChroma(w io.Writer, code string, language string, theme string) error {
	return quick.Highlight(w, code, language, "terminal256", theme)
}
