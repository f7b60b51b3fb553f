package manifest

// Package manifest parses SMAPI manifest.json files. Real-world manifests
// frequently carry a UTF-8 BOM, // and /* */ comments, and trailing commas,
// none of which are legal JSON. Normalize is a standalone pass that removes
// those artifacts; Parse feeds the normalized text to a strict JSON decoder.

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/hrmshandy/treasure-chest/internal/model"
)

// FileName is the descriptor file identifying a mod directory.
const FileName = "manifest.json"

// DefaultAuthor is substituted when a manifest omits the Author field.
const DefaultAuthor = "Unknown"

// ErrNotFound is returned when a mod directory carries no manifest file.
var ErrNotFound = errors.New("no manifest.json found")

// InvalidManifestError reports a manifest that could not be parsed.
type InvalidManifestError struct {
	Reason string
}

func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("invalid manifest.json: %s", e.Reason)
}

// Normalize strips a leading byte-order mark, removes // line comments and
// /* */ block comments occurring outside string literals, and drops trailing
// commas immediately preceding a closing } or ]. The result is expected to be
// strict JSON. Normalize is idempotent.
func Normalize(input string) string {
	s := strings.TrimPrefix(input, "\uFEFF")
	return stripTrailingCommas(stripComments(s))
}

// stripComments removes // and /* */ comments outside string literals.
// Block comments are replaced with a single space so tokens stay separated.
func stripComments(input string) string {
	var b strings.Builder
	b.Grow(len(input))

	runes := []rune(input)
	inString := false
	escaped := false

	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if escaped {
			b.WriteRune(ch)
			escaped = false
			continue
		}

		switch {
		case inString && ch == '\\':
			b.WriteRune(ch)
			escaped = true
		case ch == '"':
			inString = !inString
			b.WriteRune(ch)
		case !inString && ch == '/' && i+1 < len(runes) && runes[i+1] == '/':
			// Line comment: skip to end of line, keep the newline.
			for i++; i < len(runes); i++ {
				if runes[i] == '\n' || runes[i] == '\r' {
					b.WriteRune(runes[i])
					break
				}
			}
		case !inString && ch == '/' && i+1 < len(runes) && runes[i+1] == '*':
			// Block comment: skip past the closing */.
			i += 2
			for ; i+1 < len(runes); i++ {
				if runes[i] == '*' && runes[i+1] == '/' {
					i++
					break
				}
			}
			b.WriteRune(' ')
		default:
			b.WriteRune(ch)
		}
	}

	return b.String()
}

// stripTrailingCommas drops a comma whose next non-whitespace character is a
// closing } or ], outside string literals.
func stripTrailingCommas(input string) string {
	var b strings.Builder
	b.Grow(len(input))

	runes := []rune(input)
	inString := false
	escaped := false

	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if escaped {
			b.WriteRune(ch)
			escaped = false
			continue
		}

		switch {
		case inString && ch == '\\':
			b.WriteRune(ch)
			escaped = true
		case ch == '"':
			inString = !inString
			b.WriteRune(ch)
		case !inString && ch == ',':
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			if j < len(runes) && (runes[j] == '}' || runes[j] == ']') {
				continue // drop the comma
			}
			b.WriteRune(ch)
		default:
			b.WriteRune(ch)
		}
	}

	return b.String()
}

// Parse normalizes and parses manifest content. Name, Version and UniqueID
// are required; a missing Author defaults to "Unknown".
func Parse(content string) (*model.ModManifest, error) {
	normalized := Normalize(content)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(normalized), &raw); err != nil {
		return nil, &InvalidManifestError{Reason: fmt.Sprintf("invalid JSON syntax: %v", err)}
	}

	var missing []string
	for _, field := range []string{"Name", "Version", "UniqueID"} {
		if _, ok := raw[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &InvalidManifestError{
			Reason: fmt.Sprintf("missing required field(s): %s", strings.Join(missing, ", ")),
		}
	}

	var m model.ModManifest
	if err := json.Unmarshal([]byte(normalized), &m); err != nil {
		return nil, &InvalidManifestError{Reason: err.Error()}
	}

	if m.Author == "" {
		m.Author = DefaultAuthor
	}

	return &m, nil
}

// ParseFile reads and parses the manifest at path. A missing file yields
// ErrNotFound so callers can distinguish "no manifest" from "bad manifest".
func ParseFile(path string) (*model.ModManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return Parse(string(data))
}
