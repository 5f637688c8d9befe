package fields

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/mkravets/docvision/internal/core/domain"
)

// ExtractionResult is the outcome of parsing a raw model reply: either a
// structured field map or the original text kept as unstructured output.
// Exactly one variant is populated per reply.
type ExtractionResult struct {
	Structured bool
	Fields     domain.FieldMap
	Raw        string
}

// contentKey is the wrapper object the extraction prompts ask the model to
// nest fields under. Replies that omit the wrapper are accepted as-is.
const contentKey = "document_content"

// ParseReply recovers a field map from a raw model reply. The chain is a
// fixed sequence of parse attempts: direct JSON decode, then a retry with
// Markdown code fences stripped, then an explicit unstructured result.
// ParseReply never fails; malformed input degrades, it does not error.
func ParseReply(raw string) ExtractionResult {
	trimmed := strings.TrimSpace(raw)

	if m, ok := decodeObject(trimmed); ok {
		return ExtractionResult{Structured: true, Fields: flatten(m)}
	}
	if m, ok := decodeObject(stripFences(trimmed)); ok {
		return ExtractionResult{Structured: true, Fields: flatten(m)}
	}
	return ExtractionResult{Raw: raw}
}

func decodeObject(s string) (map[string]any, bool) {
	if s == "" {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, false
	}
	// Decode stops at the first complete value; a reply with trailing prose
	// after the JSON object is not structured output.
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return m, true
}

// stripFences removes Markdown code-fence markers anywhere in the reply.
// Models frequently wrap JSON in ```json ... ``` even when told not to.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// flatten selects the nested document_content object when present, otherwise
// treats the whole decoded object as the field map, and stringifies every
// value. Nulls are dropped, not stored.
func flatten(m map[string]any) domain.FieldMap {
	if nested, ok := m[contentKey].(map[string]any); ok {
		m = nested
	}

	out := make(domain.FieldMap, len(m))
	for k, v := range m {
		s, ok := stringify(v)
		if !ok {
			continue
		}
		out[k] = s
	}
	return out
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	default:
		// Nested objects and arrays are kept as compact JSON text.
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return "", false
		}
		return strings.TrimSpace(buf.String()), true
	}
}
