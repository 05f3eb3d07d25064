package adjudicate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON recovers the JSON object from raw model output. Models
// wrap structured output in fenced code blocks or append trailing
// prose; both must be discarded before parsing. For object-shaped
// output the text is truncated after the last balanced closing brace.
func ExtractJSON(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	text = stripFences(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object found in output")
	}

	end := lastBalancedBrace(text[start:])
	if end < 0 {
		return "", fmt.Errorf("unbalanced JSON object in output")
	}

	return text[start : start+end+1], nil
}

// decodeInto extracts and unmarshals the object, surfacing both
// extraction and syntax failures as decode errors.
func decodeInto(raw string, v any) error {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return fmt.Errorf("decode adjudication output: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("decode adjudication output: %w", err)
	}
	return nil
}

// stripFences removes known markdown fence markers around the output.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	// Drop the opening fence line, including any language tag.
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[idx+1:]
	} else {
		return strings.TrimPrefix(text, "```")
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// lastBalancedBrace returns the index of the closing brace that
// balances the object opening at position 0, tracking string literals
// and escapes. Returns -1 when the object never closes.
func lastBalancedBrace(text string) int {
	depth := 0
	inString := false
	escaped := false
	last := -1
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				last = i
			}
		}
	}
	return last
}
