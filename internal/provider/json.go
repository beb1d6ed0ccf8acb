package provider

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls the JSON object out of a raw model completion. Models
// routinely wrap payloads in markdown fences or add a leading sentence; the
// adapters use this to honor the GenerationResult contract that Raw is
// fence-free. Returns a response-kind error when no JSON object can be found.
func ExtractJSON(providerName, content string) (json.RawMessage, error) {
	s := strings.TrimSpace(content)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return nil, &Error{
			Provider: providerName,
			Kind:     KindResponse,
			Message:  "completion contains no JSON object",
		}
	}
	s = s[start : end+1]

	var probe json.RawMessage
	if err := json.Unmarshal([]byte(s), &probe); err != nil {
		return nil, &Error{
			Provider: providerName,
			Kind:     KindResponse,
			Message:  fmt.Sprintf("completion is not valid JSON: %v", err),
			Cause:    err,
		}
	}
	return json.RawMessage(s), nil
}
