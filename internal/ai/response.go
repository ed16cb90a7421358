package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DukeRupert/careerlift/internal/domain"
)

// ErrMalformedOutput marks model text that is not the JSON object the
// query kind asked for.
var ErrMalformedOutput = errors.New("malformed model output")

// ParseGuidance checks that content is a JSON object carrying the kind's
// required field and returns it compacted. Markdown code fences around
// the object are tolerated.
func ParseGuidance(kind domain.QueryKind, content string) (json.RawMessage, error) {
	text := stripCodeFence(strings.TrimSpace(content))
	if text == "" {
		return nil, fmt.Errorf("%w: empty content", ErrMalformedOutput)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrMalformedOutput)
	}

	if field := RequiredField(kind); field != "" {
		v, ok := obj[field]
		if !ok || string(bytes.TrimSpace(v)) == "null" {
			return nil, fmt.Errorf("%w: missing %q", ErrMalformedOutput, field)
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return json.RawMessage(buf.Bytes()), nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
