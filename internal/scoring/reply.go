package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/resume-scorer/internal/llm"
	"github.com/jonathan/resume-scorer/internal/schemas"
)

const (
	// MinScore and MaxScore bound every per-question score
	MinScore = 0.0
	MaxScore = 10.0
)

// Reply is a decoded scoring reply.
type Reply struct {
	Answer    string
	Score     float64
	Reasoning string
}

// ParseError represents a scoring reply that is not a JSON object
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ParseReply decodes a model reply. Only a non-object reply is an error; individual
// fields are decoded leniently so a sloppy but well-formed reply still yields a score.
func ParseReply(content string) (Reply, error) {
	cleaned := llm.CleanJSONBlock(content)
	if err := schemas.Validate(schemas.ScoringReply, cleaned); err != nil {
		return Reply{}, &ParseError{Message: "reply is not a JSON object", Cause: err}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil || fields == nil {
		return Reply{}, &ParseError{Message: "reply is not a JSON object", Cause: err}
	}

	return Reply{
		Answer:    decodeText(fields["answer"]),
		Score:     ClampScore(decodeScore(fields["score"])),
		Reasoning: decodeText(fields["reasoning"]),
	}, nil
}

// ClampScore bounds s to [MinScore, MaxScore]. NaN becomes MinScore.
func ClampScore(s float64) float64 {
	if math.IsNaN(s) || s < MinScore {
		return MinScore
	}
	if s > MaxScore {
		return MaxScore
	}
	return s
}

// decodeScore accepts a JSON number or a numeric string. Anything else is 0.
func decodeScore(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// decodeText returns a trimmed string, "" for absent or null, and compact JSON text for
// any other value.
func decodeText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
