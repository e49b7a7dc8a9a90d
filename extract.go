package acestudy

import (
	"encoding/json"
	"strings"
)

// generationPayload is the object the prompt asks the model to return
type generationPayload struct {
	Questions       []Question      `json:"questions"`
	Recommendations []StudyMaterial `json:"recommendations"`
}

// ExtractJSON returns the span from the first '{' to the last '}' in raw model
// output. Commentary and code fences around the object are discarded.
func ExtractJSON(raw string) (string, error) {
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first == -1 || last == -1 || last < first {
		return "", ErrNoJSONFound
	}
	return raw[first : last+1], nil
}

// ParseGeneration turns raw model output into a normalized result. It never
// fails: unrecoverable output yields an empty result, and the reason is
// returned separately so callers can log it.
func ParseGeneration(raw string) (GenerationResult, error) {
	var result GenerationResult

	span, err := ExtractJSON(raw)
	if err == nil {
		var payload generationPayload
		if uerr := json.Unmarshal([]byte(span), &payload); uerr != nil {
			err = &ParseError{Err: uerr}
		} else {
			result.Questions = payload.Questions
			result.Recommendations = payload.Recommendations
		}
	}

	result.normalize()
	return result, err
}
