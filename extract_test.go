package acestudy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{name: "plain", raw: `{"questions":[]}`, want: `{"questions":[]}`},
		{name: "code fence", raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "commentary", raw: "Here you go: {\"a\":{\"b\":2}} hope it helps", want: `{"a":{"b":2}}`},
		{name: "no braces", raw: "sorry, I cannot help", wantErr: ErrNoJSONFound},
		{name: "only open", raw: "{ oops", wantErr: ErrNoJSONFound},
		{name: "reversed", raw: "} nothing {", wantErr: ErrNoJSONFound},
		{name: "empty", raw: "", wantErr: ErrNoJSONFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSONIdempotent(t *testing.T) {
	raw := "noise ```{\"questions\":[{\"question\":\"q\"}]}``` more noise"
	once, err := ExtractJSON(raw)
	require.NoError(t, err)
	twice, err := ExtractJSON(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestParseGeneration(t *testing.T) {
	raw := "```json\n" + `{
		"questions": [
			{"question": "2+2?", "options": ["1","2","3","4"], "correctIndex": 3, "explanation": "arithmetic"}
		],
		"recommendations": [
			{"title": "New General Mathematics", "description": "SS2 text", "link": "New General Mathematics SS2"}
		]
	}` + "\n```"

	result, err := ParseGeneration(raw)
	require.NoError(t, err)
	require.Len(t, result.Questions, 1)
	assert.Equal(t, "2+2?", result.Questions[0].Text)
	assert.Equal(t, 3, result.Questions[0].CorrectIndex)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "New General Mathematics", result.Recommendations[0].Title)
	assert.NotNil(t, result.Sources)
}

func TestParseGenerationDegrades(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "no json", raw: "I cannot do that"},
		{name: "broken json", raw: `{"questions": [ {"question": }`},
		{name: "empty object", raw: "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := ParseGeneration(tt.raw)
			assert.NotNil(t, result.Questions)
			assert.NotNil(t, result.Recommendations)
			assert.NotNil(t, result.Sources)
			assert.Empty(t, result.Questions)
			assert.Empty(t, result.Recommendations)
		})
	}
}

func TestParseGenerationReportsCause(t *testing.T) {
	_, err := ParseGeneration("nothing here")
	assert.ErrorIs(t, err, ErrNoJSONFound)

	_, err = ParseGeneration(`{"questions": "not a list"}`)
	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParseGenerationMissingFields(t *testing.T) {
	result, err := ParseGeneration(`{"questions": [{"question": "q", "options": ["a","b","c","d"], "correctIndex": 0}]}`)
	require.NoError(t, err)
	assert.Len(t, result.Questions, 1)
	assert.NotNil(t, result.Recommendations)
	assert.Empty(t, result.Recommendations)
}
