package acestudy

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func TestLLMLogger(t *testing.T) {
	buf := &bufferCloser{}
	sc := waecContext(5)
	sc.NovelTitle = "The Lion and the Jewel"

	ll := newLLMLogger(buf, "req-1", sc)
	ll.LogLLMRequest("openrouter", "the prompt")
	ll.LogProviderFailure("openrouter", errors.New("timeout"))
	ll.LogLLMResponse("groq", `{"questions":[]}`)
	ll.LogParseResult(0, 0, ErrNoJSONFound)
	require.NoError(t, ll.Close())

	out := buf.String()
	assert.Contains(t, out, "Request ID: req-1")
	assert.Contains(t, out, "Context: Exam: WAEC, Subject: Mathematics, Topic: Algebra")
	assert.Contains(t, out, "Literature: The Lion and the Jewel")
	assert.Contains(t, out, "=== LLM REQUEST (openrouter) ===")
	assert.Contains(t, out, "Provider openrouter: FAILED - timeout")
	assert.Contains(t, out, "Parse: DEGRADED to empty result")
	assert.Contains(t, out, "=== Quiz Generation Complete ===")
	assert.True(t, buf.closed)

	// writes after Close are dropped
	size := buf.Len()
	ll.Logf("late entry\n")
	assert.Equal(t, size, buf.Len())
	assert.NoError(t, ll.Close())
}

func TestNilLLMLogger(t *testing.T) {
	var ll *LLMLogger
	ll.LogLLMRequest("p", "prompt")
	ll.LogParseResult(1, 1, nil)
	assert.NoError(t, ll.Close())
}

func TestNewLLMLoggerCreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "transcripts")
	ll, err := NewLLMLogger(dir, "abc", waecContext(2))
	require.NoError(t, err)
	require.NoError(t, ll.Close())

	data, err := os.ReadFile(filepath.Join(dir, "abc.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Number of Questions: 2")
}
