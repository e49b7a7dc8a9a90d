package acestudy

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LLMLogger writes a transcript of every provider exchange made for one
// generation request
type LLMLogger struct {
	w         io.WriteCloser
	mu        sync.Mutex
	requestID string
}

// NewLLMLogger creates a transcript file <dir>/<requestID>.log
func NewLLMLogger(dir, requestID string, sc StudyContext) (*LLMLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", requestID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript file: %w", err)
	}

	return newLLMLogger(file, requestID, sc), nil
}

func newLLMLogger(w io.WriteCloser, requestID string, sc StudyContext) *LLMLogger {
	logger := &LLMLogger{
		w:         w,
		requestID: requestID,
	}

	logger.Logf("=== Quiz Generation Log ===\n")
	logger.Logf("Request ID: %s\n", requestID)
	logger.Logf("Level: %s\n", sc.Level)
	logger.Logf("Context: %s\n", DetailString(sc))
	logger.Logf("Number of Questions: %d\n", sc.QuestionCount)
	if sc.NovelTitle != "" {
		logger.Logf("Literature: %s\n", sc.NovelTitle)
	}
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("========================\n\n")

	return logger
}

// Logf writes a formatted log entry with timestamp. A nil logger discards.
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	if ll == nil {
		return
	}
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.logf(format, args...)
}

func (ll *LLMLogger) logf(format string, args ...interface{}) {
	if ll.w == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(ll.w, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	if f, ok := ll.w.(*os.File); ok {
		f.Sync()
	}
}

// LogLLMRequest logs the prompt sent to a provider
func (ll *LLMLogger) LogLLMRequest(provider, prompt string) {
	ll.Logf("=== LLM REQUEST (%s) ===\n", provider)
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("=====================\n\n")
}

// LogLLMResponse logs the raw text a provider returned
func (ll *LLMLogger) LogLLMResponse(provider, response string) {
	ll.Logf("=== LLM RESPONSE (%s) ===\n", provider)
	ll.Logf("Response:\n%s\n", response)
	ll.Logf("======================\n\n")
}

// LogProviderFailure records why a provider was skipped
func (ll *LLMLogger) LogProviderFailure(provider string, err error) {
	ll.Logf("Provider %s: FAILED - %v\n", provider, err)
}

// LogParseResult records the outcome of extracting the JSON payload
func (ll *LLMLogger) LogParseResult(questions, recommendations int, err error) {
	if err != nil {
		ll.Logf("Parse: DEGRADED to empty result - %v\n", err)
		return
	}
	ll.Logf("Parse: %d questions, %d recommendations\n", questions, recommendations)
}

// Close writes the footer and closes the transcript
func (ll *LLMLogger) Close() error {
	if ll == nil {
		return nil
	}
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.w == nil {
		return nil
	}
	ll.logf("=== Quiz Generation Complete ===\n")
	ll.logf("Completed: %s\n", time.Now().Format(time.RFC3339))
	ll.logf("=============================\n")
	err := ll.w.Close()
	ll.w = nil
	return err
}
