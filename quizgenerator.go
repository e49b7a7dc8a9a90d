package acestudy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// QuizGenerator turns a study context into a quiz by asking each provider in
// turn until one answers
type QuizGenerator struct {
	providers     []Provider
	transcriptDir string
}

// NewQuizGenerator creates a generator over an explicit fallback chain,
// highest priority first
func NewQuizGenerator(providers ...Provider) *QuizGenerator {
	return &QuizGenerator{providers: providers}
}

// NewQuizGeneratorFromConfig builds the chain from PROVIDER_ORDER and enables
// transcripts when TRANSCRIPT_DIR is set
func NewQuizGeneratorFromConfig(cfg Config) *QuizGenerator {
	qg := NewQuizGenerator(ProvidersFromConfig(cfg)...)
	qg.transcriptDir = cfg.TranscriptDir
	return qg
}

// WithTranscripts writes a transcript of every request into dir
func (qg *QuizGenerator) WithTranscripts(dir string) *QuizGenerator {
	qg.transcriptDir = dir
	return qg
}

// Providers returns the names of the chain in order
func (qg *QuizGenerator) Providers() []string {
	names := make([]string, 0, len(qg.providers))
	for _, p := range qg.providers {
		names = append(names, p.Name())
	}
	return names
}

// Generate asks the providers one at a time and returns the first answer,
// normalized. Output that cannot be parsed degrades to an empty result rather
// than an error; callers decide what to do with zero questions.
func (qg *QuizGenerator) Generate(ctx context.Context, sc StudyContext) (*GenerationResult, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if len(qg.providers) == 0 {
		return nil, ErrNoProviders
	}

	requestID := uuid.NewString()
	log := Log.WithField("request", requestID)
	log.Infof("Starting quiz generation: %s, %d questions", DetailString(sc), sc.QuestionCount)

	var transcript *LLMLogger
	if qg.transcriptDir != "" {
		t, err := NewLLMLogger(qg.transcriptDir, requestID, sc)
		if err != nil {
			log.WithError(err).Warn("transcript disabled for this request")
		} else {
			transcript = t
			defer transcript.Close()
		}
	}

	req := CompletionRequest{
		Prompt:            BuildPrompt(sc),
		SystemInstruction: SystemInstruction(sc),
	}

	var failures []error
	for _, p := range qg.providers {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation cancelled: %w", err)
		}

		plog := log.WithField("provider", p.Name())
		transcript.LogLLMRequest(p.Name(), req.Prompt)

		completion, err := p.Complete(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("generation cancelled: %w", ctxErr)
			}
			plog.WithError(err).Warn("provider failed, trying next")
			transcript.LogProviderFailure(p.Name(), err)
			failures = append(failures, err)
			continue
		}
		transcript.LogLLMResponse(p.Name(), completion.Text)

		result, perr := ParseGeneration(completion.Text)
		transcript.LogParseResult(len(result.Questions), len(result.Recommendations), perr)
		if perr != nil {
			plog.WithError(perr).Warn("model output could not be parsed, returning empty quiz")
		}

		result.Sources = append(result.Sources, completion.Sources...)
		result.normalize()

		plog.Infof("Quiz generation complete: %d questions, %d sources", len(result.Questions), len(result.Sources))
		return &result, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrProvidersExhausted, errors.Join(failures...))
}
