package acestudy

import (
	"fmt"
	"net/url"
	"strings"
)

// Level selects which detail record of a StudyContext is populated
type Level string

const (
	LevelSecondary  Level = "secondary"
	LevelUniversity Level = "university"
)

// ExamType is the exam board a secondary-school quiz is modelled on
type ExamType string

const (
	ExamWAEC   ExamType = "WAEC"
	ExamNECO   ExamType = "NECO"
	ExamJAMB   ExamType = "JAMB"
	ExamSchool ExamType = "School Exam"
	ExamUnset  ExamType = ""
)

// SecondaryDetails describes a secondary-school exam context
type SecondaryDetails struct {
	ExamType ExamType `json:"examType"`
	Subject  string   `json:"subject"`
	Topic    string   `json:"topic,omitempty"`
}

// UniversityDetails describes a university course context
type UniversityDetails struct {
	UniversityName string `json:"universityName"`
	Faculty        string `json:"faculty"`
	Level          string `json:"level"`
	CourseCode     string `json:"courseCode"`
	CourseName     string `json:"courseName"`
}

// StudyContext is what the user wants to be quizzed on
type StudyContext struct {
	Level             Level              `json:"level"`
	QuestionCount     int                `json:"questionCount"`
	TimeLimit         int                `json:"timeLimit,omitempty"` // minutes, 0 = untimed
	NovelTitle        string             `json:"novelTitle,omitempty"`
	SecondaryDetails  *SecondaryDetails  `json:"secondaryDetails,omitempty"`
	UniversityDetails *UniversityDetails `json:"universityDetails,omitempty"`
}

// Validate checks the level/detail invariant and the numeric fields
func (c StudyContext) Validate() error {
	if c.QuestionCount <= 0 {
		return fmt.Errorf("%w: questionCount must be positive", ErrInvalidContext)
	}
	if c.TimeLimit < 0 {
		return fmt.Errorf("%w: timeLimit must not be negative", ErrInvalidContext)
	}

	switch c.Level {
	case LevelSecondary:
		if c.SecondaryDetails == nil || c.UniversityDetails != nil {
			return fmt.Errorf("%w: secondary level requires secondaryDetails only", ErrInvalidContext)
		}
		switch c.SecondaryDetails.ExamType {
		case ExamWAEC, ExamNECO, ExamJAMB, ExamSchool, ExamUnset:
		default:
			return fmt.Errorf("%w: unknown exam type %q", ErrInvalidContext, c.SecondaryDetails.ExamType)
		}
	case LevelUniversity:
		if c.UniversityDetails == nil || c.SecondaryDetails != nil {
			return fmt.Errorf("%w: university level requires universityDetails only", ErrInvalidContext)
		}
	default:
		return fmt.Errorf("%w: unknown level %q", ErrInvalidContext, c.Level)
	}
	return nil
}

// Question is a single multiple choice question
type Question struct {
	Text         string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"` // 0-based
	Explanation  string   `json:"explanation"`
}

// Source is a grounding citation returned by a search-backed provider
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// StudyMaterial is a recommended resource for further reading
type StudyMaterial struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// Href returns a browsable URL for the material. Links that are not URLs are
// treated as search queries.
func (m StudyMaterial) Href() string {
	if strings.HasPrefix(m.Link, "http") {
		return m.Link
	}
	return "https://www.google.com/search?q=" + url.QueryEscape(m.Link)
}

// GenerationResult is the normalized output of a generation request
type GenerationResult struct {
	Questions       []Question      `json:"questions"`
	Sources         []Source        `json:"sources"`
	Recommendations []StudyMaterial `json:"recommendations"`
}

// normalize replaces missing sequences with empty ones and drops sources
// without a reference URI
func (r *GenerationResult) normalize() {
	if r.Questions == nil {
		r.Questions = []Question{}
	}
	if r.Recommendations == nil {
		r.Recommendations = []StudyMaterial{}
	}

	sources := make([]Source, 0, len(r.Sources))
	for _, s := range r.Sources {
		if s.URI == "" {
			continue
		}
		if s.Title == "" {
			s.Title = "Reference"
		}
		sources = append(sources, s)
	}
	r.Sources = sources
}

// Session is the terminal record of one quiz attempt
type Session struct {
	Questions       []Question      `json:"questions"`
	UserAnswers     []int           `json:"userAnswers"` // -1 = unanswered
	Score           int             `json:"score"`
	IsComplete      bool            `json:"isComplete"`
	TimeSpent       int             `json:"timeSpent"` // seconds
	Sources         []Source        `json:"groundingSources"`
	Recommendations []StudyMaterial `json:"recommendations"`
}
