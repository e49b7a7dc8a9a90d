package acestudy

import (
	"fmt"
	"math"
	"strings"
)

// Review statuses
const (
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

// ReviewItem is the outcome of one question
type ReviewItem struct {
	Number       int
	Question     Question
	Selected     int
	SelectedText string
	CorrectText  string
	Correct      bool
	Status       string
}

// Report summarizes a finished session for the results page
type Report struct {
	Score           int
	Total           int
	Percentage      int
	TimeSpent       int
	Items           []ReviewItem
	Sources         []Source
	Recommendations []StudyMaterial
}

// Review scores a session question by question
func Review(s Session) Report {
	report := Report{
		Score:           s.Score,
		Total:           len(s.Questions),
		TimeSpent:       s.TimeSpent,
		Items:           make([]ReviewItem, 0, len(s.Questions)),
		Sources:         s.Sources,
		Recommendations: s.Recommendations,
	}
	if report.Total > 0 {
		report.Percentage = int(math.Round(float64(s.Score) / float64(report.Total) * 100))
	}

	for i, q := range s.Questions {
		selected := -1
		if i < len(s.UserAnswers) {
			selected = s.UserAnswers[i]
		}
		item := ReviewItem{
			Number:       i + 1,
			Question:     q,
			Selected:     selected,
			SelectedText: optionText(q, selected),
			CorrectText:  optionText(q, q.CorrectIndex),
			Correct:      selected >= 0 && selected == q.CorrectIndex,
			Status:       StatusFailed,
		}
		if item.Correct {
			item.Status = StatusSuccess
		}
		report.Items = append(report.Items, item)
	}

	return report
}

func optionText(q Question, i int) string {
	if i < 0 || i >= len(q.Options) {
		return ""
	}
	return q.Options[i]
}

// FormatClock renders seconds as mm:ss, or h:mm:ss from an hour up
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// OptionLetter maps 0, 1, 2... to A, B, C...
func OptionLetter(i int) string {
	if i < 0 || i >= 26 {
		return "?"
	}
	return string(rune('A' + i))
}

// ExportText renders questions as the plain text practice sheet offered for
// download after a quiz
func ExportText(questions []Question) string {
	blocks := make([]string, 0, len(questions))
	for i, q := range questions {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Q%d: %s\n", i+1, q.Text))
		sb.WriteString("Options:\n")
		for j, opt := range q.Options {
			sb.WriteString(fmt.Sprintf("%s) %s\n", OptionLetter(j), opt))
		}
		sb.WriteString(fmt.Sprintf("Correct Answer: %s\n", optionText(q, q.CorrectIndex)))
		sb.WriteString(fmt.Sprintf("Explanation: %s\n\n", q.Explanation))
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "---\n")
}
