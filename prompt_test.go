package acestudy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func waecContext(n int) StudyContext {
	return StudyContext{
		Level:         LevelSecondary,
		QuestionCount: n,
		SecondaryDetails: &SecondaryDetails{
			ExamType: ExamWAEC,
			Subject:  "Mathematics",
			Topic:    "Algebra",
		},
	}
}

func TestDetailString(t *testing.T) {
	sc := waecContext(5)
	assert.Equal(t, "Exam: WAEC, Subject: Mathematics, Topic: Algebra", DetailString(sc))

	sc.SecondaryDetails.Topic = ""
	assert.Equal(t, "Exam: WAEC, Subject: Mathematics, Topic: General", DetailString(sc))

	uni := StudyContext{
		Level:         LevelUniversity,
		QuestionCount: 10,
		UniversityDetails: &UniversityDetails{
			UniversityName: "University of Lagos",
			Level:          "200L",
			CourseCode:     "CSC 201",
			CourseName:     "Data Structures",
		},
	}
	assert.Equal(t, "University: University of Lagos, Course: CSC 201 - Data Structures, Level: 200L", DetailString(uni))

	uni.UniversityDetails.Faculty = "Science"
	assert.Contains(t, DetailString(uni), ", Faculty: Science")
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(waecContext(5))

	assert.Contains(t, prompt, "Generate exactly 5 exam-standard MCQs")
	assert.Contains(t, prompt, "Mathematics")
	assert.Contains(t, prompt, "WAEC")
	assert.Contains(t, prompt, "JSON ONLY")
	assert.Contains(t, prompt, `"correctIndex"`)
	assert.Contains(t, prompt, `"recommendations"`)
	assert.NotContains(t, prompt, "Literature/Book Study")
}

func TestBuildPromptNovel(t *testing.T) {
	sc := waecContext(3)
	sc.SecondaryDetails.Subject = "Literature in English"
	sc.NovelTitle = "Things Fall Apart"

	prompt := BuildPrompt(sc)
	assert.Contains(t, prompt, `Literature/Book Study: "Things Fall Apart".`)
}

func TestBuildPromptDeterministic(t *testing.T) {
	assert.Equal(t, BuildPrompt(waecContext(7)), BuildPrompt(waecContext(7)))
}

func TestSystemInstruction(t *testing.T) {
	si := SystemInstruction(waecContext(5))
	assert.Contains(t, si, "exactly 5")
	assert.Contains(t, si, "past questions")
	assert.Contains(t, si, "Exam: WAEC")
}
