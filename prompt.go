package acestudy

import (
	"fmt"
	"strings"
)

// DetailString renders the level-specific part of a study context
func DetailString(c StudyContext) string {
	if c.Level == LevelSecondary {
		d := c.SecondaryDetails
		if d == nil {
			d = &SecondaryDetails{}
		}
		topic := d.Topic
		if topic == "" {
			topic = "General"
		}
		return fmt.Sprintf("Exam: %s, Subject: %s, Topic: %s", d.ExamType, d.Subject, topic)
	}

	d := c.UniversityDetails
	if d == nil {
		d = &UniversityDetails{}
	}
	detail := fmt.Sprintf("University: %s, Course: %s - %s, Level: %s", d.UniversityName, d.CourseCode, d.CourseName, d.Level)
	if d.Faculty != "" {
		detail += fmt.Sprintf(", Faculty: %s", d.Faculty)
	}
	return detail
}

// BuildPrompt renders a study context into the instruction sent to every provider
func BuildPrompt(c StudyContext) string {
	var sb strings.Builder

	sb.WriteString("You are a professional educational assessment designer.\n\n")
	sb.WriteString(fmt.Sprintf("Generate exactly %d exam-standard MCQs.\n\n", c.QuestionCount))
	sb.WriteString(fmt.Sprintf("Context: %s\n", DetailString(c)))
	if c.NovelTitle != "" {
		sb.WriteString(fmt.Sprintf("Literature/Book Study: %q. Focus on the characters, plot and key themes of this book.\n", c.NovelTitle))
	}
	sb.WriteString("\n")

	sb.WriteString("Requirements:\n")
	sb.WriteString("- Each question must have exactly 4 options\n")
	sb.WriteString("- correctIndex is the 0-based index of the correct option\n")
	sb.WriteString("- Provide a brief explanation of why the correct answer is right\n")
	sb.WriteString("- Recommend study materials (books or links) tailored to this context\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Respond with JSON ONLY, no backticks, no markdown, no explanation.\n")
	sb.WriteString("- Do not include any text before or after the JSON.\n")
	sb.WriteString("- Follow this structure exactly.\n\n")

	sb.WriteString("Return this JSON object:\n")
	sb.WriteString(`{
  "questions": [
    {
      "question": "string",
      "options": ["A", "B", "C", "D"],
      "correctIndex": 0,
      "explanation": "string"
    }
  ],
  "recommendations": [
    { "title": "string", "description": "string", "link": "string" }
  ]
}
`)

	return sb.String()
}

// SystemInstruction is sent alongside the prompt to providers that can search
// the web before answering
func SystemInstruction(c StudyContext) string {
	var sb strings.Builder

	sb.WriteString("You are a professional educational assessment designer.\n")
	sb.WriteString(fmt.Sprintf("Your goal is to generate exactly %d high-quality, exam-standard Multiple Choice Questions (MCQs) for:\n", c.QuestionCount))
	sb.WriteString(DetailString(c))
	sb.WriteString("\n\nInstructions:\n")
	sb.WriteString("1. Priority: If a 'Literature/Book Study' title is provided, search for specific questions, themes, and details about that book.\n")
	sb.WriteString("2. Main Task: Search for real public past questions for this exam (WAEC/JAMB/NECO) or university course and mimic their pattern.\n")
	sb.WriteString("3. Accuracy: Ensure exactly 4 options per question.\n")
	sb.WriteString("4. Context: For University, match the specific depth of the university mentioned.\n")
	sb.WriteString("5. Recommendations: Provide specific study materials (books or links) tailored to this context.\n")
	sb.WriteString("6. Return data strictly in JSON format.\n")

	return sb.String()
}
