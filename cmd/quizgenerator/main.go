package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"acestudy"

	"github.com/urfave/cli/v2"
)

var errNoQuestions = errors.New("no questions were generated")

const msgNoQuestions = "No questions were generated. Please refine your inputs."

func main() {
	app := &cli.App{
		Name:  "quizgenerator",
		Usage: "generate exam practice questions from the command line",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "Enable verbose debugging output", EnvVars: []string{"VERBOSE"}},
		},
		Before: func(c *cli.Context) error {
			acestudy.SetVerbose(c.Bool("verbose"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "generate a quiz and print it as JSON",
				Flags: append(contextFlags(),
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file for quiz JSON (default: stdout)"},
				),
				Action: generate,
			},
			{
				Name:  "play",
				Usage: "generate a quiz and play it in the terminal",
				Flags: append(contextFlags(),
					&cli.StringFlag{Name: "export", Usage: "Write the questions as a text practice sheet to this file"},
				),
				Action: play,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		acestudy.Log.Fatal(userMessage(err))
	}
}

// userMessage turns the errors a user can act on into advice
func userMessage(err error) string {
	if errors.Is(err, errNoQuestions) {
		return msgNoQuestions
	}
	return err.Error()
}

func contextFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "level", Value: "secondary", Usage: "secondary or university"},
		&cli.IntFlag{Name: "questions", Aliases: []string{"n"}, Value: 10, Usage: "Number of questions to generate"},
		&cli.IntFlag{Name: "time", Usage: "Time limit in minutes (0 = untimed)"},
		&cli.StringFlag{Name: "novel", Usage: "Literature/book title to focus on"},
		&cli.StringFlag{Name: "exam", Usage: "Exam type: WAEC, NECO, JAMB or \"School Exam\""},
		&cli.StringFlag{Name: "subject", Usage: "Secondary school subject"},
		&cli.StringFlag{Name: "topic", Usage: "Secondary school topic"},
		&cli.StringFlag{Name: "university", Usage: "University name"},
		&cli.StringFlag{Name: "faculty", Usage: "Faculty"},
		&cli.StringFlag{Name: "course-level", Usage: "Course level, e.g. 200L"},
		&cli.StringFlag{Name: "course-code", Usage: "Course code"},
		&cli.StringFlag{Name: "course-name", Usage: "Course name"},
	}
}

func studyContext(c *cli.Context) (acestudy.StudyContext, error) {
	sc := acestudy.StudyContext{
		Level:         acestudy.Level(c.String("level")),
		QuestionCount: c.Int("questions"),
		TimeLimit:     c.Int("time"),
		NovelTitle:    c.String("novel"),
	}
	switch sc.Level {
	case acestudy.LevelSecondary:
		sc.SecondaryDetails = &acestudy.SecondaryDetails{
			ExamType: acestudy.ExamType(c.String("exam")),
			Subject:  c.String("subject"),
			Topic:    c.String("topic"),
		}
	case acestudy.LevelUniversity:
		sc.UniversityDetails = &acestudy.UniversityDetails{
			UniversityName: c.String("university"),
			Faculty:        c.String("faculty"),
			Level:          c.String("course-level"),
			CourseCode:     c.String("course-code"),
			CourseName:     c.String("course-name"),
		}
	}
	return sc, sc.Validate()
}

// runGeneration generates a quiz with the environment's provider chain and
// rejects empty results
func runGeneration(c *cli.Context, sc acestudy.StudyContext) (*acestudy.GenerationResult, error) {
	cfg := acestudy.ConfigFromEnv()
	generator := acestudy.NewQuizGeneratorFromConfig(cfg)
	acestudy.VerboseLog("Provider chain: %v", generator.Providers())

	timeout := time.Duration(len(cfg.ProviderOrder)+1) * cfg.ProviderTimeout
	ctx, cancel := context.WithTimeout(c.Context, timeout)
	defer cancel()

	result, err := generator.Generate(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to generate quiz: %w", err)
	}
	if len(result.Questions) == 0 {
		return nil, errNoQuestions
	}
	return result, nil
}

func generate(c *cli.Context) error {
	sc, err := studyContext(c)
	if err != nil {
		return err
	}

	result, err := runGeneration(c, sc)
	if err != nil {
		return err
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal quiz: %w", err)
	}

	if file := c.String("output"); file != "" {
		if err := os.WriteFile(file, output, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		acestudy.Log.Infof("Quiz saved to: %s", file)
		return nil
	}
	fmt.Fprintln(c.App.Writer, string(output))
	return nil
}

func play(c *cli.Context) error {
	sc, err := studyContext(c)
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "🎯 Starting quiz: %s\n", acestudy.DetailString(sc))
	if sc.NovelTitle != "" {
		fmt.Fprintf(out, "📚 Literature: %s\n", sc.NovelTitle)
	}
	fmt.Fprintf(out, "📝 Questions: %d\n", sc.QuestionCount)
	fmt.Fprintln(out, "⏳ Generating questions... (this may take a moment)")
	fmt.Fprintln(out)

	result, err := runGeneration(c, sc)
	if err != nil {
		return err
	}

	p := acestudy.NewPlayback(*result, sc.TimeLimit)
	session := playSession(p, os.Stdin, out)
	printReport(out, acestudy.Review(session))

	if file := c.String("export"); file != "" {
		if err := os.WriteFile(file, []byte(acestudy.ExportText(session.Questions)), 0644); err != nil {
			return fmt.Errorf("failed to write practice sheet: %w", err)
		}
		fmt.Fprintf(out, "💾 Questions saved to: %s\n", file)
	}
	return nil
}

// playSession runs p against line input until it finishes, the clock runs
// out or input ends
func playSession(p *acestudy.Playback, in io.Reader, out io.Writer) acestudy.Session {
	countdown := acestudy.StartCountdown(p, time.Second)
	defer countdown.Stop()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-p.Done():
				return
			}
		}
	}()

	for !p.Finished() {
		index, question, selected, ok := p.Current()
		if !ok {
			break
		}

		fmt.Fprintf(out, "Question %d/%d", index+1, p.Len())
		if p.Timed() {
			fmt.Fprintf(out, "  ⏱  %s left", acestudy.FormatClock(p.SecondsRemaining()))
		}
		fmt.Fprintf(out, "\n%s\n\n", question.Text)
		for i, option := range question.Options {
			marker := " "
			if i == selected {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s) %s\n", marker, acestudy.OptionLetter(i), option)
		}
		fmt.Fprint(out, "\nAnswer (letter), < to go back: ")

		select {
		case <-p.Done():
			fmt.Fprintln(out, "\n⏰ Time is up!")
		case line, open := <-lines:
			if !open {
				return p.Finish()
			}
			handleInput(p, strings.ToUpper(strings.TrimSpace(line)), out)
		}
		fmt.Fprintln(out)
	}

	return p.Finish()
}

func handleInput(p *acestudy.Playback, input string, out io.Writer) {
	if input == "<" {
		p.Retreat()
		return
	}
	_, question, _, _ := p.Current()
	for i := range question.Options {
		if input == acestudy.OptionLetter(i) {
			p.SelectOption(i)
			p.Advance()
			return
		}
	}
	fmt.Fprintf(out, "Please enter a letter between A and %s\n", acestudy.OptionLetter(len(question.Options)-1))
}

func printReport(out io.Writer, report acestudy.Report) {
	fmt.Fprintln(out, strings.Repeat("─", 50))
	fmt.Fprintln(out, "🎉 Quiz completed!")
	fmt.Fprintf(out, "🏆 Score: %d/%d (%d%%)\n", report.Score, report.Total, report.Percentage)
	if report.TimeSpent > 0 {
		fmt.Fprintf(out, "⏱  Time spent: %s\n", acestudy.FormatClock(report.TimeSpent))
	}
	fmt.Fprintln(out)

	for _, item := range report.Items {
		mark := "✅"
		if !item.Correct {
			mark = "❌"
		}
		fmt.Fprintf(out, "%s Q%d (%s): %s\n", mark, item.Number, item.Status, item.Question.Text)
		if !item.Correct {
			fmt.Fprintf(out, "   Your answer: %s\n", orDefault(item.SelectedText, "Not answered"))
			fmt.Fprintf(out, "   Correct answer: %s\n", item.CorrectText)
		}
		if item.Question.Explanation != "" {
			fmt.Fprintf(out, "   💡 %s\n", item.Question.Explanation)
		}
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintln(out, "\n📚 Tailored Study Materials:")
		for _, m := range report.Recommendations {
			fmt.Fprintf(out, "  - %s: %s\n    %s\n", m.Title, m.Description, m.Href())
		}
	}
	if len(report.Sources) > 0 {
		fmt.Fprintln(out, "\n🔎 Sources:")
		for _, s := range report.Sources {
			fmt.Fprintf(out, "  - %s: %s\n", s.Title, s.URI)
		}
	}

	switch {
	case report.Percentage >= 80:
		fmt.Fprintln(out, "\n🌟 Excellent work!")
	case report.Percentage >= 60:
		fmt.Fprintln(out, "\n👍 Good job!")
	default:
		fmt.Fprintln(out, "\n📚 Keep studying!")
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
