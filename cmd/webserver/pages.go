package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"acestudy"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const (
	msgNoQuestions    = "No questions were generated. Please refine your inputs."
	msgGenerateFailed = "Failed to generate quiz. Please try again."
	msgAttemptGone    = "That quiz is no longer available. Start a new one."
)

// setupForm carries the values of the setup form back into the page
type setupForm struct {
	Level          string
	QuestionCount  string
	TimeLimit      string
	NovelTitle     string
	ExamType       string
	Subject        string
	Topic          string
	UniversityName string
	Faculty        string
	CourseLevel    string
	CourseCode     string
	CourseName     string
}

func (f setupForm) studyContext() (acestudy.StudyContext, error) {
	count, err := strconv.Atoi(strings.TrimSpace(f.QuestionCount))
	if err != nil || count <= 0 {
		return acestudy.StudyContext{}, fmt.Errorf("%w: number of questions must be a positive number", acestudy.ErrInvalidContext)
	}
	timeLimit := 0
	if v := strings.TrimSpace(f.TimeLimit); v != "" {
		if timeLimit, err = strconv.Atoi(v); err != nil || timeLimit < 0 {
			return acestudy.StudyContext{}, fmt.Errorf("%w: time limit must be a whole number of minutes", acestudy.ErrInvalidContext)
		}
	}

	sc := acestudy.StudyContext{
		Level:         acestudy.Level(f.Level),
		QuestionCount: count,
		TimeLimit:     timeLimit,
		NovelTitle:    strings.TrimSpace(f.NovelTitle),
	}
	switch sc.Level {
	case acestudy.LevelSecondary:
		if strings.TrimSpace(f.Subject) == "" {
			return sc, fmt.Errorf("%w: subject is required", acestudy.ErrInvalidContext)
		}
		sc.SecondaryDetails = &acestudy.SecondaryDetails{
			ExamType: acestudy.ExamType(f.ExamType),
			Subject:  strings.TrimSpace(f.Subject),
			Topic:    strings.TrimSpace(f.Topic),
		}
	case acestudy.LevelUniversity:
		if strings.TrimSpace(f.UniversityName) == "" || strings.TrimSpace(f.CourseCode) == "" {
			return sc, fmt.Errorf("%w: university and course code are required", acestudy.ErrInvalidContext)
		}
		sc.UniversityDetails = &acestudy.UniversityDetails{
			UniversityName: strings.TrimSpace(f.UniversityName),
			Faculty:        strings.TrimSpace(f.Faculty),
			Level:          strings.TrimSpace(f.CourseLevel),
			CourseCode:     strings.TrimSpace(f.CourseCode),
			CourseName:     strings.TrimSpace(f.CourseName),
		}
	}
	return sc, sc.Validate()
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderSetup(w, r, http.StatusOK, setupForm{Level: string(acestudy.LevelSecondary), QuestionCount: "10"}, "")
}

func (s *Server) renderSetup(w http.ResponseWriter, r *http.Request, status int, form setupForm, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	s.render(w, r, "setup", map[string]interface{}{
		"Form":      form,
		"Error":     message,
		"ExamTypes": []acestudy.ExamType{acestudy.ExamWAEC, acestudy.ExamNECO, acestudy.ExamJAMB, acestudy.ExamSchool},
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	if err := s.templates[name].ExecuteTemplate(w, "base.html", data); err != nil {
		s.logger(r).WithError(err).Errorf("Template error in %s", name)
	}
}

func (s *Server) logger(r *http.Request) *logrus.Entry {
	return acestudy.Log.WithField("request", middleware.GetReqID(r.Context()))
}

func (s *Server) handleNewQuiz(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderSetup(w, r, http.StatusBadRequest, setupForm{}, "Failed to read the form.")
		return
	}

	form := setupForm{
		Level:          r.FormValue("level"),
		QuestionCount:  r.FormValue("questionCount"),
		TimeLimit:      r.FormValue("timeLimit"),
		NovelTitle:     r.FormValue("novelTitle"),
		ExamType:       r.FormValue("examType"),
		Subject:        r.FormValue("subject"),
		Topic:          r.FormValue("topic"),
		UniversityName: r.FormValue("universityName"),
		Faculty:        r.FormValue("faculty"),
		CourseLevel:    r.FormValue("courseLevel"),
		CourseCode:     r.FormValue("courseCode"),
		CourseName:     r.FormValue("courseName"),
	}

	sc, err := form.studyContext()
	if err != nil {
		msg := strings.TrimPrefix(err.Error(), acestudy.ErrInvalidContext.Error()+": ")
		s.renderSetup(w, r, http.StatusBadRequest, form, capitalize(msg)+".")
		return
	}

	log := s.logger(r)
	result, err := s.gen.Generate(r.Context(), sc)
	if err != nil {
		log.WithError(err).Error("quiz generation failed")
		s.renderSetup(w, r, http.StatusBadGateway, form, msgGenerateFailed)
		return
	}
	if len(result.Questions) == 0 {
		log.Warn("generation returned no questions")
		s.renderSetup(w, r, http.StatusOK, form, msgNoQuestions)
		return
	}

	attempt := acestudy.NewAttempt(sc, *result)
	if err := s.attempts.Create(r.Context(), attempt); err != nil {
		log.WithError(err).Error("failed to store attempt")
		s.renderSetup(w, r, http.StatusInternalServerError, form, msgGenerateFailed)
		return
	}

	session, _ := s.store.Get(r, sessionName)
	session.Values[attemptKey] = attempt.ID
	if err := session.Save(r, w); err != nil {
		log.WithError(err).Error("failed to save session")
	}

	log.WithField("attempt", attempt.ID).Infof("Started quiz with %d questions", len(result.Questions))
	http.Redirect(w, r, "/quiz/"+attempt.ID, http.StatusSeeOther)
}

// loadAttempt returns the attempt named in the URL if it belongs to this
// browser. On failure it has already answered the request.
func (s *Server) loadAttempt(w http.ResponseWriter, r *http.Request) (*acestudy.Attempt, bool) {
	id := chi.URLParam(r, "id")

	session, _ := s.store.Get(r, sessionName)
	owned, _ := session.Values[attemptKey].(string)
	if owned == "" || owned != id {
		s.logger(r).WithField("attempt", id).Warn("refusing attempt not owned by this session")
		s.renderSetup(w, r, http.StatusForbidden, setupForm{Level: string(acestudy.LevelSecondary)}, msgAttemptGone)
		return nil, false
	}

	attempt, err := s.attempts.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, acestudy.ErrAttemptNotFound) {
			s.logger(r).WithError(err).Error("failed to load attempt")
		}
		s.renderSetup(w, r, http.StatusNotFound, setupForm{Level: string(acestudy.LevelSecondary)}, msgAttemptGone)
		return nil, false
	}
	return attempt, true
}

// save persists the playback and reports whether it succeeded
func (s *Server) save(w http.ResponseWriter, r *http.Request, attempt *acestudy.Attempt, p *acestudy.Playback) bool {
	attempt.Record(p)
	if err := s.attempts.Save(r.Context(), attempt); err != nil {
		s.logger(r).WithError(err).WithField("attempt", attempt.ID).Error("failed to save attempt")
		http.Error(w, "Failed to save progress", http.StatusInternalServerError)
		return false
	}
	return true
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	attempt, ok := s.loadAttempt(w, r)
	if !ok {
		return
	}

	p := attempt.Resume(s.now())
	if p.Finished() {
		if !attempt.State.Finished && !s.save(w, r, attempt, p) {
			return
		}
		http.Redirect(w, r, "/quiz/"+attempt.ID+"/results", http.StatusSeeOther)
		return
	}

	index, question, selected, _ := p.Current()
	s.render(w, r, "question", map[string]interface{}{
		"AttemptID":        attempt.ID,
		"Context":          acestudy.DetailString(attempt.Context),
		"Number":           index + 1,
		"Total":            p.Len(),
		"Question":         question,
		"Selected":         selected,
		"Timed":            p.Timed(),
		"SecondsRemaining": p.SecondsRemaining(),
		"First":            index == 0,
		"Last":             index == p.Len()-1,
	})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	attempt, ok := s.loadAttempt(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	p := attempt.Resume(s.now())
	switch r.FormValue("action") {
	case "select":
		option, err := strconv.Atoi(r.FormValue("option"))
		if err != nil {
			http.Error(w, "Invalid option", http.StatusBadRequest)
			return
		}
		p.SelectOption(option)
	case "next":
		p.Advance()
	case "back":
		p.Retreat()
	default:
		http.Error(w, "Unknown action", http.StatusBadRequest)
		return
	}

	if !s.save(w, r, attempt, p) {
		return
	}
	if p.Finished() {
		http.Redirect(w, r, "/quiz/"+attempt.ID+"/results", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/quiz/"+attempt.ID, http.StatusSeeOther)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	attempt, ok := s.loadAttempt(w, r)
	if !ok {
		return
	}

	p := attempt.Resume(s.now())
	if !p.Finished() {
		http.Redirect(w, r, "/quiz/"+attempt.ID, http.StatusSeeOther)
		return
	}
	if !attempt.State.Finished && !s.save(w, r, attempt, p) {
		return
	}

	s.render(w, r, "results", map[string]interface{}{
		"AttemptID": attempt.ID,
		"Context":   acestudy.DetailString(attempt.Context),
		"Report":    acestudy.Review(p.Finish()),
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	attempt, ok := s.loadAttempt(w, r)
	if !ok {
		return
	}

	// the export carries every correct answer
	p := attempt.Resume(s.now())
	if !p.Finished() {
		http.Redirect(w, r, "/quiz/"+attempt.ID, http.StatusSeeOther)
		return
	}
	if !attempt.State.Finished && !s.save(w, r, attempt, p) {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="AceStudy_Practice_Materials.txt"`)
	fmt.Fprint(w, acestudy.ExportText(attempt.State.Questions))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	attempt, ok := s.loadAttempt(w, r)
	if !ok {
		return
	}

	if err := s.attempts.Delete(r.Context(), attempt.ID); err != nil {
		s.logger(r).WithError(err).Warn("failed to delete attempt")
	}

	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, attemptKey)
	if err := session.Save(r, w); err != nil {
		s.logger(r).WithError(err).Error("failed to save session")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
