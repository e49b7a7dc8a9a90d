package main

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"acestudy"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionName = "acestudy-session"
	attemptKey  = "attempt"
)

type Server struct {
	gen       acestudy.Generator
	attempts  acestudy.AttemptStore
	store     sessions.Store
	templates map[string]*template.Template
	now       func() time.Time
}

func main() {
	cfg := acestudy.ConfigFromEnv()
	acestudy.SetVerbose(cfg.Verbose)
	log := acestudy.Log

	gen := acestudy.NewQuizGeneratorFromConfig(cfg)
	log.Infof("Provider chain: %v", gen.Providers())

	ctx := context.Background()
	attempts, err := acestudy.NewAttemptStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open attempt store: %v", err)
	}
	defer attempts.Close()

	if db, ok := attempts.(*acestudy.DB); ok {
		go purgeExpired(ctx, db, cfg.AttemptTTL)
	}

	server, err := NewServer(gen, attempts, newCookieStore(cfg.SessionSecret, cfg.AttemptTTL))
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	// one request may walk the whole provider chain
	timeout := time.Duration(len(cfg.ProviderOrder)+1) * cfg.ProviderTimeout
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Routes(cfg.AllowedOrigins, timeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Shutdown failed: %v", err)
	}
}

// newCookieStore keeps the attempt cookie alive as long as the attempt itself.
// The store's defaults (Secure, SameSite=None) would drop it on plain HTTP.
func newCookieStore(secret string, ttl time.Duration) *sessions.CookieStore {
	cookies := sessions.NewCookieStore([]byte(secret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return cookies
}

// NewServer wires the web UI to a generator and an attempt store
func NewServer(gen acestudy.Generator, attempts acestudy.AttemptStore, store sessions.Store) (*Server, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{
		gen:       gen,
		attempts:  attempts,
		store:     store,
		templates: templates,
		now:       time.Now,
	}, nil
}

// Routes builds the router for the web UI and the JSON API
func (s *Server) Routes(allowedOrigins []string, timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	acestudy.MountAPI(r, s.gen, allowedOrigins)

	r.Get("/", s.handleHome)
	r.Post("/quiz/new", s.handleNewQuiz)
	r.Route("/quiz/{id}", func(r chi.Router) {
		r.Get("/", s.handleQuestion)
		r.Post("/", s.handleAnswer)
		r.Get("/results", s.handleResults)
		r.Get("/download", s.handleDownload)
		r.Post("/reset", s.handleReset)
	})

	return r
}

func loadTemplates() (map[string]*template.Template, error) {
	funcMap := template.FuncMap{
		"add":    func(a, b int) int { return a + b },
		"letter": acestudy.OptionLetter,
		"clock":  acestudy.FormatClock,
		"default": func(value, defaultValue string) string {
			if value == "" {
				return defaultValue
			}
			return value
		},
	}

	templates := make(map[string]*template.Template)

	// Load each page with base.html
	templateFiles := []struct {
		name string
		file string
	}{
		{"setup", "templates/setup.html"},
		{"question", "templates/question.html"},
		{"results", "templates/results.html"},
	}

	for _, tmpl := range templateFiles {
		t, err := template.New(tmpl.name).Funcs(funcMap).ParseFS(templateFS, "templates/base.html", tmpl.file)
		if err != nil {
			return nil, err
		}
		templates[tmpl.name] = t
	}
	return templates, nil
}

func purgeExpired(ctx context.Context, db *acestudy.DB, ttl time.Duration) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.PurgeExpired(ctx, time.Now().Add(-ttl))
			if err != nil {
				acestudy.Log.WithError(err).Warn("failed to purge expired attempts")
				continue
			}
			if n > 0 {
				acestudy.VerboseLog("Purged %d expired attempts", n)
			}
		}
	}
}
