package acestudy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// GeneratePath is where the generation endpoint is served
const GeneratePath = "/api/generate-quiz"

const maxRequestBody = 1 << 20

// Generator produces a quiz for a study context
type Generator interface {
	Generate(ctx context.Context, sc StudyContext) (*GenerationResult, error)
}

// GenerateHandler serves POST /api/generate-quiz
func GenerateHandler(gen Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var sc StudyContext
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&sc); err != nil {
			Log.WithError(err).Warn("rejecting undecodable generation request")
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := sc.Validate(); err != nil {
			Log.WithError(err).Warn("rejecting invalid study context")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := gen.Generate(r.Context(), sc)
		if err != nil {
			entry := Log.WithError(err)
			if errors.Is(err, ErrNoProviders) {
				entry = entry.WithField("cause", "no providers configured")
			}
			entry.Error("quiz generation failed")
			writeError(w, http.StatusInternalServerError, "Failed to generate quiz")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// MountAPI registers the generation endpoint on r behind CORS
func MountAPI(r chi.Router, gen Generator, allowedOrigins []string) {
	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
		r.HandleFunc(GeneratePath, GenerateHandler(gen))
	})
}

// APIRouter is a router serving only the generation endpoint
func APIRouter(gen Generator, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	MountAPI(r, gen, allowedOrigins)
	return r
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		Log.WithError(err).Warn("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
