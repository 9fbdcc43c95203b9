package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sagarc03/formfill"
)

// Service is the pipeline the handler drives. *formfill.Service implements it.
type Service interface {
	Validate(ctx context.Context, values formfill.FormValues) (formfill.ValidationResult, error)
	Fill(ctx context.Context, values formfill.FormValues) ([]byte, error)
	Fields(ctx context.Context) ([]formfill.Field, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	// MaxBodySize caps the fill request body in bytes. Zero means no limit.
	MaxBodySize int64
	CORS        CORSConfig
}

// Handler provides the HTTP endpoints of the fill pipeline.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler with all routes configured.
//
//	POST /fill_pdf  validate the JSON body, fill the template, return the PDF
//	GET  /fields    list the template's fields
//	GET  /healthz   liveness check
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/healthz", h.handleHealth)
	r.Get("/fields", h.handleFields)

	r.With(ValidationMiddleware(h.service, h.config.MaxBodySize)).Post("/fill_pdf", h.handleFill)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) handleFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.service.Fields(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, fields)
}

// handleFill runs after ValidationMiddleware has accepted the submission.
func (h *Handler) handleFill(w http.ResponseWriter, r *http.Request) {
	values, ok := FormValuesFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	doc, err := h.service.Fill(r.Context(), values)
	if err != nil {
		logError(r, err)
		switch formfill.PhaseOf(err) {
		case formfill.PhaseTemplate:
			WritePlainError(w, http.StatusInternalServerError, MsgTemplateFetch)
		default:
			WritePlainError(w, http.StatusInternalServerError, MsgFill)
		}
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
