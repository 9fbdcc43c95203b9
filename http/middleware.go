package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/sagarc03/formfill"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

type formValuesKey struct{}

// RequestIDFromContext returns the id assigned by RequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FormValuesFromContext returns the submission accepted by
// ValidationMiddleware.
func FormValuesFromContext(ctx context.Context) (formfill.FormValues, bool) {
	values, ok := ctx.Value(formValuesKey{}).(formfill.FormValues)
	return values, ok
}

// RequestID assigns every request an id, reusing a valid X-Request-ID header
// from the client, and echoes it in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger logs one line per request once the response is written.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("request",
			"id", RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start),
		)
	})
}

// ValidationMiddleware decodes the JSON submission, loads the current schema
// and rejects values the schema does not allow. Accepted values are passed on
// through the request context.
func ValidationMiddleware(service Service, maxBodySize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := io.Reader(r.Body)
			if maxBodySize > 0 {
				body = http.MaxBytesReader(w, r.Body, maxBodySize)
			}

			data, err := io.ReadAll(body)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", "Request body too large")
					return
				}
				WriteError(w, http.StatusBadRequest, "invalid_body", "Could not read request body")
				return
			}

			values, err := formfill.DecodeFormValues(data)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "invalid_body", err.Error())
				return
			}

			result, err := service.Validate(r.Context(), values)
			if err != nil {
				logError(r, err)
				WritePlainError(w, http.StatusInternalServerError, MsgSchemaFetch)
				return
			}

			if !result.Valid() {
				slog.Info("submission rejected",
					"id", RequestIDFromContext(r.Context()),
					"fields", result.Fields(),
				)
				_ = WriteJSON(w, http.StatusBadRequest, InvalidValuesResponse{
					Error:         MsgInvalidValues,
					InvalidFields: result.Violations,
				})
				return
			}

			ctx := context.WithValue(r.Context(), formValuesKey{}, values)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
