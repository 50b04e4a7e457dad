package main

import (
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/corequote/corequote/httpx"
	"github.com/corequote/corequote/i18n"
	"github.com/corequote/corequote/internal/config"
	"github.com/google/uuid"
)

// statusRecorder captures the status code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// withLogging tags each request with an id (X-Request-ID is honoured when
// present) and logs method, path, status and duration.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(httpx.WithRequestID(r.Context(), id)))
		log.Printf("%s %s %d %s [%s]", r.Method, r.URL.Path, rec.status, time.Since(start), id)
	})
}

// withRecover turns a panic into a 500.
func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				log.Printf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, err, debug.Stack())
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withAllowedHosts rejects requests whose Host is not configured.
func withAllowedHosts(app config.AppConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !app.HostAllowed(r.Host) {
			http.Error(w, "invalid host header", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withPreferences resolves the UI language and remembers an explicit
// ?lang= choice in a cookie.
func withPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.FromRequest(r)
		if q := r.URL.Query().Get("lang"); q != "" && q == lang {
			i18n.Remember(w, lang)
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}
