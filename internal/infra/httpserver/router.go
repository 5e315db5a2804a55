package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appdetection "github.com/neuromediai/site/internal/application/detection"
	appinquiry "github.com/neuromediai/site/internal/application/inquiry"
	domain "github.com/neuromediai/site/internal/domain/detection"
	"github.com/neuromediai/site/internal/domain/inquiry"
	"github.com/neuromediai/site/internal/infra/toast"
	"github.com/neuromediai/site/internal/logger"
	"github.com/neuromediai/site/internal/middleware"
)

// DefaultMaxUploadBytes caps an image upload (10 MiB).
const DefaultMaxUploadBytes = 10 << 20

// multipartSlack covers boundaries and part headers on top of the file itself.
const multipartSlack = 64 << 10

// maxWait caps a ?wait=true long poll.
const maxWait = 30 * time.Second

// Deps are the collaborators the router serves.
type Deps struct {
	Detection      *appdetection.Service
	Inquiry        *appinquiry.Service
	Toasts         *toast.Store
	Previews       domain.PreviewStore
	Limiter        *middleware.RateLimiter
	AllowedOrigins []string
	MaxUploadBytes int64
}

type Router struct {
	detection *appdetection.Service
	inquiry   *appinquiry.Service
	toasts    *toast.Store
	previews  domain.PreviewStore
	maxUpload int64
	pages     *pages
}

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func NewRouter(d Deps) http.Handler {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = DefaultMaxUploadBytes
	}
	r := &Router{
		detection: d.Detection,
		inquiry:   d.Inquiry,
		toasts:    d.Toasts,
		previews:  d.Previews,
		maxUpload: d.MaxUploadBytes,
		pages:     mustLoadPages(),
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.VisitorMiddleware)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(chimw.Recoverer)
	if d.Limiter != nil {
		mux.Use(middleware.RateLimitMiddleware(d.Limiter))
	}

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"previews": middleware.CheckFunc(d.Previews.Check),
	}))
	mux.Get("/readyz", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	mux.Get("/", r.page(r.handleHome))
	mux.Get("/disease-detection", r.page(r.handleDetectionPage))
	mux.Get("/book-appointment", r.page(r.handleAppointmentPage))
	mux.Post("/book-appointment", r.page(r.handleAppointmentForm))
	mux.Get("/contact", r.page(r.handleContactPage))
	mux.Post("/contact", r.page(r.handleContactForm))
	mux.NotFound(r.handleNotFound)

	mux.Route("/api", func(api chi.Router) {
		if len(d.AllowedOrigins) > 0 {
			api.Use(cors.Handler(cors.Options{
				AllowedOrigins:   d.AllowedOrigins,
				AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
				AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}
		api.NotFound(http.NotFound)

		api.Get("/diseases", r.wrap(r.handleDiseases))

		api.Post("/detections", r.wrap(r.handleOpen))
		api.Get("/detections/{id}", r.wrap(r.handleSnapshot))
		api.Delete("/detections/{id}", r.wrap(r.handleClose))
		api.Post("/detections/{id}/image", r.wrap(r.handleStage))
		api.Delete("/detections/{id}/image", r.wrap(r.handleReset))
		api.Post("/detections/{id}/analyze", r.wrap(r.handleAnalyze))
		api.Post("/detections/{id}/reset", r.wrap(r.handleReset))
		api.Get("/previews/{id}", r.wrap(r.handlePreview))

		api.Get("/appointments/options", r.wrap(r.handleAppointmentOptions))
		api.Post("/appointments", r.wrap(r.handleBookAppointment))
		api.Post("/contact", r.wrap(r.handleSubmitContact))
		api.Get("/notifications", r.wrap(r.handleNotifications))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				logger.Error().Err(err).Str("path", req.URL.Path).Msg("request failed")
			}
			http.Error(w, err.Error(), status)
		}
	}
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrPreviewNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownDisease), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUploadTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// client went away
		return 499
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func decodeJSON(req *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(req.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return badRequest("decode body: %v", err)
	}
	return nil
}

// GET /api/diseases
func (r *Router) handleDiseases(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, domain.Diseases())
}

// POST /api/detections
// Body: {"disease": "<id>"}
func (r *Router) handleOpen(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Disease string `json:"disease"`
	}
	if err := decodeJSON(req, &body); err != nil {
		return err
	}
	if err := middleware.ValidateDiseaseID(body.Disease); err != nil {
		return err
	}

	sess, err := r.detection.Open(req.Context(), body.Disease)
	if err != nil {
		return err
	}
	w.Header().Set("Location", "/api/detections/"+string(sess.ID))
	return writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (r *Router) session(req *http.Request) (*appdetection.Session, error) {
	id, err := middleware.ValidateSessionID(chi.URLParam(req, "id"))
	if err != nil {
		return nil, badRequest("%v", err)
	}
	return r.detection.Get(id)
}

// GET /api/detections/{id}?wait=true
// With wait the call blocks while the analysis runs.
func (r *Router) handleSnapshot(w http.ResponseWriter, req *http.Request) error {
	sess, err := r.session(req)
	if err != nil {
		return err
	}
	if req.URL.Query().Get("wait") != "true" {
		return writeJSON(w, http.StatusOK, sess.Snapshot())
	}

	ctx, cancel := context.WithTimeout(req.Context(), maxWait)
	defer cancel()
	snap, err := sess.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		// still analyzing, let the client poll again
		return writeJSON(w, http.StatusOK, sess.Snapshot())
	}
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, snap)
}

// DELETE /api/detections/{id}
func (r *Router) handleClose(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.ValidateSessionID(chi.URLParam(req, "id"))
	if err != nil {
		return badRequest("%v", err)
	}
	if err := r.detection.Close(req.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

type stageResponse struct {
	Accepted bool                  `json:"accepted"`
	Session  appdetection.Snapshot `json:"session"`
}

// POST /api/detections/{id}/image
// multipart/form-data, field "file". The part's Content-Type decides whether
// the upload is an image; anything else is ignored and accepted=false.
func (r *Router) handleStage(w http.ResponseWriter, req *http.Request) error {
	sess, err := r.session(req)
	if err != nil {
		return err
	}

	bodyLimit := r.maxUpload + multipartSlack
	if req.ContentLength > bodyLimit {
		return domain.ErrUploadTooLarge
	}
	req.Body = http.MaxBytesReader(w, req.Body, bodyLimit)
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.ErrUploadTooLarge
		}
		return badRequest("parse upload: %v", err)
	}
	defer func() { _ = req.MultipartForm.RemoveAll() }()

	file, hdr, err := req.FormFile("file")
	if err != nil {
		return badRequest("file field: %v", err)
	}
	defer file.Close()
	if hdr.Size > r.maxUpload {
		return domain.ErrUploadTooLarge
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	accepted, err := sess.Stage(req.Context(), domain.Upload{
		Filename:  hdr.Filename,
		MediaType: hdr.Header.Get("Content-Type"),
		Data:      data,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, stageResponse{Accepted: accepted, Session: sess.Snapshot()})
}

type analyzeResponse struct {
	Started bool                  `json:"started"`
	Session appdetection.Snapshot `json:"session"`
}

// POST /api/detections/{id}/analyze
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	sess, err := r.session(req)
	if err != nil {
		return err
	}
	started := sess.Analyze()
	status := http.StatusAccepted
	if !started {
		status = http.StatusOK
	}
	return writeJSON(w, status, analyzeResponse{Started: started, Session: sess.Snapshot()})
}

// POST /api/detections/{id}/reset, DELETE /api/detections/{id}/image
func (r *Router) handleReset(w http.ResponseWriter, req *http.Request) error {
	sess, err := r.session(req)
	if err != nil {
		return err
	}
	if err := sess.Reset(req.Context()); err != nil {
		// the dialog is Empty either way
		logger.Warn().Err(err).Str("session", string(sess.ID)).Msg("release preview on reset")
	}
	return writeJSON(w, http.StatusOK, sess.Snapshot())
}

// GET /api/previews/{id}
func (r *Router) handlePreview(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidatePreviewID(id); err != nil {
		return badRequest("%v", err)
	}
	p, err := r.previews.Open(req.Context(), id)
	if err != nil {
		return err
	}

	h := w.Header()
	h.Set("Content-Type", p.MediaType)
	h.Set("Cache-Control", "private, no-store")
	h.Set("X-Content-Type-Options", "nosniff")
	// declared type comes from the client, never let it run script
	h.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; sandbox")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(p.Data)
	return err
}

// GET /api/appointments/options
func (r *Router) handleAppointmentOptions(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, inquiry.BookingOptions())
}

// POST /api/appointments
func (r *Router) handleBookAppointment(w http.ResponseWriter, req *http.Request) error {
	var body inquiry.AppointmentRequest
	if err := decodeJSON(req, &body); err != nil {
		return err
	}
	n, err := r.inquiry.BookAppointment(req.Context(), middleware.GetVisitorFromContext(req.Context()), body)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, n)
}

// POST /api/contact
func (r *Router) handleSubmitContact(w http.ResponseWriter, req *http.Request) error {
	var body inquiry.ContactMessage
	if err := decodeJSON(req, &body); err != nil {
		return err
	}
	n, err := r.inquiry.SubmitContact(req.Context(), middleware.GetVisitorFromContext(req.Context()), body)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, n)
}

// GET /api/notifications
func (r *Router) handleNotifications(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, r.toasts.Drain(middleware.GetVisitorFromContext(req.Context())))
}
