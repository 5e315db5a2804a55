package httpserver

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/neuromediai/site/internal/domain/detection"
	"github.com/neuromediai/site/internal/domain/inquiry"
	"github.com/neuromediai/site/internal/domain/notify"
	"github.com/neuromediai/site/internal/domain/site"
	"github.com/neuromediai/site/internal/logger"
	"github.com/neuromediai/site/internal/middleware"
)

//go:embed web/templates/*.html web/static/*
var webFS embed.FS

var staticFS = mustSub(webFS, "web/static")

func mustSub(f fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(f, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// pageData is what every template receives. Page specific fields stay zero
// on pages that do not use them.
type pageData struct {
	Title      string
	Path       string
	Brand      string
	Tagline    string
	Disclaimer string
	Nav        []site.NavLink
	Toasts     []notify.Notification

	Features    []site.Feature
	Diseases    []detection.Disease
	Options     inquiry.Options
	Contacts    []site.ContactInfo
	FAQs        []site.FAQ
	MaxUploadMB int64
}

type pages struct {
	byName map[string]*template.Template
}

var pageFiles = map[string]string{
	"home":        "web/templates/home.html",
	"detection":   "web/templates/detection.html",
	"appointment": "web/templates/appointment.html",
	"contact":     "web/templates/contact.html",
	"notfound":    "web/templates/notfound.html",
}

func mustLoadPages() *pages {
	p := &pages{byName: make(map[string]*template.Template, len(pageFiles))}
	for name, file := range pageFiles {
		p.byName[name] = template.Must(template.ParseFS(webFS, "web/templates/layout.html", file))
	}
	return p
}

// render executes into a buffer first so a template error never leaves a
// half written page behind.
func (p *pages) render(w http.ResponseWriter, status int, name string, data pageData) error {
	t, ok := p.byName[name]
	if !ok {
		return badRequest("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// page is wrap for HTML routes: failures get a plain 500 page.
func (r *Router) page(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			logger.Error().Err(err).Str("path", req.URL.Path).Msg("render page")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

func (r *Router) baseData(req *http.Request, title string) pageData {
	return pageData{
		Title:      title,
		Path:       req.URL.Path,
		Brand:      site.Brand,
		Tagline:    site.Tagline,
		Disclaimer: site.MedicalDisclaimer,
		Nav:        site.NavLinks,
		Toasts:     r.toasts.Drain(middleware.GetVisitorFromContext(req.Context())),
	}
}

// GET /
func (r *Router) handleHome(w http.ResponseWriter, req *http.Request) error {
	data := r.baseData(req, "AI-Assisted Medical Imaging")
	data.Features = site.Features
	data.Diseases = detection.Diseases()
	return r.pages.render(w, http.StatusOK, "home", data)
}

// GET /disease-detection
func (r *Router) handleDetectionPage(w http.ResponseWriter, req *http.Request) error {
	data := r.baseData(req, "Disease Detection")
	data.Diseases = detection.Diseases()
	data.MaxUploadMB = r.maxUpload >> 20
	return r.pages.render(w, http.StatusOK, "detection", data)
}

// GET /book-appointment
func (r *Router) handleAppointmentPage(w http.ResponseWriter, req *http.Request) error {
	data := r.baseData(req, "Book Appointment")
	data.Options = inquiry.BookingOptions()
	return r.pages.render(w, http.StatusOK, "appointment", data)
}

// POST /book-appointment, form post-redirect-get
func (r *Router) handleAppointmentForm(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, 1<<20)
	if err := req.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return nil
	}
	f := req.PostForm
	_, err := r.inquiry.BookAppointment(req.Context(), middleware.GetVisitorFromContext(req.Context()), inquiry.AppointmentRequest{
		Type:     f.Get("type"),
		Doctor:   f.Get("doctor"),
		Location: f.Get("location"),
		Date:     f.Get("date"),
		Time:     f.Get("time"),
		FullName: f.Get("full_name"),
		Email:    f.Get("email"),
		Phone:    f.Get("phone"),
		Age:      f.Get("age"),
		Gender:   f.Get("gender"),
		Reason:   f.Get("reason"),
	})
	if err != nil {
		return err
	}
	http.Redirect(w, req, "/book-appointment", http.StatusSeeOther)
	return nil
}

// GET /contact
func (r *Router) handleContactPage(w http.ResponseWriter, req *http.Request) error {
	data := r.baseData(req, "Contact Us")
	data.Contacts = site.Contacts
	data.FAQs = site.FAQs
	return r.pages.render(w, http.StatusOK, "contact", data)
}

// POST /contact, form post-redirect-get
func (r *Router) handleContactForm(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, 1<<20)
	if err := req.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return nil
	}
	f := req.PostForm
	_, err := r.inquiry.SubmitContact(req.Context(), middleware.GetVisitorFromContext(req.Context()), inquiry.ContactMessage{
		Name:    f.Get("name"),
		Email:   f.Get("email"),
		Subject: f.Get("subject"),
		Message: f.Get("message"),
	})
	if err != nil {
		return err
	}
	http.Redirect(w, req, "/contact", http.StatusSeeOther)
	return nil
}

func (r *Router) handleNotFound(w http.ResponseWriter, req *http.Request) {
	data := r.baseData(req, "Page Not Found")
	if err := r.pages.render(w, http.StatusNotFound, "notfound", data); err != nil {
		logger.Error().Err(err).Msg("render 404")
		http.NotFound(w, req)
	}
}
