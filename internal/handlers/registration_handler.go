package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"familyregistry/internal/service"
	"familyregistry/internal/session"
	"familyregistry/internal/storage"
)

// multipartMemory is how much of a multipart body is kept in memory before spilling to temp files
const multipartMemory = 8 << 20

// RegistrationHandler serves the public registration form
type RegistrationHandler struct {
	registration   *service.RegistrationService
	familySessions *session.Manager
	templates      *template.Template
	maxUploadSize  int64
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registration *service.RegistrationService, familySessions *session.Manager, templates *template.Template, maxUploadSize int64) *RegistrationHandler {
	return &RegistrationHandler{
		registration:   registration,
		familySessions: familySessions,
		templates:      templates,
		maxUploadSize:  maxUploadSize,
	}
}

// Home renders the registration form, or sends signed-in families to their dashboard
func (h *RegistrationHandler) Home(w http.ResponseWriter, r *http.Request) {
	if _, err := h.familySessions.Current(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	render(w, h.templates, "register.tmpl", http.StatusOK, RegisterViewData{
		Title: "Family Registration",
	})
}

// SubmitForm stores a registration as pending and answers with a plain-text acknowledgement
func (h *RegistrationHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	// form fields on top of the photo
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondWithError(w, http.StatusRequestEntityTooLarge, "Error: upload too large", "Registration upload too large", err)
			return
		case errors.Is(err, http.ErrNotMultipart):
			if err := r.ParseForm(); err != nil {
				respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "Failed to parse registration form", err)
				return
			}
		default:
			respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "Failed to parse registration form", err)
			return
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	var upload *storage.File
	file, header, err := r.FormFile(service.ProfileImageField)
	switch {
	case err == nil:
		defer file.Close()
		upload = &storage.File{
			FieldName:   service.ProfileImageField,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     file,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "Failed to read uploaded file", err)
		return
	}

	input := service.SubmissionFromForm(r.Form)
	if _, err := h.registration.Submit(r.Context(), input, upload); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error: "+err.Error(), "Failed to submit registration", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(SubmissionAcceptedMessage))
}
