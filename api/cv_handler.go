package api

import (
	"net/http"
	"sync"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/flash"
	"github.com/rpupo63/portfolio-backend/forms"
	"github.com/rpupo63/portfolio-backend/metrics"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const cvUploadPath = "/admin/cv/upload"

// cvHandler keeps at most one CV. Replacing and deleting share a lock so two
// admins uploading at once cannot leave two records behind.
type cvHandler struct {
	responder Responder
	logger    zerolog.Logger
	renderer  *renderer
	cvRepo    *database.CVRepo
	files     *services.FileStore
	maxMemory int64
	mu        *sync.Mutex
}

func newCVHandler(cvRepo *database.CVRepo, files *services.FileStore, rd *renderer, maxMemory int64, mu *sync.Mutex) cvHandler {
	logger := log.With().Str("handlerName", "cvHandler").Logger()

	return cvHandler{
		responder: NewResponder(logger),
		logger:    logger,
		renderer:  rd,
		cvRepo:    cvRepo,
		files:     files,
		maxMemory: maxMemory,
		mu:        mu,
	}
}

// getCV renders the most recent upload, if any
func (h cvHandler) getCV() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cv, err := h.cvRepo.FindLatest(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "CV", err))
			return
		}

		h.renderer.render(w, r, http.StatusOK, "cv.html", page{
			Title:      "CV",
			ActivePage: "cv",
			Data:       cvData{CV: cv},
		})
	}
}

func (h cvHandler) uploadForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderer.render(w, r, http.StatusOK, "admin_cv_upload.html", page{Title: "Upload CV"})
	}
}

// uploadCV replaces the current CV: every earlier record and its file go first,
// then the new file is written and one record inserted.
func (h cvHandler) uploadCV() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, result, err := forms.BindCV(r, h.maxMemory)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !result.Valid() {
			metrics.Uploads.WithLabelValues(string(services.BucketCVs), metrics.ResultInvalid).Inc()
			h.renderer.redirect(w, r, cvUploadPath, flash.Error(result.Err().UserMessage()))
			return
		}

		// checked before touching the current CV so a bad upload leaves it in place
		if !h.files.Allowed(services.BucketCVs, form.File.Filename) {
			metrics.Uploads.WithLabelValues(string(services.BucketCVs), metrics.ResultRejected).Inc()
			h.renderer.redirect(w, r, cvUploadPath, flash.Error("Only PDF files are allowed."))
			return
		}
		if services.SecureFilename(form.File.Filename) == "" {
			metrics.Uploads.WithLabelValues(string(services.BucketCVs), metrics.ResultRejected).Inc()
			h.renderer.redirect(w, r, cvUploadPath, flash.Error("The file name cannot be stored."))
			return
		}

		h.mu.Lock()
		defer h.mu.Unlock()

		if err := h.removeAll(r); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		filename, err := h.files.Save(services.BucketCVs, form.File)
		if err != nil {
			handleUploadError(w, r, h.renderer, h.responder, services.BucketCVs, cvUploadPath, err)
			return
		}
		metrics.Uploads.WithLabelValues(string(services.BucketCVs), metrics.ResultOK).Inc()

		record := models.CVRecord{Filename: filename, OriginalName: form.File.Filename}
		if err := h.cvRepo.Add(r.Context(), &record); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "CV", err))
			return
		}

		h.logger.Info().Str("cvID", record.ID.String()).Str("filename", filename).Msg("cv uploaded")
		h.renderer.redirect(w, r, "/cv", flash.Success("CV uploaded successfully!"))
	}
}

// deleteCV removes the current CV, or reports there is nothing to delete.
func (h cvHandler) deleteCV() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		defer h.mu.Unlock()

		n, err := h.cvRepo.Count(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "CVs", err))
			return
		}
		if n == 0 {
			h.renderer.redirect(w, r, "/cv", flash.Info("No CV to delete."))
			return
		}

		if err := h.removeAll(r); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.renderer.redirect(w, r, "/cv", flash.Success("CV deleted successfully."))
	}
}

// removeAll deletes every CV file and record. Callers hold mu.
func (h cvHandler) removeAll(r *http.Request) error {
	records, err := h.cvRepo.FindAll(r.Context())
	if err != nil {
		return wrapDatabaseError("find", "CVs", err)
	}

	for _, record := range records {
		if err := h.files.Remove(services.BucketCVs, record.Filename); err != nil {
			h.logger.Warn().Err(err).Str("filename", record.Filename).Msg("could not remove cv file")
		}
		if err := h.cvRepo.Delete(r.Context(), record.ID); err != nil {
			return wrapDatabaseError("delete", "CV", err)
		}
	}
	return nil
}
