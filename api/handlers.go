package api

import (
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/flash"
	"github.com/rpupo63/portfolio-backend/metrics"
	"github.com/rpupo63/portfolio-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, rd *renderer, maxMemory int64, recipient string) *routeHandlers {
	db := deps.Database
	return &routeHandlers{
		projectHandler:  newProjectHandler(db.ProjectRepo(), deps.Files, rd, maxMemory),
		blogPostHandler: newBlogPostHandler(db.BlogPostRepo(), rd, maxMemory),
		toolHandler:     newToolHandler(db.ToolRepo(), deps.Files, rd, maxMemory),
		cvHandler:       newCVHandler(db.CVRepo(), deps.Files, rd, maxMemory, &sync.Mutex{}),
		contactHandler:  newContactHandler(deps.Mailer, rd, maxMemory, recipient),
		healthHandler:   newHealthHandler(db, deps.StartupTime),
	}
}

// handleUploadError turns a refused upload into a flash notice and a redirect back
// to the form. Anything else is a server-side failure.
func handleUploadError(w http.ResponseWriter, r *http.Request, rd *renderer, responder Responder, bucket services.Bucket, back string, err error) {
	var apiErr *errs.ApiErr
	refused := errs.IsUnsupportedFileTypeError(err) || errs.IsInvalidFilenameError(err) || errs.IsMissingFileError(err)
	if !refused || !errors.As(err, &apiErr) {
		metrics.Uploads.WithLabelValues(string(bucket), metrics.ResultFailed).Inc()
		responder.WriteError(w, errs.NewInternalErrorWithCause("could not store upload", err))
		return
	}

	metrics.Uploads.WithLabelValues(string(bucket), metrics.ResultRejected).Inc()
	rd.redirect(w, r, back, flash.Error(apiErr.UserMessage()))
}

// parseID reads a uuid path parameter. A malformed id cannot match a row.
func parseID(r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func checkedValue(b bool) string {
	if b {
		return "y"
	}
	return ""
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
