package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/flash"
	"github.com/rpupo63/portfolio-backend/forms"
	"github.com/rpupo63/portfolio-backend/metrics"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var projectForm = formData{
	Action: "/admin/project/new",
	Fields: []formField{
		{Name: "title", Label: "Title", Type: "text", Required: true},
		{Name: "description", Label: "Description", Type: "textarea", Required: true},
		{Name: "image", Label: "Image", Type: "file", Required: true, Accept: "image/*,.pdf"},
		{Name: "date", Label: "Date", Type: "date", Required: true},
		{Name: "featured", Label: "Featured", Type: "checkbox"},
		{Name: "github_link", Label: "GitHub Repository URL (optional)", Type: "url"},
	},
}

type projectHandler struct {
	responder   Responder
	logger      zerolog.Logger
	renderer    *renderer
	projectRepo *database.ProjectRepo
	files       *services.FileStore
	maxMemory   int64
}

func newProjectHandler(projectRepo *database.ProjectRepo, files *services.FileStore, rd *renderer, maxMemory int64) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		renderer:    rd,
		projectRepo: projectRepo,
		files:       files,
		maxMemory:   maxMemory,
	}
}

// index renders the home page: the featured project, the rest, and the contact form.
func (h projectHandler) index() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		featured, err := h.projectRepo.FindFeatured(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "featured project", err))
			return
		}

		projects, err := h.projectRepo.FindUnfeatured(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "projects", err))
			return
		}

		h.renderer.render(w, r, http.StatusOK, "index.html", page{
			Title:      "Projects",
			ActivePage: "projects",
			Data:       indexData{Featured: featured, Projects: projects},
		})
	}
}

func (h projectHandler) newProjectForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderer.render(w, r, http.StatusOK, "admin_form.html", page{Title: "New Project", Data: projectForm})
	}
}

// createProject stores the image, then inserts the row. The two writes are not atomic;
// a failed insert removes the image again.
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, result, err := forms.BindProject(r, h.maxMemory)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !result.Valid() {
			h.renderer.render(w, r, http.StatusUnprocessableEntity, "admin_form.html", page{
				Title: "New Project",
				Data: projectForm.withValues(map[string]string{
					"title":       form.Title,
					"description": form.Description,
					"date":        form.DateRaw,
					"featured":    checkedValue(form.Featured),
					"github_link": derefString(form.GithubLink),
				}, result),
			})
			return
		}

		filename, err := h.files.Save(services.BucketImages, form.Image)
		if err != nil {
			handleUploadError(w, r, h.renderer, h.responder, services.BucketImages, projectForm.Action, err)
			return
		}
		metrics.Uploads.WithLabelValues(string(services.BucketImages), metrics.ResultOK).Inc()

		project := models.Project{
			Title:       form.Title,
			Description: form.Description,
			Image:       filename,
			Date:        form.Date,
			Featured:    form.Featured,
			GithubLink:  form.GithubLink,
		}
		if err := h.projectRepo.Add(r.Context(), &project); err != nil {
			if rmErr := h.files.Remove(services.BucketImages, filename); rmErr != nil {
				h.logger.Warn().Err(rmErr).Str("filename", filename).Msg("could not remove orphaned image")
			}
			h.responder.WriteError(w, wrapDatabaseError("create", "project", err))
			return
		}

		h.logger.Info().Str("projectID", project.ID.String()).Str("image", filename).Msg("project created")
		h.renderer.redirect(w, r, "/", flash.Success("Project added successfully!"))
	}
}

// deleteProject removes the project's image, then its row.
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, ok := parseID(r, "projectID")
		if !ok {
			h.responder.WriteError(w, errs.NewNotFoundError("project"))
			return
		}

		project, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}

		if project.Image != "" {
			if err := h.files.Remove(services.BucketImages, project.Image); err != nil {
				h.logger.Warn().Err(err).Str("image", project.Image).Msg("could not remove project image")
			}
		}

		if err := h.projectRepo.Delete(r.Context(), projectID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "project", err))
			return
		}

		h.renderer.redirect(w, r, "/", flash.Success("Project deleted successfully!"))
	}
}
