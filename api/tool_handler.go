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

var toolForm = formData{
	Action: "/admin/tool/new",
	Fields: []formField{
		{Name: "name", Label: "Name", Type: "text", Required: true},
		{Name: "description", Label: "Description", Type: "textarea"},
		{Name: "image", Label: "Tool Logo (optional)", Type: "file", Accept: "image/*,.pdf"},
	},
}

type toolHandler struct {
	responder Responder
	logger    zerolog.Logger
	renderer  *renderer
	toolRepo  *database.ToolRepo
	files     *services.FileStore
	maxMemory int64
}

func newToolHandler(toolRepo *database.ToolRepo, files *services.FileStore, rd *renderer, maxMemory int64) toolHandler {
	logger := log.With().Str("handlerName", "toolHandler").Logger()

	return toolHandler{
		responder: NewResponder(logger),
		logger:    logger,
		renderer:  rd,
		toolRepo:  toolRepo,
		files:     files,
		maxMemory: maxMemory,
	}
}

func (h toolHandler) getAllTools() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tools, err := h.toolRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "tools", err))
			return
		}

		h.renderer.render(w, r, http.StatusOK, "tools.html", page{
			Title:      "Tools",
			ActivePage: "tools",
			Data:       toolsData{Tools: tools},
		})
	}
}

func (h toolHandler) newToolForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderer.render(w, r, http.StatusOK, "admin_form.html", page{Title: "New Tool", Data: toolForm})
	}
}

// createTool saves the optional logo, then inserts the row. A refused logo
// stops the whole submission.
func (h toolHandler) createTool() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, result, err := forms.BindTool(r, h.maxMemory)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !result.Valid() {
			h.renderer.render(w, r, http.StatusUnprocessableEntity, "admin_form.html", page{
				Title: "New Tool",
				Data: toolForm.withValues(map[string]string{
					"name":        form.Name,
					"description": derefString(form.Description),
				}, result),
			})
			return
		}

		var logo *string
		if form.Image != nil {
			filename, err := h.files.Save(services.BucketTools, form.Image)
			if err != nil {
				handleUploadError(w, r, h.renderer, h.responder, services.BucketTools, toolForm.Action, err)
				return
			}
			metrics.Uploads.WithLabelValues(string(services.BucketTools), metrics.ResultOK).Inc()
			logo = &filename
		}

		tool := models.Tool{Name: form.Name, Description: form.Description, ImageFilename: logo}
		if err := h.toolRepo.Add(r.Context(), &tool); err != nil {
			if logo != nil {
				if rmErr := h.files.Remove(services.BucketTools, *logo); rmErr != nil {
					h.logger.Warn().Err(rmErr).Str("filename", *logo).Msg("could not remove orphaned logo")
				}
			}
			h.responder.WriteError(w, wrapDatabaseError("create", "tool", err))
			return
		}

		h.logger.Info().Str("toolID", tool.ID.String()).Msg("tool created")
		h.renderer.redirect(w, r, "/tools", flash.Success("Tool added successfully!"))
	}
}

// deleteTool removes the logo when there is one, then the row.
func (h toolHandler) deleteTool() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		toolID, ok := parseID(r, "toolID")
		if !ok {
			h.responder.WriteError(w, errs.NewNotFoundError("tool"))
			return
		}

		tool, err := h.toolRepo.FindByID(r.Context(), toolID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "tool", err))
			return
		}

		if tool.ImageFilename != nil && *tool.ImageFilename != "" {
			if err := h.files.Remove(services.BucketTools, *tool.ImageFilename); err != nil {
				h.logger.Warn().Err(err).Str("image", *tool.ImageFilename).Msg("could not remove tool logo")
			}
		}

		if err := h.toolRepo.Delete(r.Context(), toolID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "tool", err))
			return
		}

		h.renderer.redirect(w, r, "/tools", flash.Success("Tool deleted successfully!"))
	}
}
