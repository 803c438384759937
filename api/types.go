package api

import (
	"time"

	"github.com/rpupo63/portfolio-backend/flash"
	"github.com/rpupo63/portfolio-backend/forms"
	"github.com/rpupo63/portfolio-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler  projectHandler
	blogPostHandler blogPostHandler
	toolHandler     toolHandler
	cvHandler       cvHandler
	contactHandler  contactHandler
	healthHandler   healthHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string `json:"error"`
	Status  string `json:"status"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
	Cause   string `json:"cause,omitempty"`
}

// page is what every template receives; JSON clients get the same value.
type page struct {
	Title      string         `json:"title"`
	ActivePage string         `json:"active_page,omitempty"`
	Notices    []flash.Notice `json:"notices,omitempty"`
	Now        time.Time      `json:"-"`
	Data       any            `json:"data,omitempty"`
}

type indexData struct {
	Featured *models.Project   `json:"featured_project"`
	Projects []*models.Project `json:"projects"`
}

type toolsData struct {
	Tools []*models.Tool `json:"tools"`
}

type blogData struct {
	Posts []*models.BlogPost `json:"posts"`
}

type cvData struct {
	CV *models.CVRecord `json:"cv"`
}

// formField describes one input on an admin form.
type formField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Accept   string `json:"accept,omitempty"`
	Value    string `json:"value,omitempty"`
}

type formData struct {
	Action string             `json:"action"`
	Fields []formField        `json:"fields"`
	Errors []forms.FieldError `json:"errors,omitempty"`
}

// Multipart reports whether the form carries a file input.
func (f formData) Multipart() bool {
	for _, field := range f.Fields {
		if field.Type == "file" {
			return true
		}
	}
	return false
}

// withValues copies submitted text back into the fields after a failed post.
func (f formData) withValues(values map[string]string, result forms.Result) formData {
	fields := make([]formField, len(f.Fields))
	for i, field := range f.Fields {
		if field.Type != "file" {
			field.Value = values[field.Name]
		}
		fields[i] = field
	}
	f.Fields = fields
	f.Errors = result.Errors
	return f
}

type healthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
}
