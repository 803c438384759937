package forms

import (
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rpupo63/portfolio-backend/errs"
)

// DateLayout is the format of the project date input.
const DateLayout = "2006-01-02"

type ProjectForm struct {
	Title       string                `form:"title" label:"Title" validate:"required,max=200"`
	Description string                `form:"description" label:"Description" validate:"required"`
	Image       *multipart.FileHeader `form:"image" label:"Image" validate:"required"`
	DateRaw     string                `form:"date" label:"Date" validate:"required"`
	Featured    bool                  `form:"featured"`
	GithubLink  *string               `form:"github_link" label:"GitHub Repository URL" validate:"omitempty,max=500,http_url"`

	Date time.Time `form:"-"`
}

type BlogPostForm struct {
	Title   string `form:"title" label:"Title" validate:"required,max=200"`
	Content string `form:"content" label:"Content" validate:"required"`
}

type ToolForm struct {
	Name        string                `form:"name" label:"Name" validate:"required,max=100"`
	Description *string               `form:"description"`
	Image       *multipart.FileHeader `form:"image"`
}

type ContactForm struct {
	Name    string `form:"name" label:"Name" validate:"required"`
	Email   string `form:"email" label:"Email" validate:"required"`
	Message string `form:"message" label:"Message" validate:"required"`
}

type CVForm struct {
	File *multipart.FileHeader `form:"cv_file" label:"CV file" validate:"required"`
}

// BindProject reads the new-project form.
func BindProject(r *http.Request, maxMemory int64) (ProjectForm, Result, error) {
	if err := parse(r, maxMemory); err != nil {
		return ProjectForm{}, Result{}, parseError(err)
	}

	form := ProjectForm{
		Title:       value(r, "title"),
		Description: value(r, "description"),
		Image:       file(r, "image"),
		DateRaw:     value(r, "date"),
		Featured:    checkbox(r, "featured"),
		GithubLink:  optional(r, "github_link"),
	}

	result := Validate(&form)
	if form.DateRaw != "" {
		date, err := time.Parse(DateLayout, form.DateRaw)
		if err != nil {
			result.Add("date", "Date must be in YYYY-MM-DD format")
		} else {
			form.Date = date
		}
	}
	return form, result, nil
}

// BindBlogPost reads the new-post form.
func BindBlogPost(r *http.Request, maxMemory int64) (BlogPostForm, Result, error) {
	if err := parse(r, maxMemory); err != nil {
		return BlogPostForm{}, Result{}, parseError(err)
	}
	form := BlogPostForm{
		Title:   value(r, "title"),
		Content: value(r, "content"),
	}
	return form, Validate(&form), nil
}

// BindTool reads the new-tool form. The logo is optional.
func BindTool(r *http.Request, maxMemory int64) (ToolForm, Result, error) {
	if err := parse(r, maxMemory); err != nil {
		return ToolForm{}, Result{}, parseError(err)
	}
	form := ToolForm{
		Name:        value(r, "name"),
		Description: optional(r, "description"),
		Image:       file(r, "image"),
	}
	return form, Validate(&form), nil
}

// BindContact reads the contact form on the home page.
func BindContact(r *http.Request, maxMemory int64) (ContactForm, Result, error) {
	if err := parse(r, maxMemory); err != nil {
		return ContactForm{}, Result{}, parseError(err)
	}
	form := ContactForm{
		Name:    value(r, "name"),
		Email:   value(r, "email"),
		Message: value(r, "message"),
	}
	return form, Validate(&form), nil
}

// BindCV reads the CV upload form. A missing part and an empty file input
// are reported separately.
func BindCV(r *http.Request, maxMemory int64) (CVForm, Result, error) {
	if err := parse(r, maxMemory); err != nil {
		return CVForm{}, Result{}, parseError(err)
	}
	form := CVForm{File: file(r, "cv_file")}
	if form.File != nil {
		return form, Validate(&form), nil
	}

	// an empty file input arrives as a plain value rather than a file part
	var result Result
	if r.MultipartForm != nil && len(r.MultipartForm.Value["cv_file"]) > 0 {
		result.addRule("cv_file", "required", "No selected file")
	} else {
		result.addRule("cv_file", "required", "No file part")
	}
	return form, result, nil
}

func file(r *http.Request, key string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[key]
	if len(files) == 0 || files[0].Filename == "" {
		return nil
	}
	return files[0]
}

func parseError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errs.NewMaxBodySizeExceededError(tooLarge.Limit)
	}
	return errs.NewBadRequestError("could not parse form: " + err.Error())
}
