package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/flash"
	"github.com/rpupo63/portfolio-backend/forms"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var blogPostForm = formData{
	Action: "/admin/blog/new",
	Fields: []formField{
		{Name: "title", Label: "Title", Type: "text", Required: true},
		{Name: "content", Label: "Content", Type: "textarea", Required: true},
	},
}

type blogPostHandler struct {
	responder    Responder
	logger       zerolog.Logger
	renderer     *renderer
	blogPostRepo *database.BlogPostRepo
	maxMemory    int64
}

func newBlogPostHandler(blogPostRepo *database.BlogPostRepo, rd *renderer, maxMemory int64) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		renderer:     rd,
		blogPostRepo: blogPostRepo,
		maxMemory:    maxMemory,
	}
}

// getAllBlogPosts renders every post, newest first
func (h blogPostHandler) getAllBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.blogPostRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog posts", err))
			return
		}

		h.renderer.render(w, r, http.StatusOK, "blog.html", page{
			Title:      "Blog",
			ActivePage: "blog",
			Data:       blogData{Posts: posts},
		})
	}
}

func (h blogPostHandler) newBlogPostForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderer.render(w, r, http.StatusOK, "admin_form.html", page{Title: "New Blog Post", Data: blogPostForm})
	}
}

func (h blogPostHandler) createBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, result, err := forms.BindBlogPost(r, h.maxMemory)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !result.Valid() {
			h.renderer.render(w, r, http.StatusUnprocessableEntity, "admin_form.html", page{
				Title: "New Blog Post",
				Data:  blogPostForm.withValues(map[string]string{"title": form.Title, "content": form.Content}, result),
			})
			return
		}

		post := models.BlogPost{Title: form.Title, Content: form.Content}
		if err := h.blogPostRepo.Add(r.Context(), &post); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "blog post", err))
			return
		}

		h.logger.Info().Str("blogPostID", post.ID.String()).Msg("blog post created")
		h.renderer.redirect(w, r, "/blog", flash.Success("Blog post added successfully!"))
	}
}

func (h blogPostHandler) deleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPostID, ok := parseID(r, "blogPostID")
		if !ok {
			h.responder.WriteError(w, errs.NewNotFoundError("blog post"))
			return
		}

		// Verify blog post exists
		if _, err := h.blogPostRepo.FindByID(r.Context(), blogPostID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog post", err))
			return
		}

		if err := h.blogPostRepo.Delete(r.Context(), blogPostID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "blog post", err))
			return
		}

		h.renderer.redirect(w, r, "/blog", flash.Success("Blog post deleted successfully!"))
	}
}
