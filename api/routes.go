package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/portfolio-backend/services"
)

// setupSiteRoutes registers the public pages and the admin actions. Admin
// routes are open; the site is meant to sit behind whatever the host provides.
func setupSiteRoutes(r chi.Router, handlers *routeHandlers, contactLimit func(http.Handler) http.Handler) {
	// Public pages
	r.Get("/", handlers.projectHandler.index())
	r.With(contactLimit).Post("/", handlers.contactHandler.sendMessage())
	r.Get("/tools", handlers.toolHandler.getAllTools())
	r.Get("/blog", handlers.blogPostHandler.getAllBlogPosts())
	r.Get("/cv", handlers.cvHandler.getCV())

	r.Route("/admin", func(r chi.Router) {
		// Project Handler endpoints
		r.Get("/project/new", handlers.projectHandler.newProjectForm())
		r.Post("/project/new", handlers.projectHandler.createProject())
		r.Post("/project/{projectID}/delete", handlers.projectHandler.deleteProject())

		// Blog Post Handler endpoints
		r.Get("/blog/new", handlers.blogPostHandler.newBlogPostForm())
		r.Post("/blog/new", handlers.blogPostHandler.createBlogPost())
		r.Post("/blog/{blogPostID}/delete", handlers.blogPostHandler.deleteBlogPost())

		// Tool Handler endpoints
		r.Get("/tool/new", handlers.toolHandler.newToolForm())
		r.Post("/tool/new", handlers.toolHandler.createTool())
		r.Post("/tool/{toolID}/delete", handlers.toolHandler.deleteTool())

		// CV Handler endpoints
		r.Get("/cv/upload", handlers.cvHandler.uploadForm())
		r.Post("/cv/upload", handlers.cvHandler.uploadCV())
		r.Post("/cv/delete", handlers.cvHandler.deleteCV())
	})
}

// setupStaticRoutes serves each upload bucket read-only under /static/{bucket}/.
func setupStaticRoutes(r chi.Router, files *services.FileStore) {
	for _, bucket := range files.Buckets() {
		dir, _ := files.Dir(bucket)
		prefix := "/static/" + string(bucket) + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, noDirectoryListing(http.FileServer(http.Dir(dir)))))
	}
}

func noDirectoryListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func setupOperationalRoutes(r chi.Router, handlers *routeHandlers, metricsHandler http.Handler) {
	r.Get("/healthz", handlers.healthHandler.health())
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}
}
