// internal/router/router.go
package router

import (
	"context"
	"net/http"
	"time"

	"storyhub/internal/auth"
	"storyhub/internal/authz"
	"storyhub/internal/gate"
	"storyhub/internal/handlers"
	"storyhub/internal/httputils"
	"storyhub/internal/observability"
	"storyhub/internal/observability/logging"

	"github.com/gorilla/mux"
)

// Route binds a handler to a method and path. Routes with a nil Rule are public.
type Route struct {
	// Name is a unique identifier for the route
	Name string

	// Method is the HTTP method
	Method string

	// Path is a mux path template
	Path string

	// Rule protects the route; nil means no gate
	Rule *gate.Rule

	// Handler serves the request once the gate passes
	Handler http.HandlerFunc
}

// Config holds router configuration
type Config struct {
	// RequestTimeout bounds each request, including store and verifier calls
	RequestTimeout time.Duration
}

// Router serves the API
type Router struct {
	*mux.Router
	gate   *gate.Gate
	obs    *observability.Provider
	logger *logging.Logger
}

// New creates the router with every API route
func New(config Config, h *handlers.Handlers, g *gate.Gate, obs *observability.Provider) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		gate:   g,
		obs:    obs,
		logger: obs.Logger.WithModule("router"),
	}

	r.Use(obs.Middleware)
	if config.RequestTimeout > 0 {
		r.Use(timeout(config.RequestTimeout))
	}

	r.setupRoutes(Routes(h))
	return r
}

func protect(name string, resource authz.ResourceType, policy authz.Policy) *gate.Rule {
	return &gate.Rule{Name: name, Resource: resource, Policy: policy}
}

// Routes lists the API. Chapter mutations only require authentication, the
// same as the system this API replaces; tightening them to the story's
// uploader is a product decision.
func Routes(h *handlers.Handlers) []Route {
	admin := authz.RequireRole(auth.RoleAdmin)
	uploaderOrAdmin := authz.RequireOwnerOrRole(auth.RoleAdmin)
	authenticated := authz.RequireAuthentication()

	routes := []Route{
		// Stories
		{Name: "story.list", Method: http.MethodGet, Path: "/api/stories", Handler: h.ListStories},
		{Name: "story.get", Method: http.MethodGet, Path: "/api/stories/{id}", Handler: h.GetStory},
		{Name: "story.by_category", Method: http.MethodGet, Path: "/api/stories/category/{categoryId}", Handler: h.ListStoriesByCategory},
		{Name: "story.by_uploader", Method: http.MethodGet, Path: "/api/stories/user/{uploaderId}", Handler: h.ListStoriesByUploader},
		{Name: "story.by_status", Method: http.MethodGet, Path: "/api/stories/status/{status}", Handler: h.ListStoriesByStatus},
		{Name: "story.create", Method: http.MethodPost, Path: "/api/stories", Handler: h.CreateStory,
			Rule: protect("story.create", authz.ResourceStory, authenticated)},
		{Name: "story.update", Method: http.MethodPut, Path: "/api/stories/{id}", Handler: h.UpdateStory,
			Rule: protect("story.update", authz.ResourceStory, uploaderOrAdmin)},
		{Name: "story.delete", Method: http.MethodDelete, Path: "/api/stories/{id}", Handler: h.DeleteStory,
			Rule: protect("story.delete", authz.ResourceStory, uploaderOrAdmin)},

		// Categories
		{Name: "category.list", Method: http.MethodGet, Path: "/api/categories", Handler: h.ListCategories},
		{Name: "category.get", Method: http.MethodGet, Path: "/api/categories/{id}", Handler: h.GetCategory},
		{Name: "category.create", Method: http.MethodPost, Path: "/api/categories", Handler: h.CreateCategory,
			Rule: protect("category.create", authz.ResourceCategory, admin)},
		{Name: "category.update", Method: http.MethodPut, Path: "/api/categories/{id}", Handler: h.UpdateCategory,
			Rule: protect("category.update", authz.ResourceCategory, admin)},
		{Name: "category.delete", Method: http.MethodDelete, Path: "/api/categories/{id}", Handler: h.DeleteCategory,
			Rule: protect("category.delete", authz.ResourceCategory, admin)},

		// Chapters
		{Name: "chapter.by_story", Method: http.MethodGet, Path: "/api/chapters/story/{storyId}", Handler: h.ListChaptersByStory},
		{Name: "chapter.get", Method: http.MethodGet, Path: "/api/chapters/{id}", Handler: h.GetChapter},
		{Name: "chapter.create", Method: http.MethodPost, Path: "/api/chapters", Handler: h.CreateChapter,
			Rule: protect("chapter.create", authz.ResourceChapter, authenticated)},
		{Name: "chapter.update", Method: http.MethodPut, Path: "/api/chapters/{id}", Handler: h.UpdateChapter,
			Rule: protect("chapter.update", authz.ResourceChapter, authenticated)},
		{Name: "chapter.delete", Method: http.MethodDelete, Path: "/api/chapters/{id}", Handler: h.DeleteChapter,
			Rule: protect("chapter.delete", authz.ResourceChapter, authenticated)},
	}

	if h.LoginEnabled() {
		routes = append(routes, Route{Name: "user.login", Method: http.MethodPost, Path: "/api/users/login", Handler: h.Login})
	}

	// Users
	return append(routes,
		Route{Name: "user.list", Method: http.MethodGet, Path: "/api/users", Handler: h.ListUsers,
			Rule: protect("user.list", authz.ResourceUser, admin)},
		Route{Name: "user.get", Method: http.MethodGet, Path: "/api/users/{id}", Handler: h.GetUser,
			Rule: protect("user.get", authz.ResourceUser, admin)},
		Route{Name: "user.create", Method: http.MethodPost, Path: "/api/users", Handler: h.CreateUser,
			Rule: protect("user.create", authz.ResourceUser, admin)},
		Route{Name: "user.update", Method: http.MethodPut, Path: "/api/users/{id}", Handler: h.UpdateUser,
			Rule: protect("user.update", authz.ResourceUser, admin)},
		Route{Name: "user.delete", Method: http.MethodDelete, Path: "/api/users/{id}", Handler: h.DeleteUser,
			Rule: protect("user.delete", authz.ResourceUser, admin)},
	)
}

// setupRoutes registers routes and the diagnostic handlers
func (r *Router) setupRoutes(routes []Route) {
	for _, route := range routes {
		var handler http.Handler = route.Handler
		if route.Rule != nil {
			handler = r.gate.Protect(*route.Rule, handler)
		}

		r.logger.Debug("Setting up route",
			"name", route.Name,
			"method", route.Method,
			"path", route.Path,
			"protected", route.Rule != nil,
		)
		r.Handle(route.Path, handler).Methods(route.Method).Name(route.Name)
	}

	// Add root handler for diagnostic purposes
	r.Path("/").Methods(http.MethodGet).Name("root").HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("API is running..."))
	})

	// Add default 404 handler for any unmatched routes
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.logger.Warn("Request received for undefined route", "method", req.Method, "path", req.URL.Path)
		r.obs.Metrics.RecordRequest(req.Method, "unmatched", http.StatusNotFound, 0)
		httputils.WriteMessage(w, http.StatusNotFound, "Not found")
	})
}

// timeout bounds the request context so collaborator calls cannot block forever
func timeout(d time.Duration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
