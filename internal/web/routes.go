package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/balasai14/multi-face-reg/internal/web/handlers"
	"github.com/balasai14/multi-face-reg/internal/web/middleware"
	"github.com/balasai14/multi-face-reg/internal/web/static"
)

func (s *Server) setupRoutes() {
	// Create handlers
	authHandler := handlers.NewAuthHandler(s.service, s.issuer, s.index)
	identifyHandler := handlers.NewIdentifyHandler(s.service, s.validator, s.index, s.extractor)
	modelsHandler := handlers.NewModelsHandler(s.extractor, s.service, s.index)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", modelsHandler.Health)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth routes (open: enrollment and login are how tokens are obtained)
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/check", authHandler.Check)

		// Extractor lifecycle
		r.Post("/models/load", modelsHandler.Load)

		// All other routes require a valid session token
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.issuer))

			r.Post("/identify", identifyHandler.Identify)
			r.Post("/identify/image", identifyHandler.IdentifyImage)
			r.Get("/identities", identifyHandler.SearchIdentities)
			r.Get("/identities/{key}", identifyHandler.GetIdentity)
			r.Get("/stats", modelsHandler.Stats)
		})
	})

	// Serve static files for frontend (SPA)
	s.router.Get("/*", s.serveSPA)
}

// serveSPA serves the single-page application
func (s *Server) serveSPA(w http.ResponseWriter, r *http.Request) {
	if static.HasDist() {
		fs := static.GetFileSystem()
		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}

		f, err := fs.Open(path)
		if err == nil {
			defer f.Close()

			stat, err := f.Stat()
			if err == nil && !stat.IsDir() {
				// Set content type based on extension
				contentType := "application/octet-stream"
				switch {
				case strings.HasSuffix(path, ".html"):
					contentType = "text/html; charset=utf-8"
				case strings.HasSuffix(path, ".css"):
					contentType = "text/css; charset=utf-8"
				case strings.HasSuffix(path, ".js"):
					contentType = "application/javascript; charset=utf-8"
				case strings.HasSuffix(path, ".json"):
					contentType = "application/json"
				case strings.HasSuffix(path, ".svg"):
					contentType = "image/svg+xml"
				case strings.HasSuffix(path, ".png"):
					contentType = "image/png"
				case strings.HasSuffix(path, ".ico"):
					contentType = "image/x-icon"
				}

				w.Header().Set("Content-Type", contentType)

				// Cache immutable fingerprinted assets
				if strings.HasPrefix(path, "/assets/") {
					w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
				}

				w.WriteHeader(http.StatusOK)
				io.Copy(w, f)
				return
			}
		}

		// For SPA routing, serve index.html for non-asset paths
		if !strings.HasPrefix(path, "/assets/") {
			indexFile, err := fs.Open("/index.html")
			if err == nil {
				defer indexFile.Close()
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusOK)
				io.Copy(w, indexFile)
				return
			}
		}
	}

	// Fallback: placeholder page when no frontend is built
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Face Registration</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #1a1a2e; color: #eee; }
        .container { text-align: center; }
        h1 { color: #00d9ff; }
        p { color: #aaa; }
        a { color: #00d9ff; }
        code { background: #2a2a3e; padding: 2px 8px; border-radius: 4px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Face Registration</h1>
        <p>Frontend is not built yet. Run <code>make build-web</code> to build the frontend.</p>
        <p>API is available at <a href="/api/v1/health">/api/v1/health</a></p>
    </div>
</body>
</html>`))
}
