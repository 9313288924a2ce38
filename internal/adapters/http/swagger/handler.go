// Package swagger serves the stub backend's OpenAPI document.
package swagger

import (
	"context"
	"net/http"
)

// Register attaches the documentation routes to mux.
//
//	GET /openapi.yaml                  -> embedded OpenAPI spec
//	GET /api-docs                      -> ReDoc page rendering it
//	GET /api-docs/redoc.standalone.js  -> embedded ReDoc JavaScript
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	redoc := RedocJS()

	mux.HandleFunc("/api-docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})

	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})

	mux.HandleFunc("/api-docs/redoc.standalone.js", func(w http.ResponseWriter, r *http.Request) {
		if redoc == nil {
			http.Redirect(w, r, redocCDN, http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write(redoc)
	})
}

const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Lojista stub API</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container" spec-url="/openapi.yaml"></redoc>
    <noscript><a href="/openapi.yaml">openapi.yaml</a></noscript>
    <script src="/api-docs/redoc.standalone.js"></script>
  </body>
</html>`
