package swagger

import (
	"embed"
	"io/fs"
)

//go:generate curl -sSfL -o static/redoc.standalone.js https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js

// OpenAPI contains the embedded OpenAPI YAML specification.
//
//go:embed openapi.yaml
var OpenAPI []byte

//go:embed static
var static embed.FS

const (
	redocAsset = "static/redoc.standalone.js"
	redocCDN   = "https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js"
)

// RedocJS returns the vendored ReDoc bundle, or nil when go generate has not
// been run for this package.
func RedocJS() []byte {
	b, err := fs.ReadFile(static, redocAsset)
	if err != nil {
		return nil
	}
	return b
}
