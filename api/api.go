// Package api holds the HTTP API contract.
package api

import _ "embed"

//go:embed openapi.yml
var OpenAPI []byte
