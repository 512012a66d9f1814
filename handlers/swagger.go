package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the
// verification service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>verification-service — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the issuance endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "verification-service", "version": "v0.1.0" },
  "paths": {
    "/version/v1/registrationToken": {
      "post": {
        "summary": "Issue a registration token for a GUID digest or TeleTAN",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["key","keyType"],"properties":{"key":{"type":"string"},"keyType":{"type":"string","enum":["GUID","TELETAN"]}}}}}},
        "responses": { "201": { "description": "token issued" }, "400": { "description": "malformed or unknown proof" }, "409": { "description": "proof already registered" } }
      }
    },
    "/version/v1/tan/teletan": {
      "post": {
        "summary": "Mint a TeleTAN (hotline operators only)",
        "security": [ { "bearerAuth": [] } ],
        "responses": { "201": { "description": "code minted" }, "401": { "description": "missing or invalid token" }, "403": { "description": "missing required role" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  },
  "components": { "securitySchemes": { "bearerAuth": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } } }
}`
