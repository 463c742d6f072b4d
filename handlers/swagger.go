package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the user service.
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
    <title>finstream-users — Swagger</title>
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

// Minimal OpenAPI document describing the user/subscription endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "finstream-users", "version": "v0.1.0" },
  "paths": {
    "/api/users/subscription": {
      "post": {
        "summary": "Set the caller's subscription flag (find-or-create)",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["subscribed"],"properties":{"subscribed":{"type":"boolean"}}}}}},
        "responses": { "200": { "description": "persisted user" }, "400": { "description": "invalid input" }, "401": { "description": "missing/invalid token" }, "503": { "description": "store unavailable" } }
      }
    },
    "/api/users/all": {
      "get": { "summary": "List every user (internal audience)", "responses": { "200": { "description": "array of users" }, "401": { "description": "missing/invalid token" } } }
    },
    "/api/users/me": {
      "get": { "summary": "Get the caller's user record", "responses": { "200": { "description": "user" }, "404": { "description": "no record for caller" }, "401": { "description": "missing/invalid token" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
