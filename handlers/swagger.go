package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers the Swagger UI and the OpenAPI document.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>cadmus-api — Swagger</title>
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

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "cadmus-api", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "parameters": {
      "database": { "name": "database", "in": "path", "required": true, "schema": { "type": "string" } },
      "id": { "name": "id", "in": "path", "required": true, "schema": { "type": "string" } }
    }
  },
  "security": [ { "bearer": [] } ],
  "paths": {
    "/api/{database}/items": {
      "parameters": [ { "$ref": "#/components/parameters/database" } ],
      "get": {
        "summary": "Get a page of items",
        "parameters": [
          { "name": "pageNumber", "in": "query", "schema": { "type": "integer" } },
          { "name": "pageSize", "in": "query", "schema": { "type": "integer" } },
          { "name": "title", "in": "query", "schema": { "type": "string" } },
          { "name": "description", "in": "query", "schema": { "type": "string" } },
          { "name": "facetId", "in": "query", "schema": { "type": "string" } },
          { "name": "flags", "in": "query", "schema": { "type": "integer" } },
          { "name": "userId", "in": "query", "schema": { "type": "string" } }
        ],
        "responses": { "200": { "description": "items page" } }
      },
      "post": {
        "summary": "Add or update an item",
        "requestBody": { "content": { "application/json": { "schema": { "type": "object", "properties": { "id": {"type":"string"}, "title": {"type":"string"}, "description": {"type":"string"}, "facetId": {"type":"string"}, "sortKey": {"type":"string"}, "flags": {"type":"integer"} } } } } },
        "responses": { "201": { "description": "item created" }, "200": { "description": "item updated" }, "400": { "description": "invalid item" } }
      }
    },
    "/api/{database}/item/{id}": {
      "parameters": [ { "$ref": "#/components/parameters/database" }, { "$ref": "#/components/parameters/id" } ],
      "get": {
        "summary": "Get an item, optionally with its parts",
        "parameters": [ { "name": "parts", "in": "query", "schema": { "type": "boolean" } } ],
        "responses": { "200": { "description": "item" }, "404": { "description": "not found" } }
      },
      "delete": { "summary": "Delete an item and its parts", "responses": { "204": { "description": "deleted" } } }
    },
    "/api/{database}/item/{id}/layers": {
      "parameters": [ { "$ref": "#/components/parameters/database" }, { "$ref": "#/components/parameters/id" } ],
      "get": { "summary": "Get the layer parts of an item", "responses": { "200": { "description": "role and part ID of each layer" } } }
    },
    "/api/{database}/item/{id}/part/{type}/{role}": {
      "parameters": [
        { "$ref": "#/components/parameters/database" }, { "$ref": "#/components/parameters/id" },
        { "name": "type", "in": "path", "required": true, "schema": { "type": "string" } },
        { "name": "role", "in": "path", "required": true, "schema": { "type": "string" }, "description": "default for no role" }
      ],
      "get": { "summary": "Get an item's part by type and role", "responses": { "200": { "description": "part" }, "404": { "description": "not found" } } }
    },
    "/api/{database}/parts": {
      "parameters": [ { "$ref": "#/components/parameters/database" } ],
      "post": {
        "summary": "Add or update a part",
        "requestBody": { "content": { "application/json": { "schema": { "type": "object", "properties": { "raw": { "type": "string", "description": "part JSON" } } } } } },
        "responses": { "201": { "description": "part created" }, "200": { "description": "part updated" }, "400": { "description": "malformed part" }, "409": { "description": "item already has a part of this type and role" } }
      }
    },
    "/api/{database}/part/{id}": {
      "parameters": [ { "$ref": "#/components/parameters/database" }, { "$ref": "#/components/parameters/id" } ],
      "get": { "summary": "Get a part", "responses": { "200": { "description": "part" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a part", "responses": { "204": { "description": "deleted" } } }
    },
    "/api/{database}/part/{id}/pins": {
      "parameters": [ { "$ref": "#/components/parameters/database" }, { "$ref": "#/components/parameters/id" } ],
      "get": { "summary": "Get the pins of a part", "responses": { "200": { "description": "name/value pins" }, "404": { "description": "unknown part or part type" }, "422": { "description": "malformed part" } } }
    },
    "/api/user-info": {
      "get": { "summary": "Get the current user", "responses": { "200": { "description": "user or claims" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "security": [], "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "security": [], "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "security": [], "responses": { "200": { "description": "metrics" } } } }
  }
}`
