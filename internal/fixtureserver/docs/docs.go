// Package docs holds the swagger spec for the fixture API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "addrmeta maintainers",
            "url": "https://github.com/raysh454/addrmeta"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/aggregate/{key}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Fetch a record or aggregate by key",
                "parameters": [
                    {"type": "string", "description": "lookup key, e.g. data/CH", "name": "key", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/fetch": {
            "get": {
                "produces": ["application/json"],
                "summary": "Resolve an arbitrary URL against the fixtures",
                "parameters": [
                    {"type": "string", "description": "URL to fetch, e.g. test:///aggregate/data/US", "name": "url", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/fixtureserver.OutcomeFrame"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/fixtureserver.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/fixtureserver.OutcomeFrame"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/fixtureserver.HealthResponse"}}}
            }
        },
        "/keys": {
            "get": {
                "produces": ["application/json"],
                "summary": "List record keys",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/fixtureserver.KeysResponse"}}}
            }
        },
        "/plain/{key}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Fetch a record or aggregate by key",
                "parameters": [
                    {"type": "string", "description": "lookup key, e.g. data/CH", "name": "key", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/regions": {
            "get": {
                "produces": ["application/json"],
                "summary": "List region codes",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/fixtureserver.RegionsResponse"}}}
            }
        }
    },
    "definitions": {
        "fixtureserver.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "missing url query parameter"}}
        },
        "fixtureserver.HealthResponse": {
            "type": "object",
            "properties": {
                "records": {"type": "integer", "example": 51},
                "status": {"type": "string", "example": "ok"}
            }
        },
        "fixtureserver.KeysResponse": {
            "type": "object",
            "properties": {"keys": {"type": "array", "items": {"type": "string"}, "example": ["data", "data/CH"]}}
        },
        "fixtureserver.OutcomeFrame": {
            "type": "object",
            "properties": {
                "data": {"type": "string", "example": "{\"id\":\"data/CH\"}"},
                "error": {"type": "string", "example": ""},
                "success": {"type": "boolean", "example": true},
                "url": {"type": "string", "example": "test:///plain/data/CH"}
            }
        },
        "fixtureserver.RegionsResponse": {
            "type": "object",
            "properties": {"regions": {"type": "array", "items": {"type": "string"}, "example": ["CH", "US"]}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "addrmeta fixture API",
	Description:      "Serves address metadata fixtures over HTTP and WebSocket.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
