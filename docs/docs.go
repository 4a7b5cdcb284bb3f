// Package docs registers the catalog API's Swagger document with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in and obtain a bearer token",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.LoginResult"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            }
        },
        "/{kind}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List all catalog entries of a kind, ordered by title",
                "parameters": [
                    {"type": "string", "description": "books or films", "name": "kind", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Book"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["catalog"],
                "summary": "Create a catalog entry",
                "parameters": [
                    {"type": "string", "description": "books or films", "name": "kind", "in": "path", "required": true},
                    {"description": "Entity", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Book"}}
                ],
                "responses": {
                    "201": {"description": "Created", "headers": {"Location": {"type": "string", "description": "URL of the new entity"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorBody"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorBody"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            }
        },
        "/{kind}/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Get a catalog entry by id",
                "parameters": [
                    {"type": "string", "description": "books or films", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "description": "Entity id (UUID)", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Revision known to the client", "name": "If-None-Match", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Book"}},
                    "304": {"description": "Not Modified"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["catalog"],
                "summary": "Update a catalog entry guarded by its revision",
                "parameters": [
                    {"type": "string", "description": "books or films", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "description": "Entity id (UUID)", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Revision the update is based on, e.g. \"0\"", "name": "If-Match", "in": "header", "required": true},
                    {"description": "Entity", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Book"}}
                ],
                "responses": {
                    "204": {"description": "No Content", "headers": {"ETag": {"type": "string", "description": "New revision"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorBody"}},
                    "412": {"description": "Precondition Failed", "schema": {"$ref": "#/definitions/handler.errorBody"}},
                    "428": {"description": "Precondition Required", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["catalog"],
                "summary": "Delete a catalog entry",
                "parameters": [
                    {"type": "string", "description": "books or films", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "description": "Entity id (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            }
        },
        "/{kind}/{id}/file": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["files"],
                "summary": "Download the binary attachment of a catalog entry",
                "parameters": [
                    {"type": "string", "description": "books or films", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "description": "Entity id (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorBody"}},
                    "412": {"description": "Precondition Failed", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/octet-stream"],
                "tags": ["files"],
                "summary": "Store the binary attachment of a catalog entry",
                "parameters": [
                    {"type": "string", "description": "books or films", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "description": "Entity id (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "412": {"description": "Precondition Failed", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Book": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "rating": {"type": "integer"},
                "kind": {"type": "string", "enum": ["KINDLE", "PRINT"]},
                "publisher": {"type": "string", "enum": ["FOO_PUBLISHER", "BAR_PUBLISHER"]},
                "price": {"type": "number"},
                "discount": {"type": "number"},
                "available": {"type": "boolean"},
                "date": {"type": "string"},
                "isbn": {"type": "string"},
                "homepage": {"type": "string"},
                "keywords": {"type": "array", "items": {"type": "string"}},
                "authors": {"type": "array", "items": {"type": "string"}},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "handler.errorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ports.LoginResult": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expiresIn": {"type": "integer"},
                "roles": {"type": "array", "items": {"type": "string"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Catalog API",
	Description:      "Books and films with revision-guarded updates and bearer token authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
