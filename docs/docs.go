// Package docs registers the OpenAPI description served at /swagger/.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {
            "get": {"tags": ["health"], "summary": "Health check", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Database unavailable"}}}
        },
        "/auth/register": {
            "post": {"tags": ["auth"], "summary": "Register a user", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/RegisterInput"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Email taken"}, "422": {"description": "Validation failed"}}}
        },
        "/auth/login": {
            "post": {"tags": ["auth"], "summary": "Log in", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/LoginInput"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid email or password"}, "429": {"description": "Too many requests"}}}
        },
        "/auth/refresh": {
            "post": {"tags": ["auth"], "summary": "Refresh tokens", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/RefreshInput"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid or expired token"}}}
        },
        "/auth/logout": {
            "post": {"tags": ["auth"], "summary": "Log out", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/RefreshInput"}}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/auth/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Current user", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Authentication required"}}}
        },
        "/tasks": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "List tasks", "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "sortBy", "in": "query"},
                    {"type": "string", "name": "sortOrder", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Validation failed"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Create a task", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/CreateTaskInput"}}],
                "responses": {"201": {"description": "Created"}, "422": {"description": "Validation failed"}}}
        },
        "/tasks/stats": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["stats"], "summary": "Task statistics", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/tasks/recent": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Recent tasks", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/tasks/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Get a task", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Access denied to this task"}, "404": {"description": "Task not found"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Update a task", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/CreateTaskInput"}}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Access denied to this task"}, "404": {"description": "Task not found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Delete a task", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Access denied to this task"}, "404": {"description": "Task not found"}}}
        },
        "/tasks/{id}/toggle": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["tasks"], "summary": "Toggle task status", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Access denied to this task"}, "404": {"description": "Task not found"}}}
        },
        "/candidates": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["candidates"], "summary": "List candidates", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "stage", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["candidates"], "summary": "Create a candidate", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/CreateCandidateInput"}}],
                "responses": {"201": {"description": "Created"}, "403": {"description": "HR role required"}, "409": {"description": "Email taken"}}}
        },
        "/candidates/dashboard": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["stats"], "summary": "Pipeline dashboard", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/candidates/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["candidates"], "summary": "Get a candidate", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Candidate not found"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["candidates"], "summary": "Update a candidate", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/CreateCandidateInput"}}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "HR role required"}, "404": {"description": "Candidate not found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["candidates"], "summary": "Delete a candidate", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "HR role required"}, "404": {"description": "Candidate not found"}}}
        },
        "/candidates/{id}/resume": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["candidates"], "summary": "Upload a resume", "consumes": ["multipart/form-data"], "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "file", "name": "resume", "in": "formData", "required": true}],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unsupported or oversized file"}}}
        },
        "/candidates/{id}/move-stage": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["pipeline"], "summary": "Move a candidate to a stage", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/MoveStageInput"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Cannot move to a previous stage"}, "403": {"description": "HR role required"}, "404": {"description": "Candidate not found"}, "422": {"description": "Invalid stage"}}}
        },
        "/candidates/{id}/next-stage": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["pipeline"], "summary": "Advance a candidate one stage", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "HR role required"}, "404": {"description": "Candidate not found"}}}
        },
        "/candidates/{id}/history": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["pipeline"], "summary": "Stage history", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Candidate not found"}}}
        },
        "/candidates/{id}/feedbacks": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["feedback"], "summary": "List feedback", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Candidate not found"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["feedback"], "summary": "Add feedback", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/FeedbackInput"}}],
                "responses": {"201": {"description": "Created"}, "404": {"description": "Candidate not found"}, "422": {"description": "Validation failed"}}}
        },
        "/feedbacks/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["feedback"], "summary": "Get feedback", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Feedback not found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["feedback"], "summary": "Delete feedback", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Only the author or HR"}, "404": {"description": "Feedback not found"}}}
        },
        "/candidates/{id}/notes": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["notes"], "summary": "List notes", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Candidate not found"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["notes"], "summary": "Add a note", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/NoteInput"}}],
                "responses": {"201": {"description": "Created"}, "404": {"description": "Candidate not found"}}}
        },
        "/notes/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["notes"], "summary": "Get a note", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Note not found"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["notes"], "summary": "Update a note", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/NoteInput"}}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Only the author or HR"}, "404": {"description": "Note not found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["notes"], "summary": "Delete a note", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Only the author or HR"}, "404": {"description": "Note not found"}}}
        },
        "/ai-search": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["search"], "summary": "Natural-language candidate search", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/SearchInput"}}],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Search query is required"}}}
        }
    },
    "definitions": {
        "RegisterInput": {"type": "object", "required": ["email", "password", "name"], "properties": {
            "email": {"type": "string"}, "password": {"type": "string", "minLength": 8}, "name": {"type": "string", "minLength": 2},
            "role": {"type": "string", "enum": ["HR", "INTERVIEWER"]}}},
        "LoginInput": {"type": "object", "required": ["email", "password"], "properties": {
            "email": {"type": "string"}, "password": {"type": "string"}}},
        "RefreshInput": {"type": "object", "required": ["refreshToken"], "properties": {
            "refreshToken": {"type": "string"}}},
        "CreateTaskInput": {"type": "object", "required": ["title"], "properties": {
            "title": {"type": "string", "maxLength": 255}, "description": {"type": "string", "maxLength": 1000},
            "status": {"type": "string", "enum": ["PENDING", "IN_PROGRESS", "COMPLETED"]}}},
        "CreateCandidateInput": {"type": "object", "required": ["name", "email", "position"], "properties": {
            "name": {"type": "string"}, "email": {"type": "string"}, "phone": {"type": "string"}, "position": {"type": "string"},
            "experience": {"type": "integer", "minimum": 0}, "skills": {"type": "array", "items": {"type": "string"}}}},
        "MoveStageInput": {"type": "object", "required": ["toStage"], "properties": {
            "toStage": {"type": "string", "enum": ["SCREENING", "L1", "L2", "DIRECTOR", "HR", "COMPENSATION", "BG_CHECK", "OFFER"]},
            "reason": {"type": "string"}}},
        "FeedbackInput": {"type": "object", "required": ["comment"], "properties": {
            "comment": {"type": "string"}, "rating": {"type": "integer", "minimum": 1, "maximum": 5}}},
        "NoteInput": {"type": "object", "required": ["content"], "properties": {
            "content": {"type": "string"}}},
        "SearchInput": {"type": "object", "required": ["query"], "properties": {
            "query": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Hiring & Task Tracker API",
	Description:      "Candidate pipeline with forward-only stage moves, collaboration and personal tasks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
