package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CursoAdmin API",
        "description": "Course administration backend: entity screens and course reports",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Password login and session"},
        {"name": "Screens", "description": "Entity screens with mirrored records and edit sessions"},
        {"name": "Reports", "description": "Asynchronous course progress report"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Access token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user claims",
                "responses": {
                    "200": {"description": "Claims", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing or invalid token"}
                }
            }
        },
        "/{screen}": {
            "get": {
                "tags": ["Screens"],
                "summary": "List resolved records",
                "description": "screen is one of roles, teachers, students, topics, activities, grades, tasks",
                "parameters": [
                    {"name": "screen", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Record list", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Remote collection failure"}
                }
            }
        },
        "/{screen}/refresh": {
            "post": {
                "tags": ["Screens"],
                "summary": "Reload records from the remote collections",
                "parameters": [
                    {"name": "screen", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Fresh record list", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/{screen}/submit": {
            "post": {
                "tags": ["Screens"],
                "summary": "Create a record, or update the edit target",
                "parameters": [
                    {"name": "screen", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Stored record", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failure"},
                    "502": {"description": "Remote collection failure"}
                }
            }
        },
        "/{screen}/{id}/edit": {
            "post": {
                "tags": ["Screens"],
                "summary": "Open an edit session and return the pre-populated form",
                "parameters": [
                    {"name": "screen", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Form values", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Record not found"}
                }
            }
        },
        "/{screen}/cancel": {
            "post": {
                "tags": ["Screens"],
                "summary": "Abandon the edit session",
                "parameters": [
                    {"name": "screen", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Session cleared"}
                }
            }
        },
        "/{screen}/{id}": {
            "delete": {
                "tags": ["Screens"],
                "summary": "Delete a record",
                "parameters": [
                    {"name": "screen", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "Record deleted"},
                    "404": {"description": "Record not found"}
                }
            }
        },
        "/reports/course": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a course report job",
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Job accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/course/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Job state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job"}
                }
            }
        },
        "/reports/course/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a rendered report",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ReportRequest": {
            "type": "object",
            "properties": {
                "format": {"type": "string", "enum": ["pdf", "csv"]}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
