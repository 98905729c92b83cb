package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Portal API",
        "description": "Marketing site backend and role-gated portal for students, teachers and admins",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Public", "description": "Marketing site endpoints, no session required"},
        {"name": "Auth", "description": "Account registration and session management"},
        {"name": "Overview", "description": "Teacher dashboard summary"},
        {"name": "Attendance", "description": "Class day attendance sheets"},
        {"name": "Exams", "description": "Exams, marks and computed results"},
        {"name": "Notices", "description": "Notice board management"},
        {"name": "Materials", "description": "Study material uploads"},
        {"name": "Syllabus", "description": "Chapter progress tracking"},
        {"name": "Students", "description": "Student self-service views"},
        {"name": "Admin", "description": "Roster and account administration"}
    ],
    "paths": {
        "/public/notices": {
            "get": {
                "tags": ["Public"],
                "summary": "Public notice board",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/public/contact": {
            "post": {
                "tags": ["Public"],
                "summary": "Submit contact form",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ContactRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted"},
                    "503": {"description": "Relay not configured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Bad credentials or role mismatch"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate refresh token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current account",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teacher/overview": {
            "get": {
                "tags": ["Overview"],
                "summary": "Dashboard overview",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teacher/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance sheet for a class day",
                "parameters": [
                    {"name": "class", "in": "query", "required": true, "type": "string"},
                    {"name": "section", "in": "query", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Submit attendance sheet",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teacher/exams": {
            "get": {
                "tags": ["Exams"],
                "summary": "List own exams",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Exams"],
                "summary": "Create exam",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teacher/exams/{id}/marks": {
            "put": {
                "tags": ["Exams"],
                "summary": "Replace marks for an exam",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Computed results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teacher/exams/{id}/results": {
            "get": {
                "tags": ["Exams"],
                "summary": "Graded and ranked results",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teacher/notices/{id}/publish": {
            "put": {
                "tags": ["Notices"],
                "summary": "Publish or unpublish notice",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Notice already expired"}
                }
            }
        },
        "/teacher/materials": {
            "post": {
                "tags": ["Materials"],
                "summary": "Upload study material",
                "consumes": ["multipart/form-data"],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teacher/syllabus/{id}/progress": {
            "patch": {
                "tags": ["Syllabus"],
                "summary": "Adjust chapter progress counters",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Clamped counters", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student/record": {
            "get": {
                "tags": ["Students"],
                "summary": "Own roster record",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student/marks": {
            "get": {
                "tags": ["Students"],
                "summary": "Own exam results",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/students": {
            "get": {
                "tags": ["Admin"],
                "summary": "List students",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Admin"],
                "summary": "Register student",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/users/{id}/active": {
            "put": {
                "tags": ["Admin"],
                "summary": "Activate or deactivate account",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"},
                "role": {"type": "string", "enum": ["student", "teacher", "admin"]}
            },
            "required": ["email", "password", "full_name", "role"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string"}
            },
            "required": ["email", "password", "role"]
        },
        "ContactRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "subject": {"type": "string"},
                "message": {"type": "string"}
            },
            "required": ["name", "email", "subject", "message"]
        },
        "SubmitAttendanceRequest": {
            "type": "object",
            "properties": {
                "class_name": {"type": "string"},
                "section": {"type": "string"},
                "date": {"type": "string"},
                "entries": {"type": "array", "items": {"type": "object"}}
            },
            "required": ["class_name", "section", "date", "entries"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
