package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "English Registration API",
        "description": "Accounts, learner profiles and the lesson catalog for the English course",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Sign-up, sign-in, token refresh and password reset"},
        {"name": "Registration", "description": "Learner profiles"},
        {"name": "Modules", "description": "Course catalog"}
    ],
    "paths": {
        "/authentication/signup": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a credential",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SignUpRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Failure"}}
                }
            }
        },
        "/authentication/signin": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "description": "Repeated failures lock the account for a while.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SignInRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Failure"}}
                }
            }
        },
        "/authentication/refresh-token": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate refresh token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Failure"}}
                }
            }
        },
        "/authentication/forgot-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Request a password reset e-mail",
                "consumes": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ForgotPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Failure"}}
                }
            }
        },
        "/authentication/new-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Set a new password with a reset code",
                "consumes": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ResetPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Failure"}}
                }
            }
        },
        "/registration": {
            "get": {
                "tags": ["Registration"],
                "summary": "Current user's profile",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ProfileResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Failure"}}
                }
            },
            "post": {
                "tags": ["Registration"],
                "summary": "Complete registration",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "formData", "name": "name", "type": "string", "required": true},
                    {"in": "formData", "name": "birthDate", "type": "string", "format": "date", "required": true},
                    {"in": "formData", "name": "aboutMe", "type": "string", "required": true},
                    {"in": "formData", "name": "city", "type": "string", "required": true},
                    {"in": "formData", "name": "image", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ProfileResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Failure"}}
                }
            },
            "put": {
                "tags": ["Registration"],
                "summary": "Update profile",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "formData", "name": "name", "type": "string", "required": true},
                    {"in": "formData", "name": "birthDate", "type": "string", "format": "date", "required": true},
                    {"in": "formData", "name": "aboutMe", "type": "string", "required": true},
                    {"in": "formData", "name": "city", "type": "string", "required": true},
                    {"in": "formData", "name": "image", "type": "file", "required": false}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ProfileResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Failure"}}
                }
            },
            "delete": {
                "tags": ["Registration"],
                "summary": "Delete profile and account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Failure"}}
                }
            }
        },
        "/registration/users/range": {
            "get": {
                "tags": ["Registration"],
                "summary": "Learners around a position",
                "description": "Stores the caller's position and lists profiles within range metres (default 50000)",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "query", "name": "latitude", "type": "number", "required": true},
                    {"in": "query", "name": "longitude", "type": "number", "required": true},
                    {"in": "query", "name": "range", "type": "integer", "required": false}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/ProfileResponse"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Failure"}}
                }
            }
        },
        "/modules": {
            "get": {
                "tags": ["Modules"],
                "summary": "List modules with their lessons",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/ModuleResponse"}}}
                }
            },
            "post": {
                "tags": ["Modules"],
                "summary": "Add a module",
                "description": "Requires the isAdmin claim",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/AddModuleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ModuleResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Failure"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/Failure"}}
                }
            }
        }
    },
    "definitions": {
        "SignUpRequest": {
            "type": "object",
            "required": ["email", "password", "confirmPassword"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "confirmPassword": {"type": "string"}
            }
        },
        "SignInRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshTokenRequest": {
            "type": "object",
            "required": ["refreshToken"],
            "properties": {
                "refreshToken": {"type": "string"}
            }
        },
        "ForgotPasswordRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"}
            }
        },
        "ResetPasswordRequest": {
            "type": "object",
            "required": ["userId", "code", "password", "confirmPassword"],
            "properties": {
                "userId": {"type": "string"},
                "code": {"type": "string"},
                "password": {"type": "string"},
                "confirmPassword": {"type": "string"}
            }
        },
        "TokenResponse": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"},
                "refreshToken": {"type": "string"},
                "user": {"$ref": "#/definitions/ProfileResponse"}
            }
        },
        "Coordinates": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number"},
                "longitude": {"type": "number"}
            }
        },
        "ProfileResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "birthDate": {"type": "string", "format": "date"},
                "idiom": {"type": "string"},
                "aboutMe": {"type": "string"},
                "imageUrl": {"type": "string"},
                "city": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"},
                "deletedAt": {"type": "string", "format": "date-time"},
                "lastAccess": {"type": "string", "format": "date-time"},
                "coordinates": {"$ref": "#/definitions/Coordinates"}
            }
        },
        "AddLessonRequest": {
            "type": "object",
            "required": ["title", "videoUrl", "thumbUrl"],
            "properties": {
                "title": {"type": "string"},
                "priority": {"type": "integer"},
                "videoUrl": {"type": "string"},
                "thumbUrl": {"type": "string"},
                "content": {"type": "string"}
            }
        },
        "AddModuleRequest": {
            "type": "object",
            "required": ["title", "lessonsViewModel"],
            "properties": {
                "title": {"type": "string"},
                "priority": {"type": "integer"},
                "lessonsViewModel": {"type": "array", "items": {"$ref": "#/definitions/AddLessonRequest"}}
            }
        },
        "LessonResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "priority": {"type": "integer"},
                "videoUrl": {"type": "string"},
                "thumbUrl": {"type": "string"},
                "content": {"type": "string"}
            }
        },
        "ModuleResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "priority": {"type": "integer"},
                "lessons": {"type": "array", "items": {"$ref": "#/definitions/LessonResponse"}}
            }
        },
        "Failure": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "errors": {"type": "array", "items": {"type": "string"}}
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
