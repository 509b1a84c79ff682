// Package docs registers the OpenAPI document served at /swagger.
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
        "/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Login admin",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.loginRequest"}}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Logout admin",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/admins": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admins"],
                "summary": "List admins",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Super-admins only. Role defaults to standard.",
                "tags": ["Admins"],
                "summary": "Create admin",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.createAdminRequest"}}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/admins/{code}/actions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "POST accepts activate, deactivate and search; GET accepts search via ?process=.",
                "tags": ["Admins"],
                "summary": "Admin actions",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Admin code", "name": "code", "in": "path", "required": true},
                    {"in": "body", "name": "request", "schema": {"$ref": "#/definitions/handlers.adminActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/admins/{code}/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admins"],
                "summary": "Admin transactions",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Admin code", "name": "code", "in": "path", "required": true},
                    {"type": "string", "description": "asc or desc", "name": "order", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/admins/{code}/user": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admins"],
                "summary": "Admin users",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Admin code", "name": "code", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/users": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Users"],
                "summary": "Register user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.registerUserRequest"}}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/transactions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "process is one of transfer, withdraw, deposit, list. data carries the matching payload.",
                "tags": ["Transactions"],
                "summary": "Execute transaction",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.transactionRequest"}}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.loginRequest": {
            "type": "object",
            "required": ["adminCode", "password"],
            "properties": {"adminCode": {"type": "string"}, "password": {"type": "string"}}
        },
        "handlers.createAdminRequest": {
            "type": "object",
            "required": ["name", "password"],
            "properties": {
                "name": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["standard", "super"]}
            }
        },
        "handlers.adminActionRequest": {
            "type": "object",
            "required": ["process"],
            "properties": {
                "process": {"type": "string", "enum": ["activate", "deactivate", "search"]},
                "data": {"type": "object", "properties": {"adminCode": {"type": "string"}}}
            }
        },
        "handlers.registerUserRequest": {
            "type": "object",
            "required": ["name", "email", "stateCode", "townshipCode"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "stateCode": {"type": "string"},
                "townshipCode": {"type": "string"}
            }
        },
        "handlers.transactionRequest": {
            "type": "object",
            "required": ["process", "data"],
            "properties": {
                "process": {"type": "string", "enum": ["transfer", "withdraw", "deposit", "list"]},
                "data": {"type": "object"}
            }
        },
        "services.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Admin Bank API",
	Description:      "Admin-operated account balances, transfers and audit trail",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
