// Package docs registers the OpenAPI description served under /swagger.
// Keep it in step with the @Router annotations in internal/handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/analytics": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Analyze an inline book",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.AnalyzeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AnalyticsReport"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/books": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Create a book",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.CreateBookRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Book"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/books/{id}/analytics": {
            "get": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Analyze a stored book",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AnalyticsReport"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/books/{id}/positions": {
            "put": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Replace book positions from CSV",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ImportResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/books/{id}/limits": {
            "put": {
                "consumes": ["application/json"],
                "tags": ["books"],
                "summary": "Replace book limits",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.LimitsRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/bonds/import": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["bonds"],
                "summary": "Import bond reference data from CSV",
                "parameters": [
                    {"type": "file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ImportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.BondRequest": {
            "type": "object",
            "required": ["isin", "ticker", "maturity_bucket"],
            "properties": {
                "isin": {"type": "string"},
                "ticker": {"type": "string"},
                "maturity_bucket": {"type": "string", "example": "5Y"},
                "rating_score": {"type": "number"},
                "yield_level": {"type": "number"},
                "price_level": {"type": "number"}
            }
        },
        "models.PositionRequest": {
            "type": "object",
            "required": ["isin"],
            "properties": {
                "isin": {"type": "string"},
                "size": {"type": "number"}
            }
        },
        "models.LimitsRequest": {
            "type": "object",
            "required": ["minimum_rating"],
            "properties": {
                "ticker_cap": {"type": "object", "additionalProperties": {"type": "number"}},
                "bond_cap": {"type": "object", "additionalProperties": {"type": "number"}},
                "tenor_limits": {"type": "object", "additionalProperties": {"type": "number"}},
                "minimum_rating": {"type": "number"}
            }
        },
        "models.AnalyzeRequest": {
            "type": "object",
            "properties": {
                "bonds": {"type": "array", "items": {"$ref": "#/definitions/models.BondRequest"}},
                "positions": {"type": "array", "items": {"$ref": "#/definitions/models.PositionRequest"}},
                "limits": {"$ref": "#/definitions/models.LimitsRequest"}
            }
        },
        "models.Warning": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.AnalyticsReport": {
            "type": "object",
            "properties": {
                "book_id": {"type": "integer"},
                "positions": {"type": "integer"},
                "average_yield": {"type": "number"},
                "average_rating": {"type": "number"},
                "market_value": {"type": "number"},
                "average_rating_by_tenor": {"type": "object", "additionalProperties": {"type": "number"}},
                "tenor_buckets": {"type": "object", "additionalProperties": {"type": "number"}},
                "ticker_buckets": {"type": "object", "additionalProperties": {"type": "number"}},
                "violations": {"type": "array", "items": {"type": "string"}},
                "warnings": {"type": "array", "items": {"$ref": "#/definitions/models.Warning"}}
            }
        },
        "models.CreateBookRequest": {
            "type": "object",
            "required": ["name", "minimum_rating"],
            "properties": {
                "name": {"type": "string"},
                "minimum_rating": {"type": "number"}
            }
        },
        "models.Book": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "minimum_rating": {"type": "number"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "models.ImportResponse": {
            "type": "object",
            "properties": {
                "imported": {"type": "integer"}
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Bond Risk API",
	Description:      "Fixed-income book aggregation and limit checks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
