// Package swagger registers the OpenAPI document served at /swagger/*any.
// Regenerate with: swag init -g cmd/api/main.go -o api/swagger
package swagger

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
                "summary": "Login",
                "description": "Vendors log in with mobile and password. Employees and customers log in with mobile only; no password is checked for them.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/register/vendor": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register vendor",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.RegisterVendorRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/sales": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sales"],
                "summary": "Record sale",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.RecordSaleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/sales/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["sales"],
                "summary": "Correct sale",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.CorrectSaleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Sale already invoiced", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["sales"],
                "summary": "Delete sale",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Sale already invoiced", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/customers/{id}/sales": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["sales"],
                "summary": "Customer monthly sales",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "month", "in": "query", "required": true},
                    {"type": "integer", "name": "year", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "No sales in period", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/invoices": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "List invoices",
                "parameters": [
                    {"type": "integer", "name": "customer_id", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/invoices/generate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["invoices"],
                "summary": "Generate monthly invoice",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.GenerateInvoiceRequest"}}
                ],
                "responses": {
                    "200": {"description": "Already billed", "schema": {"$ref": "#/definitions/response.Response"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Customer not found or no sales in period", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/invoices/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "View invoice",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "customer_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/invoices/{id}/payments": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["payments"],
                "summary": "List invoice payments",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["payments"],
                "summary": "Apply payment",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "Idempotency-Key", "in": "header"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.ApplyPaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Invalid amount", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Invoice already settled", "schema": {"$ref": "#/definitions/response.Response"}},
                    "422": {"description": "Overpayment or insufficient advance", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/customers/{id}/advance": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["advance"],
                "summary": "Get advance",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["advance"],
                "summary": "Deposit advance",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.AdvanceAmountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["advance"],
                "summary": "Set advance",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.AdvanceAmountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "No advance balance yet", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/customers/{id}/advance/history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["advance"],
                "summary": "Advance history",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["statistics"],
                "summary": "Get vendor dashboard",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Vendor only", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/audit-logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["audit"],
                "summary": "Get audit logs",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "response.Response": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "status_code": {"type": "integer"},
                "code": {"type": "string"},
                "data": {},
                "error": {"type": "string"}
            }
        },
        "service.LoginRequest": {
            "type": "object",
            "required": ["mobile", "user_type"],
            "properties": {
                "mobile": {"type": "string"},
                "user_type": {"type": "string", "enum": ["vendor", "employee", "customer"]},
                "password": {"type": "string"}
            }
        },
        "service.RegisterVendorRequest": {
            "type": "object",
            "required": ["name", "email", "mobile", "password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "mobile": {"type": "string"},
                "password": {"type": "string"},
                "address": {"type": "string"},
                "business_name": {"type": "string"},
                "gst_number": {"type": "string"}
            }
        },
        "service.RecordSaleRequest": {
            "type": "object",
            "required": ["customer_id", "product_id", "quantity"],
            "properties": {
                "customer_id": {"type": "integer"},
                "product_id": {"type": "integer"},
                "quantity": {"type": "integer"},
                "price_per_unit": {"type": "string"},
                "sale_date": {"type": "string", "example": "2024-02-01"}
            }
        },
        "service.CorrectSaleRequest": {
            "type": "object",
            "properties": {
                "quantity": {"type": "integer"},
                "price_per_unit": {"type": "string"},
                "sale_date": {"type": "string", "example": "2024-02-01"}
            }
        },
        "service.GenerateInvoiceRequest": {
            "type": "object",
            "required": ["customer_id", "month", "year"],
            "properties": {
                "customer_id": {"type": "integer"},
                "month": {"type": "integer", "minimum": 1, "maximum": 12},
                "year": {"type": "integer"}
            }
        },
        "service.ApplyPaymentRequest": {
            "type": "object",
            "required": ["customer_id", "amount"],
            "properties": {
                "customer_id": {"type": "integer"},
                "amount": {"type": "string", "example": "60.00"},
                "payment_mode": {"type": "string", "enum": ["cash", "upi", "card", "bank_transfer", "cheque", "advance"]},
                "notes": {"type": "string"},
                "use_advance": {"type": "boolean"}
            }
        },
        "service.AdvanceAmountRequest": {
            "type": "object",
            "required": ["amount"],
            "properties": {
                "amount": {"type": "string", "example": "500.00"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Vendor Ledger API",
	Description:      "Multi-tenant sales, invoicing and payment ledger for vendors and their customers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
