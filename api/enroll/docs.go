// Package enroll registers the Swagger document of the enrollment API.
// Regenerate it from the handler annotations with:
//
//	swag init -g internal/enroll/http/router.go -o api/enroll --outputTypes go
package enroll

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/totpenroll"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/livez": {
            "get": {
                "description": "Liveness probe returning status, uptime and version\nThis endpoint always returns 200 OK while the process is running",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Health"
                ],
                "summary": "Health Check Endpoint",
                "responses": {
                    "200": {
                        "description": "status, uptime, version",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.HealthResponse"
                        }
                    }
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Readiness probe reporting 503 when the database is unreachable or the TOTP\nprimitive no longer reproduces the RFC 6238 reference codes",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Health"
                ],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {
                        "description": "status, uptime, version, checks",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.HealthResponse"
                        }
                    },
                    "503": {
                        "description": "status, uptime, version, checks - service not ready",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.HealthResponse"
                        }
                    }
                }
            }
        },
        "/report/barcode": {
            "get": {
                "description": "Renders value as a square PNG QR code. Used as the image source for provisioning URIs.",
                "produces": [
                    "image/png"
                ],
                "tags": [
                    "Barcode"
                ],
                "summary": "Render a QR code",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Barcode type, only QR is supported",
                        "name": "type",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Content to encode, at most 2048 bytes",
                        "name": "value",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "default": 300,
                        "description": "Image width, 64 to 1024",
                        "name": "width",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "default": 300,
                        "description": "Image height, must equal width",
                        "name": "height",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "PNG image",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Invalid parameters",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/accounts/{account}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Accounts"
                ],
                "summary": "Get an account",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID",
                        "name": "account",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Account",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.AccountResponse"
                        }
                    },
                    "404": {
                        "description": "Account not found",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    }
                }
            },
            "put": {
                "description": "Records the display name and, optionally, the issuer shown in authenticator apps.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Accounts"
                ],
                "summary": "Create or update an account",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID",
                        "name": "account",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Account details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/mfasdk.AccountUpsertRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Account",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.AccountResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid request",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Accounts"
                ],
                "summary": "Delete an account",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID",
                        "name": "account",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Account deleted"
                    },
                    "404": {
                        "description": "Account not found",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/accounts/{account}/authenticators": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Authenticators"
                ],
                "summary": "List confirmed authenticators",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID",
                        "name": "account",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Authenticators, without secrets",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.AuthenticatorListResponse"
                        }
                    },
                    "404": {
                        "description": "Account not found",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/accounts/{account}/authenticators/{id}": {
            "delete": {
                "tags": [
                    "Authenticators"
                ],
                "summary": "Remove an authenticator",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID",
                        "name": "account",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Authenticator ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Authenticator removed"
                    },
                    "404": {
                        "description": "Authenticator not found",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/accounts/{account}/mfa/totp/enrollments": {
            "post": {
                "description": "Generates a fresh secret for the account and returns it with the provisioning URI and a QR image URL.\nNothing is stored until the enrollment is confirmed; pending enrollments expire after the draft TTL.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Enrollments"
                ],
                "summary": "Start a TOTP enrollment",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID",
                        "name": "account",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Device label",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/mfasdk.EnrollmentStartRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Pending enrollment",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.EnrollmentResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid request",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    },
                    "404": {
                        "description": "Account not found",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    },
                    "429": {
                        "description": "Rate limit exceeded",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/accounts/{account}/mfa/totp/enrollments/{id}": {
            "get": {
                "description": "Returns the secret and provisioning URI again while the enrollment is pending.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Enrollments"
                ],
                "summary": "Get a pending enrollment",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID",
                        "name": "account",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Enrollment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Pending enrollment",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.EnrollmentResponse"
                        }
                    },
                    "404": {
                        "description": "Enrollment not found",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    },
                    "409": {
                        "description": "Enrollment confirmed, abandoned or expired",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Enrollments"
                ],
                "summary": "Abandon a pending enrollment",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID",
                        "name": "account",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Enrollment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Enrollment abandoned"
                    },
                    "404": {
                        "description": "Enrollment not found",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    },
                    "409": {
                        "description": "Enrollment no longer pending",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/accounts/{account}/mfa/totp/enrollments/{id}/confirm": {
            "post": {
                "description": "Checks a code from the authenticator app and, on a match, stores the authenticator.\nA wrong code leaves the enrollment pending so the user can retry.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Enrollments"
                ],
                "summary": "Confirm a TOTP enrollment",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID",
                        "name": "account",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Enrollment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "TOTP code",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/mfasdk.CodeRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Confirmed authenticator",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.AuthenticatorResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid request or code",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    },
                    "404": {
                        "description": "Enrollment not found",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    },
                    "409": {
                        "description": "Enrollment confirmed, abandoned or expired",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    },
                    "429": {
                        "description": "Rate limit exceeded",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    }
                }
            }
        },
        "/v1/accounts/{account}/mfa/totp/verify": {
            "post": {
                "description": "Checks a code against every confirmed authenticator of the account. A wrong code is not an error: the response reports valid=false.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Authenticators"
                ],
                "summary": "Verify a TOTP code",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID",
                        "name": "account",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "TOTP code",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/mfasdk.CodeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Verification result",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.VerifyResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid request",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    },
                    "404": {
                        "description": "Account not found",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    },
                    "429": {
                        "description": "Rate limit exceeded",
                        "schema": {
                            "$ref": "#/definitions/mfasdk.APIError"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "mfasdk.APIError": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "error_description": {
                    "type": "string"
                }
            }
        },
        "mfasdk.AccountResponse": {
            "type": "object",
            "properties": {
                "created_at": {
                    "type": "string"
                },
                "display_name": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "issuer_name": {
                    "type": "string"
                }
            }
        },
        "mfasdk.AccountUpsertRequest": {
            "type": "object",
            "required": [
                "display_name"
            ],
            "properties": {
                "display_name": {
                    "type": "string",
                    "maxLength": 256
                },
                "issuer_name": {
                    "type": "string",
                    "maxLength": 256
                }
            }
        },
        "mfasdk.AuthenticatorListResponse": {
            "type": "object",
            "properties": {
                "authenticators": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/mfasdk.AuthenticatorResponse"
                    }
                }
            }
        },
        "mfasdk.AuthenticatorResponse": {
            "type": "object",
            "properties": {
                "account_id": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "last_used_at": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                }
            }
        },
        "mfasdk.CodeRequest": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                }
            }
        },
        "mfasdk.EnrollmentResponse": {
            "type": "object",
            "properties": {
                "account": {
                    "type": "string"
                },
                "enrollment_id": {
                    "type": "string"
                },
                "expires_at": {
                    "type": "string"
                },
                "issuer": {
                    "type": "string"
                },
                "label": {
                    "type": "string"
                },
                "provisioning_uri": {
                    "type": "string"
                },
                "qr_image_url": {
                    "type": "string"
                },
                "secret": {
                    "type": "string"
                }
            }
        },
        "mfasdk.EnrollmentStartRequest": {
            "type": "object",
            "properties": {
                "label": {
                    "description": "user-chosen device/app name, e.g. \"My Phone\"",
                    "type": "string"
                }
            }
        },
        "mfasdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {
                    "type": "string"
                },
                "totp": {
                    "type": "string"
                }
            }
        },
        "mfasdk.HealthResponse": {
            "type": "object",
            "properties": {
                "checks": {
                    "$ref": "#/definitions/mfasdk.HealthChecks"
                },
                "status": {
                    "type": "string"
                },
                "uptime": {
                    "type": "string"
                },
                "version": {
                    "type": "string"
                }
            }
        },
        "mfasdk.VerifyResponse": {
            "type": "object",
            "properties": {
                "authenticator_id": {
                    "type": "string"
                },
                "valid": {
                    "type": "boolean"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "TOTP Enrollment Service API",
	Description:      "Enrolls TOTP authenticators for accounts and verifies their codes.\n\nAn enrollment starts pending with a fresh secret, is confirmed with a code from the authenticator app,\nand only then is the secret stored, sealed at rest. Code submission is rate limited per client and per account.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
