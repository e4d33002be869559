package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Facilitator Analytics API",
        "description": "Activity statistics, arrival classification, and badge eligibility for facilitator appointments",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Stats", "description": "Aggregated facilitator activity"},
        {"name": "Arrivals", "description": "Arrival windows and capacity"},
        {"name": "Facilitators", "description": "Availability terms"},
        {"name": "Badges", "description": "Badge request eligibility"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/stats/summary": {
            "get": {
                "tags": ["Stats"],
                "summary": "Facilitator activity summary",
                "parameters": [
                    {"name": "start", "in": "query", "type": "string"},
                    {"name": "end", "in": "query", "type": "string"},
                    {"name": "host_id", "in": "query", "type": "string"},
                    {"name": "purpose", "in": "query", "type": "string"},
                    {"name": "include_cancelled", "in": "query", "type": "boolean"},
                    {"name": "use_facilitator_terms", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stats/summary/export": {
            "get": {
                "tags": ["Stats"],
                "summary": "Download summary as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "start", "in": "query", "type": "string"},
                    {"name": "end", "in": "query", "type": "string"},
                    {"name": "host_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/stats/system": {
            "get": {
                "tags": ["Stats"],
                "summary": "Instrumentation snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/arrivals/classify": {
            "post": {
                "tags": ["Arrivals"],
                "summary": "Classify a scan against an appointment schedule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassifyArrivalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/capacity/resolve": {
            "post": {
                "tags": ["Arrivals"],
                "summary": "Resolve the effective appointment capacity",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CapacityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/facilitators/{facilitatorId}/term": {
            "get": {
                "tags": ["Facilitators"],
                "summary": "Current availability interval",
                "parameters": [
                    {"name": "facilitatorId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/members/{memberId}/badges/{badgeId}/eligibility": {
            "get": {
                "tags": ["Badges"],
                "summary": "Badge request eligibility",
                "parameters": [
                    {"name": "memberId", "in": "path", "required": true, "type": "string"},
                    {"name": "badgeId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ClassifyArrivalRequest": {
            "type": "object",
            "properties": {
                "scheduled_start": {"type": "string"},
                "scheduled_end": {"type": "string"},
                "scan_at": {"type": "string"},
                "timezone": {"type": "string"}
            },
            "required": ["scheduled_start", "scheduled_end"]
        },
        "CapacityRequest": {
            "type": "object",
            "properties": {
                "badge_limits": {
                    "type": "array",
                    "items": {"type": "integer"}
                },
                "facilitator_limit": {"type": "integer"}
            }
        },
        "EligibilityResult": {
            "type": "object",
            "properties": {
                "allowed": {"type": "boolean"},
                "requires_documentation": {"type": "boolean"},
                "documentation_approved": {"type": "boolean"},
                "missing_prerequisites": {
                    "type": "array",
                    "items": {"type": "string"}
                },
                "reasons": {
                    "type": "array",
                    "items": {"type": "string"}
                }
            }
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
