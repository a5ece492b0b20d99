// Package docs registers the OpenAPI description served under /swagger.
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
        "/brackets/preview": {
            "post": {
                "tags": ["brackets"],
                "summary": "Bracket size, byes and play-in matches",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/seeding/preview": {
            "post": {
                "tags": ["brackets"],
                "summary": "Seed qualifiers from group standings",
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/pairings/preview": {
            "post": {
                "tags": ["brackets"],
                "summary": "Plan, seeding and first round pairings in one call",
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/tournaments/{tournamentID}/matches": {
            "get": {
                "tags": ["tournaments"],
                "summary": "List the knockout matches of a tournament",
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tournaments/{tournamentID}/ledger": {
            "get": {
                "tags": ["tournaments"],
                "summary": "Ledger entries and per-participant totals",
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tournaments/{tournamentID}/scoring": {
            "get": {
                "tags": ["tournaments"],
                "summary": "Get the scoring configuration of a tournament",
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["tournaments"],
                "summary": "Replace the scoring configuration of a tournament",
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/tournaments/{tournamentID}/standings": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["tournaments"],
                "summary": "Upload final group tables",
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/tournaments/{tournamentID}/knockout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tournaments"],
                "summary": "Build and store the knockout bracket",
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/matches/{matchID}": {
            "get": {
                "tags": ["matches"],
                "summary": "Get a knockout match",
                "parameters": [{"type": "string", "name": "matchID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/matches/{matchID}/roster": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["matches"],
                "summary": "Confirm the participants of a match",
                "parameters": [{"type": "string", "name": "matchID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/matches/{matchID}/result": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["matches"],
                "summary": "Record a match result",
                "parameters": [{"type": "string", "name": "matchID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "202": {"description": "Recorded, next round must be retried via advance"},
                    "404": {"description": "Not Found"},
                    "409": {"description": "Already recorded or manual resolution required"},
                    "422": {"description": "Unprocessable Entity"},
                    "424": {"description": "Scoring configuration problem"},
                    "501": {"description": "Not Implemented"}
                }
            }
        },
        "/matches/{matchID}/advance": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["matches"],
                "summary": "Retry next round materialization",
                "parameters": [{"type": "string", "name": "matchID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}
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
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Tournament Progression API",
	Description:      "Knockout bracket generation, result recording and points ledger.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
