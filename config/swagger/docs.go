// Package swagger registers the OpenAPI document served at /swagger.
// Regenerate with: swag init -g main.go -o config/swagger
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
        "/ping": {"get": {"tags": ["test"], "summary": "Endpoint just pings the server", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/session/token": {"get": {"tags": ["session"], "summary": "Issues a socket.io token", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/lobby": {"post": {"tags": ["lobby"], "summary": "Creates a new lobby", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}}}},
        "/lobby/{code}/join": {"post": {"tags": ["lobby"], "summary": "Joins a lobby", "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}},
        "/lobby/{code}/status": {"get": {"tags": ["lobby"], "summary": "Lobby status", "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/lobby/{code}/qr": {"get": {"tags": ["lobby"], "summary": "Join QR code", "produces": ["image/png"], "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/lobby/{code}/start": {"post": {"tags": ["lobby"], "summary": "Starts the game", "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}, "503": {"description": "Service Unavailable"}}}},
        "/lobby/{code}/settings": {"patch": {"tags": ["lobby"], "summary": "Updates lobby settings", "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "422": {"description": "Unprocessable Entity"}}}},
        "/lobby/{code}/leave": {"post": {"tags": ["lobby"], "summary": "Leaves a lobby", "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/game/{code}/state": {"get": {"tags": ["game"], "summary": "Game state", "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/game/{code}/next-turn": {"post": {"tags": ["game"], "summary": "Advances the turn", "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}},
        "/game/{code}/restart": {"post": {"tags": ["game"], "summary": "Restarts a finished game", "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}, "503": {"description": "Service Unavailable"}}}},
        "/game/{code}/vote": {"post": {"tags": ["voting"], "summary": "Casts an elimination ballot", "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}},
        "/game/{code}/end-voting": {"post": {"tags": ["voting"], "summary": "Ends the voting phase", "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}},
        "/game/{code}/vote-now": {"post": {"tags": ["voting"], "summary": "Votes to skip the discussion", "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}},
        "/game/{code}/vote-reroll": {"post": {"tags": ["voting"], "summary": "Votes for a new word", "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}},
        "/game/{code}/messages": {
            "get": {"tags": ["chat"], "summary": "Chat history", "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "post": {"tags": ["chat"], "summary": "Sends a chat message", "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}, "422": {"description": "Unprocessable Entity"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Impostor API",
	Description:      "Gin server for the Impostor word party game",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
