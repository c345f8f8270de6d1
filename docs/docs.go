// Package docs registers the Swagger document of the JSON API with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{.Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/status": {
            "get": {
                "tags": ["System"],
                "summary": "Server status",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Signed-in user",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/session.User"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResp"}}
                }
            }
        },
        "/export": {
            "get": {
                "tags": ["Tasklists"],
                "summary": "Export every list with all of its tasks",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "1 or true to download as a file", "name": "download", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/aggregate.Export"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorResp"}}
                }
            }
        },
        "/tasklists": {
            "get": {
                "tags": ["Tasklists"],
                "summary": "List task lists",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/service.TaskList"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResp"}}
                }
            },
            "post": {
                "tags": ["Tasklists"],
                "summary": "Create a task list",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "List title", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.titleReq"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/service.TaskList"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResp"}}
                }
            }
        },
        "/tasklists/counts": {
            "get": {
                "description": "Lists that cannot be read count as 0.",
                "tags": ["Tasklists"],
                "summary": "Count incomplete tasks per list",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}}
                }
            }
        },
        "/tasklists/{listId}": {
            "patch": {
                "tags": ["Tasklists"],
                "summary": "Rename a task list",
                "parameters": [
                    {"type": "string", "name": "listId", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.titleReq"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/service.TaskList"}}}
            },
            "delete": {
                "tags": ["Tasklists"],
                "summary": "Delete a task list",
                "parameters": [{"type": "string", "name": "listId", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/tasklists/{listId}/clear": {
            "post": {
                "tags": ["Tasklists"],
                "summary": "Hide completed tasks of a list",
                "parameters": [{"type": "string", "name": "listId", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/tasklists/{listId}/tasks": {
            "get": {
                "tags": ["Tasks"],
                "summary": "List all tasks of a list",
                "parameters": [{"type": "string", "name": "listId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/service.Task"}}}}
            },
            "post": {
                "tags": ["Tasks"],
                "summary": "Create a task",
                "parameters": [
                    {"type": "string", "name": "listId", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.createTaskReq"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/service.Task"}}}
            }
        },
        "/tasklists/{listId}/tasks/{taskId}": {
            "patch": {
                "tags": ["Tasks"],
                "summary": "Update a task; a null or empty due clears it",
                "parameters": [
                    {"type": "string", "name": "listId", "in": "path", "required": true},
                    {"type": "string", "name": "taskId", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.updateTaskReq"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Task"}}}
            },
            "delete": {
                "tags": ["Tasks"],
                "summary": "Delete a task",
                "parameters": [
                    {"type": "string", "name": "listId", "in": "path", "required": true},
                    {"type": "string", "name": "taskId", "in": "path", "required": true}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/tasklists/{listId}/tasks/{taskId}/move": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Move a task after previous, under parent",
                "parameters": [
                    {"type": "string", "name": "listId", "in": "path", "required": true},
                    {"type": "string", "name": "taskId", "in": "path", "required": true},
                    {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/api.moveReq"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Task"}}}
            }
        }
    },
    "definitions": {
        "response.ErrorResp": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "session.User": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "picture": {"type": "string"}}
        },
        "api.titleReq": {
            "type": "object",
            "properties": {"title": {"type": "string"}}
        },
        "api.createTaskReq": {
            "type": "object",
            "properties": {"title": {"type": "string"}, "notes": {"type": "string"}, "due": {"type": "string"}}
        },
        "api.updateTaskReq": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "notes": {"type": "string"},
                "due": {"type": "string", "x-nullable": true},
                "status": {"type": "string", "enum": ["needsAction", "completed"]}
            }
        },
        "api.moveReq": {
            "type": "object",
            "properties": {"previous": {"type": "string"}, "parent": {"type": "string"}}
        },
        "service.TaskList": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "title": {"type": "string"}, "updated": {"type": "string"}}
        },
        "service.Task": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "notes": {"type": "string"},
                "due": {"type": "string"},
                "status": {"type": "string"},
                "completed": {"type": "string"},
                "parent": {"type": "string"},
                "position": {"type": "string"},
                "updated": {"type": "string"},
                "hidden": {"type": "boolean"},
                "deleted": {"type": "boolean"},
                "webViewLink": {"type": "string"}
            }
        },
        "aggregate.Export": {
            "type": "object",
            "properties": {
                "lists": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "id": {"type": "string"},
                            "title": {"type": "string"},
                            "tasks": {"type": "array", "items": {"$ref": "#/definitions/service.Task"}}
                        }
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Tasklr API",
	Description:      "JSON API of the Tasklr Google Tasks proxy.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
