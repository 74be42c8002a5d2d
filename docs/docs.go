// Package docs holds the OpenAPI description served at /api/swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/users/signup": {
            "post": {
                "description": "Register a new user account and start a session",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "User signup",
                "parameters": [
                    {
                        "description": "Signup request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/server.signupRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/login": {
            "post": {
                "description": "Authenticate by username and password and start a session",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "User login",
                "parameters": [
                    {
                        "description": "Login credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/server.loginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/logout": {
            "post": {
                "description": "Clear the session cookie and revoke the presented token",
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "User logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.messageResponse"}}
                }
            }
        },
        "/users/follow/{id}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Follow the user if not followed yet, unfollow otherwise",
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Toggle follow",
                "parameters": [{"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.outcomeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/update/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Change the caller's own profile. Omitted or blank fields stay unchanged; profilePic takes an image data URL and removeProfilePic drops the picture.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update profile",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Profile changes",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/server.updateProfileRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/profile/{username}": {
            "get": {
                "description": "Public profile of a user, without credentials",
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get profile",
                "parameters": [{"type": "string", "description": "Username", "name": "username", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/delete/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Delete the caller's own account together with its posts, reactions, replies and follow edges",
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Delete account",
                "parameters": [{"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/publish": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Create a text post with an optional image (data URL). postedBy, when sent, must be the caller.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Publish a post",
                "parameters": [
                    {
                        "description": "Post",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/server.createPostRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Post"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/get-post/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Get a post",
                "parameters": [{"type": "integer", "description": "Post ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Post"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/user/{username}": {
            "get": {
                "description": "Posts by the given author, newest first",
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "List a user's posts",
                "parameters": [{"type": "string", "description": "Username", "name": "username", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Post"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/feed": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Posts by every user the caller follows, newest first",
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Feed",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Post"}}}
                }
            }
        },
        "/posts/like/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Add, remove, or switch to a like",
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Toggle like",
                "parameters": [{"type": "integer", "description": "Post ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.reactionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/dislike/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Add, remove, or switch to a dislike",
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Toggle dislike",
                "parameters": [{"type": "integer", "description": "Post ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.reactionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/reply/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["replies"],
                "summary": "Reply to a post",
                "parameters": [
                    {"type": "integer", "description": "Post ID", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Reply",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/server.replyRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/server.repliesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/delete/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Owner only. The attached image is released on a best-effort basis.",
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Delete a post",
                "parameters": [{"type": "integer", "description": "Post ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/posts/delete/{postId}/{commentId}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Allowed for the post owner and the reply's author",
                "produces": ["application/json"],
                "tags": ["replies"],
                "summary": "Delete a reply",
                "parameters": [
                    {"type": "integer", "description": "Post ID", "name": "postId", "in": "path", "required": true},
                    {"type": "integer", "description": "Reply ID", "name": "commentId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.repliesResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "models.Reply": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "id": {"type": "integer"},
                "text": {"type": "string"},
                "userId": {"type": "integer"},
                "userProfilePic": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "models.Post": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "dislikes": {"type": "array", "items": {"type": "integer"}},
                "id": {"type": "integer"},
                "img": {"type": "string"},
                "likes": {"type": "array", "items": {"type": "integer"}},
                "postedBy": {"type": "integer"},
                "replies": {"type": "array", "items": {"$ref": "#/definitions/models.Reply"}},
                "text": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.User": {
            "type": "object",
            "properties": {
                "bio": {"type": "string"},
                "createdAt": {"type": "string"},
                "email": {"type": "string"},
                "followers": {"type": "array", "items": {"type": "integer"}},
                "following": {"type": "array", "items": {"type": "integer"}},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "profilePic": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "server.signupRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "server.loginRequest": {
            "type": "object",
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "server.updateProfileRequest": {
            "type": "object",
            "properties": {
                "bio": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"},
                "profilePic": {"type": "string"},
                "removeProfilePic": {"type": "boolean"},
                "username": {"type": "string"}
            }
        },
        "server.createPostRequest": {
            "type": "object",
            "properties": {
                "img": {"type": "string"},
                "postedBy": {"type": "integer"},
                "text": {"type": "string"}
            }
        },
        "server.replyRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"}
            }
        },
        "server.messageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "server.outcomeResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "outcome": {"type": "string"}
            }
        },
        "server.reactionResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "outcome": {"type": "string"},
                "post": {"$ref": "#/definitions/models.Post"}
            }
        },
        "server.repliesResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "replies": {"type": "array", "items": {"$ref": "#/definitions/models.Reply"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token. Browsers send the jwt cookie instead.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8375",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Threads API",
	Description:      "Short-post social API with follows, reactions and replies",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
