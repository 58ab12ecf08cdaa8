// Package docs registers the swagger document served at /swagger.
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
        "/public/assignments/{token}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["公开作业"],
                "summary": "通过分享链接获取作业",
                "parameters": [{"type": "string", "description": "公开令牌", "name": "token", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "成功", "schema": {"$ref": "#/definitions/util.Response"}},
                    "403": {"description": "作业已停用", "schema": {"$ref": "#/definitions/util.Response"}},
                    "404": {"description": "作业不存在", "schema": {"$ref": "#/definitions/util.Response"}},
                    "410": {"description": "已过截止时间", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/public/assignments/{token}/start": {
            "post": {
                "produces": ["application/json"],
                "tags": ["公开作业"],
                "summary": "开始作答",
                "parameters": [{"type": "string", "description": "公开令牌", "name": "token", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "成功", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/public/assignments/submit": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["公开作业"],
                "summary": "提交作业",
                "parameters": [{"description": "作答内容", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.SubmitReq"}}],
                "responses": {
                    "200": {"description": "成功", "schema": {"$ref": "#/definitions/util.Response"}},
                    "400": {"description": "参数错误或超时", "schema": {"$ref": "#/definitions/util.Response"}},
                    "403": {"description": "作业已停用或仅限指定学生", "schema": {"$ref": "#/definitions/util.Response"}},
                    "404": {"description": "作业不存在", "schema": {"$ref": "#/definitions/util.Response"}},
                    "410": {"description": "已过截止时间", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/teacher/assignments": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["作业管理"],
                "summary": "获取我的作业列表",
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/util.Response"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["作业管理"],
                "summary": "创建作业",
                "responses": {
                    "201": {"description": "创建成功", "schema": {"$ref": "#/definitions/util.Response"}},
                    "400": {"description": "参数错误", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/teacher/assignments/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["作业管理"],
                "summary": "获取作业详情",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/util.Response"}}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["作业管理"],
                "summary": "更新作业",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/util.Response"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["作业管理"],
                "summary": "删除作业",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/util.Response"}}}
            }
        },
        "/teacher/assignments/{id}/results": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["作业管理"],
                "summary": "查看作业提交结果",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/util.Response"}}}
            }
        },
        "/teacher/live": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["作业管理"],
                "summary": "实时成绩推送",
                "parameters": [{"type": "string", "name": "access_token", "in": "query"}],
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        }
    },
    "definitions": {
        "util.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "kind": {"type": "string"},
                "message": {"type": "string"},
                "data": {}
            }
        },
        "service.SubmitReq": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "studentName": {"type": "string"},
                "studentEmail": {"type": "string"},
                "answers": {"type": "object", "additionalProperties": {"type": "string"}},
                "startedAt": {"type": "string"},
                "attemptId": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "TutorHub 作业 API",
	Description:      "家教作业分发与自动评分服务",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
