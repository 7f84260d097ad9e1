// Package docs 注册 Swagger 文档。
// 接口定义由 api 包中的注释生成，执行 swag init 会覆盖本文件。
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
        "/api/v1/admin/ai-models": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "管理-AI模型"
                ],
                "summary": "创建AI模型",
                "parameters": [
                    {
                        "description": "AI模型信息",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.CreateAIModelRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "创建成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.AIModel"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "参数错误或模型名称已存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "403": {
                        "description": "权限不足",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/admin/ai-models/reorder": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "管理-AI模型"
                ],
                "summary": "排序AI模型",
                "parameters": [
                    {
                        "description": "模型ID顺序",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.ReorderAIModelsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "排序已保存",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/admin/ai-models/{id}": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "未传 api_key 时保留原密钥",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "管理-AI模型"
                ],
                "summary": "更新AI模型",
                "parameters": [
                    {
                        "description": "AI模型ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "description": "AI模型信息",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.UpdateAIModelRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "更新成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.AIModel"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "模型不存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "管理-AI模型"
                ],
                "summary": "删除AI模型",
                "parameters": [
                    {
                        "description": "AI模型ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "删除成功",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "404": {
                        "description": "模型不存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/admin/ai-models/{id}/test": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "向AI模型发送轻量测试请求",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "管理-AI模型"
                ],
                "summary": "检测AI接口可用性",
                "parameters": [
                    {
                        "description": "AI模型ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "接口可用",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "502": {
                        "description": "接口不可用",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/admin/email-config": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "管理"
                ],
                "summary": "查看邮件配置",
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "403": {
                        "description": "权限不足",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/admin/test-email": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "管理"
                ],
                "summary": "发送测试邮件",
                "parameters": [
                    {
                        "description": "收件人",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/api.TestEmailRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "发送成功",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "400": {
                        "description": "邮件服务未启用或缺少收件人",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/ai-models": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "AI模型"
                ],
                "summary": "获取AI模型列表",
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.AIModel"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/ai/budget/generate": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "按 50/30/20 原则生成预算建议，\"固定支出\"固定为第一行。结果不会自动保存为预算，确认后调用 PUT /budget。",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "AI洞察"
                ],
                "summary": "AI 生成预算",
                "parameters": [
                    {
                        "description": "收入与固定支出",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.GenerateBudgetRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "生成成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/api.AIReportResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "502": {
                        "description": "AI 服务错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/ai/chat": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "SSE流式返回JSON帧（delta/done/error）。客户端中途断开时不保存记录。",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "text/event-stream"
                ],
                "tags": [
                    "AI聊天"
                ],
                "summary": "AI聊天（流式）",
                "parameters": [
                    {
                        "description": "聊天请求",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.AIChatRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "SSE流：data: {\\\"type\\\":\\\"delta\\\",\\\"content\\\":\\\"...\\\"}",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "400": {
                        "description": "参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "404": {
                        "description": "AI模型不存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/ai/chat/history": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "AI聊天"
                ],
                "summary": "AI聊天记录",
                "parameters": [
                    {
                        "description": "AI模型ID",
                        "name": "model_id",
                        "in": "query",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "description": "页码",
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "default": 1
                    },
                    {
                        "description": "每页数量",
                        "name": "page_size",
                        "in": "query",
                        "type": "integer",
                        "default": 10
                    }
                ],
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "allOf": [
                                                {
                                                    "$ref": "#/definitions/api.PageResponse"
                                                },
                                                {
                                                    "type": "object",
                                                    "properties": {
                                                        "list": {
                                                            "type": "array",
                                                            "items": {
                                                                "$ref": "#/definitions/models.AIChatMessage"
                                                            }
                                                        }
                                                    }
                                                }
                                            ]
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "缺少 model_id",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/ai/chat/history/{id}": {
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "AI聊天"
                ],
                "summary": "删除聊天记录",
                "parameters": [
                    {
                        "description": "记录ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "删除成功",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "404": {
                        "description": "记录不存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/ai/cycle-review": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "总结周期执行情况并给出下一周期预算建议，可直接用于 POST /budget/rollover",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "AI洞察"
                ],
                "summary": "AI 周期复盘",
                "parameters": [
                    {
                        "description": "模型与周期",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.AIRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "生成成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/api.AIReportResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "未设置预算",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "502": {
                        "description": "AI 服务错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/ai/goals/{id}/forecast": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "AI洞察"
                ],
                "summary": "AI 储蓄目标预测",
                "parameters": [
                    {
                        "description": "目标ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "模型",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.AIRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "生成成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/api.AIReportResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "目标不存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "502": {
                        "description": "AI 服务错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/ai/health-report": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "AI洞察"
                ],
                "summary": "AI 财务健康报告",
                "parameters": [
                    {
                        "description": "模型与周期",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.AIRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "生成成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/api.AIReportResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "交易不足",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "502": {
                        "description": "AI 服务错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/ai/recurring-scan": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "回看最近 N 个月的支出，少于 5 笔时直接返回空列表",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "AI洞察"
                ],
                "summary": "AI 识别周期账单",
                "parameters": [
                    {
                        "description": "模型与回看月数",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.RecurringScanRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "识别成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/api.AIReportResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "502": {
                        "description": "AI 服务错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/ai/reports": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "AI洞察"
                ],
                "summary": "AI 分析历史",
                "parameters": [
                    {
                        "description": "health_report / cycle_review / budget_plan / goal_forecast / recurring_scan",
                        "name": "kind",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "页码",
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "default": 1
                    },
                    {
                        "description": "每页数量",
                        "name": "page_size",
                        "in": "query",
                        "type": "integer",
                        "default": 10
                    }
                ],
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "allOf": [
                                                {
                                                    "$ref": "#/definitions/api.PageResponse"
                                                },
                                                {
                                                    "type": "object",
                                                    "properties": {
                                                        "list": {
                                                            "type": "array",
                                                            "items": {
                                                                "$ref": "#/definitions/models.AIReport"
                                                            }
                                                        }
                                                    }
                                                }
                                            ]
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/ai/reports/{id}": {
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "AI洞察"
                ],
                "summary": "删除 AI 分析记录",
                "parameters": [
                    {
                        "description": "记录ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "删除成功",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "404": {
                        "description": "记录不存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "description": "用户登录获取 JWT token",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "认证"
                ],
                "summary": "用户登录",
                "parameters": [
                    {
                        "description": "登录信息",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "登录成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/api.LoginResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "请求参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "401": {
                        "description": "用户名或密码错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "429": {
                        "description": "登录尝试过于频繁",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/auth/password": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "认证"
                ],
                "summary": "修改密码",
                "parameters": [
                    {
                        "description": "密码信息",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.ChangePasswordRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "修改成功",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "400": {
                        "description": "请求参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "401": {
                        "description": "原密码错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/auth/password/request-reset": {
            "post": {
                "description": "通过邮箱发送 6 位密码重置验证码，为了安全即使邮箱未注册也返回成功",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "认证"
                ],
                "summary": "请求密码重置",
                "parameters": [
                    {
                        "description": "密码重置请求",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.RequestPasswordResetRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "验证码已发送",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "400": {
                        "description": "请求参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "429": {
                        "description": "请求过于频繁",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/auth/password/reset": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "认证"
                ],
                "summary": "重置密码",
                "parameters": [
                    {
                        "description": "重置密码请求",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.ResetPasswordRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "密码重置成功",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "400": {
                        "description": "验证码错误或已过期",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "500": {
                        "description": "服务器错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/auth/password/verify-code": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "认证"
                ],
                "summary": "验证重置验证码",
                "parameters": [
                    {
                        "description": "验证请求",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.VerifyResetCodeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "验证成功",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "400": {
                        "description": "验证码错误或已过期",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/auth/profile": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "认证"
                ],
                "summary": "获取当前用户信息",
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.User"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "未授权",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/auth/register": {
            "post": {
                "description": "创建新用户账号，同时写入默认偏好设置与默认分类树，返回登录 token",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "认证"
                ],
                "summary": "用户注册",
                "parameters": [
                    {
                        "description": "注册信息",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.RegisterRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "注册成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/api.LoginResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "请求参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "500": {
                        "description": "服务器错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/budget": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "返回每个预算行的分配额、结转、本期支出与剩余额度，以及预算总览",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "预算"
                ],
                "summary": "获取当前周期预算",
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/api.BudgetView"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "按名称与顶级支出分类匹配；同名预算行保留已有结转额",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "预算"
                ],
                "summary": "设置预算",
                "parameters": [
                    {
                        "description": "预算分配",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.ReplaceBudgetRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "保存成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.BudgetCategory"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "请求参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/budget/rollover": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "结算上一个已结束的周期，每个周期只能结转一次。开启结转时，同名分类的结转额 = 上期可用额度 - 上期支出（可为负）；开启周期总结邮件时发送上期总结",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "预算"
                ],
                "summary": "预算结转",
                "parameters": [
                    {
                        "description": "本周期预算分配",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/api.RolloverRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "结转成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/models.BudgetCategory"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "请求参数错误或该周期已结转",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/categories": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "返回当前用户的顶级分类及其子分类，可按收支类型筛选",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "分类"
                ],
                "summary": "获取分类树",
                "parameters": [
                    {
                        "description": "income / expense",
                        "name": "type",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/api.CategoryNode"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "父分类必须是同类型的顶级分类；同类型的顶级分类名称不可重复（预算按名称匹配）",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "分类"
                ],
                "summary": "创建分类",
                "parameters": [
                    {
                        "description": "分类信息",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.CategoryCreateRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "创建成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Category"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/categories/{id}": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "重命名顶级支出分类时同步更新同名预算行",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "分类"
                ],
                "summary": "更新分类",
                "parameters": [
                    {
                        "description": "分类ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "分类信息",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.CategoryUpdateRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "更新成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Category"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "分类不存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "存在子分类时不可删除；已有交易保留原分类ID，评分时视为未归类",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "分类"
                ],
                "summary": "删除分类",
                "parameters": [
                    {
                        "description": "分类ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "删除成功",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "400": {
                        "description": "存在子分类",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "404": {
                        "description": "分类不存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/export/csv": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "text/csv"
                ],
                "tags": [
                    "导出"
                ],
                "summary": "导出交易记录为 CSV",
                "parameters": [
                    {
                        "description": "开始时间 (2024-01-01)",
                        "name": "start_time",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "结束时间 (2024-12-31)",
                        "name": "end_time",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "CSV 文件",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "请求参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/export/excel": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "第一个工作表为交易明细，第二个工作表为该区间的预算执行与健康评分",
                "produces": [
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ],
                "tags": [
                    "导出"
                ],
                "summary": "导出交易记录为 Excel",
                "parameters": [
                    {
                        "description": "开始时间 (2024-01-01)",
                        "name": "start_time",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "结束时间 (2024-12-31)",
                        "name": "end_time",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Excel 文件",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "请求参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/export/json": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "导出"
                ],
                "summary": "导出交易记录为 JSON",
                "parameters": [
                    {
                        "description": "开始时间 (2024-01-01)",
                        "name": "start_time",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "结束时间 (2024-12-31)",
                        "name": "end_time",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "导出成功",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "400": {
                        "description": "请求参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/export/pdf": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "包含健康评分、各分类预算执行与大额交易，需在配置中指定中文字体 export.pdf_font",
                "produces": [
                    "application/pdf"
                ],
                "tags": [
                    "导出"
                ],
                "summary": "导出预算周期 PDF 报告",
                "parameters": [
                    {
                        "description": "所在周期的任意日期 (2024-03-15)",
                        "name": "date",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "PDF 文件",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "请求参数错误或未配置字体",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/goals": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "储蓄目标"
                ],
                "summary": "获取储蓄目标",
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/api.GoalView"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "储蓄目标"
                ],
                "summary": "新建储蓄目标",
                "parameters": [
                    {
                        "description": "目标信息",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.GoalCreateRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "创建成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/api.GoalView"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "请求参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/goals/{id}": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "储蓄目标"
                ],
                "summary": "更新储蓄目标",
                "parameters": [
                    {
                        "description": "目标ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "目标信息",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.GoalUpdateRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "更新成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/api.GoalView"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "目标不存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "储蓄目标"
                ],
                "summary": "删除储蓄目标",
                "parameters": [
                    {
                        "description": "目标ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "删除成功",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "404": {
                        "description": "目标不存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/goals/{id}/contribute": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "已存金额不会低于 0",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "储蓄目标"
                ],
                "summary": "调整目标已存金额",
                "parameters": [
                    {
                        "description": "目标ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "金额",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.ContributeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "更新成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/api.GoalView"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/health-score": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "返回健康分、储蓄分、预算分、评分阶段（welcome/no_budget/unallocated/scored），以及预算提醒和大额交易。\n传入 date 时计算该日期所在的预算周期。",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "健康评分"
                ],
                "summary": "获取财务健康评分",
                "parameters": [
                    {
                        "description": "所在周期的任意日期 (2024-03-15)",
                        "name": "date",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/service.HealthOverview"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "日期格式错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/recurring-payments": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "周期账单"
                ],
                "summary": "获取周期性账单",
                "parameters": [
                    {
                        "description": "仅返回启用中的账单",
                        "name": "active",
                        "in": "query",
                        "type": "boolean"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/api.RecurringView"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "周期账单"
                ],
                "summary": "新增周期性账单",
                "parameters": [
                    {
                        "description": "账单信息",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.RecurringCreateRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "创建成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/api.RecurringView"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "请求参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/recurring-payments/{id}": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "周期账单"
                ],
                "summary": "更新周期性账单",
                "parameters": [
                    {
                        "description": "账单ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "账单信息",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.RecurringUpdateRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "更新成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/api.RecurringView"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "账单不存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "周期账单"
                ],
                "summary": "删除周期性账单",
                "parameters": [
                    {
                        "description": "账单ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "删除成功",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "404": {
                        "description": "账单不存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/recurring-payments/{id}/advance": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "按账单周期推进下次到期日，可选同时记一笔支出（日期为原到期日）",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "周期账单"
                ],
                "summary": "账单已支付",
                "parameters": [
                    {
                        "description": "账单ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "支付信息",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/api.AdvanceRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "已推进",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/api.RecurringView"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "未设置分类",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "404": {
                        "description": "账单不存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/settings": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "设置"
                ],
                "summary": "获取偏好设置",
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.UserSettings"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "预算周期为 monthly 或 custom_day（1-31 日，超出当月天数时取月末），提醒阈值范围 0-100，0 表示关闭",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "设置"
                ],
                "summary": "更新偏好设置",
                "parameters": [
                    {
                        "description": "设置项",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.UpdateSettingsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "更新成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.UserSettings"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "请求参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/transactions": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "金额恒为非负数，收支方向由 type 决定",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "交易记录"
                ],
                "summary": "创建交易",
                "parameters": [
                    {
                        "description": "交易信息",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.CreateTransactionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "创建成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Transaction"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "请求参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            },
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "分页查询，支持按类型、分类（顶级分类包含其子分类）和日期筛选",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "交易记录"
                ],
                "summary": "获取交易列表",
                "parameters": [
                    {
                        "description": "页码",
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "default": 1
                    },
                    {
                        "description": "每页数量",
                        "name": "page_size",
                        "in": "query",
                        "type": "integer",
                        "default": 10
                    },
                    {
                        "description": "income / expense",
                        "name": "type",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "分类ID",
                        "name": "category",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "开始日期 (2024-01-01)",
                        "name": "start_time",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "结束日期 (2024-12-31)",
                        "name": "end_time",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "allOf": [
                                                {
                                                    "$ref": "#/definitions/api.PageResponse"
                                                },
                                                {
                                                    "type": "object",
                                                    "properties": {
                                                        "list": {
                                                            "type": "array",
                                                            "items": {
                                                                "$ref": "#/definitions/models.Transaction"
                                                            }
                                                        }
                                                    }
                                                }
                                            ]
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/transactions/summary": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "统计区间内的收入、支出、储蓄率，以及按顶级分类汇总的支出",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "交易记录"
                ],
                "summary": "收支汇总",
                "parameters": [
                    {
                        "description": "开始日期 (2024-01-01)",
                        "name": "start_time",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "结束日期 (2024-01-31)",
                        "name": "end_time",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/api.TransactionSummary"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "请求参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/transactions/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "交易记录"
                ],
                "summary": "获取单条交易",
                "parameters": [
                    {
                        "description": "交易ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "获取成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Transaction"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "记录不存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "交易记录"
                ],
                "summary": "更新交易",
                "parameters": [
                    {
                        "description": "交易ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "交易信息",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/api.UpdateTransactionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "更新成功",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/api.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/models.Transaction"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "请求参数错误",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "404": {
                        "description": "记录不存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "交易记录"
                ],
                "summary": "删除交易",
                "parameters": [
                    {
                        "description": "交易ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "删除成功",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    },
                    "404": {
                        "description": "记录不存在",
                        "schema": {
                            "$ref": "#/definitions/api.Response"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "api.AIChatRequest": {
            "type": "object",
            "required": [
                "model_id",
                "message"
            ],
            "properties": {
                "model_id": {
                    "type": "integer"
                },
                "message": {
                    "type": "string"
                },
                "include_context": {
                    "type": "boolean",
                    "description": "附带本周期评分与预算"
                }
            }
        },
        "api.AIReportResponse": {
            "type": "object",
            "properties": {
                "report_id": {
                    "type": "integer"
                },
                "result": {
                    "type": "object"
                }
            }
        },
        "api.AIRequest": {
            "type": "object",
            "required": [
                "model_id"
            ],
            "properties": {
                "model_id": {
                    "type": "integer",
                    "example": 1
                },
                "date": {
                    "type": "string",
                    "description": "所在周期的任意日期，默认今天",
                    "example": "2024-03-15"
                }
            }
        },
        "api.AdvanceRequest": {
            "type": "object",
            "properties": {
                "record_transaction": {
                    "type": "boolean",
                    "description": "同时记一笔支出"
                },
                "amount": {
                    "type": "number",
                    "description": "浮动金额账单的实际金额"
                }
            }
        },
        "api.BudgetRow": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "allocated": {
                    "type": "number"
                },
                "spent": {
                    "type": "number"
                },
                "carryover": {
                    "type": "number",
                    "description": "正数为上期结余，负数为上期超支"
                },
                "target": {
                    "type": "number",
                    "description": "本期可用额度"
                },
                "remaining": {
                    "type": "number",
                    "description": "负数表示超支"
                },
                "over": {
                    "type": "boolean"
                },
                "carryover_kind": {
                    "type": "string"
                }
            }
        },
        "api.BudgetView": {
            "type": "object",
            "properties": {
                "cycle_start": {
                    "type": "string"
                },
                "cycle_end": {
                    "type": "string"
                },
                "carryover_enabled": {
                    "type": "boolean"
                },
                "rows": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/api.BudgetRow"
                    }
                },
                "summary": {
                    "$ref": "#/definitions/scoring.BudgetSummary"
                }
            }
        },
        "api.CategoryCreateRequest": {
            "type": "object",
            "required": [
                "name",
                "type"
            ],
            "properties": {
                "name": {
                    "type": "string",
                    "example": "餐饮"
                },
                "type": {
                    "type": "string",
                    "example": "expense"
                },
                "parent_id": {
                    "type": "string",
                    "example": ""
                },
                "color": {
                    "type": "string",
                    "example": "#ef4444"
                },
                "sort": {
                    "type": "integer"
                }
            }
        },
        "api.CategoryNode": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "type": {
                    "type": "string",
                    "description": "income / expense"
                },
                "parent_id": {
                    "type": "string"
                },
                "color": {
                    "type": "string"
                },
                "sort": {
                    "type": "integer"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                },
                "children": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.Category"
                    }
                }
            }
        },
        "api.CategorySpending": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "total": {
                    "type": "number"
                }
            }
        },
        "api.CategoryUpdateRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "color": {
                    "type": "string"
                },
                "sort": {
                    "type": "integer"
                }
            }
        },
        "api.ChangePasswordRequest": {
            "type": "object",
            "required": [
                "old_password",
                "new_password"
            ],
            "properties": {
                "old_password": {
                    "type": "string",
                    "example": "oldpassword123"
                },
                "new_password": {
                    "type": "string",
                    "example": "newpassword123"
                }
            }
        },
        "api.ContributeRequest": {
            "type": "object",
            "required": [
                "amount"
            ],
            "properties": {
                "amount": {
                    "type": "number",
                    "example": 500
                }
            }
        },
        "api.CreateAIModelRequest": {
            "type": "object",
            "required": [
                "name",
                "base_url",
                "api_key"
            ],
            "properties": {
                "name": {
                    "type": "string",
                    "example": "gpt-4o-mini"
                },
                "base_url": {
                    "type": "string",
                    "example": "https://api.openai.com/v1"
                },
                "api_key": {
                    "type": "string",
                    "example": "sk-..."
                }
            }
        },
        "api.CreateTransactionRequest": {
            "type": "object",
            "required": [
                "date",
                "amount",
                "category",
                "type"
            ],
            "properties": {
                "date": {
                    "type": "string",
                    "example": "2024-01-15"
                },
                "description": {
                    "type": "string",
                    "example": "午餐"
                },
                "amount": {
                    "type": "number",
                    "example": 35.5
                },
                "category": {
                    "type": "string",
                    "example": "分类ID"
                },
                "type": {
                    "type": "string",
                    "example": "expense"
                },
                "account": {
                    "type": "string",
                    "example": "现金"
                },
                "tags": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "api.GenerateBudgetRequest": {
            "type": "object",
            "required": [
                "model_id",
                "income"
            ],
            "properties": {
                "model_id": {
                    "type": "integer",
                    "example": 1
                },
                "income": {
                    "type": "number",
                    "example": 12000
                },
                "fixed_costs": {
                    "type": "number",
                    "example": 4000
                }
            }
        },
        "api.GoalCreateRequest": {
            "type": "object",
            "required": [
                "name",
                "target_amount"
            ],
            "properties": {
                "name": {
                    "type": "string",
                    "example": "应急基金"
                },
                "target_amount": {
                    "type": "number",
                    "example": 10000
                },
                "current_amount": {
                    "type": "number",
                    "example": 2000
                },
                "emoji": {
                    "type": "string",
                    "example": "🛟"
                }
            }
        },
        "api.GoalUpdateRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "target_amount": {
                    "type": "number"
                },
                "current_amount": {
                    "type": "number"
                },
                "emoji": {
                    "type": "string"
                }
            }
        },
        "api.GoalView": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "target_amount": {
                    "type": "number"
                },
                "current_amount": {
                    "type": "number"
                },
                "emoji": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                },
                "progress": {
                    "type": "number",
                    "description": "0-100"
                }
            }
        },
        "api.LoginRequest": {
            "type": "object",
            "required": [
                "username",
                "password"
            ],
            "properties": {
                "username": {
                    "type": "string",
                    "description": "可为用户名或邮箱",
                    "example": "testuser"
                },
                "password": {
                    "type": "string",
                    "example": "password123"
                }
            }
        },
        "api.LoginResponse": {
            "type": "object",
            "properties": {
                "token": {
                    "type": "string"
                },
                "user_info": {
                    "$ref": "#/definitions/models.User"
                }
            }
        },
        "api.PageResponse": {
            "type": "object",
            "properties": {
                "total": {
                    "type": "integer"
                },
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "list": {
                    "type": "object"
                }
            }
        },
        "api.RecurringCreateRequest": {
            "type": "object",
            "required": [
                "name",
                "amount",
                "billing_cycle",
                "next_due_date"
            ],
            "properties": {
                "name": {
                    "type": "string",
                    "example": "视频会员"
                },
                "amount": {
                    "type": "number",
                    "example": 25
                },
                "is_variable": {
                    "type": "boolean"
                },
                "category": {
                    "type": "string",
                    "example": "分类ID"
                },
                "billing_cycle": {
                    "type": "string",
                    "example": "monthly"
                },
                "next_due_date": {
                    "type": "string",
                    "example": "2024-02-01"
                },
                "is_active": {
                    "type": "boolean"
                }
            }
        },
        "api.RecurringScanRequest": {
            "type": "object",
            "required": [
                "model_id"
            ],
            "properties": {
                "model_id": {
                    "type": "integer",
                    "example": 1
                },
                "months": {
                    "type": "integer",
                    "description": "回看月数，默认 3",
                    "example": 3
                }
            }
        },
        "api.RecurringUpdateRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "amount": {
                    "type": "number"
                },
                "is_variable": {
                    "type": "boolean"
                },
                "category": {
                    "type": "string"
                },
                "billing_cycle": {
                    "type": "string"
                },
                "next_due_date": {
                    "type": "string"
                },
                "is_active": {
                    "type": "boolean"
                }
            }
        },
        "api.RecurringView": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "amount": {
                    "type": "number"
                },
                "is_variable": {
                    "type": "boolean"
                },
                "category": {
                    "type": "string"
                },
                "billing_cycle": {
                    "type": "string",
                    "description": "monthly / quarterly / annually"
                },
                "next_due_date": {
                    "type": "string"
                },
                "is_active": {
                    "type": "boolean"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                },
                "due_status": {
                    "$ref": "#/definitions/scoring.DueStatus"
                }
            }
        },
        "api.RegisterRequest": {
            "type": "object",
            "required": [
                "username",
                "password"
            ],
            "properties": {
                "username": {
                    "type": "string",
                    "example": "testuser"
                },
                "password": {
                    "type": "string",
                    "example": "password123"
                },
                "email": {
                    "type": "string",
                    "example": "test@example.com"
                }
            }
        },
        "api.ReorderAIModelsRequest": {
            "type": "object",
            "required": [
                "model_ids"
            ],
            "properties": {
                "model_ids": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    },
                    "description": "按新顺序排列的模型 ID 列表"
                }
            }
        },
        "api.ReplaceBudgetRequest": {
            "type": "object",
            "required": [
                "budget"
            ],
            "properties": {
                "budget": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/scoring.BudgetAllocation"
                    }
                }
            }
        },
        "api.RequestPasswordResetRequest": {
            "type": "object",
            "required": [
                "email"
            ],
            "properties": {
                "email": {
                    "type": "string",
                    "example": "test@example.com"
                }
            }
        },
        "api.ResetPasswordRequest": {
            "type": "object",
            "required": [
                "email",
                "code",
                "new_password"
            ],
            "properties": {
                "email": {
                    "type": "string",
                    "example": "test@example.com"
                },
                "code": {
                    "type": "string",
                    "example": "123456"
                },
                "new_password": {
                    "type": "string",
                    "example": "newpassword123"
                }
            }
        },
        "api.Response": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "integer"
                },
                "message": {
                    "type": "string"
                },
                "data": {
                    "type": "object"
                }
            }
        },
        "api.RolloverRequest": {
            "type": "object",
            "properties": {
                "budget": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/scoring.BudgetAllocation"
                    }
                }
            }
        },
        "api.TestEmailRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string",
                    "description": "为空时发送到当前管理员邮箱",
                    "example": "admin@example.com"
                }
            }
        },
        "api.TransactionSummary": {
            "type": "object",
            "properties": {
                "start_time": {
                    "type": "string"
                },
                "end_time": {
                    "type": "string"
                },
                "income": {
                    "type": "number"
                },
                "expenses": {
                    "type": "number"
                },
                "net": {
                    "type": "number"
                },
                "savings_rate": {
                    "type": "number",
                    "description": "百分比，收入为 0 时为 0"
                },
                "count": {
                    "type": "integer"
                },
                "by_category": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/api.CategorySpending"
                    }
                }
            }
        },
        "api.UpdateAIModelRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "base_url": {
                    "type": "string"
                },
                "api_key": {
                    "type": "string"
                }
            }
        },
        "api.UpdateSettingsRequest": {
            "type": "object",
            "properties": {
                "currency": {
                    "type": "string",
                    "example": "CNY"
                },
                "carryover_enabled": {
                    "type": "boolean"
                },
                "cycle_type": {
                    "type": "string",
                    "example": "custom_day"
                },
                "cycle_day": {
                    "type": "integer",
                    "example": 15
                },
                "push_enabled": {
                    "type": "boolean"
                },
                "email_summaries_enabled": {
                    "type": "boolean"
                },
                "large_transaction_amount": {
                    "type": "number",
                    "example": 1000
                },
                "budget_threshold_percent": {
                    "type": "number",
                    "example": 80
                },
                "default_transaction_type": {
                    "type": "string",
                    "example": "expense"
                },
                "default_account": {
                    "type": "string",
                    "example": "现金"
                }
            }
        },
        "api.UpdateTransactionRequest": {
            "type": "object",
            "properties": {
                "date": {
                    "type": "string",
                    "example": "2024-01-15"
                },
                "description": {
                    "type": "string"
                },
                "amount": {
                    "type": "number"
                },
                "category": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                },
                "account": {
                    "type": "string"
                },
                "tags": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "api.VerifyResetCodeRequest": {
            "type": "object",
            "required": [
                "email",
                "code"
            ],
            "properties": {
                "email": {
                    "type": "string",
                    "example": "test@example.com"
                },
                "code": {
                    "type": "string",
                    "example": "123456"
                }
            }
        },
        "models.AIChatMessage": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "ai_model_id": {
                    "type": "integer"
                },
                "question": {
                    "type": "string"
                },
                "answer": {
                    "type": "string"
                },
                "cycle_start": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                }
            }
        },
        "models.AIModel": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string",
                    "description": "请求中使用的模型名称"
                },
                "base_url": {
                    "type": "string"
                },
                "sort_order": {
                    "type": "integer"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "models.AIReport": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "user_id": {
                    "type": "integer"
                },
                "ai_model_id": {
                    "type": "integer"
                },
                "kind": {
                    "type": "string"
                },
                "start_date": {
                    "type": "string",
                    "description": "YYYY-MM-DD，对应的预算周期"
                },
                "end_date": {
                    "type": "string"
                },
                "result": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                }
            }
        },
        "models.BudgetCategory": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "allocated": {
                    "type": "number"
                },
                "carryover": {
                    "type": "number"
                },
                "sort": {
                    "type": "integer"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "models.Category": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "type": {
                    "type": "string",
                    "description": "income / expense"
                },
                "parent_id": {
                    "type": "string"
                },
                "color": {
                    "type": "string"
                },
                "sort": {
                    "type": "integer"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "models.Transaction": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "date": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "amount": {
                    "type": "number"
                },
                "category": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                },
                "account": {
                    "type": "string"
                },
                "tags": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "models.User": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "username": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "is_admin": {
                    "type": "boolean",
                    "description": "管理员可维护 AI 模型"
                },
                "status": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "models.UserSettings": {
            "type": "object",
            "properties": {
                "currency": {
                    "type": "string"
                },
                "carryover_enabled": {
                    "type": "boolean"
                },
                "cycle_type": {
                    "type": "string"
                },
                "cycle_day": {
                    "type": "integer"
                },
                "push_enabled": {
                    "type": "boolean"
                },
                "email_summaries_enabled": {
                    "type": "boolean"
                },
                "large_transaction_amount": {
                    "type": "number",
                    "description": "0 表示关闭"
                },
                "budget_threshold_percent": {
                    "type": "number",
                    "description": "0 表示关闭，范围 0-100"
                },
                "default_transaction_type": {
                    "type": "string"
                },
                "default_account": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                },
                "rolled_over_through": {
                    "type": "string"
                }
            }
        },
        "scoring.BudgetAlert": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "spent": {
                    "type": "number"
                },
                "target": {
                    "type": "number"
                },
                "percent": {
                    "type": "number"
                },
                "over": {
                    "type": "boolean"
                }
            }
        },
        "scoring.BudgetAllocation": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "allocated": {
                    "type": "number"
                }
            }
        },
        "scoring.BudgetCategory": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "allocated": {
                    "type": "number"
                },
                "spent": {
                    "type": "number"
                },
                "carryover": {
                    "type": "number",
                    "description": "正数为上期结余，负数为上期超支"
                }
            }
        },
        "scoring.BudgetSummary": {
            "type": "object",
            "properties": {
                "total_allocated": {
                    "type": "number"
                },
                "total_spent": {
                    "type": "number"
                },
                "total_carryover": {
                    "type": "number"
                },
                "total_budget": {
                    "type": "number"
                }
            }
        },
        "scoring.DueStatus": {
            "type": "object",
            "properties": {
                "days": {
                    "type": "integer",
                    "description": "距到期天数，负数表示已逾期"
                },
                "is_past": {
                    "type": "boolean"
                },
                "text": {
                    "type": "string"
                }
            }
        },
        "scoring.ScoreBundle": {
            "type": "object",
            "properties": {
                "health_score": {
                    "type": "integer"
                },
                "savings_score": {
                    "type": "integer"
                },
                "budgeting_score": {
                    "type": "integer"
                },
                "budget_with_spending": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/scoring.BudgetCategory"
                    }
                },
                "is_welcome_state": {
                    "type": "boolean"
                },
                "state": {
                    "type": "string"
                },
                "income": {
                    "type": "number"
                },
                "expenses": {
                    "type": "number"
                }
            }
        },
        "scoring.Transaction": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "date": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "amount": {
                    "type": "number"
                },
                "category": {
                    "type": "string",
                    "description": "分类ID，通常为子分类"
                },
                "type": {
                    "type": "string"
                },
                "account": {
                    "type": "string"
                },
                "tags": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "service.HealthOverview": {
            "type": "object",
            "properties": {
                "cycle_start": {
                    "type": "string"
                },
                "cycle_end": {
                    "type": "string"
                },
                "score": {
                    "$ref": "#/definitions/scoring.ScoreBundle"
                },
                "budget": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/scoring.BudgetCategory"
                    }
                },
                "summary": {
                    "$ref": "#/definitions/scoring.BudgetSummary"
                },
                "budget_alerts": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/scoring.BudgetAlert"
                    }
                },
                "large_transactions": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/scoring.Transaction"
                    }
                },
                "carryover_enabled": {
                    "type": "boolean"
                },
                "currency": {
                    "type": "string"
                }
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

// SwaggerInfo 文档元信息，可在启动时修改 Host
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Budgetly 预算与财务健康 API",
	Description:      "个人预算 API：收支记账、两级分类、周期预算与结转、财务健康评分、周期账单、储蓄目标、AI 洞察与数据导出",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
