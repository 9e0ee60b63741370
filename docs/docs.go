// Package docs holds the Swagger 2.0 document for the API.
// Regenerate with: swag init -g cmd/api/main.go
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
		"/auth/register": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Register a user",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "RegisterRequest",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.RegisterRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handler.UserResponse"
						}
					},
					"400": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"409": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/auth/login": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Log in",
				"produces": [
					"application/json"
				],
				"description": "Exchange email and password for a bearer token",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "LoginRequest",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.LoginRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.LoginResponse"
						}
					},
					"400": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/auth/me": {
			"get": {
				"tags": [
					"auth"
				],
				"summary": "Current user",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.UserResponse"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/profile": {
			"get": {
				"tags": [
					"profile"
				],
				"summary": "Get profile",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.UserResponse"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			},
			"put": {
				"tags": [
					"profile"
				],
				"summary": "Update profile",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "UpdateProfileRequest",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.UpdateProfileRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.UserResponse"
						}
					},
					"400": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"409": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"profile"
				],
				"summary": "Delete account",
				"description": "Delete the account with its budgets, custom categories and transactions",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "DeleteAccountRequest",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.DeleteAccountRequest"
						}
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"400": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/profile/password": {
			"put": {
				"tags": [
					"profile"
				],
				"summary": "Change password",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "ChangePasswordRequest",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.ChangePasswordRequest"
						}
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"400": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/budgets": {
			"post": {
				"tags": [
					"budgets"
				],
				"summary": "Create a budget",
				"produces": [
					"application/json"
				],
				"description": "Create a budget; its date range must not overlap any other budget of the user",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "BudgetRequest",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.BudgetRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handler.BudgetResponse"
						}
					},
					"400": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			},
			"get": {
				"tags": [
					"budgets"
				],
				"summary": "List budgets",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/handler.BudgetResponse"
							}
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/budgets/{id}": {
			"get": {
				"tags": [
					"budgets"
				],
				"summary": "Get a budget",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Budget ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.BudgetResponse"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			},
			"put": {
				"tags": [
					"budgets"
				],
				"summary": "Update a budget",
				"produces": [
					"application/json"
				],
				"description": "Replace every field of a budget",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Budget ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "BudgetRequest",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.BudgetRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.BudgetResponse"
						}
					},
					"400": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"budgets"
				],
				"summary": "Delete a budget",
				"produces": [
					"application/json"
				],
				"description": "Delete a budget together with its transactions",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Budget ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/budgets/{id}/summary": {
			"get": {
				"tags": [
					"budgets"
				],
				"summary": "Budget summary",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Budget ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.BudgetSummaryResponse"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/budgets/{id}/transactions": {
			"get": {
				"tags": [
					"budgets"
				],
				"summary": "Budget transactions",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Budget ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/handler.TransactionResponse"
							}
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/transactions": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Create a transaction",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "TransactionRequest",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.TransactionRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handler.TransactionResponse"
						}
					},
					"400": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"403": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			},
			"get": {
				"tags": [
					"transactions"
				],
				"summary": "List transactions",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Budget filter",
						"name": "budgetId",
						"in": "query",
						"required": false
					},
					{
						"type": "integer",
						"description": "Category filter",
						"name": "categoryId",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "INCOME or EXPENSE",
						"name": "type",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "Start date (YYYY-MM-DD)",
						"name": "startDate",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"description": "End date (YYYY-MM-DD), inclusive",
						"name": "endDate",
						"in": "query",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/handler.TransactionResponse"
							}
						}
					},
					"400": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/transactions/{id}": {
			"get": {
				"tags": [
					"transactions"
				],
				"summary": "Get a transaction",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Transaction ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.TransactionResponse"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			},
			"put": {
				"tags": [
					"transactions"
				],
				"summary": "Update a transaction",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Transaction ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "TransactionRequest",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.TransactionRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.TransactionResponse"
						}
					},
					"400": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"403": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"transactions"
				],
				"summary": "Delete a transaction",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Transaction ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/categories": {
			"post": {
				"tags": [
					"categories"
				],
				"summary": "Create a custom category",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "CreateCategoryRequest",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.CreateCategoryRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/handler.CategoryResponse"
						}
					},
					"400": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"409": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			},
			"get": {
				"tags": [
					"categories"
				],
				"summary": "List usable categories",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/handler.CategoryResponse"
							}
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/categories/{id}": {
			"delete": {
				"tags": [
					"categories"
				],
				"summary": "Delete a custom category",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Category ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"403": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"409": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/reports/budgets/{id}/spending-by-category": {
			"get": {
				"tags": [
					"reports"
				],
				"summary": "Budget spending by category",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Budget ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "Start date (YYYY-MM-DD)",
						"name": "startDate",
						"in": "query",
						"required": true
					},
					{
						"type": "string",
						"description": "End date (YYYY-MM-DD)",
						"name": "endDate",
						"in": "query",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/handler.CategorySpendingResponse"
							}
						}
					},
					"400": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/reports/budgets/{id}/chart": {
			"get": {
				"tags": [
					"reports"
				],
				"summary": "Budget expense chart",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Budget ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/handler.CategorySpendingResponse"
							}
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/reports/categories": {
			"get": {
				"tags": [
					"reports"
				],
				"summary": "Expense report by category",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Start date (YYYY-MM-DD)",
						"name": "startDate",
						"in": "query",
						"required": true
					},
					{
						"type": "string",
						"description": "End date (YYYY-MM-DD)",
						"name": "endDate",
						"in": "query",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.CategoryExpenseReportResponse"
						}
					},
					"400": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/budgets/{id}/spent": {
			"get": {
				"tags": [
					"budgets"
				],
				"summary": "Budget spent",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Budget ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.BudgetAmountResponse"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/budgets/{id}/earned": {
			"get": {
				"tags": [
					"budgets"
				],
				"summary": "Budget earned",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Budget ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.BudgetAmountResponse"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/budgets/{id}/balance": {
			"get": {
				"tags": [
					"budgets"
				],
				"summary": "Budget balance",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Budget ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.BudgetAmountResponse"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		},
		"/budgets/{id}/remaining": {
			"get": {
				"tags": [
					"budgets"
				],
				"summary": "Budget remaining",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Budget ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.BudgetAmountResponse"
						}
					},
					"401": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					},
					"404": {
						"description": "Problem details",
						"schema": {
							"$ref": "#/definitions/handler.ProblemDetails"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"handler.ProblemDetails": {
			"type": "object",
			"properties": {
				"type": {
					"type": "string"
				},
				"title": {
					"type": "string"
				},
				"status": {
					"type": "integer"
				},
				"detail": {
					"type": "string"
				},
				"instance": {
					"type": "string"
				},
				"errors": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/handler.ValidationError"
					}
				}
			}
		},
		"handler.ValidationError": {
			"type": "object",
			"properties": {
				"field": {
					"type": "string"
				},
				"message": {
					"type": "string"
				}
			}
		},
		"handler.RegisterRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			}
		},
		"handler.LoginRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			}
		},
		"handler.LoginResponse": {
			"type": "object",
			"properties": {
				"token": {
					"type": "string"
				},
				"tokenType": {
					"type": "string"
				},
				"expiresAt": {
					"type": "string"
				},
				"user": {
					"$ref": "#/definitions/handler.UserResponse"
				}
			}
		},
		"handler.UserResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				}
			}
		},
		"handler.UpdateProfileRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				}
			}
		},
		"handler.DeleteAccountRequest": {
			"type": "object",
			"properties": {
				"password": {
					"type": "string"
				}
			}
		},
		"handler.ChangePasswordRequest": {
			"type": "object",
			"properties": {
				"currentPassword": {
					"type": "string"
				},
				"newPassword": {
					"type": "string"
				}
			}
		},
		"handler.BudgetRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				},
				"limit": {
					"type": "string"
				},
				"category": {
					"type": "string"
				},
				"startDate": {
					"type": "string"
				},
				"endDate": {
					"type": "string"
				}
			}
		},
		"handler.BudgetResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"userId": {
					"type": "integer"
				},
				"name": {
					"type": "string"
				},
				"limit": {
					"type": "string"
				},
				"category": {
					"type": "string"
				},
				"startDate": {
					"type": "string"
				},
				"endDate": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				},
				"updatedAt": {
					"type": "string"
				}
			}
		},
		"handler.BudgetAmountResponse": {
			"type": "object",
			"properties": {
				"budgetId": {
					"type": "integer"
				},
				"amount": {
					"type": "string"
				}
			}
		},
		"handler.BudgetSummaryResponse": {
			"type": "object",
			"properties": {
				"budgetId": {
					"type": "integer"
				},
				"budgetName": {
					"type": "string"
				},
				"category": {
					"type": "string"
				},
				"limit": {
					"type": "string"
				},
				"totalSpent": {
					"type": "string"
				},
				"totalIncome": {
					"type": "string"
				},
				"balance": {
					"type": "string"
				},
				"remaining": {
					"type": "string"
				},
				"percentUsed": {
					"type": "string"
				},
				"status": {
					"type": "string",
					"enum": [
						"on_track",
						"warning",
						"exceeded"
					]
				},
				"startDate": {
					"type": "string"
				},
				"endDate": {
					"type": "string"
				}
			}
		},
		"handler.TransactionRequest": {
			"type": "object",
			"properties": {
				"userId": {
					"type": "integer"
				},
				"budgetId": {
					"type": "integer"
				},
				"categoryId": {
					"type": "integer"
				},
				"amount": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"type": {
					"type": "string",
					"enum": [
						"INCOME",
						"EXPENSE"
					]
				},
				"date": {
					"type": "string"
				}
			}
		},
		"handler.TransactionResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"userId": {
					"type": "integer"
				},
				"budgetId": {
					"type": "integer"
				},
				"categoryId": {
					"type": "integer"
				},
				"categoryName": {
					"type": "string"
				},
				"amount": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"type": {
					"type": "string"
				},
				"date": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				},
				"updatedAt": {
					"type": "string"
				}
			}
		},
		"handler.CreateCategoryRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				}
			}
		},
		"handler.CategoryResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"name": {
					"type": "string"
				},
				"isDefault": {
					"type": "boolean"
				},
				"userId": {
					"type": "integer"
				},
				"createdAt": {
					"type": "string"
				}
			}
		},
		"handler.CategorySpendingResponse": {
			"type": "object",
			"properties": {
				"category": {
					"type": "string"
				},
				"totalAmount": {
					"type": "string"
				},
				"transactionCount": {
					"type": "integer"
				}
			}
		},
		"handler.CategoryExpenseReportResponse": {
			"type": "object",
			"properties": {
				"startDate": {
					"type": "string"
				},
				"endDate": {
					"type": "string"
				},
				"total": {
					"type": "string"
				},
				"categories": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/handler.CategorySpendingResponse"
					}
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Type \"Bearer\" followed by a space and the access token.",
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Budgetly API",
	Description:      "Personal budgets, transactions, categories and spending reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
