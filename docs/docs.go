// Package docs holds the OpenAPI document served under /swagger.
// Regenerate with `swag init -g cmd/api/main.go` after changing handler annotations.
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
        "/auth/me": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Returns the caller with roles and makes sure a user document exists for timeline authorship",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Auth"
                ],
                "summary": "Get current authenticated user",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.AuthUserDTO"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/dashboard": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Counts, stock alerts, firm totals and recent projects with their costs",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Dashboard"
                ],
                "summary": "Dashboard snapshot",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.DashboardDTO"
                        }
                    }
                }
            }
        },
        "/export/finance.xlsx": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ],
                "tags": [
                    "Export"
                ],
                "summary": "Ledger and profit summary spreadsheet",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Earliest date (YYYY-MM-DD, inclusive)",
                        "name": "from",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Latest date (YYYY-MM-DD, inclusive)",
                        "name": "to",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    }
                }
            }
        },
        "/export/materials.xlsx": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ],
                "tags": [
                    "Export"
                ],
                "summary": "Material stock spreadsheet",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    }
                }
            }
        },
        "/finance/partners/{id}/share": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "An unknown partner gets a zero share",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Finance"
                ],
                "summary": "One partner's part of the net profit",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Partner ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Earliest date (YYYY-MM-DD, inclusive)",
                        "name": "from",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Latest date (YYYY-MM-DD, inclusive)",
                        "name": "to",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.PartnerShareDTO"
                        }
                    }
                }
            }
        },
        "/finance/summary": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Finance"
                ],
                "summary": "Firm totals with the per-partner split",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Earliest date (YYYY-MM-DD, inclusive)",
                        "name": "from",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Latest date (YYYY-MM-DD, inclusive)",
                        "name": "to",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.FinanceSummaryDTO"
                        }
                    }
                }
            }
        },
        "/jobs": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Jobs"
                ],
                "summary": "List scheduled jobs",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/jobs/{name}/run": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "tags": [
                    "Jobs"
                ],
                "summary": "Run a scheduled job now",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Job name",
                        "name": "name",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/lookups/{kind}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Lookups"
                ],
                "summary": "List lookups of a kind",
                "parameters": [
                    {
                        "type": "string",
                        "enum": [
                            "categories",
                            "suppliers",
                            "units",
                            "project-types",
                            "project-statuses",
                            "firms",
                            "teams"
                        ],
                        "description": "Lookup kind",
                        "name": "kind",
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
                                "$ref": "#/definitions/domain.LookupDTO"
                            }
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Lookups"
                ],
                "summary": "Create a lookup",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Lookup kind",
                        "name": "kind",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Lookup data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.LookupRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/domain.LookupDTO"
                        }
                    }
                }
            }
        },
        "/lookups/{kind}/{id}": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Lookups"
                ],
                "summary": "Update a lookup",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Lookup kind",
                        "name": "kind",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Lookup ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Lookup data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.LookupRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.LookupDTO"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "tags": [
                    "Lookups"
                ],
                "summary": "Delete a lookup",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Lookup kind",
                        "name": "kind",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Lookup ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/materials": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Get paginated list of materials with stock status",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Materials"
                ],
                "summary": "List materials",
                "parameters": [
                    {
                        "type": "integer",
                        "default": 1,
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "default": 20,
                        "description": "Items per page (max 200)",
                        "name": "pageSize",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Search by name or description",
                        "name": "search",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Filter by category",
                        "name": "categoryId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Filter by supplier",
                        "name": "supplierId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "enum": [
                            "good",
                            "low",
                            "critical"
                        ],
                        "description": "Filter by stock status",
                        "name": "stockStatus",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "enum": [
                            "createdAt",
                            "updatedAt",
                            "name",
                            "quantity",
                            "priceNetto",
                            "minQuantity"
                        ],
                        "description": "Sort field",
                        "name": "sortBy",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "enum": [
                            "asc",
                            "desc"
                        ],
                        "default": "desc",
                        "description": "Sort order",
                        "name": "sortOrder",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/domain.PaginatedResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/domain.MaterialDTO"
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
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Materials"
                ],
                "summary": "Create material",
                "parameters": [
                    {
                        "description": "Material data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.CreateMaterialRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/domain.MaterialDTO"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/materials/low-stock": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Materials"
                ],
                "summary": "List materials that need reordering",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.MaterialDTO"
                            }
                        }
                    }
                }
            }
        },
        "/materials/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Materials"
                ],
                "summary": "Get material by ID",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Material ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.MaterialDTO"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Overwrites every editable field of the material",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Materials"
                ],
                "summary": "Update material",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Material ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Material data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.UpdateMaterialRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.MaterialDTO"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Projects that used the material keep their rows",
                "tags": [
                    "Materials"
                ],
                "summary": "Delete material",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Material ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/materials/{id}/quantity": {
            "patch": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Materials"
                ],
                "summary": "Adjust stock on hand",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Material ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Quantity delta",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.AdjustQuantityRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.MaterialDTO"
                        }
                    }
                }
            }
        },
        "/partners": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Finance"
                ],
                "summary": "List partners",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.PartnerDTO"
                            }
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Rejected with 409 when the shares of all partners would exceed 1",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Finance"
                ],
                "summary": "Create partner",
                "parameters": [
                    {
                        "description": "Partner data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.CreatePartnerRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/domain.PartnerDTO"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            }
        },
        "/partners/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Finance"
                ],
                "summary": "Get partner by ID",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Partner ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.PartnerDTO"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Finance"
                ],
                "summary": "Update partner",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Partner ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Partner data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.UpdatePartnerRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.PartnerDTO"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Transactions that reference the partner keep a dangling reference",
                "tags": [
                    "Finance"
                ],
                "summary": "Delete partner",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Partner ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/projects": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Paginated projects with their recomputed total cost",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Projects"
                ],
                "summary": "List projects",
                "parameters": [
                    {
                        "type": "integer",
                        "default": 1,
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "default": 20,
                        "description": "Items per page (max 200)",
                        "name": "pageSize",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Search by number, city or address",
                        "name": "search",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Filter by project type",
                        "name": "typeId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Filter by project status",
                        "name": "statusId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Filter by firm",
                        "name": "firmId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Filter by team",
                        "name": "teamId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "enum": [
                            "createdAt",
                            "updatedAt",
                            "number",
                            "city",
                            "startDate",
                            "deadlineDate",
                            "totalBudget"
                        ],
                        "description": "Sort field",
                        "name": "sortBy",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "enum": [
                            "asc",
                            "desc"
                        ],
                        "default": "desc",
                        "description": "Sort order",
                        "name": "sortOrder",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/domain.PaginatedResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/domain.ActiveProjectDTO"
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
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Projects"
                ],
                "summary": "Create project",
                "parameters": [
                    {
                        "description": "Project data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.CreateProjectRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/domain.ProjectWithDetailsDTO"
                        }
                    }
                }
            }
        },
        "/projects/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Projects"
                ],
                "summary": "Get project with materials, costs and timeline",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.ProjectWithDetailsDTO"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "description": "Overwrites the scalar fields and references; material, cost and timeline lists are kept",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Projects"
                ],
                "summary": "Update project",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Project data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.UpdateProjectRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.ProjectWithDetailsDTO"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "tags": [
                    "Projects"
                ],
                "summary": "Delete project",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/projects/{id}/costs": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Projects"
                ],
                "summary": "Add an additional cost",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Cost",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.AddAdditionalCostRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/domain.ProjectWithDetailsDTO"
                        }
                    }
                }
            },
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Projects"
                ],
                "summary": "Cost breakdown of a project",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.CostBreakdownDTO"
                        }
                    }
                }
            }
        },
        "/projects/{id}/costs/{key}": {
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Projects"
                ],
                "summary": "Remove an additional cost",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Cost key",
                        "name": "key",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.ProjectWithDetailsDTO"
                        }
                    }
                }
            }
        },
        "/projects/{id}/materials": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Projects"
                ],
                "summary": "Add a used material row",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Material and quantity",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.AddUsedMaterialRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/domain.ProjectWithDetailsDTO"
                        }
                    }
                }
            }
        },
        "/projects/{id}/materials/{key}": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Projects"
                ],
                "summary": "Change the quantity of a used material row",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Row key",
                        "name": "key",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Quantity",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.UpdateUsedMaterialRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.ProjectWithDetailsDTO"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Projects"
                ],
                "summary": "Remove a used material row",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Row key",
                        "name": "key",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.ProjectWithDetailsDTO"
                        }
                    }
                }
            }
        },
        "/projects/{id}/recalculate": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Projects"
                ],
                "summary": "Rewrite totalBudget from the current lists and material prices",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.ProjectWithDetailsDTO"
                        }
                    }
                }
            }
        },
        "/projects/{id}/timeline": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Projects"
                ],
                "summary": "Add a timeline comment authored by the caller",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Comment",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.AddTimelineEventRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/domain.ProjectWithDetailsDTO"
                        }
                    }
                }
            }
        },
        "/projects/{id}/timeline/{key}": {
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Projects"
                ],
                "summary": "Remove a timeline comment",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Project ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Event key",
                        "name": "key",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.ProjectWithDetailsDTO"
                        }
                    }
                }
            }
        },
        "/reports": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Reports"
                ],
                "summary": "List stored reports",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Name prefix, e.g. finance_",
                        "name": "prefix",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/storage.ReportInfo"
                            }
                        }
                    }
                }
            }
        },
        "/reports/finance": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Reports"
                ],
                "summary": "Generate and store the finance report of one month",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Month (YYYY-MM)",
                        "name": "month",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/reports/{name}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ],
                "tags": [
                    "Reports"
                ],
                "summary": "Download a stored report",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Report name",
                        "name": "name",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/domain.APIError"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "tags": [
                    "Reports"
                ],
                "summary": "Delete a stored report",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Report name",
                        "name": "name",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/transactions": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Finance"
                ],
                "summary": "List transactions",
                "parameters": [
                    {
                        "type": "integer",
                        "default": 1,
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "default": 20,
                        "description": "Items per page (max 200)",
                        "name": "pageSize",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "enum": [
                            "expense",
                            "revenue"
                        ],
                        "description": "Filter by type",
                        "name": "type",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "enum": [
                            "supplies",
                            "project",
                            "salary",
                            "other"
                        ],
                        "description": "Filter by category",
                        "name": "category",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Filter by partner",
                        "name": "partnerId",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Earliest date (YYYY-MM-DD, inclusive)",
                        "name": "from",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Latest date (YYYY-MM-DD, inclusive)",
                        "name": "to",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "enum": [
                            "createdAt",
                            "updatedAt",
                            "date",
                            "amount"
                        ],
                        "description": "Sort field",
                        "name": "sortBy",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "enum": [
                            "asc",
                            "desc"
                        ],
                        "default": "desc",
                        "description": "Sort order",
                        "name": "sortOrder",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/domain.PaginatedResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/domain.TransactionDTO"
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
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Finance"
                ],
                "summary": "Record a transaction",
                "parameters": [
                    {
                        "description": "Transaction data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.CreateTransactionRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/domain.TransactionDTO"
                        }
                    }
                }
            }
        },
        "/transactions/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Finance"
                ],
                "summary": "Get transaction by ID",
                "parameters": [
                    {
                        "type": "string",
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
                            "$ref": "#/definitions/domain.TransactionDTO"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Finance"
                ],
                "summary": "Update transaction",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Transaction ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Transaction data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.UpdateTransactionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.TransactionDTO"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    },
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "tags": [
                    "Finance"
                ],
                "summary": "Delete transaction",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Transaction ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        }
    },
    "definitions": {
        "domain.APIError": {
            "type": "object",
            "properties": {
                "detail": {
                    "type": "string"
                },
                "errors": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                },
                "status": {
                    "type": "integer"
                },
                "title": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                }
            }
        },
        "domain.ActiveProjectDTO": {
            "type": "object",
            "properties": {
                "address": {
                    "type": "string"
                },
                "budgetInSync": {
                    "type": "boolean"
                },
                "city": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "deadlineDate": {
                    "type": "string"
                },
                "endDate": {
                    "type": "string"
                },
                "firm": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "id": {
                    "type": "string"
                },
                "number": {
                    "type": "string"
                },
                "postalCode": {
                    "type": "string"
                },
                "startDate": {
                    "type": "string"
                },
                "status": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "team": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "totalBudget": {
                    "type": "number"
                },
                "totalCost": {
                    "type": "number"
                },
                "type": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "updatedAt": {
                    "type": "string"
                }
            }
        },
        "domain.AddAdditionalCostRequest": {
            "type": "object",
            "required": [
                "description"
            ],
            "properties": {
                "amount": {
                    "type": "number"
                },
                "description": {
                    "type": "string"
                }
            }
        },
        "domain.AddTimelineEventRequest": {
            "type": "object",
            "required": [
                "comment"
            ],
            "properties": {
                "comment": {
                    "type": "string"
                },
                "timestamp": {
                    "type": "string"
                }
            }
        },
        "domain.AddUsedMaterialRequest": {
            "type": "object",
            "required": [
                "materialId"
            ],
            "properties": {
                "materialId": {
                    "type": "string"
                },
                "quantity": {
                    "type": "number"
                }
            }
        },
        "domain.AdditionalCostDTO": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "number"
                },
                "description": {
                    "type": "string"
                },
                "key": {
                    "type": "string"
                }
            }
        },
        "domain.AdjustQuantityRequest": {
            "type": "object",
            "required": [
                "delta"
            ],
            "properties": {
                "delta": {
                    "type": "number"
                }
            }
        },
        "domain.AuthUserDTO": {
            "type": "object",
            "properties": {
                "authType": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "externalId": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "isAdmin": {
                    "type": "boolean"
                },
                "name": {
                    "type": "string"
                },
                "roles": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "domain.CostBreakdownDTO": {
            "type": "object",
            "properties": {
                "additionalCostsTotal": {
                    "type": "number"
                },
                "budgetInSync": {
                    "type": "boolean"
                },
                "materialsCost": {
                    "type": "number"
                },
                "persistedTotal": {
                    "type": "number"
                },
                "totalCost": {
                    "type": "number"
                },
                "unresolvedMaterials": {
                    "type": "integer"
                }
            }
        },
        "domain.CreateMaterialRequest": {
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "categoryId": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "minQuantity": {
                    "type": "number"
                },
                "name": {
                    "type": "string"
                },
                "pieces": {
                    "type": "number"
                },
                "priceNetto": {
                    "type": "number"
                },
                "quantity": {
                    "type": "number"
                },
                "supplierId": {
                    "type": "string"
                },
                "unitId": {
                    "type": "string"
                }
            }
        },
        "domain.CreatePartnerRequest": {
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "name": {
                    "type": "string"
                },
                "share": {
                    "type": "number"
                }
            }
        },
        "domain.CreateProjectRequest": {
            "type": "object",
            "required": [
                "number",
                "startDate"
            ],
            "properties": {
                "address": {
                    "type": "string"
                },
                "city": {
                    "type": "string"
                },
                "deadlineDate": {
                    "type": "string"
                },
                "endDate": {
                    "type": "string"
                },
                "firmId": {
                    "type": "string"
                },
                "number": {
                    "type": "string"
                },
                "postalCode": {
                    "type": "string"
                },
                "startDate": {
                    "type": "string"
                },
                "statusId": {
                    "type": "string"
                },
                "teamId": {
                    "type": "string"
                },
                "typeId": {
                    "type": "string"
                }
            }
        },
        "domain.CreateTransactionRequest": {
            "type": "object",
            "required": [
                "category",
                "date",
                "description",
                "type"
            ],
            "properties": {
                "amount": {
                    "type": "number"
                },
                "category": {
                    "$ref": "#/definitions/domain.TransactionCategory"
                },
                "date": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "partnerId": {
                    "type": "string"
                },
                "type": {
                    "$ref": "#/definitions/domain.TransactionType"
                }
            }
        },
        "domain.DashboardDTO": {
            "type": "object",
            "properties": {
                "finance": {
                    "$ref": "#/definitions/domain.FirmTotalsDTO"
                },
                "generatedAt": {
                    "type": "string"
                },
                "lowStock": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.MaterialDTO"
                    }
                },
                "materialCount": {
                    "type": "integer"
                },
                "partnerCount": {
                    "type": "integer"
                },
                "projectCount": {
                    "type": "integer"
                },
                "recentProjects": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.ActiveProjectDTO"
                    }
                },
                "stockValue": {
                    "type": "number"
                },
                "transactionCount": {
                    "type": "integer"
                }
            }
        },
        "domain.FinanceSummaryDTO": {
            "type": "object",
            "properties": {
                "allocatedShare": {
                    "type": "number"
                },
                "expenses": {
                    "type": "number"
                },
                "from": {
                    "type": "string"
                },
                "grossProfit": {
                    "type": "number"
                },
                "netProfit": {
                    "type": "number"
                },
                "partners": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.PartnerShareDTO"
                    }
                },
                "revenue": {
                    "type": "number"
                },
                "tax": {
                    "type": "number"
                },
                "taxRate": {
                    "type": "number"
                },
                "to": {
                    "type": "string"
                },
                "transactionCount": {
                    "type": "integer"
                },
                "unallocatedAmount": {
                    "type": "number"
                },
                "unallocatedShare": {
                    "type": "number"
                }
            }
        },
        "domain.FirmTotalsDTO": {
            "type": "object",
            "properties": {
                "expenses": {
                    "type": "number"
                },
                "grossProfit": {
                    "type": "number"
                },
                "netProfit": {
                    "type": "number"
                },
                "revenue": {
                    "type": "number"
                },
                "tax": {
                    "type": "number"
                },
                "taxRate": {
                    "type": "number"
                }
            }
        },
        "domain.LookupDTO": {
            "type": "object",
            "properties": {
                "createdAt": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "kind": {
                    "$ref": "#/definitions/domain.LookupKind"
                },
                "name": {
                    "type": "string"
                },
                "updatedAt": {
                    "type": "string"
                }
            }
        },
        "domain.LookupKind": {
            "type": "string",
            "enum": [
                "category",
                "supplier",
                "unit",
                "projectType",
                "projectStatus",
                "firm",
                "team",
                "user"
            ],
            "x-enum-varnames": [
                "LookupCategory",
                "LookupSupplier",
                "LookupUnit",
                "LookupProjectType",
                "LookupProjectStatus",
                "LookupFirm",
                "LookupTeam",
                "LookupUser"
            ]
        },
        "domain.LookupRequest": {
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "description": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                }
            }
        },
        "domain.MaterialDTO": {
            "type": "object",
            "properties": {
                "category": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "createdAt": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "minQuantity": {
                    "type": "number"
                },
                "name": {
                    "type": "string"
                },
                "pieces": {
                    "type": "number"
                },
                "priceNetto": {
                    "type": "number"
                },
                "quantity": {
                    "type": "number"
                },
                "stockColor": {
                    "type": "string"
                },
                "stockStatus": {
                    "type": "string"
                },
                "supplier": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "unit": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "updatedAt": {
                    "type": "string"
                }
            }
        },
        "domain.PaginatedResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "page": {
                    "type": "integer"
                },
                "pageSize": {
                    "type": "integer"
                },
                "total": {
                    "type": "integer"
                },
                "totalPages": {
                    "type": "integer"
                }
            }
        },
        "domain.PartnerDTO": {
            "type": "object",
            "properties": {
                "createdAt": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "share": {
                    "type": "number"
                },
                "updatedAt": {
                    "type": "string"
                }
            }
        },
        "domain.PartnerShareDTO": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "number"
                },
                "name": {
                    "type": "string"
                },
                "partnerId": {
                    "type": "string"
                },
                "share": {
                    "type": "number"
                }
            }
        },
        "domain.ProjectDTO": {
            "type": "object",
            "properties": {
                "address": {
                    "type": "string"
                },
                "city": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "deadlineDate": {
                    "type": "string"
                },
                "endDate": {
                    "type": "string"
                },
                "firm": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "id": {
                    "type": "string"
                },
                "number": {
                    "type": "string"
                },
                "postalCode": {
                    "type": "string"
                },
                "startDate": {
                    "type": "string"
                },
                "status": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "team": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "totalBudget": {
                    "type": "number"
                },
                "type": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "updatedAt": {
                    "type": "string"
                }
            }
        },
        "domain.ProjectWithDetailsDTO": {
            "type": "object",
            "properties": {
                "additionalCosts": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AdditionalCostDTO"
                    }
                },
                "address": {
                    "type": "string"
                },
                "city": {
                    "type": "string"
                },
                "costs": {
                    "$ref": "#/definitions/domain.CostBreakdownDTO"
                },
                "createdAt": {
                    "type": "string"
                },
                "deadlineDate": {
                    "type": "string"
                },
                "endDate": {
                    "type": "string"
                },
                "firm": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "id": {
                    "type": "string"
                },
                "number": {
                    "type": "string"
                },
                "postalCode": {
                    "type": "string"
                },
                "startDate": {
                    "type": "string"
                },
                "status": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "team": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "timeline": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.TimelineEventDTO"
                    }
                },
                "totalBudget": {
                    "type": "number"
                },
                "type": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "updatedAt": {
                    "type": "string"
                },
                "usedMaterials": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.UsedMaterialDTO"
                    }
                }
            }
        },
        "domain.RefDTO": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "resolved": {
                    "type": "boolean"
                }
            }
        },
        "domain.TimelineEventDTO": {
            "type": "object",
            "properties": {
                "author": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "comment": {
                    "type": "string"
                },
                "key": {
                    "type": "string"
                },
                "timestamp": {
                    "type": "string"
                }
            }
        },
        "domain.TransactionCategory": {
            "type": "string",
            "enum": [
                "supplies",
                "project",
                "salary",
                "other"
            ],
            "x-enum-varnames": [
                "CategorySupplies",
                "CategoryProject",
                "CategorySalary",
                "CategoryOther"
            ]
        },
        "domain.TransactionDTO": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "number"
                },
                "category": {
                    "$ref": "#/definitions/domain.TransactionCategory"
                },
                "createdAt": {
                    "type": "string"
                },
                "date": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "partner": {
                    "$ref": "#/definitions/domain.RefDTO"
                },
                "type": {
                    "$ref": "#/definitions/domain.TransactionType"
                },
                "updatedAt": {
                    "type": "string"
                }
            }
        },
        "domain.TransactionType": {
            "type": "string",
            "enum": [
                "expense",
                "revenue"
            ],
            "x-enum-varnames": [
                "TransactionExpense",
                "TransactionRevenue"
            ]
        },
        "domain.UpdateMaterialRequest": {
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "categoryId": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "minQuantity": {
                    "type": "number"
                },
                "name": {
                    "type": "string"
                },
                "pieces": {
                    "type": "number"
                },
                "priceNetto": {
                    "type": "number"
                },
                "quantity": {
                    "type": "number"
                },
                "supplierId": {
                    "type": "string"
                },
                "unitId": {
                    "type": "string"
                }
            }
        },
        "domain.UpdatePartnerRequest": {
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "name": {
                    "type": "string"
                },
                "share": {
                    "type": "number"
                }
            }
        },
        "domain.UpdateProjectRequest": {
            "type": "object",
            "required": [
                "number",
                "startDate"
            ],
            "properties": {
                "address": {
                    "type": "string"
                },
                "city": {
                    "type": "string"
                },
                "deadlineDate": {
                    "type": "string"
                },
                "endDate": {
                    "type": "string"
                },
                "firmId": {
                    "type": "string"
                },
                "number": {
                    "type": "string"
                },
                "postalCode": {
                    "type": "string"
                },
                "startDate": {
                    "type": "string"
                },
                "statusId": {
                    "type": "string"
                },
                "teamId": {
                    "type": "string"
                },
                "typeId": {
                    "type": "string"
                }
            }
        },
        "domain.UpdateTransactionRequest": {
            "type": "object",
            "required": [
                "category",
                "date",
                "description",
                "type"
            ],
            "properties": {
                "amount": {
                    "type": "number"
                },
                "category": {
                    "$ref": "#/definitions/domain.TransactionCategory"
                },
                "date": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "partnerId": {
                    "type": "string"
                },
                "type": {
                    "$ref": "#/definitions/domain.TransactionType"
                }
            }
        },
        "domain.UpdateUsedMaterialRequest": {
            "type": "object",
            "properties": {
                "quantity": {
                    "type": "number"
                }
            }
        },
        "domain.UsedMaterialDTO": {
            "type": "object",
            "properties": {
                "cost": {
                    "type": "number"
                },
                "key": {
                    "type": "string"
                },
                "materialId": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "pieces": {
                    "type": "number"
                },
                "priceNetto": {
                    "type": "number"
                },
                "quantity": {
                    "type": "number"
                },
                "resolved": {
                    "type": "boolean"
                },
                "unit": {
                    "type": "string"
                }
            }
        },
        "storage.ReportInfo": {
            "type": "object",
            "properties": {
                "modifiedAt": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "size": {
                    "type": "integer"
                }
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "description": "API Key for system operations",
            "type": "apiKey",
            "name": "x-api-key",
            "in": "header"
        },
        "BearerAuth": {
            "description": "JWT Bearer token",
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "VDG Dashboard API",
	Description:      "Materials, projects and firm finances for a construction company",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
