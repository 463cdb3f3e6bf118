// Package docs holds the OpenAPI document served under /swagger. Regenerate it
// with `swag init -g cmd/api/main.go` after changing handler annotations.
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
        "/api/comparison": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Average concentrations per station",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ComparisonView"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/geocode": {
            "get": {
                "produces": ["application/json"],
                "tags": ["geocode"],
                "summary": "Resolve a station to coordinates",
                "parameters": [
                    {"type": "string", "description": "station name", "name": "station", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Resolution"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/hourly": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Hour-of-day profile of a pollutant",
                "parameters": [
                    {"type": "string", "default": "PM2.5", "description": "pollutant", "name": "pollutant", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.HourlyView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/map": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Air quality category map of the last week",
                "parameters": [
                    {"type": "string", "default": "PM2.5", "description": "pollutant", "name": "pollutant", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MapView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/pollutants": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "List pollutants present in the dataset",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.PollutantInfo"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/stations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "List monitoring stations",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/trends": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Monthly pollutant trend at a station",
                "parameters": [
                    {"type": "string", "description": "station name", "name": "station", "in": "query", "required": true},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "pollutants, repeatable", "name": "pollutant", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TrendView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "aqi.Category": {
            "type": "object",
            "properties": {"label": {"type": "string"}, "color": {"type": "string"}}
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "models.CategoryGroup": {
            "type": "object",
            "properties": {
                "category": {"$ref": "#/definitions/aqi.Category"},
                "points": {"type": "array", "items": {"$ref": "#/definitions/models.MapPoint"}}
            }
        },
        "models.ComparisonView": {
            "type": "object",
            "properties": {
                "pollutants": {"type": "array", "items": {"type": "string"}},
                "stations": {"type": "array", "items": {"$ref": "#/definitions/models.StationAverage"}},
                "highest_station": {"type": "string"}
            }
        },
        "models.Coordinates": {
            "type": "object",
            "properties": {"latitude": {"type": "number"}, "longitude": {"type": "number"}}
        },
        "models.HourlyMean": {
            "type": "object",
            "properties": {"hour": {"type": "integer"}, "mean": {"type": "number"}}
        },
        "models.HourlyView": {
            "type": "object",
            "properties": {
                "pollutant": {"type": "string"},
                "unit": {"type": "string"},
                "hours": {"type": "array", "items": {"$ref": "#/definitions/models.HourlyMean"}},
                "best_hour": {"type": "integer"},
                "best_value": {"type": "number"},
                "worst_hour": {"type": "integer"},
                "worst_value": {"type": "number"},
                "morning": {"type": "number"},
                "afternoon": {"type": "number"},
                "night": {"type": "number"}
            }
        },
        "models.MapPoint": {
            "type": "object",
            "properties": {
                "station": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "value": {"type": "number"},
                "category": {"type": "string"},
                "color": {"type": "string"},
                "size": {"type": "number"}
            }
        },
        "models.MapView": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "enum": ["category", "simple"]},
                "pollutant": {"type": "string"},
                "unit": {"type": "string"},
                "title": {"type": "string"},
                "from": {"type": "string"},
                "to": {"type": "string"},
                "groups": {"type": "array", "items": {"$ref": "#/definitions/models.CategoryGroup"}},
                "points": {"type": "array", "items": {"$ref": "#/definitions/models.MapPoint"}},
                "geojson": {"type": "object"},
                "warnings": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.PollutantInfo": {
            "type": "object",
            "properties": {"pollutant": {"type": "string"}, "unit": {"type": "string"}}
        },
        "models.StationAverage": {
            "type": "object",
            "properties": {
                "station": {"type": "string"},
                "means": {"type": "object", "additionalProperties": {"type": "number"}},
                "total": {"type": "number"},
                "highest": {"type": "boolean"}
            }
        },
        "models.TrendPoint": {
            "type": "object",
            "properties": {
                "month": {"type": "string"},
                "values": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "models.TrendView": {
            "type": "object",
            "properties": {
                "station": {"type": "string"},
                "pollutants": {"type": "array", "items": {"type": "string"}},
                "points": {"type": "array", "items": {"$ref": "#/definitions/models.TrendPoint"}}
            }
        },
        "service.Resolution": {
            "type": "object",
            "properties": {
                "station": {"type": "string"},
                "coordinates": {"$ref": "#/definitions/models.Coordinates"},
                "status": {"type": "string", "enum": ["hit", "resolved", "not_found", "failed"]},
                "persisted": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Air Quality Dashboard API",
	Description:      "Pollutant trends, station comparison, hourly profiles and AQI category maps.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
