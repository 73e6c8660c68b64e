package api

import (
	"encoding/json"
	"net/http"
)

const docsHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Prompt Catalog API Documentation</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui.css" />
    <style>
        html { box-sizing: border-box; overflow-y: scroll; }
        *, *:before, *:after { box-sizing: inherit; }
        body { margin:0; background: #fafafa; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: '/api/openapi.json',
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [SwaggerUIBundle.presets.apis],
            });
        };
    </script>
</body>
</html>`

// handleOpenAPI serves the OpenAPI documentation interface
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(docsHTML))
}

// handleOpenAPISpec serves the OpenAPI JSON specification
func (s *Server) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(getOpenAPISpec(s.version))
}

// operation builds one OpenAPI operation object
func operation(summary string, params []map[string]interface{}, body string) map[string]interface{} {
	op := map[string]interface{}{
		"summary": summary,
		"responses": map[string]interface{}{
			"200": map[string]interface{}{
				"description": "Success",
				"content": map[string]interface{}{
					"application/json": map[string]interface{}{
						"schema": map[string]interface{}{"$ref": "#/components/schemas/APIResponse"},
					},
				},
			},
			"default": map[string]interface{}{
				"description": "Error",
				"content": map[string]interface{}{
					"application/json": map[string]interface{}{
						"schema": map[string]interface{}{"$ref": "#/components/schemas/ErrorResponse"},
					},
				},
			},
		},
	}
	if len(params) > 0 {
		op["parameters"] = params
	}
	if body != "" {
		op["requestBody"] = map[string]interface{}{
			"required": true,
			"content": map[string]interface{}{
				"application/json": map[string]interface{}{
					"schema": map[string]interface{}{
						"type":       "object",
						"required":   []string{body},
						"properties": map[string]interface{}{body: map[string]interface{}{"type": "string"}},
					},
				},
			},
		}
	}
	return op
}

func queryParam(name, description string, typ string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    false,
		"schema":      map[string]interface{}{"type": typ},
	}
}

// getOpenAPISpec returns the OpenAPI 3.0 specification
func getOpenAPISpec(version string) map[string]interface{} {
	if version == "" {
		version = "dev"
	}
	post := func(summary, body string) map[string]interface{} {
		return map[string]interface{}{"post": operation(summary, nil, body)}
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       "Prompt Catalog API",
			"description": "Browse a catalog of prompt templates and drive a shared view state",
			"version":     version,
		},
		"servers": []map[string]interface{}{
			{"url": "http://localhost:8080", "description": "Development server"},
		},
		"paths": map[string]interface{}{
			"/health": map[string]interface{}{"get": operation("Service health", nil, "")},
			"/api/v1/categories": map[string]interface{}{
				"get": operation("List categories in collation order", nil, ""),
			},
			"/api/v1/records": map[string]interface{}{
				"get": operation("List all records in catalog order", nil, ""),
			},
			"/api/v1/records/{id}": map[string]interface{}{
				"get": operation("Get one record; unknown ids return suggestions", []map[string]interface{}{
					{"name": "id", "in": "path", "required": true, "schema": map[string]interface{}{"type": "string"}},
				}, ""),
			},
			"/api/v1/resolve": map[string]interface{}{
				"get": operation("Resolve a route string with filters without touching shared state", []map[string]interface{}{
					queryParam("route", "Route string such as #/category/marketing or #/prompt/r1", "string"),
					queryParam("q", "Search text", "string"),
					queryParam("favorites", "Restrict to favorites", "boolean"),
				}, ""),
			},
			"/api/v1/state":                map[string]interface{}{"get": operation("Current shared view", nil, "")},
			"/api/v1/state/navigate":       post("Navigate to a route string", "route"),
			"/api/v1/state/search":         post("Set the search text", "query"),
			"/api/v1/state/category":       post("Click a category by slug", "slug"),
			"/api/v1/state/clear-category": post("Clear the active category", ""),
			"/api/v1/state/favorites-only": post("Toggle the favorites-only filter", ""),
			"/api/v1/state/open":           post("Open a record's detail", "id"),
			"/api/v1/state/dismiss":        post("Close the detail", ""),
			"/api/v1/state/favorite":       post("Toggle a record's favorite", "id"),
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"APIResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"success":   map[string]interface{}{"type": "boolean"},
						"data":      map[string]interface{}{"type": "object"},
						"message":   map[string]interface{}{"type": "string"},
						"timestamp": map[string]interface{}{"type": "string", "format": "date-time"},
					},
				},
				"ErrorResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"success":   map[string]interface{}{"type": "boolean"},
						"error":     map[string]interface{}{"type": "string"},
						"code":      map[string]interface{}{"type": "string"},
						"details":   map[string]interface{}{"type": "string"},
						"timestamp": map[string]interface{}{"type": "string", "format": "date-time"},
					},
				},
			},
		},
	}
}
