package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/budgetly/budgetly-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/swaggo/swag"
)

const jsonMediaType = "application/json"

// OpenAPI3Spec is the subset of an OpenAPI 3.0 document the converter emits
type OpenAPI3Spec struct {
	OpenAPI    string         `json:"openapi"`
	Info       map[string]any `json:"info"`
	Servers    []Server       `json:"servers"`
	Paths      map[string]any `json:"paths"`
	Components map[string]any `json:"components,omitempty"`
	Security   []any          `json:"security,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// OpenAPIHandler serves the registered Swagger 2.0 document converted to
// OpenAPI 3.0. The conversion runs once, on first request.
type OpenAPIHandler struct {
	servers []Server

	once sync.Once
	spec *OpenAPI3Spec
	err  error
}

// NewOpenAPIHandler creates an OpenAPIHandler listing the given public base
// URL alongside the local development server
func NewOpenAPIHandler(publicURL string) *OpenAPIHandler {
	servers := []Server{{URL: "http://localhost:8080/api/v1", Description: "Local Development"}}
	if publicURL != "" {
		servers = append(servers, Server{URL: strings.TrimRight(publicURL, "/") + "/api/v1", Description: "Production"})
	}
	return &OpenAPIHandler{servers: servers}
}

// ServeOpenAPI3Spec handles GET /openapi.json
func (h *OpenAPIHandler) ServeOpenAPI3Spec(c echo.Context) error {
	h.once.Do(func() {
		h.spec, h.err = h.convert()
	})
	if h.err != nil {
		log.Error().Err(h.err).Msg("Failed to build OpenAPI document")
		return NewInternalError(c, "Failed to build API document")
	}
	return c.JSON(http.StatusOK, h.spec)
}

func (h *OpenAPIHandler) convert() (*OpenAPI3Spec, error) {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return nil, fmt.Errorf("read swagger doc: %w", err)
	}
	return convertSwagger2([]byte(doc), h.servers)
}

// convertSwagger2 rewrites a Swagger 2.0 JSON document as OpenAPI 3.0
func convertSwagger2(raw []byte, servers []Server) (*OpenAPI3Spec, error) {
	var swagger map[string]any
	if err := json.Unmarshal(raw, &swagger); err != nil {
		return nil, fmt.Errorf("parse swagger doc: %w", err)
	}

	spec := &OpenAPI3Spec{
		OpenAPI: "3.0.3",
		Servers: servers,
		Paths:   map[string]any{},
	}
	spec.Info, _ = swagger["info"].(map[string]any)

	paths, _ := swagger["paths"].(map[string]any)
	for path, item := range paths {
		operations, ok := item.(map[string]any)
		if !ok {
			continue
		}
		converted := make(map[string]any, len(operations))
		for method, op := range operations {
			if opMap, ok := op.(map[string]any); ok {
				converted[method] = convertOperation(opMap)
			}
		}
		spec.Paths[path] = converted
	}

	components := map[string]any{}
	if definitions, ok := swagger["definitions"].(map[string]any); ok {
		components["schemas"] = rewriteRefs(definitions)
	}
	if schemes, ok := swagger["securityDefinitions"].(map[string]any); ok {
		components["securitySchemes"] = convertSecuritySchemes(schemes)
	}
	if len(components) > 0 {
		spec.Components = components
	}
	return spec, nil
}

// convertOperation moves body parameters into requestBody, gives the other
// parameters a schema and wraps response schemas in a JSON content entry
func convertOperation(op map[string]any) map[string]any {
	out := make(map[string]any, len(op))
	for key, value := range op {
		switch key {
		case "parameters", "responses", "consumes", "produces":
		default:
			out[key] = rewriteRefs(value)
		}
	}

	if params, ok := op["parameters"].([]any); ok {
		var converted []any
		for _, p := range params {
			param, ok := p.(map[string]any)
			if !ok {
				continue
			}
			if param["in"] == "body" {
				out["requestBody"] = map[string]any{
					"description": param["description"],
					"required":    param["required"],
					"content":     jsonContent(param["schema"]),
				}
				continue
			}
			converted = append(converted, convertParameter(param))
		}
		if len(converted) > 0 {
			out["parameters"] = converted
		}
	}

	if responses, ok := op["responses"].(map[string]any); ok {
		converted := make(map[string]any, len(responses))
		for status, r := range responses {
			resp, ok := r.(map[string]any)
			if !ok {
				continue
			}
			description, _ := resp["description"].(string)
			entry := map[string]any{"description": description}
			if schema, ok := resp["schema"]; ok {
				entry["content"] = jsonContent(schema)
			}
			converted[status] = entry
		}
		out["responses"] = converted
	}
	return out
}

func convertParameter(param map[string]any) map[string]any {
	out := map[string]any{}
	schema := map[string]any{}
	for key, value := range param {
		switch key {
		case "name", "in", "description", "required":
			out[key] = value
		case "type", "format", "enum", "default", "minimum", "maximum", "items":
			schema[key] = rewriteRefs(value)
		}
	}
	if len(schema) > 0 {
		out["schema"] = schema
	}
	return out
}

// convertSecuritySchemes maps apiKey definitions named after a bearer header
// to http bearer schemes; anything else passes through
func convertSecuritySchemes(schemes map[string]any) map[string]any {
	out := make(map[string]any, len(schemes))
	for name, s := range schemes {
		scheme, ok := s.(map[string]any)
		if ok && scheme["type"] == "apiKey" && scheme["name"] == echo.HeaderAuthorization {
			out[name] = map[string]any{"type": "http", "scheme": "bearer", "bearerFormat": "JWT"}
			continue
		}
		out[name] = s
	}
	return out
}

func jsonContent(schema any) map[string]any {
	return map[string]any{jsonMediaType: map[string]any{"schema": rewriteRefs(schema)}}
}

// rewriteRefs points every $ref at components/schemas instead of definitions
func rewriteRefs(data any) any {
	switch v := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				out[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			out[key] = rewriteRefs(value)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = rewriteRefs(item)
		}
		return out
	default:
		return data
	}
}
