package server

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	"github.com/spoton-app/spoton/config"
	"github.com/spoton-app/spoton/net/resp"
	"github.com/spoton-app/spoton/version"
)

// openAPIHandler serves the document built from the routes registered at
// request time, so groups attached after New are included.
func openAPIHandler(e *gin.Engine, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp.Success(c.Writer, BuildOpenAPI(cfg.ProjectName, e.Routes()))
	}
}

// BuildOpenAPI describes routes as an OpenAPI 3 document.
func BuildOpenAPI(title string, routes gin.RoutesInfo) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   title,
			Version: version.Version,
		},
		Paths: openapi3.NewPaths(),
	}

	sorted := make(gin.RoutesInfo, len(routes))
	copy(sorted, routes)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Method < sorted[j].Method
	})

	for _, r := range sorted {
		path, params := openAPIPath(r.Path)

		item := doc.Paths.Value(path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(path, item)
		}

		op := openapi3.NewOperation()
		op.OperationID = operationID(r.Method, path)
		op.Summary = summaryFor(r.Method, r.Path)
		for _, name := range params {
			op.AddParameter(openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema()))
		}
		op.AddResponse(http.StatusOK, openapi3.NewResponse().
			WithDescription("Successful Response").
			WithJSONSchema(responseSchema(r.Method, r.Path)))

		item.SetOperation(r.Method, op)
	}

	return doc
}

// openAPIPath rewrites gin's :name and *name segments as {name}.
func openAPIPath(path string) (string, []string) {
	segments := strings.Split(path, "/")
	var params []string
	for i, seg := range segments {
		if len(seg) > 1 && (seg[0] == ':' || seg[0] == '*') {
			params = append(params, seg[1:])
			segments[i] = "{" + seg[1:] + "}"
		}
	}
	return strings.Join(segments, "/"), params
}

func operationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(path, "/") {
		seg = strings.Trim(seg, "{}")
		if seg == "" {
			continue
		}
		b.WriteByte('_')
		b.WriteString(strings.NewReplacer(".", "_", "-", "_").Replace(seg))
	}
	return b.String()
}

func summaryFor(method, path string) string {
	if method == http.MethodGet && path == HealthPath {
		return "Health"
	}
	return fmt.Sprintf("%s %s", method, path)
}

func responseSchema(method, path string) *openapi3.Schema {
	if method == http.MethodGet && path == HealthPath {
		return openapi3.NewObjectSchema().WithProperty("status", openapi3.NewStringSchema())
	}
	return openapi3.NewObjectSchema()
}
