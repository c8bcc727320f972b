package openapi

import (
	"fmt"
	"strconv"

	"github.com/mark3labs/struct2openapi/schema"
)

// Route is one registration against a document: a method on a path with an
// optional query-parameter record, an optional request-body record, and the
// record returned for Status.
//
//	doc.AddRoute(openapi.Route{
//		Method:      openapi.MethodGet,
//		Path:        "/pets",
//		Query:       ListPetsQuery{},
//		Status:      200,
//		Description: "the pets",
//		Response:    PetList{},
//	})
type Route struct {
	Method      Method
	Path        string
	Query       schema.QueryDescriber
	Body        schema.Describer
	Status      int
	Description string
	Response    schema.Describer
}

// AddRoute registers r, adding a new method entry when the path already
// exists. Registering the same method twice on one path is not supported and
// panics, as do an unknown method, an empty path, a request body on a method
// that carries none, and a missing response.
func (d *Document) AddRoute(r Route) *Document {
	if !r.Method.Valid() {
		panic(fmt.Sprintf("openapi: unsupported method %q", string(r.Method)))
	}
	if r.Path == "" {
		panic("openapi: empty path")
	}
	if r.Response == nil {
		panic(fmt.Sprintf("openapi: %s %s: missing response", r.Method, r.Path))
	}
	if r.Body != nil && !r.Method.AllowsBody() {
		panic(fmt.Sprintf("openapi: %s %s: request body not allowed", r.Method, r.Path))
	}
	key := statusKey(r.Status)

	item, ok := d.Paths[r.Path]
	if !ok {
		item = &PathItem{}
		d.Paths[r.Path] = item
	}
	slot := item.slot(r.Method)
	if *slot != nil {
		panic(fmt.Sprintf("openapi: %s %s: method already registered", r.Method, r.Path))
	}

	op := &Operation{Responses: make(map[string]*Response)}
	if r.Query != nil {
		op.Parameters = r.Query.QueryParameters()
	}
	if r.Body != nil {
		op.RequestBody = &RequestBody{
			Content:  jsonContent(r.Body.JSONSchema()),
			Required: true,
		}
	}
	op.Responses[key] = &Response{
		Description: r.Description,
		Content:     jsonContent(r.Response.JSONSchema()),
	}
	*slot = op
	return d
}

// AddResponse adds a further status code to an operation registered with
// AddRoute. It panics when the operation does not exist or the status is
// already described.
func (d *Document) AddResponse(method Method, path string, status int, description string, resp schema.Describer) *Document {
	op := d.Operation(method, path)
	if op == nil {
		panic(fmt.Sprintf("openapi: %s %s: no such operation", method, path))
	}
	key := statusKey(status)
	if _, ok := op.Responses[key]; ok {
		panic(fmt.Sprintf("openapi: %s %s: status %s already registered", method, path, key))
	}
	r := &Response{Description: description}
	if resp != nil {
		r.Content = jsonContent(resp.JSONSchema())
	}
	op.Responses[key] = r
	return d
}

func statusKey(status int) string {
	if status < 100 || status > 599 {
		panic(fmt.Sprintf("openapi: invalid status code %d", status))
	}
	return strconv.Itoa(status)
}
