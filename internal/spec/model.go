package spec

import "github.com/mark3labs/struct2openapi/openapi"

// Summary is a flattened, deterministic view of a loaded document used for
// reporting.
type Summary struct {
	OpenAPI     string
	Title       string
	Version     string
	Description string
	Servers     []Server
	Tags        []string
	Endpoints   []Endpoint
}

type Server struct {
	URL         string
	Description string
}

type Endpoint struct {
	ID          string // method+path
	Method      openapi.Method
	Path        string
	Summary     string
	Tags        []string
	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   []Response
}

type Parameter struct {
	Name     string
	In       string // path|query|header|cookie
	Required bool
	Type     string
}

type RequestBody struct {
	Required bool
	Content  []Media
}

type Response struct {
	Status      string // 200, 4xx, default
	Description string
	Content     []Media
}

type Media struct {
	Mime string
	Type string // e.g. "object(2)", "array<integer>"
}
