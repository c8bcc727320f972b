// Package openapi assembles OpenAPI 3.0.0 documents from generated schema
// capabilities. A Document is built by a single goroutine, typically during
// start-up, and may be shared read-only once assembly is finished.
package openapi

import "github.com/mark3labs/struct2openapi/schema"

// Version is the OpenAPI version written into every document.
const Version = "3.0.0"

// MediaTypeJSON is the only content type registered by AddRoute.
const MediaTypeJSON = "application/json"

// Document is the root of an OpenAPI document.
//
// See: https://spec.openapis.org/oas/v3.0.0#openapi-object
type Document struct {
	OpenAPI string               `json:"openapi"`
	Info    Info                 `json:"info"`
	Servers []Server             `json:"servers,omitempty"`
	Tags    []Tag                `json:"tags,omitempty"`
	Paths   map[string]*PathItem `json:"paths"`
}

// Info provides metadata about the API.
type Info struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

// Server is a base URL the API is reachable at.
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Tag groups operations in rendered documentation.
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PathItem holds the operations registered on one path.
type PathItem struct {
	Get    *Operation `json:"get,omitempty"`
	Put    *Operation `json:"put,omitempty"`
	Post   *Operation `json:"post,omitempty"`
	Delete *Operation `json:"delete,omitempty"`
	Patch  *Operation `json:"patch,omitempty"`
}

// Operation describes a single method on a path.
type Operation struct {
	Parameters  []schema.Parameter   `json:"parameters,omitempty"`
	RequestBody *RequestBody         `json:"requestBody,omitempty"`
	Responses   map[string]*Response `json:"responses"`
}

// RequestBody describes a JSON request body.
type RequestBody struct {
	Description string                `json:"description,omitempty"`
	Content     map[string]*MediaType `json:"content"`
	Required    bool                  `json:"required"`
}

// Response describes one status code of an operation.
type Response struct {
	Description string                `json:"description"`
	Content     map[string]*MediaType `json:"content,omitempty"`
}

// MediaType wraps the schema of one content type.
type MediaType struct {
	Schema *schema.Schema `json:"schema,omitempty"`
}

// New returns an empty document with the given title and version.
func New(title, version string) *Document {
	return &Document{
		OpenAPI: Version,
		Info:    Info{Title: title, Version: version},
		Paths:   make(map[string]*PathItem),
	}
}

// AddServer appends a server entry.
func (d *Document) AddServer(url, description string) *Document {
	d.Servers = append(d.Servers, Server{URL: url, Description: description})
	return d
}

// AddTag appends a tag entry.
func (d *Document) AddTag(name, description string) *Document {
	d.Tags = append(d.Tags, Tag{Name: name, Description: description})
	return d
}

// Operation returns the operation registered for method on path, or nil.
func (d *Document) Operation(method Method, path string) *Operation {
	item, ok := d.Paths[path]
	if !ok || !method.Valid() {
		return nil
	}
	return *item.slot(method)
}

func jsonContent(s *schema.Schema) map[string]*MediaType {
	return map[string]*MediaType{MediaTypeJSON: {Schema: s}}
}
