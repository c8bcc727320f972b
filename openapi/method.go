package openapi

import (
	"fmt"
	"strings"
)

// Method is one of the HTTP methods a route can be registered for.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// Methods lists the supported methods.
func Methods() []Method {
	return []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}
}

// ParseMethod resolves a method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("openapi: unsupported method %q", s)
	}
	return m, nil
}

// Valid reports whether m is in the supported set.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	}
	return false
}

// AllowsBody reports whether a request body may be registered for m.
func (m Method) AllowsBody() bool {
	switch m {
	case MethodPost, MethodPut, MethodPatch:
		return true
	}
	return false
}

// slot returns the field of p that holds the operation for m.
func (p *PathItem) slot(m Method) **Operation {
	switch m {
	case MethodGet:
		return &p.Get
	case MethodPost:
		return &p.Post
	case MethodPut:
		return &p.Put
	case MethodPatch:
		return &p.Patch
	case MethodDelete:
		return &p.Delete
	}
	panic(fmt.Sprintf("openapi: unsupported method %q", string(m)))
}
