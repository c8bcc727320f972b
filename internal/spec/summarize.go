package spec

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/struct2openapi/openapi"
)

// SummaryOption configures how a Summary is built from a document.
type SummaryOption func(*summaryConfig)

type summaryConfig struct {
	methods map[openapi.Method]struct{}
	pathRes []*regexp.Regexp
}

// WithMethods keeps only endpoints using one of the provided HTTP methods.
func WithMethods(methods []openapi.Method) SummaryOption {
	return func(c *summaryConfig) {
		if len(methods) == 0 {
			return
		}
		if c.methods == nil {
			c.methods = make(map[openapi.Method]struct{}, len(methods))
		}
		for _, m := range methods {
			c.methods[m] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only endpoints whose path matches at least one of the
// provided regular expressions.
func WithPathPatterns(patterns []*regexp.Regexp) SummaryOption {
	return func(c *summaryConfig) {
		c.pathRes = append(c.pathRes, patterns...)
	}
}

// CompilePathPatterns compiles non-empty patterns for WithPathPatterns.
func CompilePathPatterns(patterns []string) ([]*regexp.Regexp, error) {
	var out []*regexp.Regexp
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("path pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Summarize flattens doc into endpoints sorted by path, then method.
func Summarize(doc *openapi3.T, opts ...SummaryOption) (*Summary, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	cfg := &summaryConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Summary{OpenAPI: doc.OpenAPI}
	if doc.Info != nil {
		s.Title = safeStr(doc.Info.Title)
		s.Version = safeStr(doc.Info.Version)
		s.Description = safeStr(doc.Info.Description)
	}
	for _, srv := range doc.Servers {
		if srv == nil {
			continue
		}
		s.Servers = append(s.Servers, Server{URL: safeStr(srv.URL), Description: safeStr(srv.Description)})
	}

	pathKeys := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	for _, p := range pathKeys {
		item := doc.Paths[p]
		if item == nil || !cfg.allowPath(p) {
			continue
		}
		// Supported HTTP methods in a stable order
		ops := []struct {
			m openapi.Method
			o *openapi3.Operation
		}{
			{openapi.MethodGet, item.Get},
			{openapi.MethodPost, item.Post},
			{openapi.MethodPut, item.Put},
			{openapi.MethodPatch, item.Patch},
			{openapi.MethodDelete, item.Delete},
		}
		for _, pair := range ops {
			if pair.o == nil || !cfg.allowMethod(pair.m) {
				continue
			}
			s.Endpoints = append(s.Endpoints, toEndpoint(pair.m, p, item, pair.o))
		}
	}
	s.Tags = collectSortedTags(s.Endpoints)
	return s, nil
}

func (c *summaryConfig) allowMethod(m openapi.Method) bool {
	if len(c.methods) == 0 {
		return true
	}
	_, ok := c.methods[m]
	return ok
}

func (c *summaryConfig) allowPath(p string) bool {
	if len(c.pathRes) == 0 {
		return true
	}
	for _, re := range c.pathRes {
		if re.MatchString(p) {
			return true
		}
	}
	return false
}

func toEndpoint(m openapi.Method, path string, item *openapi3.PathItem, op *openapi3.Operation) Endpoint {
	// Merge parameters with precedence to operation-level ones.
	merged := make(map[string]Parameter)
	for _, refs := range []openapi3.Parameters{item.Parameters, op.Parameters} {
		for _, pref := range refs {
			if pref == nil || pref.Value == nil {
				continue
			}
			pm := toParameter(pref.Value)
			merged[paramKey(pm.In, pm.Name)] = pm
		}
	}
	params := make([]Parameter, 0, len(merged))
	for _, v := range merged {
		params = append(params, v)
	}
	sort.Slice(params, func(i, j int) bool {
		if params[i].In == params[j].In {
			return params[i].Name < params[j].Name
		}
		return params[i].In < params[j].In
	})

	var rb *RequestBody
	if op.RequestBody != nil && op.RequestBody.Value != nil {
		rb = &RequestBody{
			Required: op.RequestBody.Value.Required,
			Content:  toMediaList(op.RequestBody.Value.Content),
		}
	}

	// In kin-openapi v0.116, Responses is a map[string]*ResponseRef
	codes := make([]string, 0, len(op.Responses))
	for code := range op.Responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	var responses []Response
	for _, code := range codes {
		rref := op.Responses[code]
		if rref == nil || rref.Value == nil {
			continue
		}
		desc := ""
		if rref.Value.Description != nil {
			desc = *rref.Value.Description
		}
		responses = append(responses, Response{
			Status:      code,
			Description: desc,
			Content:     toMediaList(rref.Value.Content),
		})
	}

	var tags []string
	for _, t := range op.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return Endpoint{
		ID:          string(m) + " " + path,
		Method:      m,
		Path:        path,
		Summary:     safeStr(op.Summary),
		Tags:        tags,
		Parameters:  params,
		RequestBody: rb,
		Responses:   responses,
	}
}

func paramKey(in, name string) string { return in + ":" + name }

func safeStr(s string) string { return strings.TrimSpace(s) }

func toParameter(p *openapi3.Parameter) Parameter {
	return Parameter{
		Name:     safeStr(p.Name),
		In:       safeStr(p.In),
		Required: p.Required,
		Type:     describe(p.Schema),
	}
}

func toMediaList(content openapi3.Content) []Media {
	if len(content) == 0 {
		return nil
	}
	mimes := make([]string, 0, len(content))
	for mime := range content {
		mimes = append(mimes, mime)
	}
	sort.Strings(mimes)
	out := make([]Media, 0, len(mimes))
	for _, mime := range mimes {
		mt := content[mime]
		m := Media{Mime: mime}
		if mt != nil {
			m.Type = describe(mt.Schema)
		}
		out = append(out, m)
	}
	return out
}

// describe renders a compact type label: scalars by name, arrays as
// array<elem>, objects with their property count.
func describe(ref *openapi3.SchemaRef) string {
	if ref == nil || ref.Value == nil {
		return ""
	}
	s := ref.Value
	switch s.Type {
	case "array":
		return "array<" + describe(s.Items) + ">"
	case "object":
		return fmt.Sprintf("object(%d)", len(s.Properties))
	}
	return s.Type
}

func collectSortedTags(endpoints []Endpoint) []string {
	set := make(map[string]struct{})
	for _, ep := range endpoints {
		for _, t := range ep.Tags {
			set[t] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
