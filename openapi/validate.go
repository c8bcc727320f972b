package openapi

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Validate checks the document against the OpenAPI 3 rules implemented by
// kin-openapi. The document is encoded and loaded back, so what is checked
// is exactly what would be served.
func (d *Document) Validate(ctx context.Context) error {
	doc, err := d.Load()
	if err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("openapi: invalid document: %w", err)
	}
	return nil
}

// Load converts the document into the kin-openapi model, for callers that
// want to hand it to kin-openapi routers or request validators.
func (d *Document) Load() (*openapi3.T, error) {
	data, err := d.JSON(false)
	if err != nil {
		return nil, err
	}
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return doc, nil
}
