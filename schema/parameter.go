package schema

// Location is where a parameter is read from.
type Location string

const (
	InQuery  Location = "query"
	InPath   Location = "path"
	InHeader Location = "header"
	InCookie Location = "cookie"
)

// Parameter describes one operation input. Generated records always use
// InQuery. Required is serialized even when false.
type Parameter struct {
	Name     string   `json:"name"`
	In       Location `json:"in"`
	Required bool     `json:"required"`
	Schema   *Schema  `json:"schema,omitempty"`
}
