package schema

// Describer is implemented by every record type processed by the generator.
// JSONSchema rebuilds the record's fragment on each call by asking nested
// records for theirs.
type Describer interface {
	JSONSchema() *Schema
}

// QueryDescriber is implemented by every generated record as well. Each
// field becomes one query parameter, in declaration order.
type QueryDescriber interface {
	QueryParameters() []Parameter
}

// Of returns the fragment of record type T. Generated code uses it to
// delegate to nested records without constructing values by hand.
func Of[T Describer]() *Schema {
	var v T
	return v.JSONSchema()
}

// ParametersOf returns the query parameters of record type T.
func ParametersOf[T QueryDescriber]() []Parameter {
	var v T
	return v.QueryParameters()
}
