// Package entity describes persistent entity types: their collections, properties,
// and the typed accessors used to read and write them without reflection.
package entity

// Kind classifies how a property is stored in a document.
type Kind int

const (
	// KindScalar is a plain value (string, number, date, list of strings).
	KindScalar Kind = iota
	// KindGeo is a GeoJSON geometry.
	KindGeo
	// KindReference is a DBRef to another entity.
	KindReference
	// KindReferenceList is a list of DBRefs to entities of one type.
	KindReferenceList
	// KindEmbedded is a nested entity stored inline.
	KindEmbedded
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindGeo:
		return "geo"
	case KindReference:
		return "reference"
	case KindReferenceList:
		return "reference_list"
	case KindEmbedded:
		return "embedded"
	default:
		return "unknown"
	}
}

// ValueType is the Go type a scalar property is coerced to.
type ValueType int

const (
	// ValueAny passes values through unchanged.
	ValueAny ValueType = iota
	// ValueString coerces to string.
	ValueString
	// ValueInt64 coerces to int64.
	ValueInt64
	// ValueFloat64 coerces to float64.
	ValueFloat64
	// ValueBool coerces to bool.
	ValueBool
	// ValueTime coerces to time.Time.
	ValueTime
	// ValueStringList coerces to []string.
	ValueStringList
)

// Property describes one persistent property of an entity type.
type Property struct {
	// Name is the accessor name, unique within the type.
	Name string
	// FieldName is the document field path. Dotted names address nested documents.
	FieldName string
	Kind      Kind
	Value     ValueType
	// Target names the referenced or embedded entity type.
	Target string
	// Lazy references resolve to an id-only placeholder instead of fetching.
	Lazy bool
	// PropertyAccess marks properties populated by the host through their setter,
	// which id population on placeholders must leave alone.
	PropertyAccess bool
	// GeoType restricts a geo property to one GeoJSON type. Empty accepts any.
	GeoType string
}

// IsAssociation reports whether the property points at another entity.
func (p Property) IsAssociation() bool {
	return p.Kind == KindReference || p.Kind == KindReferenceList
}
