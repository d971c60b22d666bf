package db

// IndexBuilder is a fluent builder for index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Shards sets the number of primary shards.
func (b *IndexBuilder) Shards(n int) *IndexBuilder {
	b.def.Shards = n
	return b
}

// Replicas sets the number of replicas per shard.
func (b *IndexBuilder) Replicas(n int) *IndexBuilder {
	b.def.Replicas = n
	return b
}

// Text adds a full-text field.
func (b *IndexBuilder) Text(name string) *IndexBuilder {
	return b.field(name, IndexFieldText, "")
}

// Keyword adds an exact-value field.
func (b *IndexBuilder) Keyword(name string) *IndexBuilder {
	return b.field(name, IndexFieldKeyword, "")
}

// Long adds a 64-bit integer field.
func (b *IndexBuilder) Long(name string) *IndexBuilder {
	return b.field(name, IndexFieldLong, "")
}

// Date adds a date field. An empty format keeps the server default.
func (b *IndexBuilder) Date(name, format string) *IndexBuilder {
	return b.field(name, IndexFieldDate, format)
}

// GeoPoint adds a lat/lon point field.
func (b *IndexBuilder) GeoPoint(name string) *IndexBuilder {
	return b.field(name, IndexFieldGeoPoint, "")
}

func (b *IndexBuilder) field(name string, t IndexFieldType, format string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: t, Format: format})
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	def.Fields = append([]IndexField(nil), b.def.Fields...)
	return &def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}
