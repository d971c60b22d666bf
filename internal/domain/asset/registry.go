package asset

import (
	"time"

	"github.com/digitalbridge/mongoes/internal/domain/entity"
	"github.com/digitalbridge/mongoes/internal/domain/geojson"
)

// Field names shared with the search index mapping.
const (
	FieldID           = "_id"
	FieldAssetName    = "aName"
	FieldCuisine      = "cuisine"
	FieldBorough      = "borough"
	FieldLastModified = "lDate"
	FieldLocation     = "address.location"
)

func idProperty() entity.Property {
	return entity.Property{Name: "id", FieldName: FieldID, Value: entity.ValueString}
}

// NewRegistry returns a registry with every asset entity type.
func NewRegistry() (*entity.Registry, error) {
	return entity.NewRegistry(assetWrapperType(), addressType(), noteType(), userType()) //nolint:wrapcheck
}

func assetWrapperType() *entity.Type {
	return &entity.Type{
		Name:       EntityAssetWrapper,
		Collection: CollectionAssetWrapper,
		ID:         idProperty(),
		Properties: []entity.Property{
			{Name: "assetName", FieldName: FieldAssetName, Value: entity.ValueString},
			{Name: "address", FieldName: "address", Kind: entity.KindReference, Target: EntityAddress},
			{Name: "cuisine", FieldName: FieldCuisine, Value: entity.ValueString},
			{Name: "borough", FieldName: FieldBorough, Value: entity.ValueString},
			{Name: "notes", FieldName: "notes", Kind: entity.KindReferenceList, Target: EntityNote},
			{Name: "originalAssetId", FieldName: "orginalAssetId", Value: entity.ValueString},
			{Name: "lastModified", FieldName: FieldLastModified, Value: entity.ValueTime},
		},
		New: func() entity.Entity { return &AssetWrapper{} },
		Bindings: map[string]entity.Binding{
			"id": entity.Bind(
				func(a *AssetWrapper) string { return a.ID },
				func(a *AssetWrapper, v string) { a.ID = v }),
			"assetName": entity.Bind(
				func(a *AssetWrapper) string { return a.AssetName },
				func(a *AssetWrapper, v string) { a.AssetName = v }),
			"address": entity.BindRef(
				func(a *AssetWrapper) *Address { return a.Address },
				func(a *AssetWrapper, v *Address) { a.Address = v }),
			"cuisine": entity.Bind(
				func(a *AssetWrapper) string { return a.Cuisine },
				func(a *AssetWrapper, v string) { a.Cuisine = v }),
			"borough": entity.Bind(
				func(a *AssetWrapper) string { return a.Borough },
				func(a *AssetWrapper, v string) { a.Borough = v }),
			"notes": entity.BindList(
				func(a *AssetWrapper) []*Note { return a.Notes },
				func(a *AssetWrapper, v []*Note) { a.Notes = v }),
			"originalAssetId": entity.Bind(
				func(a *AssetWrapper) string { return a.OriginalAssetID },
				func(a *AssetWrapper, v string) { a.OriginalAssetID = v }),
			"lastModified": entity.Bind(
				func(a *AssetWrapper) time.Time { return a.LastModified },
				func(a *AssetWrapper, v time.Time) { a.LastModified = v }),
		},
	}
}

func addressType() *entity.Type {
	return &entity.Type{
		Name:       EntityAddress,
		Collection: CollectionAddress,
		ID:         idProperty(),
		Properties: []entity.Property{
			{Name: "building", FieldName: "building", Value: entity.ValueString},
			{Name: "street", FieldName: "street", Value: entity.ValueString},
			{Name: "zipcode", FieldName: "zipcode", Value: entity.ValueString},
			{Name: "location", FieldName: "location", Kind: entity.KindGeo, GeoType: geojson.TypePoint},
		},
		New: func() entity.Entity { return &Address{} },
		Bindings: map[string]entity.Binding{
			"id": entity.Bind(
				func(a *Address) string { return a.ID },
				func(a *Address, v string) { a.ID = v }),
			"building": entity.Bind(
				func(a *Address) string { return a.Building },
				func(a *Address, v string) { a.Building = v }),
			"street": entity.Bind(
				func(a *Address) string { return a.Street },
				func(a *Address, v string) { a.Street = v }),
			"zipcode": entity.Bind(
				func(a *Address) string { return a.Zipcode },
				func(a *Address, v string) { a.Zipcode = v }),
			"location": entity.BindPoint(
				func(a *Address) *geojson.Point { return a.Location },
				func(a *Address, v *geojson.Point) { a.Location = v }),
		},
	}
}

func noteType() *entity.Type {
	return &entity.Type{
		Name:       EntityNote,
		Collection: CollectionNotes,
		ID:         idProperty(),
		Properties: []entity.Property{
			{Name: "text", FieldName: "note", Value: entity.ValueString},
			{Name: "date", FieldName: "date", Value: entity.ValueTime},
			{Name: "score", FieldName: "score", Value: entity.ValueInt64},
			{Name: "asset", FieldName: "asset", Kind: entity.KindReference, Target: EntityAssetWrapper, Lazy: true},
		},
		New: func() entity.Entity { return &Note{} },
		Bindings: map[string]entity.Binding{
			"id": entity.Bind(
				func(n *Note) string { return n.ID },
				func(n *Note, v string) { n.ID = v }),
			"text": entity.Bind(
				func(n *Note) string { return n.Text },
				func(n *Note, v string) { n.Text = v }),
			"date": entity.Bind(
				func(n *Note) time.Time { return n.Date },
				func(n *Note, v time.Time) { n.Date = v }),
			"score": entity.Bind(
				func(n *Note) int64 { return n.Score },
				func(n *Note, v int64) { n.Score = v }),
			"asset": entity.BindRef(
				func(n *Note) *AssetWrapper { return n.Asset },
				func(n *Note, v *AssetWrapper) { n.Asset = v }),
		},
	}
}

func userType() *entity.Type {
	return &entity.Type{
		Name:       EntityUser,
		Collection: CollectionUser,
		ID:         idProperty(),
		Properties: []entity.Property{
			{Name: "userName", FieldName: "userName", Value: entity.ValueString},
			{Name: "password", FieldName: "password", Value: entity.ValueString},
			{Name: "roles", FieldName: "roles", Value: entity.ValueStringList},
			{Name: "enabled", FieldName: "enabled", Value: entity.ValueBool},
		},
		New: func() entity.Entity { return &User{} },
		Bindings: map[string]entity.Binding{
			"id": entity.Bind(
				func(u *User) string { return u.ID },
				func(u *User, v string) { u.ID = v }),
			"userName": entity.Bind(
				func(u *User) string { return u.UserName },
				func(u *User, v string) { u.UserName = v }),
			"password": entity.Bind(
				func(u *User) string { return u.Password },
				func(u *User, v string) { u.Password = v }),
			"roles": entity.Bind(
				func(u *User) []string { return u.Roles },
				func(u *User, v []string) { u.Roles = v }),
			"enabled": entity.Bind(
				func(u *User) bool { return u.Enabled },
				func(u *User, v bool) { u.Enabled = v }),
		},
	}
}
