// Package asset holds the persistent entities of the asset catalogue.
package asset

import (
	"time"

	"github.com/digitalbridge/mongoes/internal/domain/geojson"
)

// Entity names.
const (
	EntityAssetWrapper = "assetwrapper"
	EntityAddress      = "address"
	EntityNote         = "note"
	EntityUser         = "user"
)

// Collections.
const (
	CollectionAssetWrapper = "assetwrapper"
	CollectionAddress      = "address"
	CollectionNotes        = "notes"
	CollectionUser         = "user"
)

// AssetWrapper is a catalogued asset (a restaurant in the sample data set).
type AssetWrapper struct {
	ID              string
	AssetName       string
	Address         *Address
	Cuisine         string
	Borough         string
	Notes           []*Note
	OriginalAssetID string
	LastModified    time.Time
}

// EntityName implements entity.Entity.
func (*AssetWrapper) EntityName() string { return EntityAssetWrapper }

// Address is the postal location of an asset.
type Address struct {
	ID       string
	Building string
	Street   string
	Zipcode  string
	Location *geojson.Point
}

// EntityName implements entity.Entity.
func (*Address) EntityName() string { return EntityAddress }

// Note is a dated, scored remark about an asset. It refers back to its asset.
type Note struct {
	ID    string
	Text  string
	Date  time.Time
	Score int64
	Asset *AssetWrapper
}

// EntityName implements entity.Entity.
func (*Note) EntityName() string { return EntityNote }

// User is an account allowed to call the API.
type User struct {
	ID       string
	UserName string
	Password string
	Roles    []string
	Enabled  bool
}

// EntityName implements entity.Entity.
func (*User) EntityName() string { return EntityUser }
