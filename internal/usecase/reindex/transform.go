package reindex

import (
	"github.com/spf13/cast"

	"github.com/digitalbridge/mongoes/internal/domain/asset"
	"github.com/digitalbridge/mongoes/internal/domain/docpath"
)

// FlattenLocation rewrites a GeoJSON address.location into the flat lat/lon
// form a geo_point field accepts. Coordinates are [lon, lat]; both values are
// written as strings. Sources without GeoJSON coordinates are left alone.
// source is modified in place and returned.
func FlattenLocation(source map[string]any) map[string]any {
	loc, ok := docpath.Document(docpath.Get(source, asset.FieldLocation))
	if !ok {
		return source
	}
	lon, lat, ok := lonLat(loc["coordinates"])
	if !ok {
		return source
	}
	delete(loc, "type")
	delete(loc, "coordinates")
	loc["lat"] = lat
	loc["lon"] = lon
	return source
}

func lonLat(v any) (lon, lat string, ok bool) {
	var pair []any
	switch c := v.(type) {
	case []any:
		pair = c
	case []float64:
		pair = make([]any, len(c))
		for i, f := range c {
			pair[i] = f
		}
	default:
		return "", "", false
	}
	if len(pair) < 2 {
		return "", "", false
	}
	lon, err := cast.ToStringE(pair[0])
	if err != nil {
		return "", "", false
	}
	lat, err = cast.ToStringE(pair[1])
	if err != nil {
		return "", "", false
	}
	return lon, lat, true
}
