package fixtures

import (
	"context"
	"errors"
	"strings"
)

// Source is implemented by anything able to hand back the raw bytes of a
// named JSON fixture (a local directory, a static file server, ...).
type Source interface {
	Name() string
	Fetch(ctx context.Context, file string) ([]byte, error)
}

var ErrNotFound = errors.New("fixture not found")

// FileName maps a collection name ("obras") to its fixture file ("obras.json").
func FileName(collection string) string {
	collection = strings.TrimSpace(collection)
	if strings.HasSuffix(collection, ".json") {
		return collection
	}
	return collection + ".json"
}

// New picks an HTTP source for http(s) locations and a directory source
// for everything else.
func New(location string) Source {
	l := strings.ToLower(strings.TrimSpace(location))
	if strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://") {
		return NewHTTPSource(location)
	}
	return NewDirSource(location)
}
