// Package fixtures embeds sample feeds in every shape the decoder accepts.
package fixtures

import (
	"embed"
	"fmt"
	"path"
)

//go:embed *.json *.csv *.html
var feeds embed.FS

// Feed is a sample body with the content type it would be served with.
type Feed struct {
	Name        string
	Body        []byte
	ContentType string
}

var contentTypes = map[string]string{
	".json": "application/json",
	".csv":  "text/csv",
	".html": "text/html; charset=utf-8",
}

// Load returns the named fixture.
func Load(name string) (Feed, error) {
	body, err := feeds.ReadFile(name)
	if err != nil {
		return Feed{}, fmt.Errorf("load feed %s: %w", name, err)
	}
	return Feed{Name: name, Body: body, ContentType: contentTypes[path.Ext(name)]}, nil
}

// MustLoad is Load for tests; it panics on a missing fixture.
func MustLoad(name string) Feed {
	f, err := Load(name)
	if err != nil {
		panic(err)
	}
	return f
}

// Names lists every embedded fixture.
func Names() ([]string, error) {
	entries, err := feeds.ReadDir(".")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
