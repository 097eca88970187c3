// Package samples embeds the built-in demo documents, one per format.
package samples

import (
	_ "embed"
	"fmt"
	"sort"
)

var (
	//go:embed legacy.json
	legacyJSON []byte

	//go:embed new.json
	newJSON []byte
)

var byName = map[string][]byte{
	"legacy": legacyJSON,
	"new":    newJSON,
}

// Get returns a copy of the named sample.
func Get(name string) ([]byte, error) {
	data, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown sample %q (available: %v)", name, Names())
	}
	return append([]byte(nil), data...), nil
}

func Names() []string {
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
