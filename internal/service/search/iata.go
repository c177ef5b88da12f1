package search

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"
)

//go:embed iata.json
var iataRaw []byte

var (
	iataOnce  sync.Once
	iataTable map[string]string
)

// LookupIATA resolves a city name to its primary airport code. Matching is
// case-insensitive on the full city name.
func LookupIATA(city string) (string, bool) {
	iataOnce.Do(func() {
		iataTable = make(map[string]string)
		var entries map[string]string
		if err := json.Unmarshal(iataRaw, &entries); err != nil {
			return
		}
		for name, code := range entries {
			iataTable[strings.ToLower(name)] = code
		}
	})

	code, ok := iataTable[strings.ToLower(strings.TrimSpace(city))]
	return code, ok
}
