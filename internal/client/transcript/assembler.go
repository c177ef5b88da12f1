// Package transcript merges structured search results into a message's
// content string and splits them back out for rendering. The marker tokens
// and the hotels/flights/news ordering are a wire contract with the surface
// layer; both sides must agree exactly for round-trips to work.
package transcript

import (
	"encoding/json"
	"log"
	"sort"
	"strings"

	"tripagent/internal/model/travel"
)

// Marker tokens. These literals must never appear in narrative text.
const (
	HotelMarker  = "__HOTEL_DATA__"
	FlightMarker = "__FLIGHT_DATA__"
	NewsMarker   = "__NEWS_DATA__"
)

// markerOrder is the fixed append order during assembly.
var markerOrder = []string{HotelMarker, FlightMarker, NewsMarker}

// Merge appends each non-empty category of the data store to the response
// text as a delimited JSON segment. An empty store returns text unchanged.
func Merge(responseText string, dataStore travel.DataStore) string {
	var sb strings.Builder
	sb.WriteString(responseText)

	if hotels := flattenHotels(dataStore.Hotels); len(hotels) > 0 {
		appendSegment(&sb, HotelMarker, hotels)
	}
	if flights := flattenFlights(dataStore.Flights); len(flights) > 0 {
		appendSegment(&sb, FlightMarker, flights)
	}
	if articles := flattenNews(dataStore.News); len(articles) > 0 {
		appendSegment(&sb, NewsMarker, articles)
	}

	return sb.String()
}

func appendSegment(sb *strings.Builder, marker string, items any) {
	data, err := json.Marshal(items)
	if err != nil {
		log.Printf("[transcript] failed to serialize %s segment: %v", marker, err)
		return
	}
	sb.WriteString("\n\n")
	sb.WriteString(marker)
	sb.WriteString("\n")
	sb.Write(data)
}

// FlattenHotels combines all hotel batches in the same order the cards are
// numbered. The surface uses it to resolve card indexes back to properties.
func FlattenHotels(dataStore travel.DataStore) []travel.Hotel {
	return flattenHotels(dataStore.Hotels)
}

// Batches are combined in sorted key order so assembly is deterministic.
func flattenHotels(batches map[string]travel.HotelBatch) []travel.Hotel {
	var combined []travel.Hotel
	for _, key := range sortedKeys(batches) {
		combined = append(combined, batches[key].Properties...)
	}
	return combined
}

func flattenFlights(batches map[string]travel.FlightBatch) []travel.Flight {
	var combined []travel.Flight
	for _, key := range sortedKeys(batches) {
		combined = append(combined, batches[key].Flights...)
	}
	return combined
}

func flattenNews(batches map[string]travel.NewsBatch) []travel.NewsArticle {
	var combined []travel.NewsArticle
	for _, key := range sortedKeys(batches) {
		combined = append(combined, batches[key].Articles...)
	}
	return combined
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Decomposed is a content string split into narrative text and parsed
// category arrays.
type Decomposed struct {
	Text    string
	Hotels  []travel.Hotel
	Flights []travel.Flight
	News    []travel.NewsArticle
}

// HasData reports whether any category parsed non-empty.
func (d Decomposed) HasData() bool {
	return len(d.Hotels) > 0 || len(d.Flights) > 0 || len(d.News) > 0
}

// Decompose splits a content string. Everything before the first marker is
// narrative text; each marker's segment runs until the next marker or the end
// of the string. A malformed segment is logged and skipped so the remaining
// categories still render.
func Decompose(content string) Decomposed {
	d := Decomposed{Text: content}

	first := len(content)
	for _, marker := range markerOrder {
		if idx := strings.Index(content, marker); idx >= 0 && idx < first {
			first = idx
		}
	}
	if first == len(content) {
		return d
	}
	// Merge inserted exactly one blank line before the first marker; only
	// that separator is stripped, never whitespace belonging to the text.
	d.Text = strings.TrimSuffix(content[:first], "\n\n")

	for _, marker := range markerOrder {
		segment, ok := extractSegment(content, marker)
		if !ok {
			continue
		}
		switch marker {
		case HotelMarker:
			if err := json.Unmarshal([]byte(segment), &d.Hotels); err != nil {
				log.Printf("[transcript] malformed hotel segment: %v", err)
			}
		case FlightMarker:
			if err := json.Unmarshal([]byte(segment), &d.Flights); err != nil {
				log.Printf("[transcript] malformed flight segment: %v", err)
			}
		case NewsMarker:
			if err := json.Unmarshal([]byte(segment), &d.News); err != nil {
				log.Printf("[transcript] malformed news segment: %v", err)
			}
		}
	}

	return d
}

func extractSegment(content, marker string) (string, bool) {
	start := strings.Index(content, marker+"\n")
	if start < 0 {
		return "", false
	}
	segment := content[start+len(marker)+1:]

	// The segment ends where the next delimited marker begins.
	end := len(segment)
	for _, other := range markerOrder {
		if idx := strings.Index(segment, "\n\n"+other); idx >= 0 && idx < end {
			end = idx
		}
	}
	return segment[:end], true
}
