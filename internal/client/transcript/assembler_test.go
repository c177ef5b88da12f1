package transcript

import (
	"strings"
	"testing"

	"tripagent/internal/model/travel"
)

func sampleStore() travel.DataStore {
	return travel.DataStore{
		Hotels: map[string]travel.HotelBatch{
			"Bali_2026-09-01_2026-09-05": {Properties: []travel.Hotel{
				{Idx: 1, Name: "Ocean View Resort", Rating: 4.5},
			}},
		},
		Flights: map[string]travel.FlightBatch{
			"BOM_DPS_2026-09-01": {Flights: []travel.Flight{
				{Idx: 1, Price: 420, DepartureAirport: "BOM", ArrivalAirport: "DPS"},
			}},
		},
		News: map[string]travel.NewsBatch{
			"bali travel": {Articles: []travel.NewsArticle{
				{Idx: 1, Title: "Bali reopens hiking trails"},
			}},
		},
	}
}

func TestMergeEmptyStoreLeavesTextUnchanged(t *testing.T) {
	text := "Nothing to search for here."
	if got := Merge(text, travel.DataStore{}); got != text {
		t.Fatalf("expected unchanged text, got %q", got)
	}
}

func TestMergeAppendsMarkersInFixedOrder(t *testing.T) {
	merged := Merge("Here is what I found.", sampleStore())

	hotelIdx := strings.Index(merged, HotelMarker)
	flightIdx := strings.Index(merged, FlightMarker)
	newsIdx := strings.Index(merged, NewsMarker)

	if hotelIdx < 0 || flightIdx < 0 || newsIdx < 0 {
		t.Fatalf("missing markers in %q", merged)
	}
	if !(hotelIdx < flightIdx && flightIdx < newsIdx) {
		t.Fatalf("markers out of order: hotels=%d flights=%d news=%d", hotelIdx, flightIdx, newsIdx)
	}
	if !strings.HasPrefix(merged, "Here is what I found.") {
		t.Fatalf("narrative text not preserved: %q", merged)
	}
}

func TestMergeSkipsEmptyCategories(t *testing.T) {
	store := travel.DataStore{
		News: map[string]travel.NewsBatch{
			"visa rules": {Articles: []travel.NewsArticle{{Title: "New visa rules"}}},
		},
	}
	merged := Merge("Latest news below.", store)

	if strings.Contains(merged, HotelMarker) || strings.Contains(merged, FlightMarker) {
		t.Fatalf("empty categories should not emit markers: %q", merged)
	}
	if !strings.Contains(merged, NewsMarker) {
		t.Fatalf("news marker missing: %q", merged)
	}
}

func TestDecomposeRoundTrip(t *testing.T) {
	merged := Merge("Found some great options!", sampleStore())
	d := Decompose(merged)

	if d.Text != "Found some great options!" {
		t.Fatalf("expected narrative text, got %q", d.Text)
	}
	if len(d.Hotels) != 1 || d.Hotels[0].Name != "Ocean View Resort" {
		t.Fatalf("hotels did not round-trip: %+v", d.Hotels)
	}
	if len(d.Flights) != 1 || d.Flights[0].ArrivalAirport != "DPS" {
		t.Fatalf("flights did not round-trip: %+v", d.Flights)
	}
	if len(d.News) != 1 || d.News[0].Title != "Bali reopens hiking trails" {
		t.Fatalf("news did not round-trip: %+v", d.News)
	}
	if !d.HasData() {
		t.Fatal("expected HasData to be true")
	}
}

func TestDecomposeKeepsTrailingTextWhitespace(t *testing.T) {
	text := "Here are your options:\n"
	d := Decompose(Merge(text, sampleStore()))

	if d.Text != text {
		t.Fatalf("trailing whitespace lost in round-trip: %q", d.Text)
	}
	if len(d.Hotels) != 1 || len(d.Flights) != 1 || len(d.News) != 1 {
		t.Fatalf("data did not round-trip: %+v", d)
	}
}

func TestDecomposePlainText(t *testing.T) {
	d := Decompose("Just a normal reply with no data.")
	if d.Text != "Just a normal reply with no data." {
		t.Fatalf("unexpected text: %q", d.Text)
	}
	if d.HasData() {
		t.Fatal("expected no data")
	}
}

func TestDecomposeMalformedSegmentSkipsCategory(t *testing.T) {
	content := "Results below.\n\n" + HotelMarker + "\nnot json\n\n" + NewsMarker + "\n[{\"title\":\"Storm warning\"}]"
	d := Decompose(content)

	if d.Text != "Results below." {
		t.Fatalf("unexpected text: %q", d.Text)
	}
	if len(d.Hotels) != 0 {
		t.Fatalf("malformed hotel segment should be skipped, got %+v", d.Hotels)
	}
	if len(d.News) != 1 || d.News[0].Title != "Storm warning" {
		t.Fatalf("news segment should still parse: %+v", d.News)
	}
}

func TestFlattenHotelsUsesSortedKeyOrder(t *testing.T) {
	store := travel.DataStore{
		Hotels: map[string]travel.HotelBatch{
			"b_key": {Properties: []travel.Hotel{{Name: "Second"}}},
			"a_key": {Properties: []travel.Hotel{{Name: "First"}}},
		},
	}
	hotels := FlattenHotels(store)
	if len(hotels) != 2 || hotels[0].Name != "First" || hotels[1].Name != "Second" {
		t.Fatalf("unexpected flatten order: %+v", hotels)
	}
}
