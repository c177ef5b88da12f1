package agent

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func TestDetectFlightIntent(t *testing.T) {
	intents := DetectIntents("Find flights from Mumbai to Bali on 2026-09-10", testNow)
	if len(intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(intents))
	}
	got := intents[0]
	if got.Kind != IntentFlights || got.Departure != "Mumbai" || got.Arrival != "Bali" {
		t.Fatalf("unexpected intent: %+v", got)
	}
	if got.OutboundDate != "2026-09-10" {
		t.Fatalf("unexpected date %q", got.OutboundDate)
	}
}

func TestDetectFlightToFromOrder(t *testing.T) {
	intents := DetectIntents("Can I fly to delhi from mumbai?", testNow)
	if len(intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(intents))
	}
	got := intents[0]
	if got.Departure != "Mumbai" || got.Arrival != "Delhi" {
		t.Fatalf("route not normalized: %+v", got)
	}
	// No date given, so tomorrow is assumed.
	if got.OutboundDate != "2026-08-29" {
		t.Fatalf("default date wrong: %q", got.OutboundDate)
	}
}

func TestDetectHotelIntentWithDates(t *testing.T) {
	intents := DetectIntents("Show me hotels in goa from 2026-09-10 to 2026-09-12", testNow)
	if len(intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(intents))
	}
	got := intents[0]
	if got.Kind != IntentHotels || got.Location != "Goa" {
		t.Fatalf("unexpected intent: %+v", got)
	}
	if got.CheckInDate != "2026-09-10" || got.CheckOutDate != "2026-09-12" {
		t.Fatalf("dates not resolved: %+v", got)
	}
}

func TestDetectHotelIntentDefaultsDates(t *testing.T) {
	intents := DetectIntents("any good hotels in jaipur?", testNow)
	if len(intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(intents))
	}
	got := intents[0]
	if got.CheckInDate != "2026-08-29" || got.CheckOutDate != "2026-08-30" {
		t.Fatalf("default stay dates wrong: %+v", got)
	}
}

func TestDetectNewsIntent(t *testing.T) {
	intents := DetectIntents("news about bali volcano", testNow)
	if len(intents) != 1 || intents[0].Kind != IntentNews {
		t.Fatalf("expected news intent, got %+v", intents)
	}
	if intents[0].Query != "bali volcano" {
		t.Fatalf("unexpected query %q", intents[0].Query)
	}
}

func TestDetectMultipleIntents(t *testing.T) {
	intents := DetectIntents("flights from delhi to goa on 2026-09-10. hotels in goa from 2026-09-10 to 2026-09-12", testNow)
	if len(intents) != 2 {
		t.Fatalf("expected 2 intents, got %d: %+v", len(intents), intents)
	}
	if intents[0].Kind != IntentFlights || intents[1].Kind != IntentHotels {
		t.Fatalf("unexpected intent kinds: %+v", intents)
	}
}

func TestDetectNoIntent(t *testing.T) {
	if intents := DetectIntents("thanks, that was helpful!", testNow); len(intents) != 0 {
		t.Fatalf("expected no intents, got %+v", intents)
	}
}

func TestResolveDate(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"2026-09-10", "2026-09-10", true},
		{"today", "2026-08-28", true},
		{"tomorrow", "2026-08-29", true},
		{"next week", "2026-09-04", true},
		{"September 10, 2026", "2026-09-10", true},
		{"September 10", "2026-09-10", true},
		{"Sep 10", "2026-09-10", true},
		{"10 September", "2026-09-10", true},
		{"September 10th", "2026-09-10", true},
		// Already passed this year, so next year is assumed.
		{"January 5", "2027-01-05", true},
		{"someday", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ResolveDate(tc.raw, testNow)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ResolveDate(%q) = %q, %v; want %q, %v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}
