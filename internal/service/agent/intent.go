package agent

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Intent kinds detected in a user message.
const (
	IntentFlights = "flights"
	IntentHotels  = "hotels"
	IntentNews    = "news"
)

// Intent is one resolved search request.
type Intent struct {
	Kind string

	// Flights
	Departure    string
	Arrival      string
	OutboundDate string
	RoundTrip    bool
	ReturnDate   string

	// Hotels
	Location     string
	CheckInDate  string
	CheckOutDate string

	// News
	Query string
}

var (
	flightFromTo = regexp.MustCompile(`(?i)flights?\s+(?:from\s+)?([a-z ]+?)\s+to\s+([a-z ]+?)(?:\s+on\s+(.+?))?(?:[.?!]|$)`)
	flightToFrom = regexp.MustCompile(`(?i)fl(?:y|ights?)\s+to\s+([a-z ]+?)\s+from\s+([a-z ]+?)(?:\s+on\s+(.+?))?(?:[.?!]|$)`)
	hotelPattern = regexp.MustCompile(`(?i)hotels?(?:\s+rooms?)?\s+in\s+([a-z ]+?)(?:\s+from\s+(.+?)\s+to\s+(.+?))?(?:[.?!]|$)`)
	newsPattern  = regexp.MustCompile(`(?i)news(?:\s+(?:about|on|for))?\s+(.+?)(?:[.?!]|$)`)
)

// DetectIntents extracts search requests from a user message. Dates are
// resolved relative to now; messages with no recognizable request yield an
// empty slice and the agent answers conversationally.
func DetectIntents(message string, now time.Time) []Intent {
	var intents []Intent

	if m := flightFromTo.FindStringSubmatch(message); m != nil {
		intents = append(intents, flightIntent(m[1], m[2], m[3], now))
	} else if m := flightToFrom.FindStringSubmatch(message); m != nil {
		intents = append(intents, flightIntent(m[2], m[1], m[3], now))
	}

	if m := hotelPattern.FindStringSubmatch(message); m != nil {
		intent := Intent{Kind: IntentHotels, Location: titleCase(strings.TrimSpace(m[1]))}
		if m[2] != "" && m[3] != "" {
			if checkIn, ok := ResolveDate(m[2], now); ok {
				intent.CheckInDate = checkIn
			}
			if checkOut, ok := ResolveDate(m[3], now); ok {
				intent.CheckOutDate = checkOut
			}
		}
		if intent.CheckInDate == "" {
			intent.CheckInDate = now.AddDate(0, 0, 1).Format("2006-01-02")
		}
		if intent.CheckOutDate == "" {
			intent.CheckOutDate = now.AddDate(0, 0, 2).Format("2006-01-02")
		}
		intents = append(intents, intent)
	}

	if m := newsPattern.FindStringSubmatch(message); m != nil {
		query := strings.TrimSpace(m[1])
		if query != "" {
			intents = append(intents, Intent{Kind: IntentNews, Query: query})
		}
	}

	return intents
}

func flightIntent(departure, arrival, rawDate string, now time.Time) Intent {
	intent := Intent{
		Kind:      IntentFlights,
		Departure: titleCase(strings.TrimSpace(departure)),
		Arrival:   titleCase(strings.TrimSpace(arrival)),
	}
	if date, ok := ResolveDate(rawDate, now); ok {
		intent.OutboundDate = date
	} else {
		intent.OutboundDate = now.AddDate(0, 0, 1).Format("2006-01-02")
	}
	return intent
}

// ResolveDate parses a date phrase into YYYY-MM-DD. When the year is omitted
// and the date already passed this year, next year is assumed; travel dates
// are always in the future.
func ResolveDate(raw string, now time.Time) (string, bool) {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), ","))
	if raw == "" {
		return "", false
	}

	switch strings.ToLower(raw) {
	case "today":
		return now.Format("2006-01-02"), true
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format("2006-01-02"), true
	case "next week":
		return now.AddDate(0, 0, 7).Format("2006-01-02"), true
	}

	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Format("2006-01-02"), true
	}

	// Month-name forms, with and without an explicit year.
	for _, layout := range []string{"January 2, 2006", "January 2 2006", "Jan 2, 2006", "Jan 2 2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	for _, layout := range []string{"January 2", "Jan 2", "2 January", "2 Jan"} {
		if t, err := time.Parse(layout, normalizeOrdinals(raw)); err == nil {
			resolved := time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
			if resolved.Before(now.Truncate(24 * time.Hour)) {
				resolved = resolved.AddDate(1, 0, 0)
			}
			return resolved.Format("2006-01-02"), true
		}
	}

	return "", false
}

var ordinalSuffix = regexp.MustCompile(`(\d+)(st|nd|rd|th)`)

func normalizeOrdinals(s string) string {
	return ordinalSuffix.ReplaceAllString(s, "$1")
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// describe renders the intent for logs.
func (i Intent) describe() string {
	switch i.Kind {
	case IntentFlights:
		return fmt.Sprintf("flights %s->%s on %s", i.Departure, i.Arrival, i.OutboundDate)
	case IntentHotels:
		return fmt.Sprintf("hotels in %s %s..%s", i.Location, i.CheckInDate, i.CheckOutDate)
	case IntentNews:
		return fmt.Sprintf("news %q", i.Query)
	default:
		return i.Kind
	}
}
