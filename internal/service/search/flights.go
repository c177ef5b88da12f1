package search

import (
	"context"
	"fmt"
	"log"
	"strings"

	"tripagent/internal/model/travel"
)

// FlightQuery describes one flight search.
type FlightQuery struct {
	Departure    string
	Arrival      string
	OutboundDate string
	RoundTrip    bool
	ReturnDate   string
}

// Key is the request key the batch is stored under.
func (q FlightQuery) Key() string {
	return fmt.Sprintf("%s_%s_%s", q.Departure, q.Arrival, q.OutboundDate)
}

type flightResponse struct {
	BestFlights      []rawItinerary `json:"best_flights"`
	OtherFlights     []rawItinerary `json:"other_flights"`
	SearchMetadata   map[string]any `json:"search_metadata"`
	SearchParameters map[string]any `json:"search_parameters"`
	PriceInsights    map[string]any `json:"price_insights"`
}

type rawItinerary struct {
	Price           float64                `json:"price"`
	TotalDuration   int                    `json:"total_duration"`
	Flights         []travel.FlightSegment `json:"flights"`
	CarbonEmissions map[string]any         `json:"carbon_emissions"`
	BookingToken    string                 `json:"booking_token"`
}

// SearchFlights queries google_flights for the route. City names are resolved
// to IATA codes; unknown cities fail the search.
func (c *Client) SearchFlights(ctx context.Context, q FlightQuery) (string, travel.FlightBatch, error) {
	departureID, ok := LookupIATA(q.Departure)
	if !ok {
		return "", travel.FlightBatch{}, fmt.Errorf("unknown departure city %q", q.Departure)
	}
	arrivalID, ok := LookupIATA(q.Arrival)
	if !ok {
		return "", travel.FlightBatch{}, fmt.Errorf("unknown arrival city %q", q.Arrival)
	}

	params := c.baseParams("google_flights")
	params.Set("departure_id", departureID)
	params.Set("arrival_id", arrivalID)
	params.Set("outbound_date", q.OutboundDate)
	params.Set("currency", c.currency)
	params.Set("travel_class", "economy")
	params.Set("stops", "any")
	params.Set("sort_by", "price")
	params.Set("adults", "1")
	if q.RoundTrip {
		params.Set("flight_type", "round_trip")
		if q.ReturnDate != "" {
			params.Set("return_date", q.ReturnDate)
		} else {
			log.Printf("[search] round trip requested without return date for %s", q.Key())
		}
	} else {
		params.Set("flight_type", "one_way")
	}

	log.Printf("[search] flights %s -> %s on %s", departureID, arrivalID, q.OutboundDate)

	var resp flightResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", travel.FlightBatch{}, err
	}

	itineraries := resp.OtherFlights
	if len(itineraries) == 0 {
		itineraries = resp.BestFlights
	}
	if len(itineraries) == 0 {
		return "No flights found for the given route and dates.", travel.FlightBatch{}, nil
	}

	return parseFlights(itineraries, resp)
}

// parseFlights splits raw itineraries into the TOON summary for the agent and
// the full batch for the UI.
func parseFlights(itineraries []rawItinerary, resp flightResponse) (string, travel.FlightBatch, error) {
	var toon strings.Builder
	fmt.Fprintf(&toon, "flights [%d] {idx, price, duration, stops, departure, arrival, airline, flight_num}\n", len(itineraries))

	batch := travel.FlightBatch{
		Flights:          make([]travel.Flight, 0, len(itineraries)),
		SearchMetadata:   resp.SearchMetadata,
		SearchParameters: resp.SearchParameters,
		PriceInsights:    resp.PriceInsights,
	}

	for i, it := range itineraries {
		stops := len(it.Flights) - 1
		if stops < 0 {
			stops = 0
		}

		flight := travel.Flight{
			Idx:          i + 1,
			Price:        it.Price,
			Duration:     it.TotalDuration,
			Stops:        stops,
			Segments:     it.Flights,
			BookingToken: it.BookingToken,
		}
		if len(it.Flights) > 0 {
			first := it.Flights[0]
			last := it.Flights[len(it.Flights)-1]
			flight.Airline = first.Airline
			flight.FlightNumber = first.FlightNumber
			flight.DepartureAirport = first.DepartureAirport.ID
			flight.DepartureTime = first.DepartureAirport.Time
			flight.ArrivalAirport = last.ArrivalAirport.ID
			flight.ArrivalTime = last.ArrivalAirport.Time
		}
		batch.Flights = append(batch.Flights, flight)

		for _, seg := range it.Flights {
			fmt.Fprintf(&toon, "\t\t%d,%.0f,%d,%d,%s,%s,%s,%s\n",
				flight.Idx, it.Price, it.TotalDuration, stops,
				seg.DepartureAirport.ID, seg.ArrivalAirport.ID, seg.Airline, seg.FlightNumber)
		}
	}

	return toon.String(), batch, nil
}
