// Package travel holds the search-provider result shapes. Every field is
// optional by contract: providers omit fields freely and renderers are
// expected to skip what is absent instead of failing.
package travel

// DataStore maps each result category to its batches, keyed by the request
// key used when the search ran (route+date, location+dates, or news query).
type DataStore struct {
	Hotels  map[string]HotelBatch  `json:"hotels,omitempty"`
	Flights map[string]FlightBatch `json:"flights,omitempty"`
	News    map[string]NewsBatch   `json:"news,omitempty"`
}

// Empty reports whether no category holds any batch.
func (d DataStore) Empty() bool {
	return len(d.Hotels) == 0 && len(d.Flights) == 0 && len(d.News) == 0
}

// Price carries the provider's price variants. Several aliases exist on the
// wire; Amount picks whichever is present.
type Price struct {
	Raw                       string  `json:"price,omitempty"`
	ExtractedPrice            float64 `json:"extracted_price,omitempty"`
	ExtractedPriceBeforeTaxes float64 `json:"extracted_price_before_taxes,omitempty"`
}

// Amount returns the numeric price, preferring the before-taxes figure.
func (p Price) Amount() (float64, bool) {
	if p.ExtractedPriceBeforeTaxes != 0 {
		return p.ExtractedPriceBeforeTaxes, true
	}
	if p.ExtractedPrice != 0 {
		return p.ExtractedPrice, true
	}
	return 0, false
}

// HotelBatch is one google_hotels result set.
type HotelBatch struct {
	Properties []Hotel `json:"properties"`
}

// Hotel is a single property result.
type Hotel struct {
	Idx            int            `json:"idx,omitempty"`
	Type           string         `json:"type,omitempty"`
	Name           string         `json:"name,omitempty"`
	GPSCoordinates map[string]any `json:"gps_coordinates,omitempty"`
	City           string         `json:"city,omitempty"`
	Country        string         `json:"country,omitempty"`
	CheckInTime    string         `json:"check_in_time,omitempty"`
	CheckOutTime   string         `json:"check_out_time,omitempty"`
	PricePerNight  Price          `json:"price_per_night"`
	TotalPrice     Price          `json:"total_price"`
	Offers         []any          `json:"offers,omitempty"`
	Rating         float64        `json:"rating,omitempty"`
	Reviews        int            `json:"reviews,omitempty"`
	LocationRating float64        `json:"location_rating,omitempty"`
	Amenities      []string       `json:"amenities,omitempty"`
	EssentialInfo  []string       `json:"essential_info,omitempty"`
	Images         []HotelImage   `json:"images,omitempty"`
	Link           string         `json:"link,omitempty"`
}

// HotelImage is one gallery entry.
type HotelImage struct {
	Thumbnail     string `json:"thumbnail,omitempty"`
	OriginalImage string `json:"original_image,omitempty"`
}

// FlightBatch is one google_flights result set, with the search metadata the
// provider returned alongside it.
type FlightBatch struct {
	Flights          []Flight       `json:"flights"`
	SearchMetadata   map[string]any `json:"search_metadata,omitempty"`
	SearchParameters map[string]any `json:"search_parameters,omitempty"`
	PriceInsights    map[string]any `json:"price_insights,omitempty"`
}

// Flight is a single itinerary.
type Flight struct {
	Idx          int             `json:"idx,omitempty"`
	Price        float64         `json:"price,omitempty"`
	Duration     int             `json:"duration,omitempty"`
	Stops        int             `json:"stops,omitempty"`
	Segments     []FlightSegment `json:"segments,omitempty"`
	BookingToken string          `json:"booking_token,omitempty"`

	// Flattened from the first segment for single-leg rendering.
	Airline          string `json:"airline,omitempty"`
	FlightNumber     string `json:"flight_number,omitempty"`
	DepartureAirport string `json:"departure_airport,omitempty"`
	ArrivalAirport   string `json:"arrival_airport,omitempty"`
	DepartureTime    string `json:"departure_time,omitempty"`
	ArrivalTime      string `json:"arrival_time,omitempty"`
}

// FlightSegment is one leg of an itinerary.
type FlightSegment struct {
	DepartureAirport Airport `json:"departure_airport"`
	ArrivalAirport   Airport `json:"arrival_airport"`
	Airline          string  `json:"airline,omitempty"`
	AirlineLogo      string  `json:"airline_logo,omitempty"`
	FlightNumber     string  `json:"flight_number,omitempty"`
	Duration         int     `json:"duration,omitempty"`
	Airplane         string  `json:"airplane,omitempty"`
}

// Airport identifies one endpoint of a segment.
type Airport struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Time string `json:"time,omitempty"`
}

// NewsBatch is one google_news result set.
type NewsBatch struct {
	Articles []NewsArticle `json:"articles"`
}

// NewsArticle is a single article result. Providers disagree on whether the
// publication time arrives as "date" or "time"; When resolves the alias.
type NewsArticle struct {
	Idx       int    `json:"idx,omitempty"`
	Position  int    `json:"position,omitempty"`
	Title     string `json:"title,omitempty"`
	Link      string `json:"link,omitempty"`
	Source    string `json:"source,omitempty"`
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`
	Snippet   string `json:"snippet,omitempty"`
	Favicon   string `json:"favicon,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// When returns the article timestamp under either alias.
func (a NewsArticle) When() string {
	if a.Time != "" {
		return a.Time
	}
	return a.Date
}
