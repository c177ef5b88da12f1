package search

import (
	"context"
	"fmt"
	"log"
	"strings"

	"tripagent/internal/model/travel"
)

// HotelQuery describes one hotel search.
type HotelQuery struct {
	Location     string
	CheckInDate  string
	CheckOutDate string
}

// Key is the request key the batch is stored under.
func (q HotelQuery) Key() string {
	return fmt.Sprintf("%s_%s_%s", q.Location, q.CheckInDate, q.CheckOutDate)
}

type hotelResponse struct {
	Properties []travel.Hotel `json:"properties"`
}

// SearchHotels queries google_hotels for the location and stay dates.
func (c *Client) SearchHotels(ctx context.Context, q HotelQuery) (string, travel.HotelBatch, error) {
	params := c.baseParams("google_hotels")
	params.Set("q", q.Location)
	params.Set("check_in_date", q.CheckInDate)
	params.Set("check_out_date", q.CheckOutDate)
	params.Set("currency", c.currency)

	log.Printf("[search] hotels in %q %s..%s", q.Location, q.CheckInDate, q.CheckOutDate)

	var resp hotelResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", travel.HotelBatch{}, err
	}
	if len(resp.Properties) == 0 {
		return "No hotels found for the given location and dates.", travel.HotelBatch{}, nil
	}

	return parseHotels(resp.Properties)
}

// parseHotels builds the TOON summary and numbers each property.
func parseHotels(properties []travel.Hotel) (string, travel.HotelBatch, error) {
	var toon strings.Builder
	fmt.Fprintf(&toon, "properties [%d] {idx, name, city, country, price_per_night, total_price, rating, reviews, location_rating, amenities_summary}\n", len(properties))

	batch := travel.HotelBatch{Properties: make([]travel.Hotel, 0, len(properties))}

	for i, p := range properties {
		p.Idx = i + 1
		batch.Properties = append(batch.Properties, p)

		fmt.Fprintf(&toon, "\t\t%d,%s,%s,%s,%s,%s,%.1f,%d,%.1f,%s\n",
			p.Idx, orNA(p.Name), orNA(p.City), orNA(p.Country),
			priceField(p.PricePerNight), priceField(p.TotalPrice),
			p.Rating, p.Reviews, p.LocationRating, amenitiesSummary(p.Amenities))
	}

	return toon.String(), batch, nil
}

func amenitiesSummary(amenities []string) string {
	switch {
	case len(amenities) == 0:
		return "None"
	case len(amenities) <= 3:
		return strings.Join(amenities, ", ")
	default:
		return fmt.Sprintf("%s, +%d more", strings.Join(amenities[:2], ", "), len(amenities)-2)
	}
}

func priceField(p travel.Price) string {
	if amount, ok := p.Amount(); ok {
		return fmt.Sprintf("%.0f", amount)
	}
	return "N/A"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
