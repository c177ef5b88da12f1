// Package surface renders the chat transcript and result cards for the
// terminal. Rendering is read-only over controller state; all fields in the
// travel shapes are optional, so every card degrades to whatever is present.
package surface

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tripagent/internal/client/controller"
	"tripagent/internal/client/transcript"
	chatModel "tripagent/internal/model/chat"
	"tripagent/internal/model/travel"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cardStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	activeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

// Surface renders client state to strings.
type Surface struct{}

// New creates a surface.
func New() *Surface {
	return &Surface{}
}

// RenderTranscript renders the transcript entries, newest last. Assistant
// entries are decomposed so structured segments render as cards instead of
// raw JSON.
func (s *Surface) RenderTranscript(entries []controller.Entry, loading bool) string {
	var sb strings.Builder
	for _, entry := range entries {
		switch entry.Role {
		case controller.RoleUser:
			sb.WriteString(userStyle.Render("you") + "  " + entry.Content + "\n\n")
		default:
			sb.WriteString(s.renderAssistant(entry.Content))
		}
	}
	if loading {
		sb.WriteString(dimStyle.Render("thinking...") + "\n")
	}
	return sb.String()
}

func (s *Surface) renderAssistant(content string) string {
	d := transcript.Decompose(content)

	var sb strings.Builder
	sb.WriteString(assistantStyle.Render("agent") + "  " + d.Text + "\n")
	if len(d.Hotels) > 0 {
		sb.WriteString(s.RenderHotels(d.Hotels))
	}
	if len(d.Flights) > 0 {
		sb.WriteString(s.RenderFlights(d.Flights))
	}
	if len(d.News) > 0 {
		sb.WriteString(s.RenderNews(d.News))
	}
	sb.WriteString("\n")
	return sb.String()
}

// RenderHotels renders compact hotel cards.
func (s *Surface) RenderHotels(hotels []travel.Hotel) string {
	var sb strings.Builder
	for i, hotel := range hotels {
		var lines []string
		lines = append(lines, cardTitleStyle.Render(fmt.Sprintf("%d. %s", i+1, fallback(hotel.Name, "Unnamed property"))))

		if hotel.Rating > 0 {
			line := fmt.Sprintf("rating %.1f", hotel.Rating)
			if hotel.Reviews > 0 {
				line += fmt.Sprintf(" (%d reviews)", hotel.Reviews)
			}
			lines = append(lines, line)
		}
		if amount, ok := hotel.PricePerNight.Amount(); ok {
			lines = append(lines, fmt.Sprintf("per night %.0f", amount))
		} else if hotel.PricePerNight.Raw != "" {
			lines = append(lines, "per night "+hotel.PricePerNight.Raw)
		}
		if len(hotel.Amenities) > 0 {
			lines = append(lines, dimStyle.Render(summarize(hotel.Amenities, 3)))
		}

		sb.WriteString(cardStyle.Render(strings.Join(lines, "\n")) + "\n")
	}
	return sb.String()
}

// RenderHotelDetail renders the expanded view of one hotel, including the
// gallery links that the compact card omits.
func (s *Surface) RenderHotelDetail(hotel travel.Hotel) string {
	var lines []string
	lines = append(lines, cardTitleStyle.Render(fallback(hotel.Name, "Unnamed property")))

	if hotel.City != "" || hotel.Country != "" {
		lines = append(lines, strings.TrimSpace(hotel.City+" "+hotel.Country))
	}
	if hotel.CheckInTime != "" || hotel.CheckOutTime != "" {
		lines = append(lines, fmt.Sprintf("check-in %s  check-out %s",
			fallback(hotel.CheckInTime, "n/a"), fallback(hotel.CheckOutTime, "n/a")))
	}
	if amount, ok := hotel.TotalPrice.Amount(); ok {
		lines = append(lines, fmt.Sprintf("total %.0f", amount))
	}
	if hotel.LocationRating > 0 {
		lines = append(lines, fmt.Sprintf("location rating %.1f", hotel.LocationRating))
	}
	if len(hotel.Amenities) > 0 {
		lines = append(lines, "amenities: "+strings.Join(hotel.Amenities, ", "))
	}
	if len(hotel.EssentialInfo) > 0 {
		lines = append(lines, "essential: "+strings.Join(hotel.EssentialInfo, ", "))
	}
	for _, img := range hotel.Images {
		if img.OriginalImage != "" {
			lines = append(lines, dimStyle.Render(img.OriginalImage))
		} else if img.Thumbnail != "" {
			lines = append(lines, dimStyle.Render(img.Thumbnail))
		}
	}
	if hotel.Link != "" {
		lines = append(lines, dimStyle.Render(hotel.Link))
	}

	return cardStyle.Render(strings.Join(lines, "\n")) + "\n"
}

// RenderFlights renders compact flight cards.
func (s *Surface) RenderFlights(flights []travel.Flight) string {
	var sb strings.Builder
	for i, flight := range flights {
		var lines []string

		route := strings.TrimSpace(flight.DepartureAirport + " -> " + flight.ArrivalAirport)
		if route == "->" {
			route = "Itinerary"
		}
		lines = append(lines, cardTitleStyle.Render(fmt.Sprintf("%d. %s", i+1, route)))

		if flight.Airline != "" {
			line := flight.Airline
			if flight.FlightNumber != "" {
				line += " " + flight.FlightNumber
			}
			lines = append(lines, line)
		}
		if flight.DepartureTime != "" || flight.ArrivalTime != "" {
			lines = append(lines, fmt.Sprintf("%s - %s",
				fallback(flight.DepartureTime, "n/a"), fallback(flight.ArrivalTime, "n/a")))
		}
		if flight.Price > 0 {
			lines = append(lines, fmt.Sprintf("price %.0f", flight.Price))
		}
		if flight.Duration > 0 {
			lines = append(lines, fmt.Sprintf("%dh %02dm, %d stop(s)", flight.Duration/60, flight.Duration%60, flight.Stops))
		}

		sb.WriteString(cardStyle.Render(strings.Join(lines, "\n")) + "\n")
	}
	return sb.String()
}

// RenderNews renders compact article cards.
func (s *Surface) RenderNews(articles []travel.NewsArticle) string {
	var sb strings.Builder
	for i, article := range articles {
		var lines []string
		lines = append(lines, cardTitleStyle.Render(fmt.Sprintf("%d. %s", i+1, fallback(article.Title, "Untitled"))))

		meta := article.Source
		if when := article.When(); when != "" {
			if meta != "" {
				meta += ", "
			}
			meta += when
		}
		if meta != "" {
			lines = append(lines, dimStyle.Render(meta))
		}
		if article.Snippet != "" {
			lines = append(lines, article.Snippet)
		}
		if article.Link != "" {
			lines = append(lines, dimStyle.Render(article.Link))
		}

		sb.WriteString(cardStyle.Render(strings.Join(lines, "\n")) + "\n")
	}
	return sb.String()
}

// RenderSessions renders the sidebar list, most recent first.
func (s *Surface) RenderSessions(sessions []chatModel.Session, activeID string) string {
	if len(sessions) == 0 {
		return dimStyle.Render("no sessions yet") + "\n"
	}

	var sb strings.Builder
	for i, session := range sessions {
		line := fmt.Sprintf("%d. %s", i+1, session.Title)
		if session.LastMessage != "" {
			line += dimStyle.Render("  " + truncate(session.LastMessage, 40))
		}
		if session.ID == activeID {
			line = activeStyle.Render("* ") + line
		} else {
			line = "  " + line
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func fallback(value, alt string) string {
	if value == "" {
		return alt
	}
	return value
}

func summarize(items []string, limit int) string {
	if len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:limit], ", ") + fmt.Sprintf(", +%d more", len(items)-limit)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
