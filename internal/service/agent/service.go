// Package agent orchestrates one chat turn: restore the thread transcript,
// run the searches the message asks for, compose a short reply, persist the
// turn, and expose the per-request data snapshot to the data endpoints.
package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"tripagent/internal/model/chat"
	"tripagent/internal/model/travel"
	"tripagent/internal/service/conversation"
	"tripagent/internal/service/search"
)

// Searcher is the provider surface the agent drives.
type Searcher interface {
	SearchFlights(ctx context.Context, q search.FlightQuery) (string, travel.FlightBatch, error)
	SearchHotels(ctx context.Context, q search.HotelQuery) (string, travel.HotelBatch, error)
	SearchNews(ctx context.Context, query string) (string, travel.NewsBatch, error)
}

// Composer phrases the final reply. Nil disables LLM phrasing.
type Composer interface {
	ComposeReply(ctx context.Context, history []chat.Message, userMessage string, toolResults []string) (string, error)
}

// Service is the travel agent.
type Service struct {
	searcher      Searcher
	composer      Composer
	conversations *conversation.Service

	mu      sync.Mutex
	current travel.DataStore
}

// NewService builds the agent. searcher may be nil when the provider key is
// missing; composer may be nil to use the deterministic summary.
func NewService(searcher Searcher, composer Composer, conversations *conversation.Service) *Service {
	return &Service{
		searcher:      searcher,
		composer:      composer,
		conversations: conversations,
		current:       emptyDataStore(),
	}
}

// Chat runs one turn for the thread and returns the reply plus the data
// fetched during this request only. The per-request snapshot is reset at the
// start of every turn, never merged with earlier turns.
func (s *Service) Chat(ctx context.Context, threadID, message string) (chat.ChatResponse, error) {
	history, err := s.conversations.LoadTranscript(ctx, threadID)
	if err != nil {
		return chat.ChatResponse{}, err
	}

	dataStore := emptyDataStore()
	intents := DetectIntents(message, time.Now())

	var toolResults []string
	for _, intent := range intents {
		log.Printf("[agent] thread=%s intent: %s", threadID, intent.describe())
		result, err := s.runIntent(ctx, intent, &dataStore)
		if err != nil {
			log.Printf("[agent] search failed for %s: %v", intent.describe(), err)
			result = fmt.Sprintf("Error searching %s: %v", intent.Kind, err)
		}
		toolResults = append(toolResults, result)
	}

	reply := s.composeReply(ctx, history, message, toolResults, intents, dataStore)

	if _, err := s.conversations.AppendTurn(ctx, threadID, message, reply); err != nil {
		return chat.ChatResponse{}, err
	}

	s.mu.Lock()
	s.current = dataStore
	s.mu.Unlock()

	return chat.ChatResponse{Response: reply, ThreadID: threadID, DataStore: dataStore}, nil
}

func (s *Service) runIntent(ctx context.Context, intent Intent, dataStore *travel.DataStore) (string, error) {
	if s.searcher == nil {
		return "", fmt.Errorf("search provider is not configured")
	}

	switch intent.Kind {
	case IntentFlights:
		q := search.FlightQuery{
			Departure:    intent.Departure,
			Arrival:      intent.Arrival,
			OutboundDate: intent.OutboundDate,
			RoundTrip:    intent.RoundTrip,
			ReturnDate:   intent.ReturnDate,
		}
		toon, batch, err := s.searcher.SearchFlights(ctx, q)
		if err != nil {
			return "", err
		}
		if len(batch.Flights) > 0 {
			dataStore.Flights[q.Key()] = batch
		}
		return toon, nil

	case IntentHotels:
		q := search.HotelQuery{
			Location:     intent.Location,
			CheckInDate:  intent.CheckInDate,
			CheckOutDate: intent.CheckOutDate,
		}
		toon, batch, err := s.searcher.SearchHotels(ctx, q)
		if err != nil {
			return "", err
		}
		if len(batch.Properties) > 0 {
			dataStore.Hotels[q.Key()] = batch
		}
		return toon, nil

	case IntentNews:
		toon, batch, err := s.searcher.SearchNews(ctx, intent.Query)
		if err != nil {
			return "", err
		}
		if len(batch.Articles) > 0 {
			dataStore.News[intent.Query] = batch
		}
		return toon, nil

	default:
		return "", fmt.Errorf("unknown intent %q", intent.Kind)
	}
}

func (s *Service) composeReply(ctx context.Context, history []chat.Message, message string, toolResults []string, intents []Intent, dataStore travel.DataStore) string {
	if s.composer != nil {
		reply, err := s.composer.ComposeReply(ctx, history, message, toolResults)
		if err == nil {
			return reply
		}
		log.Printf("[agent] reply composer failed, using summary: %v", err)
	}
	return summaryReply(intents, dataStore)
}

// summaryReply is the deterministic fallback when no LLM is configured.
func summaryReply(intents []Intent, dataStore travel.DataStore) string {
	if len(intents) == 0 {
		return "I can help you plan a trip: ask me for flights between two cities, hotels in a destination, or recent travel news."
	}

	var parts []string
	for _, intent := range intents {
		switch intent.Kind {
		case IntentFlights:
			count := 0
			for _, batch := range dataStore.Flights {
				count += len(batch.Flights)
			}
			if count == 0 {
				parts = append(parts, fmt.Sprintf("I couldn't find flights from %s to %s on %s.", intent.Departure, intent.Arrival, intent.OutboundDate))
			} else {
				parts = append(parts, fmt.Sprintf("I found %d flight options from %s to %s on %s.", count, intent.Departure, intent.Arrival, intent.OutboundDate))
			}
		case IntentHotels:
			count := 0
			for _, batch := range dataStore.Hotels {
				count += len(batch.Properties)
			}
			if count == 0 {
				parts = append(parts, fmt.Sprintf("I couldn't find hotels in %s for those dates.", intent.Location))
			} else {
				parts = append(parts, fmt.Sprintf("I found %d hotels in %s from %s to %s.", count, intent.Location, intent.CheckInDate, intent.CheckOutDate))
			}
		case IntentNews:
			count := 0
			for _, batch := range dataStore.News {
				count += len(batch.Articles)
			}
			if count == 0 {
				parts = append(parts, fmt.Sprintf("I couldn't find recent news about %s.", intent.Query))
			} else {
				parts = append(parts, fmt.Sprintf("Here are %d recent articles about %s.", count, intent.Query))
			}
		}
	}
	parts = append(parts, "The cards below have the full details.")
	return strings.Join(parts, " ")
}

// StoredData returns the batch stored under the key during the last turn.
func (s *Service) StoredData(dataType, key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch dataType {
	case IntentFlights:
		batch, ok := s.current.Flights[key]
		return batch, ok
	case IntentHotels:
		batch, ok := s.current.Hotels[key]
		return batch, ok
	case IntentNews:
		batch, ok := s.current.News[key]
		return batch, ok
	default:
		return nil, false
	}
}

// StoredKeys lists the request keys cached for a category.
func (s *Service) StoredKeys(dataType string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := []string{}
	switch dataType {
	case IntentFlights:
		for k := range s.current.Flights {
			keys = append(keys, k)
		}
	case IntentHotels:
		for k := range s.current.Hotels {
			keys = append(keys, k)
		}
	case IntentNews:
		for k := range s.current.News {
			keys = append(keys, k)
		}
	}
	return keys
}

// ClearData drops the current-request snapshot. Conversation history in the
// database is untouched.
func (s *Service) ClearData() {
	s.mu.Lock()
	s.current = emptyDataStore()
	s.mu.Unlock()
}

func emptyDataStore() travel.DataStore {
	return travel.DataStore{
		Hotels:  map[string]travel.HotelBatch{},
		Flights: map[string]travel.FlightBatch{},
		News:    map[string]travel.NewsBatch{},
	}
}
