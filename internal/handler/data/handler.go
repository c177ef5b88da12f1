package data

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tripagent/pkg/utils"
)

// Provider exposes the agent's current-request data snapshot.
type Provider interface {
	StoredData(dataType, key string) (any, bool)
	StoredKeys(dataType string) []string
}

// Handler serves the full result batches the chat replies reference.
type Handler struct {
	provider Provider
}

// New creates the data handler.
func New(provider Provider) *Handler {
	return &Handler{provider: provider}
}

// RegisterRoutes mounts the data endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/data", func(r chi.Router) {
		r.Get("/keys/{dataType}", h.handleListKeys)
		r.Get("/{dataType}/{key}", h.handleGetData)
	})
}

func (h *Handler) handleGetData(w http.ResponseWriter, r *http.Request) {
	dataType := chi.URLParam(r, "dataType")
	key := chi.URLParam(r, "key")

	if !validDataType(dataType) {
		utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("unknown data type %q", dataType))
		return
	}

	batch, ok := h.provider.StoredData(dataType, key)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, fmt.Sprintf("no data found for %s with key: %s", dataType, key))
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"data_type": dataType,
		"key":       key,
		"data":      batch,
	})
}

func (h *Handler) handleListKeys(w http.ResponseWriter, r *http.Request) {
	dataType := chi.URLParam(r, "dataType")

	if !validDataType(dataType) {
		utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("unknown data type %q", dataType))
		return
	}

	keys := h.provider.StoredKeys(dataType)
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"data_type": dataType,
		"keys":      keys,
		"count":     len(keys),
	})
}

func validDataType(dataType string) bool {
	switch dataType {
	case "flights", "hotels", "news":
		return true
	}
	return false
}
