package utils

import (
	"log"
	"net/http"
)

// SetupStreamHeaders prepares a response for incremental plain-text delivery.
// The chat stream endpoint sends the final JSON document in flushed chunks
// rather than as one buffered body.
func SetupStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
}

// WriteChunk writes one chunk and flushes it to the client immediately.
func WriteChunk(w http.ResponseWriter, flusher http.Flusher, chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	if _, err := w.Write(chunk); err != nil {
		log.Printf("failed to write stream chunk: %v", err)
		return
	}
	flusher.Flush()
}
