package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/kart-io/bookmarkhub/observability"
	"github.com/kart-io/bookmarkhub/pkg/bookmark"
	"github.com/kart-io/bookmarkhub/pkg/logger"
	"github.com/kart-io/bookmarkhub/pkg/sink"
)

var validate = validator.New()

// Dispatcher triggers the asynchronous notification fan-out for an accepted
// bookmark. Satisfied by messaging.Dispatcher.
type Dispatcher interface {
	SendAsync(bm bookmark.Bookmark)
}

// Handlers bundles the dependencies of the ingestion endpoints. The response
// to a client reflects validation and storage only, never delivery outcomes.
type Handlers struct {
	store      sink.Sink
	dispatcher Dispatcher
	tel        *observability.TelemetryProvider
	log        logger.Logger
}

// NewHandlers creates the endpoint handlers. A nil telemetry provider
// degrades to no-op instruments, a nil logger to Discard.
func NewHandlers(store sink.Sink, dispatcher Dispatcher, tel *observability.TelemetryProvider, log logger.Logger) *Handlers {
	if tel == nil {
		tel, _ = observability.NewTelemetryProvider(nil)
	}
	if log == nil {
		log = logger.Discard
	}
	return &Handlers{
		store:      store,
		dispatcher: dispatcher,
		tel:        tel,
		log:        log,
	}
}

// handleBookmark accepts one bookmark event: validate, persist, then hand off
// to the dispatcher. The 201 is written as soon as the sink write succeeds;
// notification delivery happens after the response.
func (h *Handlers) handleBookmark(w http.ResponseWriter, r *http.Request) {
	var req bookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{
			Status:  "error",
			Message: "Invalid JSON",
		})
		return
	}

	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{
			Status:  "error",
			Message: "Missing required fields: url and title",
		})
		return
	}

	category, err := bookmark.NormalizeCategory(req.Category)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	bm := bookmark.Bookmark{
		URL:      req.URL,
		Title:    req.Title,
		Category: category,
	}

	h.tel.RecordBookmarkReceived(r.Context(), bm.Category)

	if err := h.store.Store(r.Context(), bm); err != nil {
		h.log.Error("failed to store bookmark",
			"url", bm.URL, "category", bm.Category, "error", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{
			Status:  "error",
			Message: "Internal server error",
		})
		return
	}

	if h.dispatcher != nil {
		h.dispatcher.SendAsync(bm)
	}

	writeJSON(w, http.StatusCreated, statusResponse{
		Status:  "success",
		Message: "Bookmark stored",
	})
}

// handleHealth reports process liveness.
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "healthy"})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
