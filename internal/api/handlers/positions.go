package handlers

import (
	"net/http"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/service"
)

// dateLayout is the wire format of calendar dates.
const dateLayout = "2006-01-02"

// PositionHandler handles HTTP requests for the positions of a user.
type PositionHandler struct {
	positionService *service.PositionService
}

// NewPositionHandler creates a new PositionHandler
func NewPositionHandler(positionService *service.PositionService) *PositionHandler {
	return &PositionHandler{
		positionService: positionService,
	}
}

// PositionResponse is a single stored position.
type PositionResponse struct {
	ID            string   `json:"id"`
	Ticker        string   `json:"ticker"`
	Quantity      float64  `json:"quantity"`
	PurchasePrice *float64 `json:"purchase_price"`
	PurchaseDate  *string  `json:"purchase_date"`
	CreatedAt     string   `json:"created_at"`
}

// PositionsResponse lists the positions of a user.
type PositionsResponse struct {
	Positions []PositionResponse `json:"positions"`
}

// AddPositionResponse acknowledges a stored position.
type AddPositionResponse struct {
	Message  string           `json:"message"`
	Position PositionResponse `json:"position"`
}

func newPositionResponse(p model.Position) PositionResponse {
	resp := PositionResponse{
		ID:            p.ID,
		Ticker:        p.Ticker,
		Quantity:      p.Quantity,
		PurchasePrice: p.PurchasePrice,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.PurchaseDate != nil {
		d := p.PurchaseDate.Format(dateLayout)
		resp.PurchaseDate = &d
	}
	return resp
}

// Positions handles GET requests for the raw positions of a user, in the order they were added.
//
// Endpoint: GET /users/{username}/positions
// Response: 200 OK with PositionsResponse
// Error: 404 Not Found if the user does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *PositionHandler) Positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.positionService.GetPositions(usernameParam(r))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve positions")
		return
	}

	resp := PositionsResponse{Positions: make([]PositionResponse, len(positions))}
	for i, p := range positions {
		resp.Positions[i] = newPositionResponse(p)
	}
	respondJSON(w, http.StatusOK, resp)
}

// AddPosition handles POST requests to add a position for a user.
//
// Endpoint: POST /users/{username}/positions
// Request Body: CreatePositionRequest (ticker, quantity, purchase_price?, purchase_date?)
// Response: 201 Created with AddPositionResponse
// Error: 400 Bad Request with per-field details if validation fails
// Error: 404 Not Found if the user does not exist
// Error: 500 Internal Server Error if the position cannot be stored
func (h *PositionHandler) AddPosition(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreatePositionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	position, err := h.positionService.AddPosition(r.Context(), usernameParam(r), req)
	if err != nil {
		respondServiceError(w, err, "failed to add position")
		return
	}

	respondJSON(w, http.StatusCreated, AddPositionResponse{
		Message:  "Position added successfully",
		Position: newPositionResponse(position),
	})
}
