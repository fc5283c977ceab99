package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/service"
)

// noPositionsMessage accompanies the valuation of a user without positions.
const noPositionsMessage = "No positions to calculate PnL."

// PortfolioHandler handles valuation, history and chart requests of a user's portfolio.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// PositionPnLResponse is the valuation of a single position. Values that
// could not be computed are null and Error says why.
type PositionPnLResponse struct {
	Ticker        string   `json:"ticker"`
	Quantity      float64  `json:"quantity"`
	PurchasePrice *float64 `json:"purchase_price"`
	PurchaseDate  *string  `json:"purchase_date,omitempty"`
	CurrentPrice  *float64 `json:"current_price"`
	CurrentValue  *float64 `json:"current_value"`
	PnL           *float64 `json:"pnl"`
	PnLPercent    *float64 `json:"pnl_percent"`
	Error         string   `json:"error,omitempty"`
}

// ValuationResponse is the valuation of a whole portfolio.
type ValuationResponse struct {
	PositionsPnL    []PositionPnLResponse `json:"positions_pnl"`
	TotalPnL        float64               `json:"total_pnl"`
	TotalValue      float64               `json:"total_value"`
	TotalPnLPercent *float64              `json:"total_pnl_percent"`
	Message         string                `json:"message,omitempty"`
}

func newValuationResponse(v model.PortfolioValuation) ValuationResponse {
	resp := ValuationResponse{
		PositionsPnL:    make([]PositionPnLResponse, len(v.PositionsPnL)),
		TotalPnL:        response.Money(v.TotalPnL),
		TotalValue:      response.Money(v.TotalValue),
		TotalPnLPercent: response.MoneyPtr(v.TotalPnLPercent),
	}
	for i, p := range v.PositionsPnL {
		pr := PositionPnLResponse{
			Ticker:        p.Ticker,
			Quantity:      p.Quantity,
			PurchasePrice: p.PurchasePrice,
			CurrentPrice:  p.CurrentPrice,
			CurrentValue:  response.MoneyPtr(p.CurrentValue),
			PnL:           response.MoneyPtr(p.PnL),
			PnLPercent:    response.MoneyPtr(p.PnLPercent),
			Error:         p.Error,
		}
		if p.PurchaseDate != nil {
			d := p.PurchaseDate.Format(dateLayout)
			pr.PurchaseDate = &d
		}
		resp.PositionsPnL[i] = pr
	}
	if len(v.PositionsPnL) == 0 {
		resp.Message = noPositionsMessage
	}
	return resp
}

// Portfolio handles GET requests for the current valuation of a user's portfolio.
// Positions whose price cannot be resolved are reported with an error and
// left out of the totals.
//
// Endpoint: GET /users/{username}/portfolio
// Response: 200 OK with ValuationResponse
// Error: 404 Not Found if the user does not exist
// Error: 502 Bad Gateway if the market data provider failed for the whole batch
// Error: 500 Internal Server Error if the valuation cannot be computed
func (h *PortfolioHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	v, err := h.portfolioService.GetValuation(r.Context(), usernameParam(r))
	if err != nil {
		respondServiceError(w, err, "failed to compute portfolio valuation")
		return
	}

	respondJSON(w, http.StatusOK, newValuationResponse(v))
}

// HistoryPointResponse is one recorded portfolio value.
type HistoryPointResponse struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// History handles GET requests for the recorded value history of a user's portfolio.
//
// Endpoint: GET /users/{username}/portfolio/history
// Response: 200 OK with array of HistoryPointResponse, ascending by date
// Error: 404 Not Found if the user does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) History(w http.ResponseWriter, r *http.Request) {
	points, err := h.portfolioService.GetHistory(usernameParam(r))
	if err != nil {
		respondServiceError(w, err, "failed to get portfolio history")
		return
	}

	resp := make([]HistoryPointResponse, len(points))
	for i, p := range points {
		resp[i] = HistoryPointResponse{
			Date:  p.Date.Format(dateLayout),
			Value: response.Money(p.Value),
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// SeriesPointResponse is one point of a chart series. Value is null for gaps.
type SeriesPointResponse struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// SeriesResponse is one line of the portfolio chart.
type SeriesResponse struct {
	Key          string                `json:"key"`
	Label        string                `json:"label"`
	Color        string                `json:"color"`
	ColorSlot    int                   `json:"color_slot"`
	Approximated bool                  `json:"approximated"`
	Points       []SeriesPointResponse `json:"points"`
}

// ChartResponse is the portfolio chart dataset.
type ChartResponse struct {
	Range  string           `json:"range"`
	Series []SeriesResponse `json:"series"`
}

// Chart handles GET requests for the portfolio chart of a user: the total
// series plus one series per visible holding, windowed to the requested range.
//
// Endpoint: GET /users/{username}/portfolio/chart?range=1W|1M|3M|6M|1Y|ALL
// Response: 200 OK with ChartResponse
// Error: 400 Bad Request if the range is unknown
// Error: 404 Not Found if the user does not exist
// Error: 502 Bad Gateway if the market data provider failed for the whole batch
// Error: 500 Internal Server Error if the chart cannot be built
func (h *PortfolioHandler) Chart(w http.ResponseWriter, r *http.Request) {
	rng, err := request.ParseChartFilters(r.URL.Query().Get("range"))
	if err != nil {
		respondServiceError(w, err, "invalid range")
		return
	}

	ds, err := h.portfolioService.GetChart(r.Context(), usernameParam(r), rng)
	if err != nil {
		respondServiceError(w, err, "failed to build portfolio chart")
		return
	}

	resp := ChartResponse{
		Range:  string(rng),
		Series: make([]SeriesResponse, len(ds.Series)),
	}
	for i, s := range ds.Series {
		points := make([]SeriesPointResponse, len(s.Points))
		for j, p := range s.Points {
			points[j] = SeriesPointResponse{
				Date:  p.Date.Format(dateLayout),
				Value: response.MoneyPtr(p.Value),
			}
		}
		resp.Series[i] = SeriesResponse{
			Key:          s.Key,
			Label:        s.Label,
			Color:        s.Color,
			ColorSlot:    s.ColorSlot,
			Approximated: s.Approximated,
			Points:       points,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// Visibility handles GET requests for the chart series visibility of a user.
//
// Endpoint: GET /users/{username}/portfolio/visibility
// Response: 200 OK with a ticker to visible mapping
// Error: 404 Not Found if the user does not exist
func (h *PortfolioHandler) Visibility(w http.ResponseWriter, r *http.Request) {
	vis, err := h.portfolioService.GetVisibility(usernameParam(r))
	if err != nil {
		respondServiceError(w, err, "failed to get chart visibility")
		return
	}
	respondJSON(w, http.StatusOK, vis)
}

// ToggleVisibility handles POST requests that show or hide one chart series.
// The total series always stays visible.
//
// Endpoint: POST /users/{username}/portfolio/visibility/{ticker}
// Response: 200 OK with the resulting ticker to visible mapping
// Error: 404 Not Found if the user does not exist or holds no position in ticker
func (h *PortfolioHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	vis, err := h.portfolioService.ToggleVisibility(usernameParam(r), chi.URLParam(r, "ticker"))
	if err != nil {
		respondServiceError(w, err, "failed to toggle chart visibility")
		return
	}
	respondJSON(w, http.StatusOK, vis)
}
