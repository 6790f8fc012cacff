// internal/api/handler/api/trades.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/newthinker/folio/internal/api/response"
	"github.com/newthinker/folio/internal/app"
	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/portfolio"
	"github.com/shopspring/decimal"
)

// TradesApp defines the interface needed from app.App.
type TradesApp interface {
	Buy(ctx context.Context, ticker string, price float64, quantity int64) error
	Sell(ctx context.Context, ticker string, price float64, quantity int64) error
	BuyAtMarket(ctx context.Context, ticker string, quantity int64) (float64, error)
	SellAtMarket(ctx context.Context, ticker string, quantity int64) (float64, error)
	State() app.State
}

// TradesHandler executes simulated trades.
type TradesHandler struct {
	app TradesApp
}

// NewTradesHandler creates a new trades handler.
func NewTradesHandler(app TradesApp) *TradesHandler {
	return &TradesHandler{app: app}
}

// TradeRequest is the request body for a trade. Without a price the trade
// settles at the ticker's pre-market price.
type TradeRequest struct {
	Side     string   `json:"side"`
	Ticker   string   `json:"ticker"`
	Quantity int64    `json:"quantity"`
	Price    *float64 `json:"price,omitempty"`
}

// TradeResult is returned after a successful trade.
type TradeResult struct {
	Side      string                `json:"side"`
	Ticker    string                `json:"ticker"`
	Quantity  int64                 `json:"quantity"`
	Price     float64               `json:"price"`
	Balance   decimal.Decimal       `json:"balance"`
	Portfolio []core.PortfolioEntry `json:"portfolio"`
}

// Create executes a buy or sell.
func (h *TradesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrInvalidRequest, err))
		return
	}

	side := strings.ToLower(req.Side)
	if side != portfolio.SideBuy && side != portfolio.SideSell {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrInvalidRequest, fmt.Errorf("side must be buy or sell, got %q", req.Side)))
		return
	}

	price, err := h.execute(r.Context(), side, req)
	if err != nil {
		response.Fail(w, err)
		return
	}

	state := h.app.State()
	response.JSON(w, http.StatusCreated, TradeResult{
		Side:      side,
		Ticker:    req.Ticker,
		Quantity:  req.Quantity,
		Price:     price,
		Balance:   state.Balance,
		Portfolio: state.Portfolio,
	})
}

func (h *TradesHandler) execute(ctx context.Context, side string, req TradeRequest) (float64, error) {
	if req.Price == nil {
		if side == portfolio.SideBuy {
			return h.app.BuyAtMarket(ctx, req.Ticker, req.Quantity)
		}
		return h.app.SellAtMarket(ctx, req.Ticker, req.Quantity)
	}

	price := *req.Price
	if side == portfolio.SideBuy {
		return price, h.app.Buy(ctx, req.Ticker, price, req.Quantity)
	}
	return price, h.app.Sell(ctx, req.Ticker, price, req.Quantity)
}
