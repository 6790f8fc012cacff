// internal/api/handler/api/favorites.go
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/newthinker/folio/internal/api/response"
	"github.com/newthinker/folio/internal/app"
	"github.com/newthinker/folio/internal/core"
)

// FavoritesApp defines the interface needed from app.App.
type FavoritesApp interface {
	State() app.State
	AddToFavorites(ctx context.Context, ticker string) (core.StockItem, error)
	RemoveFromFavorites(ctx context.Context, ticker string) error
}

// FavoritesHandler handles favorites API requests.
type FavoritesHandler struct {
	app FavoritesApp
}

// NewFavoritesHandler creates a new favorites handler.
func NewFavoritesHandler(app FavoritesApp) *FavoritesHandler {
	return &FavoritesHandler{app: app}
}

// AddRequest is the request body for adding a favorite.
type AddRequest struct {
	Ticker string `json:"ticker"`
}

// List returns all favorites.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	favorites := h.app.State().Favorites
	response.JSON(w, http.StatusOK, map[string]any{
		"favorites": favorites,
		"count":     len(favorites),
	})
}

// Add stores the current snapshot of a fetched ticker.
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrInvalidRequest, err))
		return
	}

	if req.Ticker == "" {
		response.Error(w, http.StatusBadRequest, core.ErrInvalidTicker)
		return
	}

	item, err := h.app.AddToFavorites(r.Context(), req.Ticker)
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]any{
		"item":  item,
		"added": true,
	})
}

// Remove drops a ticker from favorites. Removing an absent ticker succeeds.
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	if err := h.app.RemoveFromFavorites(r.Context(), ticker); err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"ticker":  ticker,
		"removed": true,
	})
}
