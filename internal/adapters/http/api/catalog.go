package api

import (
	"context"
	"net/http"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
)

// CatalogDependencies defines the interface for catalog reads.
type CatalogDependencies interface {
	Games(ctx context.Context) ([]model.Game, error)
	Faculties(ctx context.Context) ([]string, error)
}

// CatalogHandler serves the games and faculties lists.
type CatalogHandler struct {
	deps CatalogDependencies
	log  logger.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies, log logger.Logger) *CatalogHandler {
	return &CatalogHandler{deps: deps, log: log}
}

// HandleGames handles GET /api/games.
func (h *CatalogHandler) HandleGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.deps.Games(r.Context())
	if err != nil {
		fail(r.Context(), w, h.log, "api.games", err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// HandleFaculties handles GET /api/faculties.
func (h *CatalogHandler) HandleFaculties(w http.ResponseWriter, r *http.Request) {
	faculties, err := h.deps.Faculties(r.Context())
	if err != nil {
		fail(r.Context(), w, h.log, "api.faculties", err)
		return
	}
	writeJSON(w, http.StatusOK, faculties)
}
