package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/podium/internal/domain/ledger"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/query"
	"github.com/okian/podium/pkg/logger"
)

// ResultsDependencies defines the interface for ledger reads and writes.
type ResultsDependencies interface {
	Leaderboard(ctx context.Context) ([]query.Row, error)
	RecordResult(ctx context.Context, p ledger.Placement) (model.Result, bool, error)
	DeleteResult(ctx context.Context, gameID string, position int) (bool, error)
}

// ResultsHandler handles the results endpoints.
type ResultsHandler struct {
	deps ResultsDependencies
	log  logger.Logger
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultsDependencies, log logger.Logger) *ResultsHandler {
	return &ResultsHandler{deps: deps, log: log}
}

// recordRequest mirrors the body of POST /api/results. Position may be a
// JSON number or a numeric string.
type recordRequest struct {
	GameID          string          `json:"game_id"`
	Position        json.RawMessage `json:"position"`
	ParticipantName string          `json:"participant_name"`
	Faculty         string          `json:"faculty"`
	TeamPlayers     model.Roster    `json:"team_players"`
}

var errMissingFields = errors.New("Missing fields") //nolint:revive,staticcheck // exact client-facing message

func (req recordRequest) placement() (ledger.Placement, error) {
	raw := bytes.TrimSpace(req.Position)
	if strings.TrimSpace(req.GameID) == "" || strings.TrimSpace(req.Faculty) == "" ||
		len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte(`""`)) {
		return ledger.Placement{}, errMissingFields
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return ledger.Placement{}, fmt.Errorf("%w: position: %v", ledger.ErrValidation, err)
		}
	} else {
		text = string(raw)
	}
	pos, err := ledger.ParsePosition(text)
	if err != nil {
		return ledger.Placement{}, err
	}

	return ledger.Placement{
		GameID:          req.GameID,
		Position:        pos,
		ParticipantName: req.ParticipantName,
		Faculty:         req.Faculty,
		TeamPlayers:     req.TeamPlayers,
	}, nil
}

// HandleList handles GET /api/results.
func (h *ResultsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	rows, err := h.deps.Leaderboard(r.Context())
	if err != nil {
		fail(r.Context(), w, h.log, "api.list_results", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleRecord handles POST /api/results. It runs behind RequireAuth.
func (h *ResultsHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	const op = "api.record_result"
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(r.Context(), w, h.log, op, WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := req.placement()
	if errors.Is(err, errMissingFields) {
		writeError(w, http.StatusBadRequest, errMissingFields.Error())
		return
	}
	if err != nil {
		fail(r.Context(), w, h.log, op, err)
		return
	}
	if _, _, err := h.deps.RecordResult(r.Context(), p); err != nil {
		fail(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// HandleDelete handles DELETE /api/results/{gameId}/{position}. It runs
// behind RequireAuth. A position that is not an integer names no slot, so
// the call succeeds without touching the ledger.
func (h *ResultsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_result"
	gameID := r.PathValue("gameId")
	pos, err := strconv.Atoi(r.PathValue("position"))
	if err != nil {
		h.log.Debug(r.Context(), "delete with non-numeric position",
			logger.String("game_id", gameID),
			logger.String("position", r.PathValue("position")),
		)
		writeJSON(w, http.StatusOK, successResponse{Success: true})
		return
	}
	if _, err := h.deps.DeleteResult(r.Context(), gameID, pos); err != nil {
		fail(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
