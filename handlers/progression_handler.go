package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/tournament-progression/middleware"
	"github.com/Dosada05/tournament-progression/models"
	"github.com/Dosada05/tournament-progression/services"
	"github.com/go-chi/chi/v5"
)

type ProgressionHandler struct {
	progressionService services.ProgressionService
	rankingService     services.RankingService
}

func NewProgressionHandler(ps services.ProgressionService, rs services.RankingService) *ProgressionHandler {
	return &ProgressionHandler{
		progressionService: ps,
		rankingService:     rs,
	}
}

func matchIDFromURL(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "matchID"))
	if id == "" {
		return "", errors.New("missing matchID in URL path")
	}
	return id, nil
}

// currentUserID is nil for anonymous requests.
func currentUserID(r *http.Request) *int {
	id, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return nil
	}
	return &id
}

// RecordResult godoc
// @Summary Записать результат матча
// @Tags matches
// @Description Validates the payload against the confirmed roster, awards points and materializes the next round when it becomes complete.
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID"
// @Param input body services.RecordResultInput true "Result in the match's format"
// @Success 200 {object} services.ProgressionOutcome
// @Success 202 {object} map[string]interface{} "Recorded, next round must be retried via advance"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]interface{} "Already recorded or manual resolution required"
// @Failure 422 {object} map[string]interface{}
// @Failure 424 {object} map[string]string "Scoring configuration problem"
// @Failure 501 {object} map[string]string
// @Security BearerAuth
// @Router /matches/{matchID}/result [post]
func (h *ProgressionHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RecordResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.MatchID = matchID
	input.SubmittedBy = currentUserID(r)

	outcome, err := h.progressionService.RecordResult(r.Context(), input)
	if err != nil {
		if outcome != nil && errors.Is(err, services.ErrMaterializationFailed) {
			slog.WarnContext(r.Context(), "result recorded without next round", slog.String("match_id", matchID), slog.Any("error", err))
			if err := writeJSON(w, http.StatusAccepted, jsonResponse{"outcome": outcome, "retry": "advance"}, nil); err != nil {
				serverErrorResponse(w, r, err)
			}
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, outcome, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Advance godoc
// @Summary Повторить переход в следующий раунд
// @Tags matches
// @Produce json
// @Param matchID path string true "Match ID"
// @Success 200 {object} services.ProgressionOutcome
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /matches/{matchID}/advance [post]
func (h *ProgressionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.progressionService.Advance(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, outcome, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type confirmRosterInput struct {
	ParticipantIDs []string `json:"participant_ids"`
}

// ConfirmRoster godoc
// @Summary Подтвердить состав участников матча
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID"
// @Param input body confirmRosterInput true "Participants who showed up"
// @Success 200 {object} models.MatchRoster
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /matches/{matchID}/roster [put]
func (h *ProgressionHandler) ConfirmRoster(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input confirmRosterInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	roster, err := h.progressionService.ConfirmRoster(r.Context(), matchID, input.ParticipantIDs, currentUserID(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, roster, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetMatch godoc
// @Summary Get a knockout match
// @Tags matches
// @Produce json
// @Param matchID path string true "Match ID"
// @Success 200 {object} models.Match
// @Failure 404 {object} map[string]string
// @Router /matches/{matchID} [get]
func (h *ProgressionHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.progressionService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match, "status": match.Status()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatches godoc
// @Summary List the knockout matches of a tournament
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/matches [get]
func (h *ProgressionHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.progressionService.ListMatches(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Ledger godoc
// @Summary Журнал начисленных очков турнира
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{} "entries and totals"
// @Router /tournaments/{tournamentID}/ledger [get]
func (h *ProgressionHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.rankingService.LedgerEntries(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	totals, err := h.rankingService.LedgerTotals(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entries": entries, "totals": totals}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetScoringConfig godoc
// @Summary Get the scoring configuration of a tournament
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} models.TournamentScoringConfig
// @Router /tournaments/{tournamentID}/scoring [get]
func (h *ProgressionHandler) GetScoringConfig(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	cfg, err := h.rankingService.GetScoringConfig(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, cfg, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateScoringConfig godoc
// @Summary Replace the scoring configuration of a tournament
// @Tags tournaments
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body models.TournamentScoringConfig true "Scoring configuration"
// @Success 200 {object} models.TournamentScoringConfig
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/scoring [put]
func (h *ProgressionHandler) UpdateScoringConfig(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var cfg models.TournamentScoringConfig
	if err := readJSON(w, r, &cfg); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	cfg.TournamentID = tournamentID

	if err := h.rankingService.UpdateScoringConfig(r.Context(), &cfg); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, cfg, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
