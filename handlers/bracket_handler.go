package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-progression/models"
	"github.com/Dosada05/tournament-progression/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

type previewBracketInput struct {
	Qualifiers int `json:"qualifiers"`
}

type previewSeedingInput struct {
	Standings  []*models.GroupStanding `json:"standings"`
	Qualifiers int                     `json:"qualifiers"`
	DrawSeed   *int64                  `json:"draw_seed,omitempty"`
}

// PreviewBracket godoc
// @Summary Размер сетки, баи и плей-ин матчи
// @Tags brackets
// @Accept json
// @Produce json
// @Param input body previewBracketInput true "Number of qualifiers"
// @Success 200 {object} models.BracketPlan
// @Failure 422 {object} map[string]interface{}
// @Router /brackets/preview [post]
func (h *BracketHandler) PreviewBracket(w http.ResponseWriter, r *http.Request) {
	var input previewBracketInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	plan, err := h.bracketService.PreviewStructure(input.Qualifiers)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, plan, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PreviewSeeding godoc
// @Summary Seed qualifiers from group standings
// @Tags brackets
// @Accept json
// @Produce json
// @Param input body previewSeedingInput true "Standings and qualifier count"
// @Success 200 {object} models.SeedAssignment
// @Failure 422 {object} map[string]interface{}
// @Router /seeding/preview [post]
func (h *BracketHandler) PreviewSeeding(w http.ResponseWriter, r *http.Request) {
	var input previewSeedingInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	seeds, err := h.bracketService.PreviewSeeding(input.Standings, input.Qualifiers, input.DrawSeed)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, seeds, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PreviewPairings godoc
// @Summary Plan, seeding and first round pairings in one call
// @Tags brackets
// @Accept json
// @Produce json
// @Param input body previewSeedingInput true "Standings and qualifier count"
// @Success 200 {object} services.PairingsPreview
// @Failure 422 {object} map[string]interface{}
// @Router /pairings/preview [post]
func (h *BracketHandler) PreviewPairings(w http.ResponseWriter, r *http.Request) {
	var input previewSeedingInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	preview, err := h.bracketService.PreviewPairings(input.Standings, input.Qualifiers, input.DrawSeed)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, preview, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type replaceStandingsInput struct {
	Standings []*models.GroupStanding `json:"standings"`
}

// ReplaceStandings godoc
// @Summary Загрузить итоговые таблицы групп
// @Tags tournaments
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body replaceStandingsInput true "Final group tables"
// @Success 204
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/standings [put]
func (h *BracketHandler) ReplaceStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input replaceStandingsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.bracketService.ReplaceStandings(r.Context(), tournamentID, input.Standings); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateKnockout godoc
// @Summary Build and store the knockout bracket
// @Tags tournaments
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body services.GenerateKnockoutInput true "Qualifiers and result format"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Bracket already exists"
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/knockout [post]
func (h *BracketHandler) GenerateKnockout(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.GenerateKnockoutInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.TournamentID = tournamentID

	matches, err := h.bracketService.GenerateKnockout(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
