package handlers

import (
	"net/http"

	"github.com/Nikman800/GambaGame/middleware"
	"github.com/Nikman800/GambaGame/services"
)

const bracketIDParam = "bracketID"

type BracketHandler struct {
	bracketService services.BracketService
	validator      *Validator
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{
		bracketService: bs,
		validator:      GetValidator(),
	}
}

// CreateHandler handles POST /brackets
// @Summary Create a bracket
// @Tags brackets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Router /brackets [post]
func (h *BracketHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create a bracket")
		return
	}

	var req createBracketRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		failedValidationResponse(w, r, FormatValidationError(err))
		return
	}

	bracket, err := h.bracketService.CreateBracket(r.Context(), userID, req.toInput())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMineHandler handles GET /brackets
// @Summary List brackets administered by the caller
// @Tags brackets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /brackets [get]
func (h *BracketHandler) ListMineHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	list, err := h.bracketService.ListMyBrackets(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"brackets": list}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListOpenHandler handles GET /open-brackets
// @Summary List open brackets
// @Tags brackets
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /open-brackets [get]
func (h *BracketHandler) ListOpenHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.bracketService.ListOpenBrackets(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"brackets": list}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /brackets/{bracketID}
// @Summary Get bracket state with odds and pool totals
// @Tags brackets
// @Produce json
// @Param bracketID path string true "Bracket ID"
// @Success 200 {object} map[string]interface{}
// @Router /brackets/{bracketID} [get]
func (h *BracketHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, bracketIDParam)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.GetBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBetsHandler handles GET /brackets/{bracketID}/bets
// @Summary Get bets, pool totals and odds
// @Tags brackets
// @Produce json
// @Param bracketID path string true "Bracket ID"
// @Success 200 {object} map[string]interface{}
// @Router /brackets/{bracketID}/bets [get]
func (h *BracketHandler) GetBetsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, bracketIDParam)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bets, err := h.bracketService.GetBets(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, bets, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler handles PUT /brackets/{bracketID}
// @Summary Edit a bracket before it starts
// @Tags brackets
// @Accept json
// @Produce json
// @Param bracketID path string true "Bracket ID"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /brackets/{bracketID} [put]
func (h *BracketHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	var req updateBracketRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		failedValidationResponse(w, r, FormatValidationError(err))
		return
	}

	bracket, err := h.bracketService.UpdateBracket(r.Context(), userID, id, req.toInput())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /brackets/{bracketID}
// @Summary Delete a bracket
// @Tags brackets
// @Produce json
// @Param bracketID path string true "Bracket ID"
// @Security BearerAuth
// @Success 204
// @Router /brackets/{bracketID} [delete]
func (h *BracketHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	if err := h.bracketService.DeleteBracket(r.Context(), userID, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OpenHandler handles PUT /brackets/{bracketID}/open
func (h *BracketHandler) OpenHandler(w http.ResponseWriter, r *http.Request) {
	h.setOpen(w, r, true)
}

// CloseHandler handles PUT /brackets/{bracketID}/close
func (h *BracketHandler) CloseHandler(w http.ResponseWriter, r *http.Request) {
	h.setOpen(w, r, false)
}

func (h *BracketHandler) setOpen(w http.ResponseWriter, r *http.Request, open bool) {
	userID, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}
	bracket, err := h.bracketService.SetOpen(r.Context(), userID, id, open)
	h.respondBracket(w, r, bracket, err)
}

// StartHandler handles POST /brackets/{bracketID}/start
// @Summary Start or restart a bracket
// @Tags brackets
// @Produce json
// @Param bracketID path string true "Bracket ID"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /brackets/{bracketID}/start [post]
func (h *BracketHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}
	bracket, err := h.bracketService.StartBracket(r.Context(), userID, id)
	h.respondBracket(w, r, bracket, err)
}

// StartMatchHandler handles POST /brackets/{bracketID}/match/start
// @Summary Close betting on the pending match
// @Tags brackets
// @Produce json
// @Param bracketID path string true "Bracket ID"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /brackets/{bracketID}/match/start [post]
func (h *BracketHandler) StartMatchHandler(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}
	bracket, err := h.bracketService.StartMatch(r.Context(), userID, id)
	h.respondBracket(w, r, bracket, err)
}

// SubmitResultHandler handles POST /brackets/{bracketID}/result
// @Summary Submit the winner of the pending match
// @Tags brackets
// @Accept json
// @Produce json
// @Param bracketID path string true "Bracket ID"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /brackets/{bracketID}/result [post]
func (h *BracketHandler) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	var req submitResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		failedValidationResponse(w, r, FormatValidationError(err))
		return
	}

	bracket, err := h.bracketService.SubmitResult(r.Context(), userID, id, req.Winner)
	h.respondBracket(w, r, bracket, err)
}

// EndHandler handles POST /brackets/{bracketID}/end
// @Summary End a bracket early
// @Tags brackets
// @Produce json
// @Param bracketID path string true "Bracket ID"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /brackets/{bracketID}/end [post]
func (h *BracketHandler) EndHandler(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}
	bracket, err := h.bracketService.EndBracket(r.Context(), userID, id)
	h.respondBracket(w, r, bracket, err)
}

// JoinHandler handles POST /brackets/{bracketID}/join
// @Summary Join a bracket as a gambler
// @Tags brackets
// @Produce json
// @Param bracketID path string true "Bracket ID"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /brackets/{bracketID}/join [post]
func (h *BracketHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}
	bracket, err := h.bracketService.JoinBracket(r.Context(), userID, id)
	h.respondBracket(w, r, bracket, err)
}

// BetHandler handles POST /brackets/{bracketID}/bet
// @Summary Bet on a player of the pending match
// @Tags brackets
// @Accept json
// @Produce json
// @Param bracketID path string true "Bracket ID"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Router /brackets/{bracketID}/bet [post]
func (h *BracketHandler) BetHandler(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	var req placeBetRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		failedValidationResponse(w, r, FormatValidationError(err))
		return
	}

	bracket, err := h.bracketService.PlaceBet(r.Context(), userID, id, req.Player, req.Amount)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	env := jsonResponse{"points": bracket.Gamblers[userID], "bets": bracket.Bets}
	if err := writeJSON(w, http.StatusCreated, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinalResultsHandler handles GET /brackets/{bracketID}/final-results
// @Summary Snapshot final results of a completed bracket
// @Tags brackets
// @Produce json
// @Param bracketID path string true "Bracket ID"
// @Success 200 {object} map[string]interface{}
// @Router /brackets/{bracketID}/final-results [get]
func (h *BracketHandler) FinalResultsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, bracketIDParam)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.bracketService.GetFinalResults(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"final_results": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) callerAndID(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return "", "", false
	}
	id, err := getIDFromURL(r, bracketIDParam)
	if err != nil {
		badRequestResponse(w, r, err)
		return "", "", false
	}
	return userID, id, true
}

func (h *BracketHandler) respondBracket(w http.ResponseWriter, r *http.Request, bracket interface{}, err error) {
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
