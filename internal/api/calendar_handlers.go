package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"axis.io/contentops/internal/core"
)

type cardListResponse struct {
	Cards        []core.CardView `json:"cards"`
	IsGenerating bool            `json:"is_generating"`
}

func (h *APIHandler) cardList(brandID, date string) cardListResponse {
	var cards []core.ContentCard
	if date != "" {
		cards = h.ws.Calendar.CardsForDate(brandID, date)
	} else {
		cards = h.ws.Calendar.Cards(brandID)
	}
	return cardListResponse{
		Cards:        core.AnnotateCards(cards, h.ws.Calendar.Themes(brandID)),
		IsGenerating: h.ws.Calendar.IsGenerating(brandID),
	}
}

func (h *APIHandler) cardView(brandID string, card core.ContentCard) core.CardView {
	return core.AnnotateCards([]core.ContentCard{card}, h.ws.Calendar.Themes(brandID))[0]
}

func (h *APIHandler) ListCardsHandler(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brandFromPath(w, r)
	if !ok {
		return
	}
	date := r.URL.Query().Get("date")
	if date != "" {
		if _, ok := core.ParseDate(date); !ok {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}
	writeJSON(w, http.StatusOK, h.cardList(brand.ID, date))
}

func (h *APIHandler) GenerateCalendarHandler(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brandFromPath(w, r)
	if !ok {
		return
	}
	p, accepted := h.ws.Calendar.GenerateCalendar(brand.ID)
	if !accepted {
		writeError(w, http.StatusConflict, "Calendar generation already in progress")
		return
	}
	if !settle(r, p) {
		return
	}
	writeJSON(w, asyncStatus(p), h.cardList(brand.ID, ""))
}

func (h *APIHandler) CreateCardHandler(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brandFromPath(w, r)
	if !ok {
		return
	}
	var req core.NewCard
	if !decodeBody(w, r, &req) {
		return
	}
	card, ok := h.ws.Calendar.AddCard(brand.ID, req)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid card")
		return
	}
	writeJSON(w, http.StatusCreated, h.cardView(brand.ID, card))
}

func (h *APIHandler) cardFromPath(w http.ResponseWriter, r *http.Request) (core.ContentCard, bool) {
	card, ok := h.ws.Calendar.Card(chi.URLParam(r, "brandID"), chi.URLParam(r, "cardID"))
	if !ok {
		writeError(w, http.StatusNotFound, "Card not found")
		return core.ContentCard{}, false
	}
	return card, true
}

func (h *APIHandler) UpdateCardHandler(w http.ResponseWriter, r *http.Request) {
	card, ok := h.cardFromPath(w, r)
	if !ok {
		return
	}
	var req core.CardUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	updated, ok := h.ws.Calendar.UpdateCard(card.BrandID, card.ID, req)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid card update")
		return
	}
	writeJSON(w, http.StatusOK, h.cardView(card.BrandID, updated))
}

func (h *APIHandler) DeleteCardHandler(w http.ResponseWriter, r *http.Request) {
	if !h.ws.Calendar.DeleteCard(chi.URLParam(r, "brandID"), chi.URLParam(r, "cardID")) {
		writeError(w, http.StatusNotFound, "Card not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveCardRequest struct {
	Date string `json:"date"`
}

func (h *APIHandler) MoveCardHandler(w http.ResponseWriter, r *http.Request) {
	card, ok := h.cardFromPath(w, r)
	if !ok {
		return
	}
	var req moveCardRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.ws.Calendar.MoveCard(card.BrandID, card.ID, req.Date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	moved, _ := h.ws.Calendar.Card(card.BrandID, card.ID)
	writeJSON(w, http.StatusOK, h.cardView(card.BrandID, moved))
}

func (h *APIHandler) DuplicateCardHandler(w http.ResponseWriter, r *http.Request) {
	card, ok := h.cardFromPath(w, r)
	if !ok {
		return
	}
	dup, ok := h.ws.Calendar.DuplicateCard(card.BrandID, card.ID)
	if !ok {
		writeError(w, http.StatusNotFound, "Card not found")
		return
	}
	writeJSON(w, http.StatusCreated, h.cardView(card.BrandID, dup))
}

type fieldResponse struct {
	Card    core.CardView      `json:"card"`
	Results []core.FieldResult `json:"results"`
}

func (h *APIHandler) FillFieldHandler(w http.ResponseWriter, r *http.Request) {
	card, ok := h.cardFromPath(w, r)
	if !ok {
		return
	}
	field := core.GeneratableField(chi.URLParam(r, "field"))
	if !field.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown field")
		return
	}
	updated, res, ok := h.ws.Calendar.FillField(r.Context(), card.BrandID, card.ID, field)
	if !ok {
		writeError(w, http.StatusNotFound, "Card not found")
		return
	}
	writeJSON(w, http.StatusOK, fieldResponse{Card: h.cardView(card.BrandID, updated), Results: []core.FieldResult{res}})
}

func (h *APIHandler) GenerateAllFieldsHandler(w http.ResponseWriter, r *http.Request) {
	card, ok := h.cardFromPath(w, r)
	if !ok {
		return
	}
	updated, results, ok := h.ws.Calendar.GenerateAllFields(r.Context(), card.BrandID, card.ID)
	if !ok {
		writeError(w, http.StatusNotFound, "Card not found")
		return
	}
	if results == nil {
		results = []core.FieldResult{}
	}
	writeJSON(w, http.StatusOK, fieldResponse{Card: h.cardView(card.BrandID, updated), Results: results})
}

// --- View ---

// calendarViewResponse adds the visible week to the shared view state.
type calendarViewResponse struct {
	core.ViewState
	WeekStart string   `json:"week_start"`
	WeekEnd   string   `json:"week_end"`
	WeekDays  []string `json:"week_days"`
}

func viewResponse(v core.ViewState) calendarViewResponse {
	current, ok := core.ParseDate(v.CurrentDate)
	if !ok {
		return calendarViewResponse{ViewState: v}
	}
	start, end := core.WeekRange(current)
	resp := calendarViewResponse{
		ViewState: v,
		WeekStart: core.FormatDate(start),
		WeekEnd:   core.FormatDate(end),
	}
	for _, d := range core.WeekDays(current) {
		resp.WeekDays = append(resp.WeekDays, core.FormatDate(d))
	}
	return resp
}

func (h *APIHandler) GetCalendarViewHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewResponse(h.ws.Calendar.View()))
}

type setViewRequest struct {
	View        *core.CalendarView `json:"view,omitempty"`
	CurrentDate *string            `json:"current_date,omitempty"`
}

func (h *APIHandler) SetCalendarViewHandler(w http.ResponseWriter, r *http.Request) {
	var req setViewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	// Validate both before applying either.
	if req.View != nil && !req.View.Valid() {
		writeError(w, http.StatusBadRequest, "view must be week or month")
		return
	}
	if req.CurrentDate != nil {
		if _, ok := core.ParseDate(*req.CurrentDate); !ok {
			writeError(w, http.StatusBadRequest, "current_date must be YYYY-MM-DD")
			return
		}
	}
	if req.View != nil {
		h.ws.Calendar.SetView(*req.View)
	}
	if req.CurrentDate != nil {
		h.ws.Calendar.SetCurrentDate(*req.CurrentDate)
	}
	writeJSON(w, http.StatusOK, viewResponse(h.ws.Calendar.View()))
}

func (h *APIHandler) UpdateCalendarSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var req core.SettingsUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	if _, ok := h.ws.Calendar.UpdateSettings(req); !ok {
		writeError(w, http.StatusBadRequest, "posts_per_day must be 1-10 and days_per_week 5, 6 or 7")
		return
	}
	writeJSON(w, http.StatusOK, viewResponse(h.ws.Calendar.View()))
}

type navigateRequest struct {
	Direction string `json:"direction"`
}

func (h *APIHandler) NavigateCalendarHandler(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var view core.ViewState
	switch req.Direction {
	case "forward":
		view = h.ws.Calendar.NavigateForward()
	case "backward":
		view = h.ws.Calendar.NavigateBackward()
	case "today":
		view = h.ws.Calendar.GoToToday()
	default:
		writeError(w, http.StatusBadRequest, "direction must be forward, backward or today")
		return
	}
	writeJSON(w, http.StatusOK, viewResponse(view))
}
