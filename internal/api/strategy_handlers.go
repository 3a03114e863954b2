package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"axis.io/contentops/internal/core"
)

func (h *APIHandler) GetStrategyHandler(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brandFromPath(w, r)
	if !ok {
		return
	}
	st, ok := h.ws.Strategies.Strategy(brand.ID)
	if !ok {
		writeError(w, http.StatusNotFound, "Strategy not found")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *APIHandler) GenerateStrategyHandler(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brandFromPath(w, r)
	if !ok {
		return
	}
	p, accepted := h.ws.GenerateStrategy(brand.ID)
	if !accepted {
		writeError(w, http.StatusConflict, "Strategy already exists")
		return
	}
	if !settle(r, p) {
		return
	}
	st, _ := h.ws.Strategies.Strategy(brand.ID)
	writeJSON(w, asyncStatus(p), st)
}

// rejectWhileGenerating writes a 409 when the brand's strategy is still
// being generated.
func (h *APIHandler) rejectWhileGenerating(w http.ResponseWriter, brandID string) bool {
	if st, ok := h.ws.Strategies.Strategy(brandID); ok && st.Status == core.StatusGenerating {
		writeError(w, http.StatusConflict, "Strategy is still being generated")
		return true
	}
	return false
}

type updateSectionRequest struct {
	Content string `json:"content"`
}

func (h *APIHandler) UpdateSectionHandler(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brandFromPath(w, r)
	if !ok {
		return
	}
	var req updateSectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if h.rejectWhileGenerating(w, brand.ID) {
		return
	}
	id := core.SectionID(chi.URLParam(r, "sectionID"))
	if !h.ws.Strategies.UpdateSection(brand.ID, id, req.Content) {
		writeError(w, http.StatusNotFound, "Strategy section not found")
		return
	}
	st, _ := h.ws.Strategies.Strategy(brand.ID)
	writeJSON(w, http.StatusOK, st)
}

// RegenerateSectionHandler answers 202 for a new regeneration and 409 when
// the section is already regenerating. With ?wait=true both wait for the
// running request to settle.
func (h *APIHandler) RegenerateSectionHandler(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brandFromPath(w, r)
	if !ok {
		return
	}
	id := core.SectionID(chi.URLParam(r, "sectionID"))
	p, started := h.ws.Strategies.RegenerateSection(brand.ID, id)
	if p == nil {
		writeError(w, http.StatusNotFound, "Strategy section not found")
		return
	}
	if !settle(r, p) {
		return
	}
	status := asyncStatus(p)
	if !started && status == http.StatusAccepted {
		status = http.StatusConflict
	}
	st, _ := h.ws.Strategies.Strategy(brand.ID)
	writeJSON(w, status, st)
}

func (h *APIHandler) ApproveStrategyHandler(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brandFromPath(w, r)
	if !ok {
		return
	}
	if h.rejectWhileGenerating(w, brand.ID) {
		return
	}
	if !h.ws.ApproveStrategy(brand.ID) {
		writeError(w, http.StatusNotFound, "Strategy not found")
		return
	}
	h.logger.Info().Str("user", requestUser(r)).Str("brand_id", brand.ID).Msg("Strategy approved")
	st, _ := h.ws.Strategies.Strategy(brand.ID)
	writeJSON(w, http.StatusOK, st)
}

func (h *APIHandler) ListThemesHandler(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brandFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.ws.Strategies.Themes(brand.ID))
}
