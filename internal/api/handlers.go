package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"axis.io/contentops/internal/auth"
	"axis.io/contentops/internal/core"
	"axis.io/contentops/internal/metrics"
	"axis.io/contentops/internal/store"
)

// UserStore resolves API users.
type UserStore interface {
	GetUserByExternalID(externalUserID string) (*store.User, error)
}

type APIHandler struct {
	ws      *core.Workspace
	users   UserStore
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewAPIHandler(ws *core.Workspace, users UserStore, m *metrics.Metrics, logger zerolog.Logger) *APIHandler {
	return &APIHandler{
		ws:      ws,
		users:   users,
		metrics: m,
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// settle blocks until p closes when the request asks for it with
// ?wait=true. It reports false if the client went away first.
func settle(r *http.Request, p core.Pending) bool {
	if p == nil || r.URL.Query().Get("wait") != "true" {
		return true
	}
	select {
	case <-p:
		return true
	case <-r.Context().Done():
		return false
	}
}

// asyncStatus is 200 once the operation has settled and 202 while it is
// still running.
func asyncStatus(p core.Pending) int {
	if p == nil {
		return http.StatusOK
	}
	select {
	case <-p:
		return http.StatusOK
	default:
		return http.StatusAccepted
	}
}

// brandFromPath resolves {brandID}, writing a 404 when it is unknown.
func (h *APIHandler) brandFromPath(w http.ResponseWriter, r *http.Request) (core.Brand, bool) {
	brand, ok := h.ws.Brands.Brand(chi.URLParam(r, "brandID"))
	if !ok {
		writeError(w, http.StatusNotFound, "Brand not found")
		return core.Brand{}, false
	}
	return brand, true
}

type LoginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.UserID == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "User ID and password are required")
		return
	}

	user, err := h.users.GetUserByExternalID(req.UserID)
	if err != nil {
		h.logger.Error().Err(err).Str("user", req.UserID).Msg("Error getting user")
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.IssueToken(req.UserID)
	if err != nil {
		h.logger.Error().Err(err).Str("user", req.UserID).Msg("Error generating JWT")
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// --- Brands ---

type brandListResponse struct {
	Brands        []core.Brand `json:"brands"`
	ActiveBrandID *string      `json:"active_brand_id"`
}

func (h *APIHandler) ListBrandsHandler(w http.ResponseWriter, r *http.Request) {
	resp := brandListResponse{Brands: h.ws.Brands.Brands()}
	if resp.Brands == nil {
		resp.Brands = []core.Brand{}
	}
	if id := h.ws.Brands.ActiveBrandID(); id != "" {
		resp.ActiveBrandID = &id
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) CreateBrandHandler(w http.ResponseWriter, r *http.Request) {
	var req core.NewBrand
	if !decodeBody(w, r, &req) {
		return
	}
	brand, ok := h.ws.Brands.AddBrand(req)
	if !ok {
		writeError(w, http.StatusBadRequest, "Brand name is required")
		return
	}
	h.logger.Info().Str("user", requestUser(r)).Str("brand_id", brand.ID).Msg("Brand created")
	writeJSON(w, http.StatusCreated, brand)
}

func (h *APIHandler) UpdateBrandHandler(w http.ResponseWriter, r *http.Request) {
	var req core.BrandUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "brandID")
	if _, ok := h.ws.Brands.Brand(id); !ok {
		writeError(w, http.StatusNotFound, "Brand not found")
		return
	}
	brand, ok := h.ws.Brands.UpdateBrand(id, req)
	if !ok {
		writeError(w, http.StatusBadRequest, "Brand name cannot be empty")
		return
	}
	writeJSON(w, http.StatusOK, brand)
}

func (h *APIHandler) DeleteBrandHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "brandID")
	if !h.ws.DeleteBrand(id) {
		writeError(w, http.StatusNotFound, "Brand not found")
		return
	}
	h.logger.Info().Str("user", requestUser(r)).Str("brand_id", id).Msg("Brand deleted")
	w.WriteHeader(http.StatusNoContent)
}

type setActiveBrandRequest struct {
	ID *string `json:"id"`
}

func (h *APIHandler) SetActiveBrandHandler(w http.ResponseWriter, r *http.Request) {
	var req setActiveBrandRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id := ""
	if req.ID != nil {
		id = *req.ID
	}
	if !h.ws.Brands.SetActiveBrand(id) {
		writeError(w, http.StatusNotFound, "Brand not found")
		return
	}
	h.ListBrandsHandler(w, r)
}

// --- Navigation ---

func (h *APIHandler) GetNavigationHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ws.Navigation.State())
}

type tabRequest struct {
	Tab core.Tab `json:"tab"`
}

func (h *APIHandler) SetActiveTabHandler(w http.ResponseWriter, r *http.Request) {
	var req tabRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.ws.Navigation.SetActiveTab(req.Tab) {
		writeError(w, http.StatusBadRequest, "Unknown tab")
		return
	}
	writeJSON(w, http.StatusOK, h.ws.Navigation.State())
}

func (h *APIHandler) UnlockTabHandler(w http.ResponseWriter, r *http.Request) {
	var req tabRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.ws.Navigation.UnlockTab(req.Tab) {
		writeError(w, http.StatusBadRequest, "Unknown tab")
		return
	}
	writeJSON(w, http.StatusOK, h.ws.Navigation.State())
}
