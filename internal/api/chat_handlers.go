package api

import (
	"net/http"

	"axis.io/contentops/internal/core"
)

func (h *APIHandler) GetChatHandler(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brandFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.ws.Chat.Session(brand.ID))
}

type setModeRequest struct {
	Mode core.ChatMode `json:"mode"`
}

func (h *APIHandler) SetChatModeHandler(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brandFromPath(w, r)
	if !ok {
		return
	}
	var req setModeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.ws.Chat.SetMode(brand.ID, req.Mode) {
		writeError(w, http.StatusBadRequest, "Mode must be full-auto or manual")
		return
	}
	writeJSON(w, http.StatusOK, h.ws.Chat.Session(brand.ID))
}

type postMessageRequest struct {
	Content string `json:"content"`
}

// replyAccepted reports the session after a message was accepted, waiting
// for the reply when asked to.
func (h *APIHandler) replyAccepted(w http.ResponseWriter, r *http.Request, brandID string, p core.Pending) {
	if !settle(r, p) {
		return
	}
	writeJSON(w, asyncStatus(p), h.ws.Chat.Session(brandID))
}

func (h *APIHandler) rejectMessage(w http.ResponseWriter, brandID string) {
	session := h.ws.Chat.Session(brandID)
	switch {
	case session.Mode == "":
		writeError(w, http.StatusConflict, "Select a chat mode first")
	case session.IsTyping:
		writeError(w, http.StatusConflict, "A reply is already in progress")
	default:
		writeError(w, http.StatusBadRequest, "Message content is required")
	}
}

func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brandFromPath(w, r)
	if !ok {
		return
	}
	var req postMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, accepted := h.ws.Chat.SendMessage(brand.ID, req.Content)
	if !accepted {
		h.rejectMessage(w, brand.ID)
		return
	}
	h.replyAccepted(w, r, brand.ID, p)
}

func (h *APIHandler) SelectOptionHandler(w http.ResponseWriter, r *http.Request) {
	brand, ok := h.brandFromPath(w, r)
	if !ok {
		return
	}
	var req core.MessageOption
	if !decodeBody(w, r, &req) {
		return
	}
	p, accepted := h.ws.Chat.SelectOption(brand.ID, req)
	if !accepted {
		h.rejectMessage(w, brand.ID)
		return
	}
	h.replyAccepted(w, r, brand.ID, p)
}
