package api

import (
	"encoding/json"
	"net/http"

	"github.com/passvault-io/passvault/internal/api/respond"
	"github.com/passvault-io/passvault/internal/model"
	"github.com/passvault-io/passvault/internal/services"
)

type ShareHandler struct {
	svc *services.CredentialService
}

func NewShareHandler(svc *services.CredentialService) *ShareHandler { return &ShareHandler{svc: svc} }

// PutShare PUT /api/credentials/{credentialId}/shares/{userId}
// Creates the grant or refreshes it; a revoked grant comes back ACTIVE.
func (h *ShareHandler) PutShare(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	credID, ok := pathID(w, r, "credentialId")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	var req struct {
		Role model.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleReader
	}
	if err := h.svc.ShareCredential(r.Context(), a.UserID, credID, userID, req.Role); err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// RevokeShare DELETE /api/credentials/{credentialId}/shares/{userId}
func (h *ShareHandler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	credID, ok := pathID(w, r, "credentialId")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	if err := h.svc.RevokeShare(r.Context(), a.UserID, credID, userID); err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListShares GET /api/credentials/{credentialId}/shares
func (h *ShareHandler) ListShares(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	credID, ok := pathID(w, r, "credentialId")
	if !ok {
		return
	}
	shares, err := h.svc.ListShares(r.Context(), a.UserID, credID)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "shares": shares, "count": len(shares)})
}
