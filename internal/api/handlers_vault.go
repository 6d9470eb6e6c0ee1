package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/passvault-io/passvault/internal/api/respond"
	"github.com/passvault-io/passvault/internal/api/validate"
	"github.com/passvault-io/passvault/internal/auth"
	"github.com/passvault-io/passvault/internal/model"
	"github.com/passvault-io/passvault/internal/services"
	"github.com/passvault-io/passvault/internal/store"
)

// VaultHandler is a thin HTTP transport over VaultService.
type VaultHandler struct {
	svc *services.VaultService
}

func NewVaultHandler(svc *services.VaultService) *VaultHandler { return &VaultHandler{svc: svc} }

// actor returns the authenticated caller; the auth middleware guarantees
// one on every protected route.
func actor(w http.ResponseWriter, r *http.Request) (*auth.Actor, bool) {
	a, ok := auth.ActorFrom(r.Context())
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return nil, false
	}
	return a, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := validate.ID(mux.Vars(r)[name])
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return 0, false
	}
	return id, true
}

// CreateVault POST /api/vaults
func (h *VaultHandler) CreateVault(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req struct {
		Name         string          `json:"name"`
		Type         model.VaultType `json:"type"`
		EncryptedKey []byte          `json:"encryptedKey"`
		KeyIV        []byte          `json:"keyIv"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	out, err := h.svc.CreateVault(r.Context(), a.UserID, req.Name, req.Type, req.EncryptedKey, req.KeyIV)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "vault": out})
}

// ListVaults GET /api/vaults
func (h *VaultHandler) ListVaults(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	vts, err := h.svc.ListVaults(r.Context(), a.UserID)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "vaults": vts, "count": len(vts)})
}

// GetVault GET /api/vaults/{vaultId}
func (h *VaultHandler) GetVault(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	vaultID, ok := pathID(w, r, "vaultId")
	if !ok {
		return
	}
	v, err := h.svc.GetVault(r.Context(), a.UserID, vaultID)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "vault": v})
}

// UpdateVault PATCH /api/vaults/{vaultId}
func (h *VaultHandler) UpdateVault(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	vaultID, ok := pathID(w, r, "vaultId")
	if !ok {
		return
	}
	var req struct {
		Name         *string          `json:"name"`
		Type         *model.VaultType `json:"type"`
		EncryptedKey []byte           `json:"encryptedKey"`
		KeyIV        []byte           `json:"keyIv"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	v, err := h.svc.UpdateVault(r.Context(), a.UserID, vaultID, store.UpdateVaultParams{
		Name: req.Name, Type: req.Type, EncryptedKey: req.EncryptedKey, KeyIV: req.KeyIV,
	})
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "vault": v})
}

// DeleteVault DELETE /api/vaults/{vaultId}
func (h *VaultHandler) DeleteVault(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	vaultID, ok := pathID(w, r, "vaultId")
	if !ok {
		return
	}
	if err := h.svc.DeleteVault(r.Context(), a.UserID, vaultID); err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMembers GET /api/vaults/{vaultId}/members
func (h *VaultHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	vaultID, ok := pathID(w, r, "vaultId")
	if !ok {
		return
	}
	mems, err := h.svc.ListMembers(r.Context(), a.UserID, vaultID)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "members": mems, "count": len(mems)})
}

// PutMember PUT /api/vaults/{vaultId}/members/{userId}
func (h *VaultHandler) PutMember(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	vaultID, ok := pathID(w, r, "vaultId")
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
	if err := h.svc.AddMember(r.Context(), a.UserID, vaultID, userID, req.Role); err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// RemoveMember DELETE /api/vaults/{vaultId}/members/{userId}
func (h *VaultHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	vaultID, ok := pathID(w, r, "vaultId")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	if err := h.svc.RemoveMember(r.Context(), a.UserID, vaultID, userID); err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
