package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/passvault-io/passvault/internal/api/respond"
	"github.com/passvault-io/passvault/internal/api/validate"
	"github.com/passvault-io/passvault/internal/model"
	"github.com/passvault-io/passvault/internal/services"
	"github.com/passvault-io/passvault/internal/store"
)

type CredentialHandler struct {
	svc *services.CredentialService
}

func NewCredentialHandler(svc *services.CredentialService) *CredentialHandler {
	return &CredentialHandler{svc: svc}
}

// credentialRequest covers create and partial update. Byte fields arrive
// base64-encoded; encoding/json handles the decode.
type credentialRequest struct {
	VaultID         *int64             `json:"vaultId"`
	Title           *string            `json:"title"`
	AccountUsername *string            `json:"accountUsername"`
	URL             *string            `json:"url"`
	SecretEnc       []byte             `json:"secretEnc"`
	SecretIV        []byte             `json:"secretIv"`
	NotesEnc        []byte             `json:"notesEnc"`
	NotesIV         []byte             `json:"notesIv"`
	TOTPEnc         []byte             `json:"totpEnc"`
	TOTPIV          []byte             `json:"totpIv"`
	SecurityScore   *int               `json:"securityScore"`
	BreachState     *model.BreachState `json:"breachState"`
	ExpirationTime  *time.Time         `json:"expirationTime"`
}

// CreateCredential POST /api/vaults/{vaultId}/credentials
func (h *CredentialHandler) CreateCredential(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	vaultID, ok := pathID(w, r, "vaultId")
	if !ok {
		return
	}
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	c := &model.Credential{
		VaultID:         vaultID,
		AccountUsername: req.AccountUsername,
		URL:             req.URL,
		SecretEnc:       req.SecretEnc,
		SecretIV:        req.SecretIV,
		NotesEnc:        req.NotesEnc,
		NotesIV:         req.NotesIV,
		TOTPEnc:         req.TOTPEnc,
		TOTPIV:          req.TOTPIV,
		SecurityScore:   req.SecurityScore,
		ExpirationTime:  req.ExpirationTime,
	}
	if req.Title != nil {
		c.Title = *req.Title
	}
	if req.BreachState != nil {
		c.BreachState = *req.BreachState
	}
	out, err := h.svc.CreateCredential(r.Context(), a.UserID, c)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "credential": out})
}

// ListCredentials GET /api/vaults/{vaultId}/credentials?page=&pageSize=
// A `url` query parameter switches to substring search.
func (h *CredentialHandler) ListCredentials(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	vaultID, ok := pathID(w, r, "vaultId")
	if !ok {
		return
	}
	page, pageSize := validate.Pagination(r, 20, 100)

	var (
		items []*model.Credential
		total int
		err   error
	)
	if q := r.URL.Query().Get("url"); q != "" {
		items, total, err = h.svc.SearchByURL(r.Context(), a.UserID, vaultID, q, page, pageSize)
	} else {
		items, total, err = h.svc.ListCredentials(r.Context(), a.UserID, vaultID, page, pageSize)
	}
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true, "credentials": items, "total": total, "page": page, "pageSize": pageSize,
	})
}

// GetCredential GET /api/credentials/{credentialId}
func (h *CredentialHandler) GetCredential(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	credID, ok := pathID(w, r, "credentialId")
	if !ok {
		return
	}
	c, err := h.svc.GetCredential(r.Context(), a.UserID, credID)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "credential": c})
}

// UpdateCredential PATCH /api/credentials/{credentialId}
func (h *CredentialHandler) UpdateCredential(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	credID, ok := pathID(w, r, "credentialId")
	if !ok {
		return
	}
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	c, err := h.svc.UpdateCredential(r.Context(), a.UserID, credID, store.UpdateCredentialParams{
		VaultID:         req.VaultID,
		Title:           req.Title,
		AccountUsername: req.AccountUsername,
		URL:             req.URL,
		SecretEnc:       req.SecretEnc,
		SecretIV:        req.SecretIV,
		NotesEnc:        req.NotesEnc,
		NotesIV:         req.NotesIV,
		TOTPEnc:         req.TOTPEnc,
		TOTPIV:          req.TOTPIV,
		SecurityScore:   req.SecurityScore,
		BreachState:     req.BreachState,
		ExpirationTime:  req.ExpirationTime,
	})
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "credential": c})
}

// DeleteCredential DELETE /api/credentials/{credentialId}
func (h *CredentialHandler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	credID, ok := pathID(w, r, "credentialId")
	if !ok {
		return
	}
	if err := h.svc.DeleteCredential(r.Context(), a.UserID, credID); err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListHistory GET /api/credentials/{credentialId}/history?page=&pageSize=
func (h *CredentialHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	credID, ok := pathID(w, r, "credentialId")
	if !ok {
		return
	}
	page, pageSize := validate.Pagination(r, 50, 200)
	items, total, err := h.svc.ListHistory(r.Context(), a.UserID, credID, page, pageSize)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true, "history": items, "total": total, "page": page, "pageSize": pageSize,
	})
}
