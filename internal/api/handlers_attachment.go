package api

import (
	"encoding/json"
	"net/http"

	"github.com/passvault-io/passvault/internal/api/respond"
	"github.com/passvault-io/passvault/internal/model"
	"github.com/passvault-io/passvault/internal/services"
)

type AttachmentHandler struct {
	svc *services.AttachmentService
}

func NewAttachmentHandler(svc *services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{svc: svc}
}

// AddAttachment POST /api/credentials/{credentialId}/attachments
// Content and IV arrive base64-encoded in the JSON body and are stored as
// raw bytes.
func (h *AttachmentHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	credID, ok := pathID(w, r, "credentialId")
	if !ok {
		return
	}
	var req struct {
		Filename   string  `json:"filename"`
		MimeType   *string `json:"mimeType"`
		ContentEnc []byte  `json:"contentEnc"`
		ContentIV  []byte  `json:"contentIv"`
		SizeBytes  *int64  `json:"sizeBytes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	out, err := h.svc.AddAttachment(r.Context(), a.UserID, &model.Attachment{
		CredentialID: credID,
		Filename:     req.Filename,
		MimeType:     req.MimeType,
		ContentEnc:   req.ContentEnc,
		ContentIV:    req.ContentIV,
		SizeBytes:    req.SizeBytes,
	})
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "attachment": out})
}

// ListAttachments GET /api/credentials/{credentialId}/attachments
func (h *AttachmentHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	credID, ok := pathID(w, r, "credentialId")
	if !ok {
		return
	}
	items, err := h.svc.ListAttachments(r.Context(), a.UserID, credID)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "attachments": items, "count": len(items)})
}

// GetAttachment GET /api/attachments/{attachmentId}
func (h *AttachmentHandler) GetAttachment(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	attID, ok := pathID(w, r, "attachmentId")
	if !ok {
		return
	}
	att, err := h.svc.GetAttachment(r.Context(), a.UserID, attID)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "attachment": att})
}

// DeleteAttachment DELETE /api/attachments/{attachmentId}
func (h *AttachmentHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	attID, ok := pathID(w, r, "attachmentId")
	if !ok {
		return
	}
	if err := h.svc.DeleteAttachment(r.Context(), a.UserID, attID); err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
