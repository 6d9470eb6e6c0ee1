package api

import (
	"encoding/json"
	"net/http"

	"github.com/passvault-io/passvault/internal/api/respond"
	"github.com/passvault-io/passvault/internal/services"
)

type LinkHandler struct {
	svc *services.LinkService
}

func NewLinkHandler(svc *services.LinkService) *LinkHandler { return &LinkHandler{svc: svc} }

type nameRequest struct {
	Name string `json:"name"`
}

// CreateTag POST /api/tags
func (h *LinkHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	if _, ok := actor(w, r); !ok {
		return
	}
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	tag, err := h.svc.CreateTag(r.Context(), req.Name)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "tag": tag})
}

// CreateFolder POST /api/folders
func (h *LinkHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	if _, ok := actor(w, r); !ok {
		return
	}
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	folder, err := h.svc.CreateFolder(r.Context(), req.Name)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "folder": folder})
}

// AssignTag PUT /api/credentials/{credentialId}/tags/{tagId}
func (h *LinkHandler) AssignTag(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	credID, ok := pathID(w, r, "credentialId")
	if !ok {
		return
	}
	tagID, ok := pathID(w, r, "tagId")
	if !ok {
		return
	}
	if err := h.svc.AssignTag(r.Context(), a.UserID, credID, tagID); err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// UnassignTag DELETE /api/credentials/{credentialId}/tags/{tagId}
func (h *LinkHandler) UnassignTag(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	credID, ok := pathID(w, r, "credentialId")
	if !ok {
		return
	}
	tagID, ok := pathID(w, r, "tagId")
	if !ok {
		return
	}
	if err := h.svc.UnassignTag(r.Context(), a.UserID, credID, tagID); err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTags GET /api/credentials/{credentialId}/tags
func (h *LinkHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	credID, ok := pathID(w, r, "credentialId")
	if !ok {
		return
	}
	tags, err := h.svc.ListTags(r.Context(), a.UserID, credID)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "tags": tags, "count": len(tags)})
}

// AssignFolder PUT /api/credentials/{credentialId}/folders/{folderId}
func (h *LinkHandler) AssignFolder(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	credID, ok := pathID(w, r, "credentialId")
	if !ok {
		return
	}
	folderID, ok := pathID(w, r, "folderId")
	if !ok {
		return
	}
	if err := h.svc.AssignFolder(r.Context(), a.UserID, credID, folderID); err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// UnassignFolder DELETE /api/credentials/{credentialId}/folders/{folderId}
func (h *LinkHandler) UnassignFolder(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	credID, ok := pathID(w, r, "credentialId")
	if !ok {
		return
	}
	folderID, ok := pathID(w, r, "folderId")
	if !ok {
		return
	}
	if err := h.svc.UnassignFolder(r.Context(), a.UserID, credID, folderID); err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFolders GET /api/credentials/{credentialId}/folders
func (h *LinkHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	credID, ok := pathID(w, r, "credentialId")
	if !ok {
		return
	}
	folders, err := h.svc.ListFolders(r.Context(), a.UserID, credID)
	if err != nil {
		respond.WriteServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "folders": folders, "count": len(folders)})
}
