package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/passvault-io/passvault/internal/auth"
	"github.com/passvault-io/passvault/internal/model"
	"github.com/passvault-io/passvault/internal/store"
	"github.com/passvault-io/passvault/internal/store/sqlite"
)

type testAPI struct {
	router *mux.Router
	store  store.Store
	db     *sql.DB
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db, err := sqlite.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.EnsureSchema(context.Background(), db))

	s := sqlite.New(db)
	router := NewRouter(Deps{
		Store:      s,
		DB:         db,
		Authorizer: auth.NewMockAuthorizer(),
		Logger:     zerolog.Nop(),
	})
	return &testAPI{router: router, store: s, db: db}
}

func (a *testAPI) do(t *testing.T, method, path string, asUser int64, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if asUser != 0 {
		req.Header.Set("Authorization", "Bearer "+auth.DevToken(asUser))
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) user(t *testing.T, name string) int64 {
	t.Helper()
	rec := a.do(t, "POST", "/api/users", 0, map[string]string{
		"username": name, "email": name + "@example.test",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		User model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.User.UserID
}

func (a *testAPI) vault(t *testing.T, owner int64, name string) int64 {
	t.Helper()
	rec := a.do(t, "POST", "/api/vaults", owner, map[string]string{"name": name, "type": "SHARED"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		Vault model.Vault `json:"vault"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Vault.VaultID
}

func (a *testAPI) credential(t *testing.T, asUser, vaultID int64, title string) int64 {
	t.Helper()
	rec := a.do(t, "POST", fmt.Sprintf("/api/vaults/%d/credentials", vaultID), asUser, map[string]interface{}{
		"title":     title,
		"secretEnc": base64.StdEncoding.EncodeToString([]byte("ct")),
		"secretIv":  base64.StdEncoding.EncodeToString([]byte("iv")),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		Credential model.Credential `json:"credential"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Credential.CredentialID
}

func TestHealthEndpoints(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, "GET", "/api/health", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, "GET", "/api/health/db", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, "GET", "/api/vaults", 0, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest("GET", "/api/vaults", nil)
	req.Header.Set("Authorization", "Bearer not-a-valid-token")
	out := httptest.NewRecorder()
	a.router.ServeHTTP(out, req)
	require.Equal(t, http.StatusUnauthorized, out.Code)
}

func TestVaultCRUDOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	owner := a.user(t, "owner")
	stranger := a.user(t, "stranger")
	vaultID := a.vault(t, owner, "team")

	rec := a.do(t, "GET", fmt.Sprintf("/api/vaults/%d", vaultID), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Status mapping: missing id is 404, foreign vault is 403.
	rec = a.do(t, "GET", "/api/vaults/999999", owner, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = a.do(t, "GET", fmt.Sprintf("/api/vaults/%d", vaultID), stranger, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, "PATCH", fmt.Sprintf("/api/vaults/%d", vaultID), owner, map[string]string{"name": "renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Vault model.Vault `json:"vault"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "renamed", out.Vault.Name)

	rec = a.do(t, "GET", "/api/vaults", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)

	rec = a.do(t, "DELETE", fmt.Sprintf("/api/vaults/%d", vaultID), stranger, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, "DELETE", fmt.Sprintf("/api/vaults/%d", vaultID), owner, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMembershipOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	owner := a.user(t, "owner")
	member := a.user(t, "member")
	vaultID := a.vault(t, owner, "team")

	rec := a.do(t, "PUT", fmt.Sprintf("/api/vaults/%d/members/%d", vaultID, member), owner, map[string]string{"role": "OWNER"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, "PUT", fmt.Sprintf("/api/vaults/%d/members/%d", vaultID, member), owner, map[string]string{"role": "READER"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Members below ADMIN cannot see the roster.
	rec = a.do(t, "GET", fmt.Sprintf("/api/vaults/%d/members", vaultID), member, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, "GET", fmt.Sprintf("/api/vaults/%d/members", vaultID), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Members []model.VaultMember `json:"members"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Members, 1)
	require.Equal(t, model.RoleReader, out.Members[0].Role)

	// A READER cannot administer membership.
	rec = a.do(t, "DELETE", fmt.Sprintf("/api/vaults/%d/members/%d", vaultID, member), member, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, "DELETE", fmt.Sprintf("/api/vaults/%d/members/%d", vaultID, member), owner, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCredentialFlowOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	owner := a.user(t, "owner")
	vaultID := a.vault(t, owner, "team")
	credID := a.credential(t, owner, vaultID, "bank")

	// Rotate the secret, then the old one shows up in history.
	rec := a.do(t, "PATCH", fmt.Sprintf("/api/credentials/%d", credID), owner, map[string]interface{}{
		"secretEnc": base64.StdEncoding.EncodeToString([]byte("ct2")),
		"secretIv":  base64.StdEncoding.EncodeToString([]byte("iv2")),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, "GET", fmt.Sprintf("/api/credentials/%d/history", credID), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hist struct {
		History []model.HistoryEntry `json:"history"`
		Total   int                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	require.Equal(t, 1, hist.Total)
	require.Equal(t, []byte("ct"), hist.History[0].SecretEnc)

	// URL search.
	a.credential(t, owner, vaultID, "mail")
	rec = a.do(t, "PATCH", fmt.Sprintf("/api/credentials/%d", credID), owner, map[string]string{"url": "https://bank.example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(t, "GET", fmt.Sprintf("/api/vaults/%d/credentials?url=bank.example", vaultID), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var search struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &search))
	require.Equal(t, 1, search.Total)

	rec = a.do(t, "DELETE", fmt.Sprintf("/api/credentials/%d", credID), owner, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(t, "GET", fmt.Sprintf("/api/credentials/%d", credID), owner, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShareFlowOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	owner := a.user(t, "owner")
	guest := a.user(t, "guest")
	vaultID := a.vault(t, owner, "team")
	credID := a.credential(t, owner, vaultID, "bank")

	// Before sharing the guest sees nothing.
	rec := a.do(t, "GET", fmt.Sprintf("/api/credentials/%d", credID), guest, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, "PUT", fmt.Sprintf("/api/credentials/%d/shares/%d", credID, guest), owner, map[string]string{"role": "EDITOR"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, "GET", fmt.Sprintf("/api/credentials/%d", credID), guest, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(t, "PATCH", fmt.Sprintf("/api/credentials/%d", credID), guest, map[string]string{"title": "bank-main"})
	require.Equal(t, http.StatusOK, rec.Code)

	// The guest cannot re-share.
	rec = a.do(t, "PUT", fmt.Sprintf("/api/credentials/%d/shares/%d", credID, owner), guest, map[string]string{"role": "READER"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Share holders have read access, so they see the grant list too.
	rec = a.do(t, "GET", fmt.Sprintf("/api/credentials/%d/shares", credID), guest, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, "GET", fmt.Sprintf("/api/credentials/%d/shares", credID), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var shares struct {
		Shares []model.CredentialShare `json:"shares"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shares))
	require.Len(t, shares.Shares, 1)
	require.Equal(t, model.ShareActive, shares.Shares[0].Status)

	rec = a.do(t, "DELETE", fmt.Sprintf("/api/credentials/%d/shares/%d", credID, guest), owner, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(t, "GET", fmt.Sprintf("/api/credentials/%d", credID), guest, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	// Revoking again is a 404, the grant is already inactive.
	rec = a.do(t, "DELETE", fmt.Sprintf("/api/credentials/%d/shares/%d", credID, guest), owner, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAttachmentRoundTripOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	owner := a.user(t, "owner")
	vaultID := a.vault(t, owner, "team")
	credID := a.credential(t, owner, vaultID, "bank")

	content := []byte{0xde, 0xad, 0xbe, 0xef}
	rec := a.do(t, "POST", fmt.Sprintf("/api/credentials/%d/attachments", credID), owner, map[string]interface{}{
		"filename":   "codes.txt.enc",
		"contentEnc": base64.StdEncoding.EncodeToString(content),
		"contentIv":  base64.StdEncoding.EncodeToString([]byte("iv")),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Attachment model.Attachment `json:"attachment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = a.do(t, "GET", fmt.Sprintf("/api/attachments/%d", created.Attachment.AttachmentID), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Attachment model.Attachment `json:"attachment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, content, got.Attachment.ContentEnc)

	// Listings omit the blob.
	rec = a.do(t, "GET", fmt.Sprintf("/api/credentials/%d/attachments", credID), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Attachments []model.Attachment `json:"attachments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Attachments, 1)
	require.Empty(t, list.Attachments[0].ContentEnc)
}

func TestTagAndFolderOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	owner := a.user(t, "owner")
	vaultID := a.vault(t, owner, "team")
	credID := a.credential(t, owner, vaultID, "bank")

	rec := a.do(t, "POST", "/api/tags", owner, map[string]string{"name": "work"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var tag struct {
		Tag model.Tag `json:"tag"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tag))

	rec = a.do(t, "PUT", fmt.Sprintf("/api/credentials/%d/tags/%d", credID, tag.Tag.TagID), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, "GET", fmt.Sprintf("/api/credentials/%d/tags", credID), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tags struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tags))
	require.Equal(t, 1, tags.Count)

	rec = a.do(t, "DELETE", fmt.Sprintf("/api/credentials/%d/tags/%d", credID, tag.Tag.TagID), owner, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestInvalidPathID(t *testing.T) {
	a := newTestAPI(t)
	owner := a.user(t, "owner")

	// The route pattern rejects non-numeric ids outright.
	rec := a.do(t, "GET", "/api/vaults/abc", owner, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
