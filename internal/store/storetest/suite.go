// Package storetest holds a compliance suite exercised by every store
// driver. Implementations provide a clean, isolated store via makeStore.
package storetest

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/passvault-io/passvault/internal/model"
	"github.com/passvault-io/passvault/internal/store"
)

func mkUser(t *testing.T, s store.Store, prefix string) *model.User {
	t.Helper()
	name := prefix + "-" + uuid.New().String()[:8]
	u, err := s.Users().Create(context.Background(), &model.User{Username: name, Email: name + "@example.test"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// Run exercises the full store contract against one implementation.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	owner := mkUser(t, s, "owner")
	alice := mkUser(t, s, "alice")
	bob := mkUser(t, s, "bob")

	if got, err := s.Users().Get(ctx, owner.UserID); err != nil || got.Username != owner.Username {
		t.Fatalf("GetUser: got=%v err=%v", got, err)
	}
	if got, err := s.Users().GetByUsername(ctx, alice.Username); err != nil || got.UserID != alice.UserID {
		t.Fatalf("GetUserByUsername: got=%v err=%v", got, err)
	}

	// Vaults
	v, err := s.Vaults().Create(ctx, &model.Vault{
		OwnerID:      owner.UserID,
		Name:         "personal",
		EncryptedKey: []byte{0x01, 0x02},
		KeyIV:        []byte{0x03},
	})
	if err != nil {
		t.Fatalf("CreateVault: %v", err)
	}
	if v.VaultID == 0 || v.Type != model.VaultPersonal {
		t.Fatalf("CreateVault defaults: %+v", v)
	}

	// Partial update: only the name changes, the key blob survives.
	newName := "personal-renamed"
	upd, err := s.Vaults().Update(ctx, v.VaultID, store.UpdateVaultParams{Name: &newName})
	if err != nil {
		t.Fatalf("UpdateVault: %v", err)
	}
	if upd.Name != newName || len(upd.EncryptedKey) != 2 {
		t.Fatalf("UpdateVault must keep absent fields: %+v", upd)
	}
	if _, err := s.Vaults().Update(ctx, 999999, store.UpdateVaultParams{Name: &newName}); err != model.ErrNotFound {
		t.Fatalf("UpdateVault missing: want ErrNotFound, got %v", err)
	}

	// Membership upsert is idempotent on the pair and updates the role.
	if err := s.Members().Upsert(ctx, v.VaultID, alice.UserID, model.RoleReader); err != nil {
		t.Fatalf("Upsert member: %v", err)
	}
	if err := s.Members().Upsert(ctx, v.VaultID, alice.UserID, model.RoleEditor); err != nil {
		t.Fatalf("Upsert member again: %v", err)
	}
	mems, err := s.Members().List(ctx, v.VaultID)
	if err != nil || len(mems) != 1 {
		t.Fatalf("ListMembers: n=%d err=%v", len(mems), err)
	}
	if mems[0].Role != model.RoleEditor || mems[0].Username != alice.Username {
		t.Fatalf("ListMembers row: %+v", mems[0])
	}
	if role, err := s.Members().GetRole(ctx, v.VaultID, alice.UserID); err != nil || role != model.RoleEditor {
		t.Fatalf("GetRole: role=%q err=%v", role, err)
	}
	if role, err := s.Members().GetRole(ctx, v.VaultID, bob.UserID); err != nil || role != model.RoleNone {
		t.Fatalf("GetRole absent: role=%q err=%v", role, err)
	}

	// ListForUser: union of owned and member vaults, no duplicates.
	if lst, err := s.Vaults().ListForUser(ctx, owner.UserID); err != nil || len(lst) != 1 {
		t.Fatalf("ListForUser owner: n=%d err=%v", len(lst), err)
	}
	if lst, err := s.Vaults().ListForUser(ctx, alice.UserID); err != nil || len(lst) != 1 {
		t.Fatalf("ListForUser member: n=%d err=%v", len(lst), err)
	}
	if lst, err := s.Vaults().ListForUser(ctx, bob.UserID); err != nil || len(lst) != 0 {
		t.Fatalf("ListForUser stranger: n=%d err=%v", len(lst), err)
	}

	// Credentials
	c1, err := s.Credentials().Create(ctx, &model.Credential{
		VaultID:   v.VaultID,
		Title:     "bank",
		URL:       strPtr("https://bank.example.com/login"),
		SecretEnc: []byte("ct-1"),
		SecretIV:  []byte("iv-1"),
	})
	if err != nil {
		t.Fatalf("CreateCredential: %v", err)
	}
	if c1.BreachState != model.BreachNone {
		t.Fatalf("CreateCredential breach default: %+v", c1)
	}
	if _, err := s.Credentials().Create(ctx, &model.Credential{
		VaultID: v.VaultID, Title: "mail", URL: strPtr("https://mail.example.org"),
		SecretEnc: []byte("ct-2"), SecretIV: []byte("iv-2"),
	}); err != nil {
		t.Fatalf("CreateCredential 2: %v", err)
	}

	items, total, err := s.Credentials().ListByVault(ctx, v.VaultID, 1, 20)
	if err != nil || total != 2 || len(items) != 2 {
		t.Fatalf("ListByVault: n=%d total=%d err=%v", len(items), total, err)
	}
	// Ordered by title: bank before mail.
	if items[0].Title != "bank" {
		t.Fatalf("ListByVault order: %q first", items[0].Title)
	}
	if items2, total2, err := s.Credentials().ListByVault(ctx, v.VaultID, 2, 1); err != nil || total2 != 2 || len(items2) != 1 {
		t.Fatalf("ListByVault page 2: n=%d total=%d err=%v", len(items2), total2, err)
	}

	hits, total, err := s.Credentials().SearchByURL(ctx, v.VaultID, "bank.example", 1, 20)
	if err != nil || total != 1 || len(hits) != 1 || hits[0].CredentialID != c1.CredentialID {
		t.Fatalf("SearchByURL: n=%d total=%d err=%v", len(hits), total, err)
	}

	// Rotation: updating the secret appends the prior one to history.
	updc, err := s.Credentials().Update(ctx, c1.CredentialID, store.UpdateCredentialParams{
		SecretEnc: []byte("ct-1b"),
		SecretIV:  []byte("iv-1b"),
	})
	if err != nil {
		t.Fatalf("UpdateCredential rotate: %v", err)
	}
	if string(updc.SecretEnc) != "ct-1b" || updc.Title != "bank" {
		t.Fatalf("UpdateCredential rotate result: %+v", updc)
	}
	hist, htotal, err := s.History().List(ctx, c1.CredentialID, 1, 50)
	if err != nil || htotal != 1 || len(hist) != 1 || string(hist[0].SecretEnc) != "ct-1" {
		t.Fatalf("History after rotation: n=%d total=%d err=%v", len(hist), htotal, err)
	}
	// A non-secret update leaves history alone.
	if _, err := s.Credentials().Update(ctx, c1.CredentialID, store.UpdateCredentialParams{Title: strPtr("bank-main")}); err != nil {
		t.Fatalf("UpdateCredential title: %v", err)
	}
	if _, htotal, err = s.History().List(ctx, c1.CredentialID, 1, 50); err != nil || htotal != 1 {
		t.Fatalf("History after title update: total=%d err=%v", htotal, err)
	}

	// Shares: upsert, re-share changes role, revoke flips status, rows stay.
	if err := s.Shares().Upsert(ctx, c1.CredentialID, bob.UserID, model.RoleEditor); err != nil {
		t.Fatalf("Upsert share: %v", err)
	}
	if sh, err := s.Shares().GetActive(ctx, c1.CredentialID, bob.UserID); err != nil || sh.Role != model.RoleEditor {
		t.Fatalf("GetActive: %+v err=%v", sh, err)
	}
	if err := s.Shares().Revoke(ctx, c1.CredentialID, bob.UserID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := s.Shares().GetActive(ctx, c1.CredentialID, bob.UserID); err != model.ErrNotFound {
		t.Fatalf("GetActive after revoke: want ErrNotFound, got %v", err)
	}
	if lst, err := s.Shares().List(ctx, c1.CredentialID); err != nil || len(lst) != 1 || lst[0].Status != model.ShareRevoked {
		t.Fatalf("List shares keeps revoked rows: %+v err=%v", lst, err)
	}
	// Re-share after revocation reactivates with the new role.
	if err := s.Shares().Upsert(ctx, c1.CredentialID, bob.UserID, model.RoleReader); err != nil {
		t.Fatalf("Re-share: %v", err)
	}
	if sh, err := s.Shares().GetActive(ctx, c1.CredentialID, bob.UserID); err != nil || sh.Role != model.RoleReader || sh.Status != model.ShareActive {
		t.Fatalf("GetActive after re-share: %+v err=%v", sh, err)
	}
	if err := s.Shares().Revoke(ctx, c1.CredentialID, owner.UserID); err != model.ErrNotFound {
		t.Fatalf("Revoke absent share: want ErrNotFound, got %v", err)
	}

	// Tags and folders: linking twice leaves exactly one row.
	tag, err := s.Tags().Create(ctx, "t-"+uuid.New().String()[:8])
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := s.Tags().Assign(ctx, c1.CredentialID, tag.TagID); err != nil {
		t.Fatalf("Assign tag: %v", err)
	}
	if err := s.Tags().Assign(ctx, c1.CredentialID, tag.TagID); err != nil {
		t.Fatalf("Assign tag twice: %v", err)
	}
	if lst, err := s.Tags().ListForCredential(ctx, c1.CredentialID); err != nil || len(lst) != 1 {
		t.Fatalf("ListTags: n=%d err=%v", len(lst), err)
	}
	if err := s.Tags().Unassign(ctx, c1.CredentialID, tag.TagID); err != nil {
		t.Fatalf("Unassign tag: %v", err)
	}

	folder, err := s.Folders().Create(ctx, "f-"+uuid.New().String()[:8])
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if err := s.Folders().Assign(ctx, c1.CredentialID, folder.FolderID); err != nil {
		t.Fatalf("Assign folder: %v", err)
	}
	if err := s.Folders().Assign(ctx, c1.CredentialID, folder.FolderID); err != nil {
		t.Fatalf("Assign folder twice: %v", err)
	}
	if lst, err := s.Folders().ListForCredential(ctx, c1.CredentialID); err != nil || len(lst) != 1 {
		t.Fatalf("ListFolders: n=%d err=%v", len(lst), err)
	}

	// Attachments: content round-trips; listings carry metadata only.
	att, err := s.Attachments().Create(ctx, &model.Attachment{
		CredentialID: c1.CredentialID,
		Filename:     "recovery-codes.txt.enc",
		ContentEnc:   []byte{0xde, 0xad, 0xbe, 0xef},
		ContentIV:    []byte{0x01},
		SizeBytes:    i64Ptr(4),
	})
	if err != nil {
		t.Fatalf("CreateAttachment: %v", err)
	}
	if got, err := s.Attachments().Get(ctx, att.AttachmentID); err != nil || len(got.ContentEnc) != 4 {
		t.Fatalf("GetAttachment: %+v err=%v", got, err)
	}
	if lst, err := s.Attachments().ListMeta(ctx, c1.CredentialID); err != nil || len(lst) != 1 || lst[0].ContentEnc != nil {
		t.Fatalf("ListMeta must omit content: %+v err=%v", lst, err)
	}
	if err := s.Attachments().Delete(ctx, att.AttachmentID); err != nil {
		t.Fatalf("DeleteAttachment: %v", err)
	}
	if _, err := s.Attachments().Get(ctx, att.AttachmentID); err != model.ErrNotFound {
		t.Fatalf("GetAttachment after delete: want ErrNotFound, got %v", err)
	}

	// Vault delete cascades to everything beneath it.
	if err := s.Vaults().Delete(ctx, v.VaultID); err != nil {
		t.Fatalf("DeleteVault: %v", err)
	}
	if _, err := s.Vaults().Get(ctx, v.VaultID); err != model.ErrNotFound {
		t.Fatalf("GetVault after delete: want ErrNotFound, got %v", err)
	}
	if _, err := s.Credentials().Get(ctx, c1.CredentialID); err != model.ErrNotFound {
		t.Fatalf("Credential must cascade with vault: got %v", err)
	}
	if lst, err := s.Members().List(ctx, v.VaultID); err != nil || len(lst) != 0 {
		t.Fatalf("Members must cascade with vault: n=%d err=%v", len(lst), err)
	}
}

func strPtr(s string) *string { return &s }
func i64Ptr(n int64) *int64   { return &n }
