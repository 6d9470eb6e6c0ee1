package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/passvault-io/passvault/internal/access"
	"github.com/passvault-io/passvault/internal/model"
	"github.com/passvault-io/passvault/internal/store"
	"github.com/passvault-io/passvault/internal/store/sqlite"
)

type env struct {
	store store.Store

	vaults      *VaultService
	credentials *CredentialService
	links       *LinkService
	attachments *AttachmentService
	users       *UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.EnsureSchema(ctx, db))

	s := sqlite.New(db)
	r := access.NewResolver(s)
	return &env{
		store:       s,
		vaults:      NewVaultService(s, r),
		credentials: NewCredentialService(s, r),
		links:       NewLinkService(s, r),
		attachments: NewAttachmentService(s, r),
		users:       NewUserService(s),
	}
}

func (e *env) user(t *testing.T, name string) *model.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), name, name+"@example.test")
	require.NoError(t, err)
	return u
}

func (e *env) credential(t *testing.T, vaultID int64, title string) *model.Credential {
	t.Helper()
	c, err := e.store.Credentials().Create(context.Background(), &model.Credential{
		VaultID: vaultID, Title: title, SecretEnc: []byte("ct"), SecretIV: []byte("iv"),
	})
	require.NoError(t, err)
	return c
}

func TestCreateVaultValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner")

	_, err := e.vaults.CreateVault(ctx, owner.UserID, "  ", model.VaultPersonal, nil, nil)
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = e.vaults.CreateVault(ctx, owner.UserID, "v", model.VaultType("TEAM"), nil, nil)
	require.ErrorIs(t, err, model.ErrValidation)

	v, err := e.vaults.CreateVault(ctx, owner.UserID, "v", "", nil, nil)
	require.NoError(t, err)
	require.Equal(t, model.VaultPersonal, v.Type)
}

// A missing object reads as not-found even for a caller with no rights;
// an existing object the caller cannot touch reads as forbidden.
func TestNotFoundBeforeForbidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner")
	stranger := e.user(t, "stranger")

	v, err := e.vaults.CreateVault(ctx, owner.UserID, "v", model.VaultShared, nil, nil)
	require.NoError(t, err)
	c := e.credential(t, v.VaultID, "c")

	_, err = e.vaults.GetVault(ctx, stranger.UserID, 999999)
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = e.vaults.GetVault(ctx, stranger.UserID, v.VaultID)
	require.ErrorIs(t, err, model.ErrForbidden)

	_, err = e.credentials.GetCredential(ctx, stranger.UserID, 999999)
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = e.credentials.GetCredential(ctx, stranger.UserID, c.CredentialID)
	require.ErrorIs(t, err, model.ErrForbidden)

	err = e.credentials.DeleteCredential(ctx, stranger.UserID, 999999)
	require.ErrorIs(t, err, model.ErrNotFound)
	err = e.credentials.DeleteCredential(ctx, stranger.UserID, c.CredentialID)
	require.ErrorIs(t, err, model.ErrForbidden)
}

func TestVaultManagementRights(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner")
	admin := e.user(t, "admin")
	editor := e.user(t, "editor")

	v, err := e.vaults.CreateVault(ctx, owner.UserID, "team", model.VaultShared, nil, nil)
	require.NoError(t, err)

	// Only OWNER/ADMIN may add members, and OWNER is not a grantable role.
	err = e.vaults.AddMember(ctx, owner.UserID, v.VaultID, admin.UserID, model.RoleOwner)
	require.ErrorIs(t, err, model.ErrValidation)
	require.NoError(t, e.vaults.AddMember(ctx, owner.UserID, v.VaultID, admin.UserID, model.RoleAdmin))
	require.NoError(t, e.vaults.AddMember(ctx, admin.UserID, v.VaultID, editor.UserID, model.RoleEditor))
	err = e.vaults.AddMember(ctx, editor.UserID, v.VaultID, editor.UserID, model.RoleReader)
	require.ErrorIs(t, err, model.ErrForbidden)

	// Adding an unknown user is a not-found, not a silent insert.
	err = e.vaults.AddMember(ctx, owner.UserID, v.VaultID, 999999, model.RoleReader)
	require.ErrorIs(t, err, model.ErrNotFound)

	// Listing members is administrative too.
	_, err = e.vaults.ListMembers(ctx, editor.UserID, v.VaultID)
	require.ErrorIs(t, err, model.ErrForbidden)
	mems, err := e.vaults.ListMembers(ctx, admin.UserID, v.VaultID)
	require.NoError(t, err)
	require.Len(t, mems, 2)

	name := "renamed"
	_, err = e.vaults.UpdateVault(ctx, editor.UserID, v.VaultID, store.UpdateVaultParams{Name: &name})
	require.ErrorIs(t, err, model.ErrForbidden)
	_, err = e.vaults.UpdateVault(ctx, admin.UserID, v.VaultID, store.UpdateVaultParams{Name: &name})
	require.NoError(t, err)

	err = e.vaults.RemoveMember(ctx, editor.UserID, v.VaultID, admin.UserID)
	require.ErrorIs(t, err, model.ErrForbidden)
	require.NoError(t, e.vaults.RemoveMember(ctx, owner.UserID, v.VaultID, editor.UserID))
	err = e.vaults.RemoveMember(ctx, owner.UserID, v.VaultID, editor.UserID)
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, e.vaults.DeleteVault(ctx, admin.UserID, v.VaultID))
}

func TestCredentialLifecycleRights(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner")
	reader := e.user(t, "reader")

	v, err := e.vaults.CreateVault(ctx, owner.UserID, "team", model.VaultShared, nil, nil)
	require.NoError(t, err)
	require.NoError(t, e.vaults.AddMember(ctx, owner.UserID, v.VaultID, reader.UserID, model.RoleReader))

	_, err = e.credentials.CreateCredential(ctx, reader.UserID, &model.Credential{
		VaultID: v.VaultID, Title: "c", SecretEnc: []byte("ct"), SecretIV: []byte("iv"),
	})
	require.ErrorIs(t, err, model.ErrForbidden)

	_, err = e.credentials.CreateCredential(ctx, owner.UserID, &model.Credential{
		VaultID: v.VaultID, Title: " ", SecretEnc: []byte("ct"), SecretIV: []byte("iv"),
	})
	require.ErrorIs(t, err, model.ErrValidation)

	c, err := e.credentials.CreateCredential(ctx, owner.UserID, &model.Credential{
		VaultID: v.VaultID, Title: "c", SecretEnc: []byte("ct"), SecretIV: []byte("iv"),
	})
	require.NoError(t, err)

	got, err := e.credentials.GetCredential(ctx, reader.UserID, c.CredentialID)
	require.NoError(t, err)
	require.Equal(t, "c", got.Title)

	// Rotation must carry ciphertext and IV together.
	_, err = e.credentials.UpdateCredential(ctx, owner.UserID, c.CredentialID, store.UpdateCredentialParams{SecretEnc: []byte("ct2")})
	require.ErrorIs(t, err, model.ErrValidation)
	_, err = e.credentials.UpdateCredential(ctx, owner.UserID, c.CredentialID, store.UpdateCredentialParams{
		SecretEnc: []byte("ct2"), SecretIV: []byte("iv2"),
	})
	require.NoError(t, err)

	hist, total, err := e.credentials.ListHistory(ctx, reader.UserID, c.CredentialID, 1, 50)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, []byte("ct"), hist[0].SecretEnc)

	err = e.credentials.DeleteCredential(ctx, reader.UserID, c.CredentialID)
	require.ErrorIs(t, err, model.ErrForbidden)
	require.NoError(t, e.credentials.DeleteCredential(ctx, owner.UserID, c.CredentialID))
}

func TestShareLifecycleThroughService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner")
	editor := e.user(t, "editor")
	guest := e.user(t, "guest")

	v, err := e.vaults.CreateVault(ctx, owner.UserID, "team", model.VaultShared, nil, nil)
	require.NoError(t, err)
	require.NoError(t, e.vaults.AddMember(ctx, owner.UserID, v.VaultID, editor.UserID, model.RoleEditor))
	c := e.credential(t, v.VaultID, "c")

	// EDITOR cannot share, OWNER can; only EDITOR/READER are share roles.
	err = e.credentials.ShareCredential(ctx, editor.UserID, c.CredentialID, guest.UserID, model.RoleReader)
	require.ErrorIs(t, err, model.ErrForbidden)
	err = e.credentials.ShareCredential(ctx, owner.UserID, c.CredentialID, guest.UserID, model.RoleAdmin)
	require.ErrorIs(t, err, model.ErrValidation)
	err = e.credentials.ShareCredential(ctx, owner.UserID, c.CredentialID, 999999, model.RoleReader)
	require.ErrorIs(t, err, model.ErrNotFound)
	require.NoError(t, e.credentials.ShareCredential(ctx, owner.UserID, c.CredentialID, guest.UserID, model.RoleEditor))

	// The guest can now read and write the credential.
	_, err = e.credentials.GetCredential(ctx, guest.UserID, c.CredentialID)
	require.NoError(t, err)
	title := "renamed"
	_, err = e.credentials.UpdateCredential(ctx, guest.UserID, c.CredentialID, store.UpdateCredentialParams{Title: &title})
	require.NoError(t, err)

	// But still cannot list the vault.
	_, _, err = e.credentials.ListCredentials(ctx, guest.UserID, v.VaultID, 1, 20)
	require.ErrorIs(t, err, model.ErrForbidden)

	// Anyone with read access sees the grant list.
	shares, err := e.credentials.ListShares(ctx, guest.UserID, c.CredentialID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	shares, err = e.credentials.ListShares(ctx, owner.UserID, c.CredentialID)
	require.NoError(t, err)
	require.Len(t, shares, 1)

	require.NoError(t, e.credentials.RevokeShare(ctx, owner.UserID, c.CredentialID, guest.UserID))
	_, err = e.credentials.GetCredential(ctx, guest.UserID, c.CredentialID)
	require.ErrorIs(t, err, model.ErrForbidden)

	err = e.credentials.RevokeShare(ctx, owner.UserID, c.CredentialID, guest.UserID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemberListingRequiresAdminRights(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner")
	editor := e.user(t, "editor")
	reader := e.user(t, "reader")

	v, err := e.vaults.CreateVault(ctx, owner.UserID, "team", model.VaultShared, nil, nil)
	require.NoError(t, err)
	require.NoError(t, e.vaults.AddMember(ctx, owner.UserID, v.VaultID, editor.UserID, model.RoleEditor))
	require.NoError(t, e.vaults.AddMember(ctx, owner.UserID, v.VaultID, reader.UserID, model.RoleReader))

	_, err = e.vaults.ListMembers(ctx, editor.UserID, v.VaultID)
	require.ErrorIs(t, err, model.ErrForbidden)
	_, err = e.vaults.ListMembers(ctx, reader.UserID, v.VaultID)
	require.ErrorIs(t, err, model.ErrForbidden)

	mems, err := e.vaults.ListMembers(ctx, owner.UserID, v.VaultID)
	require.NoError(t, err)
	require.Len(t, mems, 2)
}

func TestShareListingOpenToReaders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner")
	reader := e.user(t, "reader")
	guest := e.user(t, "guest")
	stranger := e.user(t, "stranger")

	v, err := e.vaults.CreateVault(ctx, owner.UserID, "team", model.VaultShared, nil, nil)
	require.NoError(t, err)
	require.NoError(t, e.vaults.AddMember(ctx, owner.UserID, v.VaultID, reader.UserID, model.RoleReader))
	c := e.credential(t, v.VaultID, "c")
	require.NoError(t, e.credentials.ShareCredential(ctx, owner.UserID, c.CredentialID, guest.UserID, model.RoleReader))

	// A READER member and an ACTIVE share holder both see the grants.
	shares, err := e.credentials.ListShares(ctx, reader.UserID, c.CredentialID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	shares, err = e.credentials.ListShares(ctx, guest.UserID, c.CredentialID)
	require.NoError(t, err)
	require.Len(t, shares, 1)

	// No read access, no listing; and a revoked grant stops qualifying.
	_, err = e.credentials.ListShares(ctx, stranger.UserID, c.CredentialID)
	require.ErrorIs(t, err, model.ErrForbidden)
	require.NoError(t, e.credentials.RevokeShare(ctx, owner.UserID, c.CredentialID, guest.UserID))
	_, err = e.credentials.ListShares(ctx, guest.UserID, c.CredentialID)
	require.ErrorIs(t, err, model.ErrForbidden)
}

func TestMoveCredentialNeedsTargetRights(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner")
	other := e.user(t, "other")

	v1, err := e.vaults.CreateVault(ctx, owner.UserID, "mine", model.VaultPersonal, nil, nil)
	require.NoError(t, err)
	v2, err := e.vaults.CreateVault(ctx, other.UserID, "theirs", model.VaultPersonal, nil, nil)
	require.NoError(t, err)
	c := e.credential(t, v1.VaultID, "c")

	_, err = e.credentials.UpdateCredential(ctx, owner.UserID, c.CredentialID, store.UpdateCredentialParams{VaultID: &v2.VaultID})
	require.ErrorIs(t, err, model.ErrForbidden)

	missing := int64(999999)
	_, err = e.credentials.UpdateCredential(ctx, owner.UserID, c.CredentialID, store.UpdateCredentialParams{VaultID: &missing})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestAttachmentRights(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner")
	guest := e.user(t, "guest")

	v, err := e.vaults.CreateVault(ctx, owner.UserID, "v", model.VaultPersonal, nil, nil)
	require.NoError(t, err)
	c := e.credential(t, v.VaultID, "c")

	_, err = e.attachments.AddAttachment(ctx, guest.UserID, &model.Attachment{
		CredentialID: c.CredentialID, Filename: "f", ContentEnc: []byte{1}, ContentIV: []byte{2},
	})
	require.ErrorIs(t, err, model.ErrForbidden)

	a, err := e.attachments.AddAttachment(ctx, owner.UserID, &model.Attachment{
		CredentialID: c.CredentialID, Filename: "f", ContentEnc: []byte{1}, ContentIV: []byte{2},
	})
	require.NoError(t, err)

	// A READER share on the credential opens read but not delete.
	require.NoError(t, e.credentials.ShareCredential(ctx, owner.UserID, c.CredentialID, guest.UserID, model.RoleReader))
	got, err := e.attachments.GetAttachment(ctx, guest.UserID, a.AttachmentID)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, got.ContentEnc)
	err = e.attachments.DeleteAttachment(ctx, guest.UserID, a.AttachmentID)
	require.ErrorIs(t, err, model.ErrForbidden)
	require.NoError(t, e.attachments.DeleteAttachment(ctx, owner.UserID, a.AttachmentID))
}

func TestTagAndFolderLinks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner")
	guest := e.user(t, "guest")

	v, err := e.vaults.CreateVault(ctx, owner.UserID, "v", model.VaultPersonal, nil, nil)
	require.NoError(t, err)
	c := e.credential(t, v.VaultID, "c")

	tag, err := e.links.CreateTag(ctx, "work")
	require.NoError(t, err)
	folder, err := e.links.CreateFolder(ctx, "infra")
	require.NoError(t, err)
	_, err = e.links.CreateTag(ctx, " ")
	require.ErrorIs(t, err, model.ErrValidation)

	err = e.links.AssignTag(ctx, guest.UserID, c.CredentialID, tag.TagID)
	require.ErrorIs(t, err, model.ErrForbidden)
	require.NoError(t, e.links.AssignTag(ctx, owner.UserID, c.CredentialID, tag.TagID))
	require.NoError(t, e.links.AssignFolder(ctx, owner.UserID, c.CredentialID, folder.FolderID))

	tags, err := e.links.ListTags(ctx, owner.UserID, c.CredentialID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	folders, err := e.links.ListFolders(ctx, owner.UserID, c.CredentialID)
	require.NoError(t, err)
	require.Len(t, folders, 1)

	require.NoError(t, e.links.UnassignTag(ctx, owner.UserID, c.CredentialID, tag.TagID))
	tags, err = e.links.ListTags(ctx, owner.UserID, c.CredentialID)
	require.NoError(t, err)
	require.Empty(t, tags)
}
