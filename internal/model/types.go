package model

import "time"

// User is a minimal account record; authentication happens elsewhere,
// we only need display fields for membership and share listings.
type User struct {
	UserID       int64     `json:"userId"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	CreationTime time.Time `json:"creationTime"`
}

// Vault is the access-control boundary for a set of credentials.
// The owner is recorded on the vault itself, independent of membership rows.
type Vault struct {
	VaultID      int64     `json:"vaultId"`
	OwnerID      int64     `json:"ownerId"`
	Name         string    `json:"name"`
	Type         VaultType `json:"type"`
	EncryptedKey []byte    `json:"encryptedKey,omitempty"`
	KeyIV        []byte    `json:"keyIv,omitempty"`
	CreationTime time.Time `json:"creationTime"`
	UpdateTime   time.Time `json:"updateTime"`
}

// VaultMember is a durable (vault, user, role) grant. The pair is unique;
// re-adding a user updates the role in place.
type VaultMember struct {
	VaultID  int64     `json:"vaultId"`
	UserID   int64     `json:"userId"`
	Role     Role      `json:"role"`
	Username string    `json:"username,omitempty"`
	Email    string    `json:"email,omitempty"`
	AddedAt  time.Time `json:"addedAt"`
}

// Credential belongs to exactly one vault. Ciphertext and IVs are opaque;
// this service never decrypts anything.
type Credential struct {
	CredentialID    int64       `json:"credentialId"`
	VaultID         int64       `json:"vaultId"`
	Title           string      `json:"title"`
	AccountUsername *string     `json:"accountUsername,omitempty"`
	URL             *string     `json:"url,omitempty"`
	SecretEnc       []byte      `json:"secretEnc"`
	SecretIV        []byte      `json:"secretIv"`
	NotesEnc        []byte      `json:"notesEnc,omitempty"`
	NotesIV         []byte      `json:"notesIv,omitempty"`
	TOTPEnc         []byte      `json:"totpEnc,omitempty"`
	TOTPIV          []byte      `json:"totpIv,omitempty"`
	SecurityScore   *int        `json:"securityScore,omitempty"`
	BreachState     BreachState `json:"breachState"`
	ExpirationTime  *time.Time  `json:"expirationTime,omitempty"`
	CreationTime    time.Time   `json:"creationTime"`
	UpdateTime      time.Time   `json:"updateTime"`
}

// CredentialShare grants rights to one credential independent of vault
// membership. Revocation flips Status; the row is never deleted.
type CredentialShare struct {
	CredentialID int64       `json:"credentialId"`
	UserID       int64       `json:"userId"`
	Role         Role        `json:"role"`
	Status       ShareStatus `json:"status"`
	Username     string      `json:"username,omitempty"`
	Email        string      `json:"email,omitempty"`
	SharedAt     time.Time   `json:"sharedAt"`
}

// Attachment is an encrypted file bound to a credential. Immutable once
// created except by deletion. Content is omitted from listings.
type Attachment struct {
	AttachmentID int64     `json:"attachmentId"`
	CredentialID int64     `json:"credentialId"`
	Filename     string    `json:"filename"`
	MimeType     *string   `json:"mimeType,omitempty"`
	ContentEnc   []byte    `json:"contentEnc,omitempty"`
	ContentIV    []byte    `json:"contentIv,omitempty"`
	SizeBytes    *int64    `json:"sizeBytes,omitempty"`
	CreationTime time.Time `json:"creationTime"`
}

// Tag and Folder are organizational entities linked to credentials through
// idempotent many-to-many tables.
type Tag struct {
	TagID int64  `json:"tagId"`
	Name  string `json:"name"`
}

type Folder struct {
	FolderID int64  `json:"folderId"`
	Name     string `json:"name"`
}

// HistoryEntry is an append-only rotation record: the credential's prior
// secret at the moment it was replaced. Read-only through the API.
type HistoryEntry struct {
	HistoryID    int64     `json:"historyId"`
	CredentialID int64     `json:"credentialId"`
	SecretEnc    []byte    `json:"secretEnc"`
	SecretIV     []byte    `json:"secretIv"`
	RotatedAt    time.Time `json:"rotatedAt"`
}
