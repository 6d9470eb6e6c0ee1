package api

import (
	"database/sql"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/passvault-io/passvault/internal/access"
	"github.com/passvault-io/passvault/internal/api/recovery"
	"github.com/passvault-io/passvault/internal/auth"
	"github.com/passvault-io/passvault/internal/services"
	"github.com/passvault-io/passvault/internal/store"
)

// Deps carries everything the router needs wired up.
type Deps struct {
	Store      store.Store
	DB         *sql.DB
	Authorizer auth.Authorizer
	Logger     zerolog.Logger
}

// NewRouter builds the full API route table. Health and user provisioning
// are open; everything else sits behind the bearer-token middleware.
func NewRouter(d Deps) *mux.Router {
	resolver := access.NewResolver(d.Store)

	vaultSvc := services.NewVaultService(d.Store, resolver)
	credSvc := services.NewCredentialService(d.Store, resolver)
	linkSvc := services.NewLinkService(d.Store, resolver)
	attSvc := services.NewAttachmentService(d.Store, resolver)
	userSvc := services.NewUserService(d.Store)

	healthHandler := NewHealthHandler(d.DB)
	userHandler := NewUserHandler(userSvc)
	vaultHandler := NewVaultHandler(vaultSvc)
	credHandler := NewCredentialHandler(credSvc)
	shareHandler := NewShareHandler(credSvc)
	linkHandler := NewLinkHandler(linkSvc)
	attHandler := NewAttachmentHandler(attSvc)

	router := mux.NewRouter()
	router.Use(recovery.Middleware)
	router.Use(requestLogger(d.Logger))

	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	router.HandleFunc("/api/health/db", healthHandler.CheckStorageHealth).Methods("GET")

	router.HandleFunc("/api/users", userHandler.CreateUser).Methods("POST")
	router.HandleFunc("/api/users/{userId:[0-9]+}", userHandler.GetUser).Methods("GET")

	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(auth.Middleware(d.Authorizer, d.Logger))

	// Vaults and membership
	protected.HandleFunc("/vaults", vaultHandler.CreateVault).Methods("POST")
	protected.HandleFunc("/vaults", vaultHandler.ListVaults).Methods("GET")
	protected.HandleFunc("/vaults/{vaultId:[0-9]+}", vaultHandler.GetVault).Methods("GET")
	protected.HandleFunc("/vaults/{vaultId:[0-9]+}", vaultHandler.UpdateVault).Methods("PATCH")
	protected.HandleFunc("/vaults/{vaultId:[0-9]+}", vaultHandler.DeleteVault).Methods("DELETE")
	protected.HandleFunc("/vaults/{vaultId:[0-9]+}/members", vaultHandler.ListMembers).Methods("GET")
	protected.HandleFunc("/vaults/{vaultId:[0-9]+}/members/{userId:[0-9]+}", vaultHandler.PutMember).Methods("PUT")
	protected.HandleFunc("/vaults/{vaultId:[0-9]+}/members/{userId:[0-9]+}", vaultHandler.RemoveMember).Methods("DELETE")

	// Credentials
	protected.HandleFunc("/vaults/{vaultId:[0-9]+}/credentials", credHandler.CreateCredential).Methods("POST")
	protected.HandleFunc("/vaults/{vaultId:[0-9]+}/credentials", credHandler.ListCredentials).Methods("GET")
	protected.HandleFunc("/credentials/{credentialId:[0-9]+}", credHandler.GetCredential).Methods("GET")
	protected.HandleFunc("/credentials/{credentialId:[0-9]+}", credHandler.UpdateCredential).Methods("PATCH")
	protected.HandleFunc("/credentials/{credentialId:[0-9]+}", credHandler.DeleteCredential).Methods("DELETE")
	protected.HandleFunc("/credentials/{credentialId:[0-9]+}/history", credHandler.ListHistory).Methods("GET")

	// Sharing
	protected.HandleFunc("/credentials/{credentialId:[0-9]+}/shares", shareHandler.ListShares).Methods("GET")
	protected.HandleFunc("/credentials/{credentialId:[0-9]+}/shares/{userId:[0-9]+}", shareHandler.PutShare).Methods("PUT")
	protected.HandleFunc("/credentials/{credentialId:[0-9]+}/shares/{userId:[0-9]+}", shareHandler.RevokeShare).Methods("DELETE")

	// Tags and folders
	protected.HandleFunc("/tags", linkHandler.CreateTag).Methods("POST")
	protected.HandleFunc("/folders", linkHandler.CreateFolder).Methods("POST")
	protected.HandleFunc("/credentials/{credentialId:[0-9]+}/tags", linkHandler.ListTags).Methods("GET")
	protected.HandleFunc("/credentials/{credentialId:[0-9]+}/tags/{tagId:[0-9]+}", linkHandler.AssignTag).Methods("PUT")
	protected.HandleFunc("/credentials/{credentialId:[0-9]+}/tags/{tagId:[0-9]+}", linkHandler.UnassignTag).Methods("DELETE")
	protected.HandleFunc("/credentials/{credentialId:[0-9]+}/folders", linkHandler.ListFolders).Methods("GET")
	protected.HandleFunc("/credentials/{credentialId:[0-9]+}/folders/{folderId:[0-9]+}", linkHandler.AssignFolder).Methods("PUT")
	protected.HandleFunc("/credentials/{credentialId:[0-9]+}/folders/{folderId:[0-9]+}", linkHandler.UnassignFolder).Methods("DELETE")

	// Attachments
	protected.HandleFunc("/credentials/{credentialId:[0-9]+}/attachments", attHandler.AddAttachment).Methods("POST")
	protected.HandleFunc("/credentials/{credentialId:[0-9]+}/attachments", attHandler.ListAttachments).Methods("GET")
	protected.HandleFunc("/attachments/{attachmentId:[0-9]+}", attHandler.GetAttachment).Methods("GET")
	protected.HandleFunc("/attachments/{attachmentId:[0-9]+}", attHandler.DeleteAttachment).Methods("DELETE")

	return router
}
