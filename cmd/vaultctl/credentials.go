package main

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	credsCmd := &cobra.Command{Use: "credentials", Short: "Credential operations"}

	var title, url, secret, iv string
	createCmd := &cobra.Command{
		Use:   "create VAULT_ID",
		Short: "Create a credential (secret and IV as base64 ciphertext)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" || secret == "" || iv == "" {
				return fmt.Errorf("--title, --secret and --iv required")
			}
			if _, err := base64.StdEncoding.DecodeString(secret); err != nil {
				return fmt.Errorf("--secret must be base64: %w", err)
			}
			if _, err := base64.StdEncoding.DecodeString(iv); err != nil {
				return fmt.Errorf("--iv must be base64: %w", err)
			}
			body := map[string]string{"title": title, "secretEnc": secret, "secretIv": iv}
			if url != "" {
				body["url"] = url
			}
			out, err := call(client().R().SetBody(body), "POST", "/api/vaults/"+args[0]+"/credentials")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	createCmd.Flags().StringVar(&title, "title", "", "Title (required)")
	createCmd.Flags().StringVar(&url, "url", "", "URL")
	createCmd.Flags().StringVar(&secret, "secret", "", "Encrypted secret, base64 (required)")
	createCmd.Flags().StringVar(&iv, "iv", "", "Secret IV, base64 (required)")
	credsCmd.AddCommand(createCmd)

	var urlFilter string
	listCmd := &cobra.Command{
		Use:   "list VAULT_ID",
		Short: "List credentials in a vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client().R()
			if urlFilter != "" {
				req.SetQueryParam("url", urlFilter)
			}
			out, err := call(req, "GET", "/api/vaults/"+args[0]+"/credentials")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	listCmd.Flags().StringVar(&urlFilter, "url", "", "Filter by URL substring")
	credsCmd.AddCommand(listCmd)

	getCmd := &cobra.Command{
		Use:   "get CREDENTIAL_ID",
		Short: "Get credential by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := call(client().R(), "GET", "/api/credentials/"+args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	credsCmd.AddCommand(getCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete CREDENTIAL_ID",
		Short: "Delete a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := call(client().R(), "DELETE", "/api/credentials/"+args[0])
			return err
		},
	}
	credsCmd.AddCommand(deleteCmd)

	historyCmd := &cobra.Command{
		Use:   "history CREDENTIAL_ID",
		Short: "List rotation history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := call(client().R(), "GET", "/api/credentials/"+args[0]+"/history")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	credsCmd.AddCommand(historyCmd)

	var role string
	shareCmd := &cobra.Command{
		Use:   "share CREDENTIAL_ID USER_ID",
		Short: "Share a credential with a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := call(client().R().SetBody(map[string]string{"role": role}),
				"PUT", "/api/credentials/"+args[0]+"/shares/"+args[1])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	shareCmd.Flags().StringVarP(&role, "role", "r", "READER", "Share role (EDITOR or READER)")
	credsCmd.AddCommand(shareCmd)

	revokeCmd := &cobra.Command{
		Use:   "revoke CREDENTIAL_ID USER_ID",
		Short: "Revoke a share",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := call(client().R(), "DELETE", "/api/credentials/"+args[0]+"/shares/"+args[1])
			return err
		},
	}
	credsCmd.AddCommand(revokeCmd)

	sharesCmd := &cobra.Command{
		Use:   "shares CREDENTIAL_ID",
		Short: "List shares on a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := call(client().R(), "GET", "/api/credentials/"+args[0]+"/shares")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	credsCmd.AddCommand(sharesCmd)

	rootCmd.AddCommand(credsCmd)
}
