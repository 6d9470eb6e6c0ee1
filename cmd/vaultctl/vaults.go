package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	vaultsCmd := &cobra.Command{Use: "vaults", Short: "Vault operations"}

	var name, vtype string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a vault",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name required")
			}
			out, err := call(client().R().SetBody(map[string]string{
				"name": name,
				"type": vtype,
			}), "POST", "/api/vaults")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Vault name (required)")
	createCmd.Flags().StringVarP(&vtype, "type", "T", "PERSONAL", "Vault type (PERSONAL or SHARED)")
	vaultsCmd.AddCommand(createCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List vaults visible to the caller",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := call(client().R(), "GET", "/api/vaults")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	vaultsCmd.AddCommand(listCmd)

	getCmd := &cobra.Command{
		Use:   "get VAULT_ID",
		Short: "Get vault by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := call(client().R(), "GET", "/api/vaults/"+args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	vaultsCmd.AddCommand(getCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete VAULT_ID",
		Short: "Delete a vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := call(client().R(), "DELETE", "/api/vaults/"+args[0])
			return err
		},
	}
	vaultsCmd.AddCommand(deleteCmd)

	membersCmd := &cobra.Command{
		Use:   "members VAULT_ID",
		Short: "List vault members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := call(client().R(), "GET", "/api/vaults/"+args[0]+"/members")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	vaultsCmd.AddCommand(membersCmd)

	var role string
	addMemberCmd := &cobra.Command{
		Use:   "add-member VAULT_ID USER_ID",
		Short: "Add or update a vault member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := call(client().R().SetBody(map[string]string{"role": role}),
				"PUT", "/api/vaults/"+args[0]+"/members/"+args[1])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	addMemberCmd.Flags().StringVarP(&role, "role", "r", "READER", "Role (ADMIN, EDITOR or READER)")
	vaultsCmd.AddCommand(addMemberCmd)

	removeMemberCmd := &cobra.Command{
		Use:   "remove-member VAULT_ID USER_ID",
		Short: "Remove a vault member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := call(client().R(), "DELETE", "/api/vaults/"+args[0]+"/members/"+args[1])
			return err
		},
	}
	vaultsCmd.AddCommand(removeMemberCmd)

	rootCmd.AddCommand(vaultsCmd)
}
