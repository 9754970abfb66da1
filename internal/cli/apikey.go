package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	apikeyProject string
	apikeyName    string
)

func init() {
	apikeyCmd.PersistentFlags().StringVar(&apikeyProject, "project", "", "Project ID the keys belong to")
	apikeyCreateCmd.Flags().StringVar(&apikeyName, "name", "", "Display name for the new key")

	apikeyCmd.AddCommand(apikeyListCmd, apikeyCreateCmd, apikeyRevokeCmd)
	rootCmd.AddCommand(apikeyCmd)
}

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage project API keys",
}

// requireProject rejects key operations without a project scope before any
// network I/O.
func requireProject() error {
	if apikeyProject == "" {
		return fmt.Errorf("--project is required")
	}
	return nil
}

var apikeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List API keys for a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireProject(); err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		client, err := newAPIClient(store)
		if err != nil {
			return err
		}

		var result json.RawMessage
		params := map[string]string{"projectId": apikeyProject}
		if err := client.Call(cmd.Context(), "apikey_list", params, &result); err != nil {
			return err
		}
		return printJSON(result)
	},
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an API key in a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireProject(); err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		client, err := newAPIClient(store)
		if err != nil {
			return err
		}

		var result json.RawMessage
		params := map[string]string{"projectId": apikeyProject, "name": apikeyName}
		if err := client.Call(cmd.Context(), "apikey_create", params, &result); err != nil {
			return err
		}
		return printJSON(result)
	},
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke <key-id>",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireProject(); err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		client, err := newAPIClient(store)
		if err != nil {
			return err
		}

		params := map[string]string{"projectId": apikeyProject, "keyId": args[0]}
		if err := client.Call(cmd.Context(), "apikey_revoke", params, nil); err != nil {
			return err
		}
		fmt.Printf("API key %s revoked.\n", args[0])
		return nil
	},
}
