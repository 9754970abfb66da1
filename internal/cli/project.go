package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	projectCmd.AddCommand(projectListCmd, projectCreateCmd)
	rootCmd.AddCommand(projectCmd)
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage platform projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		client, err := newAPIClient(store)
		if err != nil {
			return err
		}

		var result json.RawMessage
		if err := client.Call(cmd.Context(), "project_list", nil, &result); err != nil {
			return err
		}
		return printJSON(result)
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		client, err := newAPIClient(store)
		if err != nil {
			return err
		}

		var result json.RawMessage
		params := map[string]string{"name": args[0]}
		if err := client.Call(cmd.Context(), "project_create", params, &result); err != nil {
			return err
		}
		fmt.Printf("Project %q created.\n", args[0])
		return printJSON(result)
	},
}
