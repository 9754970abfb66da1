package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show environment, endpoint, session, and stored-key state",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		rec := store.Load()

		env, err := resolveEnv(rec)
		if err != nil {
			return err
		}
		endpoint, err := resolveEndpoint(rec)
		if err != nil {
			return err
		}

		fmt.Printf("Environment: %s\n", env)
		fmt.Printf("API URL:     %s\n", endpoint)

		if rec.Session.ValidAt(time.Now()) {
			fmt.Printf("Session:     valid until %s\n", rec.Session.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
		} else {
			fmt.Println("Session:     not logged in")
		}

		if rec.EncryptedKey != nil {
			fmt.Printf("Stored key:  yes (fingerprint %s)\n", rec.EncryptedKey.Fingerprint())
		} else {
			fmt.Println("Stored key:  none")
		}
		return nil
	},
}
