package cli

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/relayforge/relayforge-cli/internal/auth"
	"github.com/relayforge/relayforge-cli/internal/credstore"
)

var (
	loginKey   string
	loginEmail string
	loginSave  bool
)

func init() {
	loginCmd.Flags().StringVar(&loginKey, "key", "", "Private key to prove ownership of (prompted if omitted and none stored)")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email to associate with the account")
	loginCmd.Flags().BoolVar(&loginSave, "save", false, "Encrypt and store the key after login ("+credstore.PassphraseEnv+" must be set)")
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate to the platform with a signed ownership proof",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		resolver := credstore.ResolverFromEnv(store)
		key, err := resolver.Resolve(loginKey)
		if errors.Is(err, credstore.ErrNoKeyAvailable) && term.IsTerminal(int(syscall.Stdin)) {
			key, err = promptKey()
		}
		if err != nil {
			return err
		}

		env, err := resolveEnv(store.Load())
		if err != nil {
			return err
		}
		client, err := newAPIClient(store)
		if err != nil {
			return err
		}

		sess, err := auth.New(client, store, env).Authenticate(cmd.Context(), key, loginEmail)
		if err != nil {
			return err
		}
		fmt.Printf("Logged in (%s). Session valid until %s.\n", env, sess.ExpiresAt.Local().Format("2006-01-02 15:04:05"))

		if loginSave {
			stored, err := resolver.StoreIfRequested(key)
			if err != nil {
				return err
			}
			if stored {
				fmt.Println("Key encrypted and stored.")
			} else {
				fmt.Printf("Key not stored: set %s to enable encrypted storage.\n", credstore.PassphraseEnv)
			}
		}
		return nil
	},
}

// promptKey reads a private key from the terminal without echo.
func promptKey() (string, error) {
	fmt.Fprint(os.Stderr, "Private key: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read key: %w", err)
	}
	if len(raw) == 0 {
		return "", credstore.ErrNoKeyAvailable
	}
	return string(raw), nil
}
