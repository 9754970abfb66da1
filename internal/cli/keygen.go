package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relayforge/relayforge-cli/internal/credstore"
	"github.com/relayforge/relayforge-cli/pkg/keys"
)

var (
	keygenMnemonic     bool
	keygenFromMnemonic string
	keygenIndex        uint32
	keygenSave         bool
)

func init() {
	keygenCmd.Flags().BoolVar(&keygenMnemonic, "mnemonic", false, "Generate a 24-word mnemonic and derive the key from it")
	keygenCmd.Flags().StringVar(&keygenFromMnemonic, "from-mnemonic", "", "Derive the key from an existing mnemonic")
	keygenCmd.Flags().Uint32Var(&keygenIndex, "index", 0, "Derivation index (with --mnemonic or --from-mnemonic)")
	keygenCmd.Flags().BoolVar(&keygenSave, "save", false, "Encrypt and store the key ("+credstore.PassphraseEnv+" must be set)")
	rootCmd.AddCommand(keygenCmd)
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new EOA private key and address",
	RunE: func(cmd *cobra.Command, args []string) error {
		var kp keys.KeyPair
		var err error

		switch {
		case keygenFromMnemonic != "":
			kp, err = keys.FromMnemonic(keygenFromMnemonic, "", keygenIndex)
			if err != nil {
				return err
			}
		case keygenMnemonic:
			mnemonic, err := keys.GenerateMnemonic()
			if err != nil {
				return err
			}
			kp, err = keys.FromMnemonic(mnemonic, "", keygenIndex)
			if err != nil {
				return err
			}
			fmt.Printf("Mnemonic:    %s\n", mnemonic)
		default:
			kp, err = keys.Generate()
			if err != nil {
				return err
			}
		}

		fmt.Printf("Address:     %s\n", kp.Address)
		fmt.Printf("Private key: %s\n", kp.PrivateKey)

		if keygenSave {
			store, err := openStore()
			if err != nil {
				return err
			}
			stored, err := credstore.ResolverFromEnv(store).StoreIfRequested(kp.PrivateKey)
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
