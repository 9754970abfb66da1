package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relayforge/relayforge-cli/internal/credstore"
	"github.com/relayforge/relayforge-cli/internal/relay"
)

var (
	transferTo     string
	transferToken  string
	transferAmount string
	transferChain  uint64
	transferKey    string
	transferWait   bool
)

func init() {
	transferCmd.Flags().StringVar(&transferTo, "to", "", "Recipient address")
	transferCmd.Flags().StringVar(&transferToken, "token", "", "Token contract address")
	transferCmd.Flags().StringVar(&transferAmount, "amount", "", "Amount in the token's base units")
	transferCmd.Flags().Uint64Var(&transferChain, "chain", 1, "Chain ID")
	transferCmd.Flags().StringVar(&transferKey, "key", "", "Private key (falls back to the stored key)")
	transferCmd.Flags().BoolVar(&transferWait, "wait", false, "Wait for relayer confirmation")
	rootCmd.AddCommand(transferCmd)
}

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Submit a token transfer through a relayed smart-wallet session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if transferTo == "" || transferToken == "" || transferAmount == "" {
			return fmt.Errorf("--to, --token, and --amount are required")
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		key, err := credstore.ResolverFromEnv(store).Resolve(transferKey)
		if err != nil {
			return err
		}
		client, err := newAPIClient(store)
		if err != nil {
			return err
		}

		relayer := relay.New(client)
		receipt, err := relayer.Submit(cmd.Context(), key, relay.Transfer{
			To:      transferTo,
			Token:   transferToken,
			Amount:  transferAmount,
			ChainID: transferChain,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Submitted: %s\n", receipt.TransferID)

		if !transferWait {
			return nil
		}

		confirmed, err := relayer.Wait(cmd.Context(), receipt.TransferID)
		if errors.Is(err, relay.ErrConfirmTimeout) {
			fmt.Println("Still pending; check again later with the indexer.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("Confirmed: %s (tx %s)\n", confirmed.TransferID, confirmed.TxHash)
		return nil
	},
}
