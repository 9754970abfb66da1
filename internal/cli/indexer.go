package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relayforge/relayforge-cli/internal/indexer"
	"github.com/relayforge/relayforge-cli/internal/log"
)

var (
	indexerChain   uint64
	indexerMethod  string
	indexerParams  string
	indexerNoCache bool
)

func init() {
	indexerQueryCmd.Flags().Uint64Var(&indexerChain, "chain", 1, "Chain ID to query")
	indexerQueryCmd.Flags().StringVar(&indexerMethod, "method", "", "Indexer method name")
	indexerQueryCmd.Flags().StringVar(&indexerParams, "params", "", "Method parameters as a JSON value")
	indexerQueryCmd.Flags().BoolVar(&indexerNoCache, "no-cache", false, "Bypass the local response cache")

	indexerCmd.AddCommand(indexerQueryCmd)
	rootCmd.AddCommand(indexerCmd)
}

var indexerCmd = &cobra.Command{
	Use:   "indexer",
	Short: "Query indexed blockchain state",
}

var indexerQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run an indexer query",
	RunE: func(cmd *cobra.Command, args []string) error {
		if indexerMethod == "" {
			return fmt.Errorf("--method is required")
		}

		var params json.RawMessage
		if indexerParams != "" {
			if !json.Valid([]byte(indexerParams)) {
				return fmt.Errorf("--params is not valid JSON")
			}
			params = json.RawMessage(indexerParams)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		client, err := newAPIClient(store)
		if err != nil {
			return err
		}

		// A cache that fails to open degrades to direct queries.
		var cache *indexer.Cache
		if dir, err := cacheDir(); err == nil {
			if cache, err = indexer.OpenCache(dir); err != nil {
				log.Cache.Warn().Err(err).Msg("indexer cache unavailable")
				cache = nil
			} else {
				defer cache.Close()
			}
		}

		result, err := indexer.NewClient(client, cache).Run(cmd.Context(), indexer.Query{
			ChainID: indexerChain,
			Method:  indexerMethod,
			Params:  params,
		}, indexerNoCache)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}
