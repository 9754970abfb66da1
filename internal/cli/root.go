// Package cli implements the relayforge command tree. It is the only layer
// that terminates the process: core packages return errors, and Execute maps
// them to exit codes.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/relayforge/relayforge-cli/internal/api"
	"github.com/relayforge/relayforge-cli/internal/auth"
	"github.com/relayforge/relayforge-cli/internal/credstore"
	"github.com/relayforge/relayforge-cli/internal/log"
	"github.com/relayforge/relayforge-cli/pkg/keys"
)

// Exit codes for automation callers.
const (
	exitGeneric    = 1
	exitCredential = 3
	exitAuth       = 4
	exitRateLimit  = 5
)

var (
	flagEnv     string
	flagAPIURL  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "relayforge",
	Short: "relayforge is the command-line client for the RelayForge platform",
	Long: `relayforge generates blockchain key material, authenticates to the
RelayForge platform with a signed ownership proof, manages projects and API
keys, queries indexed chain state, and submits relayed token transfers.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if flagVerbose {
			level = "debug"
		}
		log.Init(level, os.Getenv("RELAYFORGE_LOG") == "json")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", "", "Target environment: prod or dev (default: persisted, then prod)")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Override the platform API base URL")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the CLI and terminates the process on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to a distinct exit status so automation callers
// can tell credential problems from retryable ones.
func exitCode(err error) int {
	switch {
	case errors.Is(err, keys.ErrMalformedKey),
		errors.Is(err, auth.ErrInvalidKeyFormat),
		errors.Is(err, credstore.ErrNoKeyAvailable),
		errors.Is(err, credstore.ErrInvalidStoredKey):
		return exitCredential
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case api.KindRateLimited:
			return exitRateLimit
		case api.KindUnauthorized, api.KindPermissionDenied:
			return exitAuth
		}
	}
	return exitGeneric
}

// openStore opens the per-user credential store.
func openStore() (*credstore.Store, error) {
	path, err := credstore.DefaultPath()
	if err != nil {
		return nil, err
	}
	return credstore.NewStore(path), nil
}

// resolveEnv determines the target environment: the --env flag wins over the
// persisted record, which defaults to prod.
func resolveEnv(rec credstore.Record) (credstore.Environment, error) {
	if flagEnv != "" {
		env := credstore.Environment(flagEnv)
		if !env.Valid() {
			return "", fmt.Errorf("unknown environment %q (want prod or dev)", flagEnv)
		}
		return env, nil
	}
	return rec.Environment, nil
}

// resolveEndpoint applies the endpoint selection precedence:
// --api-url override > --env flag > persisted override > persisted
// environment > prod.
func resolveEndpoint(rec credstore.Record) (string, error) {
	if flagAPIURL != "" {
		return flagAPIURL, nil
	}
	if flagEnv != "" {
		env, err := resolveEnv(rec)
		if err != nil {
			return "", err
		}
		return env.APIURL(), nil
	}
	if rec.APIURL != "" {
		return rec.APIURL, nil
	}
	return rec.Environment.APIURL(), nil
}

// newAPIClient builds an API client with the store as its token source.
func newAPIClient(store *credstore.Store) (*api.Client, error) {
	endpoint, err := resolveEndpoint(store.Load())
	if err != nil {
		return nil, err
	}
	return api.NewClient(endpoint, store), nil
}

// cacheDir returns the local indexer cache directory.
func cacheDir() (string, error) {
	path, err := credstore.DefaultPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), "cache"), nil
}

// printJSON pretty-prints an opaque API result.
func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("format result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
