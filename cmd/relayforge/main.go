// relayforge is the command-line client for the RelayForge platform.
package main

import "github.com/relayforge/relayforge-cli/internal/cli"

func main() {
	cli.Execute()
}
