// Command phantom stores and recovers encrypted file references in a
// Phantom Archive ledger, and runs the node that serves one.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "phantom",
	Short: "Phantom Archive - store file references under sealed, per-file keys.",
	Long: `Phantom Archive stores (file name, content hash) pairs in an append-only ledger.
Each hash is encrypted under a fresh random address key, and the key is sealed so
that only the owner account can recover it.

Usage:
  phantom <command> [flags]

Available Commands:
  init       Create the keystore and configuration
  serve      Run a node serving the ledger and the decryption oracle
  address    Print the archive contract address
  store      Encrypt and store a file reference
  list       List the records of an account
  decrypt    Recover stored hashes
  crypt      Encrypt or decrypt text under an address directly

Run 'phantom help <command>' for more details on a specific command.
`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dataDir, "datadir", "", "data directory (default ~/.phantom)")
	flags.StringVar(&opts.network, "network", "", "network: localhost, sepolia or mainnet")
	flags.StringVar(&opts.rpc.URL, "rpc-url", "", "node URL (env "+envKey("RPC_URL")+")")
	flags.StringVar(&opts.rpc.User, "rpc-user", "", "node basic auth user")
	flags.StringVar(&opts.rpc.Password, "rpc-pass", "", "node basic auth password")
	flags.StringVar(&opts.domain, "domain", "", "discover the node and contract via DNS for this domain")
	flags.BoolVar(&opts.dnssec, "dnssec", false, "require DNSSEC-authenticated discovery answers")
	flags.StringVar(&opts.password, "password", "", "keystore password (env "+envKey("PASSWORD")+")")
	flags.Uint32Var(&opts.account, "account", 0, "owner account index (m/44'/60'/0'/0/<index>)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(decryptCmd)
	rootCmd.AddCommand(cryptCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
