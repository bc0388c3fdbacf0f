package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/phantomarchive/libphantom-go/config"
	"github.com/phantomarchive/libphantom-go/ledger"
	"github.com/phantomarchive/libphantom-go/wallet"
)

var (
	initMnemonic string
	initWords24  bool
	initForce    bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the keystore and configuration",
	Long: `Generates a BIP39 mnemonic (or restores one with --mnemonic), encrypts the seed
into the keystore, and writes the configuration file. The archive contract address
is derived from the deployer account (index 0).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup := startSpinner("Creating keystore...")
		defer cleanup()

		if _, err := os.Stat(keystorePath()); err == nil && !initForce {
			s.FinalMSG = color.RedString("✗") + " A keystore already exists at " + color.YellowString(keystorePath()) + "\n" +
				color.CyanString("→") + " Pass " + color.YellowString("--force") + " to overwrite it"
			return errReported
		}

		pw, err := keystorePassword()
		if err != nil {
			return fail(s, "No keystore password", err)
		}

		mnemonic := strings.TrimSpace(initMnemonic)
		generated := mnemonic == ""
		if generated {
			bits := wallet.Mnemonic12Words
			if initWords24 {
				bits = wallet.Mnemonic24Words
			}
			if mnemonic, err = wallet.GenerateMnemonic(bits); err != nil {
				return fail(s, "Failed to generate mnemonic", err)
			}
		}

		seed, err := wallet.SeedFromMnemonic(mnemonic, "")
		if err != nil {
			return fail(s, "Invalid mnemonic", err)
		}
		defer clear(seed)

		netCfg, err := wallet.GetNetwork(cfg.Network)
		if err != nil {
			return fail(s, "Unknown network", err)
		}
		w, err := wallet.NewWallet(seed, netCfg)
		if err != nil {
			return fail(s, "Failed to open wallet", err)
		}
		deployer, err := w.DeriveAccount(0)
		if err != nil {
			return fail(s, "Failed to derive deployer account", err)
		}
		networkKey, err := w.DeriveNetworkKey()
		if err != nil {
			return fail(s, "Failed to derive network key", err)
		}

		if err := wallet.SaveKeystore(keystorePath(), seed, pw); err != nil {
			return fail(s, "Failed to write keystore", err)
		}

		contract := ledger.ContractAddress(deployer.Address())
		cfgPath := config.ConfigPath(cfg.DataDir)
		out := cfg
		out.Contract = contract.Hex()
		if err := config.SaveConfig(cfgPath, out); err != nil {
			return fail(s, "Failed to write configuration", err)
		}
		log.WithField("contract", contract.Hex()).Info("keystore created")

		var b strings.Builder
		b.WriteString(color.GreenString("✓") + " Keystore created at " + color.YellowString(keystorePath()) + "\n")
		if generated {
			b.WriteString(color.YellowString("!") + " Write down your mnemonic. It is the only way to recover your accounts:\n")
			b.WriteString("  " + color.CyanString(mnemonic) + "\n")
		}
		fmt.Fprintf(&b, "  network:      %s (chain id %d)\n", netCfg.Name, netCfg.ChainID)
		fmt.Fprintf(&b, "  owner:        %s\n", deployer.Address())
		fmt.Fprintf(&b, "  network key:  %s\n", networkKey.Address())
		fmt.Fprintf(&b, "  contract:     %s\n", contract)
		b.WriteString(color.CyanString("→") + " Run " + color.YellowString("phantom serve") + " to start a node")
		s.FinalMSG = b.String()
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initMnemonic, "mnemonic", "", "restore from an existing BIP39 mnemonic")
	initCmd.Flags().BoolVar(&initWords24, "words24", false, "generate a 24-word mnemonic")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing keystore")
}
