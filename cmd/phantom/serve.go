package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
	"github.com/phantomarchive/libphantom-go/ledger"
	"github.com/phantomarchive/libphantom-go/network"
	"github.com/phantomarchive/libphantom-go/sealing"
	"github.com/phantomarchive/libphantom-go/wallet"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a node serving the ledger and the decryption oracle",
	Long: `Opens the ledger and sealing databases in the data directory and serves the
archive over JSON-RPC, together with the local content store. The network key and
the contract address are derived from the keystore.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.LogFile == "" {
			log.SetOutput(os.Stderr)
		}

		w, err := openWallet()
		if err != nil {
			return err
		}
		srv, contract, closeNode, err := openNode(w)
		if err != nil {
			return err
		}
		defer closeNode()

		fmt.Println(color.GreenString("✓") + " Serving archive " + color.YellowString(contract.String()) +
			" on " + color.CyanString("http://"+cfg.ListenAddr))
		fmt.Printf("  network: %s (chain id %d)\n", w.Network().Name, w.Network().ChainID)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx, cfg.ListenAddr)
	},
}

// openNode opens the node databases in the data directory and builds the
// server for the archive deployed by w. closeNode releases the databases.
func openNode(w *wallet.Wallet) (srv *network.Server, contract addrcrypt.Address, closeNode func(), err error) {
	deployer, err := w.DeriveAccount(0)
	if err != nil {
		return nil, contract, nil, err
	}
	networkKey, err := w.DeriveNetworkKey()
	if err != nil {
		return nil, contract, nil, err
	}

	contract = ledger.ContractAddress(deployer.Address())
	if cfg.Contract != "" {
		configured, err := addrcrypt.ParseAddress(cfg.Contract)
		if err != nil {
			return nil, contract, nil, err
		}
		if configured != contract {
			return nil, contract, nil, fmt.Errorf("keystore deploys %s but the configuration names %s", contract, configured)
		}
	}

	sealStore, err := sealing.OpenBoltStore(filepath.Join(cfg.DataDir, "sealing.db"))
	if err != nil {
		return nil, contract, nil, err
	}
	backend, err := ledger.OpenBoltBackend(filepath.Join(cfg.DataDir, "ledger.db"))
	if err != nil {
		_ = sealStore.Close()
		return nil, contract, nil, err
	}
	release := func() {
		_ = backend.Close()
		_ = sealStore.Close()
	}
	defer func() {
		if err != nil {
			release()
		}
	}()

	content, err := contentStore()
	if err != nil {
		return nil, contract, nil, err
	}
	cop, err := sealing.NewCoprocessor(networkKey.PrivateKey(), sealStore, w.Network().ChainID, sealing.WithLogger(log))
	if err != nil {
		return nil, contract, nil, err
	}
	archive, err := ledger.New(contract, backend, cop, ledger.WithLogger(log))
	if err != nil {
		return nil, contract, nil, err
	}

	srvOpts := []network.ServerOption{network.WithContentStore(content), network.WithServerLogger(log)}
	if opts.rpc.User != "" {
		srvOpts = append(srvOpts, network.WithBasicAuth(opts.rpc.User, opts.rpc.Password))
	}
	srv, err = network.NewServer(archive, cop, srvOpts...)
	if err != nil {
		return nil, contract, nil, err
	}
	return srv, contract, release, nil
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default from config, 127.0.0.1:8545)")
}
