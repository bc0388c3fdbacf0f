package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
	"github.com/phantomarchive/libphantom-go/config"
	"github.com/phantomarchive/libphantom-go/network"
	"github.com/phantomarchive/libphantom-go/storage"
	"github.com/phantomarchive/libphantom-go/wallet"
)

// options holds the global flags.
type options struct {
	dataDir  string
	network  string
	rpc      network.RPCConfig
	domain   string
	dnssec   bool
	password string
	account  uint32
	verbose  bool
}

var (
	opts options
	cfg  config.Config
	log  = logrus.New()
)

// errReported marks an error whose message was already shown to the user.
var errReported = errors.New("phantom: command failed")

func envKey(name string) string { return "PHANTOM_" + name }

// setup loads the config file and applies flag overrides.
func setup(cmd *cobra.Command, _ []string) error {
	dataDir := opts.dataDir
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}

	loaded, err := config.LoadConfig(config.ConfigPath(dataDir))
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return err
	}
	cfg = loaded
	if opts.dataDir != "" || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}

	flags := cmd.Flags()
	if flags.Changed("network") {
		cfg.Network = opts.network
	}
	if flags.Changed("listen") {
		cfg.ListenAddr = serveListen
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	return setupLogger(cfg)
}

func setupLogger(c config.Config) error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	switch {
	case c.LogFile != "":
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		log.SetOutput(f)
	case opts.verbose:
		log.SetOutput(os.Stderr)
	default:
		// Client commands report through the spinner; serve logs to stderr.
		log.SetOutput(io.Discard)
	}
	return nil
}

// startSpinner shows message until cleanup, which prints FinalMSG.
func startSpinner(message string) (*spinner.Spinner, func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	_ = s.Color("cyan")

	if !opts.verbose {
		s.Start()
	}

	cleanup := func() {
		finalMsg := s.FinalMSG
		s.FinalMSG = ""
		if !opts.verbose {
			s.Stop()
		}
		if finalMsg != "" {
			if !strings.HasSuffix(finalMsg, "\n") {
				finalMsg += "\n"
			}
			fmt.Print(finalMsg)
		}
	}
	return s, cleanup
}

// fail shows msg and err on the spinner and returns errReported.
func fail(s *spinner.Spinner, msg string, err error) error {
	log.WithError(err).Error(msg)
	final := color.RedString("✗") + " " + msg
	if err != nil {
		final += "\n" + color.RedString("Error: ") + err.Error()
	}
	s.FinalMSG = final
	return errReported
}

// contentStore opens the content store in the data directory.
func contentStore() (*storage.FileStore, error) {
	return storage.NewFileStore(filepath.Join(cfg.DataDir, "content"))
}

func keystorePath() string {
	return filepath.Join(cfg.DataDir, wallet.KeystoreFile)
}

func keystorePassword() (string, error) {
	if opts.password != "" {
		return opts.password, nil
	}
	if pw := os.Getenv(envKey("PASSWORD")); pw != "" {
		return pw, nil
	}
	return "", fmt.Errorf("keystore password required (--password or %s)", envKey("PASSWORD"))
}

func openWallet() (*wallet.Wallet, error) {
	pw, err := keystorePassword()
	if err != nil {
		return nil, err
	}
	seed, err := wallet.LoadKeystore(keystorePath(), pw)
	if err != nil {
		return nil, err
	}
	defer clear(seed)

	netCfg, err := wallet.GetNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}
	return wallet.NewWallet(seed, netCfg)
}

func ownerAccount() (*wallet.Account, error) {
	w, err := openWallet()
	if err != nil {
		return nil, err
	}
	return w.DeriveAccount(opts.account)
}

func resolver() network.DNSResolver {
	if opts.dnssec {
		return network.NewDNSSECResolver("")
	}
	return network.DefaultDNSResolver
}

func environment() map[string]string {
	env := make(map[string]string)
	for _, k := range []string{network.EnvRPCURL, network.EnvRPCUser, network.EnvRPCPass} {
		if v := os.Getenv(k); v != "" {
			env[k] = v
		}
	}
	return env
}

// rpcConfig picks the node: a DNS-discovered endpoint when --domain is set,
// otherwise flags, environment and config file over the network preset.
func rpcConfig() (*network.RPCConfig, error) {
	flags := opts.rpc
	if opts.domain != "" {
		endpoints, err := network.DiscoverEndpoints(opts.domain, resolver())
		if err != nil {
			return nil, err
		}
		log.WithField("endpoints", endpoints).Debug("discovered nodes")
		flags.URL = endpoints[0]
	}
	return network.ResolveConfig(&flags, environment(), &network.RPCConfig{URL: cfg.RPCURL}, cfg.Network)
}

func dialNode(signer *wallet.Account) (*network.Client, error) {
	rc, err := rpcConfig()
	if err != nil {
		return nil, err
	}
	log.WithField("url", rc.URL).Debug("using node")
	if signer == nil {
		return network.Dial(*rc, nil), nil
	}
	return network.Dial(*rc, signer), nil
}

// expectedContract returns the contract named by config or DNS, if any.
func expectedContract() (addrcrypt.Address, bool, error) {
	if cfg.Contract != "" {
		a, err := addrcrypt.ParseAddress(cfg.Contract)
		return a, err == nil, err
	}
	if opts.domain != "" {
		a, err := network.DiscoverContract(opts.domain, resolver())
		return a, err == nil, err
	}
	return addrcrypt.Address{}, false, nil
}

// checkContract fails when the node serves a different archive than expected.
func checkContract(ctx context.Context, c *network.Client) error {
	want, ok, err := expectedContract()
	if err != nil || !ok {
		return err
	}
	got, err := c.ContractAddress(ctx)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("node serves archive %s, expected %s", got, want)
	}
	return nil
}

// truncate shortens s to n characters followed by "...".
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
