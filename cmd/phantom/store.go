package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/phantomarchive/libphantom-go/archive"
)

var (
	storeName string
	storeHash string
	storeFile string
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Encrypt and store a file reference",
	Long: `Generates a fresh address key, encrypts the content hash under it, seals the key
to the node's network key and appends the record to your archive.

With --file the bytes are put in the local content store and its CIDv1 is used
as the hash.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup := startSpinner("Encrypting and sealing...")
		defer cleanup()

		if (storeHash == "") == (storeFile == "") {
			return fail(s, "Pass exactly one of --hash or --file", nil)
		}

		hash := storeHash
		name := storeName
		if storeFile != "" {
			data, err := os.ReadFile(storeFile)
			if err != nil {
				return fail(s, "Failed to read "+storeFile, err)
			}
			content, err := contentStore()
			if err != nil {
				return fail(s, "Failed to open the content store", err)
			}
			c, err := content.Put(data)
			if err != nil {
				return fail(s, "Failed to store file content", err)
			}
			hash = c.String()
			if name == "" {
				name = filepath.Base(storeFile)
			}
		}
		if strings.TrimSpace(name) == "" {
			return fail(s, "A file name is required (--name)", nil)
		}

		owner, err := ownerAccount()
		if err != nil {
			return fail(s, "Failed to open your account", err)
		}
		node, err := dialNode(owner)
		if err != nil {
			return fail(s, "No node to talk to", err)
		}
		if err := checkContract(cmd.Context(), node); err != nil {
			return fail(s, "Archive mismatch", err)
		}

		client, err := archive.New(node, node, owner, archive.WithLogger(log))
		if err != nil {
			return fail(s, "Failed to set up the archive client", err)
		}
		stored, err := client.StoreFile(cmd.Context(), name, hash)
		if err != nil {
			if errors.Is(err, archive.ErrEmptyHash) {
				return fail(s, "The content hash is empty", err)
			}
			return fail(s, "Failed to store the record", err)
		}

		var b strings.Builder
		b.WriteString(color.GreenString("✓") + " Stored " + color.YellowString(name) +
			fmt.Sprintf(" at index %d\n", stored.Index))
		fmt.Fprintf(&b, "  hash:           %s\n", hash)
		fmt.Fprintf(&b, "  address key:    %s\n", stored.AddressKey)
		fmt.Fprintf(&b, "  sealed address: %s\n", stored.Handle)
		b.WriteString(color.CyanString("→") + " Keep the address key to decrypt the payload without the oracle")
		s.FinalMSG = b.String()
		return nil
	},
}

func init() {
	storeCmd.Flags().StringVar(&storeName, "name", "", "file name to record")
	storeCmd.Flags().StringVar(&storeHash, "hash", "", "content hash (IPFS CID) to encrypt")
	storeCmd.Flags().StringVar(&storeFile, "file", "", "store this file locally and record its CID")
}
