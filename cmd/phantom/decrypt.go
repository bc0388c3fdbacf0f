package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/phantomarchive/libphantom-go/archive"
	"github.com/phantomarchive/libphantom-go/storage"
)

var (
	decryptIndex int64
	decryptAll   bool
	decryptOut   string
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Recover stored hashes",
	Long: `Unseals the address key of a record through the node's decryption oracle and
decrypts the stored hash. Each record is authorized with its own one-time keypair
and signature.

With --out, each recovered hash that is a content ID is resolved from the local
content store or the node and written to the directory under the record name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup := startSpinner("Unsealing...")
		defer cleanup()

		if indexSet := decryptIndex >= 0; indexSet == decryptAll {
			return fail(s, "Pass exactly one of --index or --all", nil)
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

		var fetch func(d *archive.Decrypted) string
		if decryptOut != "" {
			content, err := contentStore()
			if err != nil {
				return fail(s, "Failed to open the content store", err)
			}
			if err := os.MkdirAll(decryptOut, 0700); err != nil {
				return fail(s, "Failed to create "+decryptOut, err)
			}
			resolver := storage.NewContentResolver(content, node.URL())
			fetch = func(d *archive.Decrypted) string {
				return fetchContent(cmd.Context(), resolver, d, decryptOut)
			}
		}

		if !decryptAll {
			d, err := client.DecryptEntry(cmd.Context(), uint64(decryptIndex))
			if err != nil {
				return fail(s, fmt.Sprintf("Failed to decrypt record %d", decryptIndex), err)
			}
			s.FinalMSG = formatDecrypted(d)
			if fetch != nil {
				s.FinalMSG += fetch(d)
			}
			return nil
		}

		results, err := client.DecryptAll(cmd.Context())
		if err != nil {
			return fail(s, "Failed to decrypt the archive", err)
		}
		var b strings.Builder
		failed := 0
		for i := range results {
			if results[i].Err != nil {
				failed++
			}
			b.WriteString(formatDecrypted(&results[i]))
			if fetch != nil && results[i].Err == nil {
				b.WriteString(fetch(&results[i]))
			}
		}
		fmt.Fprintf(&b, "%d of %d record(s) recovered", len(results)-failed, len(results))
		s.FinalMSG = b.String()
		if failed > 0 {
			return errReported
		}
		return nil
	},
}

// fetchContent resolves the CID in d.Hash and writes the bytes to dir under
// the base of d.Name. It returns a status line for the output.
func fetchContent(ctx context.Context, r *storage.ContentResolver, d *archive.Decrypted, dir string) string {
	c, err := storage.ParseContentID(d.Hash)
	if err != nil {
		return fmt.Sprintf("  %s hash is not a content id, nothing fetched\n", color.CyanString("→"))
	}
	name := filepath.Base(d.Name)
	if name == "." || name == string(filepath.Separator) {
		name = c.String()
	}
	data, err := r.Fetch(ctx, c)
	if err != nil {
		return fmt.Sprintf("  %s %s%s\n", color.RedString("✗"), color.RedString("Fetch failed: "), err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Sprintf("  %s %s%s\n", color.RedString("✗"), color.RedString("Write failed: "), err)
	}
	return fmt.Sprintf("  %s wrote %d bytes to %s\n", color.GreenString("✓"), len(data), path)
}

func formatDecrypted(d *archive.Decrypted) string {
	if d.Err != nil {
		return fmt.Sprintf("%s #%d %s\n  %s%s\n", color.RedString("✗"), d.Index, d.Name,
			color.RedString("Error: "), d.Err)
	}
	return fmt.Sprintf("%s #%d %s\n  hash:        %s\n  address key: %s\n  created:     %s\n",
		color.GreenString("✓"), d.Index, color.YellowString(d.Name), d.Hash, d.AddressKey, d.CreatedAt.Format(timeLayout))
}

func init() {
	decryptCmd.Flags().Int64Var(&decryptIndex, "index", -1, "record index to decrypt")
	decryptCmd.Flags().BoolVar(&decryptAll, "all", false, "decrypt every record")
	decryptCmd.Flags().StringVar(&decryptOut, "out", "", "fetch the content of recovered CIDs into this directory")
}
