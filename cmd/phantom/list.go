package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
	"github.com/phantomarchive/libphantom-go/archive"
)

const (
	payloadPreview = 32
	handlePreview  = 22
	timeLayout     = "2006-01-02 15:04:05"
)

var listUser string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the records of an account",
	Long: `Lists the records of --user, or of your own account when --user is not set.
Payloads and sealed addresses are shown truncated; listing needs no key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup := startSpinner("Reading archive...")
		defer cleanup()

		var user addrcrypt.Address
		if listUser != "" {
			a, err := addrcrypt.ParseAddress(listUser)
			if err != nil {
				return fail(s, "Invalid --user address", err)
			}
			user = a
		} else {
			owner, err := ownerAccount()
			if err != nil {
				return fail(s, "Failed to open your account", err)
			}
			user = owner.Address()
		}

		node, err := dialNode(nil)
		if err != nil {
			return fail(s, "No node to talk to", err)
		}
		if err := checkContract(cmd.Context(), node); err != nil {
			return fail(s, "Archive mismatch", err)
		}

		entries, err := archive.List(cmd.Context(), node, user)
		if err != nil {
			return fail(s, "Failed to read the archive", err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%s %d file(s) for %s\n", color.GreenString("✓"), len(entries), color.YellowString(user.String()))
		for _, e := range entries {
			fmt.Fprintf(&b, "  %s %s\n", color.CyanString("#%d", e.Index), e.Name)
			fmt.Fprintf(&b, "      created:        %s\n", e.Time().Format(timeLayout))
			fmt.Fprintf(&b, "      payload:        %s\n", truncate(e.EncryptedPayload, payloadPreview))
			fmt.Fprintf(&b, "      sealed address: %s\n", truncate(e.SealedAddress.String(), handlePreview))
		}
		s.FinalMSG = b.String()
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listUser, "user", "", "account address to list (default: your account)")
}
