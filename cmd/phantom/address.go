package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the archive contract address",
	Long: `Prints the configured archive address. Without one it is discovered from the
_phantom TXT record when --domain is set, or asked from the node.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		contract, ok, err := expectedContract()
		if err != nil {
			return err
		}
		if !ok {
			c, err := dialNode(nil)
			if err != nil {
				return err
			}
			if contract, err = c.ContractAddress(cmd.Context()); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), contract.String())
		return nil
	},
}
