package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
)

var (
	cryptAddress string
	cryptText    string
	cryptPayload string
)

var cryptCmd = &cobra.Command{
	Use:   "crypt",
	Short: "Encrypt or decrypt text under an address directly",
	Long: `Runs the payload cipher without the ledger: the key is SHA-256 of the 20 address
bytes, and payloads are base64(nonce):base64(ciphertext||tag).`,
}

var cryptEncryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt --text under --address",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := addrcrypt.Encrypt(cryptAddress, cryptText)
		if err != nil {
			return describeCryptError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), payload)
		return nil
	},
}

var cryptDecryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt --payload under --address",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := addrcrypt.Decrypt(cryptAddress, cryptPayload)
		if err != nil {
			return describeCryptError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func describeCryptError(err error) error {
	switch {
	case errors.Is(err, addrcrypt.ErrInvalidAddress):
		return fmt.Errorf("%w (expected 40 hex digits, optional 0x prefix)", err)
	case errors.Is(err, addrcrypt.ErrMalformedPayload):
		return fmt.Errorf("%w (expected base64(nonce):base64(ciphertext))", err)
	case errors.Is(err, addrcrypt.ErrAuthenticationFailure):
		return fmt.Errorf("%w (wrong address or tampered payload)", err)
	default:
		return err
	}
}

func init() {
	cryptCmd.PersistentFlags().StringVar(&cryptAddress, "address", "", "address whose hash is the key")
	cryptEncryptCmd.Flags().StringVar(&cryptText, "text", "", "text to encrypt")
	cryptDecryptCmd.Flags().StringVar(&cryptPayload, "payload", "", "payload to decrypt")
	_ = cryptCmd.MarkPersistentFlagRequired("address")
	_ = cryptDecryptCmd.MarkFlagRequired("payload")

	cryptCmd.AddCommand(cryptEncryptCmd)
	cryptCmd.AddCommand(cryptDecryptCmd)
}
