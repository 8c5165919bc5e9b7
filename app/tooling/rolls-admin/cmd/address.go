package cmd

import (
	"fmt"

	"github.com/pecanrolls/rolls-gateway/foundation/address"
	"github.com/pecanrolls/rolls-gateway/foundation/chain"
	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Convert between addresses and puzzle hashes",
}

var encodeCmd = &cobra.Command{
	Use:   "encode <puzzle-hash>",
	Short: "Print the address for a hex puzzle hash",
	Args:  cobra.ExactArgs(1),
	RunE:  encodeRun,
}

var decodeCmd = &cobra.Command{
	Use:   "decode <address>",
	Short: "Print the puzzle hash held by an address",
	Args:  cobra.ExactArgs(1),
	RunE:  decodeRun,
}

func init() {
	rootCmd.AddCommand(addressCmd)
	addressCmd.AddCommand(encodeCmd)
	addressCmd.AddCommand(decodeCmd)
}

func encodeRun(cmd *cobra.Command, args []string) error {
	raw, err := chain.DecodeHex(args[0])
	if err != nil {
		return err
	}
	if len(raw) != address.HashLength {
		return fmt.Errorf("puzzle hash must be %d bytes, got %d", address.HashLength, len(raw))
	}

	var ph address.PuzzleHash
	copy(ph[:], raw)

	addr, err := address.New(prefix).Encode(ph)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), addr)
	return nil
}

func decodeRun(cmd *cobra.Command, args []string) error {
	hrp, ph, err := address.Decode(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), ph.Hex())
	if hrp != prefix {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: address prefix %q is not %q\n", hrp, prefix)
	}
	return nil
}
