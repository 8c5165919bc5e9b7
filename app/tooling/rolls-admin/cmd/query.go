package cmd

import (
	"net/http"
	neturl "net/url"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "Print the balance of an address.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.OutOrStdout(), http.MethodGet, "/v1/balance?address="+neturl.QueryEscape(args[0]), nil)
	},
}

var utxosCmd = &cobra.Command{
	Use:   "utxos <address>",
	Short: "Print the unspent coins of an address.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.OutOrStdout(), http.MethodGet, "/v1/utxos?address="+neturl.QueryEscape(args[0]), nil)
	},
}

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Print the token catalog.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.OutOrStdout(), http.MethodGet, "/v1/tokens", nil)
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(utxosCmd)
	rootCmd.AddCommand(tokensCmd)
}
