package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/pecanrolls/rolls-gateway/foundation/spendbundle"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <spend-bundle.json>",
	Short: "Submit a spend bundle read from a file.",
	Args:  cobra.ExactArgs(1),
	RunE:  sendRun,
}

var rpcCmd = &cobra.Command{
	Use:   "rpc <method> [params]",
	Short: "Call a full node RPC through the gateway.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  rpcRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(rpcCmd)
}

func sendRun(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	// Catch malformed bundles before they leave the machine.
	sb, err := spendbundle.Parse(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "spend bundle:", sb.Name().Hex())

	body, err := json.Marshal(struct {
		SpendBundle json.RawMessage `json:"spend_bundle"`
	}{
		SpendBundle: data,
	})
	if err != nil {
		return err
	}

	return call(cmd.OutOrStdout(), http.MethodPost, "/v1/sendtx", body)
}

func rpcRun(cmd *cobra.Command, args []string) error {
	params := json.RawMessage(`{}`)
	if len(args) == 2 {
		params = json.RawMessage(args[1])
		if !json.Valid(params) {
			return fmt.Errorf("params are not valid JSON")
		}
	}

	body, err := json.Marshal(struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}{
		Method: args[0],
		Params: params,
	})
	if err != nil {
		return err
	}

	return call(cmd.OutOrStdout(), http.MethodPost, "/v1/rolls_rpc", body)
}
