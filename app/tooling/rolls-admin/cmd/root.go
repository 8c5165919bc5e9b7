// Package cmd contains the rolls-admin commands.
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	url    string
	prefix string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8000", "Url of the gateway.")
	rootCmd.PersistentFlags().StringVarP(&prefix, "prefix", "x", "rol", "Address prefix.")
}

var rootCmd = &cobra.Command{
	Use:          "rolls-admin",
	Short:        "Admin tooling for the rolls gateway",
	SilenceUsage: true,
}

// Execute runs the command named on the command line.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var client = http.Client{Timeout: 30 * time.Second}

// call sends the request to the gateway and writes the indented JSON answer
// to out. Non 2xx answers are returned as errors carrying the body.
func call(out io.Writer, method string, path string, body []byte) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, strings.TrimSuffix(url, "/")+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	var b bytes.Buffer
	if err := json.Indent(&b, data, "", "  "); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	b.WriteByte('\n')

	_, err = out.Write(b.Bytes())
	return err
}
