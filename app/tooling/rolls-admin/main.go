// This program provides admin support for the gateway: address conversion
// and querying a running gateway.
package main

import "github.com/pecanrolls/rolls-gateway/app/tooling/rolls-admin/cmd"

func main() {
	cmd.Execute()
}
