package rollsconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pecanrolls/rolls-gateway/foundation/rollsconfig"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const nodeConfig = `
self_hostname: localhost
private_ssl_ca:
  crt: config/ssl/ca/private_ca.crt
  key: config/ssl/ca/private_ca.key
daemon_ssl:
  private_crt: config/ssl/daemon/private_daemon.crt
  private_key: /etc/rolls/private_daemon.key
full_node:
  rpc_port: 8555
  port: 8444
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "config"), 0o755); err != nil {
		t.Fatalf("\t%s\tShould be able to create the config folder: %v", failed, err)
	}
	if err := os.WriteFile(filepath.Join(root, rollsconfig.FileName), []byte(body), 0o600); err != nil {
		t.Fatalf("\t%s\tShould be able to write the config file: %v", failed, err)
	}

	return root
}

func TestLoad(t *testing.T) {
	t.Log("Given the need to read the node configuration.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling a complete config.yaml.", testID)
		{
			root := writeConfig(t, nodeConfig)

			cfg, err := rollsconfig.Load(root)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to load the config: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to load the config.", success, testID)

			if cfg.SelfHostname != "localhost" || cfg.FullNode.RPCPort != 8555 {
				t.Fatalf("\t%s\tTest %d:\tShould read host and port, got %s:%d", failed, testID, cfg.SelfHostname, cfg.FullNode.RPCPort)
			}
			t.Logf("\t%s\tTest %d:\tShould read host and port.", success, testID)

			if exp := filepath.Join(root, "config/ssl/ca/private_ca.crt"); cfg.CACertPath() != exp {
				t.Fatalf("\t%s\tTest %d:\tShould resolve the CA path from root, got %s", failed, testID, cfg.CACertPath())
			}
			if exp := "/etc/rolls/private_daemon.key"; cfg.KeyPath() != exp {
				t.Fatalf("\t%s\tTest %d:\tShould keep absolute paths, got %s", failed, testID, cfg.KeyPath())
			}
			t.Logf("\t%s\tTest %d:\tShould resolve certificate paths.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen handling a config without an rpc port.", testID)
		{
			root := writeConfig(t, "self_hostname: localhost\n")

			if _, err := rollsconfig.Load(root); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject the config.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the config.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the root path has no config.", testID)
		{
			if _, err := rollsconfig.Load(t.TempDir()); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould fail to load.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould fail to load.", success, testID)
		}
	}
}
