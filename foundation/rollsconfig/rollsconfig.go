// Package rollsconfig reads the settings the gateway needs out of a full
// node's config.yaml: where the node's RPC server listens and which
// certificates authenticate a local RPC client.
package rollsconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the node configuration file relative to the root path.
const FileName = "config/config.yaml"

// Config is the subset of the node configuration used by the gateway.
type Config struct {
	SelfHostname string `yaml:"self_hostname"`
	PrivateSSLCA struct {
		Crt string `yaml:"crt"`
		Key string `yaml:"key"`
	} `yaml:"private_ssl_ca"`
	DaemonSSL struct {
		PrivateCrt string `yaml:"private_crt"`
		PrivateKey string `yaml:"private_key"`
	} `yaml:"daemon_ssl"`
	FullNode struct {
		RPCPort int `yaml:"rpc_port"`
	} `yaml:"full_node"`

	root string
}

// Load reads the config.yaml found under the node root path.
func Load(root string) (Config, error) {
	root, err := ExpandRoot(root)
	if err != nil {
		return Config{}, err
	}

	f, err := os.Open(filepath.Join(root, FileName))
	if err != nil {
		return Config{}, fmt.Errorf("opening node config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding node config: %w", err)
	}
	cfg.root = root

	if cfg.SelfHostname == "" {
		return Config{}, fmt.Errorf("node config: self_hostname missing")
	}
	if cfg.FullNode.RPCPort == 0 {
		return Config{}, fmt.Errorf("node config: full_node.rpc_port missing")
	}

	return cfg, nil
}

// Root returns the expanded root path the config was loaded from.
func (c Config) Root() string {
	return c.root
}

// CACertPath returns the private CA certificate path.
func (c Config) CACertPath() string {
	return c.fromRoot(c.PrivateSSLCA.Crt)
}

// CertPath returns the client certificate path used for RPC calls.
func (c Config) CertPath() string {
	return c.fromRoot(c.DaemonSSL.PrivateCrt)
}

// KeyPath returns the client key path used for RPC calls.
func (c Config) KeyPath() string {
	return c.fromRoot(c.DaemonSSL.PrivateKey)
}

func (c Config) fromRoot(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.root, path)
}

// ExpandRoot resolves a leading ~ in the root path.
func ExpandRoot(root string) (string, error) {
	if root != "~" && !strings.HasPrefix(root, "~/") {
		return root, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(root, "~")), nil
}
