// Package config loads hrdbd's runtime configuration from environment
// variables, with an optional YAML file overlay.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds everything hrdbd needs to serve load and query requests.
type Config struct {
	// HRDRoot is the root HRD document loaded once at server startup;
	// empty means no startup load. Load requests over HTTP always name
	// their own root and never fall back to this value.
	// Configurable via HRDBD_HRD_ROOT.
	HRDRoot string `yaml:"hrd_root"`

	// BIOSImage is the BIOS image file parsed for the "d" sub-table
	// alongside the startup load of HRDRoot. Load requests over HTTP
	// never fall back to this value.
	// Configurable via HRDBD_BIOS_IMAGE.
	BIOSImage string `yaml:"bios_image"`

	// DataDir is where hrdbd stores its session-history database.
	// Configurable via HRDBD_DATA_DIR. Default: ~/.local/share/hrdbd
	DataDir string `yaml:"data_dir"`

	// Address is the HTTP listen address. Configurable via
	// HRDBD_ADDRESS.
	Address string `yaml:"address"`
}

// New builds a Config from environment variables, optionally overlaid by
// a YAML file named by HRDBD_CONFIG_FILE.
func New() (*Config, error) {
	cfg := &Config{
		HRDRoot:   os.Getenv("HRDBD_HRD_ROOT"),
		BIOSImage: os.Getenv("HRDBD_BIOS_IMAGE"),
		DataDir:   getDataDir(),
		Address:   getAddress(),
	}

	if path := os.Getenv("HRDBD_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// loadFile overlays non-empty fields from a YAML file onto cfg. Fields
// set from the environment take precedence over the file: HRDRoot and
// BIOSImage are only filled while still empty, and DataDir and Address
// replace their built-in defaults unless the matching environment
// variable is set.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return err
	}

	if c.HRDRoot == "" {
		c.HRDRoot = fileCfg.HRDRoot
	}
	if c.BIOSImage == "" {
		c.BIOSImage = fileCfg.BIOSImage
	}
	if fileCfg.DataDir != "" && os.Getenv("HRDBD_DATA_DIR") == "" {
		c.DataDir = fileCfg.DataDir
	}
	if fileCfg.Address != "" && os.Getenv("HRDBD_ADDRESS") == "" {
		c.Address = fileCfg.Address
	}

	return nil
}

// getDataDir returns the session-history database directory, preferring
// HRDBD_DATA_DIR over the user's home directory.
func getDataDir() string {
	if dir := os.Getenv("HRDBD_DATA_DIR"); dir != "" {
		return dir
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "hrdbd")
	}

	return filepath.Join(".", "data")
}

// getAddress returns the HTTP listen address, preferring HRDBD_ADDRESS.
func getAddress() string {
	if addr := os.Getenv("HRDBD_ADDRESS"); addr != "" {
		return addr
	}

	return "0.0.0.0:7878"
}
