package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kpane/banktally/internal/identity"
	"github.com/kpane/banktally/internal/localstore"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Identity  string
	StateFile string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("BANKTALLY_SERVER", "http://localhost:8080"),
		Identity:  os.Getenv("BANKTALLY_IDENTITY"),
		StateFile: getEnvOrDefault("BANKTALLY_STATE_FILE", defaultStateFile()),
		Output:    "text",
		Verbose:   false,
	}
}

// LoadIdentity resolves the device identity. Unless overridden by flag or
// env, it is read from (or minted into) the CLI's local state file, so
// repeated invocations act as the same participant.
func (c *Config) LoadIdentity() error {
	if c.Identity != "" {
		return nil
	}

	store, err := localstore.NewFileStore(c.StateFile)
	if err != nil {
		return fmt.Errorf("opening state file: %w", err)
	}

	id, err := identity.NewProvider(store).GetOrCreate()
	if err != nil {
		return err
	}

	c.Identity = string(id)
	return nil
}

func defaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".banktally/state.json"
	}
	return filepath.Join(home, ".banktally", "state.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
