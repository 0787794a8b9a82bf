package plonk

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
)

// Config expresses the process-wide knobs of the library.
type Config struct {
	// MemoryBudget caps the estimated bytes pinned by live handles. Zero
	// disables the cap.
	MemoryBudget int64 `json:"memory_budget"`

	// Logger receives library diagnostics. Nil binds to slog.Default().
	Logger *slog.Logger `json:"-"`

	// GnarkLogs forwards gnark's internal log output to Logger. When false
	// gnark logging is disabled.
	GnarkLogs bool `json:"gnark_logs"`

	// DefaultCurve names the curve configuration tools use when none is
	// given, for example "BN254".
	DefaultCurve string `json:"default_curve"`
}

// Validate performs basic sanity checks on c.
func (c Config) Validate() error {
	if c.MemoryBudget < 0 {
		return errors.New("memory_budget must not be negative")
	}
	return nil
}

// ParseConfig decodes a JSON configuration. Unknown keys are rejected so a
// misspelt knob does not silently fall back to its default.
func ParseConfig(data []byte) (*Config, error) {
	const op = "plonk.ParseConfig"
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, Wrap(op, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, Wrap(op, err)
	}
	return &cfg, nil
}

// LoadConfig reads the JSON configuration stored at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- caller chooses the configuration path
	if err != nil {
		return nil, Wrap("plonk.LoadConfig", err)
	}
	return ParseConfig(data)
}
