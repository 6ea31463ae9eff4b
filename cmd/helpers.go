package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/credit-cli/internal/config"
	"github.com/sells-group/credit-cli/internal/scoring"
	"github.com/sells-group/credit-cli/internal/store"
	"github.com/sells-group/credit-cli/pkg/backend"
)

// newBackendClient validates the backend settings and builds a client.
func newBackendClient(c *config.Config) (backend.Client, error) {
	if err := c.Validate("backend"); err != nil {
		return nil, err
	}
	opts := []backend.Option{}
	if c.Backend.TimeoutSecs > 0 {
		opts = append(opts, backend.WithTimeout(time.Duration(c.Backend.TimeoutSecs)*time.Second))
	}
	return backend.NewClient(c.Backend.BaseURL, opts...), nil
}

// loadPolicies builds the classification policies from config.
func loadPolicies(c *config.Config) (scoring.Policies, error) {
	return scoring.NewPolicies(c.Scoring)
}

// openStore opens the configured store. It returns nil when persistence is
// disabled.
func openStore(ctx context.Context, c *config.Config) (store.Store, error) {
	if !c.StoreEnabled() {
		return nil, nil
	}
	return store.Open(ctx, c.Store)
}

// readInput reads path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, eris.Wrap(err, "read stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	return data, nil
}

// decodeFile decodes a JSON or YAML file into v. The format follows the
// extension; stdin and unknown extensions are parsed as YAML, which also
// accepts JSON.
func decodeFile(path string, v any) error {
	data, err := readInput(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, v); err != nil {
			return eris.Wrapf(err, "parse %s", path)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return eris.Wrapf(err, "parse %s", path)
	}
	return nil
}

// openOutput returns stdout for an empty path, otherwise a created file.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "create %s", path)
	}
	return f, f.Close, nil
}

// writeStructured writes v as indented JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return eris.Errorf("unsupported format %q", format)
	}
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return eris.Errorf("--format must be one of %s (got %q)", strings.Join(allowed, ", "), format)
}
