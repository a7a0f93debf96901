package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// PlanCmd prints the composed build specs without building anything.
type PlanCmd struct {
	Format string `help:"output format" default:"yaml" enum:"yaml,json"`

	out io.Writer
}

func (c *PlanCmd) Run(ctx context.Context, globals *Globals) error {
	_, specs, err := assemble(globals)
	if err != nil {
		return err
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}

	switch c.Format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(specs)
	default:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(specs); err != nil {
			return fmt.Errorf("failed to encode plan: %w", err)
		}
		return enc.Close()
	}
}
