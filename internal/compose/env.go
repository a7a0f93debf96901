package compose

import (
	"encoding/json"
	"slices"

	"github.com/wolfeidau/extbuild/internal/target"
)

// APIURLConstant is the identifier replaced with the API base URL at compile time.
const APIURLConstant = "process.env.API_URL"

// EnvConstant is a value embedded as a literal by the bundler's define step.
type EnvConstant struct {
	Name            string          `json:"name" yaml:"name"`
	Value           string          `json:"value" yaml:"value"`
	InjectedOnlyFor []target.Target `json:"injected_only_for" yaml:"injected_only_for"`
}

type envDefinition struct {
	name         string
	withheldFrom []target.Target
}

// Opera never receives the API URL. Whether that is policy or an unfinished
// feature is unknown, so the current behaviour is kept.
var envDefinitions = []envDefinition{
	{name: APIURLConstant, withheldFrom: []target.Target{target.Opera}},
}

// ComposeEnvConstants returns the constants to define for t. An empty
// runtimeValue means the value is absent and nothing is injected.
func ComposeEnvConstants(t target.Target, runtimeValue string) []EnvConstant {
	if runtimeValue == "" {
		return nil
	}

	var constants []EnvConstant
	for _, def := range envDefinitions {
		if slices.Contains(def.withheldFrom, t) {
			continue
		}
		// marshalling a string cannot fail
		value, _ := json.Marshal(runtimeValue)
		constants = append(constants, EnvConstant{
			Name:            def.name,
			Value:           string(value),
			InjectedOnlyFor: def.injectedFor(),
		})
	}
	return constants
}

func (d envDefinition) injectedFor() []target.Target {
	var out []target.Target
	for _, t := range target.All() {
		if !slices.Contains(d.withheldFrom, t) {
			out = append(out, t)
		}
	}
	return out
}

// Defines converts constants to the identifier to literal map esbuild expects.
func Defines(constants []EnvConstant) map[string]string {
	if len(constants) == 0 {
		return nil
	}
	defines := make(map[string]string, len(constants))
	for _, c := range constants {
		defines[c.Name] = c.Value
	}
	return defines
}
