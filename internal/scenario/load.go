package scenario

import (
	"os"

	"deliverysim/internal/agentenv"
)

// Load decodes and validates a scenario file from path in one step, the
// shape a CLI entry point or the HTTP episode-create handler wants.
func Load(path string) (agentenv.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return agentenv.Config{}, &ValidationError{Field: "", Reason: err.Error()}
	}
	raw, err := Decode(data)
	if err != nil {
		return agentenv.Config{}, err
	}
	return Validate(raw)
}
