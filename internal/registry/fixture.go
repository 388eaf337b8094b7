package registry

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// LoadArgsFromFile reads a JSON object of tool arguments from the given path.
func LoadArgsFromFile(path string) (Args, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read args file")
	}
	return ParseArgs(data)
}

// ParseArgs decodes a JSON object of tool arguments. Empty input yields empty
// args.
func ParseArgs(data []byte) (Args, error) {
	args := Args{}
	if len(data) == 0 {
		return args, nil
	}
	if err := json.Unmarshal(data, &args); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal args")
	}
	return args, nil
}
