package main

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/liveable/internal/result"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var outputFormat = formatJSON

func checkFormat() error {
	switch outputFormat {
	case formatJSON, formatYAML:
		return nil
	default:
		return eris.Errorf("unsupported output format %q (want json or yaml)", outputFormat)
	}
}

// render writes v with sorted keys, as indented JSON or as YAML.
func render(w io.Writer, format string, v any) error {
	raw, err := result.Canonical(v)
	if err != nil {
		return err
	}

	if format == formatYAML {
		var tree any
		if err := json.Unmarshal(raw, &tree); err != nil {
			return eris.Wrap(err, "output: decode for yaml")
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return eris.Wrap(err, "output: encode yaml")
		}
		return eris.Wrap(enc.Close(), "output: flush yaml")
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return eris.Wrap(err, "output: indent json")
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return eris.Wrap(err, "output: write")
}

func writeOutput(w io.Writer, v any) error {
	return render(w, outputFormat, v)
}
