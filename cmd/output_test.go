package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/liveable/internal/result"
)

func TestRender_JSONSortedAndIndented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, formatJSON, map[string]any{"zip_code": "94110", "city": "San Francisco"}))
	assert.Equal(t, "{\n  \"city\": \"San Francisco\",\n  \"zip_code\": \"94110\"\n}\n", buf.String())
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	env := result.FromError(result.New(result.KindInvalidZip, result.Details{"zip_code": "123"}), result.KindInternal, "geocode_zip")
	require.NoError(t, render(&buf, formatYAML, env))
	assert.Equal(t, "details:\n  tool: geocode_zip\n  zip_code: \"123\"\nerror: invalid_zip\nstatus: error\n", buf.String())
}

func TestCheckFormat(t *testing.T) {
	orig := outputFormat
	t.Cleanup(func() { outputFormat = orig })

	outputFormat = "yaml"
	assert.NoError(t, checkFormat())

	outputFormat = "xml"
	err := checkFormat()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}
