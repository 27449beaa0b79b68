package parser

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "bare json", input: `{"data":{"result":{"x":1}}}`},
		{name: "jsonp callback", input: `mtopjsonp1({"data":{"result":{"x":1}}})`},
		{name: "jsonp with semicolon and whitespace", input: "  mtopjsonp12( {\"data\":{\"result\":{\"x\":1}}} );\n"},
		{name: "dotted callback", input: `window.cb_1({"data":{"result":{"x":1}}})`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := UnwrapObject(tt.input)
			require.NoError(t, err)

			data := v["data"].(map[string]interface{})
			result := data["result"].(map[string]interface{})
			assert.Equal(t, json.Number("1"), result["x"])
		})
	}
}

func TestUnwrap_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: "   "},
		{name: "html", input: "<html><body>blocked</body></html>"},
		{name: "callback inside other text", input: `var x = 1; cb({"a":1})`},
		{name: "broken json inside callback", input: `cb({"a":)`},
		{name: "trailing garbage", input: `{"a":1} trailing`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unwrap(tt.input)
			require.Error(t, err)

			var perr *ParseError
			assert.True(t, errors.As(err, &perr))
		})
	}
}

func TestUnwrap_KeepsDecimalPrecision(t *testing.T) {
	v, err := UnwrapObject(`cb({"value":22.64})`)
	require.NoError(t, err)
	assert.Equal(t, json.Number("22.64"), v["value"])
}

func TestUnwrapObject_RejectsArray(t *testing.T) {
	_, err := UnwrapObject(`[1,2]`)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
}
