package backend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_MarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Value
		want string
	}{
		{"42", `42`},
		{" 3.5 ", `3.5`},
		{"-1", `-1`},
		{"llp", `"llp"`},
		{"", `""`},
		{"NaN", `"NaN"`},
		{"12abc", `"12abc"`},
	}
	for _, tt := range tests {
		b, err := json.Marshal(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(b), "value %q", tt.in)
	}
}

func TestValue_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var v struct {
		A Value `json:"a"`
		B Value `json:"b"`
		C Value `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12.5, "b": "retail", "c": null}`), &v))
	assert.Equal(t, Value("12.5"), v.A)
	assert.Equal(t, Value("retail"), v.B)
	assert.Equal(t, Value(""), v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a": true}`), &v))
}
