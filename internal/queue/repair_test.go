package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
	}{
		{"already valid", `[{"id":"a"}]`, true},
		{"trailing comma in array", `[{"id":"a"},]`, true},
		{"trailing comma in object", `[{"id":"a",}]`, true},
		{"missing array closer", `[{"id":"a"}`, true},
		{"missing object and array closers", `[{"id":"a"`, true},
		{"truncated mid string", `[{"id":"a`, true},
		{"brackets inside strings ignored", `[{"id":"a}]["`, true},
		{"hopeless garbage", `not json at all {{{`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repaired, ok := RepairJSON([]byte(tt.input))
			require.Equal(t, tt.wantOK, ok)
			if ok {
				require.True(t, json.Valid(repaired))
			}
		})
	}
}

func TestRepairJSON_TruncatedPrefixPreserved(t *testing.T) {
	// A document truncated mid-object must repair to something whose
	// well-formed prefix matches the original up to the truncation point
	input := `[{"id":"one","status":"queued"},{"id":"two","status":"downloa`

	repaired, ok := RepairJSON([]byte(input))
	require.True(t, ok)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(repaired, &items))
	require.Len(t, items, 2)
	require.Equal(t, "one", items[0]["id"])
	require.Equal(t, "queued", items[0]["status"])
	require.Equal(t, "two", items[1]["id"])
}

func TestParseOrRepair(t *testing.T) {
	type item struct {
		ID string `json:"id"`
	}

	t.Run("valid input parses strictly", func(t *testing.T) {
		got, ok := ParseOrRepair([]byte(`[{"id":"a"}]`), []item{})
		require.True(t, ok)
		require.Equal(t, []item{{ID: "a"}}, got)
	})

	t.Run("truncated input is repaired", func(t *testing.T) {
		got, ok := ParseOrRepair([]byte(`[{"id":"a"},{"id":"b"}`), []item{})
		require.True(t, ok)
		require.Len(t, got, 2)
	})

	t.Run("unrepairable input degrades to default", func(t *testing.T) {
		def := []item{{ID: "fallback"}}
		got, ok := ParseOrRepair([]byte(`}}}`), def)
		require.False(t, ok)
		require.Equal(t, def, got)
	})

	t.Run("repaired but wrong shape degrades to default", func(t *testing.T) {
		got, ok := ParseOrRepair([]byte(`{"not":"a list"`), []item{})
		require.False(t, ok)
		require.Empty(t, got)
	})
}
