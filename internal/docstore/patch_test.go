package docstore_test

import (
	"testing"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectDoc() docstore.Document {
	return docstore.Document{
		"_id":   "p1",
		"_type": "project",
		"additionalCosts": []any{
			map[string]any{"_key": "a", "description": "transport", "amount": 50.0},
			map[string]any{"_key": "b", "description": "crane", "amount": 120.0},
		},
		"totalBudget": 170.0,
	}
}

func TestPatch_SetIfMissingThenAppend(t *testing.T) {
	doc := docstore.Document{"_id": "p1", "_type": "project"}

	patch := docstore.NewPatch("p1").
		SetIfMissing(map[string]any{"additionalCosts": []any{}}).
		Append("additionalCosts", map[string]any{"description": "fuel", "amount": 30.0}).
		Set(map[string]any{"totalBudget": 30.0})

	out, err := patch.Apply(doc)
	require.NoError(t, err)

	costs, ok := out["additionalCosts"].([]any)
	require.True(t, ok)
	require.Len(t, costs, 1)
	item := costs[0].(map[string]any)
	assert.Equal(t, "fuel", item["description"])
	assert.NotEmpty(t, item["_key"], "appended items get a key")
	assert.Equal(t, 30.0, out["totalBudget"])
}

func TestPatch_SetIfMissingKeepsExistingValue(t *testing.T) {
	out, err := docstore.NewPatch("p1").
		SetIfMissing(map[string]any{"additionalCosts": []any{}}).
		Apply(projectDoc())
	require.NoError(t, err)
	assert.Len(t, out["additionalCosts"], 2)
}

func TestPatch_UnsetByKey(t *testing.T) {
	original := projectDoc()

	out, err := docstore.NewPatch("p1").
		Unset(docstore.KeyPath("additionalCosts", "a")).
		Set(map[string]any{"totalBudget": 120.0}).
		Apply(original)
	require.NoError(t, err)

	costs := out["additionalCosts"].([]any)
	require.Len(t, costs, 1)
	assert.Equal(t, "b", costs[0].(map[string]any)["_key"])
	assert.Equal(t, 120.0, out["totalBudget"])

	assert.Len(t, original["additionalCosts"], 2, "apply must not modify its input")
	assert.Equal(t, 170.0, original["totalBudget"])
}

func TestPatch_KeysWithQuotesAndBackslashes(t *testing.T) {
	for _, key := range []string{`say "hi"`, `C:\temp`, `"`, `\`} {
		t.Run(key, func(t *testing.T) {
			doc := docstore.Document{
				"_id":   "p1",
				"_type": "project",
				"timeline": []any{
					map[string]any{"_key": key, "comment": "imported"},
					map[string]any{"_key": "plain", "comment": "kept"},
				},
			}

			out, err := docstore.NewPatch("p1").Unset(docstore.KeyPath("timeline", key)).Apply(doc)
			require.NoError(t, err)
			timeline := out["timeline"].([]any)
			require.Len(t, timeline, 1)
			assert.Equal(t, "plain", timeline[0].(map[string]any)["_key"])
		})
	}
}

func TestPatch_UnsetMissingKeyIsNoop(t *testing.T) {
	out, err := docstore.NewPatch("p1").
		Unset(docstore.KeyPath("additionalCosts", "zzz")).
		Apply(projectDoc())
	require.NoError(t, err)
	assert.Len(t, out["additionalCosts"], 2)
}

func TestPatch_SetKeyedMember(t *testing.T) {
	out, err := docstore.NewPatch("p1").
		Set(map[string]any{
			docstore.KeyPath("additionalCosts", "b"): map[string]any{"description": "crane", "amount": 200.0},
		}).
		Apply(projectDoc())
	require.NoError(t, err)

	costs := out["additionalCosts"].([]any)
	require.Len(t, costs, 2)
	second := costs[1].(map[string]any)
	assert.Equal(t, "b", second["_key"], "member keeps its key")
	assert.Equal(t, 200.0, second["amount"])
}

func TestPatch_Errors(t *testing.T) {
	tests := []struct {
		name  string
		patch *docstore.Patch
	}{
		{"append to missing field", docstore.NewPatch("p1").Append("usedMaterials", map[string]any{"quantity": 1.0})},
		{"append to non array", docstore.NewPatch("p1").Append("totalBudget", 1.0)},
		{"set system field", docstore.NewPatch("p1").Set(map[string]any{"_id": "other"})},
		{"unset system field", docstore.NewPatch("p1").Unset("_type")},
		{"unsupported path", docstore.NewPatch("p1").Unset("additionalCosts[0]")},
		{"unterminated key", docstore.NewPatch("p1").Unset(`additionalCosts[_key=="a\"]`)},
		{"empty key", docstore.NewPatch("p1").Unset(`additionalCosts[_key==""]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.patch.Apply(projectDoc())
			assert.ErrorIs(t, err, docstore.ErrInvalidPatch)
		})
	}
}

func TestPatch_NormalizesStructs(t *testing.T) {
	type cost struct {
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
	}

	out, err := docstore.NewPatch("p1").
		Append("additionalCosts", cost{Description: "permit", Amount: 15}).
		Apply(projectDoc())
	require.NoError(t, err)

	costs := out["additionalCosts"].([]any)
	require.Len(t, costs, 3)
	last := costs[2].(map[string]any)
	assert.Equal(t, "permit", last["description"])
	assert.Equal(t, 15.0, last["amount"])
}

func TestRefID(t *testing.T) {
	assert.Equal(t, "m1", docstore.RefID("m1"))
	assert.Equal(t, "m1", docstore.RefID(docstore.Reference("m1")))
	assert.Equal(t, "m1", docstore.RefID(map[string]any{"_id": "m1", "name": "Cement"}))
	assert.Equal(t, "", docstore.RefID(nil))
	assert.Equal(t, "", docstore.RefID(12.0))
}
