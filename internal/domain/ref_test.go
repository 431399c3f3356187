package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_UnmarshalShapes(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantID string
	}{
		{"bare id", `"p1"`, "p1"},
		{"reference object", `{"_type":"reference","_ref":"p1"}`, "p1"},
		{"dereferenced document", `{"_id":"p1","name":"Anna","share":0.5}`, "p1"},
		{"null", `null`, ""},
		{"empty object", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ref domain.Ref[domain.Partner]
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ref))
			assert.Equal(t, tt.wantID, ref.ID())
			assert.False(t, ref.IsResolved(), "decoded references are never resolved")
		})
	}

	var ref domain.Ref[domain.Partner]
	assert.Error(t, json.Unmarshal([]byte(`12`), &ref))
}

func TestRef_MarshalWritesReference(t *testing.T) {
	tx := domain.Transaction{Partner: domain.Resolved("p1", &domain.Partner{Name: "Anna"})}
	raw, err := json.Marshal(tx)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, map[string]any{"_type": "reference", "_ref": "p1"}, decoded["partner"])

	raw, err = json.Marshal(domain.Transaction{})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["partner"])
}

func TestRef_Resolve(t *testing.T) {
	anna := &domain.Partner{ID: "p1", Name: "Anna"}
	byID := map[string]*domain.Partner{"p1": anna}

	resolved := domain.Unresolved[domain.Partner]("p1").Resolve(byID)
	got, ok := resolved.Get()
	require.True(t, ok)
	assert.Equal(t, "Anna", got.Name)

	dangling := domain.Unresolved[domain.Partner]("deleted").Resolve(byID)
	assert.False(t, dangling.IsResolved())
	assert.Equal(t, "deleted", dangling.ID())

	empty := domain.Ref[domain.Partner]{}.Resolve(byID)
	assert.True(t, empty.IsZero())
}

func TestMaterial_EffectivePieces(t *testing.T) {
	assert.Equal(t, 1.0, (&domain.Material{Pieces: 0}).EffectivePieces())
	assert.Equal(t, 1.0, (&domain.Material{Pieces: 0.5}).EffectivePieces())
	assert.Equal(t, 5.0, (&domain.Material{Pieces: 5}).EffectivePieces())
}
