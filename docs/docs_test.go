package docs_test

import (
	"encoding/json"
	"testing"

	"github.com/SanekxArcs/vdg-app-demo-sub000/docs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestReadDoc(t *testing.T) {
	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc), "template must render valid JSON")
	assert.Equal(t, "2.0", doc["swagger"])
	assert.Equal(t, "localhost:8080", doc["host"])

	definitions := doc["definitions"].(map[string]interface{})
	for _, name := range []string{"domain.MaterialDTO", "domain.ProjectWithDetailsDTO", "domain.FinanceSummaryDTO", "domain.APIError"} {
		assert.Contains(t, definitions, name)
	}

	cost := definitions["domain.AddAdditionalCostRequest"].(map[string]interface{})
	assert.Equal(t, []interface{}{"description"}, cost["required"], "amount may be negative")
}

func TestHostOverride(t *testing.T) {
	original := docs.SwaggerInfo.Host
	t.Cleanup(func() { docs.SwaggerInfo.Host = original })

	docs.SwaggerInfo.Host = "api.example.test"
	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)
	assert.Contains(t, raw, `"host": "api.example.test"`)
}
