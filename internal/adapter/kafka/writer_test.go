package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florahub/ecocrop-etl/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	doc := domain.DocumentChunk{
		EcoPortCode:    1001,
		ScientificName: "Zea mays",
		Text:           "**Zea mays** — Adaptability: **High** (score: 0.9)",
	}

	msg, err := serializeToMessage(doc, "run-test-1")
	require.NoError(t, err)

	assert.Equal(t, []byte("1001"), msg.Key)
	assert.Contains(t, string(msg.Value), `"eco_port_code":1001`)
	assert.Contains(t, string(msg.Value), `"scientific_name":"Zea mays"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "scientific_name", msg.Headers[0].Key)
	assert.Equal(t, []byte("Zea mays"), msg.Headers[0].Value)
	assert.Equal(t, "run_id", msg.Headers[1].Key)
	assert.Equal(t, []byte("run-test-1"), msg.Headers[1].Value)
}
