package eventdata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionKeepsOrderAndReplaces(t *testing.T) {
	c := NewCollection().
		Add("order", EntityType{Entity: "order"}).
		Add("esdSerials", ScalarValueType{Type: TypeString}).
		Add("esdSerials", ArrayType{Of: ScalarValueType{Type: TypeString}})

	fields := c.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "order", fields[0].Name)
	assert.Equal(t, ArrayType{Of: ScalarValueType{Type: TypeString}}, fields[1].Type)

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestCollectionJSON(t *testing.T) {
	c := NewCollection().
		Add("order", EntityType{Entity: "order"}).
		Add("esdSerials", ArrayType{Of: ScalarValueType{Type: TypeString}})

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"order": {"type": "entity", "entityName": "order"},
		"esdSerials": {"type": "array", "of": {"type": "string"}}
	}`, string(raw))
}
