package block

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSolidity(t *testing.T) {
	nonSolid := []ID{AirID, WaterID, LeavesID}
	for _, id := range nonSolid {
		assert.False(t, IsSolid(id), "%s не должен быть твёрдым", id)
	}

	solid := []ID{GrassID, DirtID, StoneID, WoodID, SandID, PlanksID, CoalOreID, IronOreID}
	for _, id := range solid {
		assert.True(t, IsSolid(id), "%s должен быть твёрдым", id)
	}

	assert.False(t, IsSolid(ID(9999)), "Неизвестный ID считается проходимым")
}

func TestHardnessAndPlaceable(t *testing.T) {
	assert.Greater(t, Hardness(StoneID), Hardness(DirtID), "Камень твёрже земли")
	assert.Greater(t, Hardness(IronOreID), Hardness(StoneID), "Руда твёрже камня")

	assert.True(t, IsPlaceable(WoodID))
	assert.False(t, IsPlaceable(StickID), "Палку нельзя поставить в мир")
	assert.False(t, IsPlaceable(AirID))
}

func TestParseName(t *testing.T) {
	id, ok := ParseName(" Coal_Ore ")
	require.True(t, ok)
	assert.Equal(t, CoalOreID, id)

	_, ok = ParseName("bedrock")
	assert.False(t, ok)

	for _, id := range All() {
		parsed, ok := ParseName(id.String())
		require.True(t, ok, "имя %s должно разбираться", id)
		assert.Equal(t, id, parsed)
	}
}

func TestTextMapKeys(t *testing.T) {
	var fromYAML map[ID]int
	require.NoError(t, yaml.Unmarshal([]byte("wood: 1\nplanks: 4\n"), &fromYAML))
	assert.Equal(t, map[ID]int{WoodID: 1, PlanksID: 4}, fromYAML)

	data, err := json.Marshal(map[ID]int{StickID: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"stick":2}`, string(data))

	var bad map[ID]int
	assert.Error(t, yaml.Unmarshal([]byte("diamond: 1\n"), &bad))
}
