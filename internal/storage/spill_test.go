package storage

import (
	"os"
	"testing"

	"github.com/annel0/blockverse/internal/vec"
	"github.com/annel0/blockverse/internal/world"
	"github.com/annel0/blockverse/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSpill(t *testing.T) *SpillStore {
	t.Helper()
	ss, err := OpenSpillStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })
	return ss
}

func TestSpillRoundTrip(t *testing.T) {
	ss := setupSpill(t)

	coords := vec.Vec2{X: -3, Z: 7}
	col := world.NewColumn(coords, 32)
	col.Set(vec.Vec3{X: 0, Y: 0, Z: 0}, block.StoneID)
	col.Set(vec.Vec3{X: 15, Y: 31, Z: 15}, block.TorchID)
	col.Set(vec.Vec3{X: 4, Y: 12, Z: 9}, block.IronOreID)

	require.NoError(t, ss.SaveColumn(col))
	stats := ss.Stats()
	assert.Equal(t, 1, stats.Columns)
	assert.Greater(t, stats.Bytes, int64(0))
	assert.Less(t, stats.Bytes, int64(2*len(col.Blocks)), "Пустая колонка хорошо сжимается")

	loaded, err := ss.LoadColumn(coords)
	require.NoError(t, err)
	assert.Equal(t, coords, loaded.Coords)
	assert.Equal(t, col.Blocks, loaded.Blocks)
	assert.Equal(t, 3, loaded.Count())
	assert.Equal(t, 32, loaded.Height())
}

func TestSpillDelete(t *testing.T) {
	ss := setupSpill(t)
	coords := vec.Vec2{X: 1, Z: 1}

	require.NoError(t, ss.SaveColumn(world.NewColumn(coords, 16)))
	require.NoError(t, ss.DeleteColumn(coords))

	_, err := ss.LoadColumn(coords)
	assert.ErrorIs(t, err, ErrColumnNotFound)
	assert.Equal(t, 0, ss.Stats().Columns)
	assert.Equal(t, int64(0), ss.Stats().Bytes)
}

func TestSpillCloseRemovesDir(t *testing.T) {
	ss, err := OpenSpillStore(t.TempDir())
	require.NoError(t, err)

	dir := ss.Dir()
	_, err = os.Stat(dir)
	require.NoError(t, err)

	require.NoError(t, ss.Close())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "Каталог сессии удалён")

	assert.ErrorIs(t, ss.SaveColumn(world.NewColumn(vec.Vec2{}, 16)), ErrNotReady)
	assert.NoError(t, ss.Close(), "Повторное закрытие безопасно")
}

func TestSpillBacksWorldStore(t *testing.T) {
	ss := setupSpill(t)
	store := world.NewStore(32)
	store.SetBackend(ss)

	pos := vec.Vec3{X: 40, Y: 5, Z: -40}
	store.Set(pos, block.CoalOreID)
	coords := pos.ToChunkCoords()

	require.NoError(t, store.Evict(coords))
	assert.Equal(t, 1, ss.Stats().Columns)

	require.NoError(t, store.Restore(coords))
	id, ok := store.Get(pos)
	require.True(t, ok)
	assert.Equal(t, block.CoalOreID, id)
	assert.Equal(t, 0, ss.Stats().Columns, "После восстановления запись удалена")
}
