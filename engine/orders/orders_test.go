package orders

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderDecodeErrors(t *testing.T) {
	var buf bytes.Buffer
	o := Order{Tick: 7, Agent: 2, Kind: KindMove, Goal: geom.V2(1.25, -3)}
	require.NoError(t, o.Encode(&buf))
	full := buf.Bytes()

	var got Order
	assert.ErrorIs(t, got.Decode(bytes.NewReader(nil)), io.EOF)
	assert.ErrorIs(t, got.Decode(bytes.NewReader(full[:10])), io.ErrUnexpectedEOF)
	require.NoError(t, got.Decode(bytes.NewReader(full)))
	assert.Equal(t, o, got)
}

func TestRecordAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.orders")
	rec, err := NewRecorder(path)
	require.NoError(t, err)

	recorded := []Order{
		{Tick: 3, Agent: 0, Kind: KindMove, Goal: geom.V2(10, 20)},
		{Tick: 3, Agent: 1, Kind: KindMove, Goal: geom.V2(30, 40)},
		{Tick: 90, Agent: 0, Kind: KindStop},
	}
	for _, o := range recorded {
		require.NoError(t, rec.Record(o))
	}
	require.NoError(t, rec.Close())

	l, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, recorded, l.Orders)
	assert.Equal(t, recorded[:2], l.ForTick(3))
	assert.Empty(t, l.ForTick(4))
	assert.Equal(t, uint64(90), l.LastTick())
}

func TestLoadTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.orders")
	var buf bytes.Buffer
	o := Order{Tick: 1, Kind: KindMove}
	require.NoError(t, o.Encode(&buf))
	require.NoError(t, os.WriteFile(path, buf.Bytes()[:buf.Len()-3], 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "move", KindMove.String())
	assert.Equal(t, "stop", KindStop.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
