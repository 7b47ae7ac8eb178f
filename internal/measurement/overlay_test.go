package measurement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameOverlay(t *testing.T) {
	e := newEngine(3)
	measureFlat(t, e)
	e.Store().SetLabel(0, "PP3")

	o := FrameOverlay(e.Store(), 0, 8)
	require.NotNil(t, o.Bone)
	require.NotNil(t, o.Primary)
	require.NotNil(t, o.Secondary)
	assert.Equal(t, seg(10, 10, 110, 10), *o.Bone)
	assert.Equal(t, seg(30, 10, 70, 10), *o.Primary)
	assert.Equal(t, 8.0, o.Offset)
	assert.Equal(t, "PP3", o.Caption)

	empty := FrameOverlay(e.Store(), 2, 8)
	assert.Nil(t, empty.Bone)
	assert.Nil(t, empty.Primary)
	assert.Empty(t, empty.Caption)
}

func TestEngineOverlayShowsWorkflow(t *testing.T) {
	e := newEngine(2)
	e.StartMeasurement()
	press(t, e, 1, 1)
	press(t, e, 9, 1)

	o := e.Overlay(8)
	require.NotNil(t, o.Bone)
	assert.Equal(t, seg(1, 1, 9, 1), *o.Bone)
	assert.Len(t, o.Pending, 2)
	assert.Nil(t, o.Primary)
}
