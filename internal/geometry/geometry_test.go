package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBboxArea(t *testing.T) {
	b := Bbox{X: 10, Y: 20, Width: 30, Height: 40}
	assert.Equal(t, 1200.0, b.Area())

	assert.Equal(t, 0.0, Bbox{}.Area())
}

func TestPolygonToBbox(t *testing.T) {
	// 三角形
	polygon := [][]float64{{10, 10}, {50, 20}, {30, 60}}
	b := PolygonToBbox(polygon)
	assert.Equal(t, 10.0, b.X)
	assert.Equal(t, 10.0, b.Y)
	assert.Equal(t, 40.0, b.Width)
	assert.Equal(t, 50.0, b.Height)
}

func TestPolygonToBbox_Empty(t *testing.T) {
	assert.Equal(t, Bbox{}, PolygonToBbox(nil))
	assert.Equal(t, Bbox{}, PolygonToBbox([][]float64{}))
}

func TestPolygonToBbox_SkipsShortVertices(t *testing.T) {
	polygon := [][]float64{{10, 10}, {}, {20, 30}}
	b := PolygonToBbox(polygon)
	assert.Equal(t, 10.0, b.X)
	assert.Equal(t, 10.0, b.Y)
	assert.Equal(t, 10.0, b.Width)
	assert.Equal(t, 20.0, b.Height)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 0.25, Normalize(25, 100))
	assert.Equal(t, 1.0, Normalize(100, 100))

	// 除零保护
	assert.Equal(t, 0.0, Normalize(50, 0))
}

func TestBboxToQuad(t *testing.T) {
	quad := BboxToQuad(Bbox{X: 10, Y: 20, Width: 30, Height: 40})
	assert.Equal(t, [][]float64{
		{10, 20},
		{40, 20},
		{40, 60},
		{10, 60},
	}, quad)
}

func TestFlattenPolygon(t *testing.T) {
	flat := FlattenPolygon([][]float64{{1, 2}, {3, 4}, {5, 6}})
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, flat)

	assert.Empty(t, FlattenPolygon(nil))
}
