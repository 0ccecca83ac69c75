package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"blockpress/models"
)

func blockList(types ...string) []models.Block {
	blocks := make([]models.Block, len(types))
	for i, t := range types {
		blocks[i] = models.Block{Type: t, Content: "content", Position: i + 1}
	}
	return blocks
}

func positions(blocks []models.Block) []int {
	out := make([]int, len(blocks))
	for i, b := range blocks {
		out[i] = b.Position
	}
	return out
}

func TestRenumber(t *testing.T) {
	blocks := []models.Block{
		{Type: "h", Content: "title", Position: 7},
		{Type: "p", Content: "body", Position: 2},
		{Type: "img", Content: "/static/images/lake.jpg", Position: 2},
	}

	out := Renumber(blocks)

	assert.Equal(t, []int{1, 2, 3}, positions(out))
	assert.Equal(t, "title", out[0].Content)
	assert.Equal(t, "body", out[1].Content)
	// input untouched
	assert.Equal(t, 7, blocks[0].Position)
}

func TestSwapAdjacent(t *testing.T) {
	blocks := blockList("h", "p", "img")

	out := SwapAdjacent(blocks, 1)

	assert.Equal(t, []int{1, 2, 3}, positions(out))
	assert.Equal(t, "p", out[0].Type)
	assert.Equal(t, "h", out[1].Type)
	assert.Equal(t, "img", out[2].Type)
}

func TestSwapAdjacentRoundTrip(t *testing.T) {
	blocks := blockList("h", "p", "p", "img")

	for k := 1; k < len(blocks); k++ {
		out := SwapAdjacent(SwapAdjacent(blocks, k), k)
		assert.Equal(t, blocks, out, "swap at %d should round-trip", k)
	}
}

func TestSwapAdjacentOutOfRange(t *testing.T) {
	blocks := blockList("h", "p")

	assert.Equal(t, blocks, SwapAdjacent(blocks, 0))
	assert.Equal(t, blocks, SwapAdjacent(blocks, 2))
	assert.Equal(t, blocks, SwapAdjacent(blocks, 5))
}

func TestRemoveAt(t *testing.T) {
	blocks := blockList("h", "p", "img", "p")

	out := RemoveAt(blocks, 3)

	assert.Len(t, out, 3)
	assert.Equal(t, []int{1, 2, 3}, positions(out))
	assert.Equal(t, "h", out[0].Type)
	assert.Equal(t, "p", out[1].Type)
	assert.Equal(t, "p", out[2].Type)
}

func TestRemoveAtFirstAndLast(t *testing.T) {
	blocks := blockList("h", "p", "img")

	first := RemoveAt(blocks, 1)
	assert.Equal(t, []int{1, 2}, positions(first))
	assert.Equal(t, "p", first[0].Type)

	last := RemoveAt(blocks, 3)
	assert.Equal(t, []int{1, 2}, positions(last))
	assert.Equal(t, "p", last[1].Type)
}

func TestRemoveAtOutOfRange(t *testing.T) {
	blocks := blockList("h", "p")

	assert.Equal(t, blocks, RemoveAt(blocks, 0))
	assert.Equal(t, blocks, RemoveAt(blocks, 3))
}

func TestCompositionValid(t *testing.T) {
	tests := []struct {
		name   string
		blocks []BlockInput
		want   bool
	}{
		{"header and paragraph", []BlockInput{{Type: "h", Content: "H"}, {Type: "p", Content: "body"}}, true},
		{"header and image", []BlockInput{{Type: "h", Content: "H"}, {Type: "img", Content: "/x.jpg"}}, true},
		{"only headers", []BlockInput{{Type: "h", Content: "H"}, {Type: "h", Content: "H2"}}, false},
		{"no header", []BlockInput{{Type: "p", Content: "body"}}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compositionValid(tt.blocks))
		})
	}
}

func TestShapesValid(t *testing.T) {
	assert.True(t, shapesValid([]BlockInput{{Type: "h", Content: "H"}, {Type: "p", Content: "x"}}))
	assert.False(t, shapesValid([]BlockInput{{Type: "h", Content: ""}}))
	assert.False(t, shapesValid([]BlockInput{{Type: "title", Content: "H"}}))
}
