package pages

import "blockpress/models"

// BlockInput is the wire shape of a block inside a page create/update
// request. Position is accepted but recomputed server-side so persisted
// positions are always contiguous in input order.
type BlockInput struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Position int    `json:"position"`
}

// Renumber returns the blocks with positions rewritten to 1..N in slice
// order. The input slice is not modified.
func Renumber(blocks []models.Block) []models.Block {
	out := make([]models.Block, len(blocks))
	copy(out, blocks)
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

// SwapAdjacent exchanges the blocks at positions k and k+1 (1-based) in
// a list ordered by position, swapping their position values. Out of
// range k returns the list unchanged.
func SwapAdjacent(blocks []models.Block, k int) []models.Block {
	if k < 1 || k >= len(blocks) {
		return blocks
	}

	out := make([]models.Block, len(blocks))
	copy(out, blocks)
	out[k-1], out[k] = out[k], out[k-1]
	out[k-1].Position, out[k].Position = k, k+1
	return out
}

// RemoveAt drops the block at position k (1-based) and decrements the
// position of every block after it, preserving contiguity.
func RemoveAt(blocks []models.Block, k int) []models.Block {
	if k < 1 || k > len(blocks) {
		return blocks
	}

	out := make([]models.Block, 0, len(blocks)-1)
	out = append(out, blocks[:k-1]...)
	out = append(out, blocks[k:]...)
	return Renumber(out)
}

func validBlockType(t string) bool {
	return t == models.BlockHeader || t == models.BlockParagraph || t == models.BlockImage
}

// shapesValid reports whether every block has an allowed type and
// non-empty content.
func shapesValid(blocks []BlockInput) bool {
	for _, b := range blocks {
		if !validBlockType(b.Type) || b.Content == "" {
			return false
		}
	}
	return true
}

// compositionValid enforces the page content rule: at least one header
// block and at least one block of another type.
func compositionValid(blocks []BlockInput) bool {
	headers := 0
	for _, b := range blocks {
		if b.Type == models.BlockHeader {
			headers++
		}
	}
	return headers > 0 && len(blocks)-headers > 0
}
