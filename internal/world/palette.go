package world

import (
	"errors"

	"github.com/Whoisraeen/Odyssey-sub002/internal/block"
)

// ErrPaletteOverflow is returned when a chunk would need a 257th distinct
// block type. Construction of that chunk is aborted; the manager treats the
// coordinate as a failed generation.
var ErrPaletteOverflow = errors.New("world: block palette overflow")

const paletteLimit = 256

// Palette maps the block types present in one chunk onto single-byte
// indices. Slot 0 is always air. Entries are never removed; the palette
// lives and dies with its chunk.
type Palette struct {
	entries []block.ID
	index   map[block.ID]uint8
}

func NewPalette() *Palette {
	return &Palette{
		entries: []block.ID{block.Air},
		index:   map[block.ID]uint8{block.Air: 0},
	}
}

// GetOrAdd returns the palette index for id, appending it if unseen.
// Idempotent for repeated calls with the same type.
func (p *Palette) GetOrAdd(id block.ID) (uint8, error) {
	if idx, ok := p.index[id]; ok {
		return idx, nil
	}
	if len(p.entries) >= paletteLimit {
		return 0, ErrPaletteOverflow
	}
	idx := uint8(len(p.entries))
	p.entries = append(p.entries, id)
	p.index[id] = idx
	return idx, nil
}

// Resolve returns the block type at idx. Out-of-range indices resolve to air
// so speculative neighbor lookups never crash.
func (p *Palette) Resolve(idx uint8) block.ID {
	if int(idx) >= len(p.entries) {
		return block.Air
	}
	return p.entries[idx]
}

func (p *Palette) Len() int {
	return len(p.entries)
}
