package fluid

// Field is a current/previous buffer pair. Phases write into one slot while
// reading the other and then toggle which slot is current; nothing is copied.
type Field struct {
	slots [2][]float32
	cur   int
}

// NewField allocates both slots for a grid.
func NewField(g Grid) Field {
	n := g.Size()
	return Field{slots: [2][]float32{make([]float32, n), make([]float32, n)}}
}

// Current returns the authoritative buffer.
func (f *Field) Current() []float32 { return f.slots[f.cur] }

// Previous returns the scratch buffer.
func (f *Field) Previous() []float32 { return f.slots[1-f.cur] }

// Swap exchanges the roles of the two slots.
func (f *Field) Swap() { f.cur = 1 - f.cur }

// Clear zeroes both slots.
func (f *Field) Clear() {
	clear(f.slots[0])
	clear(f.slots[1])
}

// Load copies src into the current slot.
func (f *Field) Load(src []float32) {
	copy(f.slots[f.cur], src)
}
