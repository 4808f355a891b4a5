package raster

// Mask is a boolean raster. Bits that are not Valid read as masked out.
type Mask struct {
	Grid
	Bits  []bool
	Valid []bool
}

// NewMask returns an all-false mask where every pixel is valid.
func NewMask(grid Grid) *Mask {
	m := &Mask{
		Grid:  grid,
		Bits:  make([]bool, grid.Len()),
		Valid: make([]bool, grid.Len()),
	}
	for i := range m.Valid {
		m.Valid[i] = true
	}
	return m
}

// FullMask returns an all-true mask.
func FullMask(grid Grid) *Mask {
	m := NewMask(grid)
	for i := range m.Bits {
		m.Bits[i] = true
	}
	return m
}

func (m *Mask) At(x, y int) (bool, bool) {
	if !m.InBounds(x, y) {
		return false, false
	}
	i := m.Index(x, y)
	return m.Bits[i], m.Valid[i]
}

// And is valid only where both operands are valid.
func (m *Mask) And(other *Mask) *Mask {
	out := m.empty()
	for i := range m.Bits {
		out.Valid[i] = m.Valid[i] && other.Valid[i]
		out.Bits[i] = out.Valid[i] && m.Bits[i] && other.Bits[i]
	}
	return out
}

func (m *Mask) Or(other *Mask) *Mask {
	out := m.empty()
	for i := range m.Bits {
		out.Valid[i] = m.Valid[i] && other.Valid[i]
		out.Bits[i] = out.Valid[i] && (m.Bits[i] || other.Bits[i])
	}
	return out
}

// Union is true wherever either operand is valid and true, even when the
// other has no data there. Pixels false on both sides keep And's validity.
func (m *Mask) Union(other *Mask) *Mask {
	out := m.empty()
	for i := range m.Bits {
		out.Bits[i] = (m.Valid[i] && m.Bits[i]) || (other.Valid[i] && other.Bits[i])
		out.Valid[i] = out.Bits[i] || (m.Valid[i] && other.Valid[i])
	}
	return out
}

func (m *Mask) Not() *Mask {
	out := m.empty()
	for i := range m.Bits {
		out.Valid[i] = m.Valid[i]
		out.Bits[i] = m.Valid[i] && !m.Bits[i]
	}
	return out
}

// SelfMask marks every false pixel as masked out, leaving only true pixels valid.
func (m *Mask) SelfMask() *Mask {
	out := m.empty()
	for i := range m.Bits {
		out.Bits[i] = m.Valid[i] && m.Bits[i]
		out.Valid[i] = out.Bits[i]
	}
	return out
}

// UpdateMask masks out pixels that are false or no-data in other.
func (m *Mask) UpdateMask(other *Mask) *Mask {
	out := m.empty()
	for i := range m.Bits {
		out.Valid[i] = m.Valid[i] && other.Valid[i] && other.Bits[i]
		out.Bits[i] = out.Valid[i] && m.Bits[i]
	}
	return out
}

// Count returns the number of valid true pixels.
func (m *Mask) Count() int {
	n := 0
	for i, b := range m.Bits {
		if b && m.Valid[i] {
			n++
		}
	}
	return n
}

// Float converts the mask to a 0/1 raster keeping its validity.
func (m *Mask) Float() *Raster {
	r := &Raster{
		Grid:   m.Grid,
		Values: make([]float64, len(m.Bits)),
		Valid:  make([]bool, len(m.Bits)),
	}
	copy(r.Valid, m.Valid)
	for i, b := range m.Bits {
		if b && m.Valid[i] {
			r.Values[i] = 1
		}
	}
	return r
}

func (m *Mask) Equal(other *Mask) bool {
	if m.Grid != other.Grid || len(m.Bits) != len(other.Bits) {
		return false
	}
	for i := range m.Bits {
		if m.Valid[i] != other.Valid[i] || (m.Valid[i] && m.Bits[i] != other.Bits[i]) {
			return false
		}
	}
	return true
}

func (m *Mask) empty() *Mask {
	return &Mask{
		Grid:  m.Grid,
		Bits:  make([]bool, len(m.Bits)),
		Valid: make([]bool, len(m.Bits)),
	}
}
