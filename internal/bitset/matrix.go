package bitset

// Matrix is a dense GF(2) bit matrix, stored row-major as one Set per row.
// It backs the CHECK_RANK erasure-code predicate (spec.md §4.2, §4.3) and
// the systematic generator-matrix construction used to derive it from a
// code description's parity equations.
type Matrix struct {
	rows []*Set
	cols uint
}

// NewMatrix returns an nrows x ncols zero matrix.
func NewMatrix(nrows, ncols uint) *Matrix {
	rows := make([]*Set, nrows)
	for i := range rows {
		rows[i] = New(ncols)
	}
	return &Matrix{rows: rows, cols: ncols}
}

// Rows returns the number of rows.
func (m *Matrix) Rows() uint { return uint(len(m.rows)) }

// Cols returns the number of columns.
func (m *Matrix) Cols() uint { return m.cols }

// Set sets bit (row, col) to 1.
func (m *Matrix) Set(row, col uint) { m.rows[row].SetBit(col) }

// Test reports whether bit (row, col) is 1.
func (m *Matrix) Test(row, col uint) bool { return m.rows[row].IsSet(col) }

// Row returns the Set backing row i. Mutating it mutates the matrix.
func (m *Matrix) Row(i uint) *Set { return m.rows[i] }

// SwapRows exchanges rows i and j.
func (m *Matrix) SwapRows(i, j uint) {
	m.rows[i], m.rows[j] = m.rows[j], m.rows[i]
}

// XorRowInto XORs row src into row dst (dst ^= src), the elementary
// row operation Gaussian elimination over GF(2) is built from.
func (m *Matrix) XorRowInto(dst, src uint) {
	XorInto(m.rows[dst], m.rows[dst], m.rows[src])
}

// Clone returns an independent deep copy.
func (m *Matrix) Clone() *Matrix {
	out := &Matrix{rows: make([]*Set, len(m.rows)), cols: m.cols}
	for i, r := range m.rows {
		out.rows[i] = r.Clone()
	}
	return out
}

// ZeroColumns clears every bit in the given columns, across all rows. This
// is how a disk's contribution to a generator matrix is erased when
// checking decodability under CHECK_RANK (spec.md §4.2): the columns
// belonging to failed disks are zeroed and the remaining rank is compared
// against k.
func (m *Matrix) ZeroColumns(cols []uint) {
	for _, c := range cols {
		for _, row := range m.rows {
			row.UnsetBit(c)
		}
	}
}

// Rank computes the GF(2) rank via Gaussian elimination, scanning pivot
// columns from the rightmost column inward and eliminating both below and
// above each pivot, mirroring lib/big_bm.py's get_rank. Operating on a
// clone of m.rows so the caller's matrix is left untouched.
func (m *Matrix) Rank() uint {
	work := m.Clone()
	rank := uint(0)
	nrows := work.Rows()

	for col := int(work.cols) - 1; col >= 0; col-- {
		pivot := -1
		for r := rank; r < nrows; r++ {
			if work.rows[r].IsSet(uint(col)) {
				pivot = int(r)
				break
			}
		}
		if pivot < 0 {
			continue
		}
		work.SwapRows(rank, uint(pivot))
		for r := uint(0); r < nrows; r++ {
			if r != rank && work.rows[r].IsSet(uint(col)) {
				work.XorRowInto(r, rank)
			}
		}
		rank++
		if rank == nrows {
			break
		}
	}
	return rank
}

// BuildGenerator constructs the systematic k x (k+m) generator matrix for
// an XOR code from its parity equations: row i carries the identity bit at
// column i, plus a 1 at column k+j for every parity equation j that symbol
// i participates in. parityEqns[j] lists the data-symbol indices summed by
// parity check j (lib/big_bm.py's build_generator).
func BuildGenerator(k, m uint, parityEqns [][]uint) *Matrix {
	g := NewMatrix(k, k+m)
	for i := uint(0); i < k; i++ {
		g.Set(i, i)
	}
	for j, eqn := range parityEqns {
		for _, i := range eqn {
			g.Set(i, k+uint(j))
		}
	}
	return g
}
