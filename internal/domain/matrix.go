package domain

import (
	"errors"
	"fmt"
)

// DistanceMatrix is an immutable N×N table of non-negative travel costs.
// Entries are directional: At(i, j) need not equal At(j, i), and no triangle
// inequality is assumed. The diagonal is always zero.
type DistanceMatrix struct {
	n     int
	cells []int
}

// NewDistanceMatrix copies rows into a new matrix after validating shape,
// sign and diagonal.
func NewDistanceMatrix(rows [][]int) (*DistanceMatrix, error) {
	n := len(rows)
	if n == 0 {
		return nil, errors.New("distance matrix: must have at least one row")
	}

	cells := make([]int, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("distance matrix: row %d has %d columns, want %d", i, len(row), n)
		}
		for j, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("distance matrix: negative cost at (%d,%d): %d", i, j, v)
			}
			if i == j && v != 0 {
				return nil, fmt.Errorf("distance matrix: non-zero diagonal at %d: %d", i, v)
			}
			cells[i*n+j] = v
		}
	}

	return &DistanceMatrix{n: n, cells: cells}, nil
}

func (m *DistanceMatrix) Size() int { return m.n }

func (m *DistanceMatrix) At(i, j int) int { return m.cells[i*m.n+j] }

// PathCost sums consecutive directional arcs along nodes.
func (m *DistanceMatrix) PathCost(nodes []int) int {
	total := 0
	for k := 0; k+1 < len(nodes); k++ {
		total += m.At(nodes[k], nodes[k+1])
	}
	return total
}

// Rows returns a copy of the matrix as nested slices.
func (m *DistanceMatrix) Rows() [][]int {
	out := make([][]int, m.n)
	for i := range out {
		out[i] = append([]int(nil), m.cells[i*m.n:(i+1)*m.n]...)
	}
	return out
}
