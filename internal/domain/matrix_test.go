package domain

import "testing"

func TestNewDistanceMatrixAsymmetric(t *testing.T) {
	m, err := NewDistanceMatrix([][]int{
		{0, 5, 9},
		{4, 0, 2},
		{7, 3, 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Size() != 3 {
		t.Fatalf("size = %d, want 3", m.Size())
	}
	if m.At(0, 1) != 5 || m.At(1, 0) != 4 {
		t.Fatalf("directional entries lost: (0,1)=%d (1,0)=%d", m.At(0, 1), m.At(1, 0))
	}

	// 0->1->2->0 = 5 + 2 + 7
	if got := m.PathCost([]int{0, 1, 2, 0}); got != 14 {
		t.Fatalf("path cost = %d, want 14", got)
	}
	// reverse direction differs: 0->2->1->0 = 9 + 3 + 4
	if got := m.PathCost([]int{0, 2, 1, 0}); got != 16 {
		t.Fatalf("reverse path cost = %d, want 16", got)
	}
}

func TestNewDistanceMatrixRejectsMalformed(t *testing.T) {
	cases := map[string][][]int{
		"empty":      {},
		"ragged":     {{0, 1}, {1}},
		"negative":   {{0, -1}, {1, 0}},
		"diagonal":   {{1, 1}, {1, 0}},
		"non-square": {{0, 1, 2}, {1, 0, 2}},
	}

	for name, rows := range cases {
		if _, err := NewDistanceMatrix(rows); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestDistanceMatrixRowsCopies(t *testing.T) {
	m, err := NewDistanceMatrix([][]int{{0, 1}, {2, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := m.Rows()
	rows[0][1] = 100
	if m.At(0, 1) != 1 {
		t.Fatalf("matrix mutated through Rows()")
	}
}
