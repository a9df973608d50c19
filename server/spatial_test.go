package main

import "testing"

func hasIndex(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func TestSpatialGridInsertAndQuery(t *testing.T) {
	grid := NewSpatialGrid(1200, 800)
	grid.InsertRect(Rect{X: 100, Y: 100, W: 10, H: 10}, 7)

	if !hasIndex(grid.QueryBuf(105, 105, 5, nil), 7) {
		t.Error("expected to find rect at (105,105)")
	}
	if hasIndex(grid.QueryBuf(1000, 700, 5, nil), 7) {
		t.Error("should not find rect at (1000,700)")
	}
}

func TestSpatialGridRectSpansCells(t *testing.T) {
	grid := NewSpatialGrid(1200, 800)
	// spans columns 0..3
	grid.InsertRect(Rect{X: 50, Y: 10, W: 300, H: 10}, 1)

	for _, x := range []float64{60, 150, 250, 340} {
		if !hasIndex(grid.QueryBuf(x, 15, 1, nil), 1) {
			t.Errorf("expected rect in cell at x=%v", x)
		}
	}
}

func TestSpatialGridBufReuse(t *testing.T) {
	grid := NewSpatialGrid(1200, 800)
	grid.InsertRect(Rect{X: 0, Y: 0, W: 10, H: 10}, 3)

	buf := make([]int, 0, 8)
	buf = grid.QueryBuf(5, 5, 1, buf[:0])
	buf = grid.QueryBuf(5, 5, 1, buf[:0])
	if len(buf) != 1 || buf[0] != 3 {
		t.Errorf("expected [3], got %v", buf)
	}
}

func TestSpatialGridBoundaryClamp(t *testing.T) {
	grid := NewSpatialGrid(1200, 800)
	grid.InsertRect(Rect{X: -50, Y: -50, W: 10, H: 10}, 0)
	grid.InsertRect(Rect{X: 5000, Y: 5000, W: 10, H: 10}, 1)

	if !hasIndex(grid.QueryBuf(0, 0, 5, nil), 0) {
		t.Error("negative coords should clamp to the first cell")
	}
	if !hasIndex(grid.QueryBuf(1200, 800, 5, nil), 1) {
		t.Error("coords past the edge should clamp to the last cell")
	}
}

func TestSpatialGridClear(t *testing.T) {
	grid := NewSpatialGrid(1200, 800)
	grid.InsertRect(Rect{X: 500, Y: 500, W: 10, H: 10}, 2)
	grid.Clear()
	if n := len(grid.QueryBuf(505, 505, 100, nil)); n != 0 {
		t.Errorf("expected 0 results after clear, got %d", n)
	}
}
