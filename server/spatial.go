package main

import "math"

const SpatialCellSize = 100.0

// SpatialGrid is a uniform grid used as the broad phase for wall queries.
// Cells hold indexes into the owner's wall slice.
type SpatialGrid struct {
	cols, rows int
	cellSize   float64
	cells      [][]int
}

// NewSpatialGrid sizes a grid to cover a width x height map
func NewSpatialGrid(width, height float64) *SpatialGrid {
	cols := int(math.Ceil(width/SpatialCellSize)) + 1
	rows := int(math.Ceil(height/SpatialCellSize)) + 1
	return &SpatialGrid{
		cols:     cols,
		rows:     rows,
		cellSize: SpatialCellSize,
		cells:    make([][]int, cols*rows),
	}
}

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) cellRange(minX, minY, maxX, maxY float64) (int, int, int, int) {
	clampCol := func(c int) int {
		if c < 0 {
			return 0
		}
		if c >= g.cols {
			return g.cols - 1
		}
		return c
	}
	clampRow := func(r int) int {
		if r < 0 {
			return 0
		}
		if r >= g.rows {
			return g.rows - 1
		}
		return r
	}
	return clampCol(int(math.Floor(minX / g.cellSize))),
		clampRow(int(math.Floor(minY / g.cellSize))),
		clampCol(int(math.Floor(maxX / g.cellSize))),
		clampRow(int(math.Floor(maxY / g.cellSize)))
}

// InsertRect adds idx to every cell the rectangle overlaps
func (g *SpatialGrid) InsertRect(r Rect, idx int) {
	minCX, minCY, maxCX, maxCY := g.cellRange(r.X, r.Y, r.X+r.W, r.Y+r.H)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			i := cy*g.cols + cx
			g.cells[i] = append(g.cells[i], idx)
		}
	}
}

// QueryBuf appends the indexes stored in cells overlapping the circle's
// bounding box to buf. An index spanning several cells may appear more than once.
func (g *SpatialGrid) QueryBuf(x, y, radius float64, buf []int) []int {
	minCX, minCY, maxCX, maxCY := g.cellRange(x-radius, y-radius, x+radius, y+radius)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			buf = append(buf, g.cells[cy*g.cols+cx]...)
		}
	}
	return buf
}
