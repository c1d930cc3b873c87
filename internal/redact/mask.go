// Package redact builds masked copies of 2-D value grids from a per-point
// allow predicate. The predicate comes from a selection index; this package
// only applies it.
package redact

// DefaultMask replaces the content of disallowed cells.
const DefaultMask = "[REDACTED]"

// MaskGrid returns a copy of grid where every cell rejected by allowed is
// replaced with mask. grid[r][c] corresponds to the point
// (startRow+r, startCol+c). The input grid is never modified.
func MaskGrid(grid [][]string, startRow, startCol int, allowed func(row, col int) bool, mask string) [][]string {
	if mask == "" {
		mask = DefaultMask
	}
	out := make([][]string, len(grid))
	for r, row := range grid {
		out[r] = make([]string, len(row))
		for c, val := range row {
			if allowed(startRow+r, startCol+c) {
				out[r][c] = val
			} else {
				out[r][c] = mask
			}
		}
	}
	return out
}

// MaskAll returns a copy of grid with every cell masked. Used for block
// decisions, which carry no partial result.
func MaskAll(grid [][]string, mask string) [][]string {
	return MaskGrid(grid, 0, 0, func(int, int) bool { return false }, mask)
}

// CopyGrid returns an unmasked copy of grid.
func CopyGrid(grid [][]string) [][]string {
	return MaskGrid(grid, 0, 0, func(int, int) bool { return true }, "")
}
