package docindex

// strategy selects how the cell stage of a range query enumerates
// candidates.
type strategy int

const (
	// scanRange probes the cell map once per cell of the query range.
	scanRange strategy = iota
	// scanEntries walks the cell map and tests membership in the range.
	scanEntries
)

// chooseStrategy picks the cheaper enumeration side. Both strategies fold
// the exact same set of cells; only the iteration cost differs.
func chooseStrategy(rangeArea, mapSize int) strategy {
	if rangeArea <= mapSize {
		return scanRange
	}
	return scanEntries
}
