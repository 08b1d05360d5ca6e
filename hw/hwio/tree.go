package hwio

import "fmt"

// rangeIndex maps non-overlapping [start, end] address ranges to BankIO8
// devices. Entries are kept sorted by start address so lookups are a binary
// search. The emulated address space is small and the map is built once at
// power-up, so insertion cost is irrelevant.
type rangeIndex struct {
	entries []rangeEntry
}

type rangeEntry struct {
	start, end uint16 // inclusive
	io         BankIO8
}

func (t *rangeIndex) InsertRange(start, end uint16, io BankIO8) error {
	if start > end {
		return fmt.Errorf("hwio: invalid range [%04x, %04x]", start, end)
	}

	idx := t.lowerBound(start)
	if idx > 0 && t.entries[idx-1].end >= start {
		prev := t.entries[idx-1]
		return fmt.Errorf("hwio: range [%04x, %04x] overlaps [%04x, %04x]",
			start, end, prev.start, prev.end)
	}
	if idx < len(t.entries) && t.entries[idx].start <= end {
		next := t.entries[idx]
		return fmt.Errorf("hwio: range [%04x, %04x] overlaps [%04x, %04x]",
			start, end, next.start, next.end)
	}

	t.entries = append(t.entries, rangeEntry{})
	copy(t.entries[idx+1:], t.entries[idx:])
	t.entries[idx] = rangeEntry{start: start, end: end, io: io}
	return nil
}

// RemoveRange unmaps [start, end]. Entries partially covered by the removed
// range are split so the surviving portions stay mapped.
func (t *rangeIndex) RemoveRange(start, end uint16) {
	var out []rangeEntry
	for _, e := range t.entries {
		if e.end < start || e.start > end {
			out = append(out, e)
			continue
		}
		if e.start < start {
			out = append(out, rangeEntry{start: e.start, end: start - 1, io: e.io})
		}
		if e.end > end {
			out = append(out, rangeEntry{start: end + 1, end: e.end, io: e.io})
		}
	}
	t.entries = out
}

func (t *rangeIndex) Search(addr uint16) BankIO8 {
	lo, hi := 0, len(t.entries)
	for lo < hi {
		mid := (lo + hi) / 2
		e := t.entries[mid]
		switch {
		case addr < e.start:
			hi = mid
		case addr > e.end:
			lo = mid + 1
		default:
			return e.io
		}
	}
	return nil
}

// firstGap returns the lowest unmapped address in [start, end], or false if
// the whole range is covered.
func (t *rangeIndex) firstGap(start, end uint16) (uint16, bool) {
	addr := uint32(start)
	for _, e := range t.entries {
		if uint32(e.end) < addr {
			continue
		}
		if uint32(e.start) > addr {
			break
		}
		addr = uint32(e.end) + 1
		if addr > uint32(end) {
			return 0, false
		}
	}
	if addr <= uint32(end) {
		return uint16(addr), true
	}
	return 0, false
}

// lowerBound returns the index of the first entry with start >= addr.
func (t *rangeIndex) lowerBound(addr uint16) int {
	lo, hi := 0, len(t.entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.entries[mid].start < addr {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
