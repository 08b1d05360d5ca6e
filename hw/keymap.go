package hw

// KeyPos is a position in the keyboard matrix.
type KeyPos struct {
	Row, Col uint8
}

// keymap places host runes on the BBC matrix. Rows follow the service
// manual layout for the main key block; modifier-only combinations are
// not represented.
var keymap = map[rune]KeyPos{
	'q': {0, 0}, '3': {0, 1}, '4': {0, 2}, '5': {0, 3}, '8': {0, 5},
	'-': {0, 7}, '^': {0, 8},

	'w': {1, 1}, 'e': {1, 2}, 't': {1, 3}, '7': {1, 4}, 'i': {1, 5},
	'9': {1, 6}, '0': {1, 7}, '_': {1, 8},

	'1': {2, 0}, '2': {2, 1}, 'd': {2, 2}, 'r': {2, 3}, '6': {2, 4},
	'u': {2, 5}, 'o': {2, 6}, 'p': {2, 7}, '[': {2, 8},

	'a': {3, 1}, 'x': {3, 2}, 'f': {3, 3}, 'y': {3, 4}, 'j': {3, 5},
	'k': {3, 6}, '@': {3, 7}, ':': {3, 8}, '\r': {3, 9}, '\n': {3, 9},

	's': {4, 1}, 'c': {4, 2}, 'g': {4, 3}, 'h': {4, 4}, 'n': {4, 5},
	'l': {4, 6}, ';': {4, 7}, ']': {4, 8},

	'\t': {5, 0}, 'z': {5, 1}, ' ': {5, 2}, 'v': {5, 3}, 'b': {5, 4},
	'm': {5, 5}, ',': {5, 6}, '.': {5, 7}, '/': {5, 8},

	0x1B: {6, 0}, '\\': {6, 8},
}

// LookupKey returns the matrix position for a host rune. Uppercase
// letters map to the same key as their lowercase form.
func LookupKey(r rune) (KeyPos, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	pos, ok := keymap[r]
	return pos, ok
}
