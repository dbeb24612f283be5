// Package keymap maps keyboard characters to the sixteen CHIP-8 keys.
package keymap

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Default is the usual layout: the left block of a QWERTY keyboard,
// 1234/QWER/ASDF/ZXCV, standing in for the COSMAC VIP hex pad.
const Default = "x123qweasdzc4rfv"

// Layout holds the keyboard character for each CHIP-8 key 0-F.
type Layout [16]rune

// Parse reads a layout from 16 distinct characters, the first being the
// character for key 0. Letters are case insensitive.
func Parse(s string) (Layout, error) {
	var l Layout
	s = strings.ToLower(s)
	if n := utf8.RuneCountInString(s); n != len(l) {
		return l, fmt.Errorf("key layout %q has %d keys, want %d", s, n, len(l))
	}
	seen := map[rune]bool{}
	i := 0
	for _, r := range s {
		if seen[r] {
			return l, fmt.Errorf("key layout %q uses %q twice", s, r)
		}
		seen[r] = true
		l[i] = r
		i++
	}
	return l, nil
}

// Key returns the CHIP-8 key for character r.
func (l Layout) Key(r rune) (uint8, bool) {
	for k, c := range l {
		if c == r {
			return uint8(k), true
		}
	}
	return 0, false
}

func (l Layout) String() string { return string(l[:]) }
