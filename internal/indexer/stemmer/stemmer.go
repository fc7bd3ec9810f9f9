// Package stemmer implements a Porter-style affix stripper for Indonesian.
//
// Each removal is gated on the measure of the working string: the number of
// vowels it still contains. Words with a measure of two or less are never
// shortened further. The prefix removed first determines which derivational
// suffixes may follow it, so the active prefix class travels with the measure
// in a state value that every stage takes and returns.
package stemmer

import "strings"

// prefixClass identifies which prefix family, if any, has been stripped.
type prefixClass int

const (
	classNone   prefixClass = iota
	classActive             // di-, meN-, ter-
	classPer                // per-, pe-
	classKePeN              // ke-, peN-
	classBer                // ber-, be-
)

// minMeasure is the vowel floor. A word at or below it is left alone.
const minMeasure = 2

type state struct {
	word    string
	measure int
	prefix  prefixClass
}

func (s state) reducible() bool {
	return s.measure > minMeasure
}

// cut drops front bytes from the start and back bytes from the end of the
// word, prepends replace, and records class when one is given. Every affix
// handled here holds exactly one vowel, so the measure drops by one.
func (s state) cut(front, back int, replace string, class prefixClass) state {
	s.word = replace + s.word[front:len(s.word)-back]
	s.measure--
	if class != classNone {
		s.prefix = class
	}
	return s
}

// Stem reduces word to its root. Input must already be lower-case; anything
// that matches no rule is returned unchanged.
func Stem(word string) string {
	st := state{word: word, measure: measure(word)}
	if !st.reducible() {
		return word
	}

	st = stripSuffixSet(st, particles)
	if !st.reducible() {
		return st.word
	}
	st = stripSuffixSet(st, possessives)
	if !st.reducible() {
		return st.word
	}

	if next, ok := stripFirstOrderPrefix(st); ok {
		st = next
		if st.reducible() {
			st = stripDerivationalSuffix(st)
			if st.reducible() {
				st, _ = stripSecondOrderPrefix(st)
			}
		}
		return st.word
	}

	if next, ok := stripSecondOrderPrefix(st); ok {
		st = next
		if st.reducible() {
			st = stripDerivationalSuffix(st)
		}
	}
	return st.word
}

// StemAll stems every token, returning a new slice.
func StemAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = Stem(tok)
	}
	return out
}

func measure(word string) int {
	n := 0
	for i := 0; i < len(word); i++ {
		if isVowel(word[i]) {
			n++
		}
	}
	return n
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

var (
	particles   = []string{"kah", "lah", "pun"}
	possessives = []string{"ku", "mu", "nya"}
)

// stripSuffixSet removes at most one suffix from set.
func stripSuffixSet(st state, set []string) state {
	for _, suf := range set {
		if strings.HasSuffix(st.word, suf) && len(st.word) > len(suf) {
			return st.cut(0, len(suf), "", classNone)
		}
	}
	return st
}

// prefixRule describes one prefix variant. When vowelSub is non-empty and the
// remainder starts with a vowel, the prefix is replaced by vowelSub instead of
// being deleted (nasal assimilation: meny+V -> s+V, mem+V -> p+V). Rules with
// vowelOnly set apply only in that case.
type prefixRule struct {
	prefix    string
	class     prefixClass
	vowelSub  string
	vowelOnly bool
}

// firstOrderPrefixes are tried in order. Longer nasal variants precede the
// bare "me" so that assimilated forms are reachable. This departs from the
// common Tala ordering, which tries "me" first and leaves "membaca" as
// "mbaca". The cost is on the other side: a vowel-initial root after "mem"
// takes the p- substitution, so "memasak" stems to "pasak", not "masak".
var firstOrderPrefixes = []prefixRule{
	{prefix: "di", class: classActive},
	{prefix: "ter", class: classActive},
	{prefix: "meng", class: classActive},
	{prefix: "meny", class: classActive, vowelSub: "s", vowelOnly: true},
	{prefix: "men", class: classActive},
	{prefix: "mem", class: classActive, vowelSub: "p"},
	{prefix: "me", class: classActive},
	{prefix: "ke", class: classKePeN},
	{prefix: "peng", class: classKePeN},
	{prefix: "peny", class: classKePeN, vowelSub: "s", vowelOnly: true},
	{prefix: "pen", class: classKePeN},
	{prefix: "pem", class: classKePeN, vowelSub: "p"},
}

func stripFirstOrderPrefix(st state) (state, bool) {
	for _, r := range firstOrderPrefixes {
		if !strings.HasPrefix(st.word, r.prefix) || len(st.word) <= len(r.prefix) {
			continue
		}
		vowelNext := isVowel(st.word[len(r.prefix)])
		if r.vowelOnly && !vowelNext {
			continue
		}
		sub := ""
		if r.vowelSub != "" && vowelNext {
			sub = r.vowelSub
		}
		return st.cut(len(r.prefix), 0, sub, r.class), true
	}
	return st, false
}

// lexicalizedStems map to a fixed root regardless of the general be-/pe-
// rules: "belajar" and "pelajar" both lose three letters, not two.
var lexicalizedStems = []struct {
	stem  string
	strip int
	class prefixClass
}{
	{"pelajar", 3, classPer},
	{"belajar", 3, classBer},
}

func stripSecondOrderPrefix(st state) (state, bool) {
	for _, lx := range lexicalizedStems {
		if strings.HasPrefix(st.word, lx.stem) {
			return st.cut(lx.strip, 0, "", lx.class), true
		}
	}
	switch {
	case strings.HasPrefix(st.word, "per") && len(st.word) > 3:
		return st.cut(3, 0, "", classPer), true
	case strings.HasPrefix(st.word, "pe") && len(st.word) > 2:
		return st.cut(2, 0, "", classPer), true
	case strings.HasPrefix(st.word, "ber") && len(st.word) > 3:
		return st.cut(3, 0, "", classBer), true
	case strings.HasPrefix(st.word, "be") && len(st.word) > 2:
		return st.cut(2, 0, "", classBer), true
	}
	return st, false
}

func stripDerivationalSuffix(st state) state {
	if !st.reducible() {
		return st
	}
	w := st.word
	switch {
	case strings.HasSuffix(w, "kan") && len(w) > 3:
		if st.prefix != classPer && st.prefix != classKePeN {
			return st.cut(0, 3, "", classNone)
		}
		if st.prefix != classActive {
			return st.cut(0, 2, "", classNone)
		}
	case strings.HasSuffix(w, "an") && len(w) > 2:
		if st.prefix != classActive {
			return st.cut(0, 2, "", classNone)
		}
	case strings.HasSuffix(w, "i") && len(w) > 1:
		if st.prefix <= classPer && !strings.HasSuffix(w, "si") {
			return st.cut(0, 1, "", classNone)
		}
	}
	return st
}
