// Package summarizer builds extractive summaries: it picks the sentences of a
// document whose terms carry the most IDF weight and returns them in reading
// order.
package summarizer

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinSentenceLen is the shortest fragment, in characters, kept as a sentence.
const MinSentenceLen = 20

const ellipsis = "..."

// Analyzer is the index-time text pipeline. Sentence scoring must use the
// same one that built the IDF table.
type Analyzer interface {
	Analyze(text string) []string
}

type Options struct {
	NumSentences int
	// MaxChars caps the summary length; 0 means no cap.
	MaxChars int
}

func DefaultOptions() Options {
	return Options{NumSentences: 2, MaxChars: 320}
}

// SplitSentences breaks text on blank lines and on '.', '!' or '?' followed by
// whitespace. Whitespace inside a sentence is collapsed and fragments shorter
// than MinSentenceLen are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	for _, block := range splitBlocks(text) {
		start := 0
		for i := 0; i < len(block); i++ {
			if !isTerminal(block[i]) {
				continue
			}
			if i+1 < len(block) && isSpace(block[i+1]) {
				sentences = appendSentence(sentences, block[start:i+1])
				start = i + 1
			}
		}
		sentences = appendSentence(sentences, block[start:])
	}
	return sentences
}

func splitBlocks(text string) []string {
	lines := strings.Split(text, "\n")
	var blocks []string
	var cur []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				blocks = append(blocks, strings.Join(cur, " "))
				cur = cur[:0]
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, strings.Join(cur, " "))
	}
	return blocks
}

func appendSentence(out []string, frag string) []string {
	s := strings.Join(strings.Fields(frag), " ")
	if utf8.RuneCountInString(s) < MinSentenceLen {
		return out
	}
	return append(out, s)
}

func isTerminal(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

type scored struct {
	pos   int
	score float64
}

// Summarize selects the opts.NumSentences highest-scoring sentences of text,
// where a sentence scores the sum of idf over its analyzed terms. Ties go to
// the earlier sentence. The selection is joined in document order and cut to
// opts.MaxChars at a word boundary. A NumSentences below one selects one
// sentence.
func Summarize(text string, idf map[string]float64, an Analyzer, opts Options) string {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return ""
	}

	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		var score float64
		for _, term := range an.Analyze(s) {
			score += idf[term]
		}
		ranked[i] = scored{pos: i, score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	n := opts.NumSentences
	if n < 1 {
		n = 1
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	picked := make([]int, n)
	for i := 0; i < n; i++ {
		picked[i] = ranked[i].pos
	}
	sort.Ints(picked)

	parts := make([]string, n)
	for i, pos := range picked {
		parts[i] = sentences[pos]
	}
	return Truncate(strings.Join(parts, " "), opts.MaxChars)
}

// Truncate shortens s to at most maxChars characters, ending on a whole word,
// and appends an ellipsis. A non-positive maxChars leaves s unchanged.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	cut := runes[:maxChars]
	if !unicode.IsSpace(runes[maxChars]) {
		if i := lastSpace(cut); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRightFunc(string(cut), unicode.IsSpace) + ellipsis
}

func lastSpace(rs []rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if unicode.IsSpace(rs[i]) {
			return i
		}
	}
	return -1
}
