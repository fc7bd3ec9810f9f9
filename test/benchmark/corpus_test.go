// Package benchmark contains Go benchmarks for the analysis pipeline, index
// construction, and query path, measuring throughput and allocation
// behaviour over a synthetic herbal corpus.
package benchmark

import (
	"fmt"
	"math/rand"
	"strings"
)

var vocabulary = []string{
	"jahe", "kunyit", "temulawak", "sambiloto", "sirih", "kencur", "lengkuas",
	"sereh", "kayu", "manis", "daun", "akar", "rimpang", "batang", "bunga",
	"demam", "batuk", "radang", "luka", "mual", "pegal", "diare", "gatal",
	"menghangatkan", "meredakan", "menurunkan", "mengobati", "menyembuhkan",
	"pengobatan", "peradangan", "kesehatan", "tradisional", "rebusan",
	"diminum", "ditumbuk", "dioleskan", "antioksidan", "antibakteri",
	"tekanan", "darah", "hati", "lambung", "kulit", "nafsu", "makan",
}

var connectors = []string{"yang", "dan", "untuk", "dengan", "dari", "pada", "secara"}

// synthCorpus returns n deterministic documents of roughly sentences*12 words.
func synthCorpus(n, sentences int) map[string]string {
	rng := rand.New(rand.NewSource(42))
	docs := make(map[string]string, n)
	for i := 0; i < n; i++ {
		var sb strings.Builder
		for s := 0; s < sentences; s++ {
			for w := 0; w < 12; w++ {
				if w > 0 {
					sb.WriteByte(' ')
				}
				if w%4 == 3 {
					sb.WriteString(connectors[rng.Intn(len(connectors))])
				} else {
					sb.WriteString(vocabulary[rng.Intn(len(vocabulary))])
				}
			}
			sb.WriteString(". ")
		}
		docs[fmt.Sprintf("herb-%05d.txt", i)] = sb.String()
	}
	return docs
}
