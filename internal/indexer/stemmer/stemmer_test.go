package stemmer

import "testing"

func TestStem(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"organisasi", "organisasi"},
		{"makanlah", "makan"},
		{"bukunya", "buku"},
		{"bukuku", "buku"},
		{"buku", "buku"},
		{"ajar", "ajar"},
		{"dimakan", "makan"},
		{"didengarkan", "dengar"},
		{"menyapu", "sapu"},
		{"memukul", "pukul"},
		{"membaca", "baca"},
		{"penyakit", "sakit"},
		{"bermain", "main"},
		{"mempermainkan", "main"},
		{"pelajaran", "ajar"},
		{"pembelajaran", "ajar"},
		{"perbaikan", "baik"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := Stem(tt.word); got != tt.want {
				t.Errorf("Stem(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

// Nasal variants are tried before bare "me", so mem+vowel always takes the
// p- substitution, including for roots that really start with a vowel.
func TestStemNasalPrecedence(t *testing.T) {
	tests := map[string]string{
		"membaca":   "baca",
		"memukul":   "pukul",
		"memasak":   "pasak",
		"menyapu":   "sapu",
		"mengambil": "ambil",
	}
	for word, want := range tests {
		if got := Stem(word); got != want {
			t.Errorf("Stem(%q) = %q, want %q", word, got, want)
		}
	}
}

func TestStemDeterministic(t *testing.T) {
	words := []string{"pembelajaran", "makanlah", "organisasi", "penyakit"}
	for _, w := range words {
		first := Stem(w)
		for i := 0; i < 5; i++ {
			if got := Stem(w); got != first {
				t.Fatalf("Stem(%q) changed between calls: %q then %q", w, first, got)
			}
		}
	}
}

func TestStemPrefixClassResetsBetweenCalls(t *testing.T) {
	// "pengetahuan" leaves the ke-/peN- class behind, which blocks -i. The
	// next call starts fresh and may strip it.
	_ = Stem("pengetahuan")
	if got := Stem("menyakiti"); got != "sakit" {
		t.Errorf("Stem(menyakiti) = %q, want sakit", got)
	}
}

func TestStemShortWordFloor(t *testing.T) {
	for _, w := range []string{"buku", "ajar", "kelas", "makan", "main"} {
		if measure(w) > minMeasure {
			t.Fatalf("test word %q is not at the floor", w)
		}
		if got := Stem(w); got != w {
			t.Errorf("Stem(%q) = %q, want identity at measure floor", w, got)
		}
		if got := Stem(Stem(w)); got != w {
			t.Errorf("Stem(Stem(%q)) = %q", w, got)
		}
	}
}

func TestStemNeverBelowFloor(t *testing.T) {
	words := []string{"pembelajaran", "mempermainkan", "ketahuilah", "dipersatukan", "berlarilah"}
	for _, w := range words {
		got := Stem(w)
		if measure(w) > minMeasure && measure(got) < minMeasure {
			t.Errorf("Stem(%q) = %q drops below the vowel floor", w, got)
		}
	}
}

func TestStemAll(t *testing.T) {
	got := StemAll([]string{"bukunya", "makanlah"})
	if len(got) != 2 || got[0] != "buku" || got[1] != "makan" {
		t.Errorf("StemAll = %v", got)
	}
}
