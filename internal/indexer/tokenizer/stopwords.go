package tokenizer

// generalStopwords are Indonesian function words.
var generalStopwords = []string{
	"yang", "dan", "di", "ke", "dari", "pada", "untuk", "dengan", "atau",
	"itu", "ini", "sebagai", "oleh", "dalam", "adalah", "akan", "tidak",
	"bukan", "sudah", "belum", "lebih", "juga", "karena", "ada", "saat",
	"sehingga", "agar", "maka", "jadi", "pula", "hanya", "para", "dapat",
	"bisa", "harus",
}

// domainStopwords occur in nearly every document of a herbal-medicine corpus
// and carry no ranking signal there.
var domainStopwords = []string{
	"tanaman", "herbal", "obat", "khasiat", "manfaat", "digunakan",
	"penggunaan", "berbagai", "merupakan", "tersebut", "yaitu", "serta",
	"antara", "terhadap", "memiliki", "beberapa", "biasanya", "umumnya",
}

// GeneralStopwords returns a copy of the function-word list.
func GeneralStopwords() []string {
	return append([]string(nil), generalStopwords...)
}

// DomainStopwords returns a copy of the domain noise list.
func DomainStopwords() []string {
	return append([]string(nil), domainStopwords...)
}

// StopwordSet builds the lookup set used by Filter.
func StopwordSet(includeDomain bool) map[string]struct{} {
	set := make(map[string]struct{}, len(generalStopwords)+len(domainStopwords))
	for _, w := range generalStopwords {
		set[w] = struct{}{}
	}
	if includeDomain {
		for _, w := range domainStopwords {
			set[w] = struct{}{}
		}
	}
	return set
}
