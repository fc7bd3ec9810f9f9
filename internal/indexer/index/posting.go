package index

// Posting is one document's entry in a term's postings list.
type Posting struct {
	DocID     string
	Frequency int
}

// PostingList is ordered by DocID.
type PostingList []Posting

type TermEntry struct {
	Term     string
	DF       int
	Postings PostingList
}
