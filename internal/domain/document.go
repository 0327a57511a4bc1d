package domain

// PageDescriptor is a per-page handle within a loaded document. Width and
// height are in PDF points; engines that cannot read geometry report zero.
// A descriptor never outlives the document that produced it.
type PageDescriptor struct {
	Index  int
	Width  float64
	Height float64
}

// DocumentInfo holds the document information dictionary fields the pipeline
// knows how to scrub. Empty strings mean "cleared".
type DocumentInfo struct {
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Keywords string `json:"keywords,omitempty"`
	Creator  string `json:"creator,omitempty"`
	Producer string `json:"producer,omitempty"`
}

// ScrubAll clears every recognized field.
func (i DocumentInfo) ScrubAll() DocumentInfo {
	return DocumentInfo{}
}

// ScrubIdentity clears title, author, subject and keywords but keeps
// creator/producer. The fallback path uses this narrower scrub.
func (i DocumentInfo) ScrubIdentity() DocumentInfo {
	return DocumentInfo{
		Creator:  i.Creator,
		Producer: i.Producer,
	}
}
