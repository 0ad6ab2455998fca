package model

// Document represents one paper retrieved from the literature search.
// Abstract holds the unlabeled abstract text; labeled sections are kept
// separately when the source provides a structured abstract.
type Document struct {
	PMID            string   `json:"pmid"`
	Title           string   `json:"title"`
	Abstract        string   `json:"abstract"`
	Methods         string   `json:"methods,omitempty"`
	Results         string   `json:"results,omitempty"`
	Conclusions     string   `json:"conclusions,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	Grants          []string `json:"grants,omitempty"`
	Authors         []Author `json:"authors,omitempty"`
	Journal         string   `json:"journal,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty"`
}

// Author carries the rich author metadata exposed by the literature
// service.
type Author struct {
	LastName    string `json:"last_name"`
	ForeName    string `json:"fore_name,omitempty"`
	Initials    string `json:"initials,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
	ORCID       string `json:"orcid,omitempty"`
}

// URL returns the canonical PubMed link for the document.
func (d Document) URL() string {
	if d.PMID == "" {
		return ""
	}
	return "https://pubmed.ncbi.nlm.nih.gov/" + d.PMID + "/"
}
