package pubmed

import (
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/claimsift/claimsift/internal/model"
)

// articleSet mirrors the efetch XML envelope, down to the fields the
// pipeline consumes.
type articleSet struct {
	XMLName  xml.Name     `xml:"PubmedArticleSet"`
	Articles []xmlArticle `xml:"PubmedArticle"`
}

type xmlArticle struct {
	PMID    string `xml:"MedlineCitation>PMID"`
	Article struct {
		Title    string `xml:"ArticleTitle"`
		Abstract struct {
			Sections []xmlAbstractText `xml:"AbstractText"`
		} `xml:"Abstract"`
		Journal struct {
			Title   string `xml:"Title"`
			PubDate struct {
				Year string `xml:"Year"`
			} `xml:"JournalIssue>PubDate"`
		} `xml:"Journal"`
		Authors []xmlAuthor `xml:"AuthorList>Author"`
		Grants  []xmlGrant  `xml:"GrantList>Grant"`
	} `xml:"MedlineCitation>Article"`
	Keywords []string `xml:"MedlineCitation>KeywordList>Keyword"`
}

// xmlAbstractText captures labeled abstract sections. InnerXML is used
// because AbstractText bodies may contain inline markup.
type xmlAbstractText struct {
	Label    string `xml:"Label,attr"`
	InnerXML string `xml:",innerxml"`
}

type xmlAuthor struct {
	LastName    string          `xml:"LastName"`
	ForeName    string          `xml:"ForeName"`
	Initials    string          `xml:"Initials"`
	Affiliation string          `xml:"AffiliationInfo>Affiliation"`
	Identifiers []xmlIdentifier `xml:"Identifier"`
}

type xmlIdentifier struct {
	Source string `xml:"Source,attr"`
	Value  string `xml:",chardata"`
}

type xmlGrant struct {
	GrantID string `xml:"GrantID"`
	Agency  string `xml:"Agency"`
	Country string `xml:"Country"`
}

// ParseArticleSet parses an efetch XML response into documents.
// Structured abstracts keep their Methods/Results/Conclusions sections
// apart; everything else concatenates into the plain abstract.
func ParseArticleSet(data []byte) ([]model.Document, error) {
	var set articleSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse article set: %w", err)
	}

	docs := make([]model.Document, 0, len(set.Articles))
	for _, article := range set.Articles {
		docs = append(docs, parseArticle(article))
	}
	return docs, nil
}

func parseArticle(article xmlArticle) model.Document {
	doc := model.Document{
		PMID:            article.PMID,
		Title:           article.Article.Title,
		Journal:         article.Article.Journal.Title,
		PublicationDate: article.Article.Journal.PubDate.Year,
	}

	var abstract strings.Builder
	for _, section := range article.Article.Abstract.Sections {
		text := stripMarkup(section.InnerXML)
		switch strings.ToLower(section.Label) {
		case "methods":
			doc.Methods = text
		case "results":
			doc.Results = text
		case "conclusions":
			doc.Conclusions = text
		default:
			if text != "" {
				abstract.WriteString(text)
				abstract.WriteString(" ")
			}
		}
	}
	doc.Abstract = strings.TrimSpace(abstract.String())

	for _, kw := range article.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			doc.Keywords = append(doc.Keywords, kw)
		}
	}

	for _, grant := range article.Article.Grants {
		parts := make([]string, 0, 3)
		for _, p := range []string{grant.GrantID, grant.Agency, grant.Country} {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) > 0 {
			doc.Grants = append(doc.Grants, strings.Join(parts, " / "))
		}
	}

	for _, author := range article.Article.Authors {
		a := model.Author{
			LastName:    author.LastName,
			ForeName:    author.ForeName,
			Initials:    author.Initials,
			Affiliation: author.Affiliation,
		}
		for _, id := range author.Identifiers {
			if id.Source == "ORCID" {
				a.ORCID = strings.TrimSpace(id.Value)
				break
			}
		}
		doc.Authors = append(doc.Authors, a)
	}

	return doc
}

// stripMarkup flattens inline markup (sub/sup/italic tags and entities)
// that PubMed embeds inside AbstractText bodies.
func stripMarkup(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return strings.TrimSpace(raw)
	}

	var text strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(raw))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			text.Write(tokenizer.Text())
		}
	}
	return strings.TrimSpace(text.String())
}
