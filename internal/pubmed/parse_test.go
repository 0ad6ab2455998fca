package pubmed

import (
	"testing"
)

const articleFixture = `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID Version="1">36000001</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate>
              <Year>2021</Year>
            </PubDate>
          </JournalIssue>
          <Title>Journal of Nutritional Science</Title>
        </Journal>
        <ArticleTitle>Chia seed supplementation and cardiovascular risk factors.</ArticleTitle>
        <Abstract>
          <AbstractText Label="BACKGROUND">Chia seeds are rich in omega-3 fatty acids.</AbstractText>
          <AbstractText Label="METHODS">Randomized trial of 120 adults over 12 weeks.</AbstractText>
          <AbstractText Label="RESULTS">LDL cholesterol fell by 8% (p &lt; 0.05).</AbstractText>
          <AbstractText Label="CONCLUSIONS">Daily chia seed intake improved lipid profiles.</AbstractText>
        </Abstract>
        <AuthorList>
          <Author>
            <LastName>Nguyen</LastName>
            <ForeName>Linh</ForeName>
            <Initials>L</Initials>
            <AffiliationInfo>
              <Affiliation>Department of Nutrition, Example University</Affiliation>
            </AffiliationInfo>
            <Identifier Source="ORCID">0000-0002-1234-5678</Identifier>
          </Author>
          <Author>
            <LastName>Okafor</LastName>
            <ForeName>Chidi</ForeName>
            <Initials>C</Initials>
          </Author>
        </AuthorList>
        <GrantList>
          <Grant>
            <GrantID>R01 HL000001</GrantID>
            <Agency>NHLBI NIH HHS</Agency>
            <Country>United States</Country>
          </Grant>
        </GrantList>
      </Article>
      <KeywordList>
        <Keyword>chia</Keyword>
        <Keyword>cholesterol</Keyword>
      </KeywordList>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID Version="1">36000002</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate>
              <Year>2019</Year>
            </PubDate>
          </JournalIssue>
          <Title>Plain Abstracts Quarterly</Title>
        </Journal>
        <ArticleTitle>An unstructured abstract with <i>inline</i> markup.</ArticleTitle>
        <Abstract>
          <AbstractText>Omega-3 intake was associated with lower triglycerides in a cohort of 5 000 adults.</AbstractText>
        </Abstract>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func TestParseArticleSet(t *testing.T) {
	docs, err := ParseArticleSet([]byte(articleFixture))
	if err != nil {
		t.Fatalf("ParseArticleSet failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}

	doc := docs[0]
	if doc.PMID != "36000001" {
		t.Errorf("pmid = %q", doc.PMID)
	}
	if doc.Title != "Chia seed supplementation and cardiovascular risk factors." {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.Journal != "Journal of Nutritional Science" {
		t.Errorf("journal = %q", doc.Journal)
	}
	if doc.PublicationDate != "2021" {
		t.Errorf("publication date = %q", doc.PublicationDate)
	}
}

func TestParseStructuredAbstractSections(t *testing.T) {
	docs, err := ParseArticleSet([]byte(articleFixture))
	if err != nil {
		t.Fatalf("ParseArticleSet failed: %v", err)
	}
	doc := docs[0]

	if doc.Methods != "Randomized trial of 120 adults over 12 weeks." {
		t.Errorf("methods = %q", doc.Methods)
	}
	if doc.Results != "LDL cholesterol fell by 8% (p < 0.05)." {
		t.Errorf("results = %q", doc.Results)
	}
	if doc.Conclusions != "Daily chia seed intake improved lipid profiles." {
		t.Errorf("conclusions = %q", doc.Conclusions)
	}
	// Unlabeled and non-section labels flow into the plain abstract.
	if doc.Abstract != "Chia seeds are rich in omega-3 fatty acids." {
		t.Errorf("abstract = %q", doc.Abstract)
	}
}

func TestParseAuthorsAndGrants(t *testing.T) {
	docs, err := ParseArticleSet([]byte(articleFixture))
	if err != nil {
		t.Fatalf("ParseArticleSet failed: %v", err)
	}
	doc := docs[0]

	if len(doc.Authors) != 2 {
		t.Fatalf("got %d authors, want 2", len(doc.Authors))
	}
	first := doc.Authors[0]
	if first.LastName != "Nguyen" || first.ForeName != "Linh" || first.Initials != "L" {
		t.Errorf("author = %+v", first)
	}
	if first.Affiliation != "Department of Nutrition, Example University" {
		t.Errorf("affiliation = %q", first.Affiliation)
	}
	if first.ORCID != "0000-0002-1234-5678" {
		t.Errorf("orcid = %q", first.ORCID)
	}
	if doc.Authors[1].ORCID != "" {
		t.Errorf("second author orcid = %q, want empty", doc.Authors[1].ORCID)
	}

	if len(doc.Grants) != 1 {
		t.Fatalf("got %d grants, want 1", len(doc.Grants))
	}
	if doc.Grants[0] != "R01 HL000001 / NHLBI NIH HHS / United States" {
		t.Errorf("grant = %q", doc.Grants[0])
	}

	if len(doc.Keywords) != 2 || doc.Keywords[0] != "chia" {
		t.Errorf("keywords = %v", doc.Keywords)
	}
}

func TestParseUnstructuredAbstract(t *testing.T) {
	docs, err := ParseArticleSet([]byte(articleFixture))
	if err != nil {
		t.Fatalf("ParseArticleSet failed: %v", err)
	}
	doc := docs[1]

	if doc.Abstract == "" {
		t.Fatal("expected plain abstract")
	}
	if doc.Methods != "" || doc.Results != "" || doc.Conclusions != "" {
		t.Error("unstructured abstract must leave section fields empty")
	}
}

func TestParseEmptySet(t *testing.T) {
	docs, err := ParseArticleSet([]byte(`<PubmedArticleSet></PubmedArticleSet>`))
	if err != nil {
		t.Fatalf("ParseArticleSet failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("got %d documents, want 0", len(docs))
	}
}

func TestParseInvalidXML(t *testing.T) {
	if _, err := ParseArticleSet([]byte(`not xml at all <<<`)); err == nil {
		t.Error("expected error for invalid XML")
	}
}

func TestStripMarkup(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"Vitamin D<sub>3</sub> levels", "Vitamin D3 levels"},
		{"p &lt; 0.05", "p < 0.05"},
		{"<i>in vivo</i> study", "in vivo study"},
	}
	for _, tc := range cases {
		if got := stripMarkup(tc.in); got != tc.want {
			t.Errorf("stripMarkup(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDocumentURL(t *testing.T) {
	docs, _ := ParseArticleSet([]byte(articleFixture))
	if got := docs[0].URL(); got != "https://pubmed.ncbi.nlm.nih.gov/36000001/" {
		t.Errorf("url = %q", got)
	}
}
