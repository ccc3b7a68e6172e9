package scraper

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	scoreSelector  = "p#ng"
	headerSelector = "h1"
)

var (
	frenchDecimal = regexp.MustCompile(`(\d+,\d+)`)
	postalCode    = regexp.MustCompile(`(\d{5})`)
)

// TownPage holds the fields extracted from a town page.
type TownPage struct {
	PostalCode string
	Score      float64
}

// ParseFrenchScore extracts the first "digits,digits" number from text.
func ParseFrenchScore(text string) (float64, error) {
	m := frenchDecimal.FindString(text)
	if m == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScore, text)
	}

	score, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidScore, text, err)
	}
	return score, nil
}

// ParsePostalCode extracts the first run of five digits from a heading.
func ParsePostalCode(text string) (string, error) {
	m := postalCode.FindString(text)
	if m == "" {
		return "", fmt.Errorf("%w in: %q", ErrNoPostalCode, text)
	}
	return m, nil
}

// ParseTownPage reads an HTML document and extracts the postal code and score.
// Missing elements yield a KindMissingElement error, unreadable text a KindParse
// error. Both fields are returned together or not at all.
func ParseTownPage(r io.Reader, url string) (*TownPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, URL: url, Err: fmt.Errorf("reading document: %w", err)}
	}

	scoreSel := doc.Find(scoreSelector).First()
	headerSel := doc.Find(headerSelector).First()

	switch {
	case scoreSel.Length() == 0:
		return nil, &FetchError{Kind: KindMissingElement, URL: url, Err: ErrMissingScore}
	case headerSel.Length() == 0:
		return nil, &FetchError{Kind: KindMissingElement, URL: url, Err: ErrMissingHeader}
	}

	scoreText := strings.TrimSpace(scoreSel.Text())
	score, err := ParseFrenchScore(scoreText)
	if err != nil {
		return nil, &FetchError{Kind: KindParse, URL: url, Text: scoreText, Err: err}
	}

	headerText := strings.TrimSpace(headerSel.Text())
	postal, err := ParsePostalCode(headerText)
	if err != nil {
		return nil, &FetchError{Kind: KindParse, URL: url, Text: headerText, Err: err}
	}

	return &TownPage{PostalCode: postal, Score: score}, nil
}
