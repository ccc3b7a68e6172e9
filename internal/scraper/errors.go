package scraper

import (
	"errors"
	"fmt"
)

// Kind classifies why a town page could not be turned into a record.
type Kind int

const (
	// KindNetwork covers transport errors, timeouts and non-2xx responses.
	KindNetwork Kind = iota + 1
	// KindMissingElement means the page lacks the score or heading element,
	// which is what the site serves for a town it does not know.
	KindMissingElement
	// KindParse means an element was found but its text no longer matches the
	// expected format.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindMissingElement:
		return "missing_element"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidScore  = errors.New("invalid score format")
	ErrNoPostalCode  = errors.New("no postal code found")
	ErrMissingScore  = errors.New("score element not found")
	ErrMissingHeader = errors.New("header element not found")
)

// FetchError carries the failure kind alongside the page URL and, for parse
// failures, the offending element text.
type FetchError struct {
	Kind Kind
	URL  string
	Text string
	Err  error
}

func (e *FetchError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("scraper: %s error for %s (%q): %v", e.Kind, e.URL, e.Text, e.Err)
	}
	return fmt.Sprintf("scraper: %s error for %s: %v", e.Kind, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// KindOf reports the failure kind of err, or 0 if err is not a *FetchError.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
