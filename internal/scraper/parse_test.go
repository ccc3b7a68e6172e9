package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrenchScore(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		expected    float64
		expectError bool
	}{
		{name: "score with suffix", text: "15,7", expected: 15.7},
		{name: "score out of twenty", text: "14,2 / 20", expected: 14.2},
		{name: "surrounding words", text: "Note globale : 9,0", expected: 9.0},
		{name: "dot decimal is not french", text: "14.2 / 20", expectError: true},
		{name: "integer only", text: "14 / 20", expectError: true},
		{name: "empty", text: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := ParseFrenchScore(tt.text)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidScore)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, score, 1e-9)
		})
	}
}

func TestParsePostalCode(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		expected    string
		expectError bool
	}{
		{name: "heading with code", text: "Antony (92160)", expected: "92160"},
		{name: "first run wins", text: "Paris 1er (75001) 75002", expected: "75001"},
		{name: "four digits", text: "Town (9216)", expectError: true},
		{name: "no digits", text: "Antony", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := ParsePostalCode(tt.text)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrNoPostalCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestParseTownPage(t *testing.T) {
	tests := []struct {
		name         string
		html         string
		expected     *TownPage
		expectedKind Kind
		expectedText string
	}{
		{
			name:     "complete page",
			html:     `<html><body><h1>Antony (92160)</h1><p id="ng">14,2 / 20</p></body></html>`,
			expected: &TownPage{PostalCode: "92160", Score: 14.2},
		},
		{
			name:         "score element missing",
			html:         `<html><body><h1>Antony (92160)</h1></body></html>`,
			expectedKind: KindMissingElement,
		},
		{
			name:         "heading missing",
			html:         `<html><body><p id="ng">14,2 / 20</p></body></html>`,
			expectedKind: KindMissingElement,
		},
		{
			name:         "score format changed",
			html:         `<html><body><h1>Antony (92160)</h1><p id="ng">14.2/20</p></body></html>`,
			expectedKind: KindParse,
			expectedText: "14.2/20",
		},
		{
			name:         "heading without postal code",
			html:         `<html><body><h1>Antony</h1><p id="ng">14,2 / 20</p></body></html>`,
			expectedKind: KindParse,
			expectedText: "Antony",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := ParseTownPage(strings.NewReader(tt.html), "https://example.test/antony_92002")
			if tt.expectedKind != 0 {
				require.Error(t, err)
				assert.Nil(t, page)
				assert.Equal(t, tt.expectedKind, KindOf(err))

				var fe *FetchError
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, tt.expectedText, fe.Text)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, page)
		})
	}
}
