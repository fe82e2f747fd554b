package testutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses the provided HTML payload into a goquery document for assertions.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// SelectedAddons returns the ids of add-on cards rendered as selected, in page order. It
// fails the test when a card's class and its checkbox disagree.
func SelectedAddons(t testing.TB, doc *goquery.Document) []string {
	t.Helper()

	ids := []string{}
	doc.Find(".addon-card").Each(func(_ int, card *goquery.Selection) {
		id := strings.TrimPrefix(card.AttrOr("id", ""), "addon-")
		_, checked := card.Find(".addon-checkbox").Attr("checked")
		if checked != card.HasClass("selected") {
			t.Fatalf("add-on %q: card selected=%t, checkbox checked=%t", id, card.HasClass("selected"), checked)
		}
		if checked {
			ids = append(ids, id)
		}
	})
	return ids
}
