package listing

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/unisport/coursewatch/pkg/courses"
)

// Snapshot is one immutable parsed capture of the course listing page.
// A single snapshot is shared read-only across all course evaluations in a
// polling cycle, so one fetch serves the whole roster.
type Snapshot struct {
	doc *goquery.Document
}

// NewSnapshot parses listing HTML into a snapshot.
func NewSnapshot(r io.Reader) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}
	return &Snapshot{doc: doc}, nil
}

// Lookup resolves a course locator against the snapshot and returns the
// element's availability state: the value attribute for form controls,
// otherwise the trimmed element text. ok is false when the locator matches
// nothing.
func (s *Snapshot) Lookup(loc courses.Locator) (state string, ok bool) {
	sel := s.doc.Find(loc.String())
	if sel.Length() == 0 {
		return "", false
	}

	el := sel.First()
	if v, exists := el.Attr("value"); exists {
		return strings.TrimSpace(v), true
	}
	return strings.TrimSpace(el.Text()), true
}
