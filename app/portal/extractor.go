package portal

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/charmap"
)

// Extractor parses a rendered detail page into a DetailSnapshot.
type Extractor struct {
	profile Profile
}

func NewExtractor(profile Profile) *Extractor {
	return &Extractor{profile: profile}
}

// Run parses the detail markup. A missing general-fields table or events
// section yields an empty map/slice, not an error: the portal omits
// sections for some records and the detail view must still render.
func (e *Extractor) Run(data []byte) (DetailSnapshot, error) {
	data = decodeLegacyCharset(data)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return DetailSnapshot{}, fmt.Errorf("failed to parse detail markup: %w", err)
	}

	snapshot := DetailSnapshot{
		Fields: e.extractFields(doc),
		Events: e.extractEvents(doc),
	}

	return snapshot, nil
}

// extractFields reads the "print content" table: rows with two or more
// header cells become key/value pairs. A repeated key is overwritten, so
// the last occurrence wins.
func (e *Extractor) extractFields(doc *goquery.Document) map[string]string {
	fields := make(map[string]string)

	doc.Find("table" + e.profile.DetailBlock + " tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("th")
		if cells.Length() < 2 {
			return
		}

		key := strings.ReplaceAll(cleanText(cells.Eq(0).Text()), ":", "")
		value := cleanText(cells.Eq(1).Text())
		fields[key] = value
	})

	return fields
}

// extractEvents locates the header cell whose text is exactly the events
// marker ("EVENTOS"), then walks its enclosing table's next sibling table.
// Row order is the timeline order and is preserved as-is.
func (e *Extractor) extractEvents(doc *goquery.Document) []Event {
	var events []Event

	doc.Find("th").EachWithBreak(func(_ int, th *goquery.Selection) bool {
		if cleanText(th.Text()) != e.profile.EventsHeader {
			return true
		}

		table := th.Closest("table")
		sibling := table.NextAllFiltered("table").First()
		sibling.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() < 2 {
				return
			}
			events = append(events, Event{
				When:        cleanText(cells.Eq(0).Text()),
				Description: cleanText(cells.Eq(1).Text()),
			})
		})

		return false
	})

	return events
}

// cleanText collapses non-breaking spaces and trims the surrounding
// whitespace goquery keeps from the markup.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(s)
}

// decodeLegacyCharset converts Windows-1252/ISO-8859-1 pages (the portal
// is a legacy ASP site and declares them) to UTF-8. Markup without such a
// declaration passes through untouched.
func decodeLegacyCharset(data []byte) []byte {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	lower := strings.ToLower(string(head))
	if !strings.Contains(lower, "charset=iso-8859-1") && !strings.Contains(lower, "charset=windows-1252") {
		return data
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}
