package portal

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/automatizamg/seilist/internal/dom"
	"github.com/automatizamg/seilist/internal/model"
)

// Resolver turns an href into an absolute URL.
type Resolver func(href string) string

// ExtractStats counts the rows seen while extracting one group of one page.
type ExtractStats struct {
	Rows      int
	Extracted int
	Skipped   int
}

// Add accumulates o into s.
func (s *ExtractStats) Add(o ExtractStats) {
	s.Rows += o.Rows
	s.Extracted += o.Extracted
	s.Skipped += o.Skipped
}

var (
	tooltipPattern       = regexp.MustCompile(`(?i)infraTooltipMostrar\('([^']*)',\s*'([^']*)'\)`)
	markerTooltipPattern = regexp.MustCompile(`infraTooltipMostrar\('([^']*)'`)
)

// ExtractGroup returns the records listed in the result table of group c.
// A missing table yields no records. Rows that cannot be read are skipped
// and counted, they never fail the page.
func ExtractGroup(doc dom.Node, c model.Category, resolve Resolver) ([]model.Record, ExtractStats) {
	var stats ExtractStats

	table, ok := doc.Find(groupTableID(c))
	if !ok {
		return nil, stats
	}

	rows := table.FindAll(selectorRecordRows)
	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		stats.Rows++
		rec, ok := extractRowSafe(row, c, resolve)
		if !ok {
			stats.Skipped++
			continue
		}
		stats.Extracted++
		records = append(records, rec)
	}
	return records, stats
}

// extractRowSafe runs ExtractRow turning a panic into a skipped row.
func extractRowSafe(row dom.Node, c model.Category, resolve Resolver) (rec model.Record, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			rec, ok = model.Record{}, false
		}
	}()
	return ExtractRow(row, c, resolve)
}

// ExtractRow reads one result row. It returns false when the row has no
// process link or no recognizable process number.
func ExtractRow(row dom.Node, c model.Category, resolve Resolver) (model.Record, bool) {
	link, ok := row.Find(selectorProcessLink)
	if !ok {
		return model.Record{}, false
	}

	href := strings.TrimSpace(link.AttrOr("href", ""))
	if href == "" {
		return model.Record{}, false
	}

	var number string
	for _, candidate := range []string{link.Text(), link.AttrOr("title", ""), href} {
		if n, found := FindProcessNumber(candidate); found {
			number = n
			break
		}
	}
	if number == "" {
		return model.Record{}, false
	}

	detailURL := resolve(href)
	rec := model.Record{
		Number:          number,
		Category:        c,
		Viewed:          link.HasClass(classViewed),
		URL:             detailURL,
		ID:              queryParam(detailURL, paramProcedureID),
		Hash:            queryParam(detailURL, paramHash),
		HasNewDocuments: has(row, selectorNewDocsIcon),
		HasAnnotations:  has(row, selectorAnnotationIcon),
	}
	rec.Title, rec.Type = ParseTooltip(link.AttrOr("onmouseover", ""))

	if a, ok := row.Find(selectorResponsibleLink); ok {
		rec.ResponsibleName = strings.TrimSpace(strings.TrimPrefix(a.AttrOr("title", ""), responsiblePrefix))
		rec.ResponsibleID = a.Text()
	}

	for _, img := range row.FindAll(selectorMarkerIcon) {
		a, ok := img.Closest("a")
		if !ok {
			continue
		}
		m := markerTooltipPattern.FindStringSubmatch(a.AttrOr("onmouseover", ""))
		if m == nil {
			continue
		}
		if label := strings.TrimSpace(m[1]); label != "" {
			rec.Markers = append(rec.Markers, label)
		}
	}

	return rec, true
}

// ParseTooltip extracts the title and type text from an inline
// infraTooltipMostrar('title', 'type') handler.
func ParseTooltip(handler string) (title, typ string) {
	m := tooltipPattern.FindStringSubmatch(handler)
	if m == nil {
		return "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

func queryParam(rawURL, name string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get(name)
}

func has(n dom.Node, selector string) bool {
	_, ok := n.Find(selector)
	return ok
}
