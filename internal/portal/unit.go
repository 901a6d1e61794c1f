package portal

import (
	"context"
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/automatizamg/seilist/internal/dom"
	"github.com/automatizamg/seilist/internal/form"
	"github.com/automatizamg/seilist/internal/model"
	"github.com/automatizamg/seilist/internal/session"
)

var (
	onclickRedirectPattern = regexp.MustCompile(`window\.location\.href='([^']+)'`)
	unitSlashPattern       = regexp.MustCompile(`\s*/\s*`)
)

// suggestionThreshold is the minimum Jaro-Winkler similarity for a unit
// to be suggested when the target is not listed.
const suggestionThreshold = 0.8

// NormalizeUnit returns the comparison form of a unit name: whitespace
// collapsed, no spaces around "/", upper case.
func NormalizeUnit(name string) string {
	name = strings.ReplaceAll(name, "\u00a0", " ")
	name = strings.Join(strings.Fields(name), " ")
	name = unitSlashPattern.ReplaceAllString(name, "/")
	return cases.Upper(language.BrazilianPortuguese).String(name)
}

// SameUnit reports whether a and b name the same unit.
func SameUnit(a, b string) bool {
	return NormalizeUnit(a) == NormalizeUnit(b)
}

// CurrentUnit returns the active unit shown on a control screen and the
// absolute URL of the unit selection page. Both are empty when the page
// has no unit indicator.
func (p *Portal) CurrentUnit(markup string) (name, switchURL string) {
	doc, err := dom.Parse(markup)
	if err != nil {
		return "", ""
	}
	return currentUnit(doc, p.sess.Resolve)
}

func currentUnit(doc dom.Node, resolve Resolver) (name, switchURL string) {
	a, ok := doc.Find(selectorUnitIndicator)
	if !ok {
		return "", ""
	}
	name = a.Text()
	if m := onclickRedirectPattern.FindStringSubmatch(a.AttrOr("onclick", "")); m != nil {
		switchURL = resolve(m[1])
	}
	return name, switchURL
}

// SwitchResult describes the outcome of a unit switch attempt.
type SwitchResult struct {
	// Switched is true when the portal answered with the control screen.
	Switched bool

	// HTML is the response to the selection post, if one was sent.
	HTML string

	// UnitID is the portal identifier of the matched unit.
	UnitID string

	// Reason explains why the switch did not happen.
	Reason string

	// Suggestion is the listed unit closest to the target when the target
	// was not found.
	Suggestion string

	// Available lists the unit names found on the selection page.
	Available []string
}

type unitRow struct {
	name       string
	normalized string
	id         string
}

// SwitchUnit selects target on the unit selection page at switchURL.
//
// Only transport failures are returned as errors. A missing table, an
// unknown unit or a submission that does not lead back to the control
// screen produce a result with Switched false and a Reason.
func (p *Portal) SwitchUnit(ctx context.Context, switchURL, target string) (*SwitchResult, error) {
	ctx, span := p.startSpan(ctx, "SwitchUnit", attribute.String("unit", target))
	defer span.End()

	p.logger.Info("loading unit selection page", "url", switchURL)
	page, err := p.sess.Get(ctx, switchURL, session.WithSnapshot(snapshotUnitList))
	if err != nil {
		return nil, failSpan(span, model.NewListingError("load unit selection page", err))
	}

	doc, err := dom.Parse(page.HTML)
	if err != nil {
		return nil, failSpan(span, model.NewListingError("parse unit selection page", err))
	}

	table, ok := findUnitTable(doc)
	if !ok {
		p.sess.Snapshot(snapshotUnitListMiss, page.HTML)
		return &SwitchResult{Reason: "unit table not found"}, nil
	}

	rows := unitRows(table)
	res := &SwitchResult{Available: make([]string, 0, len(rows))}
	for _, r := range rows {
		res.Available = append(res.Available, r.name)
	}

	want := NormalizeUnit(target)
	var match *unitRow
	for i := range rows {
		if rows[i].normalized != want {
			continue
		}
		if rows[i].id == "" {
			p.logger.Warn("unit row has no selection value", "unit", rows[i].name)
			continue
		}
		match = &rows[i]
		break
	}
	if match == nil {
		res.Reason = "unit not listed"
		res.Suggestion = closestUnit(want, rows)
		return res, nil
	}
	res.UnitID = match.id

	formNode, ok := doc.Find(selectorUnitForm)
	if !ok {
		formNode, ok = doc.Find(selectorAnyForm)
	}
	if !ok {
		res.Reason = "unit selection form not found"
		return res, nil
	}

	state := form.Serialize(formNode)
	state.Set(fieldUnitSelect, match.id)
	state.Set(fieldUnitCheckbox, match.id)

	actionURL := switchURL
	if action := form.Action(formNode); action != "" {
		actionURL = p.sess.Resolve(action)
	}

	p.logger.Info("selecting unit", "unit", match.name, "id", match.id)
	resp, err := p.sess.PostForm(ctx, actionURL, state,
		session.WithReferer(switchURL),
		session.WithSnapshot(snapshotUnitSwitch),
	)
	if err != nil {
		return nil, failSpan(span, model.NewListingError("submit unit selection", err))
	}

	res.HTML = resp.HTML
	res.Switched = IsControlScreen(resp.HTML)
	if !res.Switched {
		res.Reason = "response is not the control screen"
	}
	return res, nil
}

// findUnitTable locates the unit list by id or class convention, then by
// a caption mentioning units.
func findUnitTable(doc dom.Node) (dom.Node, bool) {
	if t, ok := doc.Find(selectorUnitTable); ok {
		return t, true
	}
	for _, t := range doc.FindAll(selectorAnyTable) {
		caption, ok := t.Find(selectorCaption)
		if ok && strings.Contains(strings.ToLower(caption.Text()), markerUnitCaption) {
			return t, true
		}
	}
	return nil, false
}

func unitRows(table dom.Node) []unitRow {
	trs := table.FindAll("tbody tr")
	if len(trs) == 0 {
		trs = table.FindAll("tr")
	}

	var rows []unitRow
	for _, tr := range trs {
		if has(tr, "th") {
			continue
		}
		cells := tr.FindAll("td")
		if len(cells) < 2 {
			continue
		}
		name := cells[1].Text()
		row := unitRow{name: name, normalized: NormalizeUnit(name)}
		if radio, ok := tr.Find(selectorUnitRadio); ok {
			row.id = strings.TrimSpace(radio.AttrOr("value", ""))
		}
		rows = append(rows, row)
	}
	return rows
}

// closestUnit returns the listed unit most similar to want, or "" when
// none is similar enough.
func closestUnit(want string, rows []unitRow) string {
	best, bestScore := "", 0.0
	for _, r := range rows {
		score := matchr.JaroWinkler(want, r.normalized, false)
		if score > bestScore {
			best, bestScore = r.name, score
		}
	}
	if bestScore < suggestionThreshold {
		return ""
	}
	return best
}
