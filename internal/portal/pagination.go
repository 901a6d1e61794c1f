package portal

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/automatizamg/seilist/internal/dom"
	"github.com/automatizamg/seilist/internal/form"
	"github.com/automatizamg/seilist/internal/model"
	"github.com/automatizamg/seilist/internal/session"
)

var (
	captionTotalPattern = regexp.MustCompile(`(\d+)\s+registros`)
	captionRangePattern = regexp.MustCompile(`-\s*(\d+)\s*a\s*(\d+)`)
)

// ReadPagination returns the page geometry of every group.
func ReadPagination(doc dom.Node) map[model.Category]model.PaginationInfo {
	out := make(map[model.Category]model.PaginationInfo, len(model.Categories))
	for _, c := range model.Categories {
		out[c] = ReadGroupPagination(doc, c)
	}
	return out
}

// ReadGroupPagination infers the page geometry of group c.
//
// The table caption ("15 registros - 1 a 10") is the primary source. When
// it says nothing, the hidden item fields are used, then the number of
// rendered rows. The current page comes from the hidden current-page
// field and defaults to 0.
func ReadGroupPagination(doc dom.Node, c model.Category) model.PaginationInfo {
	f := fieldsFor(c)

	var total, pageSize, rows int
	if table, ok := doc.Find(groupTableID(c)); ok {
		if caption, ok := table.Find(selectorCaption); ok {
			total, pageSize = ParseCaption(caption.Text())
		}
		rows = len(table.FindAll(selectorRecordRows))
	}

	if pageSize <= 0 {
		if n, ok := intField(doc, f.ItemCount); ok && n > 0 {
			pageSize = n
		}
	}
	if total <= 0 {
		if v, ok := fieldValue(doc, f.ItemList); ok {
			total = countItems(v)
		}
	}
	if pageSize <= 0 {
		pageSize = rows
	}
	if total <= 0 {
		total = rows
	}
	if pageSize <= 0 {
		pageSize = total
	}

	current, _ := intField(doc, f.CurrentPage)
	return model.NewPaginationInfo(total, current, pageSize)
}

// ParseCaption reads the record total and the page size from a result
// table caption. Missing values are 0; a caption with a total but no range
// reports the total as the page size.
func ParseCaption(text string) (total, pageSize int) {
	text = strings.ReplaceAll(text, "\u00a0", " ")
	if m := captionTotalPattern.FindStringSubmatch(text); m != nil {
		total, _ = strconv.Atoi(m[1])
	}
	if m := captionRangePattern.FindStringSubmatch(text); m != nil {
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		pageSize = max(0, to-from+1)
	}
	if pageSize == 0 && total > 0 {
		pageSize = total
	}
	return total, pageSize
}

// AdvancePage posts the results form of markup asking for page index
// target (zero-based) of group c and returns the new markup. The other
// group's paging fields are sent unchanged.
//
// A results form without the group's current-page field means the paging
// protocol is not available, which fails the run.
func (p *Portal) AdvancePage(ctx context.Context, markup string, c model.Category, target int, referer string) (string, error) {
	ctx, span := p.startSpan(ctx, "AdvancePage",
		attribute.String("group", string(c)),
		attribute.Int("page", target+1),
	)
	defer span.End()

	doc, err := dom.Parse(markup)
	if err != nil {
		return "", failSpan(span, model.NewListingError("parse control screen", err))
	}
	formNode, ok := doc.Find(selectorResultsForm)
	if !ok {
		return "", failSpan(span, model.NewListingError("results form missing", model.ErrFormNotFound))
	}

	state := form.Serialize(formNode)
	f := fieldsFor(c)
	if !state.Has(f.CurrentPage) {
		return "", failSpan(span, model.NewListingError(
			fmt.Sprintf("group %s has no %s field", c, f.CurrentPage), model.ErrPaginationUnavailable))
	}

	value := strconv.Itoa(target)
	for _, name := range []string{f.TopPager, f.BottomPager} {
		if state.Has(name) {
			state.Set(name, value)
		}
	}
	state.Set(f.CurrentPage, value)

	actionURL := referer
	if action := form.Action(formNode); action != "" {
		actionURL = p.sess.Resolve(action)
	}

	p.logger.Debug("advancing page", "group", c, "page", target+1, "url", actionURL)
	page, err := p.sess.PostForm(ctx, actionURL, state,
		session.WithReferer(referer),
		session.WithTimeout(p.settings.PaginationTimeout),
		session.WithSnapshot(pageSnapshotName(c, target)),
	)
	if err != nil {
		return "", failSpan(span, model.NewListingError(
			fmt.Sprintf("load page %d of %s", target+1, c), err))
	}
	return page.HTML, nil
}

func pageSnapshotName(c model.Category, target int) string {
	return fmt.Sprintf("controle_%s_%d.html", strings.ToLower(string(c)), target+1)
}

func fieldValue(doc dom.Node, id string) (string, bool) {
	n, ok := doc.Find("#" + id)
	if !ok {
		return "", false
	}
	v := strings.TrimSpace(n.AttrOr("value", ""))
	return v, v != ""
}

func intField(doc dom.Node, id string) (int, bool) {
	v, ok := fieldValue(doc, id)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func countItems(list string) int {
	n := 0
	for _, item := range strings.Split(list, ",") {
		if strings.TrimSpace(item) != "" {
			n++
		}
	}
	return n
}
