package loop

import (
	"context"
	"strings"
	"testing"

	"osrs_tax_columns/internal/columns"
	"osrs_tax_columns/internal/dom"
	"osrs_tax_columns/internal/hidden"
	"osrs_tax_columns/internal/kvstore"
	"osrs_tax_columns/internal/locate"
	"osrs_tax_columns/internal/sorting"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const hostPage = `<html><body><div id="app">
<table class="prices">
<thead><tr><th>Item name</th><th>Buy price</th><th>Sell price</th><th>Margin</th><th>Buy limit</th><th>Potential profit</th></tr></thead>
<tbody>
<tr><td>Coal</td><td>140</td><td>150</td><td>10</td><td>13,000</td><td>130k</td></tr>
<tr><td>Dragon bones</td><td>950</td><td>1,000</td><td>50</td><td>10</td><td>500</td></tr>
<tr><td>Yew logs</td><td>460</td><td>500</td><td>40</td><td>25k</td><td>1m</td></tr>
</tbody></table></div></body></html>`

func newSession(t *testing.T, confirm ConfirmFunc) (*Session, *kvstore.Memory) {
	t.Helper()
	kv := kvstore.NewMemory()
	return NewSession(hidden.Load(context.Background(), kv, hidden.DefaultKey), confirm), kv
}

func parse(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func items(doc *html.Node) []string {
	table, _ := locate.Find(doc)
	var out []string
	for _, tr := range locate.Rows(table.Node) {
		if cell := dom.FindFirst(tr, dom.Class(columns.HideCellClass)); cell != nil {
			item, _ := dom.Attr(cell, columns.ItemAttr)
			out = append(out, item)
		}
	}
	return out
}

func rowFor(t *testing.T, doc *html.Node, item string) *html.Node {
	t.Helper()
	target := HideClick{Item: item}.Target(doc)
	require.NotNil(t, target)
	return dom.Closest(target, "tr")
}

func TestPassWithoutTableIsNoop(t *testing.T) {
	s, _ := newSession(t, nil)
	doc := parse(t, `<table><thead><tr><th>Other</th></tr></thead></table>`)

	res := s.Pass(doc)
	assert.False(t, res.Found)
	assert.False(t, res.Changed())
	assert.Nil(t, dom.ByID(doc, columns.UnhideButtonID))
}

func TestPassIsIdempotent(t *testing.T) {
	s, _ := newSession(t, nil)
	doc := parse(t, hostPage)

	first := s.Pass(doc)
	assert.True(t, first.Found)
	assert.Equal(t, 3, first.Rows)
	assert.Equal(t, 6, first.CellWrites)
	assert.False(t, first.Sorted)

	var before strings.Builder
	require.NoError(t, html.Render(&before, doc))

	second := s.Pass(doc)
	assert.Equal(t, 0, second.CellWrites)
	assert.Equal(t, 0, second.Structural)
	assert.False(t, second.Changed())

	var after strings.Builder
	require.NoError(t, html.Render(&after, doc))
	assert.Equal(t, before.String(), after.String())

	assert.Len(t, dom.FindAll(doc, dom.Class(columns.Margin.HeaderClass())), 1)
	assert.Len(t, dom.FindAll(doc, dom.Class(columns.Margin.CellClass())), 3)
	assert.Len(t, dom.FindAll(doc, dom.Tag("button")), 1)
}

func TestHeaderClickSortsAndToggles(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, nil)
	doc := parse(t, hostPage)
	s.Pass(doc)

	// profits: coal 91,000, dragon bones 300, yew logs 750,000
	res, handled := s.Click(ctx, doc, HeaderClick{Column: columns.Profit}.Target(doc))
	require.True(t, handled)
	assert.True(t, res.Sorted)
	assert.False(t, s.NeedsSort)
	assert.Equal(t, []string{"Yew logs", "Coal", "Dragon bones"}, items(doc))
	assert.Equal(t, "Total Profit (Post-Tax) ▼", dom.Text(HeaderClick{Column: columns.Profit}.Target(doc)))

	_, handled = s.Click(ctx, doc, HeaderClick{Column: columns.Profit}.Target(doc))
	require.True(t, handled)
	assert.Equal(t, sorting.State{Column: columns.Profit, Direction: sorting.Ascending}, s.Sort)
	assert.Equal(t, []string{"Dragon bones", "Coal", "Yew logs"}, items(doc))

	// margins: coal 7, dragon bones 30, yew logs 30; descending keeps ties in place
	_, handled = s.Click(ctx, doc, HeaderClick{Column: columns.Margin}.Target(doc))
	require.True(t, handled)
	assert.Equal(t, []string{"Dragon bones", "Yew logs", "Coal"}, items(doc))

	// without a change the next pass does not sort again
	assert.False(t, s.Pass(doc).Sorted)
}

func TestHideClickPersistsAndDefersSort(t *testing.T) {
	ctx := context.Background()
	s, kv := newSession(t, nil)
	doc := parse(t, hostPage)
	s.Pass(doc)
	s.SortBy(doc, columns.Profit)

	_, handled := s.Click(ctx, doc, HideClick{Item: "Dragon bones"}.Target(doc))
	require.True(t, handled)
	assert.True(t, dom.Hidden(rowFor(t, doc, "Dragon bones")))
	assert.True(t, s.NeedsSort)

	raw, ok, err := kv.Get(ctx, hidden.DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `["Dragon bones"]`, raw)

	res := s.Pass(doc)
	assert.True(t, res.Sorted)
	assert.False(t, s.NeedsSort)
	assert.Equal(t, "Unhide All Items (1)", dom.Text(dom.ByID(doc, columns.UnhideButtonID)))
	// hidden rows stay in the table
	assert.Equal(t, []string{"Yew logs", "Coal", "Dragon bones"}, items(doc))
}

func TestLabelRefreshIsPublishedWithoutSorting(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, nil)
	doc := parse(t, hostPage)
	s.Pass(doc)

	require.True(t, s.HideRow(ctx, rowFor(t, doc, "Coal"), "Coal"))
	res := s.Pass(doc)
	assert.Equal(t, 1, res.Cosmetic)
	assert.Equal(t, 0, res.Structural)
	assert.False(t, res.Sorted)
	assert.True(t, res.Changed())
	assert.Equal(t, "Unhide All Items (1)", dom.Text(dom.ByID(doc, columns.UnhideButtonID)))

	assert.False(t, s.Pass(doc).Changed())
}

func TestUnhideAllRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	answer := false
	var prompts []string
	s, kv := newSession(t, func(prompt string) bool {
		prompts = append(prompts, prompt)
		return answer
	})
	doc := parse(t, hostPage)
	s.Pass(doc)
	s.HideRow(ctx, rowFor(t, doc, "Coal"), "Coal")

	_, handled := s.Click(ctx, doc, UnhideAllClick{}.Target(doc))
	assert.False(t, handled)
	assert.True(t, s.Hidden.Has("Coal"))

	answer = true
	res, handled := s.Click(ctx, doc, UnhideAllClick{}.Target(doc))
	require.True(t, handled)
	assert.True(t, res.Found)
	assert.Equal(t, []string{unhidePrompt, unhidePrompt}, prompts)
	assert.False(t, s.Hidden.Has("Coal"))
	assert.False(t, dom.Hidden(rowFor(t, doc, "Coal")))
	assert.Equal(t, "Unhide All Items (0)", dom.Text(dom.ByID(doc, columns.UnhideButtonID)))

	_, ok, err := kv.Get(ctx, hidden.DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnhideAllWithoutConfirmCapability(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, nil)
	doc := parse(t, hostPage)
	s.Pass(doc)
	s.HideRow(ctx, nil, "Coal")

	_, handled := s.UnhideAll(ctx, doc)
	assert.False(t, handled)
	assert.True(t, s.Hidden.Has("Coal"))
}

func TestHostRerenderIsReaugmented(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, nil)
	doc := parse(t, hostPage)
	s.Pass(doc)
	s.SortBy(doc, columns.Profit)
	s.HideRow(ctx, rowFor(t, doc, "Yew logs"), "Yew logs")

	// the host throws the whole document away and renders it again
	fresh := parse(t, hostPage)
	res := s.Pass(fresh)
	assert.True(t, res.Found)
	assert.True(t, res.Sorted)
	assert.Equal(t, []string{"Yew logs", "Coal", "Dragon bones"}, items(fresh))
	assert.True(t, dom.Hidden(rowFor(t, fresh, "Yew logs")))
	assert.Len(t, dom.FindAll(fresh, dom.Class(columns.HideHeaderClass)), 1)
}

func TestClickOutsideInteractiveElements(t *testing.T) {
	s, _ := newSession(t, nil)
	doc := parse(t, hostPage)
	s.Pass(doc)

	nameCell := dom.FindFirst(doc, func(n *html.Node) bool {
		return dom.IsElement(n, "td") && dom.Text(n) == "Coal"
	})
	require.NotNil(t, nameCell)

	_, handled := s.Click(context.Background(), doc, nameCell)
	assert.False(t, handled)
}
