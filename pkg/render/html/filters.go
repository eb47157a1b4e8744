package html

import (
	"github.com/dustin/go-humanize"
	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

// templateFilters are registered on the embedded engine.
func templateFilters() map[string]pongo2.FilterFunction {
	return map[string]pongo2.FilterFunction{
		"comma": filterComma,
	}
}

// filterComma groups thousands: 1234567 becomes "1,234,567". Context values
// arrive as float64, which pongo2 would otherwise print with six decimals.
func filterComma(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if !in.IsNumber() {
		return in, nil
	}
	return pongo2.AsValue(humanize.Commaf(in.Float())), nil
}

// linkPolicy keeps anchors whose href is relative or uses a web or mail
// scheme. Anything else loses the anchor and keeps its text.
func linkPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(true)
	return p
}
