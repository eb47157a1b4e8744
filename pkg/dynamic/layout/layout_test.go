package layout

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/dynamic/field"
	"github.com/goliatone/go-dynform/pkg/query"
)

func servers() []any {
	return []any{
		map[string]any{"name": "web-1", "cpu": 4, "state": "running"},
		map[string]any{"name": "db-1", "cpu": 16, "state": "stopped"},
		map[string]any{"name": "web-2", "cpu": 2, "state": "running"},
	}
}

func tableLayout(kind Kind, extra map[string]any) Layout {
	opts := map[string]any{
		"fields": []any{
			map[string]any{"type": "text", "key": "name", "name": "Name"},
			map[string]any{"type": "number", "key": "cpu", "name": "vCPU"},
			"state",
		},
	}
	for k, v := range extra {
		opts[k] = v
	}
	return Layout{Type: kind, Name: "Servers", Options: opts}
}

func column(records [][]field.Resolved, idx int) []string {
	out := make([]string, len(records))
	for i, row := range records {
		out[i] = row[idx].Display.Text
	}
	return out
}

func TestParseAndDecode(t *testing.T) {
	l, err := Decode([]byte(`{"type":"item","name":"Detail","options":{"root_path":"data","fields":["id"]}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if l.Type != KindItem || l.Name != "Detail" || l.RootPath() != "data" {
		t.Fatalf("unexpected layout: %+v", l)
	}
	fields, err := l.Fields()
	if err != nil || len(fields) != 1 || fields[0].Key != "id" {
		t.Fatalf("fields = %+v, %v", fields, err)
	}

	y, err := DecodeYAML([]byte("type: list\noptions:\n  layouts:\n    - type: raw\n    - type: item\n"))
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	children, err := y.Children()
	if err != nil || len(children) != 2 || children[1].Type != KindItem {
		t.Fatalf("children = %+v, %v", children, err)
	}

	if _, err := Parse(map[string]any{"name": "no type"}); err == nil {
		t.Fatalf("expected missing type error")
	}
}

func TestCompose_Loading(t *testing.T) {
	view, err := NewComposer().Compose(tableLayout(KindTable, nil), servers(), State{Loading: true})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !view.Skeleton || view.Records != nil || view.Columns != nil {
		t.Fatalf("expected bare skeleton, got %+v", view)
	}
}

func TestCompose_Item(t *testing.T) {
	l := Layout{Type: KindItem, Options: field.Options{
		"root_path": "server",
		"fields": []any{
			map[string]any{"key": "name"},
			map[string]any{"type": "size", "key": "disk", "name": "Disk"},
		},
	}}
	data := map[string]any{"server": map[string]any{"name": "web-1", "disk": 1500000}}
	view, err := NewComposer().Compose(l, data, State{})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	got := []string{}
	for _, row := range view.Rows {
		got = append(got, row.Label+"="+row.Display.Text)
	}
	if diff := cmp.Diff([]string{"Name=web-1", "Disk=1.5 MB"}, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestCompose_ItemInfersFields(t *testing.T) {
	view, _ := NewComposer().Compose(Layout{Type: KindItem}, map[string]any{"b": 1, "a": "x", "c": []any{1}}, State{})
	got := []string{}
	for _, row := range view.Rows {
		got = append(got, row.Field.Key+":"+string(row.Field.Type))
	}
	if diff := cmp.Diff([]string{"a:text", "b:text", "c:raw"}, got); diff != "" {
		t.Fatalf("inferred fields mismatch (-want +got):\n%s", diff)
	}
}

func TestCompose_TableSortAndPaging(t *testing.T) {
	l := tableLayout(KindTable, map[string]any{"page_size": 2, "sort_by": "cpu"})
	c := NewComposer()

	view, err := c.Compose(l, servers(), State{})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	wantColumns := []Column{
		{Key: "name", Label: "Name", Type: field.TypeText},
		{Key: "cpu", Label: "vCPU", Type: field.TypeNumber},
		{Key: "state", Label: "State", Type: field.TypeText},
	}
	if diff := cmp.Diff(wantColumns, view.Columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"web-2", "web-1"}, column(view.Records, 0)); diff != "" {
		t.Fatalf("page 1 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(&Paging{Page: 1, PageSize: 2, Total: 3, Pages: 2}, view.Paging); diff != "" {
		t.Fatalf("paging mismatch (-want +got):\n%s", diff)
	}

	view, _ = c.Compose(l, servers(), State{Page: 9, SortBy: "cpu", SortDesc: true})
	if diff := cmp.Diff([]string{"web-2"}, column(view.Records, 0)); diff != "" {
		t.Fatalf("clamped last page mismatch (-want +got):\n%s", diff)
	}
	if view.Paging.Page != 2 || !view.Sort.Desc {
		t.Fatalf("unexpected paging/sort: %+v %+v", view.Paging, view.Sort)
	}
}

func TestCompose_HugePageSize(t *testing.T) {
	c := NewComposer()
	view, err := c.Compose(Layout{Type: KindTable}, servers(), State{PageSize: math.MaxInt, Page: 3})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if len(view.Records) != 3 {
		t.Fatalf("expected every record on one page, got %d", len(view.Records))
	}
	if diff := cmp.Diff(&Paging{Page: 1, PageSize: math.MaxInt, Total: 3, Pages: 1}, view.Paging); diff != "" {
		t.Fatalf("paging mismatch (-want +got):\n%s", diff)
	}

	view, err = c.Compose(tableLayout(KindTable, map[string]any{"page_size": math.MaxInt}), servers(), State{})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if len(view.Records) != 3 || view.Paging.Pages != 1 {
		t.Fatalf("unexpected paging: %+v", view.Paging)
	}
}

func TestCompose_SortMixedValues(t *testing.T) {
	records := []any{
		map[string]any{"name": "c", "size": "large"},
		map[string]any{"name": "a", "size": 10},
		map[string]any{"name": "d"},
		map[string]any{"name": "b", "size": "10"},
		map[string]any{"name": "e", "size": 2},
	}
	l := Layout{Type: KindTable, Options: map[string]any{
		"fields":  []any{"name", "size"},
		"sort_by": "size",
	}}
	want := []string{"d", "e", "a", "b", "c"}

	for _, input := range [][]any{records, {records[4], records[3], records[2], records[1], records[0]}} {
		view, err := NewComposer().Compose(l, input, State{})
		if err != nil {
			t.Fatalf("compose: %v", err)
		}
		if diff := cmp.Diff(want, column(view.Records, 0)); diff != "" {
			t.Fatalf("sort order mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestCompose_SimpleTableHasNoPaging(t *testing.T) {
	view, _ := NewComposer().Compose(tableLayout(KindSimpleTable, map[string]any{"page_size": 1}), servers(), State{})
	if view.Paging != nil || view.Sort != nil || len(view.Records) != 3 {
		t.Fatalf("simple table should show every row: %+v", view)
	}
	if view.KeyItems != nil {
		t.Fatalf("simple table should not publish keys")
	}
}

func TestCompose_QuerySearchTable(t *testing.T) {
	l := tableLayout(KindQuerySearchTable, nil)
	c := NewComposer()

	view, err := c.Compose(l, servers(), State{})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	wantKeys := []query.KeyItem{
		{Label: "Name", Name: "name", DataType: query.DataTypeString, Operators: query.DefaultOperators(query.DataTypeString)},
		{Label: "vCPU", Name: "cpu", DataType: query.DataTypeFloat, Operators: query.DefaultOperators(query.DataTypeFloat)},
		{Label: "State", Name: "state", DataType: query.DataTypeString, Operators: query.DefaultOperators(query.DataTypeString)},
	}
	if diff := cmp.Diff(wantKeys, view.KeyItems); diff != "" {
		t.Fatalf("key items mismatch (-want +got):\n%s", diff)
	}

	filter, err := query.ParseText("cpu:>=4", view.KeyItems...)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	state, err := query.ParseText("state:=running", view.KeyItems...)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	view, _ = c.Compose(l, servers(), State{Filters: []query.QueryItem{filter, state}})
	if diff := cmp.Diff([]string{"web-1"}, column(view.Records, 0)); diff != "" {
		t.Fatalf("filtered rows mismatch (-want +got):\n%s", diff)
	}
	if view.Paging.Total != 1 || len(view.Filters) != 2 {
		t.Fatalf("unexpected paging or filters: %+v %v", view.Paging, view.Filters)
	}
}

func TestCompose_ListAndPopup(t *testing.T) {
	l := Layout{Type: KindPopup, Name: "Details", Options: field.Options{
		"layouts": []any{
			map[string]any{"type": "item", "options": map[string]any{"fields": []any{"name"}}},
			map[string]any{"type": "raw", "options": map[string]any{"root_path": "meta"}},
		},
	}}
	data := map[string]any{"name": "web-1", "meta": map[string]any{"zone": "a"}}
	view, err := NewComposer().Compose(l, data, State{})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if view.Trigger != "Details" || len(view.Children) != 2 {
		t.Fatalf("unexpected popup: %+v", view)
	}
	if got := view.Children[0].Rows[0].Display.Text; got != "web-1" {
		t.Fatalf("item child = %q", got)
	}
	if got := view.Children[1].Text; got != "{\n  \"zone\": \"a\"\n}" {
		t.Fatalf("raw child = %q", got)
	}
}

func TestCompose_UnknownKindDegradesToRaw(t *testing.T) {
	l := Layout{Type: KindList, Options: field.Options{
		"layouts": []any{
			map[string]any{"type": "carousel"},
			map[string]any{"type": "item", "options": map[string]any{"fields": []any{"a"}}},
		},
	}}
	view, err := NewComposer().Compose(l, map[string]any{"a": 1}, State{})
	if !errors.Is(err, ErrUnsupportedLayout) {
		t.Fatalf("expected ErrUnsupportedLayout, got %v", err)
	}
	bad := view.Children[0]
	if bad.Type != KindRaw || bad.Text != "{\n  \"a\": 1\n}" || bad.Error == "" {
		t.Fatalf("unexpected degraded view: %+v", bad)
	}
	if got := view.Children[1].Rows[0].Display.Text; got != "1" {
		t.Fatalf("sibling affected: %q", got)
	}
}

func TestCompose_MarkdownAndHTML(t *testing.T) {
	c := NewComposer()
	view, _ := c.Compose(Layout{Type: KindMarkdown}, map[string]any{"en": "# Hello", "ko": "# 안녕"}, State{})
	if !strings.Contains(view.HTML, "<h1") || !strings.Contains(view.HTML, "Hello") {
		t.Fatalf("markdown html = %q", view.HTML)
	}
	view, _ = c.Compose(Layout{Type: KindHTML, Options: field.Options{"html": `<b>ok</b><script>alert(1)</script>`}}, nil, State{})
	if view.HTML != "<b>ok</b>" {
		t.Fatalf("html not sanitized: %q", view.HTML)
	}
}
