package transport

import (
	"testing"

	"github.com/valyala/fasthttp"
)

func TestParseListQueryDefaults(t *testing.T) {
	var args fasthttp.Args

	query := ParseListQuery(&args)
	if query.Filter != "all" {
		t.Errorf("default filter = %q", query.Filter)
	}
	if query.Sort != "date_desc" {
		t.Errorf("default sort = %q", query.Sort)
	}
	if query.Search != "" {
		t.Errorf("default search = %q", query.Search)
	}
}

func TestParseListQueryPassesValuesThrough(t *testing.T) {
	var args fasthttp.Args
	args.Set("filter", "active")
	args.Set("sort", "alpha")
	args.Set("search", "milk")

	query := ParseListQuery(&args)
	if query.Filter != "active" || query.Sort != "alpha" || query.Search != "milk" {
		t.Errorf("query = %+v", query)
	}
}

func TestParseTaskForm(t *testing.T) {
	var args fasthttp.Args
	args.Set("content", "Buy milk")
	args.Set("due_date", "2025-03-10")

	form := ParseTaskForm(&args)
	if form.Content != "Buy milk" || form.DueDate != "2025-03-10" {
		t.Errorf("form = %+v", form)
	}
}
