package pagination

import (
	"net/url"
	"testing"
)

func TestPage_Math(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		perPage  int
		page     int
		wantLast int
		wantNext bool
		wantPrev bool
	}{
		{"middle page", 9, 3, 2, 3, true, true},
		{"empty collection", 0, 3, 1, 1, false, false},
		{"first page", 10, 3, 1, 4, true, false},
		{"last page", 10, 3, 4, 4, false, true},
		{"exact fit", 6, 3, 2, 2, false, true},
		{"single item", 1, 30, 1, 1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Page[int]{TotalCount: tt.total, ItemsPerPage: tt.perPage, PageNumber: tt.page}
			if got := p.LastPageNumber(); got != tt.wantLast {
				t.Errorf("LastPageNumber() = %d, want %d", got, tt.wantLast)
			}
			if got := p.HasNext(); got != tt.wantNext {
				t.Errorf("HasNext() = %v, want %v", got, tt.wantNext)
			}
			if got := p.HasPrevious(); got != tt.wantPrev {
				t.Errorf("HasPrevious() = %v, want %v", got, tt.wantPrev)
			}
		})
	}
}

func TestPage_Links(t *testing.T) {
	p := Page[int]{TotalCount: 9, ItemsPerPage: 3, PageNumber: 2}
	links := p.Links("http://localhost/p/blog-postings")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"self", links.Self, "http://localhost/p/blog-postings?page=2&per_page=3"},
		{"first", links.First, "http://localhost/p/blog-postings?page=1&per_page=3"},
		{"last", links.Last, "http://localhost/p/blog-postings?page=3&per_page=3"},
		{"next", links.Next, "http://localhost/p/blog-postings?page=3&per_page=3"},
		{"previous", links.Previous, "http://localhost/p/blog-postings?page=1&per_page=3"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}

	empty := Page[int]{ItemsPerPage: 3, PageNumber: 1}.Links("http://localhost/p/x")
	if empty.Next != "" || empty.Previous != "" {
		t.Errorf("empty page links = %+v, want no next/previous", empty)
	}
}

func TestBuildURL_KeepsQuery(t *testing.T) {
	got := BuildURL("http://localhost/p/x?embedded=author", 2, 10)
	want := "http://localhost/p/x?embedded=author&page=2&per_page=10"
	if got != want {
		t.Errorf("BuildURL() = %q, want %q", got, want)
	}
	if BuildURL("", 1, 1) != "" {
		t.Error("BuildURL(\"\") should be empty")
	}
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{Page: 1, PerPage: 20}},
		{"page=3&per_page=5", Params{Page: 3, PerPage: 5}},
		{"page=0&per_page=-1", Params{Page: 1, PerPage: 20}},
		{"page=abc", Params{Page: 1, PerPage: 20}},
		{"per_page=500", Params{Page: 1, PerPage: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			if got := ParseParams(q, 20, 50); got != tt.want {
				t.Errorf("ParseParams(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestParams_OffsetLimit(t *testing.T) {
	p := Params{Page: 3, PerPage: 10}
	if p.Offset() != 20 || p.Limit() != 10 {
		t.Errorf("Offset/Limit = %d/%d, want 20/10", p.Offset(), p.Limit())
	}
}

func TestPage_Erase(t *testing.T) {
	p := New([]string{"a", "b"}, 5, Params{Page: 1, PerPage: 2}).Erase()
	if len(p.Items) != 2 || p.Items[1] != "b" || p.TotalCount != 5 {
		t.Errorf("Erase() = %+v", p)
	}
}
