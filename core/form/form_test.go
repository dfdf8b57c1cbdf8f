package form

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"golang.org/x/text/language"
)

type posting struct {
	Headline    string
	DisplayDate time.Time
	WordCount   int64
	Rating      float64
	Draft       bool
	Keywords    []string

	calls map[string]int
}

func (p *posting) called(key string) {
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[key]++
}

func postingForm(t *testing.T) *Form[posting] {
	t.Helper()
	f, err := New("c/blog-postings", func() posting { return posting{} }).
		Title(Text("Blog posting")).
		Description(func(lang language.Tag) string {
			if lang == language.Spanish {
				return "Crea una entrada"
			}
			return "Creates a blog posting"
		}).
		RequiredString("headline", func(p *posting, v string) { p.called("headline"); p.Headline = v }).
		RequiredDate("displayDate", func(p *posting, v time.Time) { p.called("displayDate"); p.DisplayDate = v }).
		OptionalLong("wordCount", func(p *posting, v int64) { p.called("wordCount"); p.WordCount = v }).
		OptionalDouble("rating", func(p *posting, v float64) { p.called("rating"); p.Rating = v }).
		OptionalBoolean("draft", func(p *posting, v bool) { p.called("draft"); p.Draft = v }).
		OptionalStringList("keywords", func(p *posting, v []string) { p.called("keywords"); p.Keywords = v }).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return f
}

func TestForm_Build_WellTyped(t *testing.T) {
	f := postingForm(t)

	body := map[string]any{
		"headline":    "Hello",
		"displayDate": "2020-01-01T00:00Z",
		"wordCount":   float64(120),
		"rating":      json.Number("4.5"),
		"draft":       true,
		"keywords":    []any{"go", "rest"},
	}

	p, err := f.Build(body)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if p.Headline != "Hello" {
		t.Errorf("Headline = %q, want Hello", p.Headline)
	}
	want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if !p.DisplayDate.Equal(want) {
		t.Errorf("DisplayDate = %v, want %v", p.DisplayDate, want)
	}
	if p.WordCount != 120 {
		t.Errorf("WordCount = %d, want 120", p.WordCount)
	}
	if p.Rating != 4.5 {
		t.Errorf("Rating = %v, want 4.5", p.Rating)
	}
	if !p.Draft {
		t.Error("Draft = false, want true")
	}
	if len(p.Keywords) != 2 || p.Keywords[1] != "rest" {
		t.Errorf("Keywords = %v", p.Keywords)
	}

	for _, key := range []string{"headline", "displayDate", "wordCount", "rating", "draft", "keywords"} {
		if p.calls[key] != 1 {
			t.Errorf("setter %q called %d times, want 1", key, p.calls[key])
		}
	}
}

func TestForm_Build_OptionalAbsentSkipsSetter(t *testing.T) {
	f := postingForm(t)

	p, err := f.Build(map[string]any{
		"headline":    "Hello",
		"displayDate": "2020-01-01",
		"rating":      nil,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, key := range []string{"wordCount", "rating", "draft", "keywords"} {
		if p.calls[key] != 0 {
			t.Errorf("setter %q called for absent optional field", key)
		}
	}
}

func TestForm_Build_IntegralLong(t *testing.T) {
	f := postingForm(t)

	tests := []struct {
		name string
		raw  any
		want int64
	}{
		{"float64 with zero fraction", float64(3.0), 3},
		{"json number with zero fraction", json.Number("3.0"), 3},
		{"json number integer", json.Number("-42"), -42},
		{"largest int64", json.Number("9223372036854775807"), 9223372036854775807},
		{"smallest int64 as float", float64(-1 << 63), -1 << 63},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := f.Build(map[string]any{"headline": "x", "displayDate": "2020-01-01", "wordCount": tt.raw})
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if p.WordCount != tt.want {
				t.Errorf("WordCount = %d, want %d", p.WordCount, tt.want)
			}
		})
	}
}

func TestForm_Build_Failures(t *testing.T) {
	f := postingForm(t)

	tests := []struct {
		name     string
		body     map[string]any
		kind     ErrorKind
		key      string
		expected FieldType
		sentinel error
	}{
		{
			name:     "missing required string",
			body:     map[string]any{"displayDate": "2020-01-01"},
			kind:     KindMissingField,
			key:      "headline",
			expected: TypeString,
			sentinel: ErrMissingField,
		},
		{
			name:     "wrong type for string",
			body:     map[string]any{"headline": 42, "displayDate": "2020-01-01"},
			kind:     KindTypeMismatch,
			key:      "headline",
			expected: TypeString,
			sentinel: ErrTypeMismatch,
		},
		{
			name:     "unparseable date",
			body:     map[string]any{"headline": "x", "displayDate": "yesterday"},
			kind:     KindTypeMismatch,
			key:      "displayDate",
			expected: TypeDate,
			sentinel: ErrTypeMismatch,
		},
		{
			name:     "fractional long",
			body:     map[string]any{"headline": "x", "displayDate": "2020-01-01", "wordCount": 1.5},
			kind:     KindTypeMismatch,
			key:      "wordCount",
			expected: TypeLong,
			sentinel: ErrTypeMismatch,
		},
		{
			name:     "long above int64 range",
			body:     map[string]any{"headline": "x", "displayDate": "2020-01-01", "wordCount": 1e19},
			kind:     KindTypeMismatch,
			key:      "wordCount",
			expected: TypeLong,
			sentinel: ErrTypeMismatch,
		},
		{
			name:     "long at 2^63",
			body:     map[string]any{"headline": "x", "displayDate": "2020-01-01", "wordCount": float64(1 << 63)},
			kind:     KindTypeMismatch,
			key:      "wordCount",
			expected: TypeLong,
			sentinel: ErrTypeMismatch,
		},
		{
			name:     "json number above int64 range",
			body:     map[string]any{"headline": "x", "displayDate": "2020-01-01", "wordCount": json.Number("9223372036854775808")},
			kind:     KindTypeMismatch,
			key:      "wordCount",
			expected: TypeLong,
			sentinel: ErrTypeMismatch,
		},
		{
			name:     "fractional json number",
			body:     map[string]any{"headline": "x", "displayDate": "2020-01-01", "wordCount": json.Number("2.5")},
			kind:     KindTypeMismatch,
			key:      "wordCount",
			expected: TypeLong,
			sentinel: ErrTypeMismatch,
		},
		{
			name:     "boolean as string",
			body:     map[string]any{"headline": "x", "displayDate": "2020-01-01", "draft": "true"},
			kind:     KindTypeMismatch,
			key:      "draft",
			expected: TypeBoolean,
			sentinel: ErrTypeMismatch,
		},
		{
			name:     "list with wrong element",
			body:     map[string]any{"headline": "x", "displayDate": "2020-01-01", "keywords": []any{"go", 3}},
			kind:     KindTypeMismatch,
			key:      "keywords",
			expected: TypeStringList,
			sentinel: ErrTypeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Build(tt.body)
			if err == nil {
				t.Fatal("Build() should fail")
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error %T is not *ValidationError", err)
			}
			if verr.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", verr.Kind, tt.kind)
			}
			if verr.Key != tt.key {
				t.Errorf("Key = %q, want %q", verr.Key, tt.key)
			}
			if verr.Expected != tt.expected {
				t.Errorf("Expected = %q, want %q", verr.Expected, tt.expected)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(err, %v) = false", tt.sentinel)
			}
		})
	}
}

func TestForm_DisplayDateScenario(t *testing.T) {
	type event struct{ When time.Time }

	f := New("c/events", func() event { return event{} }).
		RequiredDate("displayDate", func(e *event, v time.Time) { e.When = v }).
		MustBuild()

	if _, err := f.Build(map[string]any{"displayDate": "2020-01-01T00:00Z"}); err != nil {
		t.Errorf("Build(valid) error = %v", err)
	}

	_, err := f.Build(map[string]any{})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Kind != KindMissingField || verr.Key != "displayDate" {
		t.Errorf("Build({}) error = %v, want MissingField(displayDate)", err)
	}

	_, err = f.Build(map[string]any{"displayDate": 42})
	if !errors.As(err, &verr) || verr.Kind != KindTypeMismatch || verr.Key != "displayDate" || verr.Expected != TypeDate {
		t.Errorf("Build(42) error = %v, want TypeMismatch(displayDate, date)", err)
	}
}

func TestForm_Constraint(t *testing.T) {
	type person struct{ Email string }

	f := New("c/people", func() person { return person{} }).
		RequiredString("email", func(p *person, v string) { p.Email = v }, Validate("email")).
		MustBuild()

	if _, err := f.Build(map[string]any{"email": "ada@example.com"}); err != nil {
		t.Errorf("Build(valid email) error = %v", err)
	}

	_, err := f.Build(map[string]any{"email": "not-an-email"})
	if !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("Build(invalid email) error = %v, want constraint violation", err)
	}
	var verr *ValidationError
	if errors.As(err, &verr) && verr.Constraint != "email" {
		t.Errorf("Constraint = %q, want email", verr.Constraint)
	}
}

func TestBuilder_DuplicateKey(t *testing.T) {
	_, err := New("c/x", func() posting { return posting{} }).
		RequiredString("headline", func(*posting, string) {}).
		OptionalLong("headline", func(*posting, int64) {}).
		Build()
	if err == nil {
		t.Error("Build() should fail on duplicate key")
	}
}

func TestBuilder_BuildTwice(t *testing.T) {
	b := New("c/x", func() posting { return posting{} })
	if _, err := b.Build(); err != nil {
		t.Fatalf("first Build() error = %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Error("second Build() should fail")
	}
}

func TestBuilder_MissingID(t *testing.T) {
	if _, err := New("", func() posting { return posting{} }).Build(); err == nil {
		t.Error("Build() should fail without id")
	}
}

func TestForm_FieldDescriptors(t *testing.T) {
	f := postingForm(t)

	got := f.FieldDescriptors()
	want := []FieldDescriptor{
		{Name: "headline", Required: true, Type: TypeString},
		{Name: "displayDate", Required: true, Type: TypeDate},
		{Name: "wordCount", Required: false, Type: TypeLong},
		{Name: "rating", Required: false, Type: TypeDouble},
		{Name: "draft", Required: false, Type: TypeBoolean},
		{Name: "keywords", Required: false, Type: TypeStringList},
	}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("descriptor[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestForm_Describe(t *testing.T) {
	f := postingForm(t)

	d := f.Describe(language.Spanish)
	if d.ID != "c/blog-postings" {
		t.Errorf("ID = %q", d.ID)
	}
	if d.Title != "Blog posting" {
		t.Errorf("Title = %q", d.Title)
	}
	if d.Description != "Crea una entrada" {
		t.Errorf("Description = %q", d.Description)
	}
	if len(d.Fields) != 6 {
		t.Errorf("len(Fields) = %d, want 6", len(d.Fields))
	}
}

func TestJSONSchema(t *testing.T) {
	s := JSONSchema(postingForm(t), language.English)

	if s.Type != "object" {
		t.Errorf("Type = %q, want object", s.Type)
	}
	if len(s.Required) != 2 || s.Required[0] != "headline" || s.Required[1] != "displayDate" {
		t.Errorf("Required = %v", s.Required)
	}
	if got := s.Properties["displayDate"]; got == nil || got.Format != "date-time" {
		t.Errorf("displayDate schema = %+v", got)
	}
	if got := s.Properties["keywords"]; got == nil || got.Type != "array" || got.Items.Type != "string" {
		t.Errorf("keywords schema = %+v", got)
	}
	if got := s.Properties["wordCount"]; got == nil || got.Type != "integer" {
		t.Errorf("wordCount schema = %+v", got)
	}
}

func TestParseDate(t *testing.T) {
	valid := []string{
		"2020-01-01T00:00Z",
		"2020-01-01T00:00:00Z",
		"2020-01-01T00:00:00.123+02:00",
		"2020-01-01T10:30:00",
		"2020-01-01",
	}
	for _, s := range valid {
		if _, err := ParseDate(s); err != nil {
			t.Errorf("ParseDate(%q) error = %v", s, err)
		}
	}

	if _, err := ParseDate("01/02/2020"); err == nil {
		t.Error("ParseDate(01/02/2020) should fail")
	}
}
