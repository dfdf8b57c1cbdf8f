package registry

import (
	"errors"
	"testing"

	"github.com/artpar/hyperapi/core/representor"
)

type posting struct {
	ID       int
	AuthorID string
}

type person struct {
	ID string
}

type address struct {
	Street string
}

func postingRepresentor() *representor.Representor {
	return representor.New[posting, int]("blog-posting").
		Identifier(func(p posting) int { return p.ID }).
		Types("BlogPosting").
		BidirectionalModel("author", "person", "postings", func(p posting) (any, bool) {
			return p.AuthorID, p.AuthorID != ""
		}).
		MustBuild()
}

func personRepresentor() *representor.Representor {
	return representor.New[person, string]("person").
		Identifier(func(p person) string { return p.ID }).
		Types("Person").
		MustBuild()
}

func TestBuilder_Build(t *testing.T) {
	reg, err := NewBuilder().
		Add(postingRepresentor()).
		Add(personRepresentor()).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := reg.Names(); len(got) != 2 || got[0] != "blog-postings" || got[1] != "people" {
		t.Errorf("Names() = %v", got)
	}

	e, ok := reg.Lookup("people")
	if !ok || e.IdentifierType != "person" {
		t.Errorf("Lookup(people) = %+v, %v", e, ok)
	}

	if name, ok := reg.Name("blog-posting"); !ok || name != "blog-postings" {
		t.Errorf("Name(blog-posting) = %q, %v", name, ok)
	}
	if _, ok := reg.Representor("comment"); ok {
		t.Error("Representor(comment) should not be found")
	}
}

func TestBuilder_MaterializesInverse(t *testing.T) {
	original := personRepresentor()
	reg, err := NewBuilder().Add(postingRepresentor()).Add(original).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	r, _ := reg.Representor("person")
	rcs := r.RelatedCollections()
	if len(rcs) != 1 || rcs[0].Key != "postings" || rcs[0].IdentifierType != "blog-posting" {
		t.Errorf("RelatedCollections() = %+v", rcs)
	}
	if len(original.RelatedCollections()) != 0 {
		t.Error("registered representor was mutated")
	}
}

func TestBuilder_Errors(t *testing.T) {
	nested := representor.Nested[address]().MustBuild()

	tests := []struct {
		name  string
		build func() (*Registry, error)
		want  error
	}{
		{
			name: "duplicate identifier type",
			build: func() (*Registry, error) {
				return NewBuilder().Add(personRepresentor()).Add(personRepresentor(), WithName("humans")).Build()
			},
			want: ErrDuplicateType,
		},
		{
			name: "duplicate name",
			build: func() (*Registry, error) {
				return NewBuilder().Add(personRepresentor()).Add(postingRepresentor(), WithName("people")).Build()
			},
			want: ErrDuplicateName,
		},
		{
			name: "nested root",
			build: func() (*Registry, error) {
				return NewBuilder().Add(nested).Build()
			},
			want: ErrNestedRoot,
		},
		{
			name: "unknown bidirectional target",
			build: func() (*Registry, error) {
				return NewBuilder().Add(postingRepresentor()).Build()
			},
			want: ErrUnknownTarget,
		},
		{
			name: "inverse key clash",
			build: func() (*Registry, error) {
				clashing := representor.New[person, string]("person").
					Identifier(func(p person) string { return p.ID }).
					Types("Person").
					RelatedCollection("postings", "blog-posting").
					MustBuild()
				return NewBuilder().Add(postingRepresentor()).Add(clashing).Build()
			},
			want: representor.ErrDuplicateField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegistry_Path(t *testing.T) {
	reg, err := NewBuilder().Add(postingRepresentor()).Add(personRepresentor()).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	tests := []struct {
		identifierType string
		id             any
		want           string
		ok             bool
	}{
		{"blog-posting", 42, "blog-postings/42", true},
		{"person", "ada lovelace", "people/ada%20lovelace", true},
		{"person", "", "", false},
		{"person", nil, "", false},
		{"comment", "1", "", false},
	}

	for _, tt := range tests {
		got, ok := reg.Path(tt.identifierType, tt.id)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Path(%q, %v) = %q, %v, want %q, %v", tt.identifierType, tt.id, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBuilder_BuildTwice(t *testing.T) {
	b := NewBuilder().Add(personRepresentor())
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Error("second Build() should fail")
	}
}
