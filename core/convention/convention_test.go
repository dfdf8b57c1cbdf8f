package convention

import "testing"

func TestPluralize(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"", ""},
		{"posting", "postings"},
		{"comment", "comments"},
		{"address", "addresses"},
		{"box", "boxes"},
		{"church", "churches"},
		{"category", "categories"},
		{"day", "days"},
		{"knife", "knives"},
		{"leaf", "leaves"},
		{"person", "people"},
		{"Person", "People"},
		{"status", "statuses"},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := Pluralize(tt.word); got != tt.want {
				t.Errorf("Pluralize(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestSingularize(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"", ""},
		{"postings", "posting"},
		{"addresses", "address"},
		{"categories", "category"},
		{"people", "person"},
		{"People", "Person"},
		{"class", "class"},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := Singularize(tt.word); got != tt.want {
				t.Errorf("Singularize(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestKebab(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"BlogPosting", "blog-posting"},
		{"Person", "person"},
		{"HTTPServer", "http-server"},
		{"blog_posting", "blog-posting"},
		{"already-kebab", "already-kebab"},
		{"Version2Api", "version2-api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kebab(tt.name); got != tt.want {
				t.Errorf("Kebab(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestResourceName(t *testing.T) {
	tests := []struct {
		typeName string
		want     string
	}{
		{"BlogPosting", "blog-postings"},
		{"Person", "people"},
		{"Comment", "comments"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ResourceName(tt.typeName); got != tt.want {
			t.Errorf("ResourceName(%q) = %q, want %q", tt.typeName, got, tt.want)
		}
	}
}

func TestFormID(t *testing.T) {
	if got := FormID(FormCreate, "blog-postings"); got != "c/blog-postings" {
		t.Errorf("FormID() = %q", got)
	}
	if got := FormID(FormAction, "blog-postings", "publish"); got != "a/blog-postings/publish" {
		t.Errorf("FormID() = %q", got)
	}
}

func TestOperationName(t *testing.T) {
	if got := OperationName("blog-postings", "Create"); got != "blog-postings/create" {
		t.Errorf("OperationName() = %q", got)
	}
}
