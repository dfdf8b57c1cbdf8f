package document

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func sample() *Node {
	doc := NewObject()
	doc.Set("@id", "http://localhost/p/blog-postings/1")
	doc.Set("@type", []string{"BlogPosting"})
	doc.Set("headline", "Hello")
	doc.Object("author").Set("name", "Ada")
	tags := doc.Array("keywords")
	tags.Append("go").Append("rest")
	return doc
}

func TestNode_MarshalJSON_KeepsOrder(t *testing.T) {
	b, err := json.Marshal(sample())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"@id":"http://localhost/p/blog-postings/1","@type":["BlogPosting"],"headline":"Hello","author":{"name":"Ada"},"keywords":["go","rest"]}`
	if string(b) != want {
		t.Errorf("Marshal() = %s\nwant %s", b, want)
	}
}

func TestNode_Set_ReplacesInPlace(t *testing.T) {
	doc := sample()
	doc.Set("@id", "x")
	if keys := doc.Keys(); keys[0] != "@id" || len(keys) != 5 {
		t.Errorf("Keys() = %v", keys)
	}
	if v, _ := doc.Get("@id"); v.Value() != "x" {
		t.Errorf("@id = %v", v.Value())
	}
}

func TestNode_Delete(t *testing.T) {
	doc := sample()
	doc.Delete("headline")
	doc.Delete("missing")
	if got := strings.Join(doc.Keys(), ","); got != "@id,@type,author,keywords" {
		t.Errorf("Keys() = %s", got)
	}
	if n, ok := doc.Get("keywords"); !ok || n.Len() != 2 {
		t.Error("index not rebuilt after Delete")
	}
}

func TestNode_Lookup(t *testing.T) {
	doc := sample()
	if n, ok := doc.Lookup("author", "name"); !ok || n.Value() != "Ada" {
		t.Errorf("Lookup(author.name) = %v, %v", n, ok)
	}
	if _, ok := doc.Lookup("author", "missing"); ok {
		t.Error("Lookup of missing key should fail")
	}
	if _, ok := doc.Lookup("headline", "x"); ok {
		t.Error("Lookup through scalar should fail")
	}
}

func TestNode_Equal(t *testing.T) {
	if !sample().Equal(sample()) {
		t.Error("identical trees should be equal")
	}

	reordered := NewObject()
	reordered.Set("b", 1).Set("a", 2)
	ordered := NewObject()
	ordered.Set("a", 2).Set("b", 1)
	if reordered.Equal(ordered) {
		t.Error("key order should matter")
	}
}

func TestNode_MarshalYAML(t *testing.T) {
	doc := NewObject()
	doc.Set("z", 1)
	doc.Set("a", "two")
	doc.Set("when", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	doc.Array("list").Append(true)

	b, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	got := string(b)
	if !strings.HasPrefix(got, "z: 1\na: two\n") {
		t.Errorf("yaml = %q", got)
	}
	if !strings.Contains(got, "- true") {
		t.Errorf("yaml missing list: %q", got)
	}
}

func TestNode_Interface(t *testing.T) {
	m, ok := sample().Interface().(map[string]any)
	if !ok {
		t.Fatal("Interface() is not a map")
	}
	if m["headline"] != "Hello" {
		t.Errorf("headline = %v", m["headline"])
	}
	if kw := m["keywords"].([]any); len(kw) != 2 {
		t.Errorf("keywords = %v", kw)
	}
}

func TestNode_WrongKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Append on object should panic")
		}
	}()
	NewObject().Append(1)
}
