package blog

import (
	"bytes"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/artpar/hyperapi/core/convention"
	"github.com/artpar/hyperapi/core/form"
	"github.com/artpar/hyperapi/core/registry"
	"github.com/artpar/hyperapi/core/representor"
)

const licenseURL = "https://creativecommons.org/licenses/by/4.0/"

// Resource names, derived from the vocabulary types.
var (
	PostingsResource = convention.ResourceName("BlogPosting")
	PeopleResource   = convention.ResourceName("Person")
	CommentsResource = convention.ResourceName("Comment")
)

// Forms used by the blog routes.
var (
	CreatePostingForm  = postingForm(convention.FormID(convention.FormCreate, PostingsResource), true)
	ReplacePostingForm = postingForm(convention.FormID(convention.FormUpdate, PostingsResource), false)
	CreatePersonForm   = personForm()
	CreateCommentForm  = commentForm()
)

func placeRepresentor() *representor.Representor {
	return representor.Nested[Place]().
		Types("Place").
		String("addressLocality", func(p Place) *string { return nonEmpty(p.City) }).
		String("addressCountry", func(p Place) *string { return nonEmpty(p.Country) }).
		MustBuild()
}

// PostingRepresentor describes blog postings.
func PostingRepresentor() *representor.Representor {
	return representor.New[Posting, int64](PostingType).
		Identifier(func(p Posting) int64 { return p.ID }).
		Types("BlogPosting", "CreativeWork").
		String("headline", func(p Posting) *string { return &p.Headline }).
		String("articleBody", func(p Posting) *string { return nonEmpty(p.ArticleBody) }).
		StringList("keywords", func(p Posting) []string { return p.Keywords }).
		Number("wordCount", func(p Posting) *float64 {
			n := p.WordCount()
			return &n
		}).
		Date("datePublished", func(p Posting) *time.Time { return p.DatePublished }).
		BinaryFile("image", func(p Posting) *representor.BinaryFile {
			if p.Image == nil {
				return nil
			}
			data := p.Image.Data
			return &representor.BinaryFile{
				MediaType: p.Image.MediaType,
				Open: func() (io.ReadCloser, error) {
					return io.NopCloser(bytes.NewReader(data)), nil
				},
			}
		}).
		RelativeURL("url", func(p Posting) string { return "/posts/" + strconv.FormatInt(p.ID, 10) }).
		LocalizedString("genre", func(_ Posting, lang language.Tag) string {
			base, _ := lang.Base()
			if base.String() == "es" {
				return "Artículo"
			}
			return "Article"
		}).
		Link("license", licenseURL).
		BidirectionalModel("author", PersonType, "blogPosts", func(p Posting) (any, bool) {
			return p.AuthorID.String(), p.AuthorID != uuid.Nil
		}).
		RelatedCollection("comments", CommentType).
		Nested("contentLocation", placeRepresentor(), func(p Posting) (any, bool) {
			if p.Location == nil {
				return nil, false
			}
			return *p.Location, true
		}).
		MustBuild()
}

// PersonRepresentor describes people. Their "blogPosts" collection comes
// from the posting's bidirectional author relation.
func PersonRepresentor() *representor.Representor {
	return representor.New[Person, string](PersonType).
		Identifier(func(p Person) string { return p.ID.String() }).
		Types("Person").
		String("name", func(p Person) *string { return &p.Name }).
		String("email", func(p Person) *string { return nonEmpty(p.Email) }).
		String("jobTitle", func(p Person) *string { return nonEmpty(p.JobTitle) }).
		Date("birthDate", func(p Person) *time.Time { return p.BirthDate }).
		MustBuild()
}

// CommentRepresentor describes comments.
func CommentRepresentor() *representor.Representor {
	return representor.New[Comment, int64](CommentType).
		Identifier(func(c Comment) int64 { return c.ID }).
		Types("Comment").
		String("text", func(c Comment) *string { return &c.Text }).
		String("author", func(c Comment) *string { return nonEmpty(c.AuthorName) }).
		Date("dateCreated", func(c Comment) *time.Time { return &c.DateCreated }).
		LinkedModel("about", PostingType, func(c Comment) (any, bool) { return c.PostingID, c.PostingID != 0 }).
		MustBuild()
}

// Registry builds the schema registry of the blog.
func Registry() (*registry.Registry, error) {
	return registry.NewBuilder().
		Add(PostingRepresentor()).
		Add(PersonRepresentor()).
		Add(CommentRepresentor()).
		Build()
}

func postingForm(id string, create bool) *form.Form[PostingInput] {
	title := "Replace a blog posting"
	if create {
		title = "Create a blog posting"
	}

	b := form.New(id, func() PostingInput { return PostingInput{} }).
		Title(localized(title, map[string]string{"es": "Entrada de blog"})).
		Description(form.Text("A posting with a headline and an optional body")).
		RequiredString("headline", func(p *PostingInput, v string) { p.Headline = v }, form.Validate("min=1,max=200")).
		OptionalString("articleBody", func(p *PostingInput, v string) { p.ArticleBody = v }).
		OptionalStringList("keywords", func(p *PostingInput, v []string) { p.Keywords = v }, form.Validate("max=10")).
		OptionalDate("datePublished", func(p *PostingInput, v time.Time) { p.DatePublished = &v }).
		OptionalString("addressLocality", func(p *PostingInput, v string) { p.City = v }).
		OptionalString("addressCountry", func(p *PostingInput, v string) { p.Country = v }, form.Validate("omitempty,iso3166_1_alpha2"))
	if create {
		b = b.RequiredString("author", func(p *PostingInput, v string) { p.Author = v }, form.Validate("uuid"))
	}
	return b.MustBuild()
}

func personForm() *form.Form[PersonInput] {
	return form.New(convention.FormID(convention.FormCreate, PeopleResource), func() PersonInput { return PersonInput{} }).
		Title(form.Text("Register a person")).
		RequiredString("name", func(p *PersonInput, v string) { p.Name = v }, form.Validate("min=1,max=100")).
		OptionalString("email", func(p *PersonInput, v string) { p.Email = v }, form.Validate("email")).
		OptionalString("jobTitle", func(p *PersonInput, v string) { p.JobTitle = v }).
		OptionalDate("birthDate", func(p *PersonInput, v time.Time) { p.BirthDate = &v }).
		MustBuild()
}

func commentForm() *form.Form[CommentInput] {
	return form.New(convention.FormID(convention.FormCreate, PostingsResource, CommentsResource), func() CommentInput { return CommentInput{} }).
		Title(form.Text("Comment on a posting")).
		RequiredString("text", func(c *CommentInput, v string) { c.Text = v }, form.Validate("min=1,max=2000")).
		OptionalString("author", func(c *CommentInput, v string) { c.AuthorName = v }).
		MustBuild()
}

func localized(fallback string, byBase map[string]string) form.LocalizedFunc {
	return func(lang language.Tag) string {
		base, _ := lang.Base()
		if s, ok := byBase[base.String()]; ok {
			return s
		}
		return fallback
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
