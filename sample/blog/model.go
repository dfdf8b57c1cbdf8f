// Package blog is a small sample domain (postings, people, comments) that
// exercises every part of the hypermedia framework: scalar groups, links,
// bidirectional relations, related collections, nested objects, binary
// files, forms and permission-gated operations.
package blog

import (
	"time"

	"github.com/google/uuid"
)

// Identifier types.
const (
	PostingType = "blog-posting"
	PersonType  = "person"
	CommentType = "comment"
)

// Person is an author.
type Person struct {
	ID        uuid.UUID
	Name      string
	Email     string
	JobTitle  string
	BirthDate *time.Time
}

// Place is a value object nested in a posting.
type Place struct {
	City    string
	Country string
}

// Image is binary content attached to a posting.
type Image struct {
	MediaType string
	Data      []byte
}

// Posting is a blog posting.
type Posting struct {
	ID            int64
	Headline      string
	ArticleBody   string
	Keywords      []string
	AuthorID      uuid.UUID
	DatePublished *time.Time
	Location      *Place
	Image         *Image
}

// WordCount counts whitespace-separated words of the body.
func (p Posting) WordCount() float64 {
	n := 0
	inWord := false
	for _, r := range p.ArticleBody {
		space := r == ' ' || r == '\n' || r == '\t' || r == '\r'
		if !space && !inWord {
			n++
		}
		inWord = !space
	}
	return float64(n)
}

// Comment is a reader comment on a posting.
type Comment struct {
	ID          int64
	PostingID   int64
	Text        string
	AuthorName  string
	DateCreated time.Time
}

// PostingInput is built by the posting forms.
type PostingInput struct {
	Headline      string
	ArticleBody   string
	Keywords      []string
	Author        string
	DatePublished *time.Time
	City          string
	Country       string
}

// PersonInput is built by the person form.
type PersonInput struct {
	Name      string
	Email     string
	JobTitle  string
	BirthDate *time.Time
}

// CommentInput is built by the comment form.
type CommentInput struct {
	Text       string
	AuthorName string
}
