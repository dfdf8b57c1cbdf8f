package blog

import (
	"context"
	"fmt"
	"time"
)

// Seed fills an empty store with a few people, postings and comments.
// It does nothing when people already exist.
func (s *Store) Seed(ctx context.Context) error {
	n, err := s.count(ctx, "SELECT COUNT(*) FROM people")
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	ada, err := s.CreatePerson(ctx, PersonInput{Name: "Ada Lovelace", Email: "ada@example.com", JobTitle: "Analyst"})
	if err != nil {
		return fmt.Errorf("seed person: %w", err)
	}
	charles, err := s.CreatePerson(ctx, PersonInput{Name: "Charles Babbage", JobTitle: "Engineer"})
	if err != nil {
		return fmt.Errorf("seed person: %w", err)
	}

	published := time.Date(1843, 9, 1, 0, 0, 0, 0, time.UTC)
	notes, err := s.CreatePosting(ctx, PostingInput{
		Headline:      "Notes on the Analytical Engine",
		ArticleBody:   "The engine weaves algebraic patterns just as the loom weaves flowers and leaves.",
		Keywords:      []string{"computing", "engines"},
		Author:        ada.ID.String(),
		DatePublished: &published,
		City:          "London",
		Country:       "GB",
	})
	if err != nil {
		return fmt.Errorf("seed posting: %w", err)
	}
	if _, err := s.CreatePosting(ctx, PostingInput{
		Headline: "On the Economy of Machinery",
		Author:   charles.ID.String(),
	}); err != nil {
		return fmt.Errorf("seed posting: %w", err)
	}

	if _, err := s.CreateComment(ctx, notes.ID, CommentInput{Text: "Remarkable.", AuthorName: "Mary"}); err != nil {
		return fmt.Errorf("seed comment: %w", err)
	}
	return nil
}
