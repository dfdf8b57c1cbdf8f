package blog

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/artpar/hyperapi/adapters/sqlite"
	"github.com/artpar/hyperapi/core/action"
	"github.com/artpar/hyperapi/core/pagination"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations returns the blog schema migrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Store persists the blog in SQLite. It implements writer.ModelFetcher.
type Store struct {
	db *sqlite.DB
}

// NewStore creates a store over db. Call Migrate before use.
func NewStore(db *sqlite.DB) *Store {
	return &Store{db: db}
}

// Migrate applies the blog schema.
func (s *Store) Migrate() error {
	return s.db.Migrate(Migrations())
}

func notFound(kind string, id any) error {
	return fmt.Errorf("%s %v: %w", kind, id, action.ErrNotFound)
}

// Fetch loads a resource by identifier type, accepting the typed identifier
// or its string form.
func (s *Store) Fetch(ctx context.Context, identifierType string, id any) (any, error) {
	switch identifierType {
	case PostingType:
		n, err := int64ID(id)
		if err != nil {
			return nil, err
		}
		return s.GetPosting(ctx, n)
	case PersonType:
		u, err := uuidID(id)
		if err != nil {
			return nil, err
		}
		return s.GetPerson(ctx, u)
	case CommentType:
		n, err := int64ID(id)
		if err != nil {
			return nil, err
		}
		return s.GetComment(ctx, n)
	default:
		return nil, fmt.Errorf("fetch %q: unknown identifier type", identifierType)
	}
}

func int64ID(id any) (int64, error) {
	switch v := id.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, notFound("identifier", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported identifier %T", id)
	}
}

func uuidID(id any) (uuid.UUID, error) {
	switch v := id.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		u, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, notFound("identifier", v)
		}
		return u, nil
	default:
		return uuid.Nil, fmt.Errorf("unsupported identifier %T", id)
	}
}

// -----------------------------------------------------------------------------
// People
// -----------------------------------------------------------------------------

// CreatePerson stores a new person with a random identifier.
func (s *Store) CreatePerson(ctx context.Context, in PersonInput) (Person, error) {
	p := Person{
		ID:        uuid.New(),
		Name:      in.Name,
		Email:     in.Email,
		JobTitle:  in.JobTitle,
		BirthDate: in.BirthDate,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO people (id, name, email, job_title, birth_date)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID.String(), p.Name, sqlite.NullString(p.Email), sqlite.NullString(p.JobTitle), nullTime(p.BirthDate))
	if err != nil {
		return Person{}, fmt.Errorf("insert person: %w", err)
	}
	return p, nil
}

// GetPerson retrieves a person by ID.
func (s *Store) GetPerson(ctx context.Context, id uuid.UUID) (Person, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, job_title, birth_date
		FROM people
		WHERE id = ?
	`, id.String())
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Person{}, notFound("person", id)
	}
	return p, err
}

// ListPeople returns a page of people ordered by name.
func (s *Store) ListPeople(ctx context.Context, page pagination.Params) ([]Person, int, error) {
	total, err := s.count(ctx, "SELECT COUNT(*) FROM people")
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, job_title, birth_date
		FROM people
		ORDER BY name, id
		LIMIT ? OFFSET ?
	`, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var out []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(row scanner) (Person, error) {
	var (
		p        Person
		id       string
		email    sql.NullString
		jobTitle sql.NullString
		birth    sql.NullTime
	)
	if err := row.Scan(&id, &p.Name, &email, &jobTitle, &birth); err != nil {
		return Person{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Person{}, fmt.Errorf("person id %q: %w", id, err)
	}
	p.ID = parsed
	p.Email = email.String
	p.JobTitle = jobTitle.String
	p.BirthDate = timePtr(birth)
	return p, nil
}

// -----------------------------------------------------------------------------
// Postings
// -----------------------------------------------------------------------------

const postingColumns = `id, headline, article_body, keywords, author_id, date_published,
	location_city, location_country, image, image_type`

// CreatePosting stores a new posting. The author must exist.
func (s *Store) CreatePosting(ctx context.Context, in PostingInput) (Posting, error) {
	author, err := uuidID(in.Author)
	if err != nil {
		return Posting{}, err
	}
	if _, err := s.GetPerson(ctx, author); err != nil {
		return Posting{}, err
	}

	keywords, err := json.Marshal(nonNil(in.Keywords))
	if err != nil {
		return Posting{}, fmt.Errorf("encode keywords: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO blog_postings (headline, article_body, keywords, author_id, date_published,
		                           location_city, location_country)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, in.Headline, sqlite.NullString(in.ArticleBody), string(keywords), author.String(),
		nullTime(in.DatePublished), sqlite.NullString(in.City), sqlite.NullString(in.Country))
	if err != nil {
		return Posting{}, fmt.Errorf("insert posting: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Posting{}, fmt.Errorf("posting id: %w", err)
	}
	return s.GetPosting(ctx, id)
}

// ReplacePosting overwrites the editable fields of a posting.
func (s *Store) ReplacePosting(ctx context.Context, id int64, in PostingInput) (Posting, error) {
	keywords, err := json.Marshal(nonNil(in.Keywords))
	if err != nil {
		return Posting{}, fmt.Errorf("encode keywords: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE blog_postings
		SET headline = ?, article_body = ?, keywords = ?, date_published = ?,
		    location_city = ?, location_country = ?
		WHERE id = ?
	`, in.Headline, sqlite.NullString(in.ArticleBody), string(keywords), nullTime(in.DatePublished),
		sqlite.NullString(in.City), sqlite.NullString(in.Country), id)
	if err != nil {
		return Posting{}, fmt.Errorf("update posting: %w", err)
	}
	if err := expectRow(res, "posting", id); err != nil {
		return Posting{}, err
	}
	return s.GetPosting(ctx, id)
}

// SetPostingImage attaches binary content to a posting.
func (s *Store) SetPostingImage(ctx context.Context, id int64, img Image) error {
	res, err := s.db.ExecContext(ctx, `UPDATE blog_postings SET image = ?, image_type = ? WHERE id = ?`,
		img.Data, img.MediaType, id)
	if err != nil {
		return fmt.Errorf("update image: %w", err)
	}
	return expectRow(res, "posting", id)
}

// DeletePosting removes a posting and its comments.
func (s *Store) DeletePosting(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blog_postings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete posting: %w", err)
	}
	return expectRow(res, "posting", id)
}

// GetPosting retrieves a posting by ID.
func (s *Store) GetPosting(ctx context.Context, id int64) (Posting, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postingColumns+` FROM blog_postings WHERE id = ?`, id)
	p, err := scanPosting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Posting{}, notFound("posting", id)
	}
	return p, err
}

// ListPostings returns a page of postings, newest first.
func (s *Store) ListPostings(ctx context.Context, page pagination.Params) ([]Posting, int, error) {
	total, err := s.count(ctx, "SELECT COUNT(*) FROM blog_postings")
	if err != nil {
		return nil, 0, err
	}
	return s.queryPostings(ctx, total, `SELECT `+postingColumns+` FROM blog_postings
		ORDER BY id DESC LIMIT ? OFFSET ?`, page.Limit(), page.Offset())
}

// ListPostingsByAuthor returns a page of one author's postings.
func (s *Store) ListPostingsByAuthor(ctx context.Context, author uuid.UUID, page pagination.Params) ([]Posting, int, error) {
	total, err := s.count(ctx, "SELECT COUNT(*) FROM blog_postings WHERE author_id = ?", author.String())
	if err != nil {
		return nil, 0, err
	}
	return s.queryPostings(ctx, total, `SELECT `+postingColumns+` FROM blog_postings
		WHERE author_id = ? ORDER BY id DESC LIMIT ? OFFSET ?`, author.String(), page.Limit(), page.Offset())
}

func (s *Store) queryPostings(ctx context.Context, total int, query string, args ...any) ([]Posting, int, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list postings: %w", err)
	}
	defer rows.Close()

	var out []Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func scanPosting(row scanner) (Posting, error) {
	var (
		p         Posting
		body      sql.NullString
		keywords  string
		author    string
		published sql.NullTime
		city      sql.NullString
		country   sql.NullString
		image     []byte
		imageType sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Headline, &body, &keywords, &author, &published,
		&city, &country, &image, &imageType); err != nil {
		return Posting{}, err
	}

	p.ArticleBody = body.String
	if err := json.Unmarshal([]byte(keywords), &p.Keywords); err != nil {
		return Posting{}, fmt.Errorf("decode keywords: %w", err)
	}
	authorID, err := uuid.Parse(author)
	if err != nil {
		return Posting{}, fmt.Errorf("author id %q: %w", author, err)
	}
	p.AuthorID = authorID
	p.DatePublished = timePtr(published)
	if city.Valid || country.Valid {
		p.Location = &Place{City: city.String, Country: country.String}
	}
	if image != nil {
		p.Image = &Image{MediaType: imageType.String, Data: image}
	}
	return p, nil
}

// -----------------------------------------------------------------------------
// Comments
// -----------------------------------------------------------------------------

// CreateComment stores a comment on an existing posting.
func (s *Store) CreateComment(ctx context.Context, postingID int64, in CommentInput) (Comment, error) {
	if _, err := s.GetPosting(ctx, postingID); err != nil {
		return Comment{}, err
	}

	c := Comment{
		PostingID:   postingID,
		Text:        in.Text,
		AuthorName:  in.AuthorName,
		DateCreated: time.Now().UTC().Truncate(time.Second),
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (posting_id, text, author_name, date_created)
		VALUES (?, ?, ?, ?)
	`, c.PostingID, c.Text, sqlite.NullString(c.AuthorName), c.DateCreated)
	if err != nil {
		return Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return Comment{}, fmt.Errorf("comment id: %w", err)
	}
	return c, nil
}

// GetComment retrieves a comment by ID.
func (s *Store) GetComment(ctx context.Context, id int64) (Comment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, posting_id, text, author_name, date_created
		FROM comments
		WHERE id = ?
	`, id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Comment{}, notFound("comment", id)
	}
	return c, err
}

// ListComments returns a page of a posting's comments, oldest first.
func (s *Store) ListComments(ctx context.Context, postingID int64, page pagination.Params) ([]Comment, int, error) {
	if _, err := s.GetPosting(ctx, postingID); err != nil {
		return nil, 0, err
	}

	total, err := s.count(ctx, "SELECT COUNT(*) FROM comments WHERE posting_id = ?", postingID)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, posting_id, text, author_name, date_created
		FROM comments
		WHERE posting_id = ?
		ORDER BY id
		LIMIT ? OFFSET ?
	`, postingID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func scanComment(row scanner) (Comment, error) {
	var (
		c      Comment
		author sql.NullString
	)
	if err := row.Scan(&c.ID, &c.PostingID, &c.Text, &author, &c.DateCreated); err != nil {
		return Comment{}, err
	}
	c.AuthorName = author.String
	return c, nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (s *Store) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func expectRow(res sql.Result, kind string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
