package insighthub

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/eringen/insighthub/content"
)

// CreateComment stores an approved comment on a published post. Markup in
// the body is stripped; comments are plain text.
func (s *Store) CreateComment(ctx context.Context, in CommentInput) (Comment, error) {
	in.normalize()
	in.Content = content.StripTags(in.Content)
	if err := validateInput(in); err != nil {
		return Comment{}, err
	}
	c := Comment{
		ID:        newID(),
		PostID:    in.PostID,
		Name:      in.Name,
		Email:     in.Email,
		Content:   in.Content,
		Approved:  true,
		CreatedAt: s.now(),
	}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM posts WHERE id = ? AND published = 1`, c.PostID); err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO comments (id, post_id, name, email, content, approved, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.PostID, c.Name, c.Email, c.Content, c.Approved, c.CreatedAt)
		return err
	})
	if err != nil {
		return Comment{}, storeErr("create comment", err)
	}
	return c, nil
}

// ListComments returns the approved comments on a post, newest first.
func (s *Store) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	comments := []Comment{}
	err := s.db.SelectContext(ctx, &comments,
		`SELECT id, post_id, name, email, content, approved, created_at
FROM comments WHERE post_id = ? AND approved = 1 ORDER BY created_at DESC`, postID)
	if err != nil {
		return nil, storeErr("list comments", err)
	}
	return comments, nil
}

// Subscribe adds email to the newsletter, reviving an inactive signup.
// An address that is already active is a ValidationError.
func (s *Store) Subscribe(ctx context.Context, in SubscribeInput) (SubscribeResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return 0, err
	}
	var result SubscribeResult
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var active bool
		err := tx.GetContext(ctx, &active, `SELECT active FROM subscribers WHERE email = ?`, in.Email)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			result = Subscribed
			_, err = tx.ExecContext(ctx,
				`INSERT INTO subscribers (id, email, active, created_at) VALUES (?, ?, 1, ?)`,
				newID(), in.Email, s.now())
			if isUniqueViolation(err) {
				return errAlreadySubscribed
			}
			return err
		case err != nil:
			return err
		case active:
			return errAlreadySubscribed
		}
		result = Reactivated
		_, err = tx.ExecContext(ctx, `UPDATE subscribers SET active = 1 WHERE email = ?`, in.Email)
		return err
	})
	if err != nil {
		return 0, storeErr("subscribe", err)
	}
	return result, nil
}

var errAlreadySubscribed = &ValidationError{Field: "email", Message: "You are already subscribed!"}

// Unsubscribe deactivates an active signup.
func (s *Store) Unsubscribe(ctx context.Context, in SubscribeInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE subscribers SET active = 0 WHERE email = ? AND active = 1`, in.Email)
	if err != nil {
		return storeErr("unsubscribe", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSubscribers returns active subscribers, newest first.
func (s *Store) ListSubscribers(ctx context.Context) ([]Subscriber, error) {
	subs := []Subscriber{}
	err := s.db.SelectContext(ctx, &subs,
		`SELECT id, email, active, created_at FROM subscribers WHERE active = 1 ORDER BY created_at DESC`)
	if err != nil {
		return nil, storeErr("list subscribers", err)
	}
	return subs, nil
}

// CreateContactMessage stores a contact form submission.
func (s *Store) CreateContactMessage(ctx context.Context, in ContactInput) (ContactMessage, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return ContactMessage{}, err
	}
	m := ContactMessage{
		ID:        newID(),
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: s.now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, email, subject, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Email, m.Subject, m.Message, m.CreatedAt)
	if err != nil {
		return ContactMessage{}, storeErr("create contact message", err)
	}
	return m, nil
}

// ListContactMessages returns every message, newest first.
func (s *Store) ListContactMessages(ctx context.Context) ([]ContactMessage, error) {
	msgs := []ContactMessage{}
	err := s.db.SelectContext(ctx, &msgs,
		`SELECT id, name, email, subject, message, created_at FROM contact_messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, storeErr("list contact messages", err)
	}
	return msgs, nil
}
