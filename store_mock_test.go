package insighthub

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newStore(sqlx.NewDb(db, "sqlite")), mock
}

func TestQuickSearchShortQueryMakesNoQuery(t *testing.T) {
	s, mock := newMockStore(t)

	for _, q := range []string{"", "a", "  é  "} {
		results, err := s.QuickSearch(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, results)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostByIDNoRowsIsNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(postSelect + ` WHERE p.id = ?`)).
		WithArgs("p1").
		WillReturnError(sql.ErrNoRows)

	_, err := s.PostByID(context.Background(), "p1")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverFailureIsStoreError(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("disk I/O error")
	mock.ExpectQuery(regexp.QuoteMeta(categorySelect)).WillReturnError(boom)

	_, err := s.ListCategories(context.Background())
	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "list categories", se.Op)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePostMissingRow(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM posts WHERE id = ?`)).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, s.DeletePost(context.Background(), "gone"), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCommentRollsBackForMissingPost(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM posts WHERE id = ? AND published = 1`)).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectRollback()

	_, err := s.CreateComment(context.Background(), CommentInput{
		PostID: "p1", Name: "Ann", Email: "ann@example.com", Content: "hi",
	})
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreErrClassification(t *testing.T) {
	assert.Nil(t, storeErr("op", nil))
	assert.Same(t, ErrNotFound, storeErr("op", sql.ErrNoRows))
	assert.Same(t, ErrDuplicateSlug, storeErr("op", ErrDuplicateSlug))

	inner := &StoreError{Op: "inner", Err: errors.New("x")}
	assert.Same(t, inner, storeErr("outer", inner))

	assert.True(t, isUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: posts.slug (2067)")))
	assert.False(t, isUniqueViolation(nil))
}
