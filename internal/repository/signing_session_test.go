package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SeakMengs/AutoSign/internal/apperror"
	"github.com/SeakMengs/AutoSign/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewRepository(db, zap.NewNop().Sugar()), mock
}

var sessionColumns = []string{"id", "document_id", "token_hash", "signer_name", "signer_email", "signer_role", "status"}

func TestSubmitRejectsWhenSessionIsNotPending(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "signing_sessions" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT "status" FROM "signing_sessions" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("signed"))
	mock.ExpectRollback()

	called := false
	err := repo.SigningSession.Submit(context.Background(), nil, "session-1", time.Now(), func(stored []model.FieldValue) ([]model.FieldValue, error) {
		called = true
		return nil, nil
	})

	assert.ErrorIs(t, err, apperror.ErrSessionAlreadySigned)
	assert.False(t, called, "finalize must not run when the compare-and-set fails")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitRevokedSession(t *testing.T) {
	tests := []struct {
		name string
		rows *sqlmock.Rows
		err  error
	}{
		{"revoked", sqlmock.NewRows([]string{"status"}).AddRow("revoked"), nil},
		{"gone", nil, gorm.ErrRecordNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)

			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE "signing_sessions" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
			query := mock.ExpectQuery(`SELECT "status" FROM "signing_sessions" WHERE id = \$1`)
			if tt.rows != nil {
				query.WillReturnRows(tt.rows)
			} else {
				query.WillReturnError(tt.err)
			}
			mock.ExpectRollback()

			err := repo.SigningSession.Submit(context.Background(), nil, "session-1", time.Now(), nil)

			assert.ErrorIs(t, err, apperror.ErrInvalidOrExpiredToken)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSubmitCommitsAfterCompareAndSet(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "signing_sessions" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "field_values" WHERE session_id = \$1`).
		WithArgs("session-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "field_id", "session_id", "value_text", "value_bool", "source"}).
			AddRow("v1", "field-1", "session-1", "Jane Doe", false, "auto"))
	mock.ExpectCommit()

	var seen []model.FieldValue
	err := repo.SigningSession.Submit(context.Background(), nil, "session-1", time.Now(), func(stored []model.FieldValue) ([]model.FieldValue, error) {
		seen = stored
		return nil, nil
	})

	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "Jane Doe", seen[0].ValueText)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitRollsBackWhenFinalizeFails(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "signing_sessions" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "field_values"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.SigningSession.Submit(context.Background(), nil, "session-1", time.Now(), func(stored []model.FieldValue) ([]model.FieldValue, error) {
		return nil, apperror.ErrRequiredFieldsIncomplete
	})

	assert.ErrorIs(t, err, apperror.ErrRequiredFieldsIncomplete)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordValueRejectsSignedSession(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "signing_sessions" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(sessionColumns).
			AddRow("session-1", "doc-1", "hash", "Jane", "buyer@x.com", "buyer", "signed"))
	mock.ExpectRollback()

	err := repo.SigningSession.RecordValue(context.Background(), nil, "session-1", model.FieldValue{FieldID: "field-1", ValueText: "late"})

	assert.ErrorIs(t, err, apperror.ErrSessionAlreadySigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAutoFillRunsOnce(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "signing_sessions" SET "auto_filled_at"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	applied, err := repo.SigningSession.ApplyAutoFill(context.Background(), nil, "session-1", time.Now(), []model.FieldValue{{FieldID: "field-1", ValueText: "2026-10-19"}})

	require.NoError(t, err)
	assert.False(t, applied, "a second auto fill must be a no-op")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByTokenHash(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "signing_sessions" WHERE token_hash = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.SigningSession.GetByTokenHash(context.Background(), nil, "abc")

	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceFieldsRejectsLockedLayout(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "documents" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "owner_id", "page_count", "pdf_file_id"}).
			AddRow("doc-1", "Purchase agreement", "agent-1", 3, "file-1"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "signing_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	_, err := repo.Field.ReplaceFields(context.Background(), nil, "doc-1", []model.Field{{Type: "text", Page: 1}})

	assert.ErrorIs(t, err, apperror.ErrLayoutLocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceFieldsRejectsIDOfAnotherDocument(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "documents" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "owner_id", "page_count", "pdf_file_id"}).
			AddRow("doc-2", "Lease", "agent-1", 1, "file-2"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "signing_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT "id" FROM "fields" WHERE id IN \(\$1\) AND document_id <> \$2`).
		WithArgs("field-1", "doc-2").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("field-1"))
	mock.ExpectRollback()

	_, err := repo.Field.ReplaceFields(context.Background(), nil, "doc-2", []model.Field{
		{BaseModel: model.BaseModel{ID: "field-1"}, Type: "text", Page: 1},
	})

	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, []string{"field-1"}, apperror.FromError(err).Details)
	assert.NoError(t, mock.ExpectationsWereMet())
}
