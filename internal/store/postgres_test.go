package store

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresFromPool(mock), mock
}

func strPtr(s string) *string { return &s }

func TestPostgresGetUserByID(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, mobile_number FROM directory WHERE user_id = $1`)).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "mobile_number"}).
			AddRow("user-1", strPtr("9876543210")))

	entry, err := st.GetUserByID(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "user-1", entry.UserID)
	assert.Equal(t, "9876543210", entry.MobileNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetUserByID_NullMobile(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, mobile_number FROM directory WHERE user_id = $1`)).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "mobile_number"}).
			AddRow("user-1", (*string)(nil)))

	entry, err := st.GetUserByID(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Empty(t, entry.MobileNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetUserByMobile_NotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, mobile_number FROM directory WHERE mobile_number = $1`)).
		WithArgs("0000000000").
		WillReturnError(pgx.ErrNoRows)

	entry, err := st.GetUserByMobile(context.Background(), "0000000000")
	require.NoError(t, err, "a missing directory entry is not an error")
	assert.Nil(t, entry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertUser(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO directory (user_id, mobile_number, created_at) VALUES ($1, $2, $3)`)).
		WithArgs("user-1", "9876543210", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, st.InsertUser(context.Background(), "user-1", "9876543210"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertUser_EmptyMobileStoredAsNull(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO directory`)).
		WithArgs("user-1", nil, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, st.InsertUser(context.Background(), "user-1", ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateUserMobile_NotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE directory SET mobile_number = $1 WHERE user_id = $2`)).
		WithArgs("9876543210", "user-x").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := st.UpdateUserMobile(context.Background(), "user-x", "9876543210")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found: user-x")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateUploadStatus_NotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE uploads SET status = $1, error = $2, updated_at = $3 WHERE token = $4`)).
		WithArgs(string(UploadStatusComplete), nil, pgxmock.AnyArg(), "no-such-token").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := st.UpdateUploadStatus(context.Background(), "no-such-token", UploadStatusComplete, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetUpload(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT token, file_name, status, error, report_id, created_at, updated_at FROM uploads WHERE token = $1`)).
		WithArgs("token-1").
		WillReturnRows(pgxmock.NewRows([]string{"token", "file_name", "status", "error", "report_id", "created_at", "updated_at"}).
			AddRow("token-1", "report.pdf", UploadStatusComplete, (*string)(nil), strPtr("report-1"), now, now))

	up, err := st.GetUpload(context.Background(), "token-1")
	require.NoError(t, err)
	assert.Equal(t, UploadStatusComplete, up.Status)
	assert.Equal(t, "report-1", up.ReportID)
	assert.Empty(t, up.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetUpload_NotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT token, file_name, status, error, report_id, created_at, updated_at FROM uploads WHERE token = $1`)).
		WithArgs("no-such-token").
		WillReturnError(pgx.ErrNoRows)

	_, err := st.GetUpload(context.Background(), "no-such-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload not found: no-such-token")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindReport_Missing(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id, user_id, report_type, control_number`).
		WithArgs("CIBIL", "0000000").
		WillReturnError(pgx.ErrNoRows)

	rep, err := st.FindReport(context.Background(), "CIBIL", "0000000")
	require.NoError(t, err)
	assert.Nil(t, rep)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetReport(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now().UTC()

	payload, err := json.Marshal(storedPayload("user-1", "1234567"))
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, user_id, report_type, control_number`).
		WithArgs("report-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "report_type", "control_number", "score", "report_date", "payload", "created_at", "updated_at",
		}).AddRow("report-1", "user-1", "CIBIL", "1234567", strPtr("756"), strPtr("15/01/2023"), payload, now, now))

	rep, err := st.GetReport(context.Background(), "report-1")
	require.NoError(t, err)
	assert.Equal(t, "756", rep.Score)
	assert.Equal(t, "1234567", rep.ControlNumber)
	assert.Equal(t, "RAHUL SHARMA", rep.Payload.InputResponse.PersonalInformation.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveReport_Duplicate(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now().UTC()

	payload, err := json.Marshal(storedPayload("user-1", "1234567"))
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, user_id, report_type, control_number`).
		WithArgs("CIBIL", "1234567").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "report_type", "control_number", "score", "report_date", "payload", "created_at", "updated_at",
		}).AddRow("report-1", "user-1", "CIBIL", "1234567", strPtr("756"), strPtr("15/01/2023"), payload, now, now))

	result, err := st.SaveReport(context.Background(), storedPayload("user-2", "1234567"), "CIBIL", false)
	require.NoError(t, err)
	assert.Equal(t, SaveStatusDuplicate, result.Status)
	assert.Equal(t, "report-1", result.ReportID)
	assert.NoError(t, mock.ExpectationsWereMet(), "a duplicate save never opens a transaction")
}
