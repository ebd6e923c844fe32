package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/creditdesk/cibil-extract/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock's pool
// interface satisfies it, which keeps the postgres store testable without a
// server.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool, used by tests.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS uploads (
	token      TEXT PRIMARY KEY,
	file_name  TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	error      TEXT,
	report_id  TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reports (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id        TEXT NOT NULL,
	report_type    TEXT NOT NULL,
	control_number TEXT NOT NULL,
	score          TEXT,
	report_date    TEXT,
	payload        JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (report_type, control_number)
);

CREATE TABLE IF NOT EXISTS report_accounts (
	id                     TEXT PRIMARY KEY,
	report_id              TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	seq                    TEXT,
	member_name            TEXT,
	account_type           TEXT,
	account_number         TEXT,
	ownership_type         TEXT,
	current_balance        TEXT,
	amount_overdue         TEXT,
	sanctioned_amount      TEXT,
	high_credit            TEXT,
	credit_limit           TEXT,
	emi_amount             TEXT,
	date_opened            TEXT,
	date_closed            TEXT,
	last_payment_date      TEXT,
	date_reported          TEXT,
	credit_facility_status TEXT
);

CREATE TABLE IF NOT EXISTS report_payment_history (
	id         TEXT PRIMARY KEY,
	report_id  TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	account_id TEXT NOT NULL REFERENCES report_accounts(id) ON DELETE CASCADE,
	month      TEXT,
	year       TEXT,
	dpd        TEXT
);

CREATE TABLE IF NOT EXISTS report_addresses (
	id             TEXT PRIMARY KEY,
	report_id      TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	seq            TEXT,
	address        TEXT,
	type           TEXT,
	residence_code TEXT,
	date_reported  TEXT
);

CREATE TABLE IF NOT EXISTS report_telephones (
	id        TEXT PRIMARY KEY,
	report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	seq       TEXT,
	type      TEXT,
	number    TEXT,
	extension TEXT
);

CREATE TABLE IF NOT EXISTS report_emails (
	id        TEXT PRIMARY KEY,
	report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	seq       TEXT,
	email     TEXT
);

CREATE TABLE IF NOT EXISTS report_identifications (
	id          TEXT PRIMARY KEY,
	report_id   TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	seq         TEXT,
	id_type     TEXT,
	id_number   TEXT,
	issue_date  TEXT,
	expiry_date TEXT
);

CREATE TABLE IF NOT EXISTS report_enquiries (
	id           TEXT PRIMARY KEY,
	report_id    TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	seq          TEXT,
	member_name  TEXT,
	enquiry_date TEXT,
	purpose      TEXT
);

CREATE TABLE IF NOT EXISTS report_additional_info (
	id        TEXT PRIMARY KEY,
	report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	seq       TEXT,
	label     TEXT,
	value     TEXT
);

CREATE TABLE IF NOT EXISTS report_warnings (
	id        TEXT PRIMARY KEY,
	report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	warning   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS directory (
	user_id       TEXT PRIMARY KEY,
	mobile_number TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_uploads_status ON uploads(status);
CREATE INDEX IF NOT EXISTS idx_reports_user_id ON reports(user_id);
CREATE INDEX IF NOT EXISTS idx_report_accounts_report_id ON report_accounts(report_id);
CREATE INDEX IF NOT EXISTS idx_report_history_account_id ON report_payment_history(account_id);
CREATE INDEX IF NOT EXISTS idx_directory_mobile ON directory(mobile_number);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) CreateUpload(ctx context.Context, fileName string) (*Upload, error) {
	token := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO uploads (token, file_name, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		token, fileName, string(UploadStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert upload")
	}

	return &Upload{
		Token:     token,
		FileName:  fileName,
		Status:    UploadStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateUploadStatus(ctx context.Context, token string, status UploadStatus, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE uploads SET status = $1, error = $2, updated_at = $3 WHERE token = $4`,
		string(status), nullable(errMsg), time.Now().UTC(), token,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update upload status %s", token)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("upload not found: %s", token)
	}
	return nil
}

func (s *PostgresStore) AttachUploadReport(ctx context.Context, token, reportID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE uploads SET report_id = $1, updated_at = $2 WHERE token = $3`,
		reportID, time.Now().UTC(), token,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: attach report to upload %s", token)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("upload not found: %s", token)
	}
	return nil
}

func (s *PostgresStore) GetUpload(ctx context.Context, token string) (*Upload, error) {
	var u Upload
	var errMsg, reportID *string

	err := s.pool.QueryRow(ctx,
		`SELECT token, file_name, status, error, report_id, created_at, updated_at FROM uploads WHERE token = $1`,
		token,
	).Scan(&u.Token, &u.FileName, &u.Status, &errMsg, &reportID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("upload not found: %s", token)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get upload")
	}
	if errMsg != nil {
		u.Error = *errMsg
	}
	if reportID != nil {
		u.ReportID = *reportID
	}
	return &u, nil
}

func (s *PostgresStore) SaveReport(ctx context.Context, payload *model.StoredReport, reportType string, overwrite bool) (*SaveResult, error) {
	controlNumber := payload.InputResponse.ReportInformation.ControlNumber
	if controlNumber == "" || controlNumber == model.NA {
		return nil, eris.New("store: control number not found in report")
	}

	existing, err := s.FindReport(ctx, reportType, controlNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil && !overwrite {
		return &SaveResult{Status: SaveStatusDuplicate, ReportID: existing.ID}, nil
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal payload")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	input := &payload.InputResponse
	var reportID string
	if existing != nil {
		reportID = existing.ID
		_, err = tx.Exec(ctx,
			`UPDATE reports SET user_id = $1, score = $2, report_date = $3, payload = $4, updated_at = $5 WHERE id = $6`,
			payload.InquiryRequestInfo.UserID, input.ReportInformation.Score,
			input.ReportInformation.ReportDate, payloadJSON, now, reportID,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: update report %s", reportID)
		}
		if err := deleteChildRowsPostgres(ctx, tx, reportID); err != nil {
			return nil, err
		}
	} else {
		reportID = uuid.New().String()
		_, err = tx.Exec(ctx,
			`INSERT INTO reports (id, user_id, report_type, control_number, score, report_date, payload, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			reportID, payload.InquiryRequestInfo.UserID, reportType, controlNumber,
			input.ReportInformation.Score, input.ReportInformation.ReportDate, payloadJSON, now, now,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: insert report")
		}
	}

	if err := insertChildRowsPostgres(ctx, tx, reportID, input); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit")
	}
	return &SaveResult{Status: SaveStatusStored, ReportID: reportID}, nil
}

func deleteChildRowsPostgres(ctx context.Context, tx pgx.Tx, reportID string) error {
	for _, table := range childTables {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE report_id = $1`, reportID); err != nil {
			return eris.Wrapf(err, "postgres: delete %s", table)
		}
	}
	return nil
}

func insertChildRowsPostgres(ctx context.Context, tx pgx.Tx, reportID string, input *model.ExtractedReport) error {
	for i := range input.Accounts {
		acc := &input.Accounts[i]
		accountID := uuid.New().String()
		_, err := tx.Exec(ctx,
			`INSERT INTO report_accounts
			 (id, report_id, seq, member_name, account_type, account_number, ownership_type,
			  current_balance, amount_overdue, sanctioned_amount, high_credit, credit_limit, emi_amount,
			  date_opened, date_closed, last_payment_date, date_reported, credit_facility_status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
			accountID, reportID, acc.Sequence, acc.MemberName, acc.AccountType, acc.AccountNumber,
			acc.OwnershipType, acc.CurrentBalance, acc.AmountOverdue, acc.SanctionedAmount,
			acc.HighCredit, acc.CreditLimit, acc.EmiAmount, acc.DateOpened, acc.DateClosed,
			acc.LastPaymentDate, acc.DateReportedAndCertified, acc.CreditFacilityStatus,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert account")
		}
		for _, entry := range acc.PaymentHistory {
			_, err := tx.Exec(ctx,
				`INSERT INTO report_payment_history (id, report_id, account_id, month, year, dpd) VALUES ($1, $2, $3, $4, $5, $6)`,
				uuid.New().String(), reportID, accountID, entry.Month, entry.Year, entry.DaysPastDue,
			)
			if err != nil {
				return eris.Wrap(err, "postgres: insert payment history")
			}
		}
	}

	for _, addr := range input.IDAndContactInfo.ContactInformation.Addresses {
		_, err := tx.Exec(ctx,
			`INSERT INTO report_addresses (id, report_id, seq, address, type, residence_code, date_reported) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New().String(), reportID, addr.Sequence, addr.Address, addr.Type, addr.ResidenceCode, addr.DateReported,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert address")
		}
	}
	for _, phone := range input.IDAndContactInfo.ContactInformation.Telephones {
		_, err := tx.Exec(ctx,
			`INSERT INTO report_telephones (id, report_id, seq, type, number, extension) VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New().String(), reportID, phone.Sequence, phone.Type, phone.Number, phone.Extension,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert telephone")
		}
	}
	for _, email := range input.IDAndContactInfo.ContactInformation.Emails {
		_, err := tx.Exec(ctx,
			`INSERT INTO report_emails (id, report_id, seq, email) VALUES ($1, $2, $3, $4)`,
			uuid.New().String(), reportID, email.Sequence, email.EmailAddress,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert email")
		}
	}
	for _, id := range input.IDAndContactInfo.Identifications {
		_, err := tx.Exec(ctx,
			`INSERT INTO report_identifications (id, report_id, seq, id_type, id_number, issue_date, expiry_date) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New().String(), reportID, id.Sequence, id.IdentificationType, id.IDNumber, id.IssueDate, id.ExpiryDate,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert identification")
		}
	}
	for _, enq := range input.Enquiries {
		_, err := tx.Exec(ctx,
			`INSERT INTO report_enquiries (id, report_id, seq, member_name, enquiry_date, purpose) VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New().String(), reportID, enq.Sequence, enq.MemberName, enq.DateOfEnquiry, enq.EnquiryPurpose,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert enquiry")
		}
	}
	for _, add := range input.AdditionalInformation {
		_, err := tx.Exec(ctx,
			`INSERT INTO report_additional_info (id, report_id, seq, label, value) VALUES ($1, $2, $3, $4, $5)`,
			uuid.New().String(), reportID, add.Sequence, add.Label, add.Value,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert additional info")
		}
	}
	for _, warning := range input.Warnings {
		_, err := tx.Exec(ctx,
			`INSERT INTO report_warnings (id, report_id, warning) VALUES ($1, $2, $3)`,
			uuid.New().String(), reportID, warning,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert warning")
		}
	}
	return nil
}

func (s *PostgresStore) GetReport(ctx context.Context, reportID string) (*Report, error) {
	rep, err := s.queryReport(ctx,
		`SELECT id, user_id, report_type, control_number, score, report_date, payload, created_at, updated_at
		 FROM reports WHERE id = $1`,
		reportID,
	)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, eris.Errorf("report not found: %s", reportID)
	}
	return rep, nil
}

func (s *PostgresStore) FindReport(ctx context.Context, reportType, controlNumber string) (*Report, error) {
	return s.queryReport(ctx,
		`SELECT id, user_id, report_type, control_number, score, report_date, payload, created_at, updated_at
		 FROM reports WHERE report_type = $1 AND control_number = $2`,
		reportType, controlNumber,
	)
}

func (s *PostgresStore) queryReport(ctx context.Context, query string, args ...any) (*Report, error) {
	var r Report
	var score, reportDate *string
	var payloadJSON []byte

	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&r.ID, &r.UserID, &r.ReportType, &r.ControlNumber, &score, &reportDate,
		&payloadJSON, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan report")
	}

	if score != nil {
		r.Score = *score
	}
	if reportDate != nil {
		r.ReportDate = *reportDate
	}
	if err := json.Unmarshal(payloadJSON, &r.Payload); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal payload")
	}
	return &r, nil
}

func (s *PostgresStore) ListReports(ctx context.Context, filter ReportFilter) ([]Report, error) {
	query := `SELECT id, user_id, report_type, control_number, score, report_date, payload, created_at, updated_at
	          FROM reports WHERE true`
	args := []any{}
	argIdx := 1

	if filter.UserID != "" {
		query += fmt.Sprintf(` AND user_id = $%d`, argIdx)
		args = append(args, filter.UserID)
		argIdx++
	}
	if filter.ReportType != "" {
		query += fmt.Sprintf(` AND report_type = $%d`, argIdx)
		args = append(args, filter.ReportType)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reports")
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var r Report
		var score, reportDate *string
		var payloadJSON []byte

		if err := rows.Scan(&r.ID, &r.UserID, &r.ReportType, &r.ControlNumber, &score, &reportDate,
			&payloadJSON, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan report")
		}
		if score != nil {
			r.Score = *score
		}
		if reportDate != nil {
			r.ReportDate = *reportDate
		}
		if err := json.Unmarshal(payloadJSON, &r.Payload); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal payload")
		}
		reports = append(reports, r)
	}
	return reports, eris.Wrap(rows.Err(), "postgres: list reports iterate")
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (*DirectoryEntry, error) {
	return s.queryDirectoryEntry(ctx,
		`SELECT user_id, mobile_number FROM directory WHERE user_id = $1`, userID,
	)
}

func (s *PostgresStore) GetUserByMobile(ctx context.Context, mobileNumber string) (*DirectoryEntry, error) {
	return s.queryDirectoryEntry(ctx,
		`SELECT user_id, mobile_number FROM directory WHERE mobile_number = $1`, mobileNumber,
	)
}

func (s *PostgresStore) queryDirectoryEntry(ctx context.Context, query string, args ...any) (*DirectoryEntry, error) {
	var entry DirectoryEntry
	var mobile *string
	err := s.pool.QueryRow(ctx, query, args...).Scan(&entry.UserID, &mobile)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan directory entry")
	}
	if mobile != nil {
		entry.MobileNumber = *mobile
	}
	return &entry, nil
}

func (s *PostgresStore) InsertUser(ctx context.Context, userID, mobileNumber string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO directory (user_id, mobile_number, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, nullable(mobileNumber), time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: insert user")
}

func (s *PostgresStore) UpdateUserMobile(ctx context.Context, userID, mobileNumber string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE directory SET mobile_number = $1 WHERE user_id = $2`,
		mobileNumber, userID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update user mobile %s", userID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("user not found: %s", userID)
	}
	return nil
}
