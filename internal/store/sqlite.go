package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/creditdesk/cibil-extract/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS uploads (
	token      TEXT PRIMARY KEY,
	file_name  TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	error      TEXT,
	report_id  TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS reports (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	report_type    TEXT NOT NULL,
	control_number TEXT NOT NULL,
	score          TEXT,
	report_date    TEXT,
	payload        TEXT NOT NULL,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now')),
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
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_uploads_status ON uploads(status);
CREATE INDEX IF NOT EXISTS idx_reports_user_id ON reports(user_id);
CREATE INDEX IF NOT EXISTS idx_report_accounts_report_id ON report_accounts(report_id);
CREATE INDEX IF NOT EXISTS idx_report_history_account_id ON report_payment_history(account_id);
CREATE INDEX IF NOT EXISTS idx_directory_mobile ON directory(mobile_number);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateUpload(ctx context.Context, fileName string) (*Upload, error) {
	token := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (token, file_name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		token, fileName, string(UploadStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert upload")
	}

	return &Upload{
		Token:     token,
		FileName:  fileName,
		Status:    UploadStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateUploadStatus(ctx context.Context, token string, status UploadStatus, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE uploads SET status = ?, error = ?, updated_at = ? WHERE token = ?`,
		string(status), nullable(errMsg), time.Now().UTC(), token,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update upload status %s", token)
	}
	return checkRowsAffected(res, "upload", token)
}

func (s *SQLiteStore) AttachUploadReport(ctx context.Context, token, reportID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE uploads SET report_id = ?, updated_at = ? WHERE token = ?`,
		reportID, time.Now().UTC(), token,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: attach report to upload %s", token)
	}
	return checkRowsAffected(res, "upload", token)
}

func (s *SQLiteStore) GetUpload(ctx context.Context, token string) (*Upload, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT token, file_name, status, error, report_id, created_at, updated_at FROM uploads WHERE token = ?`,
		token,
	)

	var u Upload
	var errMsg, reportID sql.NullString
	err := row.Scan(&u.Token, &u.FileName, &u.Status, &errMsg, &reportID, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("upload not found: %s", token)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get upload")
	}
	u.Error = errMsg.String
	u.ReportID = reportID.String
	return &u, nil
}

func (s *SQLiteStore) SaveReport(ctx context.Context, payload *model.StoredReport, reportType string, overwrite bool) (*SaveResult, error) {
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
		return nil, eris.Wrap(err, "sqlite: marshal payload")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	input := &payload.InputResponse
	var reportID string
	if existing != nil {
		reportID = existing.ID
		_, err = tx.ExecContext(ctx,
			`UPDATE reports SET user_id = ?, score = ?, report_date = ?, payload = ?, updated_at = ? WHERE id = ?`,
			payload.InquiryRequestInfo.UserID, input.ReportInformation.Score,
			input.ReportInformation.ReportDate, string(payloadJSON), now, reportID,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: update report %s", reportID)
		}
		if err := deleteChildRowsSQLite(ctx, tx, reportID); err != nil {
			return nil, err
		}
	} else {
		reportID = uuid.New().String()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO reports (id, user_id, report_type, control_number, score, report_date, payload, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			reportID, payload.InquiryRequestInfo.UserID, reportType, controlNumber,
			input.ReportInformation.Score, input.ReportInformation.ReportDate, string(payloadJSON), now, now,
		)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: insert report")
		}
	}

	if err := insertChildRowsSQLite(ctx, tx, reportID, input); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}
	return &SaveResult{Status: SaveStatusStored, ReportID: reportID}, nil
}

var childTables = []string{
	"report_payment_history",
	"report_accounts",
	"report_addresses",
	"report_telephones",
	"report_emails",
	"report_identifications",
	"report_enquiries",
	"report_additional_info",
	"report_warnings",
}

func deleteChildRowsSQLite(ctx context.Context, tx *sql.Tx, reportID string) error {
	for _, table := range childTables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE report_id = ?`, reportID); err != nil {
			return eris.Wrapf(err, "sqlite: delete %s", table)
		}
	}
	return nil
}

func insertChildRowsSQLite(ctx context.Context, tx *sql.Tx, reportID string, input *model.ExtractedReport) error {
	for i := range input.Accounts {
		acc := &input.Accounts[i]
		accountID := uuid.New().String()
		_, err := tx.ExecContext(ctx,
			`INSERT INTO report_accounts
			 (id, report_id, seq, member_name, account_type, account_number, ownership_type,
			  current_balance, amount_overdue, sanctioned_amount, high_credit, credit_limit, emi_amount,
			  date_opened, date_closed, last_payment_date, date_reported, credit_facility_status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			accountID, reportID, acc.Sequence, acc.MemberName, acc.AccountType, acc.AccountNumber,
			acc.OwnershipType, acc.CurrentBalance, acc.AmountOverdue, acc.SanctionedAmount,
			acc.HighCredit, acc.CreditLimit, acc.EmiAmount, acc.DateOpened, acc.DateClosed,
			acc.LastPaymentDate, acc.DateReportedAndCertified, acc.CreditFacilityStatus,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert account")
		}
		for _, entry := range acc.PaymentHistory {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO report_payment_history (id, report_id, account_id, month, year, dpd) VALUES (?, ?, ?, ?, ?, ?)`,
				uuid.New().String(), reportID, accountID, entry.Month, entry.Year, entry.DaysPastDue,
			)
			if err != nil {
				return eris.Wrap(err, "sqlite: insert payment history")
			}
		}
	}

	for _, addr := range input.IDAndContactInfo.ContactInformation.Addresses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO report_addresses (id, report_id, seq, address, type, residence_code, date_reported) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), reportID, addr.Sequence, addr.Address, addr.Type, addr.ResidenceCode, addr.DateReported,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert address")
		}
	}
	for _, phone := range input.IDAndContactInfo.ContactInformation.Telephones {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO report_telephones (id, report_id, seq, type, number, extension) VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), reportID, phone.Sequence, phone.Type, phone.Number, phone.Extension,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert telephone")
		}
	}
	for _, email := range input.IDAndContactInfo.ContactInformation.Emails {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO report_emails (id, report_id, seq, email) VALUES (?, ?, ?, ?)`,
			uuid.New().String(), reportID, email.Sequence, email.EmailAddress,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert email")
		}
	}
	for _, id := range input.IDAndContactInfo.Identifications {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO report_identifications (id, report_id, seq, id_type, id_number, issue_date, expiry_date) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), reportID, id.Sequence, id.IdentificationType, id.IDNumber, id.IssueDate, id.ExpiryDate,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert identification")
		}
	}
	for _, enq := range input.Enquiries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO report_enquiries (id, report_id, seq, member_name, enquiry_date, purpose) VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), reportID, enq.Sequence, enq.MemberName, enq.DateOfEnquiry, enq.EnquiryPurpose,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert enquiry")
		}
	}
	for _, add := range input.AdditionalInformation {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO report_additional_info (id, report_id, seq, label, value) VALUES (?, ?, ?, ?, ?)`,
			uuid.New().String(), reportID, add.Sequence, add.Label, add.Value,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert additional info")
		}
	}
	for _, warning := range input.Warnings {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO report_warnings (id, report_id, warning) VALUES (?, ?, ?)`,
			uuid.New().String(), reportID, warning,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert warning")
		}
	}
	return nil
}

func (s *SQLiteStore) GetReport(ctx context.Context, reportID string) (*Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, report_type, control_number, score, report_date, payload, created_at, updated_at
		 FROM reports WHERE id = ?`,
		reportID,
	)
	rep, err := scanReport(row)
	if err == errReportNoRows {
		return nil, eris.Errorf("report not found: %s", reportID)
	}
	return rep, err
}

func (s *SQLiteStore) FindReport(ctx context.Context, reportType, controlNumber string) (*Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, report_type, control_number, score, report_date, payload, created_at, updated_at
		 FROM reports WHERE report_type = ? AND control_number = ?`,
		reportType, controlNumber,
	)
	rep, err := scanReport(row)
	if err == errReportNoRows {
		return nil, nil
	}
	return rep, err
}

func (s *SQLiteStore) ListReports(ctx context.Context, filter ReportFilter) ([]Report, error) {
	query := `SELECT id, user_id, report_type, control_number, score, report_date, payload, created_at, updated_at
	          FROM reports WHERE 1=1`
	var args []any

	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.ReportType != "" {
		query += ` AND report_type = ?`
		args = append(args, filter.ReportType)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reports")
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *rep)
	}
	return reports, eris.Wrap(rows.Err(), "sqlite: list reports iterate")
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, userID string) (*DirectoryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, mobile_number FROM directory WHERE user_id = ?`, userID,
	)
	return scanDirectoryEntry(row, "sqlite")
}

func (s *SQLiteStore) GetUserByMobile(ctx context.Context, mobileNumber string) (*DirectoryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, mobile_number FROM directory WHERE mobile_number = ?`, mobileNumber,
	)
	return scanDirectoryEntry(row, "sqlite")
}

func (s *SQLiteStore) InsertUser(ctx context.Context, userID, mobileNumber string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO directory (user_id, mobile_number, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, nullable(mobileNumber), time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: insert user")
}

func (s *SQLiteStore) UpdateUserMobile(ctx context.Context, userID, mobileNumber string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE directory SET mobile_number = ? WHERE user_id = ?`,
		mobileNumber, userID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update user mobile %s", userID)
	}
	return checkRowsAffected(res, "user", userID)
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type scannable interface {
	Scan(dest ...any) error
}

var errReportNoRows = eris.New("store: report row not found")

func scanReport(row scannable) (*Report, error) {
	var r Report
	var score, reportDate sql.NullString
	var payloadJSON string

	err := row.Scan(&r.ID, &r.UserID, &r.ReportType, &r.ControlNumber, &score, &reportDate,
		&payloadJSON, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errReportNoRows
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan report")
	}

	r.Score = score.String
	r.ReportDate = reportDate.String
	if err := json.Unmarshal([]byte(payloadJSON), &r.Payload); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal payload")
	}
	return &r, nil
}

func scanDirectoryEntry(row scannable, driver string) (*DirectoryEntry, error) {
	var entry DirectoryEntry
	var mobile sql.NullString
	err := row.Scan(&entry.UserID, &mobile)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "%s: scan directory entry", driver)
	}
	entry.MobileNumber = mobile.String
	return &entry, nil
}
