package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"github.com/wadjakorntonsri/paylinks/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}
	if driverName == "sqlite" {
		// A single writer avoids SQLITE_BUSY/LOCKED on local files and shared-cache memory dbs
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS admins (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS links (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		created_by TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_links_created_at ON links(created_at);

	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		link_id TEXT NOT NULL,
		employee_code TEXT NOT NULL,
		name TEXT NOT NULL,
		upi_id TEXT NOT NULL,
		amount_paise INTEGER NOT NULL,
		attachment TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(link_id) REFERENCES links(id)
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_scope ON submissions(link_id, employee_code, created_at);
	`
	_, err := db.Exec(query)
	return err
}

// --- Accounts ---

func (r *SQLiteRepository) CreateAdmin(ctx context.Context, admin *domain.Admin) error {
	query := `INSERT INTO admins (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, admin.ID, admin.Name, admin.Email, admin.PasswordHash, admin.CreatedAt)
	return mapConstraint(err)
}

func (r *SQLiteRepository) GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	return r.getAdmin(ctx, `SELECT id, name, email, password_hash, created_at FROM admins WHERE email = ?`, email)
}

func (r *SQLiteRepository) GetAdminByID(ctx context.Context, id string) (*domain.Admin, error) {
	return r.getAdmin(ctx, `SELECT id, name, email, password_hash, created_at FROM admins WHERE id = ?`, id)
}

func (r *SQLiteRepository) getAdmin(ctx context.Context, query string, arg string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const maxCodeAttempts = 5

// errCodeTaken is a unique violation on employees.code; another writer claimed the same code first
var errCodeTaken = errors.New("employee code already assigned")

// CreateEmployee assigns the next employee code inside the insert transaction.
// A concurrent writer can take the same code on a remote database, so an assigned code is retried.
func (r *SQLiteRepository) CreateEmployee(ctx context.Context, e *domain.Employee) error {
	assign := e.Code == ""
	for attempt := 1; ; attempt++ {
		err := r.insertEmployee(ctx, e, assign)
		if !assign || !errors.Is(err, errCodeTaken) || attempt == maxCodeAttempts {
			return err
		}
	}
}

func (r *SQLiteRepository) insertEmployee(ctx context.Context, e *domain.Employee, assign bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if assign {
		var n int64
		query := `SELECT COALESCE(MAX(CAST(SUBSTR(code, 4) AS INTEGER)), 0) FROM employees WHERE code LIKE 'EMP%'`
		if err := tx.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return err
		}
		e.Code = fmt.Sprintf("EMP%04d", n+1)
	}

	query := `INSERT INTO employees (id, code, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, e.ID, e.Code, e.Name, e.Email, e.PasswordHash, e.CreatedAt); err != nil {
		if assign {
			e.Code = ""
		}
		return mapConstraint(err)
	}
	return tx.Commit()
}

func (r *SQLiteRepository) GetEmployeeByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	return r.getEmployee(ctx, `SELECT id, code, name, email, password_hash, created_at FROM employees WHERE email = ?`, email)
}

func (r *SQLiteRepository) GetEmployeeByCode(ctx context.Context, code string) (*domain.Employee, error) {
	return r.getEmployee(ctx, `SELECT id, code, name, email, password_hash, created_at FROM employees WHERE code = ?`, code)
}

func (r *SQLiteRepository) getEmployee(ctx context.Context, query string, arg string) (*domain.Employee, error) {
	var e domain.Employee
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&e.ID, &e.Code, &e.Name, &e.Email, &e.PasswordHash, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *SQLiteRepository) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, code, name, email, created_at FROM employees ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := []domain.Employee{}
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(&e.ID, &e.Code, &e.Name, &e.Email, &e.CreatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// --- Links ---

func (r *SQLiteRepository) CreateLink(ctx context.Context, link *domain.Link) error {
	query := `INSERT INTO links (id, title, created_by, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, link.ID, link.Title, link.CreatedBy, link.CreatedAt)
	return err
}

func (r *SQLiteRepository) GetLink(ctx context.Context, id string) (*domain.Link, error) {
	return r.getLink(ctx, `SELECT id, title, created_by, created_at FROM links WHERE id = ?`, id)
}

// GetLatestLink breaks created_at ties by insertion order
func (r *SQLiteRepository) GetLatestLink(ctx context.Context) (*domain.Link, error) {
	return r.getLink(ctx, `SELECT id, title, created_by, created_at FROM links ORDER BY created_at DESC, rowid DESC LIMIT 1`)
}

func (r *SQLiteRepository) getLink(ctx context.Context, query string, args ...interface{}) (*domain.Link, error) {
	var l domain.Link
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&l.ID, &l.Title, &l.CreatedBy, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *SQLiteRepository) ListLinks(ctx context.Context) ([]domain.Link, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, created_by, created_at FROM links ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLinks(rows)
}

func (r *SQLiteRepository) ListEmployeeLinks(ctx context.Context, employeeCode string, limit, offset int) ([]domain.Link, error) {
	query := `SELECT l.id, l.title, l.created_by, l.created_at
			  FROM links l
			  WHERE EXISTS (SELECT 1 FROM submissions s WHERE s.link_id = l.id AND s.employee_code = ?)
			  ORDER BY l.created_at DESC, l.rowid DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, employeeCode, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLinks(rows)
}

func (r *SQLiteRepository) CountEmployeeLinks(ctx context.Context, employeeCode string) (int64, error) {
	query := `SELECT COUNT(DISTINCT link_id) FROM submissions WHERE employee_code = ?`
	var count int64
	err := r.db.QueryRowContext(ctx, query, employeeCode).Scan(&count)
	return count, err
}

func scanLinks(rows *sql.Rows) ([]domain.Link, error) {
	links := []domain.Link{}
	for rows.Next() {
		var l domain.Link
		if err := rows.Scan(&l.ID, &l.Title, &l.CreatedBy, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// --- Submissions ---

func (r *SQLiteRepository) CreateSubmission(ctx context.Context, sub *domain.Submission) error {
	query := `INSERT INTO submissions (id, link_id, employee_code, name, upi_id, amount_paise, attachment, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.LinkID, sub.EmployeeID, sub.Name, sub.UpiID,
		domain.ToPaise(sub.Amount), nullString(sub.Attachment), sub.CreatedAt,
	)
	return err
}

// ListSubmissions returns one page of a scope. An empty employeeCode widens the scope to the whole link.
func (r *SQLiteRepository) ListSubmissions(ctx context.Context, linkID, employeeCode string, limit, offset int) ([]domain.Submission, error) {
	query := `SELECT id, link_id, employee_code, name, upi_id, amount_paise, attachment, created_at
			  FROM submissions WHERE link_id = ?`
	args := []interface{}{linkID}
	if employeeCode != "" {
		query += " AND employee_code = ?"
		args = append(args, employeeCode)
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

func (r *SQLiteRepository) SubmissionTotals(ctx context.Context, linkID, employeeCode string) (int64, int64, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(amount_paise), 0) FROM submissions WHERE link_id = ?`
	args := []interface{}{linkID}
	if employeeCode != "" {
		query += " AND employee_code = ?"
		args = append(args, employeeCode)
	}

	var count, sum int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count, &sum)
	return count, sum, err
}

func (r *SQLiteRepository) SummarizeLink(ctx context.Context, linkID string) ([]domain.EmployeeTotal, error) {
	query := `SELECT s.employee_code, COALESCE(e.name, s.employee_code), COUNT(*), SUM(s.amount_paise)
			  FROM submissions s
			  LEFT JOIN employees e ON e.code = s.employee_code
			  WHERE s.link_id = ?
			  GROUP BY s.employee_code
			  ORDER BY COALESCE(e.name, s.employee_code) COLLATE NOCASE ASC`
	rows, err := r.db.QueryContext(ctx, query, linkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []domain.EmployeeTotal{}
	for rows.Next() {
		var t domain.EmployeeTotal
		var paise int64
		if err := rows.Scan(&t.EmployeeID, &t.Name, &t.EntryCount, &paise); err != nil {
			return nil, err
		}
		t.EmployeeTotal = domain.FromPaise(paise)
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *SQLiteRepository) Dump(ctx context.Context) (*domain.Dump, error) {
	links, err := r.ListLinks(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, link_id, employee_code, name, upi_id, amount_paise, attachment, created_at
		FROM submissions ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	subs, err := scanSubmissions(rows)
	if err != nil {
		return nil, err
	}
	return &domain.Dump{Links: links, Submissions: subs}, nil
}

// Import loads a dump produced by Dump. Rows that already exist are skipped.
func (r *SQLiteRepository) Import(ctx context.Context, dump *domain.Dump) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, l := range dump.Links {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO links (id, title, created_by, created_at) VALUES (?, ?, ?, ?)`,
			l.ID, l.Title, l.CreatedBy, l.CreatedAt); err != nil {
			return fmt.Errorf("import link %s: %w", l.ID, err)
		}
	}
	for _, s := range dump.Submissions {
		if s.Amount.IsNegative() || s.Amount.GreaterThan(domain.MaxAmount) {
			return fmt.Errorf("import submission %s: amount %s out of range", s.ID, s.Amount)
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO submissions (id, link_id, employee_code, name, upi_id, amount_paise, attachment, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.LinkID, s.EmployeeID, s.Name, s.UpiID, domain.ToPaise(s.Amount), nullString(s.Attachment), s.CreatedAt); err != nil {
			return fmt.Errorf("import submission %s: %w", s.ID, err)
		}
	}
	return tx.Commit()
}

func scanSubmissions(rows *sql.Rows) ([]domain.Submission, error) {
	subs := []domain.Submission{}
	for rows.Next() {
		var s domain.Submission
		var paise int64
		var attachment sql.NullString
		if err := rows.Scan(&s.ID, &s.LinkID, &s.EmployeeID, &s.Name, &s.UpiID, &paise, &attachment, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Amount = domain.FromPaise(paise)
		s.Attachment = attachment.String
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// mapConstraint turns unique violations on employees into ErrEmailTaken or errCodeTaken
func mapConstraint(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE") {
		return err
	}
	switch {
	case strings.Contains(msg, ".email"):
		return domain.ErrEmailTaken
	case strings.Contains(msg, ".code"):
		return errCodeTaken
	}
	return err
}

// Ensure interface compliance
var (
	_ ports.LinkRepository    = (*SQLiteRepository)(nil)
	_ ports.AccountRepository = (*SQLiteRepository)(nil)
)
