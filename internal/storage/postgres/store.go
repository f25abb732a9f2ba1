package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hongminglow/garage-be/internal/models"
	"github.com/hongminglow/garage-be/internal/storage"
	"github.com/hongminglow/garage-be/internal/storage/postgres/migrations"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Ensure Store satisfies the storage.AccountStore interface at compile time.
var _ storage.AccountStore = (*Store)(nil)

const uniqueViolation = "23505"

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store provides Postgres-backed persistence for accounts.
type Store struct {
	db *sql.DB
}

// NewAccountStore opens a pgx connection pool and runs migrations.
func NewAccountStore(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := New(db)
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened database handle without migrating it.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases database resources.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func (s *Store) migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := gooseUpContext(ctx, s.db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

const accountColumns = `id, username, password_hash, profile, enabled, created_at, updated_at`

// FindAccount fetches an account by id, restricted to the given profile.
func (s *Store) FindAccount(ctx context.Context, id int64, profile models.Profile) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND profile = $2`
	return scanAccount(s.db.QueryRowContext(ctx, query, id, string(profile)))
}

// FindByUsername fetches an account by its (username, profile) pair.
func (s *Store) FindByUsername(ctx context.Context, username string, profile models.Profile) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1 AND profile = $2`
	return scanAccount(s.db.QueryRowContext(ctx, query, username, string(profile)))
}

// UsernameExists reports whether (username, profile) is already registered.
func (s *Store) UsernameExists(ctx context.Context, username string, profile models.Profile) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1 AND profile = $2)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, username, string(profile)).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// WithTx begins a transaction, runs fn with a transactional writer, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx storage.AccountWriter) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit tx: %w", mapError(cerr))
		}
	}()

	err = fn(ctx, &writer{db: tx})
	return err
}

type writer struct {
	db DBTX
}

// CreateAccount inserts a new account row.
func (w *writer) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	const query = `
		INSERT INTO accounts (username, password_hash, profile, enabled)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + accountColumns
	row := w.db.QueryRowContext(ctx, query, account.Username, account.PasswordHash, string(account.Profile), account.Enabled)
	created, err := scanAccount(row)
	if err != nil {
		return models.Account{}, err
	}
	return created, nil
}

// CreateGarage inserts the business profile of a garage account.
func (w *writer) CreateGarage(ctx context.Context, garage models.Garage) (models.Garage, error) {
	const query = `
		INSERT INTO garages (account_id, name, email)
		VALUES ($1, $2, $3)
		RETURNING id`
	if err := w.db.QueryRowContext(ctx, query, garage.AccountID, garage.Name, garage.Email).Scan(&garage.ID); err != nil {
		return models.Garage{}, fmt.Errorf("db error: %w", mapError(err))
	}
	return garage, nil
}

// CreateAdmin inserts the business profile of an admin account.
func (w *writer) CreateAdmin(ctx context.Context, admin models.Admin) (models.Admin, error) {
	const query = `
		INSERT INTO admins (account_id, name, surname, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := w.db.QueryRowContext(ctx, query, admin.AccountID, admin.Name, admin.Surname, admin.Email).Scan(&admin.ID); err != nil {
		return models.Admin{}, fmt.Errorf("db error: %w", mapError(err))
	}
	return admin, nil
}

// UpdatePassword replaces the password hash of an account.
func (w *writer) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `UPDATE accounts SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	res, err := w.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectAffected(res)
}

// SetEnabled flips the enabled flag of an account of the given profile.
func (w *writer) SetEnabled(ctx context.Context, id int64, profile models.Profile, enabled bool) error {
	const query = `UPDATE accounts SET enabled = $1, updated_at = NOW() WHERE id = $2 AND profile = $3`
	res, err := w.db.ExecContext(ctx, query, enabled, id, string(profile))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanAccount(row *sql.Row) (models.Account, error) {
	var account models.Account
	var profile string
	if err := row.Scan(&account.ID, &account.Username, &account.PasswordHash, &profile, &account.Enabled, &account.CreatedAt, &account.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, storage.ErrNotFound
		}
		return models.Account{}, fmt.Errorf("db error: %w", mapError(err))
	}
	account.Profile = models.Profile(profile)
	return account, nil
}

// mapError converts a Postgres unique violation into storage.ErrAlreadyExists.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return storage.ErrAlreadyExists
	}
	return err
}
