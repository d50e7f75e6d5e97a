package workflow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ErrorKind is the caller-facing classification of a failed order commit.
type ErrorKind string

const (
	ErrorKindInvalidInput        ErrorKind = "invalid_input"
	ErrorKindConstraintViolation ErrorKind = "constraint_violation"
	ErrorKindTransactionConflict ErrorKind = "transaction_conflict"
	ErrorKindTransactionFailure  ErrorKind = "transaction_failure"
	ErrorKindRetriesExhausted    ErrorKind = "retries_exhausted"
)

var (
	ErrInvalidInput        = errors.New("invalid order input")
	ErrInvalidAllocatorKey = fmt.Errorf("%w: allocator key is not allow-listed", ErrInvalidInput)
	ErrRetriesExhausted    = errors.New("order commit retries exhausted")
	ErrAllocationLockBusy  = errors.New("allocation lock is held by another commit")
)

// CommitError is returned by OrderCommitter.Commit for every failure.
// Unwrap exposes the storage error so errors.As still reaches the driver error type.
type CommitError struct {
	Kind     ErrorKind
	SQLState string
	Step     string
	Attempts int
	Err      error
}

func (e *CommitError) Error() string {
	var b strings.Builder
	b.WriteString("order commit failed")
	if e.Step != "" {
		b.WriteString(" at " + e.Step)
	}
	if e.Attempts > 0 {
		b.WriteString(fmt.Sprintf(" (attempt %d)", e.Attempts))
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *CommitError) Unwrap() error { return e.Err }

// ClassifyError maps an error from the commit pipeline to its kind and engine error code.
func ClassifyError(err error) (ErrorKind, string) {
	if err == nil {
		return "", ""
	}

	var commitErr *CommitError
	if errors.As(err, &commitErr) {
		return commitErr.Kind, commitErr.SQLState
	}
	if errors.Is(err, ErrInvalidInput) {
		return ErrorKindInvalidInput, ""
	}
	// only a deadlock restarts an attempt; a busy lock means another commit is still running
	if errors.Is(err, ErrAllocationLockBusy) {
		return ErrorKindTransactionFailure, ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPostgres(pgErr.Code), pgErr.Code
	}
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return classifyMySQL(mysqlErr.Number), strconv.Itoa(int(mysqlErr.Number))
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return classifySQLite(sqliteErr), strconv.Itoa(int(sqliteErr.ExtendedCode))
	}

	// Only reachable when gorm runs with TranslateError.
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrorKindConstraintViolation, ""
	}
	return ErrorKindTransactionFailure, ""
}

func classifyPostgres(code string) ErrorKind {
	switch {
	case code == "40P01":
		return ErrorKindTransactionConflict
	case strings.HasPrefix(code, "23"):
		// 23503 foreign key, 23505 unique, 23514 check, 23502 not null
		return ErrorKindConstraintViolation
	default:
		// 40001 serialization failure is not retried
		return ErrorKindTransactionFailure
	}
}

func classifyMySQL(number uint16) ErrorKind {
	switch number {
	case 1213:
		return ErrorKindTransactionConflict
	case 1062, 1048, 1216, 1217, 1451, 1452, 3819:
		return ErrorKindConstraintViolation
	default:
		// 1205 lock wait timeout is not retried
		return ErrorKindTransactionFailure
	}
}

func classifySQLite(err sqlite3.Error) ErrorKind {
	switch err.Code {
	case sqlite3.ErrConstraint:
		return ErrorKindConstraintViolation
	default:
		// SQLITE_BUSY / SQLITE_LOCKED surface as plain failures
		return ErrorKindTransactionFailure
	}
}

// ErrorCode maps err to the API error code returned to HTTP clients.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	kind, _ := ClassifyError(err)
	switch kind {
	case ErrorKindInvalidInput:
		return "BAD_REQUEST"
	case ErrorKindConstraintViolation:
		return "CONSTRAINT_VIOLATION"
	case ErrorKindTransactionConflict:
		return "TRANSACTION_CONFLICT"
	case ErrorKindRetriesExhausted:
		return "RETRIES_EXHAUSTED"
	default:
		return "DATABASE_ERROR"
	}
}
