package workflow

import "errors"

// UserMessage renders a commit failure for end users without exposing raw storage text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	kind, code := ClassifyError(err)
	switch kind {
	case ErrorKindInvalidInput:
		return invalidInputMessage(err)
	case ErrorKindRetriesExhausted:
		return "the database stayed busy and the order was not registered; please try again later"
	case ErrorKindTransactionConflict:
		return "the order conflicted with another transaction; please try again"
	case ErrorKindConstraintViolation:
		return constraintMessage(code)
	}
	switch code {
	case "40001":
		return "the order could not be serialised against concurrent changes; please try again"
	case "1205":
		return "timed out waiting for a database lock; please try again"
	}
	return "a database error occurred and the order was not registered"
}

func constraintMessage(code string) string {
	switch code {
	// foreign key: postgres, mysql, sqlite
	case "23503", "1451", "1452", "1216", "1217", "787":
		return "a referenced record does not exist; check the project, supplier, part and warehouse ids"
	// unique / primary key
	case "23505", "1062", "2067", "1555":
		return "an identifier was taken by a concurrent order; please try again"
	// check
	case "23514", "3819", "275":
		return "a value is outside its allowed range"
	// not null
	case "23502", "1048", "1299":
		return "a required value is missing"
	}
	return "the order violates a database constraint"
}

func invalidInputMessage(err error) string {
	var commitErr *CommitError
	if errors.As(err, &commitErr) && commitErr.Err != nil {
		return commitErr.Err.Error()
	}
	return err.Error()
}
