// Package sql provides SQL safety utilities for dynamically built queries.
package sql

import (
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"

	"github.com/fabpulse/fabpulse-engine/pkg/apperrors"
)

// identifierPattern is the allowlist for column and table names that may be
// interpolated into SQL text. Letters, digits, underscore and space only;
// space is permitted because legacy MES schemas carry columns like
// "Process Time". Anything else (quotes, semicolons, dashes) is rejected
// before it ever reaches a query.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_ ]+$`)

// IsSafeIdentifier reports whether name passes the allowlist check.
func IsSafeIdentifier(name string) bool {
	return name != "" && identifierPattern.MatchString(name)
}

// QuoteIdentifier validates name against the allowlist and returns it quoted
// for interpolation. This is the single chokepoint every dynamically built
// query goes through; raw names must never be concatenated elsewhere.
func QuoteIdentifier(name string) (string, error) {
	if !IsSafeIdentifier(name) {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnsafeIdentifier, name)
	}
	return pgx.Identifier{name}.Sanitize(), nil
}

// QualifiedTable returns a validated, quoted table reference. If schemaName
// is empty, returns just the quoted table name.
func QualifiedTable(schemaName, tableName string) (string, error) {
	quotedTable, err := QuoteIdentifier(tableName)
	if err != nil {
		return "", err
	}
	if schemaName == "" {
		return quotedTable, nil
	}
	quotedSchema, err := QuoteIdentifier(schemaName)
	if err != nil {
		return "", err
	}
	return quotedSchema + "." + quotedTable, nil
}
