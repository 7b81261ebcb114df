package db

import (
	"fmt"
	"regexp"
	"strings"
)

// ColumnType is the storage class of a column, mapped per dialect.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInteger
	TypeReal
)

// Column describes one column of a Table.
type Column struct {
	Name string
	Type ColumnType
}

// Table is a named, fully materialized relation. Rows hold values in column
// order; nil is written as NULL.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidateIdentifier rejects anything that is not a plain SQL identifier.
// Table and column names are interpolated into DDL, so this is the only guard.
func ValidateIdentifier(name string) error {
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("invalid SQL identifier %q", name)
	}
	return nil
}

// Validate checks names and row widths.
func (t Table) Validate() error {
	if err := ValidateIdentifier(t.Name); err != nil {
		return err
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", t.Name)
	}
	for _, c := range t.Columns {
		if err := ValidateIdentifier(c.Name); err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
	}
	for i, r := range t.Rows {
		if len(r) != len(t.Columns) {
			return fmt.Errorf("table %s row %d has %d values, want %d", t.Name, i, len(r), len(t.Columns))
		}
	}
	return nil
}

// ColumnNames returns the column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// createStatement renders CREATE TABLE using typeName for the dialect.
func (t Table) createStatement(typeName func(ColumnType) string) string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = c.Name + " " + typeName(c.Type)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", t.Name, strings.Join(defs, ", "))
}
