// Package query turns user-supplied listing parameters into filters,
// ordering and pagination windows that repositories execute.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Op is a predicate operator
type Op int

const (
	OpEq Op = iota
	OpGte
	OpLte
	OpIn
	OpSearch
)

// Condition is a single predicate. Search conditions span several columns
// and match when any of them contains the text, case-insensitively.
type Condition struct {
	Columns []string
	Op      Op
	Value   interface{}
}

// Eq matches column = value
func Eq(column string, value interface{}) Condition {
	return Condition{Columns: []string{column}, Op: OpEq, Value: value}
}

// Gte matches column >= value
func Gte(column string, value interface{}) Condition {
	return Condition{Columns: []string{column}, Op: OpGte, Value: value}
}

// Lte matches column <= value
func Lte(column string, value interface{}) Condition {
	return Condition{Columns: []string{column}, Op: OpLte, Value: value}
}

// In matches column against a set of text values
func In(column string, values []string) Condition {
	return Condition{Columns: []string{column}, Op: OpIn, Value: values}
}

// Search matches a substring in any of the columns
func Search(columns []string, text string) Condition {
	return Condition{Columns: columns, Op: OpSearch, Value: text}
}

// Filter is an AND of conditions. The zero value matches everything.
type Filter struct {
	Conditions []Condition
}

// NewFilter builds a filter from conditions
func NewFilter(conds ...Condition) *Filter {
	return &Filter{Conditions: append([]Condition(nil), conds...)}
}

// And returns a copy of f with extra conditions appended
func (f *Filter) And(conds ...Condition) *Filter {
	out := &Filter{}
	if f != nil {
		out.Conditions = append(out.Conditions, f.Conditions...)
	}
	out.Conditions = append(out.Conditions, conds...)
	return out
}

// Len returns the number of conditions
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Conditions)
}

// Where renders the filter as a WHERE clause using '?' bind markers.
// Callers rebind the final statement for their driver.
func (f *Filter) Where() (string, []interface{}) {
	if f.Len() == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(f.Conditions))
	args := make([]interface{}, 0, len(f.Conditions))

	for _, c := range f.Conditions {
		switch c.Op {
		case OpEq:
			clauses = append(clauses, c.Columns[0]+" = ?")
			args = append(args, c.Value)
		case OpGte:
			clauses = append(clauses, c.Columns[0]+" >= ?")
			args = append(args, c.Value)
		case OpLte:
			clauses = append(clauses, c.Columns[0]+" <= ?")
			args = append(args, c.Value)
		case OpIn:
			clauses = append(clauses, c.Columns[0]+" = ANY(?)")
			args = append(args, pq.Array(c.Value))
		case OpSearch:
			pattern := "%" + escapeLike(fmt.Sprint(c.Value)) + "%"
			ors := make([]string, len(c.Columns))
			for i, col := range c.Columns {
				ors[i] = col + " ILIKE ?"
				args = append(args, pattern)
			}
			clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
		}
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// Getter returns a record's value for a column
type Getter func(column string) interface{}

// Match evaluates the filter against an in-memory record
func (f *Filter) Match(get Getter) bool {
	if f == nil {
		return true
	}
	for _, c := range f.Conditions {
		if !c.match(get) {
			return false
		}
	}
	return true
}

func (c Condition) match(get Getter) bool {
	switch c.Op {
	case OpEq:
		return compare(get(c.Columns[0]), c.Value) == 0
	case OpGte:
		cmp := compare(get(c.Columns[0]), c.Value)
		return cmp == 0 || cmp == 1
	case OpLte:
		cmp := compare(get(c.Columns[0]), c.Value)
		return cmp == 0 || cmp == -1
	case OpIn:
		actual := fmt.Sprint(get(c.Columns[0]))
		for _, v := range c.Value.([]string) {
			if v == actual {
				return true
			}
		}
		return false
	case OpSearch:
		needle := strings.ToLower(fmt.Sprint(c.Value))
		for _, col := range c.Columns {
			if strings.Contains(strings.ToLower(fmt.Sprint(get(col))), needle) {
				return true
			}
		}
		return false
	}
	return false
}

const incomparable = 2

// compare orders two values of the same kind, returning incomparable when
// the kinds differ or a value is missing
func compare(a, b interface{}) int {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return incomparable
		}
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
		return 0
	case *time.Time:
		if av == nil {
			return incomparable
		}
		return compare(*av, b)
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return incomparable
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case bool:
		bv, ok := b.(bool)
		if !ok || av != bv {
			return incomparable
		}
		return 0
	case nil:
		return incomparable
	}
	if fmt.Sprint(a) == fmt.Sprint(b) {
		return 0
	}
	return incomparable
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
