// Package query assembles sysparm_query strings for the Table API.
//
// Clauses are joined with the ^ AND separator in insertion order, so the
// same input always yields the same query string. Fields whose value is
// empty are skipped rather than emitted as empty clauses.
package query

import (
	"fmt"
	"strings"

	"servicenow-toolkit/internal/common/errors"
)

// Op is a filter comparison operator.
type Op string

const (
	Equals         Op = "="
	Like           Op = "LIKE"
	In             Op = "IN"
	GreaterOrEqual Op = ">="
	LessOrEqual    Op = "<="
	LessThan       Op = "<"
	// IsNull matches records where the field is NULL or the empty string.
	IsNull Op = "ISNULL"
)

// Field is one filter condition. Values is used for In, Value for the rest;
// IsNull uses neither.
type Field struct {
	Name   string
	Op     Op
	Value  string
	Values []string
}

// Builder accumulates conditions in insertion order.
type Builder struct {
	clauses []string
	err     error
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Equals adds field=value. Skipped when value is empty.
func (b *Builder) Equals(field, value string) *Builder {
	return b.add(Field{Name: field, Op: Equals, Value: value})
}

// Like adds fieldLIKEvalue. Skipped when value is empty.
func (b *Builder) Like(field, value string) *Builder {
	return b.add(Field{Name: field, Op: Like, Value: value})
}

// In adds fieldINv1,v2. Elements must already be canonical sys_ids; the
// builder never resolves. Skipped when values is empty.
func (b *Builder) In(field string, values []string) *Builder {
	return b.add(Field{Name: field, Op: In, Values: values})
}

// GreaterOrEqual adds field>=value. Skipped when value is empty.
func (b *Builder) GreaterOrEqual(field, value string) *Builder {
	return b.add(Field{Name: field, Op: GreaterOrEqual, Value: value})
}

// LessOrEqual adds field<=value. Skipped when value is empty.
func (b *Builder) LessOrEqual(field, value string) *Builder {
	return b.add(Field{Name: field, Op: LessOrEqual, Value: value})
}

// LessThan adds field<value. Skipped when value is empty.
func (b *Builder) LessThan(field, value string) *Builder {
	return b.add(Field{Name: field, Op: LessThan, Value: value})
}

// IsNull adds a clause matching records where the field is missing or empty.
func (b *Builder) IsNull(field string) *Builder {
	return b.add(Field{Name: field, Op: IsNull})
}

// OrGroup adds one search term applied across several fields with LIKE,
// emitted as a single top-level clause: aLIKEterm^ORbLIKEterm.
// Skipped when term or fields is empty.
func (b *Builder) OrGroup(term string, fields ...string) *Builder {
	if b.err != nil || term == "" || len(fields) == 0 {
		return b
	}
	if err := checkSeparators(term); err != nil {
		b.err = err
		return b
	}

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if err := checkSeparators(field); err != nil {
			b.err = err
			return b
		}
		parts = append(parts, fmt.Sprintf("%sLIKE%s", field, term))
	}
	b.clauses = append(b.clauses, strings.Join(parts, "^OR"))
	return b
}

// Raw appends a pre-built clause verbatim. Callers own its correctness.
func (b *Builder) Raw(clause string) *Builder {
	if b.err != nil || clause == "" {
		return b
	}
	b.clauses = append(b.clauses, clause)
	return b
}

// Empty reports whether no clause has been added.
func (b *Builder) Empty() bool {
	return len(b.clauses) == 0
}

// Build returns the assembled sysparm_query string.
func (b *Builder) Build() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	return strings.Join(b.clauses, "^"), nil
}

func (b *Builder) add(f Field) *Builder {
	if b.err != nil {
		return b
	}
	clause, err := encode(f)
	if err != nil {
		b.err = err
		return b
	}
	if clause != "" {
		b.clauses = append(b.clauses, clause)
	}
	return b
}

// BuildQuery assembles a query from a fixed field list. Order of fields is
// preserved in the output.
func BuildQuery(fields []Field) (string, error) {
	b := NewBuilder()
	for _, f := range fields {
		b.add(f)
	}
	return b.Build()
}

func encode(f Field) (string, error) {
	if err := checkSeparators(f.Name); err != nil {
		return "", err
	}

	switch f.Op {
	case IsNull:
		// Two alternatives, but one clause from the caller's point of view.
		return fmt.Sprintf("%s=NULL^OR%s=", f.Name, f.Name), nil
	case In:
		if len(f.Values) == 0 {
			return "", nil
		}
		for _, v := range f.Values {
			if err := checkSeparators(v); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("%sIN%s", f.Name, strings.Join(f.Values, ",")), nil
	case Equals, GreaterOrEqual, LessOrEqual, LessThan:
		if f.Value == "" {
			return "", nil
		}
		if err := checkSeparators(f.Value); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s%s%s", f.Name, f.Op, f.Value), nil
	case Like:
		if f.Value == "" {
			return "", nil
		}
		if err := checkSeparators(f.Value); err != nil {
			return "", err
		}
		return fmt.Sprintf("%sLIKE%s", f.Name, f.Value), nil
	default:
		return "", errors.NewMalformedInputError(fmt.Sprintf("unknown operator: %q", f.Op))
	}
}

// ValidateTerm rejects free-form input containing reserved separators, for
// callers that assemble raw clauses themselves.
func ValidateTerm(s string) error {
	return checkSeparators(s)
}

// checkSeparators rejects names and values containing the reserved ^ and =
// separators, which would let a value splice extra conditions into the query.
func checkSeparators(s string) error {
	if strings.ContainsAny(s, "^=") {
		return errors.NewMalformedInputError(fmt.Sprintf("reserved character in query input: %q", s))
	}
	return nil
}
