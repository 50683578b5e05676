package store

import (
	"fmt"
	"strings"
)

// Dialect papers over the placeholder and returning-clause differences
// between sqlite and postgres.
type Dialect interface {
	Name() string
	SupportsReturning() bool
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string            { return "sqlite" }
func (sqliteDialect) SupportsReturning() bool { return false }

type postgresDialect struct{}

func (postgresDialect) Name() string            { return "postgres" }
func (postgresDialect) SupportsReturning() bool { return true }

// Rebind converts ? placeholders to $1, $2, ... for postgres.
func Rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(fmt.Sprintf("$%d", n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
