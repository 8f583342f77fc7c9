package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	req := require.New(t)

	stmts := splitStatements(`
		CREATE TABLE users (id TEXT PRIMARY KEY);
		CREATE INDEX idx_users_id ON users(id);
	`)
	req.Len(stmts, 2)
	req.Equal("CREATE TABLE users (id TEXT PRIMARY KEY)", stmts[0])
	req.Equal("CREATE INDEX idx_users_id ON users(id)", stmts[1])
}

func TestSplitStatements_SemicolonInsideStringLiteral(t *testing.T) {
	req := require.New(t)

	stmts := splitStatements(`INSERT INTO t (v) VALUES ('a;b'); SELECT 1;`)
	req.Len(stmts, 2)
	req.Equal("INSERT INTO t (v) VALUES ('a;b')", stmts[0])
}

func TestSplitStatements_EscapedQuote(t *testing.T) {
	req := require.New(t)

	// '' kaçışı string'i bitirmez — içindeki ; ayraç sayılmaz
	stmts := splitStatements(`INSERT INTO t (v) VALUES ('it''s;fine'); SELECT 2;`)
	req.Len(stmts, 2)
	req.Equal("INSERT INTO t (v) VALUES ('it''s;fine')", stmts[0])
}

func TestSplitStatements_EmptyAndWhitespace(t *testing.T) {
	req := require.New(t)

	req.Empty(splitStatements(""))
	req.Empty(splitStatements("  \n\t ;; ; "))

	// Sondaki noktalı virgül opsiyonel
	req.Len(splitStatements("SELECT 1"), 1)
}
