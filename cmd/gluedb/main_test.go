package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	sql := `CREATE TABLE widgets (id BIGINT PRIMARY KEY);
INSERT INTO widgets (id) VALUES (1);

SELECT * FROM widgets;
`
	got := splitStatements(sql)
	require.Equal(t, []string{
		"CREATE TABLE widgets (id BIGINT PRIMARY KEY)",
		"INSERT INTO widgets (id) VALUES (1)",
		"SELECT * FROM widgets",
	}, got)
}

func TestSplitStatements_Empty(t *testing.T) {
	require.Empty(t, splitStatements("  \n ; ;  "))
}
