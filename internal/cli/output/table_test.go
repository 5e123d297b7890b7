package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableData(t *testing.T) {
	table := NewTableData("Library", "Sessions")

	assert.Equal(t, []string{"Library", "Sessions"}, table.Headers())
	assert.Empty(t, table.Rows())

	table.AddRow("1", "3")
	table.AddRow("2", "0")

	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "3"}, rows[0])
	assert.Equal(t, []string{"2", "0"}, rows[1])
}

func TestPrintTable(t *testing.T) {
	table := NewTableData("Library", "Sessions")
	table.AddRow("1", "3")
	table.AddRow("2", "0")

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, table))

	output := buf.String()
	assert.Contains(t, output, "LIBRARY")
	assert.Contains(t, output, "SESSIONS")
	assert.Contains(t, output, "1")
	assert.Contains(t, output, "3")
}

func TestSimpleTable(t *testing.T) {
	pairs := [][2]string{
		{"ID", "abc"},
		{"STATE", "COMPLETED"},
	}

	var buf bytes.Buffer
	require.NoError(t, SimpleTable(&buf, pairs))

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "abc")
	assert.Contains(t, output, "STATE")
	assert.Contains(t, output, "COMPLETED")
}
