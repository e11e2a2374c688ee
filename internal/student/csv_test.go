package student

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	students := []*Student{
		{
			Name: "Alice Example", Email: "alice@example.org", Phone: "555-0100",
			Handle: "alice_cf", CurrentRating: 1480, MaxRating: 1530,
			StudentID: "S001", Grades: "A",
		},
		{
			// No handle and no ratings yet; exported as-is.
			Name: "Bob Example", Email: "bob@example.org",
			StudentID: "S002",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, students))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per student")

	assert.Equal(t, csvColumns, rows[0])
	assert.Equal(t, []string{
		"Alice Example", "alice@example.org", "555-0100", "alice_cf",
		"1480", "1530", "S001", "A",
	}, rows[1])
	assert.Equal(t, []string{
		"Bob Example", "bob@example.org", "", "", "0", "0", "S002", "",
	}, rows[2])
}

func TestWriteCSVEmptyRoster(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "an empty roster still gets the header row")
	assert.Equal(t, csvColumns, rows[0])
}

func TestHasHandle(t *testing.T) {
	assert.True(t, (&Student{Handle: "alice_cf"}).HasHandle())
	assert.False(t, (&Student{}).HasHandle())
}
