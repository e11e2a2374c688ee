package student

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// csvColumns is the export column order — kept stable because downstream
// spreadsheets key on the header row.
var csvColumns = []string{
	"name", "email", "phone", "codeforcesHandle",
	"currentRating", "maxRating", "studentID", "grades",
}

// WriteCSV writes the roster as CSV with a header row.
func WriteCSV(w io.Writer, students []*Student) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, st := range students {
		record := []string{
			st.Name, st.Email, st.Phone, st.Handle,
			strconv.Itoa(st.CurrentRating), strconv.Itoa(st.MaxRating),
			st.StudentID, st.Grades,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
