package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store errors surfaced to the API layer.
var (
	ErrNotFound  = errors.New("student not found")
	ErrDuplicate = errors.New("student with the same ID or email already exists")
)

// Store provides Postgres persistence for students. All statements are
// registered as prepared statements in internal/db.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store on the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// --------------------------------------------------------------------------
// Reads
// --------------------------------------------------------------------------

// Load fetches one student by internal ID.
func (s *Store) Load(ctx context.Context, id int64) (*Student, error) {
	row := s.pool.QueryRow(ctx, "student_by_id", id)
	st, err := scanStudent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load student %d: %w", id, err)
	}
	return st, nil
}

// List returns the full roster ordered by name.
func (s *Store) List(ctx context.Context) ([]*Student, error) {
	rows, err := s.pool.Query(ctx, "students_list")
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()
	return scanStudents(rows)
}

// FindWithHandle returns every student eligible for a sync cycle — those
// with a non-empty Codeforces handle.
func (s *Store) FindWithHandle(ctx context.Context) ([]*Student, error) {
	rows, err := s.pool.Query(ctx, "students_with_handle")
	if err != nil {
		return nil, fmt.Errorf("find students with handle: %w", err)
	}
	defer rows.Close()
	return scanStudents(rows)
}

// --------------------------------------------------------------------------
// Roster writes
// --------------------------------------------------------------------------

// Create inserts a new student. Duplicate studentID or email is rejected.
func (s *Store) Create(ctx context.Context, st *Student) error {
	var one int
	err := s.pool.QueryRow(ctx, "student_duplicate_check", st.StudentID, st.Email).Scan(&one)
	if err == nil {
		return ErrDuplicate
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("duplicate check: %w", err)
	}

	err = s.pool.QueryRow(ctx, "student_insert",
		st.StudentID, st.Name, st.Phone, st.Email, st.Grades, st.Handle,
		st.CurrentRating, st.MaxRating,
	).Scan(&st.ID)
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	st.RemindersEnabled = true
	return nil
}

// Update overwrites the mutable roster fields of a student.
func (s *Store) Update(ctx context.Context, st *Student) error {
	tag, err := s.pool.Exec(ctx, "student_update",
		st.ID, st.StudentID, st.Name, st.Phone, st.Email, st.Grades,
		st.Handle, st.CurrentRating, st.MaxRating, st.RemindersEnabled,
	)
	if err != nil {
		return fmt.Errorf("update student %d: %w", st.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a student.
func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "student_delete", id)
	if err != nil {
		return fmt.Errorf("delete student %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --------------------------------------------------------------------------
// Sync writes
// --------------------------------------------------------------------------

// SaveSnapshot replaces a student's snapshot and advances last_synced_at in
// a single statement. Postgres row-level atomicity guarantees the stamp
// never moves without the snapshot it belongs to.
func (s *Store) SaveSnapshot(ctx context.Context, id int64, snap *Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tag, err := s.pool.Exec(ctx, "student_save_snapshot", id, blob)
	if err != nil {
		return fmt.Errorf("save snapshot for student %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementReminderCount bumps the reminders-sent tally by one and returns
// the new value. Called only after a confirmed dispatch.
func (s *Store) IncrementReminderCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, "student_increment_reminders", id).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment reminders for student %d: %w", id, err)
	}
	return count, nil
}

// --------------------------------------------------------------------------
// Row scanning
// --------------------------------------------------------------------------

func scanStudent(row pgx.Row) (*Student, error) {
	var (
		st   Student
		blob []byte
	)
	err := row.Scan(
		&st.ID, &st.StudentID, &st.Name, &st.Phone, &st.Email, &st.Grades,
		&st.Handle, &st.CurrentRating, &st.MaxRating, &blob,
		&st.LastSyncedAt, &st.ReminderCount, &st.RemindersEnabled,
	)
	if err != nil {
		return nil, err
	}
	if len(blob) > 0 {
		var snap Snapshot
		if err := json.Unmarshal(blob, &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		st.Snapshot = &snap
	}
	return &st, nil
}

func scanStudents(rows pgx.Rows) ([]*Student, error) {
	var students []*Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, st)
	}
	return students, rows.Err()
}
