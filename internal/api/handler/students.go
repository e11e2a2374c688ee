package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cfwatch/cfwatch-data/internal/api/respond"
	"github.com/cfwatch/cfwatch-data/internal/student"
)

// studentPayload is the request body for create and update.
type studentPayload struct {
	StudentID        string `json:"studentID"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	Grades           string `json:"grades"`
	Handle           string `json:"codeforcesHandle"`
	CurrentRating    int    `json:"currentRating"`
	MaxRating        int    `json:"maxRating"`
	RemindersEnabled *bool  `json:"remindersEnabled"`
}

// ListStudents returns the full roster.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("list students failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to list students")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"students": students})
}

// GetStudent returns one student with their stored snapshot.
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadStudent(w, r)
	if !ok {
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"student": st})
}

// CreateStudent adds a student to the roster. Duplicate studentID or email
// is rejected.
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var payload studentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}
	if payload.StudentID == "" || payload.Name == "" || payload.Email == "" {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "studentID, name and email are required")
		return
	}

	st := &student.Student{
		StudentID:     payload.StudentID,
		Name:          payload.Name,
		Phone:         payload.Phone,
		Email:         payload.Email,
		Grades:        payload.Grades,
		Handle:        payload.Handle,
		CurrentRating: payload.CurrentRating,
		MaxRating:     payload.MaxRating,
	}
	if err := h.store.Create(r.Context(), st); err != nil {
		if errors.Is(err, student.ErrDuplicate) {
			respond.WriteError(w, http.StatusBadRequest, "DUPLICATE_DATA", "Student with the same ID or email already exists")
			return
		}
		slog.Error("create student failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to create student")
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, map[string]interface{}{"student": st})
}

// UpdateStudent overwrites a student's roster fields. When the Codeforces
// handle changes, the student is resynced immediately so the profile shows
// fresh data instead of the previous handle's history.
func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadStudent(w, r)
	if !ok {
		return
	}

	var payload studentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}

	oldHandle := st.Handle
	st.StudentID = payload.StudentID
	st.Name = payload.Name
	st.Phone = payload.Phone
	st.Email = payload.Email
	st.Grades = payload.Grades
	st.Handle = payload.Handle
	st.CurrentRating = payload.CurrentRating
	st.MaxRating = payload.MaxRating
	if payload.RemindersEnabled != nil {
		st.RemindersEnabled = *payload.RemindersEnabled
	}

	if err := h.store.Update(r.Context(), st); err != nil {
		slog.Error("update student failed", "id", st.ID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to update student")
		return
	}

	if st.Handle != "" && st.Handle != oldHandle {
		if res := h.engine.SyncOne(r.Context(), st); res.Error != "" {
			// The roster update already succeeded; a failed resync self-heals
			// on the next cycle.
			slog.Warn("resync after handle change failed", "handle", st.Handle, "error", res.Error)
		}
	}

	h.invalidateAnalytics(st.ID)
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"student": st})
}

// DeleteStudent removes a student.
func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid student id")
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, student.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Student not found")
			return
		}
		slog.Error("delete student failed", "id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to delete student")
		return
	}
	h.invalidateAnalytics(id)
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"deleted": id})
}

// DownloadCSV streams the roster as a CSV attachment.
func (h *Handler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	students, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("csv export failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to export students")
		return
	}
	if len(students) == 0 {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No students found")
		return
	}

	var buf bytes.Buffer
	if err := student.WriteCSV(&buf, students); err != nil {
		slog.Error("csv encoding failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_ERROR", "Failed to encode CSV")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="students.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// loadStudent resolves the {id} URL param. Writes the error response and
// returns ok=false when the student cannot be loaded.
func (h *Handler) loadStudent(w http.ResponseWriter, r *http.Request) (*student.Student, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid student id")
		return nil, false
	}
	st, err := h.store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, student.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Student not found")
			return nil, false
		}
		slog.Error("load student failed", "id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to load student")
		return nil, false
	}
	return st, true
}
