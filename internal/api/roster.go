package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/p-n-ai/unit-planner/internal/calendar"
	"github.com/p-n-ai/unit-planner/internal/registry"
	"github.com/p-n-ai/unit-planner/internal/suggest"
)

func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := s.svc.Classes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, classes)
}

type subjectPatch struct {
	PlanStatus           string `json:"planStatus"`
	CompletionPercentage int    `json:"completionPercentage"`
}

func (s *Server) handleUpdateSubject(w http.ResponseWriter, r *http.Request) {
	classID, subjectID := r.PathValue("classId"), r.PathValue("subjectId")

	var body subjectPatch
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	status, err := registry.ParseStatus(body.PlanStatus)
	if err != nil {
		writeError(w, r, err)
		return
	}

	class, _, ok, err := s.svc.FindSubject(r.Context(), subjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok || class.ID != classID {
		writeError(w, r, fmt.Errorf("%w: subject %s in class %s", errNotFound, subjectID, classID))
		return
	}

	if _, err := s.svc.UpdateSubjectStatus(r.Context(), subjectID, status, body.CompletionPercentage); err != nil {
		writeError(w, r, err)
		return
	}
	_, subject, _, err := s.svc.FindSubject(r.Context(), subjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subject)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.Analytics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, a)
}

// handleMonths returns the configured month sequence, or the months between
// the start and end query labels when both are given.
func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")
	if start == "" && end == "" {
		writeJSON(w, http.StatusOK, map[string][]string{"months": s.svc.Months()})
		return
	}

	from, err := calendar.ParseLabel(start)
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := calendar.ParseLabel(end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	months, err := calendar.MonthsBetween(from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"months": months})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	t, err := calendar.ParseEventType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": s.calendar.EventsOf(t)})
}

// handleHolidays accepts month as a number (1-12) or a month label. Without
// it the current month is used.
func (s *Server) handleHolidays(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("month")
	m := time.Now().Month()
	switch n, err := strconv.Atoi(raw); {
	case raw == "":
	case err == nil:
		if n < 1 || n > 12 {
			writeError(w, r, fmt.Errorf("%w: month %d", errBadRequest, n))
			return
		}
		m = time.Month(n)
	default:
		t, err := calendar.ParseLabel(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		m = t.Month()
	}
	writeJSON(w, http.StatusOK, map[string]any{"month": int(m), "holidays": s.calendar.HolidaysIn(m)})
}

type suggestBody struct {
	SubjectID string `json:"subjectId"`
	suggest.Request
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var body suggestBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.Month != "" {
		if label, err := calendar.NormalizeLabel(body.Month); err == nil {
			body.Month = label
		}
	}
	resp, err := s.svc.Suggest(r.Context(), body.SubjectID, body.Request)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func suggestionKey(r *http.Request) (subjectID, month string, kind suggest.Kind, err error) {
	q := r.URL.Query()
	kind, err = suggest.ParseKind(q.Get("type"))
	if err != nil {
		return "", "", "", err
	}
	month = q.Get("month")
	if label, err := calendar.NormalizeLabel(month); err == nil {
		month = label
	}
	return q.Get("subjectId"), month, kind, nil
}

func (s *Server) handleCurrentSuggestions(w http.ResponseWriter, r *http.Request) {
	subjectID, month, kind, err := suggestionKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, ok := s.svc.Suggestions(subjectID, month, kind)
	if !ok {
		writeError(w, r, fmt.Errorf("%w: no %s suggestions", errNotFound, kind))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClearSuggestions(w http.ResponseWriter, r *http.Request) {
	subjectID, month, kind, err := suggestionKey(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.svc.ClearSuggestions(subjectID, month, kind)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Reset(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
