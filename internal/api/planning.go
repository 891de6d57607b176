package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/p-n-ai/unit-planner/internal/export"
	"github.com/p-n-ai/unit-planner/internal/planning"
)

func (s *Server) handleSavedMonths(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("subjectId")
	saved, err := s.svc.SavedMonths(r.Context(), subjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, map[string]any{"subjectId": subjectID, "months": saved})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	subjectID, m := r.PathValue("subjectId"), month(r)
	doc, err := s.svc.Document(r.Context(), subjectID, m)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if doc == nil {
		writeError(w, r, fmt.Errorf("%w: no plan for %s %s", errNotFound, subjectID, m))
		return
	}
	writeCached(w, r, doc)
}

func (s *Server) handleSavePlan(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	write, err := s.svc.Validator().ParseWrite(body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Apply(r.Context(), r.PathValue("subjectId"), month(r), write); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleConcepts(w http.ResponseWriter, r *http.Request) {
	concepts, starter, err := s.svc.Concepts(r.Context(), r.PathValue("subjectId"), month(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"concepts": concepts, "starter": starter})
}

type monthIndexBody struct {
	MonthIndex *int `json:"monthIndex"`
}

func (s *Server) decodeMonthIndex(w http.ResponseWriter, r *http.Request) (int, error) {
	var body monthIndexBody
	if err := decodeJSON(w, r, &body); err != nil {
		return 0, err
	}
	if body.MonthIndex == nil {
		return 0, fmt.Errorf("%w: monthIndex is required", errBadRequest)
	}
	return *body.MonthIndex, nil
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	completed, err := s.svc.Completed(r.Context(), r.PathValue("subjectId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, completed)
}

func (s *Server) handleMarkProgress(w http.ResponseWriter, r *http.Request) {
	idx, err := s.decodeMonthIndex(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.MarkCompleted(r.Context(), r.PathValue("subjectId"), idx); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	idx, err := s.decodeMonthIndex(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.svc.SaveDraft(r.Context(), r.PathValue("subjectId"), idx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Publish(r.Context(), r.PathValue("subjectId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Report(r.Context(), r.PathValue("subjectId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, report)
}

func (s *Server) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("subjectId")
	report, err := s.svc.Report(r.Context(), subjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	title := subjectID
	class, subject, ok, err := s.svc.FindSubject(r.Context(), subjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ok {
		title = class.Name + " " + subject.Name
	}

	var buf bytes.Buffer
	if err := export.WriteReport(&buf, report, title); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", subjectID+"-report.xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) decodeWeek(w http.ResponseWriter, r *http.Request) (planning.Week, error) {
	var week planning.Week
	if err := decodeJSON(w, r, &week); err != nil {
		return planning.Week{}, err
	}
	return week, nil
}

func (s *Server) handleAddWeek(w http.ResponseWriter, r *http.Request) {
	week, err := s.decodeWeek(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if week.ID == "" {
		week.ID = uuid.NewString()
	}
	plan, err := s.svc.AddWeek(r.Context(), r.PathValue("subjectId"), month(r), week)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weeklyPlan": plan})
}

func (s *Server) handleUpdateWeek(w http.ResponseWriter, r *http.Request) {
	week, err := s.decodeWeek(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	week.ID = r.PathValue("weekId")
	plan, err := s.svc.UpdateWeek(r.Context(), r.PathValue("subjectId"), month(r), week)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weeklyPlan": plan})
}

func (s *Server) handleDeleteWeek(w http.ResponseWriter, r *http.Request) {
	plan, err := s.svc.DeleteWeek(r.Context(), r.PathValue("subjectId"), month(r), r.PathValue("weekId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weeklyPlan": plan})
}

func (s *Server) handleMoveWeek(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Direction planning.Direction `json:"direction"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.Direction != planning.Up && body.Direction != planning.Down {
		writeError(w, r, fmt.Errorf("%w: direction must be up or down", errBadRequest))
		return
	}
	plan, err := s.svc.MoveWeek(r.Context(), r.PathValue("subjectId"), month(r), r.PathValue("weekId"), body.Direction)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weeklyPlan": plan})
}

func (s *Server) handleWeekReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.svc.WeekReports(r.Context(), r.PathValue("subjectId"), month(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, map[string]any{"reports": reports})
}

func (s *Server) handleSaveWeekReport(w http.ResponseWriter, r *http.Request) {
	var report planning.WeekReport
	if err := decodeJSON(w, r, &report); err != nil {
		writeError(w, r, err)
		return
	}
	report.WeekID = r.PathValue("weekId")
	entry, err := s.svc.SaveWeekReport(r.Context(), r.PathValue("subjectId"), month(r), report)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
