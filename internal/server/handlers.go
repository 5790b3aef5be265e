package server

import (
	"net/http"
	"strconv"

	"loipen-tracker/internal/api"
	apperrors "loipen-tracker/internal/errors"
	"loipen-tracker/internal/services"
)

type startRequest struct {
	Activity string `json:"activity"`
}

type manualEntryRequest struct {
	Date     string `json:"date"`
	Activity string `json:"activity"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

type uploadRequest struct {
	FileName string `json:"file_name"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) timerStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	dash, err := s.api.GetDashboard(r.Context(), user)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) timerStart(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	session, err := s.api.StartTimer(r.Context(), user, req.Activity)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) timerPause(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	session, err := s.api.PauseTimer(r.Context(), user)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) timerResume(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	session, err := s.api.ResumeTimer(r.Context(), user)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) timerStop(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	entry, err := s.api.StopTimer(r.Context(), user)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) manualEntry(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	var req manualEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	entry, err := s.api.SaveManualEntry(r.Context(), api.ManualEntryRequest{
		UserID:   user,
		Date:     req.Date,
		Activity: req.Activity,
		Start:    req.Start,
		End:      req.End,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// listEntries lists the caller's own entries.
func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	filter, err := entryFilter(r, user)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	report, err := s.api.SearchEntries(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func entryFilter(r *http.Request, user string) (services.EntryFilter, error) {
	q := r.URL.Query()
	filter := services.EntryFilter{
		UserID:   user,
		From:     q.Get("from"),
		To:       q.Get("to"),
		Season:   q.Get("season"),
		Activity: q.Get("activity"),
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return filter, apperrors.NewInvalidInputError("limit", limit, "must be a number")
		}
		filter.Limit = n
	}
	return filter, nil
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	summary, err := s.api.GetSummary(r.Context(), user)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) seasons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"seasons": s.api.ListSeasons(r.Context())})
}

func (s *Server) receiptUpload(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	var req uploadRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	upload, err := s.api.ReceiptUploadURL(r.Context(), user, req.FileName)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, upload)
}

func (s *Server) receiptDownload(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	url, err := s.api.ReceiptDownloadURL(r.Context(), user, r.URL.Query().Get("key"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) logDiesel(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	var req api.DieselRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	req.UserID = user
	entry, err := s.api.LogDiesel(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) updateDiesel(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	var req api.DieselRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	req.UserID = user
	entry, err := s.api.UpdateDiesel(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) saveExpense(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	var req api.ExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	req.UserID = user
	expense, err := s.api.SaveExpense(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) saveCashTaking(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	var req api.CashTakingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	req.UserID = user
	taking, err := s.api.SaveCashTaking(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, taking)
}

func (s *Server) updateCashTaking(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	var req api.CashTakingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	req.UserID = user
	taking, err := s.api.UpdateCashTaking(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taking)
}

// listRecords lists the caller's diesel, expenses and takings.
func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	filter, err := entryFilter(r, user)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	book, err := s.api.ListRecords(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}
