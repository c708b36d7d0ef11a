package server

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/randhum/timeclock/internal/domain"
	"github.com/randhum/timeclock/internal/errs"
	"github.com/randhum/timeclock/internal/report"
	"github.com/randhum/timeclock/internal/store"
)

type handlers struct {
	store   *store.Store
	reports *report.Engine
	log     zerolog.Logger
}

// healthz reports liveness only; it does not probe the database, so a
// slow disk never fails a liveness check meant for process supervisors.
func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// report handles GET /api/reports/{employeeID}?from=&to=, returning the
// FIFO-paired session report for that employee over the given period
// (spec §4.5). from/to are RFC3339 timestamps; both default to a 30-day
// trailing window ending now.
func (h *handlers) report(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.ParseInt(chi.URLParam(r, "employeeID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	start, end, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	employee, err := h.store.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	entries, err := h.store.ListEntries(ctx, employeeID, start, end)
	if err != nil {
		h.log.Error().Err(err).Int64("employee_id", employeeID).Msg("failed to list entries for report")
		writeError(w, http.StatusInternalServerError, "failed to load entries")
		return
	}

	rpt := h.reports.Build(*employee, start, end, entries)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rpt); err != nil {
		h.log.Error().Err(err).Msg("failed to encode report response")
	}
}

// exportRawEntries handles GET /api/export/raw-entries.csv, streaming
// every active time entry across all employees ordered by timestamp DESC
// (spec §6). from/to default to the full history.
func (h *handlers) exportRawEntries(w http.ResponseWriter, r *http.Request) {
	start, end, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.URL.Query().Get("from") == "" {
		start = time.Time{}
	}

	entries, err := h.store.ListRawEntryExport(r.Context(), start, end)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list entries for export")
		writeError(w, http.StatusInternalServerError, "failed to load entries")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="raw-entries.csv"`)

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	_ = cw.Write(domain.RawEntryExportHeader)
	for _, e := range entries {
		_ = cw.Write(e.CSVRow())
	}
	cw.Flush()
}

func parsePeriod(r *http.Request) (start, end time.Time, err error) {
	end = time.Now().UTC()
	start = end.AddDate(0, 0, -30)

	if v := r.URL.Query().Get("from"); v != "" {
		start, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return start, end, errs.New(errs.CodeInvalidInput, "invalid from timestamp")
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		end, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return start, end, errs.New(errs.CodeInvalidInput, "invalid to timestamp")
		}
	}
	return start, end, nil
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch errs.CodeOf(err) {
	case errs.CodeNotFound:
		writeError(w, http.StatusNotFound, "employee not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
