package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"billsplit/internal/core"
	"billsplit/internal/log"
	"billsplit/internal/report"
	"billsplit/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady performs a readiness check with dependency verification.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.store == nil {
		checks["store"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else if _, err := s.store.ListBills(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleIndex renders the landing page listing the saved bills.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	bills, err := s.store.ListBills(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List bills error", "error", err)
		http.Error(w, "failed to load bills", http.StatusInternalServerError)
		return
	}

	page, err := report.IndexHTML(bills)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Index render failed", "error", err,
			log.FieldComponent, log.ComponentTemplate)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.store.ListBills(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List bills error", "error", err)
		http.Error(w, "failed to load bills", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	billID, ok := s.billIDParam(w, r)
	if !ok {
		return
	}

	bill, err := s.store.GetBill(r.Context(), billID)
	if err != nil {
		s.billError(w, r, billID, err)
		return
	}

	// The stored date stays ISO-8601; clients see DD/MM/YYYY.
	bill.BillDate = core.DisplayDate(bill.BillDate)
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleBillItems(w http.ResponseWriter, r *http.Request) {
	billID, ok := s.billIDParam(w, r)
	if !ok {
		return
	}

	items, err := s.store.ListItems(r.Context(), billID)
	if err != nil {
		s.billError(w, r, billID, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handlePersonItems(w http.ResponseWriter, r *http.Request) {
	billID, ok := s.billIDParam(w, r)
	if !ok {
		return
	}
	person := r.PathValue("person")

	items, err := s.store.ListItemsByParticipant(r.Context(), billID, person)
	if err != nil {
		s.billError(w, r, billID, err)
		return
	}
	if items == nil {
		items = []core.ItemProjection{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleBillItem(w http.ResponseWriter, r *http.Request) {
	billID, ok := s.billIDParam(w, r)
	if !ok {
		return
	}
	itemID, err := strconv.Atoi(r.PathValue("itemId"))
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	// Absent items answer with an empty list, not a 404.
	items, err := s.store.GetItem(r.Context(), billID, itemID)
	if err != nil {
		s.billError(w, r, billID, err)
		return
	}
	if items == nil {
		items = []core.ItemProjection{}
	}
	writeJSON(w, http.StatusOK, items)
}

// handleSplit computes each participant's share. The default representation
// is the rendered card page; ?format=json returns the structured result.
func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	billID, ok := s.billIDParam(w, r)
	if !ok {
		return
	}

	bill, err := s.store.GetBill(r.Context(), billID)
	if err != nil {
		s.billError(w, r, billID, err)
		return
	}

	result := core.ComputeSplit(bill)

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, result)
		return
	}

	page, err := report.SplitHTML(result)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Split render failed", "error", err,
			log.FieldBillID, billID,
			log.FieldComponent, log.ComponentTemplate)
		http.Error(w, "failed to render split", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleSaveBill(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request", http.StatusBadRequest)
		return
	}

	logger := log.FromContext(r.Context())
	requestLog := log.NewStructuredLogger(logger)

	bill, err := parseBillRequest(body)
	if err != nil {
		logger.WarnContext(r.Context(), "Bill payload rejected", "error", err)
		writeInvalidBill(w)
		return
	}

	saved, err := s.store.SaveBill(r.Context(), bill)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			logger.WarnContext(r.Context(), "Bill validation failed", "error", verr)
			writeInvalidBill(w)
			return
		}
		requestLog.LogError(r.Context(), "Failed to save bill", err,
			log.ComponentBill, log.OpCreate,
			log.LogFields{log.FieldStore: bill.Store, log.FieldItemCount: len(bill.Items)})
		http.Error(w, "failed to save bill", http.StatusInternalServerError)
		return
	}

	requestLog.LogBillSaved(r.Context(), saved.BillID, saved.Store, saved.TotalItems, saved.TotalValue)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleDownloadBill(w http.ResponseWriter, r *http.Request) {
	billID, ok := s.billIDParam(w, r)
	if !ok {
		return
	}

	bill, err := s.store.GetBill(r.Context(), billID)
	if err != nil {
		s.billError(w, r, billID, err)
		return
	}

	data, err := report.BillWorkbook(bill)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Bill workbook encoding failed", "error", err,
			log.FieldBillID, billID)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	filename := report.BillFilename(time.Now())
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(data)
}

func (s *Server) handleDownloadItems(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request", http.StatusBadRequest)
		return
	}

	items, err := parseItemsRequest(body)
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Items payload rejected", "error", err)
		writeInvalidBill(w)
		return
	}

	data, err := report.ItemsWorkbook(items)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Items workbook encoding failed", "error", err,
			log.FieldItemCount, len(items))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	filename := report.ItemsFilename(time.Now())
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(data)
}

// billIDParam extracts the numeric bill id path segment, answering the
// request itself when the segment is malformed.
func (s *Server) billIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	billID, err := strconv.Atoi(r.PathValue("billId"))
	if err != nil {
		http.Error(w, "invalid bill id", http.StatusBadRequest)
		return 0, false
	}
	return billID, true
}

// billError maps store errors to responses; missing bills become 404s.
func (s *Server) billError(w http.ResponseWriter, r *http.Request, billID int, err error) {
	if errors.Is(err, core.ErrBillNotFound) {
		http.Error(w, "bill not found", http.StatusNotFound)
		return
	}
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Bill lookup failed", "error", err,
		log.FieldBillID, billID)
	http.Error(w, "failed to load bill", http.StatusInternalServerError)
}
