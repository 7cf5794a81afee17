package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cafedesk/pos-backend/database/dbhelper"
)

type Reporter interface {
	Dashboard(ctx context.Context) (*dbhelper.DashboardStats, error)
	Revenue(ctx context.Context, start, end time.Time, groupBy string) ([]dbhelper.RevenueBucket, error)
	ProductSales(ctx context.Context, start, end time.Time) ([]dbhelper.ProductSales, error)
	StaffSales(ctx context.Context, start, end time.Time) ([]dbhelper.StaffSales, error)
}

type ReportHandler struct {
	Reports Reporter
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Reports.Dashboard(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *ReportHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	buckets, err := h.Reports.Revenue(r.Context(), start, end, r.URL.Query().Get("group_by"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if buckets == nil {
		buckets = []dbhelper.RevenueBucket{}
	}
	respondJSON(w, http.StatusOK, buckets)
}

func (h *ReportHandler) Products(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	sales, err := h.Reports.ProductSales(r.Context(), start, end)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if sales == nil {
		sales = []dbhelper.ProductSales{}
	}
	respondJSON(w, http.StatusOK, sales)
}

func (h *ReportHandler) Staff(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	sales, err := h.Reports.StaffSales(r.Context(), start, end)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if sales == nil {
		sales = []dbhelper.StaffSales{}
	}
	respondJSON(w, http.StatusOK, sales)
}

// parseDateRange reads start_date/end_date query params (YYYY-MM-DD); the
// end bound is inclusive of the whole day.
func parseDateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	startStr := r.URL.Query().Get("start_date")
	endStr := r.URL.Query().Get("end_date")
	if startStr == "" || endStr == "" {
		respondMessage(w, http.StatusBadRequest, "start_date and end_date are required")
		return time.Time{}, time.Time{}, false
	}

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid start_date")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid end_date")
		return time.Time{}, time.Time{}, false
	}
	return start, end.Add(24*time.Hour - time.Nanosecond), true
}
