package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ecanovas/tourbook/internal/domain"
)

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

// pagination is the envelope metadata for paginated list responses.
type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// parseUUIDParam extracts a UUID path parameter from the chi route context.
func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: must be a UUID", name)
	}
	return id, nil
}

// parseDate parses a required "2006-01-02" date string as a UTC midnight.
func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: want YYYY-MM-DD", field)
	}
	return t, nil
}

// parsePositiveInt parses a positive integer query value.
func parsePositiveInt(field, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", field)
	}
	return v, nil
}

// queryPagination reads ?page= and ?limit= into the domain's pagination
// params. Absent or malformed values fall back to the defaults.
func queryPagination(r *http.Request) domain.PaginationParams {
	var page, limit *int
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = &v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = &v
	}
	return domain.NewPaginationParams(page, limit)
}

// windowFromStrings assembles a domain.TimeWindow from wire-format fields.
// endDate may be empty for a single-day window.
func windowFromStrings(startDate, endDate, startTime, endTime string) (domain.TimeWindow, error) {
	var w domain.TimeWindow

	start, err := parseDate("start_date", startDate)
	if err != nil {
		return w, err
	}
	w.Dates.Start = start
	if endDate != "" {
		end, err := parseDate("end_date", endDate)
		if err != nil {
			return w, err
		}
		w.Dates.End = &end
	}

	if w.StartTime, err = domain.ParseTimeOfDay(startTime); err != nil {
		return w, fmt.Errorf("invalid start_time: want HH:MM")
	}
	if w.EndTime, err = domain.ParseTimeOfDay(endTime); err != nil {
		return w, fmt.Errorf("invalid end_time: want HH:MM")
	}
	return w, nil
}
