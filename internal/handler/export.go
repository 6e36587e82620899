// Package handler — export.go implements GET /export.
// Returns every reservation and its bookings as a flat table.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).
package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/ecanovas/tourbook/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV
// export.
var csvHeaders = []string{
	"reservation_id", "reservation_code", "user_id", "status", "total_amount",
	"service_name", "provider_name", "start_date", "end_date",
	"start_time", "end_time", "quantity", "unit_price", "booking_status",
}

// GetExport handles GET /export.
// It returns one row per service booking, with reservation fields repeated;
// reservations without bookings emit one row with empty booking columns.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.export.Rows(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, rows)
		return
	}

	data := make([]exportRowResponse, len(rows))
	for i, row := range rows {
		data[i] = exportRowToResponse(row)
	}
	respondJSON(w, http.StatusOK, data)
}

// writeCSV encodes the rows as CSV with a header line.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck — bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(exportRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

// --- mapping helpers --------------------------------------------------------

type exportRowResponse struct {
	ReservationID   string  `json:"reservation_id"`
	ReservationCode string  `json:"reservation_code,omitempty"`
	UserID          string  `json:"user_id"`
	Status          string  `json:"status"`
	TotalAmount     float64 `json:"total_amount"`
	ServiceName     string  `json:"service_name,omitempty"`
	ProviderName    string  `json:"provider_name,omitempty"`
	StartDate       string  `json:"start_date,omitempty"`
	EndDate         string  `json:"end_date,omitempty"`
	StartTime       string  `json:"start_time,omitempty"`
	EndTime         string  `json:"end_time,omitempty"`
	Quantity        int     `json:"quantity,omitempty"`
	UnitPrice       float64 `json:"unit_price,omitempty"`
	BookingStatus   string  `json:"booking_status,omitempty"`
}

func exportRowToResponse(r domain.ExportRow) exportRowResponse {
	return exportRowResponse{
		ReservationID:   r.ReservationID,
		ReservationCode: r.ReservationCode,
		UserID:          r.ReservationUser,
		Status:          r.Status,
		TotalAmount:     r.TotalAmount,
		ServiceName:     r.ServiceName,
		ProviderName:    r.ProviderName,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Quantity:        r.Quantity,
		UnitPrice:       r.UnitPrice,
		BookingStatus:   r.BookingStatus,
	}
}

// exportRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// Empty booking columns stay empty strings so the CSV stays rectangular.
func exportRowToCSVRecord(r domain.ExportRow) []string {
	quantity := ""
	unitPrice := ""
	if r.ServiceName != "" {
		quantity = strconv.Itoa(r.Quantity)
		unitPrice = strconv.FormatFloat(r.UnitPrice, 'f', 2, 64)
	}
	return []string{
		r.ReservationID,
		r.ReservationCode,
		r.ReservationUser,
		r.Status,
		strconv.FormatFloat(r.TotalAmount, 'f', 2, 64),
		r.ServiceName,
		r.ProviderName,
		r.StartDate,
		r.EndDate,
		r.StartTime,
		r.EndTime,
		quantity,
		unitPrice,
		r.BookingStatus,
	}
}
