package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripplanner/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_code", "trip_name", "activity_name", "date", "time",
	"category", "estimated_cost", "votes", "locked", "proposed_by",
}

// ExportItinerary handles GET /trips/{id}/export.
// It returns one row per activity in itinerary order.
// Use ?format=csv to receive a CSV attachment; default is JSON.
func (s *Server) ExportItinerary(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathID(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "json" {
		badRequest(w, "format must be csv or json")
		return
	}

	rows, err := s.export.Itinerary(r.Context(), tripID, userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if format == "csv" {
		writeCSV(w, rows)
		return
	}
	out := make([]ItineraryRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, itineraryRowToResponse(row))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV encodes rows as a CSV attachment named after the trip code.
func writeCSV(w http.ResponseWriter, rows []domain.ItineraryRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	// bytes.Buffer writes never fail, so neither does the csv.Writer.
	_ = cw.Write(csvHeaders)
	for _, row := range rows {
		_ = cw.Write(itineraryRowToCSVRecord(row))
	}
	cw.Flush()

	filename := "itinerary.csv"
	if len(rows) > 0 {
		filename = fmt.Sprintf("itinerary-%s.csv", rows[0].TripCode)
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func itineraryRowToResponse(r domain.ItineraryRow) ItineraryRow {
	row := ItineraryRow{
		TripCode:      r.TripCode,
		TripName:      r.TripName,
		ActivityName:  r.ActivityName,
		Date:          openapi_types.Date{Time: r.Date},
		Category:      r.Category,
		EstimatedCost: r.EstimatedCost,
		Votes:         r.Votes,
		Locked:        r.Locked,
		ProposedBy:    r.ProposedBy,
	}
	if r.Time != "" {
		row.Time = &r.Time
	}
	return row
}

// itineraryRowToCSVRecord encodes a row as a flat string slice.
// A missing time or cost is encoded as an empty string.
func itineraryRowToCSVRecord(r domain.ItineraryRow) []string {
	cost := ""
	if r.EstimatedCost != nil {
		cost = r.EstimatedCost.StringFixed(2)
	}
	return []string{
		r.TripCode,
		r.TripName,
		r.ActivityName,
		r.Date.Format("2006-01-02"),
		r.Time,
		string(r.Category),
		cost,
		strconv.Itoa(r.Votes),
		strconv.FormatBool(r.Locked),
		r.ProposedBy,
	}
}
