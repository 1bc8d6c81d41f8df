package http

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"painel/internal/core"
	"painel/internal/log"
	"painel/internal/services"
	"painel/internal/sheets"
)

type (
	apiCard struct {
		Label string `json:"label"`
		Value string `json:"value"`
		Icon  string `json:"icon,omitempty"`
		Color string `json:"color,omitempty"`
	}

	apiRow struct {
		Name   string   `json:"name"`
		Values []string `json:"values"`
	}

	apiYear struct {
		Year                string    `json:"year"`
		Month               int       `json:"month"`
		MonthName           string    `json:"monthName"`
		MonthResolved       bool      `json:"monthResolved"`
		AnnualProfitability string    `json:"annualProfitability"`
		ColumnHeaders       []string  `json:"columnHeaders"`
		Rows                []apiRow  `json:"rows"`
		Cards               []apiCard `json:"cards"`
	}
)

func newAPIYear(r services.YearReport) apiYear {
	out := apiYear{
		Year:                r.Table.Year,
		Month:               int(r.Month),
		MonthName:           core.MonthName(r.Month),
		MonthResolved:       r.MonthResolved,
		AnnualProfitability: r.Table.AnnualProfitability,
		ColumnHeaders:       r.Table.ColumnHeaders,
		Rows:                make([]apiRow, 0, len(r.Table.IndicatorRows)),
		Cards:               make([]apiCard, 0, len(r.Cards)),
	}
	if out.AnnualProfitability == "" {
		out.AnnualProfitability = core.Sentinel
	}
	for _, row := range r.Table.IndicatorRows {
		values := make([]string, len(row.Values))
		for i, c := range row.Values {
			values[i] = core.FormatCell(c)
		}
		out.Rows = append(out.Rows, apiRow{Name: row.Name, Values: values})
	}
	for _, c := range r.Cards {
		out.Cards = append(out.Cards, apiCard{Label: c.Label, Value: c.Display(), Icon: c.Icon, Color: c.Color})
	}
	return out
}

func (s *Server) handleAPIYears(w http.ResponseWriter, r *http.Request, _ *services.Session) {
	years, err := s.dash.Years(r.Context())
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentSheets).ErrorContext(r.Context(), "Year list failed",
			log.FieldError, err, log.FieldOperation, log.OpListYears)
		JSONError(w, r, http.StatusBadGateway, apiMessage(err))
		return
	}
	if years == nil {
		years = []string{}
	}
	JSON(w, http.StatusOK, map[string]any{"years": years})
}

func (s *Server) handleAPIYear(w http.ResponseWriter, r *http.Request, _ *services.Session) {
	year, err := ParseYear(map[string][]string{"year": {mux.Vars(r)["year"]}})
	if err != nil {
		JSONError(w, r, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := ParseOptionalMonth(r.URL.Query())
	if err != nil {
		JSONError(w, r, http.StatusBadRequest, "invalid month")
		return
	}

	report, err := s.dash.Report(r.Context(), year, month)
	switch {
	case errors.Is(err, sheets.ErrYearNotFound):
		JSONError(w, r, http.StatusNotFound, "year not found")
		return
	case err != nil:
		log.FromContext(r.Context()).WithComponent(log.ComponentSheets).ErrorContext(r.Context(), "Year report failed",
			log.FieldYear, year, log.FieldError, err, log.FieldOperation, log.OpReadYear)
		JSONError(w, r, http.StatusBadGateway, apiMessage(err))
		return
	}
	JSON(w, http.StatusOK, newAPIYear(report))
}

func apiMessage(err error) string {
	var apiErr *sheets.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return "upstream spreadsheet unavailable"
}
