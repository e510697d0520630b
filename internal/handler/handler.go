// Package handler wires the HTTP transport to the analysis service.
package handler

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"shipcast/internal/ingest"
	"shipcast/internal/runstore"
	"shipcast/internal/service"
)

// Analyzer is the slice of the analysis service the transport needs.
type Analyzer interface {
	Analyze(params service.AnalyzeParams, rows []ingest.Row) (*service.Output, error)
	OverrideGrowth(runID string, input float64) (*service.Output, error)
	Compare(runID string, actualRows []ingest.Row) (*service.Output, error)
	Run(id string) (*runstore.Run, error)
}

// groupings maps the grouping form value to the categorical columns the
// grouper partitions on.
var groupings = map[string][]string{
	"":            {"Origin City"},
	"origin_city": {"Origin City"},
	"area":        {"AREA", "AREA 2", "Destname"},
}

// Handler serves the upload, override and comparison endpoints.
type Handler struct {
	analyzer Analyzer
	logger   *slog.Logger
}

func New(analyzer Analyzer, logger *slog.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		logger:   logger.With("component", "http.handler"),
	}
}

// Analyze handles the analysis upload: a CSV file plus the target year and
// holiday window day counts.
func (h *Handler) Analyze(c *gin.Context) {
	year, err := formInt(c, "year")
	if err != nil {
		writeError(c, newHTTPError(http.StatusBadRequest, "invalid_input", "invalid input for year", err))
		return
	}
	daysBefore, err := formInt(c, "days_before_event")
	if err != nil {
		writeError(c, newHTTPError(http.StatusBadRequest, "invalid_input", "invalid input for days_before_event", err))
		return
	}
	daysAfter, err := formInt(c, "days_after_event")
	if err != nil {
		writeError(c, newHTTPError(http.StatusBadRequest, "invalid_input", "invalid input for days_after_event", err))
		return
	}
	measures, err := requestMeasures(c.PostForm("measure"))
	if err != nil {
		writeError(c, newHTTPError(http.StatusBadRequest, "invalid_input", "unknown measure", err))
		return
	}
	keyColumns, exists := groupings[c.PostForm("grouping")]
	if !exists {
		writeError(c, newHTTPError(http.StatusBadRequest, "invalid_input", "unknown grouping", nil))
		return
	}

	outputs := make(map[string]*service.Output, len(measures))
	for _, measure := range measures {
		rows, httpErr := h.readUpload(c, "file", ingest.Spec{Measure: measure, KeyColumns: keyColumns})
		if httpErr != nil {
			writeError(c, httpErr)
			return
		}

		out, err := h.analyzer.Analyze(service.AnalyzeParams{
			Year:       year,
			DaysBefore: daysBefore,
			DaysAfter:  daysAfter,
			Measure:    measure,
			KeyColumns: keyColumns,
		}, rows)
		if err != nil {
			h.logger.Error("analysis failed", "measure", measure.Name, "error", err.Error())
			writeError(c, asHTTPError(err))
			return
		}
		outputs[measure.Name] = out
	}

	if len(measures) == 1 {
		writeJSON(c, http.StatusOK, outputs[measures[0].Name])
		return
	}
	writeJSON(c, http.StatusOK, outputs)
}

// requestMeasures resolves the measure form value; "both" analyzes the
// shipment count and weight columns of one upload in a single request,
// each getting its own run.
func requestMeasures(name string) ([]ingest.Measure, error) {
	if strings.EqualFold(strings.TrimSpace(name), "both") {
		return []ingest.Measure{ingest.MeasureShipments, ingest.MeasureWeight}, nil
	}
	measure, err := ingest.MeasureByName(name)
	if err != nil {
		return nil, err
	}
	return []ingest.Measure{measure}, nil
}

// UpdateGrowth recomputes a stored run's forecast from its baseline with a
// user-supplied growth percentage.
func (h *Handler) UpdateGrowth(c *gin.Context) {
	input, err := strconv.ParseFloat(c.PostForm("growth"), 64)
	if err != nil {
		writeError(c, newHTTPError(http.StatusBadRequest, "invalid_input", "invalid growth value", err))
		return
	}

	out, err := h.analyzer.OverrideGrowth(c.Param("id"), input)
	if err != nil {
		writeError(c, asHTTPError(err))
		return
	}

	writeJSON(c, http.StatusOK, out)
}

// Compare merges an uploaded actuals file into a stored run and returns
// the forecast-vs-actual view.
func (h *Handler) Compare(c *gin.Context) {
	run, err := h.analyzer.Run(c.Param("id"))
	if err != nil {
		writeError(c, asHTTPError(err))
		return
	}

	rows, httpErr := h.readUpload(c, "actual_data", ingest.Spec{
		Measure:    run.Measure,
		KeyColumns: run.KeyColumns,
	})
	if httpErr != nil {
		writeError(c, httpErr)
		return
	}

	out, err := h.analyzer.Compare(c.Param("id"), rows)
	if err != nil {
		writeError(c, asHTTPError(err))
		return
	}

	writeJSON(c, http.StatusOK, out)
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *Handler) readUpload(c *gin.Context, field string, spec ingest.Spec) ([]ingest.Row, *HTTPError) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, newHTTPError(http.StatusBadRequest, "invalid_input", "no file uploaded", err)
	}
	if err := ingest.CheckFilename(fileHeader.Filename); err != nil {
		return nil, newHTTPError(http.StatusBadRequest, "invalid_input", err.Error(), err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, newHTTPError(http.StatusBadRequest, "invalid_input", "unable to open upload", err)
	}
	defer closeUpload(file, h.logger)

	rows, err := ingest.ReadCSV(file, spec)
	if err != nil {
		return nil, newHTTPError(http.StatusBadRequest, "invalid_input", err.Error(), err)
	}
	return rows, nil
}

func closeUpload(file multipart.File, logger *slog.Logger) {
	if err := file.Close(); err != nil {
		logger.Warn("unable to close upload", "error", err.Error())
	}
}

func formInt(c *gin.Context, field string) (int, error) {
	return strconv.Atoi(c.PostForm(field))
}
