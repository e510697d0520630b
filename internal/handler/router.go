package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shipcast/internal/config"
)

// indexPage is the minimal upload form; the interesting output is the JSON
// result payload with its embedded chart page.
const indexPage = `<!DOCTYPE html>
<html>
<head><title>Shipment Volume Forecast</title></head>
<body>
<h1>Shipment Volume Forecast</h1>
<form action="/analyze" method="post" enctype="multipart/form-data">
  <label>Shipment file (CSV): <input type="file" name="file" required></label><br>
  <label>Year: <input type="number" name="year" value="2024" required></label><br>
  <label>Days before holiday: <input type="number" name="days_before_event" value="2" required></label><br>
  <label>Days after holiday: <input type="number" name="days_after_event" value="1" required></label><br>
  <label>Measure:
    <select name="measure">
      <option value="shipments">Shipments</option>
      <option value="weight">Weight</option>
      <option value="both">Shipments and Weight</option>
    </select>
  </label><br>
  <label>Grouping:
    <select name="grouping">
      <option value="origin_city">Origin City</option>
      <option value="area">Area / Sub-area / Destination</option>
    </select>
  </label><br>
  <button type="submit">Analyze</button>
</form>
</body>
</html>`

// NewRouter wires the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, h *Handler, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
	})
	router.GET("/healthz", h.Healthz)
	router.POST("/analyze", h.Analyze)
	router.POST("/runs/:id/growth", h.UpdateGrowth)
	router.POST("/runs/:id/compare", h.Compare)

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
