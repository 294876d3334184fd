package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Alexico1969/bkk-tracker/internal/domain/models"
	"go.uber.org/zap"
)

// ReportRunner is the slice of the watch service the handler needs.
type ReportRunner interface {
	Run(ctx context.Context, refresh bool) (models.Report, error)
}

type FaresHandler struct {
	log     *zap.Logger
	runner  ReportRunner
	timeout time.Duration
}

func NewFaresHandler(log *zap.Logger, runner ReportRunner, timeout time.Duration) *FaresHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	return &FaresHandler{
		log:     log,
		runner:  runner,
		timeout: timeout,
	}
}

// GetReport runs (or serves the cached) fare watch. Per-pair upstream
// failures still produce a 200 report; only configuration and auth
// failures turn into an error response.
func (h *FaresHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	refresh := parseBoolQuery(r, "refresh")

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	report, err := h.runner.Run(ctx, refresh)
	if err != nil {
		h.log.Error("fare watch run failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, models.Report{
			Status:      models.StatusError,
			Error:       err.Error(),
			GeneratedAt: time.Now().UTC(),
		})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func parseBoolQuery(r *http.Request, key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
