package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cmcs/claimserver/internal/services"
	"github.com/cmcs/claimserver/types"
)

// ReportHandler serves generated PDF reports, HR only.
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler constructs a handler with the provided service.
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// ReportRouter registers report routes on the given router.
func ReportRouter(
	r chi.Router,
	reportService *services.ReportService,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewReportHandler(reportService)

	r.Use(authMiddleware, RequireRole(userService, types.RoleHR))
	r.Get("/payments", handler.PaymentReport)
	r.Get("/users", handler.UserReport)
}

// PaymentReport renders the settlement PDF over approved and paid
// claims.
func (h *ReportHandler) PaymentReport(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.reportService.PaymentReport(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to generate report")
		return
	}
	writePDF(w, "claim-payment-report", pdf)
}

// UserReport renders the account directory PDF, optionally filtered by
// the role query parameter.
func (h *ReportHandler) UserReport(w http.ResponseWriter, r *http.Request) {
	role := strings.TrimSpace(r.URL.Query().Get("role"))
	switch role {
	case "", types.RoleLecturer, types.RoleCoordinator, types.RoleManager, types.RoleHR:
	default:
		writeError(w, http.StatusBadRequest, "invalid role filter")
		return
	}

	pdf, err := h.reportService.UserReport(r.Context(), role)
	if err != nil {
		writeServiceError(w, err, "failed to generate report")
		return
	}
	writePDF(w, "user-directory", pdf)
}

func writePDF(w http.ResponseWriter, baseName string, pdf []byte) {
	fileName := fmt.Sprintf("%s-%s.pdf", baseName, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
