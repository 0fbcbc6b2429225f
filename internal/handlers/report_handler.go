package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Chodo25/FaradayCoins/internal/repositories"
	"github.com/Chodo25/FaradayCoins/internal/services"
	"github.com/Chodo25/FaradayCoins/internal/utils"
)

type ReportHandler struct {
	BaseHandler
	reports services.ReportService
	export  services.ExportService
}

func NewReportHandler(reports services.ReportService, export services.ExportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler: NewBaseHandler(logger),
		reports:     reports,
		export:      export,
	}
}

// courseFilter reads the optional course_id query parameter
func courseFilter(c *gin.Context) repositories.CourseFilter {
	var filter repositories.CourseFilter
	if courseID, ok := queryUint(c, "course_id"); ok {
		filter.CourseID = &courseID
	}
	return filter
}

// TopStudents returns the leaderboard, highest balance first
// GET /api/v1/reports/top-students
func (h *ReportHandler) TopStudents(c *gin.Context) {
	top, err := h.reports.TopStudents(c.Request.Context(), courseFilter(c), queryInt(c, "limit", 0))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": top})
}

// CoinDistribution returns the balance histogram buckets
// GET /api/v1/reports/coin-distribution
func (h *ReportHandler) CoinDistribution(c *gin.Context) {
	buckets, err := h.reports.CoinDistribution(c.Request.Context(), courseFilter(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"buckets": buckets})
}

// TransactionsOverTime returns monthly grant/deduct/redeem counts
// GET /api/v1/reports/transactions-over-time
func (h *ReportHandler) TransactionsOverTime(c *gin.Context) {
	points, err := h.reports.TransactionsOverTime(c.Request.Context(), courseFilter(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": points})
}

// RedemptionSummary returns redemption counts per reward and status
// GET /api/v1/reports/redemption-summary
func (h *ReportHandler) RedemptionSummary(c *gin.Context) {
	summary, err := h.reports.RedemptionSummary(c.Request.Context(), courseFilter(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": summary})
}

// StudentActivity returns per-student transaction counts and last activity
// GET /api/v1/reports/student-activity
func (h *ReportHandler) StudentActivity(c *gin.Context) {
	activity, err := h.reports.StudentActivity(c.Request.Context(), courseFilter(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": activity})
}

// Export streams the full student report as a spreadsheet download
// GET /api/v1/reports/export
func (h *ReportHandler) Export(c *gin.Context) {
	data, err := h.export.ExportStudentReport(c.Request.Context(), courseFilter(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("student-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
