package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/Chodo25/FaradayCoins/internal/repositories"
)

type exportService struct {
	reports ReportService
	logger  *slog.Logger
}

func NewExportService(reports ReportService, logger *slog.Logger) ExportService {
	return &exportService{
		reports: reports,
		logger:  logger,
	}
}

// ExportStudentReport renders the report suite as a single xlsx
// workbook: balances, monthly activity and redemption totals on
// separate sheets.
func (s *exportService) ExportStudentReport(ctx context.Context, filter repositories.CourseFilter) ([]byte, error) {
	activities, err := s.reports.StudentActivity(ctx, filter)
	if err != nil {
		return nil, err
	}
	months, err := s.reports.TransactionsOverTime(ctx, filter)
	if err != nil {
		return nil, err
	}
	redemptions, err := s.reports.RedemptionSummary(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const balancesSheet = "Students"
	f.SetSheetName(f.GetSheetName(0), balancesSheet)

	headers := []string{"Student", "Course", "Coins", "Transactions", "Last Activity"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(balancesSheet, cell, header)
	}
	for row, a := range activities {
		values := []interface{}{a.FullName, a.CourseName, a.Coins, a.TransactionCount, ""}
		if a.LastActivity != nil {
			values[4] = a.LastActivity.Format("2006-01-02 15:04")
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(balancesSheet, cell, value)
		}
	}

	const activitySheet = "Monthly Activity"
	if _, err := f.NewSheet(activitySheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	for i, header := range []string{"Month", "Added", "Subtracted", "Redeemed"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(activitySheet, cell, header)
	}
	for row, m := range months {
		for col, value := range []interface{}{m.Month, m.Adds, m.Subtracts, m.Redeems} {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(activitySheet, cell, value)
		}
	}

	const redemptionSheet = "Redemptions"
	if _, err := f.NewSheet(redemptionSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	for i, header := range []string{"Reward", "Pending", "Approved", "Rejected", "Total"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(redemptionSheet, cell, header)
	}
	for row, r := range redemptions {
		for col, value := range []interface{}{r.RewardName, r.Pending, r.Approved, r.Rejected, r.Total} {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(redemptionSheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("student report exported",
		"students", len(activities), "months", len(months), "rewards", len(redemptions))

	return buf.Bytes(), nil
}
