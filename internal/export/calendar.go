package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

var calendarColumns = []string{"Date", "Weekday", "Transactions", "Gross Sales", "Tips", "Net Sales"}

// CalendarFilename names the workbook for a zero-based month.
func CalendarFilename(cal models.MonthlyCalendar) string {
	return fmt.Sprintf("sales-%04d-%02d.xlsx", cal.Year, cal.Month+1)
}

// WriteCalendar renders a monthly calendar as an xlsx workbook. Every day of the
// month gets a row; days without data are left blank rather than zero.
func WriteCalendar(w io.Writer, cal models.MonthlyCalendar, topDays []models.DailySalesSummary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	month := time.Month(cal.Month + 1)
	sheet := fmt.Sprintf("%s %d", month.String(), cal.Year)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeRow(f, sheet, 1, toRow(calendarColumns)); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		end, _ := excelize.CoordinatesToCellName(len(calendarColumns), 1)
		_ = f.SetCellStyle(sheet, "A1", end, bold)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("create number style: %w", err)
	}

	first := models.NewDate(cal.Year, month, 1)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	for day := 1; day <= daysInMonth; day++ {
		date := models.NewDate(cal.Year, month, day)
		row := []interface{}{date.String(), date.Weekday().String()}
		if summary, ok := cal.Day(day); ok {
			row = append(row, summary.TransactionCount,
				summary.GrossSales.InexactFloat64(),
				summary.Tips.InexactFloat64(),
				summary.NetSales.InexactFloat64())
		}
		if err := writeRow(f, sheet, day+1, row); err != nil {
			return err
		}
	}
	lastRow := daysInMonth + 1
	if err := f.SetCellStyle(sheet, "D2", fmt.Sprintf("F%d", lastRow), money); err != nil {
		return fmt.Errorf("apply number style: %w", err)
	}

	if len(topDays) > 0 {
		if _, err := f.NewSheet("Top Days"); err != nil {
			return fmt.Errorf("create top days sheet: %w", err)
		}
		if err := writeRow(f, "Top Days", 1, toRow([]string{"Rank", "Date", "Transactions", "Gross Sales"})); err != nil {
			return err
		}
		for i, d := range topDays {
			row := []interface{}{i + 1, d.Date.String(), d.TransactionCount, d.GrossSales.InexactFloat64()}
			if err := writeRow(f, "Top Days", i+2, row); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

func toRow(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
