package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

func TestWriteCalendar(t *testing.T) {
	feb14 := models.DailySalesSummary{
		Date:             models.NewDate(2024, time.February, 14),
		GrossSales:       models.CentsToAmount(7500),
		Tips:             models.CentsToAmount(500),
		NetSales:         models.CentsToAmount(7000),
		TransactionCount: 2,
		Status:           models.SummaryOK,
	}
	cal := models.MonthlyCalendar{Year: 2024, Month: 1, Days: map[int]models.DailySalesSummary{14: feb14}}
	assert.Equal(t, "sales-2024-02.xlsx", CalendarFilename(cal))

	var buf bytes.Buffer
	require.NoError(t, WriteCalendar(&buf, cal, []models.DailySalesSummary{feb14}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := "February 2024"
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	// header + 29 days of a leap February
	require.Len(t, rows, 30)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "2024-02-14", rows[14][0])
	assert.Equal(t, "Wednesday", rows[14][1])
	assert.Equal(t, "2", rows[14][2])
	assert.Len(t, rows[1], 2, "days without data stay blank")

	top, err := f.GetRows("Top Days")
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "2024-02-14", top[1][1])
}
