// Package export writes stats reports to spreadsheet files.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/soniclabs/beamkit/internal/control"
)

const statsSheet = "Stats"

// StatsWorkbook writes the given stats intervals to an .xlsx workbook at
// path, one row per interval.
func StatsWorkbook(path string, intervals []control.StatsInterval) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(statsSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Interval", "Messages", "Data (bytes)", "Peak connections", "Mean connections", "Peak channels"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(statsSheet, cell, h); err != nil {
			return err
		}
	}

	for row, iv := range intervals {
		values := []any{
			iv.IntervalID,
			iv.Messages.All.Count,
			iv.Messages.All.Data,
			iv.Connections.Peak,
			iv.Connections.Mean,
			iv.Channels.Peak,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(statsSheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(statsSheet, "A", "A", 22); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
