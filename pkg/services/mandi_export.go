package services

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/yadnesh111/AgriSaarthi/pkg/models"
)

const mandiSheetName = "Mandi Rates"

var mandiExportColumns = []struct {
	header string
	field  string
	price  bool
}{
	{"State", FieldState, false},
	{"District", FieldDistrict, false},
	{"Market", FieldMarket, false},
	{"Commodity", FieldCommodity, false},
	{"Variety", FieldVariety, false},
	{"Arrival Date", FieldArrivalDate, false},
	{"Min", FieldMinPrice, true},
	{"Max", FieldMaxPrice, true},
	{"Modal", FieldModalPrice, true},
}

// ExportRecordsXLSX writes records as a single-sheet workbook.
// Price cells are numeric when they parse, text otherwise.
func ExportRecordsXLSX(records []models.RawRecord, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", mandiSheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(mandiExportColumns))
	for i, col := range mandiExportColumns {
		header[i] = col.header
	}
	if err := f.SetSheetRow(mandiSheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(mandiSheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, record := range records {
		row := make([]interface{}, len(mandiExportColumns))
		for j, col := range mandiExportColumns {
			if col.price {
				if price, ok := ParsePrice(record, col.field); ok {
					row[j] = price.InexactFloat64()
					continue
				}
			}
			row[j] = record.String(col.field)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(mandiSheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
