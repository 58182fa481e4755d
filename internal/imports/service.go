package imports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ImportService struct {
	DB *gorm.DB
}

func (is *ImportService) GetImports(input ImportFilterInput) ([]ImportRecord, int64, int, error) {
	if input.Page <= 0 {
		input.Page = 1
	}
	if input.PageSize <= 0 || input.PageSize > 100 {
		input.PageSize = 20
	}

	base := is.DB.Model(&ImportRecord{})
	if input.Status != nil && strings.TrimSpace(*input.Status) != "" {
		base = base.Where("status = ?", strings.TrimSpace(*input.Status))
	}
	if input.Filename != nil && strings.TrimSpace(*input.Filename) != "" {
		base = base.Where("LOWER(nome_arquivo) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(*input.Filename))+"%")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(input.PageSize)))
	if totalPages == 0 {
		totalPages = 1
	}

	var rows []ImportRecord
	if err := base.
		Session(&gorm.Session{}).
		Order("created_at DESC").
		Limit(input.PageSize).
		Offset((input.Page - 1) * input.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, 0, err
	}

	return rows, total, totalPages, nil
}

// Export renders the full import history as CSV or XLSX for download.
func (is *ImportService) Export(format string) (contentType, filename string, out []byte, err error) {
	var rows []ImportRecord
	if err := is.DB.Order("created_at DESC").Find(&rows).Error; err != nil {
		return "", "", nil, err
	}

	stamp := time.Now().Format("20060102_150405")

	switch strings.ToLower(format) {
	case "", "csv":
		data, err := buildCSV(rows)
		if err != nil {
			return "", "", nil, err
		}
		return "text/csv", "imports_" + stamp + ".csv", data, nil
	case "xlsx":
		data, err := buildXLSX(rows)
		if err != nil {
			return "", "", nil, err
		}
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"imports_" + stamp + ".xlsx", data, nil
	default:
		return "", "", nil, fmt.Errorf("unsupported export format %q", format)
	}
}

var exportHeader = []string{
	"id", "filename", "file_hash", "status",
	"records_processed", "records_inserted", "missing_types", "created_at",
}

func exportRow(rec ImportRecord) []string {
	return []string{
		strconv.FormatUint(uint64(rec.ID), 10),
		rec.Filename,
		rec.FileHash,
		rec.Status,
		strconv.Itoa(rec.RecordsProcessed),
		strconv.Itoa(rec.RecordsInserted),
		strings.Join(rec.MissingTypes, ","),
		rec.CreatedAt.Format(time.RFC3339),
	}
}

func buildCSV(rows []ImportRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, rec := range rows {
		if err := w.Write(exportRow(rec)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildXLSX(rows []ImportRecord) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Imports"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2E8F0"}},
	})

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	endCol, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	_ = f.SetCellStyle(sheet, "A1", endCol, headerStyle)

	for i, rec := range rows {
		values := exportRow(rec)
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
