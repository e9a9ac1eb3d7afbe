package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"riego/internal/database"
	"riego/internal/models"
	"riego/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	HISTORY_SHEET        = "Historial"
	XLSX_CONTENT_TYPE    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	EXPORT_TIMESTAMP_FMT = "20060102_150405"
)

var historyHeaders = []string{
	"ID",
	"Programación",
	"Zona",
	"Fecha Ejecución",
	"Hora Inicio",
	"Hora Fin",
	"Duración (min)",
	"Caudal (L/min)",
	"Consumo (L)",
	"Resultado",
	"Temperatura",
	"Humedad Antes",
	"Humedad Después",
	"Observaciones",
}

type ExportService struct {
	db    database.DB
	repos repositories.Repository
	now   func() time.Time
	log   logger.Logger
}

func NewExportService(db database.DB, repos repositories.Repository) *ExportService {
	return &ExportService{
		db:    db,
		repos: repos,
		now:   time.Now,
		log:   logger.New("exportService"),
	}
}

// HistoryWorkbook renders one header row followed by one row per record.
func HistoryWorkbook(records []*models.HistoryRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", HISTORY_SHEET); err != nil {
		return nil, err
	}

	for i, header := range historyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(HISTORY_SHEET, cell, header); err != nil {
			return nil, err
		}
	}

	for i, record := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(HISTORY_SHEET, cell, historyRow(record)); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(HISTORY_SHEET, "B", "C", 24); err != nil {
		return nil, err
	}

	return f, nil
}

func historyRow(record *models.HistoryRecord) *[]any {
	scheduleName := ""
	if record.Schedule != nil {
		scheduleName = record.Schedule.Name
	}
	zoneName := ""
	if record.Zone != nil {
		zoneName = record.Zone.Name
	}
	end := ""
	if record.ActualEndTime != nil {
		end = record.ActualEndTime.Short()
	}

	row := []any{
		record.ID,
		scheduleName,
		zoneName,
		record.ExecutedAt.UTC().Format("2006-01-02 15:04"),
		record.ActualStartTime.Short(),
		end,
		record.ActualDurationMinutes,
		record.ActualFlowRate.InexactFloat64(),
		record.TotalConsumption.InexactFloat64(),
		record.Outcome.Label(),
		optionalDecimal(record.AmbientTemperature),
		optionalDecimal(record.SoilMoistureBefore),
		optionalDecimal(record.SoilMoistureAfter),
		record.Notes,
	}
	return &row
}

// ExportHistory returns the XLSX bytes and a timestamped file name.
func (s *ExportService) ExportHistory(
	ctx context.Context,
	filter repositories.HistoryFilter,
) ([]byte, string, error) {
	log := s.log.Function("ExportHistory")

	records, err := s.repos.History.List(ctx, s.db.SQLWithContext(ctx), filter)
	if err != nil {
		return nil, "", log.Err("failed to load history", err)
	}

	f, err := HistoryWorkbook(records)
	if err != nil {
		return nil, "", log.Err("failed to build workbook", err, "records", len(records))
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", log.Err("failed to write workbook", err)
	}

	fileName := fmt.Sprintf("historial_riego_%s.xlsx", s.now().UTC().Format(EXPORT_TIMESTAMP_FMT))
	log.Info("History exported", "records", len(records), "file", fileName)

	return buf.Bytes(), fileName, nil
}

func optionalDecimal(value *decimal.Decimal) any {
	if value == nil {
		return ""
	}
	return value.InexactFloat64()
}
