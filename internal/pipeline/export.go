package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"coralguide/internal"
	"coralguide/internal/vocab"
)

// Output headers are pt-BR, matching the sheet the export feeds.
var csvHeaders = []string{"url da imagem", "nome", "seasons", "weather", "categoria"}

func WriteCSV(records []internal.ItemRecord, outputPath string) error {
	f, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeaders); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{rec.Image, rec.Name, vocab.Join(rec.Seasons), vocab.Join(rec.Weather), rec.Category}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteSeasonCSV is the reduced variant: a single season column holding only
// the first canonical match.
func WriteSeasonCSV(records []internal.ItemRecord, outputPath string) error {
	f, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"url da imagem", "nome", "season", "categoria"}); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{rec.Image, rec.Name, vocab.First(rec.Seasons), rec.Category}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ExportXLSX(records []internal.ItemRecord, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range csvHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		r := i + 2
		values := []string{rec.Image, rec.Name, vocab.Join(rec.Seasons), vocab.Join(rec.Weather), rec.Category}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func createOutput(outputPath string) (*os.File, error) {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(outputPath)
}
