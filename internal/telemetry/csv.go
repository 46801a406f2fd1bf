package telemetry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/markusressel/baram/internal/ui"
)

const CsvFileName = "baram.csv"

var csvHeader = []string{"timestamp", "gpu_temp", "fan_rpm", "pwm_value", "gpu_power"}

// CsvSink appends one row per control cycle to <logDir>/baram.csv.
// The header is only written when the file is created.
type CsvSink struct {
	file   *os.File
	writer *csv.Writer
}

func NewCsvSink(logDir string) (*CsvSink, error) {
	_, err := os.Stat(logDir)
	if errors.Is(err, os.ErrNotExist) {
		ui.Info("Creating log directory: %s", logDir)
		if err = os.MkdirAll(logDir, 0755); err != nil {
			return nil, err
		}
	}

	path := filepath.Join(logDir, CsvFileName)
	info, err := os.Stat(path)
	writeHeader := errors.Is(err, os.ErrNotExist) || (err == nil && info.Size() == 0)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	sink := &CsvSink{
		file:   file,
		writer: csv.NewWriter(file),
	}

	if writeHeader {
		if err = sink.writer.Write(csvHeader); err != nil {
			_ = file.Close()
			return nil, err
		}
		sink.writer.Flush()
	}

	return sink, nil
}

func (s *CsvSink) Record(sample Sample) error {
	rpm := "N/A"
	if sample.Rpm != nil {
		rpm = fmt.Sprintf("%d", *sample.Rpm)
	}

	row := []string{
		sample.Time.Format("2006-01-02 15:04:05"),
		fmt.Sprintf("%.1f", sample.Temperature),
		rpm,
		fmt.Sprintf("%d", sample.Pwm),
		fmt.Sprintf("%.1f", sample.Power),
	}

	if err := s.writer.Write(row); err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}

func (s *CsvSink) Close() error {
	s.writer.Flush()
	return s.file.Close()
}
