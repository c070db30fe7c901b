package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gkum4/vital-signs-decision-tree/internal/models"
	"github.com/shopspring/decimal"
)

// Column positions in the vital-signs files. Columns not listed here are
// present in the files but not used.
const (
	colID              = 0
	colPressureQuality = 3
	colPulse           = 4
	colBreathing       = 5
	colClass           = 7
)

func newRecordReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true
	return reader
}

func field(record []string, col int, name string) (string, error) {
	if col >= len(record) {
		return "", fmt.Errorf("missing %s column (want at least %d fields, got %d)", name, col+1, len(record))
	}
	return strings.TrimSpace(record[col]), nil
}

func parseVitals(record []string) (int, models.Vitals, error) {
	raw, err := field(record, colID, "id")
	if err != nil {
		return 0, models.Vitals{}, err
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.Vitals{}, fmt.Errorf("invalid id %q: %w", raw, err)
	}

	var values [3]decimal.Decimal
	for i, col := range []struct {
		idx  int
		name string
	}{
		{colPressureQuality, "qPA"},
		{colPulse, "pulso"},
		{colBreathing, "respiração"},
	} {
		raw, err := field(record, col.idx, col.name)
		if err != nil {
			return 0, models.Vitals{}, err
		}
		values[i], err = decimal.NewFromString(raw)
		if err != nil {
			return 0, models.Vitals{}, fmt.Errorf("invalid %s %q: %w", col.name, raw, err)
		}
	}

	return id, models.Vitals{
		PressureQuality: values[0],
		Pulse:           values[1],
		Breathing:       values[2],
	}, nil
}

func parseInstance(record []string) (models.Instance, error) {
	id, vitals, err := parseVitals(record)
	if err != nil {
		return models.Instance{}, err
	}

	raw, err := field(record, colClass, "class")
	if err != nil {
		return models.Instance{}, err
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return models.Instance{}, fmt.Errorf("invalid class %q: %w", raw, err)
	}
	class, err := models.ParseSeverityClass(code)
	if err != nil {
		return models.Instance{}, err
	}

	return models.Instance{ID: id, Vitals: vitals, Class: class}, nil
}

func parseUnlabeled(record []string) (models.UnlabeledInstance, error) {
	id, vitals, err := parseVitals(record)
	if err != nil {
		return models.UnlabeledInstance{}, err
	}
	return models.UnlabeledInstance{ID: id, Vitals: vitals}, nil
}

func line(reader *csv.Reader) int {
	l, _ := reader.FieldPos(0)
	return l
}

// ReadTraining parses labeled records until EOF.
func ReadTraining(r io.Reader) ([]models.Instance, error) {
	reader := newRecordReader(r)

	var instances []models.Instance
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record: %w", err)
		}

		inst, err := parseInstance(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line(reader), err)
		}
		instances = append(instances, inst)
	}

	return instances, nil
}

// ReadTest parses unlabeled records until EOF.
func ReadTest(r io.Reader) ([]models.UnlabeledInstance, error) {
	reader := newRecordReader(r)

	var instances []models.UnlabeledInstance
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record: %w", err)
		}

		inst, err := parseUnlabeled(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line(reader), err)
		}
		instances = append(instances, inst)
	}

	return instances, nil
}

type CSVReader struct {
	filename string
}

func NewCSVReader(filename string) *CSVReader {
	return &CSVReader{filename: filename}
}

func (cr *CSVReader) LoadTraining() ([]models.Instance, error) {
	file, err := os.Open(cr.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	instances, err := ReadTraining(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cr.filename, err)
	}
	return instances, nil
}

func (cr *CSVReader) LoadTest() ([]models.UnlabeledInstance, error) {
	file, err := os.Open(cr.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	instances, err := ReadTest(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cr.filename, err)
	}
	return instances, nil
}
