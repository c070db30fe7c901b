package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gkum4/vital-signs-decision-tree/internal/models"
)

// StreamingReader yields unlabeled instances batchSize at a time so a large
// test file never has to be held in memory.
type StreamingReader struct {
	closer    io.Closer
	reader    *csv.Reader
	batchSize int
}

func NewStreamingReader(r io.Reader, batchSize int) *StreamingReader {
	if batchSize <= 0 {
		batchSize = 1000
	}
	sr := &StreamingReader{
		reader:    newRecordReader(r),
		batchSize: batchSize,
	}
	if c, ok := r.(io.Closer); ok {
		sr.closer = c
	}
	return sr
}

func OpenStreamingReader(filename string, batchSize int) (*StreamingReader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return NewStreamingReader(file, batchSize), nil
}

// ReadBatch returns up to batchSize instances. It returns io.EOF only once
// no instances remain.
func (sr *StreamingReader) ReadBatch() ([]models.UnlabeledInstance, error) {
	batch := make([]models.UnlabeledInstance, 0, sr.batchSize)

	for len(batch) < sr.batchSize {
		record, err := sr.reader.Read()
		if err == io.EOF {
			if len(batch) == 0 {
				return nil, io.EOF
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record: %w", err)
		}

		inst, err := parseUnlabeled(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line(sr.reader), err)
		}
		batch = append(batch, inst)
	}

	return batch, nil
}

func (sr *StreamingReader) Close() error {
	if sr.closer == nil {
		return nil
	}
	return sr.closer.Close()
}

// ProcessTestFile streams filename through processor one batch at a time.
func ProcessTestFile(filename string, batchSize int, processor func([]models.UnlabeledInstance) error) error {
	reader, err := OpenStreamingReader(filename, batchSize)
	if err != nil {
		return err
	}
	defer reader.Close()

	return ProcessBatches(reader, processor)
}

func ProcessBatches(reader *StreamingReader, processor func([]models.UnlabeledInstance) error) error {
	batchNum := 0
	for {
		batch, err := reader.ReadBatch()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading batch %d: %w", batchNum, err)
		}

		if err := processor(batch); err != nil {
			return fmt.Errorf("error processing batch %d: %w", batchNum, err)
		}

		batchNum++
	}
}
