package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"flashArb/internal/model"
)

// JsonlStorage appends records as JSON lines to a file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutOpportunityBatch appends a batch of opportunity records.
func (s *JsonlStorage) PutOpportunityBatch(opps []model.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}
	records := make([]any, 0, len(opps))
	for _, opp := range opps {
		records = append(records, opp)
	}
	return s.appendLines(records)
}

// PutSettlement appends one settlement attempt record.
func (s *JsonlStorage) PutSettlement(rec model.SettlementRecord) error {
	return s.appendLines([]any{rec})
}

func (s *JsonlStorage) appendLines(records []any) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
