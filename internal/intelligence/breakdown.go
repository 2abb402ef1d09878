package intelligence

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/llm"
)

// BreakdownRecord is one validated task proposed by the model.
type BreakdownRecord struct {
	Title          string
	Description    string
	Type           domain.TaskType
	Priority       domain.Priority
	Difficulty     domain.Difficulty
	EstimatedHours *float64
}

// RejectedRecord is a model record that failed validation. Index is its
// position in the model's array.
type RejectedRecord struct {
	Index  int
	Reason string
}

// BreakdownResult holds the accepted records in model order and the records
// that were quarantined.
type BreakdownResult struct {
	Records  []BreakdownRecord
	Rejected []RejectedRecord
}

// rawRecord mirrors the JSON shape requested by the breakdown prompt.
type rawRecord struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Type           string   `json:"type"`
	Priority       string   `json:"priority"`
	Difficulty     string   `json:"difficulty"`
	EstimatedHours *float64 `json:"estimatedHours"`
}

// ParseBreakdown extracts the JSON array from raw model output and validates
// every element on its own. Invalid elements are returned in Rejected and
// never reach the store. It fails with domain.ErrParse when no array can be
// decoded or when no element survives validation.
func ParseBreakdown(raw string) (*BreakdownResult, error) {
	elems, err := llm.ExtractJSONArray[json.RawMessage](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrParse, err)
	}

	result := &BreakdownResult{}
	for i, elem := range elems {
		rec, reason := validateRecord(elem)
		if reason != "" {
			result.Rejected = append(result.Rejected, RejectedRecord{Index: i, Reason: reason})
			continue
		}
		result.Records = append(result.Records, rec)
	}

	if len(result.Records) == 0 {
		return nil, fmt.Errorf("%w: no valid task records in %d element(s)", domain.ErrParse, len(elems))
	}
	return result, nil
}

func validateRecord(elem json.RawMessage) (BreakdownRecord, string) {
	var r rawRecord
	if err := json.Unmarshal(elem, &r); err != nil {
		return BreakdownRecord{}, fmt.Sprintf("malformed record: %v", err)
	}

	title := strings.TrimSpace(r.Title)
	if title == "" {
		return BreakdownRecord{}, "title is required"
	}
	taskType, ok := domain.ParseTaskType(r.Type)
	if !ok {
		return BreakdownRecord{}, fmt.Sprintf("invalid type %q", r.Type)
	}
	priority, ok := domain.ParsePriority(r.Priority)
	if !ok {
		return BreakdownRecord{}, fmt.Sprintf("invalid priority %q", r.Priority)
	}
	difficulty, ok := domain.ParseDifficulty(r.Difficulty)
	if !ok {
		return BreakdownRecord{}, fmt.Sprintf("invalid difficulty %q", r.Difficulty)
	}
	if r.EstimatedHours != nil && *r.EstimatedHours <= 0 {
		return BreakdownRecord{}, fmt.Sprintf("estimatedHours must be positive, got %v", *r.EstimatedHours)
	}

	return BreakdownRecord{
		Title:          title,
		Description:    strings.TrimSpace(r.Description),
		Type:           taskType,
		Priority:       priority,
		Difficulty:     difficulty,
		EstimatedHours: r.EstimatedHours,
	}, ""
}
