package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Call is one voice-assistant call record as returned by the call log API.
type Call struct {
	ID           string        `json:"id"`
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt"`
	Type         string        `json:"type"`
	Status       string        `json:"status"`
	EndedReason  string        `json:"endedReason,omitempty"`
	Transcript   string        `json:"transcript,omitempty"`
	RecordingURL string        `json:"recordingUrl,omitempty"`
	Summary      string        `json:"summary,omitempty"`
	Analysis     *CallAnalysis `json:"analysis,omitempty"`
	Customer     *CallCustomer `json:"customer,omitempty"`
	Cost         float64       `json:"cost,omitempty"`
	Duration     float64       `json:"duration,omitempty"` // seconds
}

type CallAnalysis struct {
	Summary           string   `json:"summary,omitempty"`
	SuccessEvaluation FlexBool `json:"successEvaluation,omitempty"`
}

type CallCustomer struct {
	Number string `json:"number,omitempty"`
	Name   string `json:"name,omitempty"`
}

// FlexBool is true only for a JSON true or the string "true". Scores,
// labels and any other evaluation value decode as false.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = FlexBool(t)
	case string:
		*b = FlexBool(strings.EqualFold(strings.TrimSpace(t), "true"))
	default:
		*b = false
	}
	return nil
}

func (b FlexBool) MarshalJSON() ([]byte, error) { return json.Marshal(bool(b)) }

// Succeeded reports whether the call counts as handled: either the
// analysis marked it successful or it ended normally.
func (c Call) Succeeded() bool {
	if c.Analysis != nil && bool(c.Analysis.SuccessEvaluation) {
		return true
	}
	return c.Status == "ended"
}

// CustomerNumber falls back to "Unknown Number" like the call log view.
func (c Call) CustomerNumber() string {
	if c.Customer != nil && c.Customer.Number != "" {
		return c.Customer.Number
	}
	return "Unknown Number"
}

// FormatDuration renders seconds as "Xm Ys"; zero renders as "0s".
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	s := int(seconds)
	return fmt.Sprintf("%dm %ds", s/60, s%60)
}
