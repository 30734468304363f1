// internal/models/feedback.go
package models

import (
	"encoding/json"
	"fmt"
)

// Feedback is a free-text comment persisted server-side, scoped to a company.
type Feedback struct {
	ID              string `json:"id"`
	FeedbackComment string `json:"feedback_comment"`
}

type FeedbackListResponse struct {
	CompanyName string     `json:"company_name"`
	Feedbacks   []Feedback `json:"feedbacks"`
}

type CreateFeedbackRequest struct {
	FeedbackComment string `json:"feedback_comment" validate:"notblank"`
}

// Opinion is the local thumbs-up/down on a tender. NoOpinion encodes as JSON null
// and is distinct from having no record at all.
type Opinion string

const (
	NoOpinion   Opinion = ""
	Relevant    Opinion = "relevant"
	NotRelevant Opinion = "not_relevant"
)

// ParseOpinion accepts "relevant", "not_relevant" and "none"/"null"/"" for NoOpinion.
func ParseOpinion(s string) (Opinion, error) {
	switch s {
	case "relevant":
		return Relevant, nil
	case "not_relevant":
		return NotRelevant, nil
	case "", "none", "null":
		return NoOpinion, nil
	default:
		return NoOpinion, fmt.Errorf("unknown feedback value %q", s)
	}
}

func (o Opinion) MarshalJSON() ([]byte, error) {
	if o == NoOpinion {
		return []byte("null"), nil
	}
	return json.Marshal(string(o))
}

func (o *Opinion) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = NoOpinion
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseOpinion(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// TenderFeedback is the locally stored opinion for one tender.
type TenderFeedback struct {
	TenderKey string  `json:"tender_url"`
	Feedback  Opinion `json:"feedback"`
	Timestamp int64   `json:"timestamp"` // unix milliseconds
}
