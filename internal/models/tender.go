// internal/models/tender.go
package models

import "fmt"

// MatchLevel is the categorical relevance of a tender along one dimension.
type MatchLevel string

const (
	PerfectMatch MatchLevel = "PERFECT_MATCH"
	PartialMatch MatchLevel = "PARTIAL_MATCH"
	DontKnow     MatchLevel = "DONT_KNOW"
	NoMatch      MatchLevel = "NO_MATCH"
)

// MatchLevels lists every level from best to worst.
var MatchLevels = []MatchLevel{PerfectMatch, PartialMatch, DontKnow, NoMatch}

// Weight maps a level onto [0,1] for ordering purposes.
func (m MatchLevel) Weight() float64 {
	switch m {
	case PerfectMatch:
		return 1.0
	case PartialMatch:
		return 0.66
	case DontKnow:
		return 0.33
	default:
		return 0
	}
}

func (m MatchLevel) Valid() bool {
	for _, l := range MatchLevels {
		if l == m {
			return true
		}
	}
	return false
}

// Label is the short human label shown on cards.
func (m MatchLevel) Label() string {
	switch m {
	case PerfectMatch:
		return "Perfect match"
	case PartialMatch:
		return "Partial match"
	case DontKnow:
		return "Hard to judge"
	case NoMatch:
		return "No match"
	default:
		return string(m)
	}
}

// ParseMatchLevel accepts the wire spelling of a level.
func ParseMatchLevel(s string) (MatchLevel, error) {
	m := MatchLevel(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown match level %q", s)
	}
	return m, nil
}

// TenderRecommendation is one scored tender for a company. Immutable once received.
type TenderRecommendation struct {
	TenderName     string     `json:"tender_name"`
	Organization   string     `json:"organization"`
	NameMatch      MatchLevel `json:"name_match"`
	NameReason     string     `json:"name_reason"`
	IndustryMatch  MatchLevel `json:"industry_match"`
	IndustryReason string     `json:"industry_reason"`
}

// Key identifies the tender in the local stores.
func (r TenderRecommendation) Key() string {
	return r.TenderName
}

// Score is the base relevance derived from both match levels.
func (r TenderRecommendation) Score() float64 {
	return (r.NameMatch.Weight() + r.IndustryMatch.Weight()) / 2
}

type RecommendationsResponse struct {
	Company         string                 `json:"company"`
	Recommendations []TenderRecommendation `json:"recommendations"`
}

// RecommendationsParams are the query parameters of the recommendations endpoint.
// Empty match levels are not sent.
type RecommendationsParams struct {
	Company       string     `json:"company" validate:"notblank"`
	NameMatch     MatchLevel `json:"name_match,omitempty" validate:"omitempty,oneof=PERFECT_MATCH PARTIAL_MATCH DONT_KNOW NO_MATCH"`
	IndustryMatch MatchLevel `json:"industry_match,omitempty" validate:"omitempty,oneof=PERFECT_MATCH PARTIAL_MATCH DONT_KNOW NO_MATCH"`
}

type TenderDetails struct {
	TenderURL          string   `json:"tender_url"`
	Name               string   `json:"name"`
	Organization       string   `json:"organization"`
	SubmissionDeadline string   `json:"submission_deadline"`
	InitiationDate     string   `json:"initiation_date"`
	ProcedureType      *string  `json:"procedure_type,omitempty"`
	SourceType         string   `json:"source_type"`
	FilesCount         int      `json:"files_count"`
	FileURLs           []string `json:"file_urls"`
}

type TenderQuestionRequest struct {
	TenderName  string `json:"tender_name" validate:"notblank"`
	Question    string `json:"question" validate:"notblank"`
	CompanyName string `json:"company_name,omitempty"`
}

type TenderQuestionResponse struct {
	TenderName string `json:"tender_name"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}
