// internal/models/company.go
package models

type CompanyGeography struct {
	PrimaryCountry string `json:"primary_country"`
}

type MatchingCriteria struct {
	ServiceCategories []string         `json:"service_categories"`
	CPVCodes          []string         `json:"cpv_codes"`
	TargetAuthorities []string         `json:"target_authorities"`
	Geography         CompanyGeography `json:"geography"`
}

type CompanyInfo struct {
	Name       string   `json:"name"`
	Industries []string `json:"industries"`
}

type CompanyProfileBody struct {
	CompanyInfo      CompanyInfo      `json:"company_info"`
	MatchingCriteria MatchingCriteria `json:"matching_criteria"`
}

// CompanyProfile is read-only from the client's perspective once created.
type CompanyProfile struct {
	CompanyName string             `json:"company_name"`
	Profile     CompanyProfileBody `json:"profile"`
	CreatedAt   string             `json:"created_at"`
}

// CreateCompanyRequest is the free-text description the backend turns into a profile.
type CreateCompanyRequest struct {
	Description string `json:"description" validate:"notblank"`
}
