// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"tenderec/internal/common/errors"
	"tenderec/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Request(t *testing.T) {
	v := MustNew(true)

	tests := []struct {
		name     string
		req      interface{}
		wantCode errors.ErrorCode
	}{
		{
			name: "valid params",
			req:  models.RecommendationsParams{Company: "greenworks", NameMatch: models.PerfectMatch},
		},
		{
			name:     "blank company is skipped",
			req:      models.RecommendationsParams{Company: "  "},
			wantCode: errors.ErrCodeValidationSkip,
		},
		{
			name:     "unknown level is invalid",
			req:      models.RecommendationsParams{Company: "greenworks", IndustryMatch: "GREAT"},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "blank question is skipped",
			req:      models.TenderQuestionRequest{TenderName: "Roads", Question: "\t\n"},
			wantCode: errors.ErrCodeValidationSkip,
		},
		{
			name: "company name is optional",
			req:  models.TenderQuestionRequest{TenderName: "Roads", Question: "Deadline?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Request(tt.req)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
		})
	}
}

func TestValidator_Response(t *testing.T) {
	tests := []struct {
		name    string
		schema  string
		body    string
		wantErr bool
	}{
		{name: "recommendations", schema: SchemaRecommendations, body: `{"company":"g","recommendations":[{"tender_name":"A","name_match":"PERFECT_MATCH","industry_match":"NO_MATCH"}]}`},
		{name: "unknown level", schema: SchemaRecommendations, body: `{"recommendations":[{"tender_name":"A","name_match":"GOOD","industry_match":"NO_MATCH"}]}`, wantErr: true},
		{name: "null procedure type", schema: SchemaTender, body: `{"name":"A","procedure_type":null,"files_count":0,"file_urls":[]}`},
		{name: "negative file count", schema: SchemaTender, body: `{"name":"A","files_count":-1}`, wantErr: true},
		{name: "feedback without id", schema: SchemaFeedback, body: `{"feedback_comment":"x"}`, wantErr: true},
		{name: "not json", schema: SchemaCompany, body: `<html>`, wantErr: true},
	}

	v := MustNew(true)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Response("op", tt.schema, []byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeInvalidResponse, errors.CodeOf(err))
				return
			}
			assert.NoError(t, err)
		})
	}

	assert.NoError(t, MustNew(false).Response("op", SchemaTender, []byte(`<html>`)), "disabled checks accept anything")
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank(" \t\n"))
	assert.False(t, IsBlank(" a "))
}
