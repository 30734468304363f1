package validation

import (
	"fmt"
	"reflect"
	"strings"

	"tenderec/internal/common/errors"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

// Response schema names, one per backend payload.
const (
	SchemaCompany         = "company"
	SchemaRecommendations = "recommendations"
	SchemaFeedbackList    = "feedback_list"
	SchemaFeedback        = "feedback"
	SchemaTender          = "tender"
	SchemaTenderAnswer    = "tender_answer"
)

const matchLevelEnum = `["PERFECT_MATCH", "PARTIAL_MATCH", "DONT_KNOW", "NO_MATCH"]`

var responseSchemas = map[string]string{
	SchemaCompany: `{
		"type": "object",
		"required": ["company_name", "profile"],
		"properties": {
			"company_name": {"type": "string"},
			"profile": {
				"type": "object",
				"properties": {
					"company_info": {"type": "object"},
					"matching_criteria": {"type": "object"}
				}
			},
			"created_at": {"type": "string"}
		}
	}`,
	SchemaRecommendations: `{
		"type": "object",
		"required": ["recommendations"],
		"properties": {
			"company": {"type": "string"},
			"recommendations": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["tender_name", "name_match", "industry_match"],
					"properties": {
						"tender_name": {"type": "string", "minLength": 1},
						"organization": {"type": "string"},
						"name_match": {"enum": ` + matchLevelEnum + `},
						"name_reason": {"type": "string"},
						"industry_match": {"enum": ` + matchLevelEnum + `},
						"industry_reason": {"type": "string"}
					}
				}
			}
		}
	}`,
	SchemaFeedbackList: `{
		"type": "object",
		"required": ["feedbacks"],
		"properties": {
			"company_name": {"type": "string"},
			"feedbacks": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["id", "feedback_comment"],
					"properties": {
						"id": {"type": "string"},
						"feedback_comment": {"type": "string"}
					}
				}
			}
		}
	}`,
	SchemaFeedback: `{
		"type": "object",
		"required": ["id", "feedback_comment"],
		"properties": {
			"id": {"type": "string"},
			"feedback_comment": {"type": "string"}
		}
	}`,
	SchemaTender: `{
		"type": "object",
		"required": ["name"],
		"properties": {
			"tender_url": {"type": "string"},
			"name": {"type": "string"},
			"organization": {"type": "string"},
			"submission_deadline": {"type": "string"},
			"initiation_date": {"type": "string"},
			"procedure_type": {"type": ["string", "null"]},
			"source_type": {"type": "string"},
			"files_count": {"type": "integer", "minimum": 0},
			"file_urls": {"type": "array", "items": {"type": "string"}}
		}
	}`,
	SchemaTenderAnswer: `{
		"type": "object",
		"required": ["answer"],
		"properties": {
			"tender_name": {"type": "string"},
			"question": {"type": "string"},
			"answer": {"type": "string"}
		}
	}`,
}

// Validator checks outgoing requests and, optionally, incoming response bodies.
type Validator struct {
	validate       *validator.Validate
	schemas        map[string]*gojsonschema.Schema
	checkResponses bool
}

func New(checkResponses bool) (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		return nil, fmt.Errorf("failed to register notblank: %w", err)
	}

	schemas := make(map[string]*gojsonschema.Schema, len(responseSchemas))
	for name, raw := range responseSchemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s schema: %w", name, err)
		}
		schemas[name] = schema
	}

	return &Validator{
		validate:       v,
		schemas:        schemas,
		checkResponses: checkResponses,
	}, nil
}

// MustNew is New for static setup; it panics only if a built-in schema is broken.
func MustNew(checkResponses bool) *Validator {
	v, err := New(checkResponses)
	if err != nil {
		panic(err)
	}
	return v
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

// Request validates a request struct. Missing or blank values become
// ValidationSkip errors; anything else is an invalid input.
func (v *Validator) Request(req interface{}) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrs) == 0 {
		return errors.NewInvalidInputError("request", err.Error())
	}
	fe := validationErrs[0]
	switch fe.Tag() {
	case "required", "notblank":
		return errors.NewValidationSkipError(fe.Field())
	case "oneof":
		return errors.NewInvalidInputError(fe.Field(), "should have value in: "+fe.Param())
	default:
		return errors.NewInvalidInputError(fe.Field(), "incorrect value passed")
	}
}

// Response checks a raw response body against the named schema. It is a no-op
// when response checking is disabled.
func (v *Validator) Response(operation, schemaName string, body []byte) error {
	if !v.checkResponses {
		return nil
	}
	schema, ok := v.schemas[schemaName]
	if !ok {
		return fmt.Errorf("unknown response schema %q", schemaName)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errors.NewInvalidResponseError(operation, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return errors.NewInvalidResponseError(operation, fmt.Errorf("data validation failed: %v", errs))
	}
	return nil
}

// IsBlank reports whether s has no visible content.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
