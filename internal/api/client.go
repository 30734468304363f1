// internal/api/client.go
package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"tenderec/internal/common/config"
	"tenderec/internal/common/errors"
	httpclient "tenderec/internal/common/http"
	"tenderec/internal/common/logger"
	"tenderec/internal/common/validation"
	"tenderec/internal/models"
)

// Operation names, used for metrics labels and error messages.
const (
	OpGetCompany         = "company.get"
	OpCreateCompany      = "company.create"
	OpGetRecommendations = "recommendations.list"
	OpGetFeedbacks       = "feedback.list"
	OpCreateFeedback     = "feedback.create"
	OpGetTender          = "tender.get"
	OpAskQuestion        = "tender.ask"
)

// Client is the typed boundary to the recommendation backend.
type Client struct {
	http      *httpclient.Client
	validator *validation.Validator
	logger    logger.Logger
}

func NewClient(httpClient *httpclient.Client, v *validation.Validator, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if v == nil {
		v = validation.MustNew(false)
	}
	return &Client{
		http:      httpClient,
		validator: v,
		logger:    log.Named("api"),
	}
}

// NewFromConfig builds the transport and validator from backend settings.
func NewFromConfig(cfg config.BackendConfig, log logger.Logger) (*Client, error) {
	v, err := validation.New(cfg.ValidateResponses)
	if err != nil {
		return nil, err
	}
	hc := httpclient.NewClient(cfg.APIBase(), config.GetDuration(cfg.Timeout), log)
	return NewClient(hc, v, log), nil
}

func (c *Client) call(ctx context.Context, r httpclient.Request, schema string, out interface{}) error {
	data, err := c.http.Do(ctx, r)
	if err != nil {
		return err
	}
	if err := c.validator.Response(r.Operation, schema, data); err != nil {
		c.logger.Warn("Response failed schema validation", map[string]interface{}{
			"operation": r.Operation,
			"error":     err.Error(),
		})
		return err
	}
	return httpclient.Decode(r.Operation, data, out)
}

func requireName(field, value string) error {
	if validation.IsBlank(value) {
		return errors.NewValidationSkipError(field)
	}
	return nil
}

// GetCompany fetches a company profile. A 404 is a NotFound error.
func (c *Client) GetCompany(ctx context.Context, name string) (*models.CompanyProfile, error) {
	if err := requireName("company_name", name); err != nil {
		return nil, err
	}
	var out models.CompanyProfile
	err := c.call(ctx, httpclient.Request{
		Operation: OpGetCompany,
		Method:    http.MethodGet,
		Path:      httpclient.PathEscape("companies", name),
		NotFound:  true,
		Resource:  "company " + name,
	}, validation.SchemaCompany, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCompany asks the backend to build a profile from a free-text description.
// A blank description is a ValidationSkip and nothing is sent.
func (c *Client) CreateCompany(ctx context.Context, name, description string) (*models.CompanyProfile, error) {
	if err := requireName("company_name", name); err != nil {
		return nil, err
	}
	req := models.CreateCompanyRequest{Description: strings.TrimSpace(description)}
	if err := c.validator.Request(req); err != nil {
		return nil, err
	}
	var out models.CompanyProfile
	err := c.call(ctx, httpclient.Request{
		Operation: OpCreateCompany,
		Method:    http.MethodPut,
		Path:      httpclient.PathEscape("companies", name),
		Body:      req,
	}, validation.SchemaCompany, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRecommendations lists scored tenders. Match filters are only sent when set.
func (c *Client) GetRecommendations(ctx context.Context, params models.RecommendationsParams) (*models.RecommendationsResponse, error) {
	if err := c.validator.Request(params); err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("company", params.Company)
	if params.NameMatch != "" {
		query.Set("name_match", string(params.NameMatch))
	}
	if params.IndustryMatch != "" {
		query.Set("industry_match", string(params.IndustryMatch))
	}

	var out models.RecommendationsResponse
	err := c.call(ctx, httpclient.Request{
		Operation: OpGetRecommendations,
		Method:    http.MethodGet,
		Path:      httpclient.PathEscape("tenders", "recommendations"),
		Query:     query,
	}, validation.SchemaRecommendations, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetFeedbacks(ctx context.Context, company string) (*models.FeedbackListResponse, error) {
	if err := requireName("company_name", company); err != nil {
		return nil, err
	}
	var out models.FeedbackListResponse
	err := c.call(ctx, httpclient.Request{
		Operation: OpGetFeedbacks,
		Method:    http.MethodGet,
		Path:      httpclient.PathEscape("feedback", company),
	}, validation.SchemaFeedbackList, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateFeedback appends a free-text comment. Blank comments are a ValidationSkip.
func (c *Client) CreateFeedback(ctx context.Context, company, comment string) (*models.Feedback, error) {
	if err := requireName("company_name", company); err != nil {
		return nil, err
	}
	req := models.CreateFeedbackRequest{FeedbackComment: strings.TrimSpace(comment)}
	if err := c.validator.Request(req); err != nil {
		return nil, err
	}
	var out models.Feedback
	err := c.call(ctx, httpclient.Request{
		Operation: OpCreateFeedback,
		Method:    http.MethodPost,
		Path:      httpclient.PathEscape("feedback", company),
		Body:      req,
	}, validation.SchemaFeedback, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTender fetches tender details. A 404 is a NotFound error.
func (c *Client) GetTender(ctx context.Context, name string) (*models.TenderDetails, error) {
	if err := requireName("tender_name", name); err != nil {
		return nil, err
	}
	var out models.TenderDetails
	err := c.call(ctx, httpclient.Request{
		Operation: OpGetTender,
		Method:    http.MethodGet,
		Path:      httpclient.PathEscape("tenders", name),
		NotFound:  true,
		Resource:  "tender " + name,
	}, validation.SchemaTender, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AskQuestion sends a question about one tender. The question is trimmed and a
// blank one is a ValidationSkip. A 404 means the tender is unknown.
func (c *Client) AskQuestion(ctx context.Context, req models.TenderQuestionRequest) (*models.TenderQuestionResponse, error) {
	req.Question = strings.TrimSpace(req.Question)
	if err := c.validator.Request(req); err != nil {
		return nil, err
	}
	var out models.TenderQuestionResponse
	err := c.call(ctx, httpclient.Request{
		Operation: OpAskQuestion,
		Method:    http.MethodPost,
		Path:      httpclient.PathEscape("tenders", "ask"),
		Body:      req,
		NotFound:  true,
		Resource:  "tender " + req.TenderName,
	}, validation.SchemaTenderAnswer, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
