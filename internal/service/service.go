// internal/service/service.go
package service

import (
	"context"

	"tenderec/internal/common/logger"
	"tenderec/internal/models"
	"tenderec/internal/query"
)

// Query key roots.
const (
	KeyCompany         = "company"
	KeyRecommendations = "recommendations"
	KeyFeedbacks       = "feedbacks"
	KeyTender          = "tender"
)

// Backend is the REST surface the service reads and writes through.
type Backend interface {
	GetCompany(ctx context.Context, name string) (*models.CompanyProfile, error)
	CreateCompany(ctx context.Context, name, description string) (*models.CompanyProfile, error)
	GetRecommendations(ctx context.Context, params models.RecommendationsParams) (*models.RecommendationsResponse, error)
	GetFeedbacks(ctx context.Context, company string) (*models.FeedbackListResponse, error)
	CreateFeedback(ctx context.Context, company, comment string) (*models.Feedback, error)
	GetTender(ctx context.Context, name string) (*models.TenderDetails, error)
	AskQuestion(ctx context.Context, req models.TenderQuestionRequest) (*models.TenderQuestionResponse, error)
}

// Service binds backend calls to the query cache: reads are cached and
// retried, mutations invalidate the reads they affect once they succeed.
type Service struct {
	backend Backend
	cache   *query.Client
	company string
	logger  logger.Logger
}

func New(backend Backend, cache *query.Client, defaultCompany string, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		backend: backend,
		cache:   cache,
		company: defaultCompany,
		logger:  log.Named("service"),
	}
}

// DefaultCompany is the company the client acts for.
func (s *Service) DefaultCompany() string {
	return s.company
}

func (s *Service) Cache() *query.Client {
	return s.cache
}

func CompanyKey(name string) query.Key {
	return query.Key{KeyCompany, name}
}

func RecommendationsKey(p models.RecommendationsParams) query.Key {
	return query.Key{KeyRecommendations, p.Company, string(p.NameMatch), string(p.IndustryMatch)}
}

func FeedbacksKey(company string) query.Key {
	return query.Key{KeyFeedbacks, company}
}

func TenderKey(name string) query.Key {
	return query.Key{KeyTender, name}
}

// Company reads a profile. A NotFound error means the profile should be created.
func (s *Service) Company(ctx context.Context, name string) (*models.CompanyProfile, error) {
	return query.Fetch(ctx, s.cache, CompanyKey(name), func(ctx context.Context) (*models.CompanyProfile, error) {
		return s.backend.GetCompany(ctx, name)
	})
}

func (s *Service) CreateCompany(ctx context.Context, name, description string) (*models.CompanyProfile, error) {
	profile, err := query.Mutate(ctx, s.cache, func(ctx context.Context) (*models.CompanyProfile, error) {
		return s.backend.CreateCompany(ctx, name, description)
	}, CompanyKey(name))
	if err != nil {
		return nil, err
	}
	s.logger.Info("Company profile created", map[string]interface{}{
		"company": name,
	})
	return profile, nil
}

func (s *Service) Recommendations(ctx context.Context, params models.RecommendationsParams) (*models.RecommendationsResponse, error) {
	return query.Fetch(ctx, s.cache, RecommendationsKey(params), func(ctx context.Context) (*models.RecommendationsResponse, error) {
		return s.backend.GetRecommendations(ctx, params)
	})
}

func (s *Service) Feedbacks(ctx context.Context, company string) (*models.FeedbackListResponse, error) {
	return query.Fetch(ctx, s.cache, FeedbacksKey(company), func(ctx context.Context) (*models.FeedbackListResponse, error) {
		return s.backend.GetFeedbacks(ctx, company)
	})
}

func (s *Service) CreateFeedback(ctx context.Context, company, comment string) (*models.Feedback, error) {
	return query.Mutate(ctx, s.cache, func(ctx context.Context) (*models.Feedback, error) {
		return s.backend.CreateFeedback(ctx, company, comment)
	}, FeedbacksKey(company))
}

func (s *Service) Tender(ctx context.Context, name string) (*models.TenderDetails, error) {
	return query.Fetch(ctx, s.cache, TenderKey(name), func(ctx context.Context) (*models.TenderDetails, error) {
		return s.backend.GetTender(ctx, name)
	})
}

// Ask sends one chat question about a tender on behalf of the default company.
// Answers are not cached.
func (s *Service) Ask(ctx context.Context, tenderName, question string) (*models.TenderQuestionResponse, error) {
	return s.backend.AskQuestion(ctx, models.TenderQuestionRequest{
		TenderName:  tenderName,
		Question:    question,
		CompanyName: s.company,
	})
}
