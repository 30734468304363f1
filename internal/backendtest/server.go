// internal/backendtest/server.go
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"tenderec/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Server is an in-memory recommendation backend serving the /api/v1 routes.
type Server struct {
	*httptest.Server

	mu              sync.Mutex
	companies       map[string]models.CompanyProfile
	recommendations map[string][]models.TenderRecommendation
	feedbacks       map[string][]models.Feedback
	tenders         map[string]models.TenderDetails
	failures        int
	calls           map[string]int
}

// New starts a backend that is closed when t finishes.
func New(t testing.TB) *Server {
	s := &Server{
		companies:       make(map[string]models.CompanyProfile),
		recommendations: make(map[string][]models.TenderRecommendation),
		feedbacks:       make(map[string][]models.Feedback),
		tenders:         make(map[string]models.TenderDetails),
		calls:           make(map[string]int),
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.countAndFail)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/companies/{name}", s.getCompany)
		r.Put("/companies/{name}", s.putCompany)
		r.Get("/tenders/recommendations", s.getRecommendations)
		r.Post("/tenders/ask", s.ask)
		r.Get("/tenders/{name}", s.getTender)
		r.Get("/feedback/{company}", s.getFeedbacks)
		r.Post("/feedback/{company}", s.postFeedback)
	})
	return r
}

// AddCompany seeds a profile.
func (s *Server) AddCompany(p models.CompanyProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[p.CompanyName] = p
}

// AddRecommendations appends tenders recommended to company, in upstream order.
func (s *Server) AddRecommendations(company string, recs ...models.TenderRecommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendations[company] = append(s.recommendations[company], recs...)
}

func (s *Server) AddTender(t models.TenderDetails) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.FileURLs == nil {
		t.FileURLs = []string{}
	}
	s.tenders[t.Name] = t
}

// FailNext makes the next n requests answer 500.
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
}

// Calls returns how many requests hit "METHOD /path" (path unescaped).
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// Feedbacks returns the comments stored for company.
func (s *Server) Feedbacks(company string) []models.Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Feedback(nil), s.feedbacks[company]...)
}

func (s *Server) countAndFail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.Method+" "+r.URL.Path]++
		fail := s.failures > 0
		if fail {
			s.failures--
		}
		s.mu.Unlock()

		if fail {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "internal error"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func param(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": what + " not found"})
}

func (s *Server) getCompany(w http.ResponseWriter, r *http.Request) {
	name := param(r, "name")
	s.mu.Lock()
	p, ok := s.companies[name]
	s.mu.Unlock()
	if !ok {
		notFound(w, "Company")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// putCompany builds a profile from the description's comma separated phrases.
func (s *Server) putCompany(w http.ResponseWriter, r *http.Request) {
	name := param(r, "name")
	var req models.CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Description) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "description is required"})
		return
	}

	var industries []string
	for _, part := range strings.Split(req.Description, ",") {
		if part = strings.TrimSpace(part); part != "" {
			industries = append(industries, part)
		}
	}
	p := models.CompanyProfile{
		CompanyName: name,
		Profile: models.CompanyProfileBody{
			CompanyInfo: models.CompanyInfo{Name: name, Industries: industries},
			MatchingCriteria: models.MatchingCriteria{
				ServiceCategories: industries,
				CPVCodes:          []string{},
				TargetAuthorities: []string{},
				Geography:         models.CompanyGeography{PrimaryCountry: "PL"},
			},
		},
		CreatedAt: time.Now().UTC().Format("2006-01-02T15:04:05"),
	}

	s.mu.Lock()
	s.companies[name] = p
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) getRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	company := q.Get("company")
	nameMatch := models.MatchLevel(q.Get("name_match"))
	industryMatch := models.MatchLevel(q.Get("industry_match"))

	s.mu.Lock()
	all := s.recommendations[company]
	s.mu.Unlock()

	out := make([]models.TenderRecommendation, 0, len(all))
	for _, rec := range all {
		if nameMatch != "" && rec.NameMatch != nameMatch {
			continue
		}
		if industryMatch != "" && rec.IndustryMatch != industryMatch {
			continue
		}
		out = append(out, rec)
	}
	writeJSON(w, http.StatusOK, models.RecommendationsResponse{Company: company, Recommendations: out})
}

func (s *Server) getTender(w http.ResponseWriter, r *http.Request) {
	name := param(r, "name")
	s.mu.Lock()
	t, ok := s.tenders[name]
	s.mu.Unlock()
	if !ok {
		notFound(w, "Tender")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	var req models.TenderQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	t, ok := s.tenders[req.TenderName]
	s.mu.Unlock()
	if !ok {
		notFound(w, "Tender")
		return
	}
	writeJSON(w, http.StatusOK, models.TenderQuestionResponse{
		TenderName: req.TenderName,
		Question:   req.Question,
		Answer:     fmt.Sprintf("%s (%s) for %s: %s", t.Name, t.Organization, req.CompanyName, req.Question),
	})
}

func (s *Server) getFeedbacks(w http.ResponseWriter, r *http.Request) {
	company := param(r, "company")
	s.mu.Lock()
	list := append([]models.Feedback{}, s.feedbacks[company]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, models.FeedbackListResponse{CompanyName: company, Feedbacks: list})
}

func (s *Server) postFeedback(w http.ResponseWriter, r *http.Request) {
	company := param(r, "company")
	var req models.CreateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.FeedbackComment) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "feedback_comment is required"})
		return
	}
	f := models.Feedback{ID: uuid.NewString(), FeedbackComment: req.FeedbackComment}
	s.mu.Lock()
	s.feedbacks[company] = append(s.feedbacks[company], f)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, f)
}
