package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/justsurfingit/careers-proxy/internal/config"
	"github.com/justsurfingit/careers-proxy/internal/models"
)

// CareersService wraps the third-party ATS API: published-job listing,
// per-job retrieval and multipart application submission, all behind a static
// bearer token. One HTTP attempt per call, no retries.
type CareersService struct {
	cfg *config.Config
	hc  *http.Client
}

func NewCareersService(cfg *config.Config) *CareersService {
	return &CareersService{
		cfg: cfg,
		hc:  &http.Client{Timeout: 20 * time.Second},
	}
}

// ApplySubmission is the canonical apply payload. Multipart keys on the wire:
// name, email, phone, linkedin, resume, cover_letter, additional_files.
type ApplySubmission struct {
	Name      string
	Email     string
	Phone     string
	LinkedIn  string
	SalaryMin string
	SalaryMax string

	Resume          *models.UploadedFile
	CoverLetter     *models.UploadedFile
	AdditionalFiles []*models.UploadedFile
}

// newRequest builds an authenticated upstream request. An empty token is a
// configuration error surfaced here rather than as an upstream 401.
func (s *CareersService) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	if s.cfg.APIToken == "" {
		return nil, config.ErrMissingToken
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIToken)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// ListJobs fetches every published, open posting. The upstream paginates;
// we follow total_pages until exhausted.
func (s *CareersService) ListJobs(ctx context.Context) ([]models.Job, error) {
	var out []models.Job

	page := 1
	for {
		env, err := s.listPage(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, j := range env.Jobs {
			out = append(out, j.Summary())
		}
		if env.TotalPages == 0 || page >= env.TotalPages {
			break
		}
		page++
	}
	return out, nil
}

// ListJobsFull is ListJobs with the full per-job record kept; the feed needs
// each posting's published timestamp.
func (s *CareersService) ListJobsFull(ctx context.Context) ([]models.JobDetails, error) {
	var out []models.JobDetails

	page := 1
	for {
		env, err := s.listPage(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, j := range env.Jobs {
			out = append(out, j.Details())
		}
		if env.TotalPages == 0 || page >= env.TotalPages {
			break
		}
		page++
	}
	return out, nil
}

func (s *CareersService) listPage(ctx context.Context, page int) (*models.ListEnvelope, error) {
	q := url.Values{}
	q.Set("published", "true")
	q.Set("status", "open")
	q.Set("limit", strconv.Itoa(s.cfg.PageSize))
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}

	req, err := s.newRequest(ctx, http.MethodGet, s.cfg.BaseURL+"/jobs?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("careers list: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: res.StatusCode, Op: "list"}
	}

	var env models.ListEnvelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("careers list decode: %w", err)
	}
	return &env, nil
}

// GetJob fetches one posting's full record, including its description.
func (s *CareersService) GetJob(ctx context.Context, id string) (*models.JobDetails, error) {
	req, err := s.newRequest(ctx, http.MethodGet, s.cfg.BaseURL+"/jobs/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("careers get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, ErrJobNotFound
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: res.StatusCode, Op: "get"}
	}

	var wire models.UpstreamJob
	if err := json.NewDecoder(res.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("careers get decode: %w", err)
	}

	details := wire.Details()
	details.DescriptionText = DescriptionExcerpt(details.Description)
	return &details, nil
}

// Apply forwards a submission to the upstream apply endpoint and returns the
// upstream's parsed JSON body.
func (s *CareersService) Apply(ctx context.Context, jobID string, sub ApplySubmission) (map[string]interface{}, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":       sub.Name,
		"email":      sub.Email,
		"phone":      sub.Phone,
		"linkedin":   sub.LinkedIn,
		"salary_min": sub.SalaryMin,
		"salary_max": sub.SalaryMax,
	}
	for key, val := range fields {
		if val == "" {
			continue
		}
		if err := w.WriteField(key, val); err != nil {
			return nil, fmt.Errorf("careers apply: %w", err)
		}
	}

	if err := writeFilePart(w, "resume", sub.Resume); err != nil {
		return nil, err
	}
	if err := writeFilePart(w, "cover_letter", sub.CoverLetter); err != nil {
		return nil, err
	}
	for _, f := range sub.AdditionalFiles {
		if err := writeFilePart(w, "additional_files", f); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("careers apply: %w", err)
	}

	applyURL := s.cfg.BaseURL + "/jobs/" + url.PathEscape(jobID) + "/apply"
	req, err := s.newRequest(ctx, http.MethodPost, applyURL, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("careers apply: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: res.StatusCode, Op: "apply"}
	}

	var body map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("careers apply decode: %w", err)
	}
	return body, nil
}

func writeFilePart(w *multipart.Writer, key string, f *models.UploadedFile) error {
	if f == nil {
		return nil
	}
	part, err := w.CreateFormFile(key, f.Name)
	if err != nil {
		return fmt.Errorf("careers apply part %s: %w", key, err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return fmt.Errorf("careers apply part %s: %w", key, err)
	}
	return nil
}
