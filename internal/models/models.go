package models

import "time"

// Job is the summary shape used by the listing endpoint and the feed.
// Immutable once fetched; the browser replaces its list wholesale on reload.
type Job struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
}

// DisplayLocation falls back to "Remote" when the upstream left location unset.
func (j Job) DisplayLocation() string {
	if j.Location == "" {
		return "Remote"
	}
	return j.Location
}

type JobDetails struct {
	Job

	// Description is the upstream's free-text HTML.
	Description string `json:"description"`
	// DescriptionText is a plain-text excerpt derived from Description.
	DescriptionText string `json:"description_text,omitempty"`

	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// UploadedFile is one attachment held by the application form before submit.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ApplicationData is built fresh per submission attempt and never persisted.
type ApplicationData struct {
	FirstName   string `validate:"required"`
	LastName    string `validate:"required"`
	Email       string `validate:"required,email"`
	Phone       string `validate:"required"`
	LinkedInURL string `validate:"omitempty,linkedin"`
	Consent     bool   `validate:"required"`

	SalaryMin string
	SalaryMax string

	Resume          *UploadedFile
	CoverLetter     *UploadedFile
	AdditionalFiles []*UploadedFile
}

// ListEnvelope mirrors the upstream listing response, including the
// pagination fields we follow.
type ListEnvelope struct {
	Jobs       []UpstreamJob `json:"jobs"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
}

// UpstreamJob is the wire shape of a posting as the ATS returns it.
type UpstreamJob struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
	City        string `json:"city"`
	Description string `json:"description"`
	PublishedAt string `json:"original_open_date"`
}

// Summary maps a wire posting to the Job summary.
func (u UpstreamJob) Summary() Job {
	return Job{
		ID:       u.ID,
		Title:    u.Title,
		Company:  u.CompanyName,
		Location: u.City,
	}
}

// Details maps a wire posting to the full record. Published dates arrive as
// either RFC3339 or a bare YYYY-MM-DD; anything else is treated as absent.
func (u UpstreamJob) Details() JobDetails {
	d := JobDetails{
		Job:         u.Summary(),
		Description: u.Description,
	}
	if u.PublishedAt != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, u.PublishedAt); err == nil {
				d.PublishedAt = &t
				break
			}
		}
	}
	return d
}
