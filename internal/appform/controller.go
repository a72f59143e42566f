package appform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/justsurfingit/careers-proxy/internal/models"
)

// BannerKind distinguishes the two transient message styles. At most one
// banner of each kind is visible; a newer one replaces the prior immediately.
type BannerKind int

const (
	BannerSuccess BannerKind = iota
	BannerError
)

// Notifier is the UI surface the controller drives. Implementations receive
// their dependencies explicitly instead of looking elements up by id.
type Notifier interface {
	ShowBanner(kind BannerKind, msg string)
	ClearBanner(kind BannerKind)
	// SetSubmitting disables the submit control and swaps its label for a
	// busy indicator while a request is in flight.
	SetSubmitting(busy bool)
	MarkInvalid(fields []string)
	AddFileToken(slot Slot, name string)
	RemoveFileToken(slot Slot, name string)
	ResetForm()
}

// Applicant holds the scalar form fields.
type Applicant struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	LinkedInURL string
	Consent     bool
	SalaryMin   string
	SalaryMax   string
}

// ValidationError carries the joined per-field messages. The request is never
// sent when validation fails.
type ValidationError struct {
	Messages []string
	Fields   []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ". ")
}

var linkedinRe = regexp.MustCompile(`^https?://(www\.)?linkedin\.com/.+`)

const (
	successBannerTTL = 5 * time.Second
	errorBannerTTL   = 8 * time.Second
)

// Controller collects applicant fields and files, validates them and submits
// one multipart POST to the proxy's apply route.
type Controller struct {
	mu       sync.Mutex
	hc       *http.Client
	endpoint string // proxy base, e.g. http://localhost:8080
	notifier Notifier
	validate *validator.Validate

	successTTL time.Duration
	errorTTL   time.Duration

	jobID      string
	applicant  Applicant
	resume     *models.UploadedFile
	cover      *models.UploadedFile
	additional []*models.UploadedFile

	submitting bool
	bannerSeq  map[BannerKind]int
}

type Option func(*Controller)

// WithHTTPClient overrides the default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Controller) { c.hc = hc }
}

// WithBannerTTLs overrides the auto-dismiss durations.
func WithBannerTTLs(success, failure time.Duration) Option {
	return func(c *Controller) {
		c.successTTL = success
		c.errorTTL = failure
	}
}

func New(endpoint string, notifier Notifier, opts ...Option) *Controller {
	v := validator.New()
	// Optional field: an absent value always passes, a present one must look
	// like a linkedin.com URL.
	v.RegisterValidation("linkedin", func(fl validator.FieldLevel) bool {
		return linkedinRe.MatchString(fl.Field().String())
	})

	c := &Controller{
		hc:         &http.Client{Timeout: 30 * time.Second},
		endpoint:   strings.TrimRight(endpoint, "/"),
		notifier:   notifier,
		validate:   v,
		successTTL: successBannerTTL,
		errorTTL:   errorBannerTTL,
		bannerSeq:  map[BannerKind]int{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetJobID points the controller at the posting being applied to; the id
// comes from the browser controller's location.
func (c *Controller) SetJobID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jobID = id
}

// SetApplicant replaces the scalar fields.
func (c *Controller) SetApplicant(a Applicant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applicant = a
}

// AttachFile validates and stores one upload. Rejections leave the pending
// set untouched and return the user-visible message.
func (c *Controller) AttachFile(slot Slot, name string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if slot == SlotAdditional && len(c.additional) >= maxAdditionalFiles {
		msg := fmt.Sprintf("You can attach up to %d additional files", maxAdditionalFiles)
		c.showBannerLocked(BannerError, msg, c.errorTTL)
		return errors.New(msg)
	}

	f, err := checkFile(name, data)
	if err != nil {
		c.showBannerLocked(BannerError, err.Error(), c.errorTTL)
		return err
	}

	switch slot {
	case SlotResume:
		c.resume = f
	case SlotCoverLetter:
		c.cover = f
	case SlotAdditional:
		c.additional = append(c.additional, f)
	}
	c.notifier.AddFileToken(slot, name)
	return nil
}

// RemoveFile clears a slot: the resume/cover-letter singleton, or the named
// entry filtered out of the additional list.
func (c *Controller) RemoveFile(slot Slot, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch slot {
	case SlotResume:
		c.resume = nil
	case SlotCoverLetter:
		c.cover = nil
	case SlotAdditional:
		kept := c.additional[:0]
		for _, f := range c.additional {
			if f.Name != name {
				kept = append(kept, f)
			}
		}
		c.additional = kept
	}
	c.notifier.RemoveFileToken(slot, name)
}

// PendingFiles reports the current submission set sizes (resume, cover
// letter, additional).
func (c *Controller) PendingFiles() (bool, bool, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resume != nil, c.cover != nil, len(c.additional)
}

// buildData assembles a fresh ApplicationData for this attempt.
func (c *Controller) buildData() models.ApplicationData {
	return models.ApplicationData{
		FirstName:       c.applicant.FirstName,
		LastName:        c.applicant.LastName,
		Email:           c.applicant.Email,
		Phone:           c.applicant.Phone,
		LinkedInURL:     c.applicant.LinkedInURL,
		Consent:         c.applicant.Consent,
		SalaryMin:       c.applicant.SalaryMin,
		SalaryMax:       c.applicant.SalaryMax,
		Resume:          c.resume,
		CoverLetter:     c.cover,
		AdditionalFiles: c.additional,
	}
}

// fieldMessages maps validator failures to the joined, user-facing wording.
var fieldMessages = map[string]string{
	"FirstName":   "First name is required",
	"LastName":    "Last name is required",
	"Phone":       "Phone number is required",
	"Consent":     "You must consent to data processing",
	"LinkedInURL": "LinkedIn URL must be a valid linkedin.com link",
}

func (c *Controller) validateData(data models.ApplicationData) *ValidationError {
	var msgs, fields []string

	if err := c.validate.Struct(data); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
				switch {
				case fe.Field() == "Email" && fe.Tag() == "required":
					msgs = append(msgs, "Email is required")
				case fe.Field() == "Email":
					msgs = append(msgs, "Email must be a valid address")
				default:
					if m, ok := fieldMessages[fe.Field()]; ok {
						msgs = append(msgs, m)
					} else {
						msgs = append(msgs, fe.Field()+" is invalid")
					}
				}
			}
		}
	}

	if data.Resume == nil {
		fields = append(fields, "Resume")
		msgs = append(msgs, "Resume is required")
	}

	if len(msgs) == 0 {
		return nil
	}
	return &ValidationError{Messages: msgs, Fields: fields}
}

// Submit validates and, when clean, issues exactly one multipart POST to the
// apply route. Re-entry while a request is in flight is a no-op.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil
	}

	data := c.buildData()
	if verr := c.validateData(data); verr != nil {
		c.notifier.MarkInvalid(verr.Fields)
		c.showBannerLocked(BannerError, verr.Error(), c.errorTTL)
		c.mu.Unlock()
		return verr
	}

	c.submitting = true
	jobID := c.jobID
	c.mu.Unlock()

	c.notifier.SetSubmitting(true)
	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
		c.notifier.SetSubmitting(false)
	}()

	if err := c.post(ctx, jobID, data); err != nil {
		c.mu.Lock()
		c.showBannerLocked(BannerError, "Something went wrong submitting your application. Please try again.", c.errorTTL)
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.applicant = Applicant{}
	c.resume = nil
	c.cover = nil
	c.additional = nil
	c.showBannerLocked(BannerSuccess, "Thank you, your application has been submitted.", c.successTTL)
	c.mu.Unlock()

	c.notifier.ResetForm()
	return nil
}

func (c *Controller) post(ctx context.Context, jobID string, data models.ApplicationData) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":       strings.TrimSpace(data.FirstName + " " + data.LastName),
		"email":      data.Email,
		"phone":      data.Phone,
		"linkedin":   data.LinkedInURL,
		"salary_min": data.SalaryMin,
		"salary_max": data.SalaryMax,
	}
	for key, val := range fields {
		if val == "" {
			continue
		}
		if err := w.WriteField(key, val); err != nil {
			return err
		}
	}

	files := map[string]*models.UploadedFile{
		"resume":       data.Resume,
		"cover_letter": data.CoverLetter,
	}
	for key, f := range files {
		if f == nil {
			continue
		}
		part, err := w.CreateFormFile(key, f.Name)
		if err != nil {
			return err
		}
		if _, err := part.Write(f.Data); err != nil {
			return err
		}
	}
	for _, f := range data.AdditionalFiles {
		part, err := w.CreateFormFile("additional_files", f.Name)
		if err != nil {
			return err
		}
		if _, err := part.Write(f.Data); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	applyURL := fmt.Sprintf("%s/api/v1/jobs/%s/apply", c.endpoint, url.PathEscape(jobID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, applyURL, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("apply route status %d", res.StatusCode)
	}

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return err
	}
	if !body.Success {
		return fmt.Errorf("apply rejected: %s", body.Error)
	}
	return nil
}

// showBannerLocked replaces any visible banner of the same kind and arms a
// fresh auto-dismiss timer. A stale timer firing after replacement is a
// no-op because its sequence number no longer matches.
func (c *Controller) showBannerLocked(kind BannerKind, msg string, ttl time.Duration) {
	c.bannerSeq[kind]++
	seq := c.bannerSeq[kind]

	c.notifier.ClearBanner(kind)
	c.notifier.ShowBanner(kind, msg)

	time.AfterFunc(ttl, func() {
		c.mu.Lock()
		current := c.bannerSeq[kind]
		c.mu.Unlock()
		if seq == current {
			c.notifier.ClearBanner(kind)
		}
	})
}
