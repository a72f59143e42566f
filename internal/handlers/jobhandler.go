package handlers

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/careers-proxy/internal/dtos"
	"github.com/justsurfingit/careers-proxy/internal/middleware"
	"github.com/justsurfingit/careers-proxy/internal/models"
	"github.com/justsurfingit/careers-proxy/internal/services"
)

// JobHandler relays careers-page traffic to the upstream ATS. The bearer
// token stays server-side; visitors never authenticate.
type JobHandler struct {
	Careers *services.CareersService
	Feed    *services.FeedService
}

// NewJobHandler creates the handler with dependencies
func NewJobHandler(careers *services.CareersService, feed *services.FeedService) *JobHandler {
	return &JobHandler{
		Careers: careers,
		Feed:    feed,
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListJobs is the GET /jobs endpoint: the upstream listing as a plain array.
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.Careers.ListJobs(c.Request.Context())
	if err != nil {
		h.fail(c, "list jobs", err)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	c.JSON(http.StatusOK, jobs)
}

// GetJob is the GET /jobs/:id endpoint.
func (h *JobHandler) GetJob(c *gin.Context) {
	details, err := h.Careers.GetJob(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		h.fail(c, "get job", err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// Apply is the POST /jobs/:id/apply endpoint. The browser already validated
// the fields; we forward the multipart body and let the upstream enforce.
func (h *JobHandler) Apply(c *gin.Context) {
	var req dtos.ApplyRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form data: " + err.Error()})
		return
	}

	sub := services.ApplySubmission{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		LinkedIn:  req.LinkedIn,
		SalaryMin: req.SalaryMin,
		SalaryMax: req.SalaryMax,
	}

	var err error
	if sub.Resume, err = formFile(c, "resume"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read resume upload"})
		return
	}
	if sub.CoverLetter, err = formFile(c, "cover_letter"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read cover letter upload"})
		return
	}
	if form, _ := c.MultipartForm(); form != nil {
		for _, fh := range form.File["additional_files"] {
			f, err := readFileHeader(fh)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read file upload"})
				return
			}
			sub.AdditionalFiles = append(sub.AdditionalFiles, f)
		}
	}

	data, err := h.Careers.Apply(c.Request.Context(), c.Param("id"), sub)
	if err != nil {
		log.Printf("[%s] apply failed: %v", requestID(c), err)
		c.JSON(http.StatusBadGateway, dtos.ApplyResponse{Error: "application could not be submitted"})
		return
	}
	c.JSON(http.StatusOK, dtos.ApplyResponse{Success: true, Data: data})
}

// RSS is the GET /careers/rss endpoint.
func (h *JobHandler) RSS(c *gin.Context) {
	jobs, err := h.Careers.ListJobsFull(c.Request.Context())
	if err != nil {
		// Config and upstream failures both collapse to a plain 500; the
		// real reason goes to the log only.
		log.Printf("[%s] rss render failed: %v", requestID(c), err)
		c.String(http.StatusInternalServerError, "feed unavailable")
		return
	}

	body := h.Feed.RenderRSS(jobs, time.Now())
	c.Header("Cache-Control", services.FeedCacheControl)
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(body))
}

// fail logs the real error and answers with a generic message so upstream
// internals never reach the visitor.
func (h *JobHandler) fail(c *gin.Context, op string, err error) {
	log.Printf("[%s] %s failed: %v", requestID(c), op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "upstream request failed"})
}

func requestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDKey)
}

func formFile(c *gin.Context, key string) (*models.UploadedFile, error) {
	fh, err := c.FormFile(key)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		// No multipart body at all is the same as no file.
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	return readFileHeader(fh)
}

func readFileHeader(fh *multipart.FileHeader) (*models.UploadedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return &models.UploadedFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
