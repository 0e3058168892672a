package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/observability"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/repositories"
)

// JobHandler manages job postings and the proposals submitted against them.
type JobHandler struct {
	jobs      repositories.JobRepository
	proposals repositories.ProposalRepository
}

// NewJobHandler builds a JobHandler.
func NewJobHandler(jobs repositories.JobRepository, proposals repositories.ProposalRepository) *JobHandler {
	return &JobHandler{jobs: jobs, proposals: proposals}
}

// CreateJob publishes a new job for the authenticated client.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req struct {
		Title           string                 `json:"title" binding:"required"`
		Description     string                 `json:"description" binding:"required"`
		JobType         models.JobType         `json:"job_type" binding:"required"`
		Budget          *float64               `json:"budget"`
		HourlyRateMin   *float64               `json:"hourly_rate_min"`
		HourlyRateMax   *float64               `json:"hourly_rate_max"`
		ExperienceLevel models.ExperienceLevel `json:"experience_level"`
		SkillsRequired  []string               `json:"skills_required"`
		Deadline        *time.Time             `json:"deadline"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.JobType == models.JobFixed && req.Budget == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fixed-price jobs require a budget"})
		return
	}
	if req.ExperienceLevel == "" {
		req.ExperienceLevel = models.ExperienceIntermediate
	}

	job := models.Job{
		ID:              uuid.New(),
		ClientID:        userIDFromContext(c),
		Title:           req.Title,
		Description:     req.Description,
		JobType:         req.JobType,
		Budget:          req.Budget,
		HourlyRateMin:   req.HourlyRateMin,
		HourlyRateMax:   req.HourlyRateMax,
		ExperienceLevel: req.ExperienceLevel,
		SkillsRequired:  pq.StringArray(req.SkillsRequired),
		Status:          models.JobOpen,
		Deadline:        req.Deadline,
	}
	if err := h.jobs.Create(c.Request.Context(), &job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create job"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"job": job})
}

// ListJobs returns filtered jobs with the total count.
func (h *JobHandler) ListJobs(c *gin.Context) {
	page, limit := parsePagination(c, 20)
	filters := repositories.JobFilters{
		Status: models.JobStatus(c.Query("status")),
		Skill:  c.Query("skill"),
		Offset: (page - 1) * limit,
		Limit:  limit,
	}
	if raw := c.Query("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
			return
		}
		filters.ClientID = &clientID
	}

	jobs, total, err := h.jobs.List(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load jobs"})
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "total": total, "page": page, "limit": limit})
}

// GetJob returns one job and counts the view.
func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := parseUUIDParam(c, "job_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := h.jobs.GetByID(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrJobNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "job not found"})
		return
	}

	// View counting is best effort.
	_ = h.jobs.IncrementViews(c.Request.Context(), id)
	job.ViewCount++

	c.JSON(http.StatusOK, gin.H{"job": job})
}

// UpdateJobStatus changes the posting status; only the owner may do it.
func (h *JobHandler) UpdateJobStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "job_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	var req struct {
		Status models.JobStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.jobs.GetByID(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrJobNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "job not found"})
		return
	}
	if job.ClientID != userIDFromContext(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the job owner can update it"})
		return
	}

	if err := h.jobs.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update job"})
		return
	}
	job.Status = req.Status
	c.JSON(http.StatusOK, gin.H{"job": job})
}

// DeleteJob removes the posting; only the owner may do it.
func (h *JobHandler) DeleteJob(c *gin.Context) {
	id, ok := parseUUIDParam(c, "job_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := h.jobs.GetByID(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrJobNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "job not found"})
		return
	}
	if job.ClientID != userIDFromContext(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the job owner can delete it"})
		return
	}

	if err := h.jobs.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete job"})
		return
	}
	c.Status(http.StatusNoContent)
}

// SubmitProposal records a freelancer's bid on an open job.
func (h *JobHandler) SubmitProposal(c *gin.Context) {
	jobID, ok := parseUUIDParam(c, "job_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	var req struct {
		CoverLetter  string  `json:"cover_letter" binding:"required"`
		BidAmount    float64 `json:"bid_amount" binding:"required,gt=0"`
		DeliveryDays *int    `json:"delivery_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.jobs.GetByID(c.Request.Context(), jobID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrJobNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "job not found"})
		return
	}
	if job.Status != models.JobOpen {
		c.JSON(http.StatusConflict, gin.H{"error": "job is not accepting proposals"})
		return
	}
	freelancerID := userIDFromContext(c)
	if job.ClientID == freelancerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot bid on your own job"})
		return
	}

	proposal := models.Proposal{
		ID:           uuid.New(),
		JobID:        jobID,
		FreelancerID: freelancerID,
		CoverLetter:  req.CoverLetter,
		BidAmount:    req.BidAmount,
		DeliveryDays: req.DeliveryDays,
		Status:       models.ProposalPending,
	}
	if err := h.proposals.Create(c.Request.Context(), &proposal); err != nil {
		if errors.Is(err, repositories.ErrDuplicateProposal) {
			c.JSON(http.StatusConflict, gin.H{"error": "proposal already submitted"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not submit proposal"})
		return
	}

	headers := observability.BuildHeaders(requestIDFromContext(c), "")
	_ = observability.PublishEvent(c.Request.Context(), observability.RoutingProposalSubmitted, observability.EventEnvelope{
		EventType: "domain_events",
		EventName: "proposal_submitted",
		Payload: map[string]interface{}{
			"proposal_id":   proposal.ID.String(),
			"job_id":        jobID.String(),
			"freelancer_id": freelancerID.String(),
			"bid_amount":    proposal.BidAmount,
		},
	}, headers)

	c.JSON(http.StatusCreated, gin.H{"proposal": proposal})
}

// ListProposals returns the proposals on a job; only the owner may see them.
func (h *JobHandler) ListProposals(c *gin.Context) {
	jobID, ok := parseUUIDParam(c, "job_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := h.jobs.GetByID(c.Request.Context(), jobID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrJobNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "job not found"})
		return
	}
	if job.ClientID != userIDFromContext(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the job owner can view proposals"})
		return
	}

	proposals, err := h.proposals.ListByJob(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load proposals"})
		return
	}
	if proposals == nil {
		proposals = []models.Proposal{}
	}
	c.JSON(http.StatusOK, gin.H{"proposals": proposals})
}

// UpdateProposalStatus accepts, rejects or withdraws a proposal.
func (h *JobHandler) UpdateProposalStatus(c *gin.Context) {
	proposalID, ok := parseUUIDParam(c, "proposal_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	var req struct {
		Status models.ProposalStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposals.GetByID(c.Request.Context(), proposalID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProposalNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "proposal not found"})
		return
	}

	job, err := h.jobs.GetByID(c.Request.Context(), proposal.JobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load job"})
		return
	}

	caller := userIDFromContext(c)
	switch req.Status {
	case models.ProposalAccepted, models.ProposalRejected:
		if job.ClientID != caller {
			c.JSON(http.StatusForbidden, gin.H{"error": "only the job owner can decide proposals"})
			return
		}
	case models.ProposalWithdrawn:
		if proposal.FreelancerID != caller {
			c.JSON(http.StatusForbidden, gin.H{"error": "only the bidder can withdraw"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported status"})
		return
	}

	if err := h.proposals.UpdateStatus(c.Request.Context(), proposalID, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update proposal"})
		return
	}
	proposal.Status = req.Status
	c.JSON(http.StatusOK, gin.H{"proposal": proposal})
}
