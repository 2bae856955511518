package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/modular-erp-api/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Get statistics about background jobs (active, completed, failed, queue length) and the scheduled tasks
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	respond(c, http.StatusOK, h.jobService.GetStatus(), "Job status retrieved successfully")
}

// @Summary List scheduled tasks
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]jobs.TaskStatus}
// @Router /jobs/tasks [get]
func (h *JobHandler) Tasks(c *gin.Context) {
	respond(c, http.StatusOK, h.jobService.Tasks(), "Tasks retrieved successfully")
}

// @Summary Run a scheduled task now
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param name path string true "Task name (prune-sessions, expire-invitations, ledger-integrity, trial-balance-snapshot)"
// @Success 202 {object} Response
// @Failure 404 {object} Response
// @Router /jobs/tasks/{name}/run [post]
func (h *JobHandler) Trigger(c *gin.Context) {
	if err := h.jobService.Trigger(c.Param("name")); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusAccepted, nil, "Task queued")
}
