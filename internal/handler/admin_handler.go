package handler

import (
	"net/http"
	"strconv"

	"refera/internal/repository"
	"refera/internal/scheduler"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	members  *repository.MemberRepository
	settings *repository.SettingRepository
	runs     *repository.JobRunRepository
	snapshot *scheduler.SnapshotJob
	weekly   *scheduler.WeeklyRecalcJob
	selfInc  *scheduler.SelfIncomeJob
}

func NewAdminHandler(
	members *repository.MemberRepository,
	settings *repository.SettingRepository,
	runs *repository.JobRunRepository,
	snapshot *scheduler.SnapshotJob,
	weekly *scheduler.WeeklyRecalcJob,
	selfInc *scheduler.SelfIncomeJob,
) *AdminHandler {
	return &AdminHandler{
		members:  members,
		settings: settings,
		runs:     runs,
		snapshot: snapshot,
		weekly:   weekly,
		selfInc:  selfInc,
	}
}

// RunJob triggers one of the batch jobs immediately and returns its summary.
// A job whose previous run is still going reports skipped=true instead of
// running twice.
// POST /admin/jobs/:name/run
func (h *AdminHandler) RunJob(c *gin.Context) {
	var summary scheduler.RunSummary
	switch c.Param("name") {
	case scheduler.JobDailySnapshot:
		summary = h.snapshot.Run(scheduler.TriggerManual)
	case scheduler.JobWeeklyRecalc:
		summary = h.weekly.Run(scheduler.TriggerManual)
	case scheduler.JobSelfIncome:
		summary = h.selfInc.Run(scheduler.TriggerManual)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}
	status := http.StatusOK
	if summary.Skipped {
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"run": summary})
}

// ListJobRuns returns recent run records, optionally filtered by job name.
// GET /admin/jobs/runs
func (h *AdminHandler) ListJobRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, err := h.runs.ListRecent(c.Query("job"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list job runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": list, "total": len(list)})
}

// GetSettings returns all system settings.
// GET /admin/settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	list, err := h.settings.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": list})
}

type updateSettingRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// UpdateSetting upserts a system setting.
// PUT /admin/settings
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	var req updateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settings.Set(req.Key, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "setting updated"})
}

// BlockMember toggles a member's blocked flag. Blocked members keep their
// balances but stop receiving batch credits.
// PUT /admin/members/:id/block
func (h *AdminHandler) BlockMember(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
		return
	}
	var req struct {
		Blocked bool `json:"blocked"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := h.members.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	m.IsBlocked = req.Blocked
	if err := h.members.Update(m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update member"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "member updated", "blocked": m.IsBlocked})
}
