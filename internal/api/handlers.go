package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labfund/fundops/internal/activity"
	"github.com/labfund/fundops/internal/bankcard"
	"github.com/labfund/fundops/internal/draft"
	"github.com/labfund/fundops/internal/id"
	"github.com/labfund/fundops/internal/model"
	"github.com/labfund/fundops/internal/wizard"
	"github.com/labfund/fundops/internal/workspace"
)

// maxBody caps request bodies for drafts and submitted forms.
const maxBody = 1 << 20

type validateAccountRequest struct {
	AccountNumber string `json:"account_number" binding:"required"`
}

type validateAccountResponse struct {
	bankcard.Result
	Masked string `json:"masked,omitempty"`
}

func (a Api) ValidateBankAccount(c *gin.Context) {
	var req validateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := bankcard.Validate(req.AccountNumber)
	resp := validateAccountResponse{Result: res}
	if res.Valid {
		resp.Masked = bankcard.Mask(req.AccountNumber)
	}
	c.JSON(http.StatusOK, resp)
}

func (a Api) GetAllProjects(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		c.JSON(http.StatusOK, a.ws.Projects.All())
		return
	}
	projects := a.ws.Projects.ByStatus(model.ProjectStatus(status))
	if projects == nil {
		projects = []model.Project{}
	}
	c.JSON(http.StatusOK, projects)
}

func (a Api) GetProject(c *gin.Context) {
	p, ok := a.ws.Projects.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a Api) GetProjectDeposits(c *gin.Context) {
	ranked, err := a.ws.Rank(c.Param("id"))
	if errors.Is(err, workspace.ErrUnknownProject) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if c.Query("recommended") == "true" {
		only := ranked[:0]
		for _, s := range ranked {
			if s.Recommended {
				only = append(only, s)
			}
		}
		ranked = only
	}
	c.JSON(http.StatusOK, ranked)
}

// draftKey reads and checks the :key parameter. It writes the error response
// and returns false when the key is unusable.
func (a Api) draftKey(c *gin.Context) (string, bool) {
	key := c.Param("key")
	kind, _, err := id.ParseDraftKey(key)
	if err == nil {
		_, err = wizard.Lookup(a.ws.Flows, kind)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return key, true
}

func (a Api) GetAllDrafts(c *gin.Context) {
	keys, err := a.ws.Drafts.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if keys == nil {
		keys = []string{}
	}
	c.JSON(http.StatusOK, keys)
}

func (a Api) GetDraft(c *gin.Context) {
	key, ok := a.draftKey(c)
	if !ok {
		return
	}
	s, err := a.ws.LoadDraft(c.Request.Context(), key)
	if errors.Is(err, draft.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no draft"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// The restored marker is internal to the process.
	s.Restored = false
	c.JSON(http.StatusOK, s)
}

func (a Api) PutDraft(c *gin.Context) {
	key, ok := a.draftKey(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err = a.ws.SaveDraft(c.Request.Context(), key, body)
	if errors.Is(err, workspace.ErrMalformedDraft) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (a Api) DeleteDraft(c *gin.Context) {
	key, ok := a.draftKey(c)
	if !ok {
		return
	}
	if err := a.ws.ClearDraft(c.Request.Context(), key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (a Api) GetWizard(c *gin.Context) {
	flow, err := wizard.Lookup(a.ws.Flows, c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"kind":      flow.Kind(),
		"steps":     flow.StepTitles(),
		"draft_key": id.DraftKey(string(flow.Kind()), ""),
	})
}

func (a Api) SubmitWizard(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draftKey := c.Query("draft_key")
	if draftKey != "" {
		if _, _, err := id.ParseDraftKey(draftKey); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	entry, err := a.ws.Submit(c.Request.Context(), c.Param("kind"), body, draftKey)
	if err != nil {
		writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

type activityQuery struct {
	Action   string    `form:"action"`
	Actor    string    `form:"actor"`
	EntryID  string    `form:"entry_id"`
	DraftKey string    `form:"draft_key"`
	Since    time.Time `form:"since" time_format:"2006-01-02"`
	Limit    int       `form:"limit" binding:"min=0"`
}

// GetActivity lists the activity log, latest 100 entries unless limit says
// otherwise.
func (a Api) GetActivity(c *gin.Context) {
	q := activityQuery{Limit: 100}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := a.ws.Activity.Query(activity.Filter{
		Action:   q.Action,
		Actor:    q.Actor,
		EntryID:  q.EntryID,
		DraftKey: q.DraftKey,
		Since:    q.Since,
		Limit:    q.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}
