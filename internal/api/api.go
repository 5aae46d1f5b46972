// Package api exposes a workspace over a small JSON HTTP API.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/labfund/fundops/internal/workspace"
)

type Api struct {
	ws     *workspace.Workspace
	router *gin.Engine
}

// NewAPI creates the API over ws.
func NewAPI(ws *workspace.Workspace) *Api {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "server running...")
	})

	return &Api{ws: ws, router: r}
}

// Router registers every route and returns the engine.
func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/bank-accounts/validate", a.ValidateBankAccount)

	router.GET("/projects", a.GetAllProjects)
	router.GET("/projects/:id", a.GetProject)
	router.GET("/projects/:id/deposits", a.GetProjectDeposits)

	router.GET("/drafts", a.GetAllDrafts)
	router.GET("/drafts/:key", a.GetDraft)
	router.PUT("/drafts/:key", a.PutDraft)
	router.DELETE("/drafts/:key", a.DeleteDraft)

	router.GET("/wizards/:kind", a.GetWizard)
	router.POST("/wizards/:kind/sessions", a.CreateWizardSession)
	router.POST("/wizards/:kind/submit", a.SubmitWizard)

	router.GET("/sessions/:id", a.GetSession)
	router.DELETE("/sessions/:id", a.CloseSession)
	router.PATCH("/sessions/:id/form", a.PatchSessionForm)
	router.POST("/sessions/:id/next", a.NextStep)
	router.POST("/sessions/:id/back", a.PreviousStep)
	router.POST("/sessions/:id/jump", a.JumpToStep)
	router.GET("/sessions/:id/deposits", a.GetSessionDeposits)
	router.POST("/sessions/:id/deposit", a.SelectSessionDeposit)
	router.POST("/sessions/:id/account", a.SetSessionAccount)
	router.POST("/sessions/:id/submit", a.SubmitSession)

	router.GET("/activity", a.GetActivity)
	return a.router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request")
	}
}
