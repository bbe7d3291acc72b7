package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	applicationUC "github.com/khoahotran/talent-match/internal/application/usecase/application"
	opportunityUC "github.com/khoahotran/talent-match/internal/application/usecase/opportunity"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/logger"
)

type OpportunityHandler struct {
	createUseCase      *opportunityUC.CreateOpportunityUseCase
	manageUseCase      *opportunityUC.ManageOpportunitiesUseCase
	rssUseCase         *opportunityUC.RSSUseCase
	applicationUseCase *applicationUC.ApplicationUseCase
	logger             logger.Logger
}

func NewOpportunityHandler(
	createUC *opportunityUC.CreateOpportunityUseCase,
	manageUC *opportunityUC.ManageOpportunitiesUseCase,
	rssUC *opportunityUC.RSSUseCase,
	appUC *applicationUC.ApplicationUseCase,
	log logger.Logger,
) *OpportunityHandler {
	return &OpportunityHandler{
		createUseCase:      createUC,
		manageUseCase:      manageUC,
		rssUseCase:         rssUC,
		applicationUseCase: appUC,
		logger:             log,
	}
}

func (h *OpportunityHandler) GetPublic(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	o, err := h.manageUseCase.ExecuteGet(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OpportunityHandler) RSS(c *gin.Context) {
	feed, err := h.rssUseCase.Execute(c.Request.Context())
	if err != nil {
		c.Error(apperror.NewInternal("failed to generate RSS feed", err))
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	if err := feed.WriteRss(c.Writer); err != nil {
		h.logger.Error("Failed to write RSS feed to response", err)
	}
}

func (h *OpportunityHandler) Create(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	var req createOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}

	out, err := h.createUseCase.Execute(c.Request.Context(), opportunityUC.CreateOpportunityInput{
		Session:         session,
		Title:           req.Title,
		CompanyName:     req.CompanyName,
		Location:        req.Location,
		Industry:        req.Industry,
		WorkStyle:       req.WorkStyle,
		JobType:         req.JobType,
		ExperienceLevel: req.ExperienceLevel,
		CompanySize:     req.CompanySize,
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
		Description:     req.Description,
		Skills:          req.Skills,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, out.Opportunity)
}

func (h *OpportunityHandler) ListOwn(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	limit, offset, err := pageParams(c.Request.URL.Query(), 20)
	if err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}
	items, err := h.manageUseCase.ExecuteListOwn(c.Request.Context(), opportunityUC.ListOwnInput{Session: session, Limit: limit, Offset: offset})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *OpportunityHandler) Delete(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.manageUseCase.ExecuteDelete(c.Request.Context(), opportunityUC.DeleteInput{Session: session, OpportunityID: id}); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OpportunityHandler) ListApplicants(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	limit, offset, err := pageParams(c.Request.URL.Query(), 20)
	if err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}
	items, err := h.applicationUseCase.ExecuteListApplicants(c.Request.Context(), applicationUC.ListApplicantsInput{
		Session: session, OpportunityID: id, Limit: limit, Offset: offset,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
