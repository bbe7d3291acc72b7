package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	applicationUC "github.com/khoahotran/talent-match/internal/application/usecase/application"
	invitationUC "github.com/khoahotran/talent-match/internal/application/usecase/invitation"
	savedUC "github.com/khoahotran/talent-match/internal/application/usecase/saved"
	talentUC "github.com/khoahotran/talent-match/internal/application/usecase/talent"
	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/apperror"
)

type TalentHandler struct {
	profileUseCase     *talentUC.ProfileUseCase
	savedUseCase       *savedUC.SavedOpportunitiesUseCase
	applicationUseCase *applicationUC.ApplicationUseCase
	invitationUseCase  *invitationUC.InvitationUseCase
}

func NewTalentHandler(
	profileUC *talentUC.ProfileUseCase,
	savedOppsUC *savedUC.SavedOpportunitiesUseCase,
	appUC *applicationUC.ApplicationUseCase,
	invUC *invitationUC.InvitationUseCase,
) *TalentHandler {
	return &TalentHandler{
		profileUseCase:     profileUC,
		savedUseCase:       savedOppsUC,
		applicationUseCase: appUC,
		invitationUseCase:  invUC,
	}
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}

func (h *TalentHandler) GetProfile(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	out, err := h.profileUseCase.ExecuteGetProfile(c.Request.Context(), talentUC.GetProfileInput{UserID: session.UserID})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": out.Profile, "enriched": out.Enriched})
}

func (h *TalentHandler) UpdateProfile(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	var req updatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}

	out, err := h.profileUseCase.ExecuteUpdatePreferences(c.Request.Context(), talentUC.UpdatePreferencesInput{
		UserID: session.UserID,
		Preferences: talent.Preferences{
			FullName:   req.FullName,
			Bio:        req.Bio,
			Locations:  req.Locations,
			Industries: req.Industries,
			WorkStyles: req.WorkStyles,
			Skills:     req.Skills,
		},
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": out.Profile, "enriched": out.Enriched})
}

func (h *TalentHandler) ReplaceResume(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	resume, file, err := openResume(c)
	if err != nil {
		c.Error(err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	out, err := h.profileUseCase.ExecuteReplaceResume(c.Request.Context(), talentUC.ReplaceResumeInput{
		UserID: session.UserID,
		Resume: resume,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": out.Profile, "enriched": false})
}

// ToggleSaved handles POST (save) and DELETE (unsave).
func (h *TalentHandler) ToggleSaved(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "opportunityID")
	if !ok {
		return
	}
	kind, _ := savedUC.ParseKind(c.Request.Method)

	out, err := h.savedUseCase.ExecuteToggle(c.Request.Context(), savedUC.ToggleInput{Session: session, Kind: kind, ID: id})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *TalentHandler) ListSaved(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	items, err := h.savedUseCase.ExecuteList(c.Request.Context(), savedUC.ListSavedInput{Session: session})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *TalentHandler) Apply(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "opportunityID")
	if !ok {
		return
	}
	a, err := h.applicationUseCase.ExecuteApply(c.Request.Context(), applicationUC.ApplyInput{Session: session, OpportunityID: id})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *TalentHandler) ListApplications(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	limit, offset, err := pageParams(c.Request.URL.Query(), 20)
	if err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}
	items, err := h.applicationUseCase.ExecuteListMine(c.Request.Context(), applicationUC.ListMineInput{Session: session, Limit: limit, Offset: offset})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *TalentHandler) ListInvitations(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	limit, offset, err := pageParams(c.Request.URL.Query(), 20)
	if err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}
	items, err := h.invitationUseCase.ExecuteListReceived(c.Request.Context(), invitationUC.ListInput{Session: session, Limit: limit, Offset: offset})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *TalentHandler) RespondInvitation(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}
	inv, err := h.invitationUseCase.ExecuteRespond(c.Request.Context(), invitationUC.RespondInput{
		Session: session, InvitationID: id, Answer: req.Answer,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, inv)
}
