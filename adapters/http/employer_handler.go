package http

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	candidateUC "github.com/khoahotran/talent-match/internal/application/usecase/candidate"
	employerUC "github.com/khoahotran/talent-match/internal/application/usecase/employer"
	invitationUC "github.com/khoahotran/talent-match/internal/application/usecase/invitation"
	savedUC "github.com/khoahotran/talent-match/internal/application/usecase/saved"
	"github.com/khoahotran/talent-match/pkg/apperror"
)

type EmployerHandler struct {
	employerUseCase   *employerUC.EmployerUseCase
	candidateUseCase  *candidateUC.SearchCandidatesUseCase
	savedUseCase      *savedUC.SavedCandidatesUseCase
	invitationUseCase *invitationUC.InvitationUseCase
}

func NewEmployerHandler(
	empUC *employerUC.EmployerUseCase,
	searchUC *candidateUC.SearchCandidatesUseCase,
	savedCandidatesUC *savedUC.SavedCandidatesUseCase,
	invUC *invitationUC.InvitationUseCase,
) *EmployerHandler {
	return &EmployerHandler{
		employerUseCase:   empUC,
		candidateUseCase:  searchUC,
		savedUseCase:      savedCandidatesUC,
		invitationUseCase: invUC,
	}
}

func (h *EmployerHandler) GetProfile(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	e, err := h.employerUseCase.ExecuteGet(c.Request.Context(), session)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *EmployerHandler) UpdateProfile(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	var req updateEmployerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}
	e, err := h.employerUseCase.ExecuteUpdate(c.Request.Context(), employerUC.UpdateInput{
		Session: session, CompanyName: req.CompanyName, Website: req.Website,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *EmployerHandler) UploadLogo(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("logo")
	if err != nil {
		c.Error(apperror.NewInvalidInput("'logo' file is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInvalidInput("logo cannot be opened", err))
		return
	}
	defer file.Close()

	e, err := h.employerUseCase.ExecuteUploadLogo(c.Request.Context(), employerUC.UploadLogoInput{
		Session: session, Filename: fileHeader.Filename, Size: fileHeader.Size, File: file,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *EmployerHandler) SearchCandidates(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	q := c.Request.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page > 0 {
		page--
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	out, err := h.candidateUseCase.Execute(c.Request.Context(), candidateUC.SearchInput{
		Session:    session,
		Query:      q.Get("q"),
		Locations:  splitList(q["location"]),
		Industries: splitList(q["industry"]),
		WorkStyles: splitList(q["work_style"]),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *EmployerHandler) ToggleSaved(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "talentID")
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

func (h *EmployerHandler) ListSaved(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	limit, offset, err := pageParams(c.Request.URL.Query(), 20)
	if err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}
	rows, err := h.savedUseCase.ExecuteList(c.Request.Context(), savedUC.ListCandidatesInput{Session: session, Limit: limit, Offset: offset})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows})
}

// ExportSaved buffers the CSV so a failure can still be reported as JSON.
func (h *EmployerHandler) ExportSaved(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if _, err := h.savedUseCase.ExecuteExport(c.Request.Context(), session, &buf); err != nil {
		c.Error(err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="saved-candidates.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *EmployerHandler) Invite(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}
	inv, err := h.invitationUseCase.ExecuteInvite(c.Request.Context(), invitationUC.InviteInput{
		Session: session, TalentID: req.TalentID, OpportunityID: req.OpportunityID, Message: req.Message,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *EmployerHandler) ListInvitations(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	limit, offset, err := pageParams(c.Request.URL.Query(), 20)
	if err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}
	items, err := h.invitationUseCase.ExecuteListSent(c.Request.Context(), invitationUC.ListInput{Session: session, Limit: limit, Offset: offset})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
