package http

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	authUC "github.com/khoahotran/talent-match/internal/application/usecase/auth"
	"github.com/khoahotran/talent-match/internal/domain/talent"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
)

type AuthHandler struct {
	loginUseCase          *authUC.LoginUseCase
	signupTalentUseCase   *authUC.SignupTalentUseCase
	signupEmployerUseCase *authUC.SignupEmployerUseCase
	logger                logger.Logger
}

func NewAuthHandler(loginUC *authUC.LoginUseCase, talentUC *authUC.SignupTalentUseCase, employerUC *authUC.SignupEmployerUseCase, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		loginUseCase:          loginUC,
		signupTalentUseCase:   talentUC,
		signupEmployerUseCase: employerUC,
		logger:                log,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}

	output, err := h.loginUseCase.Execute(c.Request.Context(), authUC.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, TokenDTO{AccessToken: output.AccessToken, Role: string(output.Role)})
}

// openResume returns nil when no file was sent; the use case reports it.
func openResume(c *gin.Context) (*talent.ResumeFile, multipart.File, error) {
	fileHeader, err := c.FormFile("resume")
	if err != nil {
		return nil, nil, nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, apperror.NewInvalidInput("resume cannot be opened", err)
	}
	return &talent.ResumeFile{Name: fileHeader.Filename, Size: fileHeader.Size, Body: file}, file, nil
}

// SignupTalent expects multipart/form-data with the profile fields and a
// "resume" file.
func (h *AuthHandler) SignupTalent(c *gin.Context) {
	resume, file, err := openResume(c)
	if err != nil {
		c.Error(err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	output, err := h.signupTalentUseCase.Execute(c.Request.Context(), authUC.SignupTalentInput{
		Email:      c.PostForm("email"),
		Password:   c.PostForm("password"),
		FullName:   c.PostForm("full_name"),
		Bio:        c.PostForm("bio"),
		Locations:  splitList(c.PostFormArray("locations")),
		Industries: splitList(c.PostFormArray("industries")),
		WorkStyles: splitList(c.PostFormArray("work_styles")),
		Skills:     splitList(c.PostFormArray("skills")),
		Resume:     resume,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, TokenDTO{
		AccessToken: output.AccessToken,
		UserID:      output.UserID,
		ProfileID:   output.ProfileID,
		Role:        string(auth.RoleTalent),
	})
}

func (h *AuthHandler) SignupEmployer(c *gin.Context) {
	var req signupEmployerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}

	output, err := h.signupEmployerUseCase.Execute(c.Request.Context(), authUC.SignupEmployerInput{
		Email:       req.Email,
		Password:    req.Password,
		CompanyName: req.CompanyName,
		Website:     req.Website,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, TokenDTO{
		AccessToken: output.AccessToken,
		UserID:      output.UserID,
		ProfileID:   output.ProfileID,
		Role:        string(auth.RoleEmployer),
	})
}
