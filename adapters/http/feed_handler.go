package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	feedUC "github.com/khoahotran/talent-match/internal/application/usecase/feed"
	"github.com/khoahotran/talent-match/pkg/apperror"
)

type FeedHandler struct {
	feedUseCase *feedUC.FeedUseCase
}

func NewFeedHandler(uc *feedUC.FeedUseCase) *FeedHandler {
	return &FeedHandler{feedUseCase: uc}
}

func (h *FeedHandler) input(c *gin.Context) (feedUC.FeedInput, bool) {
	session, ok := mustSession(c)
	if !ok {
		return feedUC.FeedInput{}, false
	}
	filter, err := ParseFilterState(c.Request.URL.Query())
	if err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return feedUC.FeedInput{}, false
	}
	return feedUC.FeedInput{Session: session, Filter: filter}, true
}

// GetFeed renders the current session under the query's filter, opening a
// session on first use.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	in, ok := h.input(c)
	if !ok {
		return
	}
	out, err := h.feedUseCase.View(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *FeedHandler) Next(c *gin.Context) {
	in, ok := h.input(c)
	if !ok {
		return
	}
	out, err := h.feedUseCase.Next(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *FeedHandler) Refresh(c *gin.Context) {
	in, ok := h.input(c)
	if !ok {
		return
	}
	out, err := h.feedUseCase.Refresh(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *FeedHandler) Scroll(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	var req scrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}
	out, err := h.feedUseCase.Scroll(c.Request.Context(), feedUC.ScrollInput{Session: session, Position: *req.Position})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}
