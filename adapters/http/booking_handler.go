package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	bookingUC "github.com/khoahotran/talent-match/internal/application/usecase/booking"
	"github.com/khoahotran/talent-match/pkg/apperror"
)

type BookingHandler struct {
	bookingUseCase *bookingUC.BookingUseCase
}

func NewBookingHandler(uc *bookingUC.BookingUseCase) *BookingHandler {
	return &BookingHandler{bookingUseCase: uc}
}

func (h *BookingHandler) ref(c *gin.Context) (bookingUC.BookingRef, bool) {
	session, ok := mustSession(c)
	if !ok {
		return bookingUC.BookingRef{}, false
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return bookingUC.BookingRef{}, false
	}
	return bookingUC.BookingRef{Session: session, Locale: GetLocale(c), BookingID: id}, true
}

func (h *BookingHandler) Start(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	var req startBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}
	out, err := h.bookingUseCase.ExecuteStart(c.Request.Context(), bookingUC.StartInput{
		Session: session, Locale: GetLocale(c), Service: req.Service, Answers: req.Answers,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *BookingHandler) List(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	items, err := h.bookingUseCase.ExecuteList(c.Request.Context(), session, GetLocale(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *BookingHandler) Get(c *gin.Context) {
	ref, ok := h.ref(c)
	if !ok {
		return
	}
	out, err := h.bookingUseCase.ExecuteGet(c.Request.Context(), ref)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) Schedule(c *gin.Context) {
	ref, ok := h.ref(c)
	if !ok {
		return
	}
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}
	out, err := h.bookingUseCase.ExecuteSchedule(c.Request.Context(), bookingUC.ScheduleInput{
		Session: ref.Session, Locale: ref.Locale, BookingID: ref.BookingID, Slot: req.SlotAt,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) Pay(c *gin.Context) {
	ref, ok := h.ref(c)
	if !ok {
		return
	}
	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}
	out, err := h.bookingUseCase.ExecutePay(c.Request.Context(), bookingUC.PayInput{
		Session: ref.Session, Locale: ref.Locale, BookingID: ref.BookingID, Card: req.Card,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	ref, ok := h.ref(c)
	if !ok {
		return
	}
	out, err := h.bookingUseCase.ExecuteConfirm(c.Request.Context(), ref)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	ref, ok := h.ref(c)
	if !ok {
		return
	}
	out, err := h.bookingUseCase.ExecuteCancel(c.Request.Context(), ref)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}
