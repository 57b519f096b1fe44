package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freshcrate/attendance/internal/app/service/attendance"
	"github.com/freshcrate/attendance/internal/app/service/extension"
	"github.com/freshcrate/attendance/internal/app/service/snapshot"
	"github.com/freshcrate/attendance/pkg/config"
	"github.com/freshcrate/attendance/pkg/response"
	"github.com/freshcrate/attendance/pkg/types"
)

type ResolveDayRequest struct {
	SubscriptionID string `json:"subscription_id" binding:"required"`
	Date           string `json:"date" binding:"required"`
	Status         string `json:"status" binding:"required"`
}

type SkipRequest struct {
	SubscriptionID string `json:"subscription_id" binding:"required"`
	Date           string `json:"date" binding:"required"`
	Kind           string `json:"kind" binding:"required"`
}

type GlobalLeaveRequest struct {
	Date string `json:"date" binding:"required"`
}

type attendanceHandlers struct {
	att   *attendance.Service
	ext   *extension.Service
	snaps *snapshot.Service
	cfg   *config.Config
}

// opCtx derives the per-operation deadline from config. A request that
// overruns it is reported as a retryable timeout.
func (h *attendanceHandlers) opCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.cfg.Attendance.OpTimeout)
}

// queryDate reads the date query param, defaulting to today.
func queryDate(c *gin.Context) (types.Date, error) {
	raw := c.Query("date")
	if raw == "" {
		return types.DateOf(time.Now()), nil
	}
	return types.ParseDate(raw)
}

// @Summary      Daily attendance sheet
// @Description  Every subscription active on the date, with the day's status and remaining days
// @Tags         Attendance
// @Produce      json
// @Param        date  query  string  false  "date (YYYY-MM-DD, default today)"
// @Success      200  {object}  response.APIResponse[attendance.DailySheet]
// @Router       /api/v1/admin/attendance [get]
func (h *attendanceHandlers) sheet(c *gin.Context) {
	date, err := queryDate(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorMsg(response.APIResponseCodeBadRequest, err.Error()))
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()
	sheet, err := h.att.Sheet(ctx, date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKT(sheet))
}

// @Summary      Resolve a delivery day
// @Description  Records the day's outcome (delivered / not_delivered / cancelled) without granting an extension
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Param        payload  body  ResolveDayRequest  true  "day resolution"
// @Success      200  {object}  response.APIResponse[models.AttendanceLedger]
// @Router       /api/v1/admin/attendance/resolve [post]
func (h *attendanceHandlers) resolveDay(c *gin.Context) {
	var req ResolveDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorMsg(response.APIResponseCodeBadRequest, err.Error()))
		return
	}
	date, err := types.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorMsg(response.APIResponseCodeBadRequest, err.Error()))
		return
	}
	status, err := types.ParseDayStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorMsg(response.APIResponseCodeBadRequest, err.Error()))
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()
	ledger, err := h.att.ResolveDay(ctx, req.SubscriptionID, date, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKT(ledger))
}

// @Summary      Apply a skip event
// @Description  Marks the day as leave_user or leave_company and extends the validity window once per date
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Param        payload  body  SkipRequest  true  "skip event"
// @Success      200  {object}  response.APIResponse[extension.SkipResult]
// @Router       /api/v1/admin/attendance/skip [post]
func (h *attendanceHandlers) applySkip(c *gin.Context) {
	var req SkipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorMsg(response.APIResponseCodeBadRequest, err.Error()))
		return
	}
	date, err := types.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorMsg(response.APIResponseCodeBadRequest, err.Error()))
		return
	}
	kind, err := types.ParseSkipKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorMsg(response.APIResponseCodeBadRequest, err.Error()))
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()
	res, err := h.ext.ApplySkip(ctx, req.SubscriptionID, date, kind)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKT(res))
}

// @Summary      Apply a global company leave
// @Description  Marks the date as leave_company for every active subscription; partial failures are reported, not rolled back
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Param        payload  body  GlobalLeaveRequest  true  "global leave"
// @Success      200  {object}  response.APIResponse[extension.GlobalLeaveResult]
// @Router       /api/v1/admin/attendance/global-leave [post]
func (h *attendanceHandlers) applyGlobalLeave(c *gin.Context) {
	var req GlobalLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorMsg(response.APIResponseCodeBadRequest, err.Error()))
		return
	}
	date, err := types.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorMsg(response.APIResponseCodeBadRequest, err.Error()))
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()
	res, err := h.ext.ApplyGlobalLeave(ctx, date)
	if err != nil {
		writeError(c, err)
		return
	}
	// "N of M subscriptions updated" for the admin console.
	msg := fmt.Sprintf("%d of %d subscriptions updated", res.Granted+res.Skipped, res.Total)
	out := response.OKT(res)
	out.Message = msg
	c.JSON(http.StatusOK, out)
}

// @Summary      Daily attendance summary
// @Description  Stored per-date tallies of delivery outcomes
// @Tags         Attendance
// @Produce      json
// @Param        date  query  string  false  "date (YYYY-MM-DD, default today)"
// @Success      200  {object}  response.APIResponse[models.AttendanceDailySnapshot]
// @Router       /api/v1/admin/attendance/summary [get]
func (h *attendanceHandlers) summary(c *gin.Context) {
	date, err := queryDate(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorMsg(response.APIResponseCodeBadRequest, err.Error()))
		return
	}

	ctx, cancel := h.opCtx(c)
	defer cancel()
	snap, err := h.snaps.Get(ctx, date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKT(snap))
}

func RegisterAttendanceRoutes(r gin.IRouter, att *attendance.Service, ext *extension.Service, snaps *snapshot.Service, cfg *config.Config) {
	h := &attendanceHandlers{att: att, ext: ext, snaps: snaps, cfg: cfg}
	r.GET("/attendance", h.sheet)
	r.GET("/attendance/summary", h.summary)
	r.POST("/attendance/resolve", h.resolveDay)
	r.POST("/attendance/skip", h.applySkip)
	r.POST("/attendance/global-leave", h.applyGlobalLeave)
}
