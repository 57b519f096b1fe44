package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/freshcrate/attendance/internal/app/service/attendance"
	"github.com/freshcrate/attendance/internal/models"
	"github.com/freshcrate/attendance/internal/store"
	"github.com/freshcrate/attendance/pkg/config"
	"github.com/freshcrate/attendance/pkg/response"
	"github.com/freshcrate/attendance/pkg/types"
)

// SubscriptionItem is the list-view projection: the stored record plus its
// derived validity.
type SubscriptionItem struct {
	ID                    string          `json:"id"`
	CustomerID            string          `json:"customer_id"`
	StartDate             time.Time       `json:"start_date"`
	BaseValidityDays      int             `json:"base_validity_days"`
	ExtensionDays         int             `json:"extension_days"`
	CurrentDeliveryStatus types.DayStatus `json:"current_delivery_status"`
	Validity              types.Validity  `json:"validity"`
}

func toSubscriptionItem(sub *models.Subscription, now time.Time) SubscriptionItem {
	return SubscriptionItem{
		ID:                    sub.ID,
		CustomerID:            sub.CustomerID,
		StartDate:             sub.StartDate,
		BaseValidityDays:      sub.BaseValidityDays,
		ExtensionDays:         sub.ExtensionDays,
		CurrentDeliveryStatus: sub.CurrentDeliveryStatus,
		Validity:              sub.Validity(now),
	}
}

type subscriptionHandlers struct {
	st  store.Store
	att *attendance.Service
	cfg *config.Config
}

// @Summary      List subscriptions
// @Description  All subscriptions with derived expiry, days left and status
// @Tags         Subscriptions
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]SubscriptionItem]
// @Router       /api/v1/admin/subscriptions [get]
func (h *subscriptionHandlers) list(c *gin.Context) {
	ctx := c.Request.Context()
	subs, err := h.st.ListSubscriptions(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	now := time.Now()
	items := lo.Map(subs, func(sub *models.Subscription, _ int) SubscriptionItem {
		return toSubscriptionItem(sub, now)
	})
	c.JSON(http.StatusOK, response.OKT(items))
}

// @Summary      Compute validity
// @Description  Derived expiry date, days left and status for one subscription
// @Tags         Subscriptions
// @Produce      json
// @Param        id  path  string  true  "subscription id"
// @Success      200  {object}  response.APIResponse[types.Validity]
// @Router       /api/v1/admin/subscriptions/{id}/validity [get]
func (h *subscriptionHandlers) validity(c *gin.Context) {
	sub, err := h.st.LoadSubscription(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKT(sub.Validity(time.Now())))
}

// @Summary      Delivery history
// @Description  The full attendance ledger for one subscription
// @Tags         Subscriptions
// @Produce      json
// @Param        id  path  string  true  "subscription id"
// @Success      200  {object}  response.APIResponse[models.AttendanceLedger]
// @Router       /api/v1/admin/subscriptions/{id}/ledger [get]
func (h *subscriptionHandlers) ledger(c *gin.Context) {
	ledger, err := h.att.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKT(ledger))
}

func RegisterSubscriptionRoutes(r gin.IRouter, st store.Store, att *attendance.Service, cfg *config.Config) {
	h := &subscriptionHandlers{st: st, att: att, cfg: cfg}
	r.GET("/subscriptions", h.list)
	r.GET("/subscriptions/:id/validity", h.validity)
	r.GET("/subscriptions/:id/ledger", h.ledger)
}
