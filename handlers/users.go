package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finstream/finstream/backend/go-services/internal/users"
	"github.com/finstream/finstream/backend/go-services/pkg/httperr"
	"github.com/finstream/finstream/backend/go-services/pkg/middleware"
)

// SubscriptionRequest is the body of POST /api/users/subscription. The pointer
// keeps `"subscribed": false` valid while a missing field fails binding.
type SubscriptionRequest struct {
	Subscribed *bool `json:"subscribed" binding:"required"`
}

// UserHandler holds dependencies
type UserHandler struct {
	svc *users.Service
}

func NewUserHandler(svc *users.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// Register mounts the user routes under /api/users. external and internal are
// the audience-scoped auth middlewares; which one guards a route decides who
// can reach it.
func (h *UserHandler) Register(rg *gin.RouterGroup, external, internal gin.HandlerFunc) {
	g := rg.Group("/api/users")
	g.POST("/subscription", external, h.SetSubscription)
	g.GET("/all", internal, h.ListUsers)
	g.GET("/me", external, h.CurrentUser)
}

// SetSubscription persists the caller's subscription flag (find-or-create).
func (h *UserHandler) SetSubscription(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	var req SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(httperr.Validation(err))
		return
	}
	u, err := h.svc.SetSubscription(c.Request.Context(), ident, *req.Subscribed)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// ListUsers returns every stored user.
func (h *UserHandler) ListUsers(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CurrentUser returns the caller's row, 404 when it does not exist yet.
func (h *UserHandler) CurrentUser(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	u, err := h.svc.Current(c.Request.Context(), ident)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, u)
}
