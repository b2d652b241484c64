package v1

import (
	"net/http"

	"go-resume-matcher/internal/delivery/http/response"
	"go-resume-matcher/internal/domain"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	healthUC domain.HealthUsecase
}

func NewHealthHandler(r *gin.RouterGroup, healthUC domain.HealthUsecase) {
	handler := &HealthHandler{healthUC: healthUC}
	r.GET("/health", handler.Health)
}

// Health godoc
// @Summary      Service health
// @Description  Reports the state of Redis and PostgreSQL. Optional dependencies that are not configured show as disabled.
// @Tags         system
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	if h.healthUC == nil {
		response.Success(c, http.StatusOK, "System operational", gin.H{"status": "ok"})
		return
	}

	status := h.healthUC.Check(c.Request.Context())
	msg := "System operational"
	if status["status"] != "ok" {
		msg = "System degraded"
	}
	response.Success(c, http.StatusOK, msg, status)
}
