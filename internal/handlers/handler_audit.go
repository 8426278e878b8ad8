package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/async_payments_app/internal/core/ports/services"
	"github.com/SscSPs/async_payments_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type auditHandler struct {
	auditService portssvc.AuditSvc
}

func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvc) {
	h := &auditHandler{auditService: auditService}
	rg.GET("/audit/verify", h.verifyChain)
}

// verifyChain godoc
// @Summary Verify the audit log
// @Description Walks the hash chain of the audit log and reports the first broken link
// @Tags audit
// @Produce  json
// @Success 200 {object} dto.AuditVerificationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to verify audit log"
// @Security BearerAuth
// @Router /audit/verify [get]
func (h *auditHandler) verifyChain(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	resp, err := h.auditService.VerifyChain(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to verify audit log")
		return
	}
	if !resp.Intact {
		logger.Error("Audit chain broken", "broken_at", *resp.BrokenAtSequence)
	}
	c.JSON(http.StatusOK, resp)
}
