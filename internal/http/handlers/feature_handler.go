package handlers

import "github.com/gin-gonic/gin"

// FeaturesResponse lists the flags of the running environment.
type FeaturesResponse struct {
	Env   string          `json:"env" example:"production"`
	Flags map[string]bool `json:"flags"`
}

// ListFeatures godoc
// @ID          listFeatures
// @Summary     Feature flags of the current environment
// @Tags        System
// @Produce     json
// @Success     200  {object}  handlers.SuccessResponse{data=handlers.FeaturesResponse}
// @Router      /features [get]
func (h *Handlers) ListFeatures(c *gin.Context) error {
	flags := h.features.Snapshot()
	if flags == nil {
		flags = map[string]bool{}
	}
	OK(c, FeaturesResponse{Env: h.features.Env(), Flags: flags})
	return nil
}
