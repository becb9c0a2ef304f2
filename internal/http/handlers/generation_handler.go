// Generation HTTP handlers.
//
//   - POST /generations          (AI proposals, Idempotency-Key aware)
//   - GET  /generations          (list, paginated)
//   - GET  /generations/{id}
//   - GET  /generation-errors    (list, paginated)
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/tenx-cards/internal/apperr"
	"github.com/tbourn/tenx-cards/internal/domain"
	"github.com/tbourn/tenx-cards/internal/http/middleware"
	"github.com/tbourn/tenx-cards/internal/utils"
)

// HeaderIdempotentReplayed marks responses served from the replay store.
const HeaderIdempotentReplayed = "Idempotent-Replayed"

// GenerateRequest is the payload of POST /generations.
type GenerateRequest struct {
	SourceText string `json:"sourceText" binding:"required" minLength:"1000" maxLength:"10000"`
}

// ListGenerationsResponse wraps a page of generations.
type ListGenerationsResponse struct {
	Generations []domain.Generation `json:"generations"`
	Pagination  utils.Pagination    `json:"pagination"`
}

// ListGenerationErrorsResponse wraps a page of failed generations.
type ListGenerationErrorsResponse struct {
	Errors     []domain.GenerationErrorLog `json:"errors"`
	Pagination utils.Pagination            `json:"pagination"`
}

// CreateGeneration godoc
// @ID          createGeneration
// @Summary     Generate flashcard proposals from a text
// @Description Proposals similar to existing fronts carry duplicate=true. A repeated Idempotency-Key replays the first response.
// @Tags        Generations
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header    string                    false  "Replay key"
// @Param       body             body      handlers.GenerateRequest  true   "Source text"
// @Success     201              {object}  handlers.SuccessResponse{data=services.GenerationResult}
// @Header      201              {string}  Location             "URL of the generation"
// @Header      201              {string}  Idempotent-Replayed  "true when served from the replay store"
// @Failure     400              {object}  problem.Details  "generation/validation-failed"
// @Failure     429              {object}  problem.Details  "generation/rate-limited"
// @Failure     502              {object}  problem.Details  "generation/provider-error"
// @Failure     503              {object}  problem.Details  "generation/model-unavailable"
// @Failure     504              {object}  problem.Details  "generation/timeout"
// @Router      /generations [post]
func (h *Handlers) CreateGeneration(c *gin.Context) error {
	ctx := c.Request.Context()
	uid := userID(c)
	key, _ := middleware.GetIdempotencyKey(c)

	if key != "" {
		rep, found, err := h.generations.FindReplay(ctx, uid, key)
		if err != nil {
			return err
		}
		if found {
			c.Header(HeaderIdempotentReplayed, "true")
			if rep.ResourceID != "" {
				c.Header("Location", h.location("generations", rep.ResourceID))
			}
			c.Data(rep.Status, "application/json; charset=utf-8", rep.Body)
			return nil
		}
	}

	var req GenerateRequest
	if err := bindJSON(c, &req, apperr.GenerationValidationFailed); err != nil {
		return err
	}
	res, err := h.generations.Generate(ctx, uid, req.SourceText)
	if err != nil {
		return err
	}

	body, err := json.Marshal(Envelope(res))
	if err != nil {
		return err
	}
	if key != "" {
		if err := h.generations.Remember(ctx, uid, key, res.Generation.ID, http.StatusCreated, body); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Str("generation_id", res.Generation.ID).Msg("idempotent replay not stored")
		}
	}
	c.Header("Location", h.location("generations", res.Generation.ID))
	c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
	return nil
}

// ListGenerations godoc
// @ID          listGenerations
// @Summary     List generations (paginated)
// @Tags        Generations
// @Produce     json
// @Param       page       query     int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query     int  false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200        {object}  handlers.SuccessResponse{data=handlers.ListGenerationsResponse}
// @Router      /generations [get]
func (h *Handlers) ListGenerations(c *gin.Context) error {
	page, size := pageParams(c)
	items, total, err := h.generations.ListPage(c.Request.Context(), userID(c), page, size)
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.Generation{}
	}
	OK(c, ListGenerationsResponse{Generations: items, Pagination: utils.Paginate(page, size, total)})
	return nil
}

// GetGeneration godoc
// @ID          getGeneration
// @Summary     Get a generation
// @Tags        Generations
// @Produce     json
// @Param       id   path      string  true  "Generation ID"  format(uuid)
// @Success     200  {object}  handlers.SuccessResponse{data=domain.Generation}
// @Failure     404  {object}  problem.Details  "generation/not-found"
// @Router      /generations/{id} [get]
func (h *Handlers) GetGeneration(c *gin.Context) error {
	id, err := pathID(c, apperr.GenerationValidationFailed)
	if err != nil {
		return err
	}
	g, err := h.generations.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		return err
	}
	OK(c, g)
	return nil
}

// ListGenerationErrors godoc
// @ID          listGenerationErrors
// @Summary     List failed generations (paginated)
// @Tags        Generations
// @Produce     json
// @Param       page       query     int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query     int  false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200        {object}  handlers.SuccessResponse{data=handlers.ListGenerationErrorsResponse}
// @Router      /generation-errors [get]
func (h *Handlers) ListGenerationErrors(c *gin.Context) error {
	page, size := pageParams(c)
	items, total, err := h.generations.ListErrorsPage(c.Request.Context(), userID(c), page, size)
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.GenerationErrorLog{}
	}
	OK(c, ListGenerationErrorsResponse{Errors: items, Pagination: utils.Paginate(page, size, total)})
	return nil
}
