// Collection HTTP handlers.
//
//   - GET    /collections        (list, paginated)
//   - POST   /collections        (create)
//   - GET    /collections/{id}
//   - PATCH  /collections/{id}   (rename / describe)
//   - DELETE /collections/{id}   (flashcards are detached, not deleted)
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tbourn/tenx-cards/internal/apperr"
	"github.com/tbourn/tenx-cards/internal/domain"
	"github.com/tbourn/tenx-cards/internal/services"
	"github.com/tbourn/tenx-cards/internal/utils"
)

// CreateCollectionRequest is the payload of POST /collections.
type CreateCollectionRequest struct {
	Name        string  `json:"name" binding:"required" example:"Biology"`
	Description *string `json:"description" example:"Cell structure and genetics"`
}

// UpdateCollectionRequest is the payload of PATCH /collections/{id}. Absent
// fields are left unchanged.
type UpdateCollectionRequest struct {
	Name        *string `json:"name" example:"Biology II"`
	Description *string `json:"description"`
}

// ListCollectionsResponse wraps a page of collections.
type ListCollectionsResponse struct {
	Collections []domain.Collection `json:"collections"`
	Pagination  utils.Pagination    `json:"pagination"`
}

// ListCollections godoc
// @ID          listCollections
// @Summary     List collections (paginated)
// @Description Supports a weak ETag via If-None-Match and may return 304.
// @Tags        Collections
// @Produce     json
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Param       page       query     int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query     int  false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200        {object}  handlers.SuccessResponse{data=handlers.ListCollectionsResponse}
// @Success     304        {string}  string  "Not Modified"
// @Failure     401        {object}  problem.Details  "auth/unauthorized"
// @Router      /collections [get]
func (h *Handlers) ListCollections(c *gin.Context) error {
	ctx := c.Request.Context()
	uid := userID(c)
	page, size := pageParams(c)

	count, maxTS, err := h.collections.Stats(ctx, uid)
	if err != nil {
		return err
	}
	if notModified(c, "collections:", uid, ":", page, ":", size, ":", count, ":", unixNano(maxTS)) {
		return nil
	}

	items, total, err := h.collections.ListPage(ctx, uid, page, size)
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.Collection{}
	}
	OK(c, ListCollectionsResponse{Collections: items, Pagination: utils.Paginate(page, size, total)})
	return nil
}

// CreateCollection godoc
// @ID          createCollection
// @Summary     Create a collection
// @Tags        Collections
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.CreateCollectionRequest  true  "Collection"
// @Success     201   {object}  handlers.SuccessResponse{data=domain.Collection}
// @Header      201   {string}  Location  "URL of the new collection"
// @Failure     400   {object}  problem.Details  "flashcard/validation-failed"
// @Router      /collections [post]
func (h *Handlers) CreateCollection(c *gin.Context) error {
	var req CreateCollectionRequest
	if err := bindJSON(c, &req, apperr.FlashcardValidationFailed); err != nil {
		return err
	}
	col, err := h.collections.Create(c.Request.Context(), userID(c), req.Name, req.Description)
	if err != nil {
		return err
	}
	Created(c, col, h.location("collections", col.ID))
	return nil
}

// GetCollection godoc
// @ID          getCollection
// @Summary     Get a collection
// @Tags        Collections
// @Produce     json
// @Param       id   path      string  true  "Collection ID"  format(uuid)
// @Success     200  {object}  handlers.SuccessResponse{data=domain.Collection}
// @Failure     404  {object}  problem.Details  "flashcard/collection-not-found"
// @Router      /collections/{id} [get]
func (h *Handlers) GetCollection(c *gin.Context) error {
	id, err := pathID(c, apperr.FlashcardValidationFailed)
	if err != nil {
		return err
	}
	col, err := h.collections.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		return err
	}
	OK(c, col)
	return nil
}

// UpdateCollection godoc
// @ID          updateCollection
// @Summary     Update a collection
// @Tags        Collections
// @Accept      json
// @Produce     json
// @Param       id    path      string                             true  "Collection ID"  format(uuid)
// @Param       body  body      handlers.UpdateCollectionRequest  true  "Changes"
// @Success     200   {object}  handlers.SuccessResponse{data=domain.Collection}
// @Failure     400   {object}  problem.Details  "flashcard/validation-failed"
// @Failure     404   {object}  problem.Details  "flashcard/collection-not-found"
// @Router      /collections/{id} [patch]
func (h *Handlers) UpdateCollection(c *gin.Context) error {
	id, err := pathID(c, apperr.FlashcardValidationFailed)
	if err != nil {
		return err
	}
	var req UpdateCollectionRequest
	if err := bindJSON(c, &req, apperr.FlashcardValidationFailed); err != nil {
		return err
	}
	col, err := h.collections.Update(c.Request.Context(), userID(c), id, services.CollectionPatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	OK(c, col)
	return nil
}

// DeleteCollection godoc
// @ID          deleteCollection
// @Summary     Delete a collection
// @Description Flashcards of the collection are kept and detached.
// @Tags        Collections
// @Param       id   path  string  true  "Collection ID"  format(uuid)
// @Success     204
// @Failure     404  {object}  problem.Details  "flashcard/collection-not-found"
// @Router      /collections/{id} [delete]
func (h *Handlers) DeleteCollection(c *gin.Context) error {
	id, err := pathID(c, apperr.FlashcardValidationFailed)
	if err != nil {
		return err
	}
	if err := h.collections.Delete(c.Request.Context(), userID(c), id); err != nil {
		return err
	}
	NoContent(c)
	return nil
}
