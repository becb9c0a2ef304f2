// Flashcard HTTP handlers.
//
//   - GET    /flashcards        (list, paginated, weak ETag)
//   - POST   /flashcards        (batch create, 1..100 cards)
//   - GET    /flashcards/{id}
//   - PATCH  /flashcards/{id}
//   - DELETE /flashcards/{id}
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tbourn/tenx-cards/internal/apperr"
	"github.com/tbourn/tenx-cards/internal/domain"
	"github.com/tbourn/tenx-cards/internal/services"
	"github.com/tbourn/tenx-cards/internal/utils"
)

// FlashcardDraft is one card of a batch create.
type FlashcardDraft struct {
	Front        string  `json:"front" example:"What is mitosis?"`
	Back         string  `json:"back" example:"Division of a cell into two identical cells."`
	Source       string  `json:"source" enums:"manual,ai-full,ai-edited" example:"manual"`
	GenerationID *string `json:"generationId,omitempty" format:"uuid"`
	CollectionID *string `json:"collectionId,omitempty" format:"uuid"`
}

// CreateFlashcardsRequest is the payload of POST /flashcards.
type CreateFlashcardsRequest struct {
	Flashcards []FlashcardDraft `json:"flashcards" binding:"required"`
}

// UpdateFlashcardRequest is the payload of PATCH /flashcards/{id}. Absent or
// null fields are unchanged; an empty collectionId detaches the card.
type UpdateFlashcardRequest struct {
	Front        *string `json:"front"`
	Back         *string `json:"back"`
	CollectionID *string `json:"collectionId"`
}

// ListFlashcardsResponse wraps a page of flashcards.
type ListFlashcardsResponse struct {
	Flashcards []domain.Flashcard `json:"flashcards"`
	Pagination utils.Pagination   `json:"pagination"`
}

// CreateFlashcardsResponse lists the stored cards.
type CreateFlashcardsResponse struct {
	Flashcards []domain.Flashcard `json:"flashcards"`
}

// ListFlashcards godoc
// @ID          listFlashcards
// @Summary     List flashcards (paginated)
// @Description Supports a weak ETag via If-None-Match and may return 304.
// @Tags        Flashcards
// @Produce     json
// @Param       If-None-Match  header    string  false  "Return 304 if ETag matches"
// @Param       collection_id  query     string  false  "Only cards of this collection"  format(uuid)
// @Param       source         query     string  false  "Only cards of this source"      Enums(manual, ai-full, ai-edited)
// @Param       page           query     int     false  "Page number"                    minimum(1) default(1)
// @Param       page_size      query     int     false  "Items per page"                 minimum(1) maximum(100) default(20)
// @Success     200            {object}  handlers.SuccessResponse{data=handlers.ListFlashcardsResponse}
// @Header      200            {string}  ETag  "Weak ETag for the current result"
// @Success     304            {string}  string  "Not Modified"
// @Failure     400            {object}  problem.Details  "flashcard/validation-failed"
// @Router      /flashcards [get]
func (h *Handlers) ListFlashcards(c *gin.Context) error {
	ctx := c.Request.Context()
	uid := userID(c)
	page, size := pageParams(c)
	f := services.FlashcardFilter{
		CollectionID: c.Query("collection_id"),
		Source:       c.Query("source"),
	}

	count, maxTS, err := h.flashcards.Stats(ctx, uid, f)
	if err != nil {
		return err
	}
	if notModified(c, "flashcards:", uid, ":", f.CollectionID, ":", f.Source, ":", page, ":", size, ":", count, ":", unixNano(maxTS)) {
		return nil
	}

	items, total, err := h.flashcards.ListPage(ctx, uid, f, page, size)
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.Flashcard{}
	}
	OK(c, ListFlashcardsResponse{Flashcards: items, Pagination: utils.Paginate(page, size, total)})
	return nil
}

// CreateFlashcards godoc
// @ID          createFlashcards
// @Summary     Create flashcards in a batch
// @Description ai-* cards reference their generation and bump its acceptance counters.
// @Tags        Flashcards
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.CreateFlashcardsRequest  true  "Cards"
// @Success     201   {object}  handlers.SuccessResponse{data=handlers.CreateFlashcardsResponse}
// @Failure     400   {object}  problem.Details  "flashcard/validation-failed"
// @Failure     403   {object}  problem.Details  "flashcard/forbidden"
// @Failure     404   {object}  problem.Details  "flashcard/collection-not-found"
// @Router      /flashcards [post]
func (h *Handlers) CreateFlashcards(c *gin.Context) error {
	var req CreateFlashcardsRequest
	if err := bindJSON(c, &req, apperr.FlashcardValidationFailed); err != nil {
		return err
	}
	in := make([]services.FlashcardInput, len(req.Flashcards))
	for i, d := range req.Flashcards {
		in[i] = services.FlashcardInput{
			Front:        d.Front,
			Back:         d.Back,
			Source:       d.Source,
			GenerationID: d.GenerationID,
			CollectionID: d.CollectionID,
		}
	}
	cards, err := h.flashcards.CreateBatch(c.Request.Context(), userID(c), in)
	if err != nil {
		return err
	}
	Created(c, CreateFlashcardsResponse{Flashcards: cards}, "")
	return nil
}

// GetFlashcard godoc
// @ID          getFlashcard
// @Summary     Get a flashcard
// @Tags        Flashcards
// @Produce     json
// @Param       id   path      string  true  "Flashcard ID"  format(uuid)
// @Success     200  {object}  handlers.SuccessResponse{data=domain.Flashcard}
// @Failure     404  {object}  problem.Details  "flashcard/not-found"
// @Router      /flashcards/{id} [get]
func (h *Handlers) GetFlashcard(c *gin.Context) error {
	id, err := pathID(c, apperr.FlashcardValidationFailed)
	if err != nil {
		return err
	}
	card, err := h.flashcards.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		return err
	}
	OK(c, card)
	return nil
}

// UpdateFlashcard godoc
// @ID          updateFlashcard
// @Summary     Update a flashcard
// @Description Editing the text of an ai-full card turns it into ai-edited.
// @Tags        Flashcards
// @Accept      json
// @Produce     json
// @Param       id    path      string                            true  "Flashcard ID"  format(uuid)
// @Param       body  body      handlers.UpdateFlashcardRequest  true  "Changes"
// @Success     200   {object}  handlers.SuccessResponse{data=domain.Flashcard}
// @Failure     400   {object}  problem.Details  "flashcard/validation-failed"
// @Failure     404   {object}  problem.Details  "flashcard/not-found"
// @Router      /flashcards/{id} [patch]
func (h *Handlers) UpdateFlashcard(c *gin.Context) error {
	id, err := pathID(c, apperr.FlashcardValidationFailed)
	if err != nil {
		return err
	}
	var req UpdateFlashcardRequest
	if err := bindJSON(c, &req, apperr.FlashcardValidationFailed); err != nil {
		return err
	}
	card, err := h.flashcards.Update(c.Request.Context(), userID(c), id, services.FlashcardPatch{
		Front:        req.Front,
		Back:         req.Back,
		CollectionID: req.CollectionID,
	})
	if err != nil {
		return err
	}
	OK(c, card)
	return nil
}

// DeleteFlashcard godoc
// @ID          deleteFlashcard
// @Summary     Delete a flashcard
// @Tags        Flashcards
// @Param       id   path  string  true  "Flashcard ID"  format(uuid)
// @Success     204
// @Failure     404  {object}  problem.Details  "flashcard/not-found"
// @Router      /flashcards/{id} [delete]
func (h *Handlers) DeleteFlashcard(c *gin.Context) error {
	id, err := pathID(c, apperr.FlashcardValidationFailed)
	if err != nil {
		return err
	}
	if err := h.flashcards.Delete(c.Request.Context(), userID(c), id); err != nil {
		return err
	}
	NoContent(c)
	return nil
}
