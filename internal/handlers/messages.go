package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/napkins/internal/services"
	"github.com/localnerve/napkins/internal/types"
	"github.com/localnerve/napkins/internal/utils"
)

// MessageInput is the body for POST /api/connections/:id/messages
type MessageInput struct {
	Content     string `json:"content" validate:"required"`
	MessageType string `json:"messageType" validate:"omitempty,max=32,alphanum"`
}

// ReadInput is the body for POST /api/messages/read
type ReadInput struct {
	MessageIDs types.IDList `json:"messageIds"`
}

// ListMessages handles GET /api/connections/:id/messages
// @Summary List a connection's messages
// @Tags Messages
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {array} models.Message
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /connections/{id}/messages [get]
func (h *ConnectionHandler) ListMessages(c *fiber.Ctx) error {
	me, err := actor(c, h.DB)
	if err != nil {
		return respondError(c, err, "listMessages")
	}

	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err, "listMessages")
	}

	msgs, err := services.MessagesFor(c.UserContext(), h.DB, me, id)
	if err != nil {
		return respondError(c, err, "listMessages")
	}
	return utils.SuccessResponse(c, msgs, fiber.StatusOK)
}

// PostMessage handles POST /api/connections/:id/messages
// @Summary Post a message
// @Description Either party may post once the investor has asked to connect
// @Tags Messages
// @Accept json
// @Produce json
// @Param id path int true "Connection ID"
// @Param body body MessageInput true "Message"
// @Success 201 {object} models.Message
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /connections/{id}/messages [post]
func (h *ConnectionHandler) PostMessage(c *fiber.Ctx) error {
	me, err := actor(c, h.DB)
	if err != nil {
		return respondError(c, err, "postMessage")
	}

	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err, "postMessage")
	}

	var input MessageInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err, "postMessage")
	}

	msg, err := services.PostMessage(c.UserContext(), h.DB, me, id, input.Content, input.MessageType)
	if err != nil {
		return respondError(c, err, "postMessage")
	}
	return utils.SuccessResponse(c, msg, fiber.StatusCreated)
}

// MarkRead handles POST /api/messages/read
// @Summary Mark messages read
// @Description Stamps the read time on messages the caller received. Already read messages keep their time.
// @Tags Messages
// @Accept json
// @Produce json
// @Param body body ReadInput true "Message ids, a single id or an array"
// @Success 200 {array} models.Message
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /messages/read [post]
func (h *ConnectionHandler) MarkRead(c *fiber.Ctx) error {
	me, err := actor(c, h.DB)
	if err != nil {
		return respondError(c, err, "markRead")
	}

	var input ReadInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err, "markRead")
	}
	ids := input.MessageIDs.Uint64s()
	if len(ids) == 0 {
		return respondError(c, types.Validation("messageIds is required"), "markRead")
	}

	msgs, err := services.MarkRead(c.UserContext(), h.DB, me, ids)
	if err != nil {
		return respondError(c, err, "markRead")
	}
	return utils.SuccessResponse(c, msgs, fiber.StatusOK)
}
