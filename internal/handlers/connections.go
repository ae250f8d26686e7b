// connections.go
//
// Matching data service for founders and investors
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of napkins.
// napkins is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// napkins is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with napkins.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/napkins/internal/models"
	"github.com/localnerve/napkins/internal/services"
	"github.com/localnerve/napkins/internal/types"
	"github.com/localnerve/napkins/internal/utils"
	"gorm.io/gorm"
)

// ConnectionHandler handles connection lifecycle and message routes
type ConnectionHandler struct {
	DB *gorm.DB
}

// InterestInput is the body for POST /api/connections
type InterestInput struct {
	IdeaID types.ID `json:"ideaId" validate:"required"`
}

// RequestInput is the body for POST /api/connections/:id/request
type RequestInput struct {
	Message string `json:"message"`
}

type lifecycleFunc func(ctx context.Context, db *gorm.DB, actor services.Actor, connID uint64) (*models.Connection, error)

// advance runs a lifecycle action against the connection named by :id
func (h *ConnectionHandler) advance(c *fiber.Ctx, op string, fn lifecycleFunc) error {
	me, err := actor(c, h.DB)
	if err != nil {
		return respondError(c, err, op)
	}

	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err, op)
	}

	conn, err := fn(c.UserContext(), h.DB, me, id)
	if err != nil {
		return respondError(c, err, op)
	}
	return utils.SuccessResponse(c, conn, fiber.StatusOK)
}

// remove runs a removing action against :id
func (h *ConnectionHandler) remove(c *fiber.Ctx, op string, fn lifecycleFunc) error {
	me, err := actor(c, h.DB)
	if err != nil {
		return respondError(c, err, op)
	}

	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err, op)
	}

	if _, err := fn(c.UserContext(), h.DB, me, id); err != nil {
		return respondError(c, err, op)
	}
	return utils.RemovedResponse(c, id)
}

// ExpressInterest handles POST /api/connections
// @Summary Express interest in an idea
// @Description An investor likes an idea. Repeating the call returns the existing connection.
// @Tags Connections
// @Accept json
// @Produce json
// @Param body body InterestInput true "Idea to like"
// @Success 200 {object} models.Connection
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /connections [post]
func (h *ConnectionHandler) ExpressInterest(c *fiber.Ctx) error {
	me, err := actor(c, h.DB)
	if err != nil {
		return respondError(c, err, "expressInterest")
	}

	var input InterestInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err, "expressInterest")
	}

	conn, err := services.ExpressInterest(c.UserContext(), h.DB, me, input.IdeaID.Uint64())
	if err != nil {
		return respondError(c, err, "expressInterest")
	}
	return utils.SuccessResponse(c, conn, fiber.StatusOK)
}

// PassIdea handles POST /api/ideas/:id/pass
// @Summary Pass on an idea
// @Description An investor hides an idea from their feed
// @Tags Connections
// @Produce json
// @Param id path int true "Idea ID"
// @Success 200 {object} models.Connection
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /ideas/{id}/pass [post]
func (h *ConnectionHandler) PassIdea(c *fiber.Ctx) error {
	return h.advance(c, "passIdea", services.PassIdea)
}

// GetConnection handles GET /api/connections/:id
// @Summary Get a connection
// @Tags Connections
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} services.ConnectionDetail
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /connections/{id} [get]
func (h *ConnectionHandler) GetConnection(c *fiber.Ctx) error {
	me, err := actor(c, h.DB)
	if err != nil {
		return respondError(c, err, "getConnection")
	}

	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err, "getConnection")
	}

	detail, err := services.GetConnection(c.UserContext(), h.DB, me, id)
	if err != nil {
		return respondError(c, err, "getConnection")
	}
	return utils.SuccessResponse(c, detail, fiber.StatusOK)
}

// Reciprocate handles POST /api/connections/:id/reciprocate
// @Summary Like an interested investor back
// @Tags Connections
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} models.Connection
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /connections/{id}/reciprocate [post]
func (h *ConnectionHandler) Reciprocate(c *fiber.Ctx) error {
	return h.advance(c, "reciprocate", services.Reciprocate)
}

// SendRequest handles POST /api/connections/:id/request
// @Summary Ask to connect
// @Description Moves a pending connection to requested and posts the intro message.
// @Description If the message cannot be stored the response is a partial failure carrying the committed connection.
// @Tags Connections
// @Accept json
// @Produce json
// @Param id path int true "Connection ID"
// @Param body body RequestInput true "Intro message"
// @Success 200 {object} models.Connection
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /connections/{id}/request [post]
func (h *ConnectionHandler) SendRequest(c *fiber.Ctx) error {
	me, err := actor(c, h.DB)
	if err != nil {
		return respondError(c, err, "sendRequest")
	}

	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err, "sendRequest")
	}

	var input RequestInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err, "sendRequest")
	}

	conn, err := services.SendRequest(c.UserContext(), h.DB, me, id, input.Message)
	if err != nil {
		return respondError(c, err, "sendRequest")
	}
	return utils.SuccessResponse(c, conn, fiber.StatusOK)
}

// Accept handles POST /api/connections/:id/accept
// @Summary Accept a connection request
// @Tags Connections
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} models.Connection
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /connections/{id}/accept [post]
func (h *ConnectionHandler) Accept(c *fiber.Ctx) error {
	return h.advance(c, "accept", services.Accept)
}

// Pass handles POST /api/connections/:id/pass
// @Summary Pass on a connection
// @Tags Connections
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} models.Connection
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /connections/{id}/pass [post]
func (h *ConnectionHandler) Pass(c *fiber.Ctx) error {
	return h.advance(c, "pass", services.Pass)
}

// Unpass handles POST /api/connections/:id/unpass
// @Summary Undo a pass
// @Description Only the party that passed may undo it. The connection is removed.
// @Tags Connections
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} utils.RemovedResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /connections/{id}/unpass [post]
func (h *ConnectionHandler) Unpass(c *fiber.Ctx) error {
	return h.remove(c, "unpass", services.Unpass)
}

// Withdraw handles POST /api/connections/:id/withdraw
// @Summary Withdraw interest
// @Tags Connections
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} utils.RemovedResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /connections/{id}/withdraw [post]
func (h *ConnectionHandler) Withdraw(c *fiber.Ctx) error {
	return h.remove(c, "withdraw", services.Withdraw)
}

// Disconnect handles DELETE /api/connections/:id
// @Summary Disconnect
// @Tags Connections
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} utils.RemovedResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /connections/{id} [delete]
func (h *ConnectionHandler) Disconnect(c *fiber.Ctx) error {
	return h.remove(c, "disconnect", services.Disconnect)
}
