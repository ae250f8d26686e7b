// ideas.go
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
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/napkins/internal/models"
	"github.com/localnerve/napkins/internal/services"
	"github.com/localnerve/napkins/internal/utils"
	"gorm.io/gorm"
)

// IdeaHandler handles idea routes
type IdeaHandler struct {
	DB *gorm.DB
}

// IdeaInput is the body for creating or editing an idea
type IdeaInput struct {
	Text string `json:"text" validate:"required"`
}

// ListIdeas handles GET /api/ideas
// @Summary List ideas
// @Description List every live idea, newest first
// @Tags Ideas
// @Produce json
// @Success 200 {array} models.Idea
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /ideas [get]
func (h *IdeaHandler) ListIdeas(c *fiber.Ctx) error {
	ideas, err := services.ListIdeas(c.UserContext(), h.DB, true)
	if err != nil {
		return respondError(c, err, "listIdeas")
	}
	return utils.SuccessResponse(c, ideas, fiber.StatusOK)
}

// ListMyIdeas handles GET /api/ideas/mine
// @Summary List my ideas
// @Description List the calling founder's ideas, newest first
// @Tags Ideas
// @Produce json
// @Param includeDeleted query bool false "Include soft-deleted ideas"
// @Success 200 {array} models.Idea
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /ideas/mine [get]
func (h *IdeaHandler) ListMyIdeas(c *fiber.Ctx) error {
	me, err := actorAs(c, h.DB, models.RoleFounder)
	if err != nil {
		return respondError(c, err, "listMyIdeas")
	}

	ideas, err := services.ListIdeasByOwner(c.UserContext(), h.DB, me.ID, c.QueryBool("includeDeleted"))
	if err != nil {
		return respondError(c, err, "listMyIdeas")
	}
	return utils.SuccessResponse(c, ideas, fiber.StatusOK)
}

// CreateIdea handles POST /api/ideas
// @Summary Create an idea
// @Description Publish a new idea owned by the calling founder
// @Tags Ideas
// @Accept json
// @Produce json
// @Param body body IdeaInput true "Idea text"
// @Success 201 {object} models.Idea
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /ideas [post]
func (h *IdeaHandler) CreateIdea(c *fiber.Ctx) error {
	me, err := actorAs(c, h.DB, models.RoleFounder)
	if err != nil {
		return respondError(c, err, "createIdea")
	}

	var input IdeaInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err, "createIdea")
	}

	idea, err := services.CreateIdea(c.UserContext(), h.DB, me.ID, input.Text)
	if err != nil {
		return respondError(c, err, "createIdea")
	}
	return utils.SuccessResponse(c, idea, fiber.StatusCreated)
}

// EditIdea handles PATCH /api/ideas/:id
// @Summary Edit an idea
// @Description Replace the text of one of the caller's live ideas
// @Tags Ideas
// @Accept json
// @Produce json
// @Param id path int true "Idea ID"
// @Param body body IdeaInput true "Idea text"
// @Success 200 {object} models.Idea
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /ideas/{id} [patch]
func (h *IdeaHandler) EditIdea(c *fiber.Ctx) error {
	me, err := actorAs(c, h.DB, models.RoleFounder)
	if err != nil {
		return respondError(c, err, "editIdea")
	}

	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err, "editIdea")
	}

	var input IdeaInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err, "editIdea")
	}

	idea, err := services.EditIdea(c.UserContext(), h.DB, me.ID, id, input.Text)
	if err != nil {
		return respondError(c, err, "editIdea")
	}
	return utils.SuccessResponse(c, idea, fiber.StatusOK)
}

// DeleteIdea handles DELETE /api/ideas/:id
// @Summary Delete an idea
// @Description Soft delete one of the caller's ideas. Repeating the call is harmless.
// @Tags Ideas
// @Produce json
// @Param id path int true "Idea ID"
// @Success 200 {object} models.Idea
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /ideas/{id} [delete]
func (h *IdeaHandler) DeleteIdea(c *fiber.Ctx) error {
	me, err := actorAs(c, h.DB, models.RoleFounder)
	if err != nil {
		return respondError(c, err, "deleteIdea")
	}

	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err, "deleteIdea")
	}

	idea, err := services.SoftDeleteIdea(c.UserContext(), h.DB, me.ID, id)
	if err != nil {
		return respondError(c, err, "deleteIdea")
	}
	return utils.SuccessResponse(c, idea, fiber.StatusOK)
}
