// views.go
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
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/napkins/internal/models"
	"github.com/localnerve/napkins/internal/services"
	"github.com/localnerve/napkins/internal/types"
	"github.com/localnerve/napkins/internal/utils"
	"gorm.io/gorm"
)

// ViewHandler serves the per-user projections
type ViewHandler struct {
	DB *gorm.DB
}

// Feed handles GET /api/views/feed
// @Summary Investor feed
// @Description Live ideas the investor has not liked or passed, newest first
// @Tags Views
// @Produce json
// @Success 200 {array} services.IdeaCard
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /views/feed [get]
func (h *ViewHandler) Feed(c *fiber.Ctx) error {
	me, err := actorAs(c, h.DB, models.RoleInvestor)
	if err != nil {
		return respondError(c, err, "feed")
	}

	cards, err := services.FeedFor(c.UserContext(), h.DB, me.ID)
	if err != nil {
		return respondError(c, err, "feed")
	}
	return utils.SuccessResponse(c, cards, fiber.StatusOK)
}

// Liked handles GET /api/views/liked
// @Summary Ideas I liked
// @Tags Views
// @Produce json
// @Success 200 {array} services.ConnectionView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /views/liked [get]
func (h *ViewHandler) Liked(c *fiber.Ctx) error {
	me, err := actorAs(c, h.DB, models.RoleInvestor)
	if err != nil {
		return respondError(c, err, "liked")
	}

	views, err := services.LikedByMe(c.UserContext(), h.DB, me.ID)
	if err != nil {
		return respondError(c, err, "liked")
	}
	return utils.SuccessResponse(c, views, fiber.StatusOK)
}

// Interested handles GET /api/views/interested
// @Summary Investors curious about my ideas
// @Tags Views
// @Produce json
// @Success 200 {array} services.ConnectionView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /views/interested [get]
func (h *ViewHandler) Interested(c *fiber.Ctx) error {
	me, err := actorAs(c, h.DB, models.RoleFounder)
	if err != nil {
		return respondError(c, err, "interested")
	}

	views, err := services.InterestedInMe(c.UserContext(), h.DB, me.ID)
	if err != nil {
		return respondError(c, err, "interested")
	}
	return utils.SuccessResponse(c, views, fiber.StatusOK)
}

// Connections handles GET /api/views/connections
// @Summary My connections
// @Description Non-blocked connections, least advanced first. role narrows to one side, status to one status.
// @Tags Views
// @Produce json
// @Param role query string false "founder or investor"
// @Param status query string false "curious, pending, requested or connected"
// @Success 200 {array} services.ConnectionView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /views/connections [get]
func (h *ViewHandler) Connections(c *fiber.Ctx) error {
	me, err := actor(c, h.DB)
	if err != nil {
		return respondError(c, err, "connections")
	}

	var statuses []models.Status
	if raw := strings.ToLower(strings.TrimSpace(c.Query("status"))); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return respondError(c, types.Validation("%v", err), "connections")
		}
		statuses = append(statuses, status)
	}

	hint := models.Role(strings.ToLower(strings.TrimSpace(c.Query("role"))))
	views, err := services.ConnectionsFor(c.UserContext(), h.DB, me.ID, hint, statuses...)
	if err != nil {
		return respondError(c, err, "connections")
	}
	return utils.SuccessResponse(c, views, fiber.StatusOK)
}

// Passed handles GET /api/views/passed
// @Summary Ideas I passed on
// @Tags Views
// @Produce json
// @Success 200 {array} services.ConnectionView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /views/passed [get]
func (h *ViewHandler) Passed(c *fiber.Ctx) error {
	me, err := actorAs(c, h.DB, models.RoleInvestor)
	if err != nil {
		return respondError(c, err, "passed")
	}

	views, err := services.PassedBy(c.UserContext(), h.DB, me.ID)
	if err != nil {
		return respondError(c, err, "passed")
	}
	return utils.SuccessResponse(c, views, fiber.StatusOK)
}

// Investors handles GET /api/views/investors
// @Summary Investors engaged with my ideas
// @Description Grouped by investor
// @Tags Views
// @Produce json
// @Success 200 {array} services.InvestorLikes
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /views/investors [get]
func (h *ViewHandler) Investors(c *fiber.Ctx) error {
	me, err := actorAs(c, h.DB, models.RoleFounder)
	if err != nil {
		return respondError(c, err, "investors")
	}

	likes, err := services.LikedIdeasByInvestor(c.UserContext(), h.DB, me.ID)
	if err != nil {
		return respondError(c, err, "investors")
	}
	return utils.SuccessResponse(c, likes, fiber.StatusOK)
}

// Requests handles GET /api/views/requests
// @Summary Connection requests awaiting me
// @Tags Views
// @Produce json
// @Success 200 {array} services.ConnectionView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /views/requests [get]
func (h *ViewHandler) Requests(c *fiber.Ctx) error {
	me, err := actorAs(c, h.DB, models.RoleFounder)
	if err != nil {
		return respondError(c, err, "requests")
	}

	views, err := services.RequestsFor(c.UserContext(), h.DB, me.ID)
	if err != nil {
		return respondError(c, err, "requests")
	}
	return utils.SuccessResponse(c, views, fiber.StatusOK)
}
