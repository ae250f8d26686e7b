package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/napkins/internal/middleware"
	"github.com/localnerve/napkins/internal/models"
	"github.com/localnerve/napkins/internal/services"
	"github.com/localnerve/napkins/internal/types"
	"github.com/localnerve/napkins/internal/utils"
	"gorm.io/gorm"
)

// ProfileHandler handles profile routes
type ProfileHandler struct {
	DB *gorm.DB
}

// ProfileInput is the body for PUT /api/profiles/me
type ProfileInput struct {
	Role       string  `json:"role"`
	Name       string  `json:"name"`
	Link       string  `json:"link"`
	PhotoURL   *string `json:"photoUrl"`
	LookingFor string  `json:"lookingFor"`
	History    string  `json:"history"`
}

// GetMyProfile handles GET /api/profiles/me
// @Summary Get my profile
// @Tags Profiles
// @Produce json
// @Success 200 {object} models.Profile
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /profiles/me [get]
func (h *ProfileHandler) GetMyProfile(c *fiber.Ctx) error {
	profile, err := services.GetProfile(c.UserContext(), h.DB, middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "getMyProfile")
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// PutMyProfile handles PUT /api/profiles/me
// @Summary Create or replace my profile
// @Description Investors must supply a photo. The role may change between writes.
// @Tags Profiles
// @Accept json
// @Produce json
// @Param body body ProfileInput true "Profile"
// @Success 200 {object} models.Profile
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /profiles/me [put]
func (h *ProfileHandler) PutMyProfile(c *fiber.Ctx) error {
	var input ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, types.Validation("invalid request body: %v", err), "putMyProfile")
	}

	role, err := models.ParseRole(input.Role)
	if err != nil {
		return respondError(c, types.Validation("%v", err), "putMyProfile")
	}

	profile, err := services.UpsertProfile(c.UserContext(), h.DB, &models.Profile{
		ID:         middleware.UserID(c),
		Role:       role,
		Name:       input.Name,
		Link:       input.Link,
		PhotoURL:   input.PhotoURL,
		LookingFor: input.LookingFor,
		History:    input.History,
	})
	if err != nil {
		return respondError(c, err, "putMyProfile")
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// GetProfile handles GET /api/profiles/:id
// @Summary Get a profile
// @Tags Profiles
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /profiles/{id} [get]
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := services.GetProfile(c.UserContext(), h.DB, c.Params("id"))
	if err != nil {
		return respondError(c, err, "getProfile")
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// ListProfiles handles GET /api/profiles?role=
// @Summary List profiles by role
// @Tags Profiles
// @Produce json
// @Param role query string true "founder or investor"
// @Success 200 {array} models.Profile
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /profiles [get]
func (h *ProfileHandler) ListProfiles(c *fiber.Ctx) error {
	role, err := models.ParseRole(c.Query("role"))
	if err != nil {
		return respondError(c, types.Validation("%v", err), "listProfiles")
	}

	profiles, err := services.ListProfilesByRole(c.UserContext(), h.DB, role)
	if err != nil {
		return respondError(c, err, "listProfiles")
	}
	return utils.SuccessResponse(c, profiles, fiber.StatusOK)
}
