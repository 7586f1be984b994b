package handler

import (
	"github.com/gofiber/fiber/v2"

	"sheetdash/internal/service"
)

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updateNameRequest struct {
	Name string `json:"name"`
}

// RegisterAccount creates a user account.
//
//	@Summary	Register an account
//	@Tags		accounts
//	@Accept		json
//	@Produce	json
//	@Param		body	body		registerRequest	true	"account"
//	@Success	201		{object}	model.Account
//	@Failure	409		{object}	errorPayload
//	@Router		/accounts [post]
func RegisterAccount(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		acc, err := svc.Register(c.UserContext(), req.Name, req.Email)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(acc)
	}
}

// GetMe returns the caller's profile with their upload count.
func GetMe(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		p, err := svc.Me(c.UserContext(), actor)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}

// UpdateMe renames the caller.
func UpdateMe(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		var req updateNameRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		acc, err := svc.UpdateName(c.UserContext(), actor, req.Name)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(acc)
	}
}

// DeleteMe removes the caller's account with all of its uploads.
func DeleteMe(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		if err := svc.DeleteMe(c.UserContext(), actor); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
