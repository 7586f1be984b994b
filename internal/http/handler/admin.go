package handler

import (
	"github.com/gofiber/fiber/v2"

	"sheetdash/internal/model"
	"sheetdash/internal/service"
)

// AdminStats returns account and upload counts for today, this week and this month.
//
//	@Summary	Admin dashboard
//	@Tags		admin
//	@Produce	json
//	@Success	200	{object}	service.AdminDashboard
//	@Failure	403	{object}	errorPayload
//	@Router		/admin/stats [get]
func AdminStats(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Stats(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// ListAccounts lists every account, newest first.
func ListAccounts(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.ListAccounts(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetAccount returns an account with the metadata of its uploads.
func GetAccount(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		res, err := svc.AccountDetails(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// DeleteAccount removes an account with its uploads; a missing account answers 204.
func DeleteAccount(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.DeleteAccount(c.UserContext(), actor, id); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeleteAccountUpload removes a single upload of the given account.
func DeleteAccountUpload(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		uploadID, ok := uuidParam(c, "uploadId")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.DeleteAccountUpload(c.UserContext(), actor, id, uploadID); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SystemStats returns role totals and the top uploaders.
func SystemStats(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.GlobalStats(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// ListAdmins lists the accounts holding the admin role.
func ListAdmins(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.ListAdmins(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// PromoteAccount raises a user to admin.
//
//	@Summary	Promote to admin
//	@Tags		superadmin
//	@Produce	json
//	@Param		id	path		string	true	"account id"
//	@Success	200	{object}	model.Account
//	@Router		/superadmin/accounts/{id}/promote [post]
func PromoteAccount(svc service.AdminService) fiber.Handler {
	return changeRole(func(c *fiber.Ctx, actor model.Actor, id string) (*model.Account, error) {
		return svc.Promote(c.UserContext(), actor, id)
	})
}

// DemoteAccount lowers an admin to user.
func DemoteAccount(svc service.AdminService) fiber.Handler {
	return changeRole(func(c *fiber.Ctx, actor model.Actor, id string) (*model.Account, error) {
		return svc.Demote(c.UserContext(), actor, id)
	})
}

func changeRole(fn func(c *fiber.Ctx, actor model.Actor, id string) (*model.Account, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		acc, err := fn(c, actor, id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(acc)
	}
}
