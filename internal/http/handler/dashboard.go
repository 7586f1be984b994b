package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"sheetdash/internal/service"
)

// intQuery parses an optional non-negative integer query value; absent means 0.
func intQuery(c *fiber.Ctx, key string) (int, bool) {
	s := c.Query(key)
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// DashboardSummary counts the caller's uploads by outcome.
//
//	@Summary	Dashboard summary
//	@Tags		dashboard
//	@Produce	json
//	@Success	200	{object}	analytics.AccountSummary
//	@Router		/dashboard/summary [get]
func DashboardSummary(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		res, err := svc.Summary(c.UserContext(), actor.ID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// DashboardRecent lists the caller's latest uploads.
//
//	@Summary	Recent uploads
//	@Tags		dashboard
//	@Produce	json
//	@Param		limit	query	int	false	"number of uploads"
//	@Success	200		{array}	analytics.RecentUpload
//	@Router		/dashboard/recent [get]
func DashboardRecent(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		n, ok := intQuery(c, "limit")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		res, err := svc.Recent(c.UserContext(), actor.ID, n)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// DashboardChart splits the caller's uploads into uploaded and failed.
//
//	@Summary	Status chart
//	@Tags		dashboard
//	@Produce	json
//	@Success	200	{object}	analytics.StatusChart
//	@Router		/dashboard/chart [get]
func DashboardChart(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		res, err := svc.Chart(c.UserContext(), actor.ID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// DashboardTrends returns per-day upload counts over the last "days" days.
//
//	@Summary	Upload trend
//	@Tags		dashboard
//	@Produce	json
//	@Param		days	query		int	false	"window length in days"
//	@Success	200		{object}	analytics.TrendChart
//	@Router		/dashboard/trends [get]
func DashboardTrends(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		days, ok := intQuery(c, "days")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DAYS", "invalid days")
		}
		res, err := svc.Trend(c.UserContext(), actor.ID, days)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}
