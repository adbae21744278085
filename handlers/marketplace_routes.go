// handlers/marketplace_routes.go
package handlers

import (
	"strconv"

	"player-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func parseListingID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}

// SetupMarketplaceRoutes registers trading endpoints under /user/market,
// fee administration under /admin/market, and public listing reads.
func SetupMarketplaceRoutes(app *fiber.App, market *services.MarketplaceService) {
	app.Post("/user/market/listings", func(c *fiber.Ctx) error {
		var req struct {
			ItemID       string `json:"item_id"`
			Amount       int64  `json:"amount"`
			PricePerUnit int64  `json:"price_per_unit"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		listing, err := market.CreateListing(caller(c), req.ItemID, req.Amount, req.PricePerUnit)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(listing)
	})

	app.Delete("/user/market/listings/:id", func(c *fiber.Ctx) error {
		id, err := parseListingID(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing id"})
		}
		if err := market.CancelListing(caller(c), id); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"listing_id": id, "status": "cancelled"})
	})

	app.Post("/user/market/listings/:id/buy", func(c *fiber.Ctx) error {
		id, err := parseListingID(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing id"})
		}
		var req struct {
			Amount  int64 `json:"amount"`
			Payment int64 `json:"payment"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		receipt, err := market.BuyItem(caller(c), id, req.Amount, req.Payment)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(receipt)
	})

	app.Put("/admin/market/fee", func(c *fiber.Ctx) error {
		var req struct {
			Bps int64 `json:"bps"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := market.SetPlatformFee(caller(c), req.Bps); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"fee_bps": req.Bps})
	})

	app.Post("/admin/market/fees/withdraw", func(c *fiber.Ctx) error {
		var req struct {
			To string `json:"to"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		to := normalizeAccount(req.To)
		withdrawn, err := market.WithdrawFees(caller(c), to)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"withdrawn": withdrawn, "to": to})
	})

	app.Get("/market/fee", func(c *fiber.Ctx) error {
		bps, accumulated, err := market.PlatformFee()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"fee_bps": bps, "accumulated_fees": accumulated})
	})

	app.Get("/market/listings", func(c *fiber.Ctx) error {
		if itemID := c.Query("item"); itemID != "" {
			listings, err := market.ListingsByItem(itemID)
			if err != nil {
				return fail(c, err)
			}
			return c.JSON(fiber.Map{"listings": listings, "count": len(listings)})
		}
		if seller := c.Query("seller"); seller != "" {
			listings, err := market.ListingsBySeller(normalizeAccount(seller))
			if err != nil {
				return fail(c, err)
			}
			return c.JSON(fiber.Map{"listings": listings, "count": len(listings)})
		}
		listings, err := market.ActiveListings()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"listings": listings, "count": len(listings)})
	})

	app.Get("/market/listings/:id", func(c *fiber.Ctx) error {
		id, err := parseListingID(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing id"})
		}
		listing, err := market.GetListing(id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(listing)
	})
}
