// handlers/cosmetic_routes.go
package handlers

import (
	"path/filepath"
	"strconv"

	"player-rewards-system/services"
	"player-rewards-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SetupCosmeticRoutes registers catalog and inventory endpoints. Admin
// mutations live under /admin, per-account actions under /user, reads are
// public.
func SetupCosmeticRoutes(app *fiber.App, cosmetics *services.CosmeticService) {
	// Admin: create a catalog item. Multipart so the image rides along; the
	// stored hash is the sha256 of the uploaded bytes.
	app.Post("/admin/items", func(c *fiber.Ctx) error {
		maxSupply, _ := strconv.ParseInt(c.FormValue("max_supply", "0"), 10, 64)
		minTier, _ := strconv.Atoi(c.FormValue("min_tier_required", "0"))

		in := services.ItemInput{
			ID:              c.FormValue("id"),
			Name:            c.FormValue("name"),
			Category:        c.FormValue("category"),
			Rarity:          c.FormValue("rarity"),
			MaxSupply:       maxSupply,
			MinTierRequired: minTier,
		}
		if in.ID == "" || in.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id and name are required"})
		}

		if image, err := c.FormFile("image"); err == nil && image.Size > 0 {
			ext := filepath.Ext(image.Filename)
			if ext == "" {
				ext = ".png"
			}
			key := "items/" + uuid.NewString() + ext
			url, hash, err := utils.UploadItemImage(image, key)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload item image"})
			}
			in.ImageURL = url
			in.ImageHash = hash
		}

		item, err := cosmetics.CreateItem(caller(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	})

	// Admin: mint units of an item to an account.
	app.Post("/admin/items/:id/mint", func(c *fiber.Ctx) error {
		var req struct {
			Account  string `json:"account"`
			Quantity int64  `json:"quantity"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := cosmetics.MintItem(caller(c), normalizeAccount(req.Account), c.Params("id"), req.Quantity); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"item_id": c.Params("id"), "account": req.Account, "quantity": req.Quantity})
	})

	app.Post("/user/equip", func(c *fiber.Ctx) error {
		var req struct {
			Category string `json:"category"`
			ItemID   string `json:"item_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := cosmetics.EquipItem(caller(c), req.Category, req.ItemID); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"category": req.Category, "item_id": req.ItemID, "equipped": true})
	})

	app.Post("/user/unequip", func(c *fiber.Ctx) error {
		var req struct {
			Category string `json:"category"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := cosmetics.UnequipItem(caller(c), req.Category); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"category": req.Category, "equipped": false})
	})

	app.Get("/user/items", func(c *fiber.Ctx) error {
		holdings, err := cosmetics.ListOwned(caller(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"items": holdings, "count": len(holdings)})
	})

	app.Get("/user/equipped", func(c *fiber.Ctx) error {
		slots, err := cosmetics.EquippedItems(caller(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"equipped": slots})
	})

	app.Get("/items", func(c *fiber.Ctx) error {
		items, err := cosmetics.ListItems()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"items": items, "count": len(items)})
	})

	app.Get("/items/:id", func(c *fiber.Ctx) error {
		item, err := cosmetics.GetItem(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(item)
	})
}
