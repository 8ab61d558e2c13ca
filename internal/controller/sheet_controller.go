package controller

import (
	"smart-dpr-be/internal/dto"
	"smart-dpr-be/internal/pkg/serverutils"
	"smart-dpr-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISheetController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	GetValues(ctx *fiber.Ctx) error
	AppendRows(ctx *fiber.Ctx) error
}

type sheetController struct {
	service service.ISheetService
}

func NewSheetController(service service.ISheetService) ISheetController {
	return &sheetController{service: service}
}

func (c *sheetController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sheet/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Get(":id/values", c.GetValues)
	h.Post(":id/rows", c.AppendRows)
}

func (c *sheetController) GetAll(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.ListSpreadsheets(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all spreadsheets", res))
}

func (c *sheetController) GetValues(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.GetValues(ctx.Context(), userId, ctx.Params("id"), ctx.Query("range"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get values", res))
}

func (c *sheetController) AppendRows(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.AppendRowsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AppendRows(ctx.Context(), userId, ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success append rows", res))
}
