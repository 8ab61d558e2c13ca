package controller

import (
	"smart-dpr-be/internal/dto"
	"smart-dpr-be/internal/pkg/serverutils"
	"smart-dpr-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IHistoryController interface {
	RegisterRoutes(r fiber.Router)
	SaveChat(ctx *fiber.Ctx) error
	GetChatsBySheet(ctx *fiber.Ctx) error
	GetTodaysChat(ctx *fiber.Ctx) error
	GetChatById(ctx *fiber.Ctx) error
	DeleteChat(ctx *fiber.Ctx) error
	ClearChatHistory(ctx *fiber.Ctx) error
}

type historyController struct {
	service service.IHistoryService
}

func NewHistoryController(service service.IHistoryService) IHistoryController {
	return &historyController{service: service}
}

func (c *historyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/history/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.SaveChat)
	h.Get("sheet/:sheetId/today", c.GetTodaysChat)
	h.Get("sheet/:sheetId", c.GetChatsBySheet)
	h.Delete("sheet/:sheetId", c.ClearChatHistory)
	h.Get(":chatId", c.GetChatById)
	h.Delete(":chatId", c.DeleteChat)
}

func (c *historyController) SaveChat(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SaveChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SaveChat(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success save chat", res))
}

func (c *historyController) GetChatsBySheet(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res := c.service.GetChatsBySheet(ctx.Context(), userId, ctx.Params("sheetId"))
	return ctx.JSON(serverutils.SuccessResponse("Success get chats", res))
}

func (c *historyController) GetTodaysChat(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res := c.service.GetTodaysChat(ctx.Context(), userId, ctx.Params("sheetId"))
	return ctx.JSON(serverutils.SuccessResponse("Success get todays chat", res))
}

func (c *historyController) GetChatById(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res := c.service.GetChatById(ctx.Context(), userId, ctx.Params("chatId"))
	if res == nil {
		return serverutils.NewAppError(fiber.StatusNotFound, "chat not found")
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat", res))
}

func (c *historyController) DeleteChat(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.DeleteChat(ctx.Context(), userId, ctx.Params("chatId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete chat", res))
}

func (c *historyController) ClearChatHistory(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	if err := c.service.ClearChatHistory(ctx.Context(), userId, ctx.Params("sheetId")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success clear chat history", nil))
}
