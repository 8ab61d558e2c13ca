package controller

import (
	"smart-dpr-be/internal/dto"
	"smart-dpr-be/internal/pkg/serverutils"
	"smart-dpr-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	LoginURL(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth/v1")
	h.Get("google/login", c.LoginURL)
	h.Get("google/callback", c.Callback)

	protected := h.Group("")
	protected.Use(serverutils.JwtMiddleware)
	protected.Get("me", c.Me)
	protected.Post("logout", c.Logout)
}

func (c *authController) LoginURL(ctx *fiber.Ctx) error {
	url, err := c.service.GetLoginURL()
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get login url", dto.LoginURLResponse{URL: url}))
}

func (c *authController) Callback(ctx *fiber.Ctx) error {
	code := ctx.Query("code")
	if code == "" {
		return serverutils.NewAppError(fiber.StatusBadRequest, "missing code parameter")
	}

	res, err := c.service.HandleCallback(ctx.Context(), code)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success sign in", res))
}

func (c *authController) Me(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	user, err := c.service.User(ctx.Context(), userId)
	if err != nil {
		return err
	}
	if user == nil {
		return serverutils.NewAppError(fiber.StatusNotFound, "user not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get profile", dto.UserResponse{
		Id:        user.Id,
		Email:     user.Email,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
	}))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	if err := c.service.Logout(ctx.Context(), userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success sign out", nil))
}
