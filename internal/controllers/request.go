package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equiptrack/internal/dto"
	"equiptrack/internal/services"
	"equiptrack/pkg/api"
	"equiptrack/pkg/utils"
)

type RequestController struct {
	requestService services.RequestServiceInterface
	logger         *zap.Logger
}

func NewRequestController(service services.RequestServiceInterface, logger *zap.Logger) *RequestController {
	return &RequestController{requestService: service, logger: logger}
}

func (c *RequestController) SubmitRequest(ctx echo.Context) error {
	var payload dto.SubmitRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	res, err := c.requestService.Submit(ctx.Request().Context(), payload)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if !res.Durable {
		return api.SuccessWithWarnings(ctx, http.StatusCreated, "request submitted locally", res, res.Warnings)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "request submitted", res)
}

func (c *RequestController) DecideRequest(ctx echo.Context) error {
	var payload dto.DecideRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	res, err := c.requestService.Decide(ctx.Request().Context(), ctx.Param("id"), payload)
	if err != nil {
		c.logger.Warn("decision rejected", zap.String("requestId", ctx.Param("id")), zap.Error(err))
		return api.ErrorResponse(ctx, err)
	}
	if !res.Durable {
		return api.SuccessWithWarnings(ctx, http.StatusOK, "decision applied locally", res, res.Warnings)
	}
	return api.SuccessOne(ctx, http.StatusOK, "decision applied", res)
}

func (c *RequestController) GetQueue(ctx echo.Context) error {
	queue, err := c.requestService.GetQueue(ctx.Request().Context())
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "approval queue", queue)
}

func (c *RequestController) GetRequests(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	requests, total, err := c.requestService.GetRequests(ctx.Request().Context(), filter)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessList(ctx, "requests", requests, total, filter.Page, filter.Limit)
}

func (c *RequestController) FindRequest(ctx echo.Context) error {
	res, err := c.requestService.FindRequest(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "request", res)
}

func (c *RequestController) GetMovementForm(ctx echo.Context) error {
	res, err := c.requestService.GetMovementForm(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "movement form data", res)
}

func (c *RequestController) AuditRequests(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	requests, total, err := c.requestService.AuditRequests(ctx.Request().Context(), filter)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessList(ctx, "persisted requests", requests, total, filter.Page, filter.Limit)
}
