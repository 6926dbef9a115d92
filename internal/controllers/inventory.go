package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equiptrack/internal/dto"
	"equiptrack/internal/services"
	"equiptrack/pkg/api"
	"equiptrack/pkg/constants"
	apperrors "equiptrack/pkg/errors"
	"equiptrack/pkg/filestorage"
	"equiptrack/pkg/utils"
)

type InventoryController struct {
	inventoryService services.InventoryServiceInterface
	fileStorage      filestorage.FileStorageInterface
	logger           *zap.Logger
}

func NewInventoryController(
	service services.InventoryServiceInterface,
	fileStorage filestorage.FileStorageInterface,
	logger *zap.Logger,
) *InventoryController {
	return &InventoryController{
		inventoryService: service,
		fileStorage:      fileStorage,
		logger:           logger,
	}
}

func (c *InventoryController) GetItems(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	items, total, err := c.inventoryService.GetItems(ctx.Request().Context(), filter)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessList(ctx, "inventory", items, total, filter.Page, filter.Limit)
}

func (c *InventoryController) FindItem(ctx echo.Context) error {
	res, err := c.inventoryService.FindItem(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "inventory item", res)
}

func (c *InventoryController) UpdateItem(ctx echo.Context) error {
	var payload dto.UpdateInventoryItemDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	res, sync, err := c.inventoryService.UpdateItem(ctx.Request().Context(), ctx.Param("id"), payload)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if !sync.Durable {
		return api.SuccessWithWarnings(ctx, http.StatusOK, "item updated locally", res, sync.Warnings)
	}
	return api.SuccessOne(ctx, http.StatusOK, "item updated", res)
}

// ImportItems takes a multipart .xlsx upload. The raw file is kept on
// disk for audit before parsing.
func (c *InventoryController) ImportItems(ctx echo.Context) error {
	actor, err := utils.GetActorFromCtx(ctx.Request().Context())
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return api.ErrorResponse(ctx, apperrors.NewInvalidInputError("an .xlsx file is required in the 'file' field"))
	}

	targetBase := actor.Base
	if actor.Role == constants.RoleAdmin && ctx.QueryParam("base") != "" {
		targetBase = ctx.QueryParam("base")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	storedPath, err := c.fileStorage.Save(src, fileHeader.Filename, "imports")
	src.Close()
	if err != nil {
		c.logger.Error("failed to keep import audit copy", zap.String("file", fileHeader.Filename), zap.Error(err))
		return api.ErrorResponse(ctx, err)
	}

	src, err = fileHeader.Open()
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	defer src.Close()

	res, err := c.inventoryService.ImportFromExcel(ctx.Request().Context(), src, fileHeader.Filename, targetBase)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	c.logger.Info("inventory imported",
		zap.String("file", fileHeader.Filename),
		zap.String("storedAt", storedPath),
		zap.String("base", targetBase),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped))

	if !res.Durable {
		return api.SuccessWithWarnings(ctx, http.StatusCreated, "inventory imported locally", res,
			[]string{"import saved locally, database sync failed"})
	}
	return api.SuccessOne(ctx, http.StatusCreated, "inventory imported", res)
}

// ExportItems streams the caller's visible inventory slice as an .xlsx
// attachment.
func (c *InventoryController) ExportItems(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	filter.WithPagination = false

	workbook, filename, err := c.inventoryService.ExportToExcel(ctx.Request().Context(), filter)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	defer workbook.Close()

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	ctx.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().WriteHeader(http.StatusOK)

	if err := workbook.Write(ctx.Response()); err != nil {
		c.logger.Error("failed to stream inventory export", zap.Error(err))
		return err
	}
	return nil
}

// AuditItems reads the persisted rows directly, bypassing the session
// view. Admin-only; used to compare view state against storage.
func (c *InventoryController) AuditItems(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	items, total, err := c.inventoryService.AuditItems(ctx.Request().Context(), filter)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessList(ctx, "persisted inventory", items, total, filter.Page, filter.Limit)
}
