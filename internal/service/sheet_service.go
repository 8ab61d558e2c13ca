package service

import (
	"context"
	"fmt"

	"smart-dpr-be/internal/dto"
	"smart-dpr-be/internal/pkg/serverutils"
	"smart-dpr-be/pkg/sheets"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const defaultValuesRange = "Sheet1!A1:Z100"

type ISheetService interface {
	ListSpreadsheets(ctx context.Context, userId uuid.UUID) ([]dto.SpreadsheetResponse, error)
	GetValues(ctx context.Context, userId uuid.UUID, spreadsheetId, valuesRange string) (*dto.SheetValuesResponse, error)
	AppendRows(ctx context.Context, userId uuid.UUID, spreadsheetId string, req *dto.AppendRowsRequest) (*dto.AppendRowsResponse, error)
}

type sheetService struct {
	auth         IAuthService
	sheetsClient *sheets.Client
}

func NewSheetService(auth IAuthService, sheetsClient *sheets.Client) ISheetService {
	return &sheetService{
		auth:         auth,
		sheetsClient: sheetsClient,
	}
}

func (s *sheetService) ListSpreadsheets(ctx context.Context, userId uuid.UUID) ([]dto.SpreadsheetResponse, error) {
	ts, err := s.auth.TokenSource(ctx, userId)
	if err != nil {
		return nil, err
	}

	infos, err := s.sheetsClient.ListSpreadsheets(ctx, ts)
	if err != nil {
		return nil, serverutils.NewAppError(fiber.StatusBadGateway, fmt.Sprintf("failed listing spreadsheets: %v", err))
	}

	out := make([]dto.SpreadsheetResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, dto.SpreadsheetResponse{
			Id:           info.Id,
			Name:         info.Name,
			ModifiedTime: info.ModifiedTime,
		})
	}
	return out, nil
}

func (s *sheetService) GetValues(ctx context.Context, userId uuid.UUID, spreadsheetId, valuesRange string) (*dto.SheetValuesResponse, error) {
	ts, err := s.auth.TokenSource(ctx, userId)
	if err != nil {
		return nil, err
	}

	if valuesRange == "" {
		valuesRange = defaultValuesRange
	}

	values, err := s.sheetsClient.ReadRange(ctx, ts, spreadsheetId, valuesRange)
	if err != nil {
		return nil, serverutils.NewAppError(fiber.StatusBadGateway, fmt.Sprintf("failed reading range: %v", err))
	}

	return &dto.SheetValuesResponse{Range: valuesRange, Values: values}, nil
}

func (s *sheetService) AppendRows(ctx context.Context, userId uuid.UUID, spreadsheetId string, req *dto.AppendRowsRequest) (*dto.AppendRowsResponse, error) {
	ts, err := s.auth.TokenSource(ctx, userId)
	if err != nil {
		return nil, err
	}

	updatedRange, updatedCells, err := s.sheetsClient.AppendRows(ctx, ts, spreadsheetId, req.Range, req.Values)
	if err != nil {
		return nil, serverutils.NewAppError(fiber.StatusBadGateway, fmt.Sprintf("failed appending rows: %v", err))
	}

	return &dto.AppendRowsResponse{UpdatedRange: updatedRange, UpdatedCells: updatedCells}, nil
}
