package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/fabpulse/fabpulse-engine/pkg/llm"
	"github.com/fabpulse/fabpulse-engine/pkg/models"
	"github.com/fabpulse/fabpulse-engine/pkg/prompts"
	"github.com/fabpulse/fabpulse-engine/pkg/repositories"
)

// DefectReportResult carries a report plus whether it came from the cache.
type DefectReportResult struct {
	Report    *models.LotDefectReport
	FromCache bool
}

// DefectReportService produces and caches LOT defect reports.
type DefectReportService interface {
	// GetReport returns the cached report for a LOT, or nil if none exists.
	// It never triggers generation.
	GetReport(ctx context.Context, lotID string) (*models.LotDefectReport, error)

	// GetOrCreate returns the cached report when one exists, otherwise
	// generates one from the LOT's aggregate data and persists it. The cache
	// is strict: a stored report is never regenerated automatically.
	// Generation failures carry an *llm.Error classification; the caller
	// decides whether to retry.
	GetOrCreate(ctx context.Context, lotID string, lot models.LotAggregate, language string) (*DefectReportResult, error)
}

type defectReportService struct {
	repo            repositories.ReportRepository
	generator       llm.TextGenerator
	defaultLanguage string
	logger          *zap.Logger
}

// NewDefectReportService creates a new DefectReportService. defaultLanguage
// is used for requests that name no language; empty falls back to Korean.
func NewDefectReportService(
	repo repositories.ReportRepository,
	generator llm.TextGenerator,
	defaultLanguage string,
	logger *zap.Logger,
) DefectReportService {
	if defaultLanguage == "" {
		defaultLanguage = models.ReportLanguageKorean
	}
	return &defectReportService{
		repo:            repo,
		generator:       generator,
		defaultLanguage: defaultLanguage,
		logger:          logger.Named("defect_report"),
	}
}

var _ DefectReportService = (*defectReportService)(nil)

func (s *defectReportService) GetReport(ctx context.Context, lotID string) (*models.LotDefectReport, error) {
	return s.repo.GetByLotID(ctx, lotID)
}

func (s *defectReportService) GetOrCreate(ctx context.Context, lotID string, lot models.LotAggregate, language string) (*DefectReportResult, error) {
	cached, err := s.repo.GetByLotID(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("report cache lookup: %w", err)
	}
	if cached != nil {
		s.logger.Debug("Report cache hit", zap.String("lot_id", lotID))
		return &DefectReportResult{Report: cached, FromCache: true}, nil
	}

	if language == "" {
		language = s.defaultLanguage
	}

	lot.LotID = lotID
	systemPrompt := prompts.DefectReportSystemPrompt(language)
	userPrompt := prompts.BuildDefectReportPrompt(lot, language)

	content, err := s.generator.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		s.logger.Error("Report generation failed",
			zap.String("lot_id", lotID),
			zap.String("error_type", string(llm.GetErrorType(err))),
			zap.Error(err))
		return nil, err
	}

	lotData, err := json.Marshal(lot)
	if err != nil {
		return nil, fmt.Errorf("marshal lot data snapshot: %w", err)
	}

	report := &models.LotDefectReport{
		LotID:         lotID,
		ReportContent: content,
		LotData:       lotData,
	}

	// Two concurrent first requests can both reach this point; the upsert
	// lets the last writer win, which is fine for advisory text.
	if err := s.repo.Upsert(ctx, report); err != nil {
		return nil, fmt.Errorf("persist defect report: %w", err)
	}

	s.logger.Info("Generated defect report",
		zap.String("lot_id", lotID),
		zap.String("language", language),
		zap.String("model", s.generator.GetModel()),
		zap.Int("content_len", len(content)))

	return &DefectReportResult{Report: report, FromCache: false}, nil
}
