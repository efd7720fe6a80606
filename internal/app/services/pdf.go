package services

import (
	"context"

	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
	"github.com/yigit/portfoliohub/internal/pkg/filestorage"
)

// portfoliosDir is the storage sub path for generated and uploaded PDFs
const portfoliosDir = "portfolios"

// pdfProducer renders a submission and stores the result
type pdfProducer struct {
	renderer PortfolioRenderer
	store    filestorage.FileStorage
}

func (p pdfProducer) enabled() bool {
	return p.renderer != nil && p.store != nil
}

// produce returns the public path of the stored PDF
func (p pdfProducer) produce(ctx context.Context, sub *models.Submission, templateID string) (string, error) {
	if !p.enabled() {
		return "", apperrors.ErrRendererUnavailable
	}
	pdf, err := p.renderer.RenderPortfolio(ctx, sub, templateID)
	if err != nil {
		return "", err
	}
	url, err := p.store.SaveBytes(pdf, portfoliosDir, ".pdf")
	if err != nil {
		return "", apperrors.NewStorageError("store portfolio pdf", err)
	}
	return url, nil
}
