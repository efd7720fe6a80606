package renderer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
)

// Template identifiers accepted by BuildHTML
const (
	Template1 = "template-1"
	Template2 = "template-2"
	Template3 = "template-3"

	DefaultTemplate = Template1
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// KnownTemplate reports whether id names an embedded template
func KnownTemplate(id string) bool {
	return templates.Lookup(id+".html") != nil
}

// BuildHTML renders doc with the template named templateID. An empty id
// selects DefaultTemplate.
func BuildHTML(doc Document, templateID string) (string, error) {
	if templateID == "" {
		templateID = DefaultTemplate
	}
	t := templates.Lookup(templateID + ".html")
	if t == nil {
		return "", apperrors.NewValidationError("templateId", fmt.Sprintf("unknown template %q", templateID))
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("render template %s: %w", templateID, err)
	}
	return buf.String(), nil
}

// Printer turns an HTML document into PDF bytes
type Printer interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
}

// Disabled is the Printer used when no browser is configured
type Disabled struct{}

// PrintPDF always fails with ErrRendererUnavailable
func (Disabled) PrintPDF(context.Context, string) ([]byte, error) {
	return nil, apperrors.ErrRendererUnavailable
}

// Renderer builds portfolio HTML and prints it with a Printer
type Renderer struct {
	printer         Printer
	baseURL         string
	defaultTemplate string
	timeout         time.Duration
	logger          zerolog.Logger
}

// New creates a Renderer. baseURL resolves uploaded photos inside the page.
func New(printer Printer, baseURL, defaultTemplate string, timeout time.Duration, logger zerolog.Logger) *Renderer {
	if printer == nil {
		printer = Disabled{}
	}
	if defaultTemplate == "" {
		defaultTemplate = DefaultTemplate
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Renderer{
		printer:         printer,
		baseURL:         baseURL,
		defaultTemplate: defaultTemplate,
		timeout:         timeout,
		logger:          logger,
	}
}

// RenderPortfolio produces the PDF for sub using templateID, or the
// configured default when templateID is empty.
func (r *Renderer) RenderPortfolio(ctx context.Context, sub *models.Submission, templateID string) ([]byte, error) {
	if templateID == "" {
		templateID = r.defaultTemplate
	}
	html, err := BuildHTML(NewDocument(sub, r.baseURL), templateID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	pdf, err := r.printer.PrintPDF(ctx, html)
	if err != nil {
		return nil, err
	}
	r.logger.Debug().
		Str("studentId", sub.StudentID).
		Str("template", templateID).
		Int("bytes", len(pdf)).
		Dur("elapsed", time.Since(start)).
		Msg("Portfolio PDF rendered")
	return pdf, nil
}
