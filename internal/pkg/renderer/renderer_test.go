package renderer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
)

func sampleSubmission() *models.Submission {
	return &models.Submission{
		StudentID: "s1",
		Status:    models.StatusReady,
		Data: map[models.SectionID]json.RawMessage{
			models.SectionProfile:    json.RawMessage(`{"firstName":"Ada","lastName":"Lovelace","designation":"Analyst","email":"ada@example.edu"}`),
			models.SectionEducation:  json.RawMessage(`[{"institute":"Cambridge","degree":"BSc"}]`),
			models.SectionExperience: json.RawMessage(`{"items":[{"position":"Engineer","company":"Babbage & Co"}]}`),
			models.SectionProjects:   json.RawMessage(`{"projectTitle":"Engine","projectType":"Research"}`),
			models.SectionSkills:     json.RawMessage(`{"technicalSkills":"math, logic","programmingLanguages":"Go,,"}`),
		},
		Files: map[models.SectionID]models.FileMap{
			models.SectionProfile: {"photo": "/uploads/sections/s1/me.png"},
		},
	}
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument(sampleSubmission(), "http://localhost:8080/")

	assert.Equal(t, "Ada Lovelace", doc.Name)
	assert.Equal(t, "Analyst", doc.Role)
	assert.Equal(t, "ada@example.edu", doc.Email)
	assert.Equal(t, "http://localhost:8080/uploads/sections/s1/me.png", doc.PhotoURL)
	assert.Equal(t, []Entry{{Title: "Cambridge", Subtitle: "BSc"}}, doc.Education)
	assert.Equal(t, []Entry{{Title: "Engineer", Subtitle: "Babbage & Co"}}, doc.Experience)
	assert.Equal(t, []Entry{{Title: "Engine", Subtitle: "Research"}}, doc.Projects)
	assert.Equal(t, []string{"math", "logic", "Go"}, doc.Skills)
}

func TestNewDocument_ToleratesOddPayloads(t *testing.T) {
	sub := &models.Submission{
		StudentID: "s2",
		Data: map[models.SectionID]json.RawMessage{
			models.SectionProfile:   json.RawMessage(`"just a string"`),
			models.SectionEducation: json.RawMessage(`42`),
		},
	}

	doc := NewDocument(sub, "")
	assert.Equal(t, "s2", doc.Name, "falls back to the student id")
	assert.Empty(t, doc.Education)
	assert.Empty(t, doc.PhotoURL)
}

func TestBuildHTML(t *testing.T) {
	doc := NewDocument(sampleSubmission(), "")

	for _, id := range []string{Template1, Template2, Template3} {
		t.Run(id, func(t *testing.T) {
			require.True(t, KnownTemplate(id))
			html, err := BuildHTML(doc, id)
			require.NoError(t, err)
			assert.Contains(t, html, "Ada Lovelace")
			assert.Contains(t, html, "Babbage &amp; Co")
		})
	}
}

func TestBuildHTML_EscapesContent(t *testing.T) {
	doc := Document{Name: `<script>alert(1)</script>`}

	html, err := BuildHTML(doc, "")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestBuildHTML_UnknownTemplate(t *testing.T) {
	_, err := BuildHTML(Document{}, "template-9")

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "templateId", verr.Field)
	assert.False(t, KnownTemplate("template-9"))
}

type capturePrinter struct {
	html     string
	deadline bool
	err      error
}

func (p *capturePrinter) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	p.html = html
	_, p.deadline = ctx.Deadline()
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF"), nil
}

func TestRenderer_RenderPortfolio(t *testing.T) {
	printer := &capturePrinter{}
	r := New(printer, "", Template2, time.Second, zerolog.Nop())

	pdf, err := r.RenderPortfolio(context.Background(), sampleSubmission(), "")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf))
	assert.True(t, printer.deadline, "printing runs under the configured timeout")
	assert.True(t, strings.Contains(printer.html, "Ada Lovelace"))
}

func TestRenderer_Disabled(t *testing.T) {
	r := New(nil, "", "", 0, zerolog.Nop())

	_, err := r.RenderPortfolio(context.Background(), sampleSubmission(), Template1)
	assert.ErrorIs(t, err, apperrors.ErrRendererUnavailable)
}

func TestRenderer_PrinterError(t *testing.T) {
	boom := errors.New("browser exited")
	r := New(&capturePrinter{err: boom}, "", "", time.Second, zerolog.Nop())

	_, err := r.RenderPortfolio(context.Background(), sampleSubmission(), "")
	assert.ErrorIs(t, err, boom)
}
