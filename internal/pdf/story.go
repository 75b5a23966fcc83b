// Package pdf renders candidate stories for export.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/arbeit/talentportal/internal/domain"
)

// StoryDocument is everything printed on an exported story
type StoryDocument struct {
	CandidateName string
	CurrentRole   string
	JobTitle      string
	CompanyName   string
	Story         *domain.CandidateStory
	GeneratedAt   time.Time
}

const (
	marginMM   = 18.0
	lineHeight = 6.0
)

// RenderStory lays the story out on A4 and returns the PDF bytes
func RenderStory(doc StoryDocument) ([]byte, error) {
	story := doc.Story
	if story == nil {
		story = &domain.CandidateStory{}
	}
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now()
	}

	p := fpdf.New("P", "mm", "A4", "")
	p.SetCompression(false)
	p.SetMargins(marginMM, marginMM, marginMM)
	p.SetAutoPageBreak(true, marginMM)
	p.SetTitle("Candidate story: "+doc.CandidateName, true)
	p.SetCreator("Arbeit Talent Portal", true)
	p.SetCreationDate(doc.GeneratedAt)
	tr := p.UnicodeTranslatorFromDescriptor("")

	p.SetFooterFunc(func() {
		p.SetY(-12)
		p.SetFont("Helvetica", "I", 8)
		p.SetTextColor(128, 128, 128)
		p.CellFormat(0, 6, fmt.Sprintf("Generated %s  |  Page %d", doc.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"), p.PageNo()), "", 0, "C", false, 0, "")
	})
	p.AddPage()

	// header band
	p.SetFillColor(30, 64, 120)
	p.SetTextColor(255, 255, 255)
	p.SetFont("Helvetica", "B", 20)
	p.CellFormat(0, 14, tr(orDefault(doc.CandidateName, "Candidate")), "", 1, "L", true, 0, "")
	p.SetFont("Helvetica", "", 11)
	sub := doc.CurrentRole
	if doc.JobTitle != "" {
		sub = strings.TrimSpace(sub + "  |  Applying for " + doc.JobTitle)
		if doc.CompanyName != "" {
			sub += " at " + doc.CompanyName
		}
	}
	p.CellFormat(0, 8, tr(strings.TrimPrefix(sub, "|  ")), "", 1, "L", true, 0, "")
	p.SetTextColor(0, 0, 0)
	p.Ln(4)

	p.SetFont("Helvetica", "B", 14)
	p.MultiCell(0, 7, tr(orDefault(story.Headline, "Candidate profile")), "", "L", false)
	p.Ln(2)
	fitScore(p, story.FitScore)

	section(p, "Summary")
	p.SetFont("Helvetica", "", 11)
	p.MultiCell(0, lineHeight, tr(orDefault(story.Summary, "No summary available.")), "", "L", false)

	if len(story.Timeline) > 0 {
		section(p, "Career timeline")
		for _, e := range story.Timeline {
			p.SetFont("Helvetica", "B", 11)
			title := e.Title
			if e.Company != "" {
				title += ", " + e.Company
			}
			p.CellFormat(28, lineHeight, tr(e.Year), "", 0, "L", false, 0, "")
			p.MultiCell(0, lineHeight, tr(title), "", "L", false)
			if e.Achievement != "" {
				p.SetFont("Helvetica", "", 10)
				p.SetX(marginMM + 28)
				p.MultiCell(0, lineHeight, tr(e.Achievement), "", "L", false)
			}
			p.Ln(1)
		}
	}

	if len(story.Skills) > 0 {
		section(p, "Skills")
		p.SetFont("Helvetica", "", 11)
		p.MultiCell(0, lineHeight, tr(strings.Join(story.Skills, ", ")), "", "L", false)
	}

	if len(story.Highlights) > 0 {
		section(p, "Highlights")
		p.SetFont("Helvetica", "", 11)
		for _, h := range story.Highlights {
			p.MultiCell(0, lineHeight, tr("- "+h), "", "L", false)
		}
	}

	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("render story pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, fmt.Errorf("write story pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(p *fpdf.Fpdf, title string) {
	p.Ln(4)
	p.SetFont("Helvetica", "B", 12)
	p.SetTextColor(30, 64, 120)
	p.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	p.SetTextColor(0, 0, 0)
	p.Ln(1)
}

// fitScore draws the score as a labelled bar
func fitScore(p *fpdf.Fpdf, score int) {
	const width = 80.0
	p.SetFont("Helvetica", "B", 11)
	p.CellFormat(30, 7, fmt.Sprintf("Fit score: %d", score), "", 0, "L", false, 0, "")
	x, y := p.GetX()+4, p.GetY()+1.5
	p.SetDrawColor(200, 200, 200)
	p.SetFillColor(230, 230, 230)
	p.Rect(x, y, width, 4, "FD")
	switch {
	case score >= 75:
		p.SetFillColor(46, 160, 67)
	case score >= 50:
		p.SetFillColor(230, 160, 30)
	default:
		p.SetFillColor(200, 60, 60)
	}
	if score > 0 {
		p.Rect(x, y, width*float64(score)/100, 4, "F")
	}
	p.Ln(8)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
