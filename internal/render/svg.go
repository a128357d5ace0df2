// Package render lays out stats and grade into a fixed-size SVG card.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/naka-gawa/github-statcard/internal/domain"
)

const (
	cardWidth  = 400
	cardHeight = 200

	cellWidth   = 125
	rowHeight   = 50
	cellsPerRow = 3
)

//go:embed templates/card.svg.tmpl
var cardTemplate string

var cardTmpl = template.Must(template.New("card").Parse(cardTemplate))

// countPrinter applies the one formatting rule for metric values:
// decimal digits with thousands separators.
var countPrinter = message.NewPrinter(language.English)

// gradeColors maps each grade label to its ring color.
var gradeColors = map[string]string{
	domain.LabelS:     "#FFD700",
	domain.LabelAPlus: "#00FF00",
	domain.LabelA:     "#7CFC00",
	domain.LabelBPlus: "#87CEEB",
	domain.LabelB:     "#ADD8E6",
	domain.LabelCPlus: "#FFA500",
	domain.LabelC:     "#FF8C00",
	domain.LabelD:     "#FF6347",
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

type metricCell struct {
	Label string
	Value string
	X     int
	Y     int
}

type cardViewModel struct {
	Width         int
	Height        int
	Name          string
	Login         string
	AvatarDataURI string
	GradeLabel    string
	GradeColor    string
	Metrics       []metricCell
}

// RenderCard produces the SVG card for the given stats and grade. It is a
// pure function: identical inputs yield byte-identical output, which is
// what the output sink relies on to detect "no meaningful change".
func RenderCard(stats domain.Stats, grade domain.Grade) ([]byte, error) {
	if stats.AvatarDataURI != "" && !strings.HasPrefix(stats.AvatarDataURI, "data:") {
		return nil, &domain.RenderError{Err: fmt.Errorf("avatar reference %.16q is not a data URI", stats.AvatarDataURI)}
	}

	color, ok := gradeColors[grade.Label]
	if !ok {
		color = "#FFFFFF"
	}

	// Fixed metric order: repos, followers, stars, PRs, commits, issues.
	values := []struct {
		label string
		count int
	}{
		{"Repositories", stats.Repos},
		{"Followers", stats.Followers},
		{"Stars", stats.Stars},
		{"PRs", stats.PullRequests},
		{"Commits", stats.Commits},
		{"Issues", stats.Issues},
	}
	cells := make([]metricCell, 0, len(values))
	for i, v := range values {
		cells = append(cells, metricCell{
			Label: v.label,
			Value: formatCount(v.count),
			X:     (i % cellsPerRow) * cellWidth,
			Y:     (i / cellsPerRow) * rowHeight,
		})
	}

	vm := cardViewModel{
		Width:         cardWidth,
		Height:        cardHeight,
		Name:          textEscaper.Replace(stats.Name),
		Login:         textEscaper.Replace(stats.Login),
		AvatarDataURI: stats.AvatarDataURI,
		GradeLabel:    grade.Label,
		GradeColor:    color,
		Metrics:       cells,
	}

	var buf bytes.Buffer
	if err := cardTmpl.Execute(&buf, vm); err != nil {
		return nil, &domain.RenderError{Err: err}
	}
	return buf.Bytes(), nil
}

func formatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}
