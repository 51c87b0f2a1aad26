// Package widget implements the reader side of the cross-process snapshot:
// it renders the last published aggregate into display strings and keeps
// the rendered view fresh via a periodic schedule plus the refresh signal.
package widget

import (
	"fmt"
	"time"

	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
	"github.com/deinadmin/school-grade-hub/internal/domain/snapshot"
	"github.com/deinadmin/school-grade-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RENDERED VIEW
// ══════════════════════════════════════════════════════════════════════════════

// View is the fully formatted widget state. Everything the display layer
// needs is a string here; no domain types leak past this point.
type View struct {
	// AverageText is the formatted overall average, or a placeholder when
	// no data exists ("-").
	AverageText string

	// AverageColorHex is the color band of the average. Neutral gray when
	// no average exists.
	AverageColorHex string

	// SubjectsText is the formatted subject count ("5 Fächer").
	SubjectsText string

	// GradesText is the formatted grade count ("23 Noten").
	GradesText string

	// PeriodText names the rendered period ("2025/2026 · HJ 1").
	PeriodText string

	// UpdatedText is the humanized age of the snapshot ("vor 5 Minuten").
	// Empty when the snapshot was never published.
	UpdatedText string

	// Empty is true when the snapshot was never published. The display
	// layer shows the setup hint instead of numbers.
	Empty bool
}

const neutralColorHex = "#9E9E9E"

// Renderer formats snapshots into views.
type Renderer struct {
	roundPointAverages bool
}

// NewRenderer creates a Renderer. roundPointAverages controls whether point
// averages display as whole points or with one decimal.
func NewRenderer(roundPointAverages bool) *Renderer {
	return &Renderer{roundPointAverages: roundPointAverages}
}

// Render builds the view for a snapshot at the given time.
func (r *Renderer) Render(w snapshot.Widget, now time.Time) View {
	view := View{
		SubjectsText: formatCount(w.SubjectCount, "Fach", "Fächer"),
		GradesText:   formatCount(w.GradeCount, "Note", "Noten"),
		PeriodText:   fmt.Sprintf("%s · %s", w.Year.DisplayName(), w.Semester.ShortName()),
		Empty:        !w.IsPopulated(),
	}

	if w.HasAverage() {
		view.AverageText = grading.FormatValue(*w.OverallAverage, w.Year.System, r.roundPointAverages)
		view.AverageColorHex = grading.ColorFor(*w.OverallAverage, w.Year.System)
	} else {
		view.AverageText = "-"
		view.AverageColorHex = neutralColorHex
	}

	if w.IsPopulated() {
		view.UpdatedText = timeutil.HumanizeAge(w.Age(now))
	}

	return view
}

func formatCount(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
