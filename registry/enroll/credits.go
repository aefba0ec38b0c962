package enroll

import (
	"context"

	"github.com/tahsinm/registrar/data/db"
)

// StudentCredits totals a student's registered credits for a term. A
// theory section with its paired lab counts theory + lab credits once per
// course, never once per section row. A lab row whose theory row is
// missing (which the intended flow never produces) still counts its lab
// credits so the total cannot undercount.
func (e *Engine) StudentCredits(
	ctx context.Context,
	studentID int64,
	semester string,
	year int32,
) (float64, error) {
	rows, err := e.store.RegisteredSections(ctx, studentID, semester, year)
	if err != nil {
		return 0, err
	}

	type courseLoad struct {
		hasTheory     bool
		hasLab        bool
		theoryCredits float64
		labCredits    float64
	}
	// keyed by course so iteration order cannot double count a pairing
	byCourse := map[int64]*courseLoad{}
	for _, row := range rows {
		load, ok := byCourse[row.CourseID]
		if !ok {
			load = &courseLoad{}
			byCourse[row.CourseID] = load
		}
		load.theoryCredits = row.TheoryCredits
		load.labCredits = row.LabCredits
		switch row.SectionType {
		case db.SectionTypeTheory:
			load.hasTheory = true
		case db.SectionTypeLab:
			load.hasLab = true
		}
	}

	total := 0.0
	for _, load := range byCourse {
		switch {
		case load.hasTheory && load.hasLab:
			total += load.theoryCredits + load.labCredits
		case load.hasTheory:
			total += load.theoryCredits
		case load.hasLab:
			total += load.labCredits
		}
	}
	return total, nil
}
