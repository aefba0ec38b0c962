package section

import (
	"testing"

	"github.com/tahsinm/registrar/data/db"
)

func TestNextNumber(t *testing.T) {
	cases := []struct {
		name        string
		existing    []string
		sectionType db.SectionType
		want        string
	}{
		{"first theory section", nil, db.SectionTypeTheory, "1"},
		{"first lab ignores theory numbers", []string{"1", "2"}, db.SectionTypeLab, "L1"},
		{"fills the gap", []string{"1", "3"}, db.SectionTypeTheory, "2"},
		{"appends when dense", []string{"1", "2", "3"}, db.SectionTypeTheory, "4"},
		{"lab gap", []string{"L1", "L3"}, db.SectionTypeLab, "L2"},
		{"reuses deleted low number", []string{"2", "3"}, db.SectionTypeTheory, "1"},
	}
	for _, c := range cases {
		existing := map[string]struct{}{}
		for _, n := range c.existing {
			existing[n] = struct{}{}
		}
		if got := NextNumber(existing, c.sectionType); got != c.want {
			t.Errorf("%s: NextNumber(%v, %s) = %q want %q",
				c.name, c.existing, c.sectionType, got, c.want)
		}
	}
}
