package section

import (
	"strconv"

	"github.com/tahsinm/registrar/data/db"
)

// NextNumber picks the lowest free section number, scanning up from 1 so
// numbers freed by deleted sections get reused. Lab sections carry an L
// prefix to keep their numbering separate from theory sections.
func NextNumber(existing map[string]struct{}, sectionType db.SectionType) string {
	prefix := ""
	if sectionType == db.SectionTypeLab {
		prefix = "L"
	}
	for counter := 1; ; counter++ {
		candidate := prefix + strconv.Itoa(counter)
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}
