package schedule

// day codes are stored exactly as the admin typed them ("MWF", "TTH", "SU")
// so the set form only ever lives for the duration of a conflict check

// WeekdaySet is a set of day tokens from the alphabet M T W TH F S SU
type WeekdaySet map[string]struct{}

// ParseDays scans the code left to right taking the two character tokens
// TH and SU before the single character ones, otherwise "TTH" would read
// as Tuesday twice plus a stray H. Unknown characters become their own
// token rather than failing since day codes come from a fixed admin
// vocabulary and a bad one should just never match anything real.
func ParseDays(code string) WeekdaySet {
	days := WeekdaySet{}
	for i := 0; i < len(code); {
		if i+1 < len(code) {
			two := code[i : i+2]
			if two == "TH" || two == "SU" {
				days[two] = struct{}{}
				i += 2
				continue
			}
		}
		days[code[i:i+1]] = struct{}{}
		i++
	}
	return days
}

// Overlaps reports whether the two sets share at least one day
func (s WeekdaySet) Overlaps(other WeekdaySet) bool {
	for day := range s {
		if _, ok := other[day]; ok {
			return true
		}
	}
	return false
}

func (s WeekdaySet) Has(day string) bool {
	_, ok := s[day]
	return ok
}
