package chain

import "strconv"

// Ordinalize formats a 1-based position as 1st, 2nd, 3rd, 4th, ... for use in
// error messages about steps and configuration calls.
func Ordinalize(n int) string {
	suffix := "th"
	if m := n % 100; m < 11 || m > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
