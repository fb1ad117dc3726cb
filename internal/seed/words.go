package seed

import "strings"

var (
	units = []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
		"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen", "eighteen", "nineteen"}
	tens = []string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}
)

// NumberToWords spells n in English: 21 is "twenty-one", 1305 is
// "one thousand three hundred five".
func NumberToWords(n int) string {
	if n < 0 {
		return "minus " + NumberToWords(-n)
	}
	if n < 20 {
		return units[n]
	}
	var parts []string
	for _, scale := range []struct {
		value int
		name  string
	}{{1_000_000_000, "billion"}, {1_000_000, "million"}, {1000, "thousand"}, {100, "hundred"}} {
		if n >= scale.value {
			parts = append(parts, NumberToWords(n/scale.value)+" "+scale.name)
			n %= scale.value
		}
	}
	switch {
	case n == 0:
	case n < 20:
		parts = append(parts, units[n])
	case n%10 == 0:
		parts = append(parts, tens[n/10])
	default:
		parts = append(parts, tens[n/10]+"-"+units[n%10])
	}
	return strings.Join(parts, " ")
}
