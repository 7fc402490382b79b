package render

import (
	"hash/fnv"
	"math"
	"strconv"
	"strings"
)

// Palette holds the department badge colours
var Palette = []string{"blue", "green", "purple", "orange", "pink", "teal", "indigo", "yellow"}

// BadgeColor maps a department name to a palette entry. The same name always
// gets the same colour.
func BadgeColor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return Palette[h.Sum32()%uint32(len(Palette))]
}

// Rupees formats amount with Indian digit grouping: ₹12,34,567.50
func Rupees(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	paise := int64(math.Round(amount * 100))
	whole := strconv.FormatInt(paise/100, 10)
	frac := paise % 100

	var groups []string
	if len(whole) > 3 {
		head, tail := whole[:len(whole)-3], whole[len(whole)-3:]
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		groups = append([]string{head}, groups...)
		groups = append(groups, tail)
	} else {
		groups = []string{whole}
	}
	return sign + "₹" + strings.Join(groups, ",") + "." + twoDigits(frac)
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// OrNA returns "N/A" for an empty string
func OrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// Bar draws a progress bar of width cells for pct in [0, 100]
func Bar(pct float64, width int) string {
	pct = max(0, min(pct, 100))
	filled := int(math.Round(pct / 100 * float64(width)))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
