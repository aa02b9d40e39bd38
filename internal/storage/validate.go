package storage

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	sourceURLPattern = regexp.MustCompile(`^https?://(www\.)?groww\.in/mutual-funds/[\w-]+$`)
	amountUnits      = regexp.MustCompile(`(?i)(Crore|Cr|Lakh|Billion|Million)`)
)

// ValidSourceURL reports whether url is a Groww mutual fund page.
func ValidSourceURL(url string) bool {
	return sourceURLPattern.MatchString(url)
}

// ValidFundName reports whether name looks like a real scheme name.
func ValidFundName(name string) bool {
	return len(name) >= 5 && len(name) <= 200
}

// ValidAmount reports whether s is a money amount. Currency symbols, digit
// grouping and unit suffixes are allowed: "₹5,000", "1,234.56 Cr".
func ValidAmount(s string) bool {
	clean := strings.NewReplacer("₹", "", ",", "", " ", "").Replace(s)
	clean = amountUnits.ReplaceAllString(clean, "")
	if clean == "" {
		return false
	}
	_, err := strconv.ParseFloat(clean, 64)
	return err == nil
}

// ValidPercentage reports whether s is a percentage in the plausible range
// for fund figures, the % sign optional.
func ValidPercentage(s string) bool {
	clean := strings.NewReplacer("%", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return false
	}
	return v >= -100 && v <= 1000
}

// ValidRatio reports whether s is a plausible P/E or P/B ratio.
func ValidRatio(s string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return false
	}
	return v >= 0 && v <= 1000
}
