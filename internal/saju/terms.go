package saju

import (
	"fmt"
	"math"

	"github.com/tartampluch/go-saju/internal/config"
)

// The twelve node terms (節氣 of the 節 kind) trigger month-pillar rollover,
// and the February one (입춘, Start of Spring) additionally triggers
// year-pillar rollover. Indexed 0..11 by the calendar month they fall in
// (index 0 = 소한 in January).

var termKorean = [12]string{
	"소한", "입춘", "경칩", "청명", "입하", "망종",
	"소서", "입추", "백로", "한로", "입동", "대설",
}

var termHanja = [12]string{
	"小寒", "立春", "驚蟄", "清明", "立夏", "芒種",
	"小暑", "立秋", "白露", "寒露", "立冬", "大雪",
}

// Century coefficients of the published day-of-month approximation:
//
//	day = floor(Y*0.2422 + C) - L
//
// where Y is the year offset within the century, C the per-term coefficient,
// and L the accumulated leap days: (Y-1)/4 for January/February terms (their
// leap day has not occurred yet), Y/4 otherwise.
var (
	termC20 = [12]float64{6.11, 4.6295, 6.3826, 5.59, 6.318, 6.5, 7.928, 8.35, 8.44, 9.098, 8.218, 7.9}
	termC21 = [12]float64{5.4055, 3.87, 5.63, 4.81, 5.52, 5.678, 7.108, 7.5, 7.646, 8.318, 7.438, 7.18}
)

// termCorrections lists the years where the approximation is off by one day.
var termCorrections = []struct{ year, month, delta int }{
	{1902, 6, 1},
	{1911, 5, 1},
	{1917, 10, 1},
	{1925, 7, 1},
	{1927, 9, 1},
	{1954, 12, 1},
	{1982, 1, 1},
	{2002, 8, 1},
	{2016, 7, 1},
	{2019, 1, -1},
	{2089, 11, 1},
}

// termTable[year-MinSupportedYear][month-1] holds the day-of-month of each
// node term. Built once at initialization; read-only afterwards.
var termTable [config.MaxSupportedYear - config.MinSupportedYear + 1][12]int

func init() {
	for year := config.MinSupportedYear; year <= config.MaxSupportedYear; year++ {
		for month := 1; month <= 12; month++ {
			termTable[year-config.MinSupportedYear][month-1] = approxTermDay(year, month)
		}
	}
	for _, c := range termCorrections {
		termTable[c.year-config.MinSupportedYear][c.month-1] += c.delta
	}
}

func approxTermDay(year, month int) int {
	var y float64
	var c float64
	if year <= 2000 {
		y = float64(year - 1900)
		c = termC20[month-1]
	} else {
		y = float64(year - 2000)
		c = termC21[month-1]
	}

	var leaps int
	if month <= 2 {
		leaps = (int(y) - 1) / 4
	} else {
		leaps = int(y) / 4
	}
	return int(math.Floor(y*0.2422+c)) - leaps
}

// termDay returns the day-of-month of the node term falling in the given
// calendar month. The year must be within the supported range.
func termDay(year, month int) int {
	return termTable[year-config.MinSupportedYear][month-1]
}

// startOfSpring returns the February day-of-month of 입춘 for the given year.
func startOfSpring(year int) int {
	return termDay(year, 2)
}

// TermDate is one node-term boundary, exported for the calendar feed.
type TermDate struct {
	Index  int    // 0..11, calendar-month order starting with 소한
	Korean string
	Hanja  string
	Month  int // 1..12
	Day    int
}

// NodeTerms returns the twelve node-term dates of a Gregorian year.
func NodeTerms(year int) ([]TermDate, error) {
	if year < config.MinSupportedYear || year > config.MaxSupportedYear {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDateRange, year)
	}
	terms := make([]TermDate, 0, 12)
	for month := 1; month <= 12; month++ {
		terms = append(terms, TermDate{
			Index:  month - 1,
			Korean: termKorean[month-1],
			Hanja:  termHanja[month-1],
			Month:  month,
			Day:    termDay(year, month),
		})
	}
	return terms, nil
}

// StartOfSpring returns the 입춘 date (month, day) for the given year.
func StartOfSpring(year int) (int, int, error) {
	if year < config.MinSupportedYear || year > config.MaxSupportedYear {
		return 0, 0, fmt.Errorf("%w: %d", ErrUnsupportedDateRange, year)
	}
	return 2, startOfSpring(year), nil
}
