package saju

import (
	"errors"
	"fmt"
	"time"

	"github.com/tartampluch/go-saju/internal/config"
)

// Error taxonomy of the calculator. Both are fatal to the request and
// surfaced to the caller; the calculator never catches its own errors.
var (
	ErrInvalidInput         = errors.New(config.ErrInvalidInput)
	ErrUnsupportedDateRange = errors.New(config.ErrUnsupportedRange)
)

// BirthInput is the immutable per-request input of the calculator: a
// structurally valid proleptic Gregorian date plus a resolved hour bucket.
// Construct it with NewBirthInput; it is never persisted.
type BirthInput struct {
	Year  int
	Month int
	Day   int
	Hour  HourBucket
}

// NewBirthInput validates calendar validity (day 31 in April is rejected, not
// normalized) and the hour bucket.
func NewBirthInput(year, month, day int, hour HourBucket) (BirthInput, error) {
	in := BirthInput{Year: year, Month: month, Day: day, Hour: hour}
	if err := in.validate(); err != nil {
		return BirthInput{}, err
	}
	return in, nil
}

func (in BirthInput) validate() error {
	if in.Month < 1 || in.Month > 12 || in.Day < 1 || in.Day > 31 {
		return fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidInput, in.Year, in.Month, in.Day)
	}
	// time.Date normalizes overflow (Apr 31 -> May 1); any shift means the
	// caller supplied a day that does not exist in that month.
	t := time.Date(in.Year, time.Month(in.Month), in.Day, 0, 0, 0, 0, time.UTC)
	if t.Year() != in.Year || int(t.Month()) != in.Month || t.Day() != in.Day {
		return fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidInput, in.Year, in.Month, in.Day)
	}
	if in.Hour != HourUnknown && !in.Hour.Known() {
		return fmt.Errorf("%w: hour bucket %d", ErrInvalidInput, int(in.Hour))
	}
	return nil
}

// ParseBirthDate parses the YYYY-MM-DD input surface format.
func ParseBirthDate(value string) (year, month, day int, err error) {
	t, perr := time.Parse(config.DateFormatFullDash, value)
	if perr != nil {
		return 0, 0, 0, fmt.Errorf("%w: %s %q", ErrInvalidInput, config.ParamBirthDate, value)
	}
	return t.Year(), int(t.Month()), t.Day(), nil
}

// dayPillarEpochOffset fixes the continuous day count to the sexagenary day
// cycle: 1970-01-01 is day 신사 (index 17). Anchored on 2000-01-01 = 무오 and
// cross-checked against 1949-10-01 = 갑자 and 1912-02-18 = 갑자.
const dayPillarEpochOffset = 17

const secondsPerDay = 86400

// dayNumber counts days since 1970-01-01. Midnight UTC timestamps are exact
// multiples of a day, so integer division is safe for pre-1970 dates too.
func dayNumber(year, month, day int) int {
	return int(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay)
}

func mod(n, m int) int {
	return ((n % m) + m) % m
}

// monthOneBranch is 인: the solar month opened by 입춘.
const monthOneBranch = 2

// ComputePillars converts a birth input into the four sexagenary pillars.
// Pure and stateless: same input always yields the same pillars, safe for
// unlimited concurrent invocation.
//
// Rollover conventions:
//   - day pillar advances one step per solar day (continuous count mod 60);
//   - year pillar advances at 입춘 (Start of Spring), not January 1;
//   - month pillar advances at each node term, with stems from the five-year
//     table keyed by the enclosing sexagenary year's stem;
//   - hour pillar exists only for a known bucket, with stems from the five-day
//     table keyed by the day stem.
func ComputePillars(in BirthInput) (FourPillars, error) {
	if err := in.validate(); err != nil {
		return FourPillars{}, err
	}
	if in.Year < config.MinSupportedYear || in.Year > config.MaxSupportedYear {
		return FourPillars{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrUnsupportedDateRange, in.Year, in.Month, in.Day)
	}

	day := sexagenary(mod(dayNumber(in.Year, in.Month, in.Day)+dayPillarEpochOffset, SexagenaryCycle))

	// Dates between January 1 and 입춘 belong to the previous sexagenary year.
	effYear := in.Year
	if in.Month < 2 || (in.Month == 2 && in.Day < startOfSpring(in.Year)) {
		effYear--
	}
	year := sexagenary(mod(effYear-4, SexagenaryCycle))

	monthIdx := monthIndex(in.Year, in.Month, in.Day)
	month := Pillar{
		Stem:   Stem(mod(int(year.Stem)%5*2+monthOneBranch+monthIdx, StemCount)),
		Branch: Branch(mod(monthOneBranch+monthIdx, BranchCount)),
	}

	pillars := FourPillars{Year: year, Month: month, Day: day}

	if in.Hour.Known() {
		branch := in.Hour.Branch()
		hour := Pillar{
			Stem:   Stem(mod(int(day.Stem)%5*2+int(branch), StemCount)),
			Branch: branch,
		}
		pillars.Hour = &hour
	}
	return pillars, nil
}

// monthIndex counts solar months since 입춘 (0 = the 인 month). A date before
// its calendar month's node term still belongs to the previous solar month.
func monthIndex(year, month, day int) int {
	if day >= termDay(year, month) {
		return mod(month-2, BranchCount)
	}
	return mod(month-3, BranchCount)
}
