package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-saju/internal/config"
	"github.com/tartampluch/go-saju/internal/saju"
)

// Entry is one contact's birth profile with computed pillars. Pillars is nil
// when the birth year is unknown (truncated --MM-DD dates) or outside the
// supported range; hour pillars are always absent since vCards carry no
// birth-time bucket.
type Entry struct {
	Name      string            `json:"name"`
	BirthDate string            `json:"birthDate"`
	YearKnown bool              `json:"yearKnown"`
	Pillars   *saju.FourPillars `json:"pillars"`
}

// LoadRoster decodes a vCard stream and computes four pillars for every
// contact with a usable BDAY. Malformed cards and dates are skipped, not
// fatal, to maximize data recovery.
func LoadRoster(ctx context.Context, r io.Reader) ([]Entry, error) {
	decoder := vcard.NewDecoder(r)
	stats := struct{ processed, computed int }{0, 0}
	var entries []Entry

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompRoster,
				config.LogKeyError, err)
			continue
		}

		stats.processed++
		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birthDate, yearKnown, err := parseDate(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompRoster,
				config.LogKeyValue, bday.Value)
			continue
		}

		// Name Strategy: FN (Formatted) > N (Structured) > Fallback
		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil {
			name = n.Value
		}

		entry := Entry{
			Name:      name,
			BirthDate: birthDate.Format(config.DateFormatFullDash),
			YearKnown: yearKnown,
		}

		if yearKnown {
			in, err := saju.NewBirthInput(birthDate.Year(), int(birthDate.Month()), birthDate.Day(), saju.HourUnknown)
			if err == nil {
				if pillars, err := saju.ComputePillars(in); err == nil {
					entry.Pillars = &pillars
					stats.computed++
				} else {
					slog.Debug(config.MsgSkippedDate,
						config.LogKeyComponent, config.CompRoster,
						config.LogKeyName, name,
						config.LogKeyError, err)
				}
			}
		}

		entries = append(entries, entry)
	}

	slog.Info(config.MsgRosterDone,
		config.LogKeyComponent, config.CompRoster,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.computed),
		),
	)
	return entries, nil
}

// parseDate handles the vCard date formats seen in the wild, including
// truncated year-unknown values.
func parseDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	// Truncated dates (year unknown). Safe leap year fallback so --02-29 parses.
	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			safeDate := time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return safeDate, false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
