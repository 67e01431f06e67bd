package server

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-saju/internal/config"
	"github.com/tartampluch/go-saju/internal/saju"
)

// BuildTermsFeed renders the node-term boundary dates as an iCalendar feed
// covering the previous, current, and next year, so calendar clients keep
// their window populated between refreshes.
func BuildTermsFeed(now time.Time, tr *Translator, lang string) ([]byte, error) {
	cal := ical.NewCalendar()

	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: suggest a refresh interval.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	currentYear := now.Year()
	targetYears := []int{currentYear - 1, currentYear, currentYear + 1}

	for _, y := range targetYears {
		terms, err := saju.NodeTerms(y)
		if err != nil {
			// Window edges outside the boundary table simply stay empty.
			continue
		}
		for _, td := range terms {
			event := ical.NewEvent()

			uidBase := fmt.Sprintf(config.FormatTermUIDBase, td.Index+1)
			event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))

			name := td.Korean
			if tr != nil {
				name = tr.Msg(lang, fmt.Sprintf(config.TKeyTermFormat, td.Index+1))
			}
			event.Props.SetText(config.PropSummary, fmt.Sprintf(config.FormatTermSummary, name, td.Hanja))

			dtStartProp := ical.NewProp(config.PropDTStart)
			dtStartProp.SetDate(time.Date(y, time.Month(td.Month), td.Day, 0, 0, 0, 0, time.UTC))
			event.Props.Set(dtStartProp)
			event.Props.Set(dtStampProp)

			cal.Children = append(cal.Children, event.Component)
		}
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}
