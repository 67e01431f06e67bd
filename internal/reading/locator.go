package reading

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-saju/internal/config"
	"github.com/tartampluch/go-saju/internal/saju"
)

// Locator resolves a free reading: category gate, pillar calculation, then a
// single keyed lookup against the content store.
type Locator struct {
	Registry Registry
	Store    ContentStore // may be nil when no store is configured
}

// Result combines the computed pillars with the optional content payload.
// Content is nil both on a store miss and on a store failure; the caller
// renders a graceful fallback, not an error.
type Result struct {
	Pillars    saju.FourPillars `json:"pillars"`
	YearStem   saju.Stem        `json:"yearStem"`
	YearBranch saju.Branch      `json:"yearBranch"`
	Content    *ReadingContent  `json:"content"`
	Category   Category         `json:"category"`
}

// LocateFreeReading validates the category, computes the four pillars, and
// queries the content store by the year pillar and gender.
//
// Error policy: unknown or inactive categories fail fast before any
// calculation; calculator errors propagate untouched; content-store failures
// are downgraded to an absent reading and never mask calculation errors.
// There are no retries; a failed or empty lookup is "no content".
func (l *Locator) LocateFreeReading(ctx context.Context, slug string, in saju.BirthInput, gender Gender) (*Result, error) {
	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompReading),
		slog.String(config.LogKeySlug, slug),
	)

	category, ok := l.Registry.Lookup(slug)
	if !ok || !category.IsActive {
		return nil, fmt.Errorf("%w: %q", ErrCategoryNotFound, slug)
	}

	pillars, err := saju.ComputePillars(in)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Pillars:    pillars,
		YearStem:   pillars.Year.Stem,
		YearBranch: pillars.Year.Branch,
		Category:   category,
	}

	if l.Store == nil {
		return result, nil
	}

	key := LookupKey{
		CategoryID: category.ID,
		YearStem:   pillars.Year.Stem,
		YearBranch: pillars.Year.Branch,
		Gender:     gender,
	}

	content, err := l.Store.FindReading(ctx, key)
	if err != nil {
		log.Warn(config.MsgStoreDowngrade,
			config.LogKeyError, err,
			config.LogKeyStem, key.YearStem.Korean(),
			config.LogKeyBranch, key.YearBranch.Korean(),
		)
		return result, nil
	}
	if content == nil {
		log.Debug(config.MsgReadingMiss,
			config.LogKeyStem, key.YearStem.Korean(),
			config.LogKeyBranch, key.YearBranch.Korean(),
			config.LogKeyGender, gender.String(),
		)
		return result, nil
	}

	log.Debug(config.MsgReadingFound,
		config.LogKeyStem, key.YearStem.Korean(),
		config.LogKeyBranch, key.YearBranch.Korean(),
	)
	result.Content = content
	return result, nil
}
