package saju

import (
	"fmt"

	"github.com/tartampluch/go-saju/internal/config"
)

// HourBucket is one of the twelve traditional double-hour slots, or
// HourUnknown. Bucket ordinals equal the hour-branch ordinals (0 = 자시).
//
// The deployment displays slot boundaries shifted +30 minutes (longitude
// correction for KST), e.g. 자시 as 23:30–01:30. Callers resolve a clock time
// to a bucket themselves; the calculator only consumes the resolved bucket.
type HourBucket int

// HourUnknown is the 13th sentinel value: the caller did not know the birth
// time, and the hour pillar must be absent.
const HourUnknown HourBucket = BranchCount

var hourTokens = [BranchCount]string{
	"자시", "축시", "인시", "묘시", "진시", "사시",
	"오시", "미시", "신시", "유시", "술시", "해시",
}

// HourUnknownToken is the input token for an unknown birth time.
const HourUnknownToken = "모름"

// ParseHourBucket resolves one of the 13 named tokens.
func ParseHourBucket(token string) (HourBucket, error) {
	if token == HourUnknownToken {
		return HourUnknown, nil
	}
	for i, t := range hourTokens {
		if t == token {
			return HourBucket(i), nil
		}
	}
	return HourUnknown, fmt.Errorf("%w: %s %q", ErrInvalidInput, config.ParamBirthTime, token)
}

// Known reports whether the bucket identifies an actual double-hour slot.
func (b HourBucket) Known() bool { return b >= 0 && b < BranchCount }

// Branch returns the hour-branch ordinal for a known bucket.
func (b HourBucket) Branch() Branch { return Branch(b) }

// RepresentativeHour is the single hour-of-day (0,2,...,22) used for pillar
// derivation. The original deployment always rounds to the slot's nominal
// start, never to a finer instant.
func (b HourBucket) RepresentativeHour() int { return int(b) * 2 }

func (b HourBucket) String() string {
	if !b.Known() {
		return HourUnknownToken
	}
	return hourTokens[b]
}
