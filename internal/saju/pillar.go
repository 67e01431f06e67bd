package saju

import "encoding/json"

// Stem is one of the ten Heavenly Stems, identified by ordinal 0 (갑/甲)
// through 9 (계/癸).
type Stem int

// Branch is one of the twelve Earthly Branches, identified by ordinal 0 (자/子)
// through 11 (해/亥). Branch ordinals double as the twelve traditional
// double-hour slots.
type Branch int

const (
	StemCount   = 10
	BranchCount = 12

	// SexagenaryCycle is the number of valid stem/branch pairs. Stems and
	// branches advance in lockstep, so only parity-matched pairs occur.
	SexagenaryCycle = 60
)

var stemKorean = [StemCount]string{"갑", "을", "병", "정", "무", "기", "경", "신", "임", "계"}
var stemHanja = [StemCount]string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}

var branchKorean = [BranchCount]string{"자", "축", "인", "묘", "진", "사", "오", "미", "신", "유", "술", "해"}
var branchHanja = [BranchCount]string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}

// Korean returns the Korean display label (the content store's key alphabet).
func (s Stem) Korean() string { return stemKorean[s] }

// Hanja returns the traditional Chinese character for the stem.
func (s Stem) Hanja() string { return stemHanja[s] }

func (s Stem) String() string { return s.Korean() }

// MarshalJSON renders the stem as its Korean label, matching the wire format
// the presentation layer and content store expect.
func (s Stem) MarshalJSON() ([]byte, error) { return json.Marshal(s.Korean()) }

// Korean returns the Korean display label (the content store's key alphabet).
func (b Branch) Korean() string { return branchKorean[b] }

// Hanja returns the traditional Chinese character for the branch.
func (b Branch) Hanja() string { return branchHanja[b] }

func (b Branch) String() string { return b.Korean() }

// MarshalJSON renders the branch as its Korean label.
func (b Branch) MarshalJSON() ([]byte, error) { return json.Marshal(b.Korean()) }

// Pillar is a stem/branch pair identifying a year, month, day, or hour.
type Pillar struct {
	Stem   Stem   `json:"stem"`
	Branch Branch `json:"branch"`
}

// Valid reports whether the pair is one of the 60 sexagenary combinations:
// stem and branch ordinals must share parity.
func (p Pillar) Valid() bool {
	return p.Stem >= 0 && p.Stem < StemCount &&
		p.Branch >= 0 && p.Branch < BranchCount &&
		int(p.Stem)%2 == int(p.Branch)%2
}

func (p Pillar) String() string { return p.Stem.Korean() + p.Branch.Korean() }

// sexagenary maps a cycle index 0..59 (0 = 갑자) to its pillar.
func sexagenary(n int) Pillar {
	return Pillar{Stem: Stem(n % StemCount), Branch: Branch(n % BranchCount)}
}

// FourPillars is the year/month/day/hour pillar quadruple for a birth moment.
// Hour is nil when the birth-time bucket was unknown; it is never guessed.
type FourPillars struct {
	Year  Pillar  `json:"year"`
	Month Pillar  `json:"month"`
	Day   Pillar  `json:"day"`
	Hour  *Pillar `json:"hour"`
}
