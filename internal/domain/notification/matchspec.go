package notification

import "time"

// MatchKind selects how the ledger decides a candidate was already sent.
type MatchKind int

const (
	// MatchNone relies entirely on upstream eligibility filtering.
	MatchNone MatchKind = iota
	// MatchTitleExact matches an exact previously-sent title.
	MatchTitleExact
	// MatchTitleContains matches a title substring (fuzzy pattern).
	MatchTitleContains
	// MatchSentBetween matches any row of the type sent inside [From, To).
	MatchSentBetween
)

// MatchSpec is the type-dependent key the dedup check runs against.
type MatchSpec struct {
	Kind         MatchKind
	TitlePattern string
	From         time.Time
	To           time.Time
}

func MatchNothing() MatchSpec {
	return MatchSpec{Kind: MatchNone}
}

func MatchExactTitle(title string) MatchSpec {
	return MatchSpec{Kind: MatchTitleExact, TitlePattern: title}
}

func MatchTitleSubstring(pattern string) MatchSpec {
	return MatchSpec{Kind: MatchTitleContains, TitlePattern: pattern}
}

func MatchSentWithin(from, to time.Time) MatchSpec {
	return MatchSpec{Kind: MatchSentBetween, From: from, To: to}
}
