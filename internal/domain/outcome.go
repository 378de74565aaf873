package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus is the per-account state within one collection cycle.
type AccountStatus string

const (
	StatusPending   AccountStatus = "pending"
	StatusFetching  AccountStatus = "fetching"
	StatusSucceeded AccountStatus = "succeeded"
	StatusFailed    AccountStatus = "failed"
)

// AccountOutcome is the terminal result of one account in one cycle. Failed
// outcomes carry the unrecovered error; succeeded ones carry what was written.
type AccountOutcome struct {
	AccountID      string
	Exchange       string
	Status         AccountStatus
	Err            error
	Assets         int
	Excluded       []ExcludedAsset
	TotalValueUSDT decimal.Decimal
}

// CycleSummary aggregates the ordered per-account outcomes of one cycle.
type CycleSummary struct {
	StartedAt time.Time
	Duration  time.Duration
	Outcomes  []AccountOutcome
}

// Succeeded counts accounts that committed a snapshot this cycle.
func (s CycleSummary) Succeeded() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == StatusSucceeded {
			n++
		}
	}
	return n
}

// Failed counts accounts with an unrecovered failure this cycle.
func (s CycleSummary) Failed() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == StatusFailed {
			n++
		}
	}
	return n
}

// ExcludedAssets counts assets left unpriced across all accounts.
func (s CycleSummary) ExcludedAssets() int {
	n := 0
	for _, o := range s.Outcomes {
		n += len(o.Excluded)
	}
	return n
}
