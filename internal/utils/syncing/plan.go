// Package syncing computes balance-mirror propagation plans. Every wallet of
// a user is a mirror of a single reference value expressed in its own
// currency; whenever one balance is written, the sibling wallets and the
// owning account's balance field are rewritten to agree with it.
//
// The package is pure: it turns the current wallet set, the rate table and
// one balance write into the set of absolute values to persist. Applying the
// plan atomically is the repository's job, which keeps the propagation inside
// the same database transaction as the triggering write.
package syncing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/traderiser/wallet-backend/internal/apperrors"
	"github.com/traderiser/wallet-backend/internal/core/domain"
)

// RateSource provides live conversion rates between currency codes.
type RateSource interface {
	// LiveRate returns the multiplier converting one unit of base into
	// target. Implementations must return apperrors.ErrRateNotFound when no
	// rate is configured in either direction.
	LiveRate(base, target string) (decimal.Decimal, error)
}

// Pair is an ordered currency pair.
type Pair struct {
	Base   string
	Target string
}

// StaticRates is a snapshot of the rate table usable as a RateSource inside
// a database transaction without further queries. It answers inverse pairs
// by inverting the configured rate.
type StaticRates map[Pair]decimal.Decimal

// LiveRate implements RateSource.
func (r StaticRates) LiveRate(base, target string) (decimal.Decimal, error) {
	if base == target {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := r[Pair{Base: base, Target: target}]; ok {
		return rate, nil
	}
	if inverse, ok := r[Pair{Base: target, Target: base}]; ok && !inverse.IsZero() {
		return decimal.NewFromInt(1).Div(inverse), nil
	}
	return decimal.Decimal{}, fmt.Errorf("%w: %s to %s", apperrors.ErrRateNotFound, base, target)
}

// Plan is the outcome of one propagation: the absolute balances to persist.
// WalletBalances lists only wallets whose stored value actually differs.
// AccountBalances is set whenever the propagation touches an account's
// canonical mirror wallet, so the account field is rewritten even when only
// it had diverged.
type Plan struct {
	WalletBalances  map[string]decimal.Decimal // walletID -> new balance
	AccountBalances map[string]decimal.Decimal // accountID -> new account balance
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.WalletBalances) == 0 && len(p.AccountBalances) == 0
}

// BuildPlan propagates a balance write to its sibling mirrors. refWalletID is
// the wallet that was written, refValue/refCurrency the value it now holds.
// wallets is the user's full wallet set across all accounts, including the
// reference wallet. visited is the propagation guard: entities already present
// are not written again. Callers normally pass a fresh map; the
// parameter is explicit so the guard is testable.
//
// A missing rate aborts the whole propagation with apperrors.ErrRateNotFound;
// the caller must then abort the triggering write too.
func BuildPlan(refWalletID string, refValue decimal.Decimal, refCurrency string, wallets []domain.Wallet, rates RateSource, visited map[string]struct{}) (Plan, error) {
	if visited == nil {
		visited = make(map[string]struct{})
	}
	plan := Plan{
		WalletBalances:  make(map[string]decimal.Decimal),
		AccountBalances: make(map[string]decimal.Decimal),
	}
	visited[refWalletID] = struct{}{}

	// The written wallet may itself be the canonical mirror of its account.
	for _, w := range wallets {
		if w.WalletID == refWalletID && w.IsAccountMirror() {
			plan.AccountBalances[w.AccountID] = refValue
		}
	}

	if err := propagate(&plan, refValue, refCurrency, wallets, rates, visited); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// propagate rewrites every unvisited sibling to the reference value. Each
// sibling converts from the reference currency directly, never from another
// sibling, so a missing cross pair between two mirror currencies cannot abort
// the write and triangle-inconsistent cross rates cannot skew a mirror.
func propagate(plan *Plan, value decimal.Decimal, currency string, wallets []domain.Wallet, rates RateSource, visited map[string]struct{}) error {
	for _, w := range wallets {
		if _, seen := visited[w.WalletID]; seen {
			continue
		}
		mirrored := value
		if w.CurrencyCode != currency {
			rate, err := rates.LiveRate(currency, w.CurrencyCode)
			if err != nil {
				return err
			}
			mirrored = value.Mul(rate)
		}
		visited[w.WalletID] = struct{}{}
		if !w.Balance.Equal(mirrored) {
			plan.WalletBalances[w.WalletID] = mirrored
		}
		if w.IsAccountMirror() {
			plan.AccountBalances[w.AccountID] = mirrored
		}
	}
	return nil
}
