package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/partyledger/internal/domain"
)

// replay sorts entries ascending by (tx date, created at) and overwrites
// each Balance with the running total of its own account. Journal rows and
// lines derived from raw transactions both go through here, so the two
// statement sources cannot disagree on ordering or arithmetic.
func replay(entries []*domain.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Before(entries[j])
	})

	running := make(map[string]decimal.Decimal)
	for _, e := range entries {
		balance, ok := running[e.AccountID]
		if !ok {
			balance = decimal.Zero
		}

		balance = balance.Add(e.Debit).Sub(e.Credit)
		e.Balance = balance
		running[e.AccountID] = balance
	}
}

// lastBalances returns the closing balance of every account in an
// ascending, replayed sequence.
func lastBalances(ascending []*domain.Entry) map[string]decimal.Decimal {
	last := make(map[string]decimal.Decimal)
	for _, e := range ascending {
		last[e.AccountID] = e.Balance
	}
	return last
}

// newestFirst returns a reversed copy of an ascending sequence.
func newestFirst(ascending []*domain.Entry) []*domain.Entry {
	out := make([]*domain.Entry, len(ascending))
	for i, e := range ascending {
		out[len(ascending)-1-i] = e
	}
	return out
}

// filterByDate keeps the entries whose tx date lies in r. It must only run
// on a replayed sequence.
func filterByDate(entries []*domain.Entry, r domain.DateRange) []*domain.Entry {
	if r.IsOpen() {
		return entries
	}

	out := make([]*domain.Entry, 0, len(entries))
	for _, e := range entries {
		if r.Contains(e.TxDate) {
			out = append(out, e)
		}
	}
	return out
}
