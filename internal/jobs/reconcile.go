package jobs

import (
	"log"

	"linkmint/internal/repository"
)

// Reconcile audits every ReferralLedger snapshot against the append-only
// ReferralEarningsLog. It is idempotent and side-effect-free: drift is
// logged, never repaired — the log stays the source of truth.
func Reconcile(referrals *repository.ReferralRepository) (int, error) {
	ledgers, err := referrals.AllLedgers()
	if err != nil {
		return 0, err
	}
	drift := 0
	for _, l := range ledgers {
		expected, err := referrals.SumLogForPair(l.ReferrerID, l.ReferredUserID)
		if err != nil {
			return drift, err
		}
		if !expected.Equal(l.EarningsAmount) {
			drift++
			log.Printf("[reconcile] ledger drift for referrer=%d referred=%d: ledger=%s log=%s",
				l.ReferrerID, l.ReferredUserID, l.EarningsAmount.String(), expected.String())
		}
	}
	if drift == 0 {
		log.Printf("[reconcile] %d ledger rows consistent", len(ledgers))
	}
	return drift, nil
}
