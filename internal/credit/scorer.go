package credit

import "math"

const (
	minScore = 300
	maxScore = 850
)

// Profile is the financial activity snapshot a score is computed from.
// Fields mirror what the wallet, gig history and SACCO account expose.
type Profile struct {
	TotalEarnings      float64
	WalletBalance      float64
	CompletedGigs      int
	AvgRating          float64
	DaysActive         int
	PaymentDelays      int
	SaccoContributions float64
	LoanRepayments     int
}

type Factors struct {
	GigConsistency  int `json:"gig_consistency"`
	PaymentHistory  int `json:"payment_history"`
	FinancialHealth int `json:"financial_health"`
}

type LoanOffer struct {
	Lender       string  `json:"lender"`
	MaxAmount    int     `json:"max_amount"`
	InterestRate float64 `json:"interest_rate"`
}

type Score struct {
	Score           int         `json:"score"`
	Rating          string      `json:"rating"`
	Factors         Factors     `json:"factors"`
	LoanEligibility []LoanOffer `json:"loan_eligibility"`
}

// Calculate produces a rule-based credit score on the standard 300-850 band.
// Each activity signal contributes a capped amount; payment delays are the
// only negative signal.
func Calculate(p Profile) Score {
	score := float64(minScore)
	score += math.Min(p.TotalEarnings/1000, 200)
	score += math.Min(p.WalletBalance/500, 100)
	score += float64(p.CompletedGigs) * 5
	score += p.AvgRating * 30
	score += float64(p.DaysActive) * 0.5
	score -= float64(p.PaymentDelays) * 20
	score += math.Min(p.SaccoContributions/100, 50)
	score += float64(p.LoanRepayments) * 10

	final := int(math.Round(math.Min(math.Max(score, minScore), maxScore)))

	return Score{
		Score:           final,
		Rating:          rating(final),
		Factors:         factors(p),
		LoanEligibility: loanOffers(final),
	}
}

func factors(p Profile) Factors {
	return Factors{
		GigConsistency:  clampPct(p.CompletedGigs * 5),
		PaymentHistory:  clampPct(100 - p.PaymentDelays*10),
		FinancialHealth: clampPct(int(p.WalletBalance / 500)),
	}
}

func clampPct(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func rating(score int) string {
	switch {
	case score >= 750:
		return "Excellent"
	case score >= 700:
		return "Very Good"
	case score >= 650:
		return "Good"
	case score >= 600:
		return "Fair"
	default:
		return "Poor"
	}
}

// loanOffers lists the partner lenders a score unlocks. Limits scale with the
// score itself, matching the partner underwriting tiers.
func loanOffers(score int) []LoanOffer {
	offers := []LoanOffer{}
	if score >= 600 {
		offers = append(offers,
			LoanOffer{Lender: "Elimisha Loan", MaxAmount: score * 100, InterestRate: 9},
			LoanOffer{Lender: "Shamba Loan", MaxAmount: score * 80, InterestRate: 12},
		)
	}
	if score >= 700 {
		offers = append(offers,
			LoanOffer{Lender: "Branch", MaxAmount: score * 120, InterestRate: 8},
		)
	}
	return offers
}
