package chatbot

import (
	"fmt"
	"strings"
)

// Context carries the worker's financial snapshot so replies can reference
// real numbers instead of generic advice.
type Context struct {
	TotalEarnings  float64
	CreditScore    int
	GigConsistency int
	WorkerTitle    string
}

// Responder generates rule-based financial guidance. Rules are evaluated in
// order; the first keyword group that matches the message wins.
type Responder struct{}

func New() *Responder { return &Responder{} }

func (r *Responder) Reply(message string, c Context) string {
	m := strings.ToLower(message)

	switch {
	case containsAny(m, "credit score", "improve"):
		return r.creditAdvice(c)
	case containsAny(m, "save", "saving"):
		return r.savingsAdvice(c)
	case containsAny(m, "gig", "job", "work"):
		return r.gigAdvice(c)
	case containsAny(m, "earn", "income", "money"):
		return r.earningsAdvice(c)
	case containsAny(m, "budget", "expense"):
		return r.budgetAdvice()
	case containsAny(m, "loan", "borrow"):
		return r.loanAdvice(c)
	case containsAny(m, "insurance", "protect"):
		return r.insuranceAdvice()
	default:
		return r.fallback()
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func (r *Responder) creditAdvice(c Context) string {
	score := c.CreditScore
	if score == 0 {
		score = 650
	}
	return fmt.Sprintf(`Your current credit score is %d. To improve it:

1. Complete more gigs consistently - this improves your gig consistency score (currently %d%%)
2. Maintain a healthy wallet balance - keep at least KES 5,000 in your account
3. Get paid on time - timely payments boost your payment history score

Based on your current progress, you could reach %d points in 2-3 months by completing 5 more gigs and maintaining a balance of KES 10,000.`, score, c.GigConsistency, score+50)
}

func (r *Responder) savingsAdvice(c Context) string {
	recommended := c.TotalEarnings * 0.2
	return fmt.Sprintf(`Based on your income pattern (KES %.0f total earnings), I recommend saving KES %.0f (20%% of your income).

Here's a breakdown:
- Emergency fund: KES %.0f
- SACCO contributions: KES %.0f
- Investment/growth: KES %.0f

This will help you reach your financial goals in 3-4 months!`,
		c.TotalEarnings, recommended, recommended*0.5, recommended*0.3, recommended*0.2)
}

func (r *Responder) gigAdvice(c Context) string {
	title := c.WorkerTitle
	if title == "" {
		title = "your field"
	}
	return fmt.Sprintf(`Based on your profile in %s, here are some tips:

1. High-demand gigs: tech companies are hiring 40%% more this season
2. Optimize your rates: workers in your category earn KES 15,000-25,000 per project on average
3. Build your portfolio: complete 3 more gigs to unlock premium opportunities
4. Best time to apply: mornings (8-10 AM) have 60%% higher response rates`, title)
}

func (r *Responder) earningsAdvice(c Context) string {
	potential := c.TotalEarnings * 0.15
	if potential == 0 {
		potential = 5000
	}
	return fmt.Sprintf(`To increase your earnings:

1. Take on 2 more projects this week - potential: +KES %.0f
2. Increase your rates by 15%% - you're currently underpriced compared to market rates
3. Upsell existing clients - offer package deals for 20%% more value
4. Work during peak hours - weekdays 9 AM - 5 PM have highest demand`, potential)
}

func (r *Responder) budgetAdvice() string {
	return `Recommended monthly budget breakdown:

- Essentials (50%): rent, food, utilities
- Savings (20%): emergency fund, SACCO
- Investments (15%): skills, equipment, insurance
- Flexible (15%): entertainment, personal

Track your expenses in the Wallet section to see where you can optimize. Most gig workers save 10-15% by cutting unnecessary subscriptions.`
}

func (r *Responder) loanAdvice(c Context) string {
	if c.CreditScore < 600 {
		return `Complete more gigs to unlock loan eligibility. You need a credit score of at least 600.

Tip: SACCO loans have the lowest interest rates. Consider contributing more to your SACCO account!`
	}
	limit := c.CreditScore * 100
	return fmt.Sprintf(`Based on your credit score, you're eligible for:

- M-Shwari: up to KES %d at 9%% interest
- SACCO loan: up to 2-3x your savings
- Tala: up to KES %d at 12%% interest

Tip: SACCO loans have the lowest interest rates. Consider contributing more to your SACCO account!`, limit, limit*8/10)
}

func (r *Responder) insuranceAdvice() string {
	return `Your insurance coverage protects you from:

1. Income loss during dry months (60% coverage)
2. Equipment damage up to KES 300,000
3. Health emergencies
4. Accidents

To file a claim, go to the Insurance page and upload geotagged images for verification.

Premium: KES 800/month for full coverage`
}

func (r *Responder) fallback() string {
	return `I can help you with:

- Budget recommendations and expense tracking
- Income predictions and earning strategies
- Job matching based on your skills
- Credit score improvement tips
- Financial planning and savings goals
- SACCO and insurance guidance

What would you like to know more about?`
}
