package sacco

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/speps/go-hashids/v2"
)

var ErrInvalidAmount = errors.New("contribution amount must be positive")

// loanMultiplier: members may borrow up to twice their total contributions.
const loanMultiplier = 2

type Account struct {
	UserID              int64      `json:"user_id"`
	TotalContributions  float64    `json:"total_contributions"`
	AvailableLoanAmount float64    `json:"available_loan_amount"`
	ActiveLoanAmount    float64    `json:"active_loan_amount"`
	RotationPosition    int        `json:"rotation_position"`
	NextPayoutDate      time.Time  `json:"next_payout_date"`
	LoanDueDate         *time.Time `json:"loan_due_date"`
}

type Contribution struct {
	ReceiptNo string    `json:"receipt_no"`
	UserID    int64     `json:"user_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Store keeps SACCO accounts in memory. Rotation positions are assigned in
// join order; payout dates advance one rotation (30 days) per position.
type Store struct {
	mu            sync.Mutex
	accounts      map[int64]*Account
	contributions []Contribution
	receipts      *hashids.HashID
	nextReceipt   int64
}

func NewStore(receiptSalt string) (*Store, error) {
	hd := hashids.NewData()
	hd.Salt = receiptSalt
	hd.MinLength = 8

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("init receipt encoder: %w", err)
	}

	return &Store{
		accounts: make(map[int64]*Account),
		receipts: h,
	}, nil
}

// GetOrCreate returns the member's account, opening one on first touch.
func (s *Store) GetOrCreate(userID int64) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.getOrCreateLocked(userID)
	out := *a
	return &out, nil
}

func (s *Store) getOrCreateLocked(userID int64) *Account {
	if a, ok := s.accounts[userID]; ok {
		return a
	}

	position := len(s.accounts) + 1
	a := &Account{
		UserID:           userID,
		RotationPosition: position,
		NextPayoutDate:   time.Now().AddDate(0, 0, 30*position),
	}
	s.accounts[userID] = a
	return a
}

// Contribute credits the member's account and issues a receipt. Loan headroom
// follows contributions at the fixed multiplier.
func (s *Store) Contribute(userID int64, amount float64) (*Contribution, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.getOrCreateLocked(userID)
	a.TotalContributions += amount
	a.AvailableLoanAmount = a.TotalContributions * loanMultiplier

	s.nextReceipt++
	encoded, err := s.receipts.EncodeInt64([]int64{s.nextReceipt})
	if err != nil {
		return nil, fmt.Errorf("encode receipt number: %w", err)
	}

	c := Contribution{
		ReceiptNo: "SACCO-" + strings.ToUpper(encoded),
		UserID:    userID,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	s.contributions = append(s.contributions, c)
	return &c, nil
}

// TotalFor reports a member's lifetime contributions, used by the wallet
// summary and the credit scorer.
func (s *Store) TotalFor(userID int64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.accounts[userID]; ok {
		return a.TotalContributions
	}
	return 0
}
