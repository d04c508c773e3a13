package insurance

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownCover = errors.New("unknown cover")

// Cover is one insurance product on offer. The catalog is fixed; pricing is
// owned by the underwriting partner.
type Cover struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Coverage    float64  `json:"coverage"`
	Premium     float64  `json:"premium"`
	Features    []string `json:"features"`
}

type Claim struct {
	ID             string    `json:"id"`
	CoverID        string    `json:"cover_id"`
	UserID         int64     `json:"user_id"`
	ClaimType      string    `json:"claim_type"`
	Amount         float64   `json:"amount"`
	Description    string    `json:"description"`
	GeotaggedImage string    `json:"geotagged_image,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func Covers() []Cover {
	return []Cover{
		{
			ID:          "basic",
			Name:        "Basic Protection",
			Description: "Essential coverage for new gig workers",
			Coverage:    100000,
			Premium:     500,
			Features: []string{
				"Income protection up to KES 100,000",
				"Equipment coverage KES 50,000",
				"Basic health coverage",
				"24/7 support",
			},
		},
		{
			ID:          "premium",
			Name:        "Premium Shield",
			Description: "Comprehensive coverage for established workers",
			Coverage:    300000,
			Premium:     1200,
			Features: []string{
				"Income protection up to KES 300,000",
				"Equipment coverage KES 150,000",
				"Full health & accident coverage",
				"Priority claim processing",
				"Legal assistance",
			},
		},
		{
			ID:          "elite",
			Name:        "Elite Guardian",
			Description: "Maximum protection for high-earning professionals",
			Coverage:    500000,
			Premium:     2000,
			Features: []string{
				"Income protection up to KES 500,000",
				"Equipment coverage KES 250,000",
				"Comprehensive health coverage",
				"Instant claim processing",
				"Personal insurance advisor",
				"Global coverage",
			},
		},
	}
}

func coverExists(id string) bool {
	for _, c := range Covers() {
		if c.ID == id {
			return true
		}
	}
	return false
}

// ClaimStore records submitted claims in memory, pending review.
type ClaimStore struct {
	mu     sync.Mutex
	claims []Claim
}

func NewClaimStore() *ClaimStore { return &ClaimStore{} }

func (s *ClaimStore) Submit(userID int64, coverID, claimType string, amount float64, description, geotaggedImage string) (*Claim, error) {
	if !coverExists(coverID) {
		return nil, ErrUnknownCover
	}

	c := Claim{
		ID:             uuid.NewString(),
		CoverID:        coverID,
		UserID:         userID,
		ClaimType:      claimType,
		Amount:         amount,
		Description:    description,
		GeotaggedImage: geotaggedImage,
		Status:         "submitted",
		CreatedAt:      time.Now(),
	}

	s.mu.Lock()
	s.claims = append(s.claims, c)
	s.mu.Unlock()

	return &c, nil
}

// ListByUser returns the member's claims, newest first.
func (s *ClaimStore) ListByUser(userID int64) []Claim {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Claim
	for i := len(s.claims) - 1; i >= 0; i-- {
		if s.claims[i].UserID == userID {
			out = append(out, s.claims[i])
		}
	}
	return out
}
