package inventory

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// StockBalance is the piece count of one product at one location
type StockBalance struct {
	ProductID  uuid.UUID
	LocationID uuid.UUID
	Pieces     int64
	Version    int
	UpdatedAt  time.Time
}

// Availability summarises a product's stock across locations
type Availability struct {
	ProductID     uuid.UUID `json:"product_id"`
	TotalPieces   int64     `json:"total_pieces"`
	LocationCount int       `json:"location_count"`
}

// Summarize sums balances; only locations with stock are counted
func Summarize(productID uuid.UUID, balances []StockBalance) Availability {
	a := Availability{ProductID: productID}
	for _, b := range balances {
		if b.Pieces > 0 {
			a.TotalPieces += b.Pieces
			a.LocationCount++
		}
	}
	return a
}

// Draw is the number of pieces taken from one location
type Draw struct {
	LocationID uuid.UUID
	Pieces     int64
}

// PlanDeduction decides which locations supply pieces. With a location
// given, only that location is drawn from. Otherwise the fullest location
// goes first, ties broken by location id, so the plan is deterministic.
func PlanDeduction(productID uuid.UUID, balances []StockBalance, pieces int64, locationID *uuid.UUID) ([]Draw, error) {
	candidates := make([]StockBalance, 0, len(balances))
	for _, b := range balances {
		if b.Pieces <= 0 {
			continue
		}
		if locationID != nil && b.LocationID != *locationID {
			continue
		}
		candidates = append(candidates, b)
	}

	available := Summarize(productID, candidates).TotalPieces
	if _, err := ValidateSufficiency(productID, pieces, available); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Pieces != candidates[j].Pieces {
			return candidates[i].Pieces > candidates[j].Pieces
		}
		return candidates[i].LocationID.String() < candidates[j].LocationID.String()
	})

	draws := make([]Draw, 0, len(candidates))
	remaining := pieces
	for _, c := range candidates {
		if remaining == 0 {
			break
		}
		take := min(c.Pieces, remaining)
		draws = append(draws, Draw{LocationID: c.LocationID, Pieces: take})
		remaining -= take
	}
	return draws, nil
}
