package scan

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/owaste/rewards-service/internal/domain"
)

// Outcome is a decoded bin code.
type Outcome struct {
	QRData    string           `json:"qr_data"`
	WasteType domain.WasteType `json:"waste_type"`
	Points    int              `json:"points"`
	ScannedAt time.Time        `json:"scanned_at"`
}

// Resolver stands in for the QR decoding service.
type Resolver interface {
	Resolve(ctx context.Context) (Outcome, error)
}

// RandomResolver picks a waste type uniformly at random, the way the demo
// bins behave until a real decoder is plugged in.
type RandomResolver struct {
	wasteTypes []domain.WasteType
	pick       func(n int) int
	now        func() time.Time
}

// NewRandomResolver builds a resolver over the given waste types.
func NewRandomResolver(wasteTypes []domain.WasteType) *RandomResolver {
	return &RandomResolver{
		wasteTypes: append([]domain.WasteType(nil), wasteTypes...),
		pick:       rand.Intn,
		now:        time.Now,
	}
}

// WithPicker replaces the random index source.
func (r *RandomResolver) WithPicker(pick func(n int) int) *RandomResolver {
	r.pick = pick
	return r
}

// Resolve returns an outcome whose points always equal the table value of
// the chosen waste type.
func (r *RandomResolver) Resolve(ctx context.Context) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if len(r.wasteTypes) == 0 {
		return Outcome{}, errors.New("no waste types configured")
	}
	wt := r.wasteTypes[r.pick(len(r.wasteTypes))]
	now := r.now()
	return Outcome{
		QRData:    fmt.Sprintf("owaste-bin-%s-%d", wt.ID, now.UnixMilli()),
		WasteType: wt,
		Points:    wt.PointValue,
		ScannedAt: now,
	}, nil
}
