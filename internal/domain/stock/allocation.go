package stock

import (
	"errors"
	"strconv"
	"strings"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/pkg/apperror"
)

var ErrInvalidLotReference = errors.New("malformed lot reference")

// Request is one cart line expressed for allocation.
type Request struct {
	SKU         string
	Packs       int64
	PackSize    string
	PinnedLotID *uint
}

// Allocation is a single lot debit in base units.
type Allocation struct {
	LotID uint
	Units int64
}

// Plan is the outcome of allocating one request.
type Plan struct {
	SKU          string
	UnitsPerPack int64
	Required     int64
	Allocations  []Allocation
}

// Reservations tracks base units already promised to earlier lines of the same
// sale, so two lines can never claim the same stock.
type Reservations map[uint]int64

// Reserve records every allocation of p.
func (r Reservations) Reserve(p Plan) {
	for _, a := range p.Allocations {
		r[a.LotID] += a.Units
	}
}

func (r Reservations) free(l *entity.Lot) int64 {
	free := l.Available() - r[l.ID]
	if free < 0 {
		return 0
	}
	return free
}

// Validate rejects malformed requests before any stock is read.
func Validate(req Request) (int64, error) {
	if req.Packs < 0 {
		return 0, ErrNegativeQuantity
	}
	if req.PinnedLotID != nil && req.Packs == 0 {
		return 0, ErrPinnedNonPositive
	}
	return BaseUnits(req.Packs, req.PackSize)
}

// Allocate turns req into lot debits. Without a pin, lots must already be in
// FIFO-by-expiry order; with a pin, lots must contain the pinned lot.
// On shortage it returns an INSUFFICIENT_STOCK error and no partial plan.
func Allocate(req Request, lots []entity.Lot, reserved Reservations) (Plan, error) {
	required, err := Validate(req)
	if err != nil {
		return Plan{}, err
	}
	per, _ := ParsePackSize(req.PackSize)
	plan := Plan{SKU: req.SKU, UnitsPerPack: per, Required: required}

	if required == 0 {
		return plan, nil
	}
	if reserved == nil {
		reserved = Reservations{}
	}

	if req.PinnedLotID != nil {
		for i := range lots {
			if lots[i].ID != *req.PinnedLotID {
				continue
			}
			free := reserved.free(&lots[i])
			if free < required {
				return Plan{}, apperror.NewInsufficientStockError(req.SKU, required, free)
			}
			plan.Allocations = []Allocation{{LotID: lots[i].ID, Units: required}}
			return plan, nil
		}
		return Plan{}, apperror.NewInsufficientStockError(req.SKU, required, 0)
	}

	need := required
	for i := range lots {
		free := reserved.free(&lots[i])
		if free == 0 {
			continue
		}
		take := min(free, need)
		plan.Allocations = append(plan.Allocations, Allocation{LotID: lots[i].ID, Units: take})
		need -= take
		if need == 0 {
			return plan, nil
		}
	}
	return Plan{}, apperror.NewInsufficientStockError(req.SKU, required, required-need)
}

// Total sums the base units a set of plans debits from each lot.
func Total(plans []Plan) map[uint]int64 {
	out := make(map[uint]int64)
	for _, p := range plans {
		for _, a := range p.Allocations {
			out[a.LotID] += a.Units
		}
	}
	return out
}

// ParseLotReference reads a pin token such as "PI#42" from a line's batch
// field. ok is false when s is not a pin token at all; err is set when it
// looks like one but the id is malformed.
func ParseLotReference(s string) (id uint, ok bool, err error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(strings.ToUpper(s), entity.LotReferencePrefix) {
		return 0, false, nil
	}
	n, err := strconv.ParseUint(s[len(entity.LotReferencePrefix):], 10, 32)
	if err != nil || n == 0 {
		return 0, true, ErrInvalidLotReference
	}
	return uint(n), true, nil
}
