package stock

import (
	"testing"
	"time"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/internal/domain/enum"
	"github.com/sangkips/stockbook-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePackSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		err  error
	}{
		{"6x10", 60, nil},
		{"10", 10, nil},
		{"", 1, nil},
		{"bottle", 1, nil},
		{"2 x 3 x 5 strips", 30, nil},
		{"100ml", 100, nil},
		{"0x10", 0, ErrInvalidPackSize},
		{"99999999999999999999", 0, ErrPackSizeOverflow},
		{"4294967296x4294967296", 0, ErrPackSizeOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePackSize(tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBaseUnits(t *testing.T) {
	n, err := BaseUnits(3, "6x10")
	require.NoError(t, err)
	assert.Equal(t, int64(180), n)

	_, err = BaseUnits(-1, "")
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	_, err = BaseUnits(1<<62, "4")
	assert.ErrorIs(t, err, ErrQuantityOverflow)
}

func day(d int) *time.Time {
	t := time.Date(2025, time.June, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func fifoLots() []entity.Lot {
	return []entity.Lot{
		{ID: 1, SKU: "AMX", ExpiryDate: day(1), Remaining: 30},
		{ID: 2, SKU: "AMX", ExpiryDate: day(2), Remaining: 50},
		{ID: 3, SKU: "AMX", ExpiryDate: day(3), Remaining: 40},
	}
}

func TestAllocate_FIFOSpansLots(t *testing.T) {
	// Q1 + k with k = 20
	plan, err := Allocate(Request{SKU: "AMX", Packs: 50}, fifoLots(), nil)
	require.NoError(t, err)

	assert.Equal(t, int64(50), plan.Required)
	assert.Equal(t, []Allocation{{LotID: 1, Units: 30}, {LotID: 2, Units: 20}}, plan.Allocations)
}

func TestAllocate_PackSizeScalesRequest(t *testing.T) {
	plan, err := Allocate(Request{SKU: "AMX", Packs: 2, PackSize: "2x10"}, fifoLots(), nil)
	require.NoError(t, err)

	assert.Equal(t, int64(20), plan.UnitsPerPack)
	assert.Equal(t, int64(40), plan.Required)
	assert.Equal(t, []Allocation{{LotID: 1, Units: 30}, {LotID: 2, Units: 10}}, plan.Allocations)
}

func TestAllocate_Insufficient(t *testing.T) {
	_, err := Allocate(Request{SKU: "AMX", Packs: 121}, fifoLots(), nil)
	require.Error(t, err)

	appErr := apperror.GetAppError(err)
	assert.Equal(t, apperror.ReasonInsufficientStock, appErr.Reason)
	assert.Equal(t, int64(121), appErr.Details["requested"])
	assert.Equal(t, int64(120), appErr.Details["available"])
}

func TestAllocate_SkipsRetiredAndEmptyLots(t *testing.T) {
	lots := fifoLots()
	lots[0].Status = enum.LotStatusRetired
	lots[1].Remaining = 0

	plan, err := Allocate(Request{SKU: "AMX", Packs: 10}, lots, nil)
	require.NoError(t, err)
	assert.Equal(t, []Allocation{{LotID: 3, Units: 10}}, plan.Allocations)
}

func TestAllocate_PinnedBypassesFIFO(t *testing.T) {
	pin := uint(3)
	plan, err := Allocate(Request{SKU: "AMX", Packs: 40, PinnedLotID: &pin}, fifoLots(), nil)
	require.NoError(t, err)
	assert.Equal(t, []Allocation{{LotID: 3, Units: 40}}, plan.Allocations)

	_, err = Allocate(Request{SKU: "AMX", Packs: 41, PinnedLotID: &pin}, fifoLots(), nil)
	assert.True(t, apperror.HasReason(err, apperror.ReasonInsufficientStock))
}

func TestAllocate_PinnedMissingLot(t *testing.T) {
	pin := uint(99)
	_, err := Allocate(Request{SKU: "AMX", Packs: 1, PinnedLotID: &pin}, fifoLots(), nil)
	assert.True(t, apperror.HasReason(err, apperror.ReasonInsufficientStock))
}

func TestAllocate_ZeroQuantity(t *testing.T) {
	plan, err := Allocate(Request{SKU: "AMX", Packs: 0}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Allocations)
	assert.Zero(t, plan.Required)

	pin := uint(1)
	_, err = Allocate(Request{SKU: "AMX", Packs: 0, PinnedLotID: &pin}, fifoLots(), nil)
	assert.ErrorIs(t, err, ErrPinnedNonPositive)
}

func TestAllocate_ReservationsPreventDoubleAllocation(t *testing.T) {
	lots := fifoLots()
	reserved := Reservations{}

	first, err := Allocate(Request{SKU: "AMX", Packs: 70}, lots, reserved)
	require.NoError(t, err)
	reserved.Reserve(first)

	pin := uint(2)
	_, err = Allocate(Request{SKU: "AMX", Packs: 11, PinnedLotID: &pin}, lots, reserved)
	assert.True(t, apperror.HasReason(err, apperror.ReasonInsufficientStock), "lot 2 has only 10 left after the first line")

	second, err := Allocate(Request{SKU: "AMX", Packs: 50}, lots, reserved)
	require.NoError(t, err)
	assert.Equal(t, []Allocation{{LotID: 2, Units: 10}, {LotID: 3, Units: 40}}, second.Allocations)

	reserved.Reserve(second)
	assert.Equal(t, map[uint]int64{1: 30, 2: 50, 3: 40}, Total([]Plan{first, second}))
	assert.Equal(t, int64(50), reserved[2])
}

func TestLotReceipt_Variants(t *testing.T) {
	batch := BatchReceipt(" AMX ", 3)
	batch.PackSize = "2x10"
	batch.ExpiryDate = day(20)
	lot, err := batch.Lot()
	require.NoError(t, err)
	assert.Equal(t, "AMX", lot.SKU)
	assert.Equal(t, enum.LotSourceBatch, lot.Source)
	assert.Nil(t, lot.PurchaseID)
	assert.Equal(t, int64(60), lot.Remaining)
	assert.Equal(t, lot.Remaining, lot.Received)

	lot, err = PurchaseReceipt(7, "AMX", 5).Lot()
	require.NoError(t, err)
	assert.Equal(t, enum.LotSourcePurchase, lot.Source)
	require.NotNil(t, lot.PurchaseID)
	assert.Equal(t, uint(7), *lot.PurchaseID)
	assert.Equal(t, int64(5), lot.Remaining)
}

func TestLotReceipt_Rejects(t *testing.T) {
	_, err := BatchReceipt("", 1).Lot()
	assert.ErrorIs(t, err, ErrMissingSKU)

	r := BatchReceipt("AMX", 1)
	r.ManufactureDate = day(10)
	r.ExpiryDate = day(9)
	_, err = r.Lot()
	assert.ErrorIs(t, err, ErrExpiryBeforeMade)

	r = BatchReceipt("AMX", 1)
	r.PackSize = "0x5"
	_, err = r.Lot()
	assert.ErrorIs(t, err, ErrInvalidPackSize)

	_, err = BatchReceipt("AMX", -1).Lot()
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	_, err = LotReceipt{SKU: "AMX", Packs: 1, source: enum.LotSourcePurchase}.Lot()
	assert.ErrorIs(t, err, ErrPurchaseLotNeedsHead)
}

func TestParseLotReference(t *testing.T) {
	id, ok, err := ParseLotReference(" PI#42 ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	_, ok, err = ParseLotReference("B-2291")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = ParseLotReference("pi#x1")
	assert.True(t, ok)
	assert.ErrorIs(t, err, ErrInvalidLotReference)
}
