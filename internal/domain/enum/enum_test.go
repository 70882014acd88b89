package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLotStatus_JSON(t *testing.T) {
	b, err := json.Marshal(LotStatusRetired)
	require.NoError(t, err)
	assert.Equal(t, `"Retired"`, string(b))

	var s LotStatus
	require.NoError(t, json.Unmarshal([]byte(`"retired"`), &s))
	assert.Equal(t, LotStatusRetired, s)
	require.NoError(t, json.Unmarshal([]byte(`0`), &s))
	assert.Equal(t, LotStatusActive, s)
	assert.Equal(t, "Active", LotStatus(9).String())
}

func TestLotStatus_Scan(t *testing.T) {
	var s LotStatus
	require.NoError(t, s.Scan(int64(1)))
	assert.Equal(t, LotStatusRetired, s)
	require.NoError(t, s.Scan(nil))
	assert.Equal(t, LotStatusActive, s)
}

func TestRoleAndPaymentType(t *testing.T) {
	var r Role
	require.NoError(t, json.Unmarshal([]byte(`"Finance"`), &r))
	assert.Equal(t, RoleFinance, r)
	assert.True(t, r.IsValid())
	assert.False(t, Role("owner").IsValid())

	var p PaymentType
	require.NoError(t, json.Unmarshal([]byte(`" Credit "`), &p))
	assert.Equal(t, PaymentTypeCredit, p)
	assert.Equal(t, "Credit", p.Label())
	assert.True(t, LotSourcePurchase.IsValid())
	assert.False(t, LotSource("transfer").IsValid())
}
