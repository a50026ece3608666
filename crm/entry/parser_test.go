package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmbot/crm/crmerr"
)

func TestParseClientTwoFields(t *testing.T) {
	rec, err := Parse("Ali, +998901234567")
	require.NoError(t, err)
	require.NotNil(t, rec.Client)
	assert.Nil(t, rec.Order)
	assert.Equal(t, "Ali", rec.Client.Name)
	assert.Equal(t, "+998901234567", rec.Client.Phone)
	assert.Empty(t, rec.Client.Address)
}

func TestParseClientBarePhoneGetsPlus(t *testing.T) {
	rec, err := Parse("Ali, 998901234567")
	require.NoError(t, err)
	require.NotNil(t, rec.Client)
	assert.Equal(t, "+998901234567", rec.Client.Phone)
}

func TestParseClientThreeFields(t *testing.T) {
	rec, err := Parse("Vali, 998900000000, Tashkent, Chilonzor")
	// Four fields: the address may not contain a comma.
	require.Error(t, err)

	rec, err = Parse("Vali, 998900000000, Tashkent")
	require.NoError(t, err)
	require.NotNil(t, rec.Client)
	assert.Equal(t, "Tashkent", rec.Client.Address)
}

func TestParseOrder(t *testing.T) {
	rec, err := Parse("1, Anor, 5kg")
	require.NoError(t, err)
	require.NotNil(t, rec.Order)
	assert.Nil(t, rec.Client)
	assert.Equal(t, 1, rec.Order.ClientIndex)
	assert.Equal(t, "Anor", rec.Order.Product)
	assert.EqualValues(t, 5, rec.Order.Amount)
}

func TestParseOrderAmountKeepsDigitsOnly(t *testing.T) {
	rec, err := Parse("2, Olma, 12 dona")
	require.NoError(t, err)
	require.NotNil(t, rec.Order)
	assert.EqualValues(t, 12, rec.Order.Amount)
}

func TestParseRejectsBadArity(t *testing.T) {
	for _, text := range []string{"solo", "1,2,3,4", ""} {
		_, err := Parse(text)
		var verr *crmerr.ValidationError
		require.ErrorAs(t, err, &verr, "input %q", text)
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	cases := []string{
		"A, 998901234567",    // name too short
		"Ali, phone",         // phone has no digits
		"0, Anor, 5",         // client index must be positive
		"-1, Anor, 5",        // negative index
		"1, , 5",             // empty product
		"1, Anor, kilogramm", // amount without digits
	}
	for _, text := range cases {
		_, err := Parse(text)
		var verr *crmerr.ValidationError
		require.ErrorAs(t, err, &verr, "input %q", text)
	}
}
