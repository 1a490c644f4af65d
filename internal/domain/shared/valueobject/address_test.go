package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAddress() Address {
	return Address{
		FullName:   "Ayşe Yılmaz",
		Phone:      "+905551234567",
		Line1:      "Atatürk Cad. No:12",
		City:       "İstanbul",
		District:   "Kadıköy",
		PostalCode: "34710",
		Country:    "TR",
	}
}

func TestAddressValidate(t *testing.T) {
	t.Run("valid address passes", func(t *testing.T) {
		assert.NoError(t, validAddress().Validate())
	})

	t.Run("missing required fields fail", func(t *testing.T) {
		cases := map[string]func(*Address){
			"full name": func(a *Address) { a.FullName = "  " },
			"phone":     func(a *Address) { a.Phone = "" },
			"line1":     func(a *Address) { a.Line1 = "" },
			"city":      func(a *Address) { a.City = "" },
			"country":   func(a *Address) { a.Country = "" },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				addr := validAddress()
				mutate(&addr)
				assert.Error(t, addr.Validate())
			})
		}
	})
}

func TestAddressScanValue(t *testing.T) {
	addr := validAddress()
	val, err := addr.Value()
	require.NoError(t, err)

	var decoded Address
	require.NoError(t, decoded.Scan(val))
	assert.Equal(t, addr, decoded)

	var empty Address
	require.NoError(t, empty.Scan(nil))
	assert.True(t, empty.IsEmpty())
}
