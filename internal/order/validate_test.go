package order

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"5", 5, true},
		{" 12 ", 12, true},
		{"1", 1, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"2.5", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseQuantity(tc.in)
		if tc.ok {
			require.NoError(t, err, "input %q", tc.in)
			require.Equal(t, tc.want, got)
		} else {
			require.ErrorIs(t, err, ErrBadQuantity, "input %q", tc.in)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	phone, err := ValidatePhone(" +7 900 123-45-67 ")
	require.NoError(t, err)
	require.Equal(t, "+7 900 123-45-67", phone)

	_, err = ValidatePhone("89001234567")
	require.ErrorIs(t, err, ErrBadPhone, "missing + prefix")

	_, err = ValidatePhone("+")
	require.ErrorIs(t, err, ErrBadPhone, "no digits")

	_, err = ValidatePhone("")
	require.ErrorIs(t, err, ErrBadPhone)

	phone, err = ValidatePhone("+1")
	require.NoError(t, err)
	require.Equal(t, "+1", phone)
}
