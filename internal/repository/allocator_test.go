package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPackageCode(t *testing.T) {
	cases := []struct {
		name string
		last string
		want string
	}{
		{name: "first allocation", last: "", want: "001"},
		{name: "increments", last: "001", want: "002"},
		{name: "keeps zero padding", last: "041", want: "042"},
		{name: "crosses tens boundary", last: "099", want: "100"},
		{name: "penultimate code", last: "998", want: "999"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := nextPackageCode(tc.last)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNextPackageCodeExhausted(t *testing.T) {
	_, err := nextPackageCode("999")
	assert.ErrorIs(t, err, ErrCodesExhausted)
}

func TestNextPackageCodeMalformed(t *testing.T) {
	_, err := nextPackageCode("abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCodesExhausted)
}

func TestComposePermanentCode(t *testing.T) {
	code := composePermanentCode("02", "07", "ABC", "001", "MH")
	assert.Equal(t, "N/0207/ABC001/MH", code)
}
