package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		req  PageRequest
		ok   bool
	}{
		{name: "first page", req: Of(0, 10), ok: true},
		{name: "max size", req: Of(3, MaxPageSize), ok: true},
		{name: "negative page", req: Of(-1, 10)},
		{name: "zero size", req: Of(0, 0)},
		{name: "oversized", req: Of(0, MaxPageSize+1)},
		{name: "desc sort", req: Of(0, 5).WithSort("id", Desc), ok: true},
		{name: "bad direction", req: Of(0, 5).WithSort("id", Direction("up"))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidPageRequest)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Of(0, 5).Offset())
	assert.Equal(t, 15, Of(3, 5).Offset())
}

func TestParseSort(t *testing.T) {
	sort, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, Sort{}, sort)

	sort, err = ParseSort("registration_date")
	require.NoError(t, err)
	assert.Equal(t, Sort{Field: "registration_date", Direction: Asc}, sort)

	sort, err = ParseSort(" block , DESC ")
	require.NoError(t, err)
	assert.Equal(t, Sort{Field: "block", Direction: Desc}, sort)

	for _, raw := range []string{",asc", "id,up", "id,asc,extra"} {
		_, err := ParseSort(raw)
		assert.ErrorIs(t, err, ErrInvalidPageRequest, raw)
	}
}

func TestNewPage(t *testing.T) {
	page := NewPage([]int{1, 2, 3}, Of(1, 3), 7)
	assert.Equal(t, []int{1, 2, 3}, page.Content)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.Size)
	assert.Equal(t, int64(7), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)

	empty := NewPage[int](nil, Of(0, 10), 0)
	assert.NotNil(t, empty.Content)
	assert.Equal(t, 0, empty.TotalPages)

	exact := NewPage([]int{}, Of(0, 5), 10)
	assert.Equal(t, 2, exact.TotalPages)
}
