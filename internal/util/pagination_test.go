package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                string
		page, size          int
		wantFrom, wantLimit int
		wantPage            int
	}{
		{name: "first page", page: 1, size: 20, wantFrom: 0, wantLimit: 20, wantPage: 1},
		{name: "third page", page: 3, size: 5, wantFrom: 10, wantLimit: 5, wantPage: 3},
		{name: "page below one", page: -2, size: 5, wantFrom: 0, wantLimit: 5, wantPage: 1},
		{name: "zero size", page: 2, size: 0, wantFrom: DefaultPageSize, wantLimit: DefaultPageSize, wantPage: 2},
		{name: "oversized", page: 1, size: 1000, wantFrom: 0, wantLimit: DefaultPageSize, wantPage: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			from, limit, page := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantPage, page)
		})
	}
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("abc", 7))
	assert.Equal(t, 42, ParseIntDefault("42", 7))
}
