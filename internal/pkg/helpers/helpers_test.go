package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/portfoliohub/internal/app/models/dto"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, DefaultPage, DefaultPageSize},
		{-3, 10, DefaultPage, 10},
		{4, MaxPageSize + 1, 4, DefaultPageSize},
		{2, MaxPageSize, 2, MaxPageSize},
	}
	for _, tt := range tests {
		page, size := NormalizePage(tt.page, tt.size)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantSize, size)
	}
}

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 25)
	assert.Equal(t, uint64(50), offset)
	assert.Equal(t, uint64(25), limit)

	offset, limit = CalculateOffsetLimit(0, 0)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, uint64(DefaultPageSize), limit)
}

func TestNewPaginationInfo(t *testing.T) {
	assert.Equal(t, dto.PaginationInfo{CurrentPage: 2, TotalPages: 3, PageSize: 10, TotalItems: 21}, NewPaginationInfo(21, 2, 10))
	assert.Equal(t, dto.PaginationInfo{CurrentPage: 3, TotalPages: 3, PageSize: 10, TotalItems: 21}, NewPaginationInfo(21, 9, 10))
	assert.Equal(t, dto.PaginationInfo{CurrentPage: 1, TotalPages: 1, PageSize: DefaultPageSize, TotalItems: 0}, NewPaginationInfo(0, 1, 0))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, ParseDuration("90s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
}

func TestSystemClockIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, SystemClock().Location())
}
