package dto_test

import (
	"testing"

	"event-booking/internal/dto/request"
	"event-booking/internal/dto/response"

	"github.com/stretchr/testify/assert"
)

func TestPaginatedRequest(t *testing.T) {
	req := request.PaginatedRequest{Page: 0, PerPage: 500}
	req.Normalize()

	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 100, req.PerPage)
	assert.Equal(t, 0, req.Offset())

	req = request.PaginatedRequest{Page: 3, PerPage: 20}
	assert.Equal(t, 40, req.Offset())
	assert.Equal(t, 20, req.Limit())
}

func TestNewPaginatedResponse(t *testing.T) {
	page := response.NewPaginatedResponse[int](nil, 2, 10, 25)

	assert.NotNil(t, page.Data)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)

	last := response.NewPaginatedResponse([]int{1}, 3, 10, 25)
	assert.False(t, last.Pagination.HasNext)
}
