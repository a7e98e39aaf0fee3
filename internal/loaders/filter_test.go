package loaders

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	items := []string{"Énergie solaire", "Diesel", "energie fossile"}
	id := func(s string) string { return s }

	assert.Equal(t, []string{"Énergie solaire", "energie fossile"}, Filter(items, "ENERGIE", id))
	assert.Equal(t, items, Filter(items, "  ", id))
	assert.Empty(t, Filter(items, "gaz", id))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, pg := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, 5, pg.Total)
	assert.Equal(t, 3, pg.TotalPages)

	page, _ = Paginate(items, 3, 2)
	assert.Equal(t, []int{5}, page)

	page, _ = Paginate(items, 9, 2)
	assert.NotNil(t, page)
	assert.Empty(t, page)

	page, pg = Paginate(items, 0, 0)
	assert.Len(t, page, 5)
	assert.Equal(t, 1, pg.Page)
	assert.Equal(t, 1, pg.TotalPages)

	_, pg = Paginate([]int{}, 1, 10)
	assert.Equal(t, 0, pg.TotalPages)

	// (page-1)*limit would wrap around
	page, pg = Paginate(items, math.MaxInt/10, 20)
	assert.Empty(t, page)
	assert.Equal(t, 1, pg.TotalPages)
	page, _ = Paginate(items, 1, math.MaxInt)
	assert.Len(t, page, 5)
}
