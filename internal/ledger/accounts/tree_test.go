package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func TestBuildForest(t *testing.T) {
	flat := []Account{
		{ID: 3, Code: "1200", ParentID: ptr(1)},
		{ID: 1, Code: "1000"},
		{ID: 2, Code: "1100", ParentID: ptr(1)},
		{ID: 4, Code: "2000"},
	}

	forest := BuildForest(flat)
	require.Len(t, forest, 2)
	assert.Equal(t, "1000", forest[0].Code)
	assert.Equal(t, "2000", forest[1].Code)

	kids := forest[0].Children
	require.Len(t, kids, 2)
	assert.Equal(t, "1100", kids[0].Code)
	assert.Equal(t, "1200", kids[1].Code)
}

func TestBuildForestOrphanBecomesRoot(t *testing.T) {
	flat := []Account{
		{ID: 1, Code: "1000"},
		{ID: 2, Code: "1100", ParentID: ptr(99)},
	}

	forest := BuildForest(flat)
	require.Len(t, forest, 2)
	assert.Equal(t, "1000", forest[0].Code)
	assert.Equal(t, "1100", forest[1].Code)
}
