package arsenal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllCategoriesIsClosedSetOfThirteen(t *testing.T) {
	all := AllCategories()
	require.Len(t, all, 13)
	assert.Equal(t, Architect, all[0])
	assert.Equal(t, FacilityManagement, all[12])

	seen := map[string]bool{}
	for _, c := range all {
		assert.True(t, c.Valid())
		assert.False(t, seen[c.String()])
		seen[c.String()] = true
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("Cybersecurity")
	require.NoError(t, err)
	assert.Equal(t, Cybersecurity, c)

	c, err = ParseCategory("devops infrastructure")
	require.NoError(t, err)
	assert.Equal(t, DevOpsInfrastructure, c)

	_, err = ParseCategory("Platform-Default")
	assert.Error(t, err)
}

func TestCategoryStringAndLabel(t *testing.T) {
	assert.Equal(t, "Software_Engineering", DefaultInjectCategory.String())
	assert.Equal(t, "Software Engineering", DefaultInjectCategory.Label())
	assert.Equal(t, "Category(42)", Category(42).String())
	assert.False(t, Category(-1).Valid())
}
