package bktree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTree(terms ...string) *Tree {
	tree := New(nil)
	for _, term := range terms {
		tree.Add(term)
	}
	return tree
}

func TestSearch_OneEditAway(t *testing.T) {
	tree := newTestTree("14NV4123414111", "ABC123", "XYZ999")

	matches := tree.Search("14NV4123414112", 1)
	require.Len(t, matches, 1)
	assert.Equal(t, Match{Term: "14NV4123414111", Distance: 1}, matches[0])

	assert.Empty(t, tree.Search("14NV4123414112", 0))
}

func TestSearch_ExactAtZero(t *testing.T) {
	tree := newTestTree("ABC123", "ABC124")

	assert.Equal(t, []Match{{Term: "ABC123", Distance: 0}}, tree.Search("ABC123", 0))
	assert.Equal(t, []Match{{Term: "ABC123", Distance: 0}, {Term: "ABC124", Distance: 1}}, tree.Search("ABC123", 1))
}

func TestSearch_MatchesLinearScan(t *testing.T) {
	terms := []string{"BOOK", "BOOKS", "CAKE", "BOO", "BOON", "COOK", "CAPE", "CART", "BOOKCASE", "BAKE"}
	tree := newTestTree(terms...)

	for _, query := range []string{"BOOK", "CAKES", "BO", "ZZZZ"} {
		for maxDist := 0; maxDist <= 3; maxDist++ {
			var expected []Match
			for _, term := range terms {
				if d := tree.distance(query, term); d <= maxDist {
					expected = append(expected, Match{Term: term, Distance: d})
				}
			}
			got := tree.Search(query, maxDist)
			assert.ElementsMatch(t, expected, got, "%s within %d", query, maxDist)
		}
	}
}

func TestAdd_Deduplicates(t *testing.T) {
	tree := newTestTree("A1", "A1", "A2")
	assert.Equal(t, 2, tree.Len())
}

func TestSearch_Empty(t *testing.T) {
	assert.Nil(t, New(nil).Search("ABC", 2))
	assert.Nil(t, newTestTree("ABC").Search("ABC", -1))
}
