package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/siherrmann/chipnews/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryTriplets is an in-memory stand-in for the triplets database handler.
type memoryTriplets struct {
	triplets  []*model.Triplet
	insertErr error
}

func (m *memoryTriplets) InsertTriplet(triplet *model.Triplet) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, stored := range m.triplets {
		if stored.Chipmaker == triplet.Chipmaker && stored.Key() == triplet.Key() {
			stored.Detail = triplet.Detail
			return nil
		}
	}
	copied := *triplet
	m.triplets = append(m.triplets, &copied)
	return nil
}

func (m *memoryTriplets) SelectTripletsByChipmakers(chipmakers []string) ([]*model.Triplet, error) {
	if len(chipmakers) == 0 {
		return m.triplets, nil
	}
	var selected []*model.Triplet
	for _, triplet := range m.triplets {
		for _, chipmaker := range chipmakers {
			if strings.EqualFold(triplet.Chipmaker, chipmaker) {
				selected = append(selected, triplet)
			}
		}
	}
	return selected, nil
}

func (m *memoryTriplets) SelectTripletsByEntity(entity string) ([]*model.Triplet, error) {
	return nil, nil
}

func (m *memoryTriplets) DeleteTripletsByChipmaker(chipmaker string) (int, error) {
	return 0, nil
}

func TestGraphDatabase(t *testing.T) {
	t.Run("Save twice stores each edge once", func(t *testing.T) {
		g := loadTestGraph(t)
		store := &memoryTriplets{}

		require.NoError(t, g.SaveToDatabase(store))
		require.NoError(t, g.SaveToDatabase(store))
		assert.Len(t, store.triplets, 7)
	})

	t.Run("Load restores the chipmaker edges", func(t *testing.T) {
		store := &memoryTriplets{}
		require.NoError(t, loadTestGraph(t).SaveToDatabase(store))

		restored := New(nil, nil)
		require.NoError(t, restored.LoadFromDatabase(store, "nvidia"))
		assert.Equal(t, 6, restored.Len())
		assert.Equal(t, []string{"NVIDIA"}, restored.Chipmakers())

		relations, err := restored.RelationsBetween("nvidia", "Intel", "Nvidia")
		require.NoError(t, err)
		assert.Len(t, relations, 3)
	})

	t.Run("Insert failure is returned", func(t *testing.T) {
		err := loadTestGraph(t).SaveToDatabase(&memoryTriplets{insertErr: errors.New("connection reset")})
		assert.Error(t, err)
	})
}
