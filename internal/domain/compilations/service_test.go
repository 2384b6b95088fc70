package compilations

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	compilations map[int64]*Compilation
	nextID       int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{compilations: make(map[int64]*Compilation)}
}

func (f *fakeRepo) Create(ctx context.Context, compilation *Compilation) (*Compilation, error) {
	f.nextID++
	stored := *compilation
	stored.ID = f.nextID
	f.compilations[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (*Compilation, error) {
	compilation, ok := f.compilations[id]
	if !ok {
		return nil, fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	copied := *compilation
	return &copied, nil
}

func (f *fakeRepo) Update(ctx context.Context, compilation *Compilation) (*Compilation, error) {
	stored := *compilation
	f.compilations[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeRepo) List(ctx context.Context, pinned *bool, from, size int) ([]Compilation, error) {
	var result []Compilation
	for _, compilation := range f.compilations {
		if pinned != nil && compilation.Pinned != *pinned {
			continue
		}
		result = append(result, *compilation)
	}
	return result, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.compilations[id]; !ok {
		return fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	delete(f.compilations, id)
	return nil
}

func TestUpdateKeepsEventsWhenPatchOmitsThem(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo)

	created, err := service.Create(context.Background(), Compilation{Title: "summer", EventIDs: []int64{1, 2}})
	require.NoError(t, err)

	pinned := true
	updated, err := service.Update(context.Background(), created.ID, Patch{Pinned: &pinned})

	require.NoError(t, err)
	require.True(t, updated.Pinned)
	require.Equal(t, []int64{1, 2}, updated.EventIDs)
}

func TestUpdateClearsEventsWithEmptySlice(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo)

	created, err := service.Create(context.Background(), Compilation{Title: "summer", EventIDs: []int64{1, 2}})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), created.ID, Patch{EventIDs: []int64{}})

	require.NoError(t, err)
	require.Empty(t, updated.EventIDs)
}

func TestUpdateUnknownCompilation(t *testing.T) {
	service := NewService(newFakeRepo())

	_, err := service.Update(context.Background(), 404, Patch{})

	require.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersPinned(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo)

	_, err := service.Create(context.Background(), Compilation{Title: "pinned", Pinned: true})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), Compilation{Title: "loose"})
	require.NoError(t, err)

	pinned := true
	result, err := service.List(context.Background(), &pinned, 0, 10)

	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, "pinned", result[0].Title)
}
