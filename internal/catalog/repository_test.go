package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/ribbonbot/internal/domain"
)

type memStore struct {
	items   []domain.Product
	saves   int
	saveErr error
}

func (m *memStore) Load(context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *memStore) Save(_ context.Context, products []domain.Product) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.items = make([]domain.Product, len(products))
	copy(m.items, products)
	m.saves++
	return nil
}

func seeded(t *testing.T, products ...domain.Product) (*Repository, *memStore) {
	t.Helper()
	store := &memStore{items: products}
	repo := New(store)
	require.NoError(t, repo.Load(context.Background()))
	return repo, store
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	repo, store := seeded(t)

	first, err := repo.Add(context.Background(), "Роза", "красная", "a.jpg")
	require.NoError(t, err)
	require.Equal(t, int64(1), first.ID)

	second, err := repo.Add(context.Background(), "Пион", "розовый", "b.jpg")
	require.NoError(t, err)
	require.Equal(t, int64(2), second.ID)

	require.Equal(t, 2, store.saves)
	require.Len(t, store.items, 2)
}

func TestAddReusesIDAfterTailDelete(t *testing.T) {
	repo, _ := seeded(t,
		domain.Product{ID: 1, Name: "a"},
		domain.Product{ID: 2, Name: "b"},
		domain.Product{ID: 3, Name: "c"},
	)

	require.NoError(t, repo.Remove(context.Background(), 3))

	added, err := repo.Add(context.Background(), "d", "", "")
	require.NoError(t, err)
	require.Equal(t, int64(3), added.ID, "id of the deleted tail product is reassigned")
}

func TestRemoveMissing(t *testing.T) {
	repo, _ := seeded(t, domain.Product{ID: 1, Name: "a"})

	err := repo.Remove(context.Background(), 42)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	require.Equal(t, 1, repo.Len())
}

func TestUpdateFields(t *testing.T) {
	repo, store := seeded(t, domain.Product{ID: 7, Name: "old", Description: "olddesc"})

	require.NoError(t, repo.Update(context.Background(), 7, domain.FieldName, "new"))
	require.NoError(t, repo.Update(context.Background(), 7, domain.FieldDescription, "newdesc"))

	got, err := repo.Get(7)
	require.NoError(t, err)
	require.Equal(t, "new", got.Name)
	require.Equal(t, "newdesc", got.Description)
	require.Equal(t, 2, store.saves)

	err = repo.Update(context.Background(), 7, domain.Field("photo"), "x")
	require.ErrorIs(t, err, domain.ErrUnknownField)
}

func TestUpdateMissing(t *testing.T) {
	repo, _ := seeded(t)
	err := repo.Update(context.Background(), 5, domain.FieldName, "x")
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	repo, store := seeded(t, domain.Product{ID: 1, Name: "a"})
	store.saveErr = errors.New("disk full")

	err := repo.Remove(context.Background(), 1)
	require.Error(t, err)

	// The in-memory view reflects the mutation even though persistence failed.
	require.Equal(t, 0, repo.Len())
	require.Len(t, store.items, 1, "store keeps the last good snapshot")
}

func TestAtClampsNothing(t *testing.T) {
	repo, _ := seeded(t, domain.Product{ID: 1, Name: "a"}, domain.Product{ID: 2, Name: "b"})

	p, ok := repo.At(1)
	require.True(t, ok)
	require.Equal(t, int64(2), p.ID)

	_, ok = repo.At(-1)
	require.False(t, ok)
	_, ok = repo.At(2)
	require.False(t, ok)
}

func TestListReturnsCopy(t *testing.T) {
	repo, _ := seeded(t, domain.Product{ID: 1, Name: "a"})

	list := repo.List()
	list[0].Name = "mutated"

	got, err := repo.Get(1)
	require.NoError(t, err)
	require.Equal(t, "a", got.Name)
}
