package admin

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/ribbonbot/internal/actions"
	"github.com/m3rciful/ribbonbot/internal/auth"
	"github.com/m3rciful/ribbonbot/internal/catalog"
	"github.com/m3rciful/ribbonbot/internal/domain"
	"github.com/m3rciful/ribbonbot/internal/media"
	"github.com/m3rciful/ribbonbot/internal/notify"
	"github.com/m3rciful/ribbonbot/internal/session"
)

const (
	adminID    = int64(900)
	strangerID = int64(100)
)

type sentMessage struct {
	to   int64
	text string
	rows []notify.Row
}

type fakeSender struct {
	mu   sync.Mutex
	msgs []sentMessage
}

func (f *fakeSender) SendText(_ context.Context, to int64, text string, rows ...notify.Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, sentMessage{to: to, text: text, rows: rows})
	return nil
}

func (f *fakeSender) SendImage(_ context.Context, to int64, _, caption string, rows ...notify.Row) error {
	return f.SendText(context.Background(), to, caption, rows...)
}

func (f *fakeSender) last() sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.msgs[len(f.msgs)-1]
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

type memStore struct{ items []domain.Product }

func (m *memStore) Load(context.Context) ([]domain.Product, error) { return m.items, nil }
func (m *memStore) Save(_ context.Context, p []domain.Product) error {
	m.items = p
	return nil
}

func newTestFlow(t *testing.T, products ...domain.Product) (*Flow, *fakeSender, *session.Store, *catalog.Repository) {
	t.Helper()
	cat := catalog.New(&memStore{items: products})
	require.NoError(t, cat.Load(context.Background()))
	sessions := session.NewStore(0)
	t.Cleanup(sessions.Close)
	sender := &fakeSender{}
	flow := NewFlow(sessions, cat, media.NewDiskStorage(t.TempDir()), sender, auth.NewRoles([]int64{adminID}))
	return flow, sender, sessions, cat
}

func TestAddDialogFullPath(t *testing.T) {
	flow, sender, sessions, cat := newTestFlow(t)
	ctx := context.Background()

	require.NoError(t, flow.StartAdd(ctx, adminID))
	require.Contains(t, sender.last().text, "фото")
	require.Equal(t, session.FlowAdminAdd, sessions.ActiveFlow(adminID))

	claimed, err := flow.ClaimPhoto(ctx, adminID, []byte("jpeg-bytes"), "photos/file_0.jpg")
	require.NoError(t, err)
	require.True(t, claimed)
	require.Contains(t, sender.last().text, "название")

	claimed, err = flow.ClaimText(ctx, adminID, "Лента Люкс")
	require.NoError(t, err)
	require.True(t, claimed)
	require.Contains(t, sender.last().text, "описание")

	claimed, err = flow.ClaimText(ctx, adminID, "Атласные ленты, 25 см")
	require.NoError(t, err)
	require.True(t, claimed)
	require.Contains(t, sender.last().text, "добавлен")

	require.Equal(t, session.FlowIdle, sessions.ActiveFlow(adminID))
	require.Equal(t, 1, cat.Len())
	added, err := cat.Get(1)
	require.NoError(t, err)
	require.Equal(t, "Лента Люкс", added.Name)
	require.Equal(t, "Атласные ленты, 25 см", added.Description)

	// The uploaded photo landed on disk under the stored reference.
	_, err = os.Stat(added.PhotoRef)
	require.NoError(t, err)
}

func TestTextBeforePhotoReprompts(t *testing.T) {
	flow, sender, sessions, _ := newTestFlow(t)
	ctx := context.Background()

	require.NoError(t, flow.StartAdd(ctx, adminID))

	claimed, err := flow.ClaimText(ctx, adminID, "Лента Люкс")
	require.NoError(t, err)
	require.True(t, claimed, "stray text is swallowed by the active dialog")
	require.Contains(t, sender.last().text, "фото")
	require.Equal(t, session.AdminStepPhoto, sessions.Peek(adminID).Admin.Step)
}

func TestClaimIgnoresNonAdmin(t *testing.T) {
	flow, sender, _, _ := newTestFlow(t)
	ctx := context.Background()

	require.NoError(t, flow.StartAdd(ctx, strangerID))
	require.Equal(t, 0, sender.count(), "stranger gets no reply")

	claimed, err := flow.ClaimText(ctx, strangerID, "anything")
	require.NoError(t, err)
	require.False(t, claimed)

	claimed, err = flow.ClaimPhoto(ctx, strangerID, []byte("x"), "a.jpg")
	require.NoError(t, err)
	require.False(t, claimed)
}

func TestClaimPhotoOutsideAddDialog(t *testing.T) {
	flow, _, _, _ := newTestFlow(t)

	claimed, err := flow.ClaimPhoto(context.Background(), adminID, []byte("x"), "a.jpg")
	require.NoError(t, err)
	require.False(t, claimed)
}

func TestList(t *testing.T) {
	flow, sender, _, _ := newTestFlow(t,
		domain.Product{ID: 1, Name: "Роза"},
		domain.Product{ID: 2, Name: "Пион"},
	)

	require.NoError(t, flow.List(context.Background(), adminID))
	require.Equal(t, "1: Роза\n2: Пион", sender.last().text)
}

func TestListEmpty(t *testing.T) {
	flow, sender, _, _ := newTestFlow(t)

	require.NoError(t, flow.List(context.Background(), adminID))
	require.Contains(t, sender.last().text, "пуст")
}

func TestDeleteViaPickList(t *testing.T) {
	flow, sender, _, cat := newTestFlow(t,
		domain.Product{ID: 1, Name: "Роза"},
		domain.Product{ID: 2, Name: "Пион"},
	)
	ctx := context.Background()

	require.NoError(t, flow.StartDelete(ctx, adminID))
	pick := sender.last()
	require.Contains(t, pick.text, "удаления")
	require.Len(t, pick.rows, 3, "one per product plus cancel")
	require.Equal(t, actions.AdminDelPick, pick.rows[0][0].Action)
	require.Equal(t, "1", pick.rows[0][0].Data)

	require.NoError(t, flow.Delete(ctx, adminID, 1))
	require.Contains(t, sender.last().text, "удалён")
	require.Equal(t, 1, cat.Len())

	// Picking the same product again reports it gone.
	require.NoError(t, flow.Delete(ctx, adminID, 1))
	require.Contains(t, sender.last().text, "не найден")
}

func TestEditDialogFullPath(t *testing.T) {
	flow, sender, sessions, cat := newTestFlow(t, domain.Product{ID: 1, Name: "Роза", Description: "старое"})
	ctx := context.Background()

	require.NoError(t, flow.StartEdit(ctx, adminID))
	require.Equal(t, actions.AdminEditPick, sender.last().rows[0][0].Action)

	require.NoError(t, flow.PickEdit(ctx, adminID, 1))
	fieldMsg := sender.last()
	require.Contains(t, fieldMsg.text, "изменить")
	require.Equal(t, string(domain.FieldName), fieldMsg.rows[0][0].Data)
	require.Equal(t, session.AdminStepEditField, sessions.Peek(adminID).Admin.Step)

	require.NoError(t, flow.PickField(ctx, adminID, string(domain.FieldDescription)))
	require.Contains(t, sender.last().text, "новое значение")

	claimed, err := flow.ClaimText(ctx, adminID, "свежее описание")
	require.NoError(t, err)
	require.True(t, claimed)
	require.Contains(t, sender.last().text, "сохранены")

	got, err := cat.Get(1)
	require.NoError(t, err)
	require.Equal(t, "свежее описание", got.Description)
	require.Equal(t, "Роза", got.Name)
	require.Equal(t, session.FlowIdle, sessions.ActiveFlow(adminID))
}

func TestPickEditMissingProduct(t *testing.T) {
	flow, sender, sessions, _ := newTestFlow(t)

	require.NoError(t, flow.PickEdit(context.Background(), adminID, 42))
	require.Contains(t, sender.last().text, "не найден")
	require.Equal(t, session.FlowIdle, sessions.ActiveFlow(adminID))
}

func TestPickFieldRejectsUnknown(t *testing.T) {
	flow, _, sessions, _ := newTestFlow(t, domain.Product{ID: 1, Name: "Роза"})
	ctx := context.Background()

	require.NoError(t, flow.PickEdit(ctx, adminID, 1))
	require.NoError(t, flow.PickField(ctx, adminID, "photo"))

	require.Equal(t, session.AdminStepEditField, sessions.Peek(adminID).Admin.Step)
}

func TestCancelAbandonsDialog(t *testing.T) {
	flow, sender, sessions, cat := newTestFlow(t)
	ctx := context.Background()

	require.NoError(t, flow.StartAdd(ctx, adminID))
	require.NoError(t, flow.Cancel(ctx, adminID))

	require.Contains(t, sender.last().text, "отменено")
	require.Equal(t, session.FlowIdle, sessions.ActiveFlow(adminID))
	require.Equal(t, 0, cat.Len())
}

func TestCancelWithoutDialogIsSilent(t *testing.T) {
	flow, sender, _, _ := newTestFlow(t)

	require.NoError(t, flow.Cancel(context.Background(), adminID))
	require.Equal(t, 0, sender.count())
}

func TestEditedProductDeletedMidDialog(t *testing.T) {
	flow, sender, _, cat := newTestFlow(t, domain.Product{ID: 1, Name: "Роза"})
	ctx := context.Background()

	require.NoError(t, flow.PickEdit(ctx, adminID, 1))
	require.NoError(t, flow.PickField(ctx, adminID, string(domain.FieldName)))
	require.NoError(t, cat.Remove(ctx, 1))

	claimed, err := flow.ClaimText(ctx, adminID, "Пион")
	require.NoError(t, err)
	require.True(t, claimed)
	require.Contains(t, sender.last().text, "не найден")
}
