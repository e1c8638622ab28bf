package order

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/ribbonbot/internal/actions"
	"github.com/m3rciful/ribbonbot/internal/auth"
	"github.com/m3rciful/ribbonbot/internal/catalog"
	"github.com/m3rciful/ribbonbot/internal/domain"
	"github.com/m3rciful/ribbonbot/internal/notify"
	"github.com/m3rciful/ribbonbot/internal/session"
)

const (
	customerID = int64(100)
	adminID    = int64(900)
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

func (f *fakeSender) sentTo(id int64) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.msgs {
		if m.to == id {
			out = append(out, m)
		}
	}
	return out
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
	flow := NewFlow(sessions, cat, sender, auth.NewRoles([]int64{adminID}))
	return flow, sender, sessions, cat
}

func drive(t *testing.T, flow *Flow, text string) {
	t.Helper()
	claimed, err := flow.ClaimText(context.Background(), customerID, text)
	require.NoError(t, err)
	require.True(t, claimed)
}

func TestFullOrderPath(t *testing.T) {
	flow, sender, sessions, _ := newTestFlow(t, domain.Product{ID: 1, Name: "Роза"})
	ctx := context.Background()

	require.NoError(t, flow.Start(ctx, customerID, 1))
	require.Contains(t, sender.last().text, "Сколько штук")

	drive(t, flow, "3")
	require.Contains(t, sender.last().text, "имя")

	drive(t, flow, "Анна")
	require.Contains(t, sender.last().text, "телефона")

	drive(t, flow, "+79001234567")
	last := sender.last()
	require.Contains(t, last.text, "комментарий")
	require.Len(t, last.rows, 1, "skip control offered")
	require.Equal(t, actions.SkipComment, last.rows[0][0].Action)

	drive(t, flow, "До пятницы, пожалуйста")

	// Draft is consumed: the session returns to idle.
	require.Equal(t, session.FlowIdle, sessions.ActiveFlow(customerID))
	require.Equal(t, 1, flow.PendingCount())

	adminMsgs := sender.sentTo(adminID)
	require.Len(t, adminMsgs, 1)
	summary := adminMsgs[0]
	require.Contains(t, summary.text, "Новый заказ")
	require.Contains(t, summary.text, "Роза")
	require.Contains(t, summary.text, "3")
	require.Contains(t, summary.text, "Анна")
	require.Contains(t, summary.text, "+79001234567")
	require.Contains(t, summary.text, "До пятницы")
	require.Len(t, summary.rows, 1)
	require.Len(t, summary.rows[0], 2, "accept and reject controls")

	require.Contains(t, sender.last().text, "Спасибо за заказ")
}

func TestInvalidInputRepromptsWithoutAdvancing(t *testing.T) {
	flow, sender, sessions, _ := newTestFlow(t, domain.Product{ID: 1, Name: "Роза"})
	ctx := context.Background()

	require.NoError(t, flow.Start(ctx, customerID, 1))

	drive(t, flow, "abc")
	require.Contains(t, sender.last().text, "корректное количество")
	require.Equal(t, session.OrderStepQuantity, sessions.Peek(customerID).Order.Step)

	drive(t, flow, "0")
	require.Equal(t, session.OrderStepQuantity, sessions.Peek(customerID).Order.Step)

	drive(t, flow, "2")
	drive(t, flow, "Анна")

	drive(t, flow, "89001234567")
	require.Contains(t, sender.last().text, "+7")
	st := sessions.Peek(customerID)
	require.Equal(t, session.OrderStepPhone, st.Order.Step)
	require.Empty(t, st.Order.Phone, "rejected input is not stored")
}

func TestSkipCommentSubmitsWithPlaceholder(t *testing.T) {
	flow, sender, _, _ := newTestFlow(t, domain.Product{ID: 1, Name: "Роза"})
	ctx := context.Background()

	require.NoError(t, flow.Start(ctx, customerID, 1))
	drive(t, flow, "1")
	drive(t, flow, "Анна")
	drive(t, flow, "+79001234567")

	require.NoError(t, flow.SkipComment(ctx, customerID))

	adminMsgs := sender.sentTo(adminID)
	require.Len(t, adminMsgs, 1)
	require.Contains(t, adminMsgs[0].text, "Комментарий: "+SkippedComment)
}

func TestSkipCommentOutsideCommentStepIsNoop(t *testing.T) {
	flow, sender, sessions, _ := newTestFlow(t, domain.Product{ID: 1, Name: "Роза"})
	ctx := context.Background()

	require.NoError(t, flow.Start(ctx, customerID, 1))
	before := len(sender.sentTo(customerID))

	require.NoError(t, flow.SkipComment(ctx, customerID))

	require.Equal(t, before, len(sender.sentTo(customerID)))
	require.Equal(t, session.OrderStepQuantity, sessions.Peek(customerID).Order.Step)
}

func TestStartDoesNotRestartActiveOrder(t *testing.T) {
	flow, _, sessions, _ := newTestFlow(t,
		domain.Product{ID: 1, Name: "Роза"},
		domain.Product{ID: 2, Name: "Пион"},
	)
	ctx := context.Background()

	require.NoError(t, flow.Start(ctx, customerID, 1))
	drive(t, flow, "4")

	require.NoError(t, flow.Start(ctx, customerID, 2))

	st := sessions.Peek(customerID)
	require.Equal(t, int64(1), st.Order.ProductID, "first order wins")
	require.Equal(t, 4, st.Order.Quantity)
}

func TestUnclaimedWhenIdle(t *testing.T) {
	flow, _, _, _ := newTestFlow(t, domain.Product{ID: 1, Name: "Роза"})

	claimed, err := flow.ClaimText(context.Background(), customerID, "привет")
	require.NoError(t, err)
	require.False(t, claimed)
}

func TestIdentitiesDoNotShareDrafts(t *testing.T) {
	flow, _, sessions, _ := newTestFlow(t,
		domain.Product{ID: 1, Name: "Роза"},
		domain.Product{ID: 2, Name: "Пион"},
	)
	ctx := context.Background()
	other := int64(200)

	require.NoError(t, flow.Start(ctx, customerID, 1))
	require.NoError(t, flow.Start(ctx, other, 2))

	claimed, err := flow.ClaimText(ctx, other, "7")
	require.NoError(t, err)
	require.True(t, claimed)

	require.Equal(t, 0, sessions.Peek(customerID).Order.Quantity)
	require.Equal(t, 7, sessions.Peek(other).Order.Quantity)
}

func TestSubmitWithDeletedProductFails(t *testing.T) {
	flow, sender, sessions, cat := newTestFlow(t, domain.Product{ID: 1, Name: "Роза"})
	ctx := context.Background()

	require.NoError(t, flow.Start(ctx, customerID, 1))
	drive(t, flow, "2")
	drive(t, flow, "Анна")
	drive(t, flow, "+79001234567")

	require.NoError(t, cat.Remove(ctx, 1))
	drive(t, flow, "без комментария")

	require.Contains(t, sender.last().text, "ошибка")
	require.Empty(t, sender.sentTo(adminID), "no admin notification for a failed order")
	require.Equal(t, 0, flow.PendingCount())
	require.Equal(t, session.FlowIdle, sessions.ActiveFlow(customerID))
}

func completeOrder(t *testing.T, flow *Flow) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, flow.Start(ctx, customerID, 1))
	drive(t, flow, "1")
	drive(t, flow, "Анна")
	drive(t, flow, "+79001234567")
	require.NoError(t, flow.SkipComment(ctx, customerID))
}

func TestDecideAcceptNotifiesCustomer(t *testing.T) {
	flow, sender, _, _ := newTestFlow(t, domain.Product{ID: 1, Name: "Роза"})
	completeOrder(t, flow)

	applied, err := flow.Decide(context.Background(), adminID, 1, actions.VerdictAccept)
	require.NoError(t, err)
	require.True(t, applied)

	require.Contains(t, sender.last().text, "подтверждён")
	require.Equal(t, 0, flow.PendingCount())
}

func TestDecideRejectNotifiesCustomer(t *testing.T) {
	flow, sender, _, _ := newTestFlow(t, domain.Product{ID: 1, Name: "Роза"})
	completeOrder(t, flow)

	applied, err := flow.Decide(context.Background(), adminID, 1, actions.VerdictReject)
	require.NoError(t, err)
	require.True(t, applied)
	require.Contains(t, sender.last().text, "отклонён")
}

func TestDecideIsIdempotent(t *testing.T) {
	flow, sender, _, _ := newTestFlow(t, domain.Product{ID: 1, Name: "Роза"})
	completeOrder(t, flow)

	applied, err := flow.Decide(context.Background(), adminID, 1, actions.VerdictAccept)
	require.NoError(t, err)
	require.True(t, applied)
	notified := len(sender.sentTo(customerID))

	applied, err = flow.Decide(context.Background(), adminID, 1, actions.VerdictReject)
	require.NoError(t, err)
	require.False(t, applied, "second decision is dropped")
	require.Equal(t, notified, len(sender.sentTo(customerID)))
}

func TestDecideIgnoresNonAdmin(t *testing.T) {
	flow, _, _, _ := newTestFlow(t, domain.Product{ID: 1, Name: "Роза"})
	completeOrder(t, flow)

	applied, err := flow.Decide(context.Background(), customerID, 1, actions.VerdictAccept)
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, 1, flow.PendingCount(), "order still awaits a real decision")
}

func TestDecideUnknownOrder(t *testing.T) {
	flow, _, _, _ := newTestFlow(t, domain.Product{ID: 1, Name: "Роза"})

	applied, err := flow.Decide(context.Background(), adminID, 42, actions.VerdictAccept)
	require.NoError(t, err)
	require.False(t, applied)
}

func TestOrderIDsAreMonotonic(t *testing.T) {
	flow, sender, _, _ := newTestFlow(t, domain.Product{ID: 1, Name: "Роза"})

	completeOrder(t, flow)
	completeOrder(t, flow)

	adminMsgs := sender.sentTo(adminID)
	require.Len(t, adminMsgs, 2)
	first := adminMsgs[0].rows[0][0].Data
	second := adminMsgs[1].rows[0][0].Data
	require.True(t, strings.HasPrefix(first, "1|"))
	require.True(t, strings.HasPrefix(second, "2|"))
}
