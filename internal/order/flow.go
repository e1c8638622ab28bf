// Package order drives the customer order dialog: quantity, name, phone,
// comment, then submission to the administrators for an accept/reject
// decision.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/m3rciful/ribbonbot/core/logger"
	"github.com/m3rciful/ribbonbot/internal/actions"
	"github.com/m3rciful/ribbonbot/internal/auth"
	"github.com/m3rciful/ribbonbot/internal/catalog"
	"github.com/m3rciful/ribbonbot/internal/notify"
	"github.com/m3rciful/ribbonbot/internal/session"
)

const (
	msgQuantityPrompt  = "Сколько штук вы хотите заказать?"
	msgQuantityInvalid = "Пожалуйста, введите корректное количество (целое число больше 0)."
	msgNamePrompt      = "Введите ваше имя:"
	msgPhonePrompt     = "Введите номер телефона:"
	msgPhoneInvalid    = "Пожалуйста, введите номер телефона в формате +7..."
	msgCommentPrompt   = "Хотите добавить комментарий к заказу?"
	msgOrderReceived   = "Спасибо за заказ! Мы свяжемся с вами в ближайшее время."
	msgOrderFailed     = "Произошла ошибка при оформлении заказа."
	msgOrderAccepted   = "Ваш заказ подтверждён. Спасибо за покупку!"
	msgOrderRejected   = "К сожалению, ваш заказ был отклонён. Свяжитесь с нами для уточнения."

	btnSkipComment = "Пропустить"
	btnAccept      = "✅ Принять"
	btnReject      = "❌ Отклонить"
)

// SkippedComment is stored when the customer skips the comment step.
const SkippedComment = "-"

// Submission is a completed draft handed to the administrators.
type Submission struct {
	ID         int64
	CustomerID int64
	Draft      session.OrderDraft
}

// Flow owns the order dialog state transitions and the pending-decision
// registry that makes accept/reject idempotent.
type Flow struct {
	sessions *session.Store
	catalog  *catalog.Repository
	sender   notify.Sender
	roles    *auth.Roles

	mu      sync.Mutex
	lastID  int64
	pending map[int64]Submission
}

// NewFlow wires the order dialog against its collaborators.
func NewFlow(sessions *session.Store, cat *catalog.Repository, sender notify.Sender, roles *auth.Roles) *Flow {
	return &Flow{
		sessions: sessions,
		catalog:  cat,
		sender:   sender,
		roles:    roles,
		pending:  make(map[int64]Submission),
	}
}

// Start begins an order dialog for the given product. An identity already
// mid-order keeps its existing draft: first writer wins until completion.
func (f *Flow) Start(ctx context.Context, customerID, productID int64) error {
	started := false
	f.sessions.Update(customerID, func(st *session.State) {
		if st.Flow == session.FlowOrdering {
			return
		}
		st.StartOrder(productID)
		started = true
	})
	if !started {
		logger.SVCOrders.Debug("order start ignored",
			slog.String("event", "order.start"),
			slog.String("status", "skip"),
			slog.Int64("user_id", customerID),
		)
		return nil
	}
	logger.SVCOrders.Info("order started",
		slog.String("event", "order.start"),
		slog.Int64("user_id", customerID),
		slog.Int64("product_id", productID),
	)
	return f.sender.SendText(ctx, customerID, msgQuantityPrompt)
}

// ClaimText consumes free-form input when the identity is mid-order.
// It reports false when no order draft is active so the router can keep
// looking for an owner.
func (f *Flow) ClaimText(ctx context.Context, customerID int64, text string) (bool, error) {
	var (
		claimed  bool
		reply    string
		finished *session.OrderDraft
	)

	f.sessions.Update(customerID, func(st *session.State) {
		if st.Flow != session.FlowOrdering || st.Order == nil {
			return
		}
		claimed = true
		draft := st.Order

		switch draft.Step {
		case session.OrderStepQuantity:
			qty, err := ParseQuantity(text)
			if err != nil {
				reply = msgQuantityInvalid
				return
			}
			draft.Quantity = qty
			draft.Step = session.OrderStepName
			reply = msgNamePrompt

		case session.OrderStepName:
			name := strings.TrimSpace(text)
			if name == "" {
				reply = msgNamePrompt
				return
			}
			draft.CustomerName = name
			draft.Step = session.OrderStepPhone
			reply = msgPhonePrompt

		case session.OrderStepPhone:
			phone, err := ValidatePhone(text)
			if err != nil {
				reply = msgPhoneInvalid
				return
			}
			draft.Phone = phone
			draft.Step = session.OrderStepComment

		case session.OrderStepComment:
			draft.Comment = strings.TrimSpace(text)
			consumed := *draft
			st.Reset()
			finished = &consumed
		}
	})

	if !claimed {
		return false, nil
	}
	if finished != nil {
		return true, f.submit(ctx, customerID, *finished)
	}
	if reply != "" {
		return true, f.sender.SendText(ctx, customerID, reply)
	}
	// Phone accepted: offer the comment step with an explicit skip control.
	return true, f.sender.SendText(ctx, customerID, msgCommentPrompt,
		notify.Row{{Label: btnSkipComment, Action: actions.SkipComment}},
	)
}

// SkipComment completes the comment step via the skip control.
func (f *Flow) SkipComment(ctx context.Context, customerID int64) error {
	var finished *session.OrderDraft
	f.sessions.Update(customerID, func(st *session.State) {
		if st.Flow != session.FlowOrdering || st.Order == nil {
			return
		}
		if st.Order.Step != session.OrderStepComment {
			return
		}
		st.Order.Comment = SkippedComment
		consumed := *st.Order
		st.Reset()
		finished = &consumed
	})
	if finished == nil {
		return nil
	}
	return f.submit(ctx, customerID, *finished)
}

// submit converts a consumed draft into a pending submission: the product is
// resolved, the administrators get the summary with decision controls, and
// the customer gets an acknowledgment. The draft is already removed from the
// session store, so re-triggering cannot duplicate the submission.
func (f *Flow) submit(ctx context.Context, customerID int64, draft session.OrderDraft) error {
	product, err := f.catalog.Get(draft.ProductID)
	if err != nil {
		logger.SVCOrders.Warn("order submit failed",
			slog.String("event", "order.submit"),
			slog.String("status", "fail"),
			slog.Int64("user_id", customerID),
			slog.Int64("product_id", draft.ProductID),
			slog.String("err", err.Error()),
		)
		return f.sender.SendText(ctx, customerID, msgOrderFailed)
	}

	f.mu.Lock()
	f.lastID++
	sub := Submission{ID: f.lastID, CustomerID: customerID, Draft: draft}
	f.pending[sub.ID] = sub
	f.mu.Unlock()

	summary := fmt.Sprintf(
		"<b>🌹 Новый заказ!</b>\nТовар: %s\nКоличество: %d\nИмя: %s\nТелефон: %s\nКомментарий: %s",
		product.Name, draft.Quantity, draft.CustomerName, draft.Phone, draft.Comment,
	)
	controls := notify.Row{
		{Label: btnAccept, Action: actions.Decide, Data: fmt.Sprintf("%d|%s", sub.ID, actions.VerdictAccept)},
		{Label: btnReject, Action: actions.Decide, Data: fmt.Sprintf("%d|%s", sub.ID, actions.VerdictReject)},
	}

	var errs []error
	for _, adminID := range f.roles.AdminIDs() {
		if err := f.sender.SendText(ctx, adminID, summary, controls); err != nil {
			errs = append(errs, err)
		}
	}
	if err := f.sender.SendText(ctx, customerID, msgOrderReceived); err != nil {
		errs = append(errs, err)
	}

	logger.SVCOrders.Info("order submitted",
		slog.String("event", "order.submit"),
		slog.Int64("order_id", sub.ID),
		slog.Int64("user_id", customerID),
		slog.Int64("product_id", draft.ProductID),
		slog.Int("quantity", draft.Quantity),
	)
	return errors.Join(errs...)
}

// Decide resolves a pending submission. Only administrators may decide, and
// only the first decision for a given order has any effect; it reports
// whether the decision was applied so the transport can drop the controls.
func (f *Flow) Decide(ctx context.Context, adminID, orderID int64, verdict string) (bool, error) {
	if !f.roles.IsAdmin(adminID) {
		return false, nil
	}

	f.mu.Lock()
	sub, ok := f.pending[orderID]
	if ok {
		delete(f.pending, orderID)
	}
	f.mu.Unlock()
	if !ok {
		return false, nil
	}

	msg := msgOrderRejected
	if verdict == actions.VerdictAccept {
		msg = msgOrderAccepted
	}
	logger.SVCOrders.Info("order decided",
		slog.String("event", "order.decide"),
		slog.Int64("order_id", orderID),
		slog.Int64("user_id", sub.CustomerID),
		slog.String("verdict", verdict),
	)
	return true, f.sender.SendText(ctx, sub.CustomerID, msg)
}

// PendingCount reports how many submissions await a decision.
func (f *Flow) PendingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}
