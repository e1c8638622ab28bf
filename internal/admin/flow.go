// Package admin drives the catalog management dialog: adding products from
// uploaded photos, deleting, and editing single fields.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/ribbonbot/core/logger"
	"github.com/m3rciful/ribbonbot/internal/actions"
	"github.com/m3rciful/ribbonbot/internal/auth"
	"github.com/m3rciful/ribbonbot/internal/catalog"
	"github.com/m3rciful/ribbonbot/internal/domain"
	"github.com/m3rciful/ribbonbot/internal/media"
	"github.com/m3rciful/ribbonbot/internal/notify"
	"github.com/m3rciful/ribbonbot/internal/session"
)

const (
	msgPhotoPrompt   = "Отправьте фото нового букета."
	msgNamePrompt    = "Введите название букета:"
	msgDescPrompt    = "Введите описание букета:"
	msgAdded         = "Букет успешно добавлен в каталог!"
	msgCatalogEmpty  = "Каталог пуст."
	msgDeletePrompt  = "Выберите букет для удаления:"
	msgDeleted       = "Букет удалён из каталога."
	msgEditPrompt    = "Выберите букет для редактирования:"
	msgFieldPrompt   = "Что вы хотите изменить?"
	msgValuePrompt   = "Введите новое значение:"
	msgSaved         = "Изменения сохранены."
	msgCancelled     = "Действие отменено."
	msgGone          = "Букет не найден. Возможно, он уже удалён."
	msgStorageFailed = "Не удалось сохранить изменения. Попробуйте ещё раз."
	msgPhotoFailed   = "Не удалось сохранить фото. Попробуйте ещё раз."

	btnFieldName = "Название"
	btnFieldDesc = "Описание"
	btnCancel    = "❌ Отмена"
)

// Flow owns the admin dialog state transitions. Every entry point silently
// ignores identities outside the configured administrator set.
type Flow struct {
	sessions *session.Store
	catalog  *catalog.Repository
	media    media.Storage
	sender   notify.Sender
	roles    *auth.Roles
}

// NewFlow wires the admin dialog against its collaborators.
func NewFlow(sessions *session.Store, cat *catalog.Repository, store media.Storage, sender notify.Sender, roles *auth.Roles) *Flow {
	return &Flow{
		sessions: sessions,
		catalog:  cat,
		media:    store,
		sender:   sender,
		roles:    roles,
	}
}

// StartAdd begins the add dialog, replacing any other active flow.
func (f *Flow) StartAdd(ctx context.Context, adminID int64) error {
	if !f.roles.IsAdmin(adminID) {
		return nil
	}
	f.sessions.Update(adminID, func(st *session.State) {
		st.StartAdminAdd()
	})
	logger.SVCAdmin.Info("add started",
		slog.String("event", "admin.add"),
		slog.Int64("user_id", adminID),
	)
	return f.sender.SendText(ctx, adminID, msgPhotoPrompt, cancelRow())
}

// ClaimPhoto consumes a photo upload when the add dialog awaits one.
// It reports false when the upload belongs to no active dialog.
func (f *Flow) ClaimPhoto(ctx context.Context, adminID int64, raw []byte, hint string) (bool, error) {
	if !f.roles.IsAdmin(adminID) {
		return false, nil
	}
	if st := f.sessions.Peek(adminID); st.Flow != session.FlowAdminAdd || st.Admin == nil || st.Admin.Step != session.AdminStepPhoto {
		return false, nil
	}

	// The upload is written before the session advances so a storage failure
	// leaves the dialog waiting on the photo step.
	ref, err := f.media.Store(ctx, raw, hint)
	if err != nil {
		logger.SVCAdmin.Error("photo store failed",
			slog.String("event", "admin.photo"),
			slog.Int64("user_id", adminID),
			slog.String("err", err.Error()),
		)
		return true, f.sender.SendText(ctx, adminID, msgPhotoFailed, cancelRow())
	}

	advanced := false
	f.sessions.Update(adminID, func(st *session.State) {
		if st.Flow != session.FlowAdminAdd || st.Admin == nil || st.Admin.Step != session.AdminStepPhoto {
			return
		}
		st.Admin.PhotoRef = ref
		st.Admin.Step = session.AdminStepName
		advanced = true
	})
	if !advanced {
		return true, nil
	}
	return true, f.sender.SendText(ctx, adminID, msgNamePrompt, cancelRow())
}

// ClaimText consumes free-form input when an admin dialog is mid-flight.
// It reports false when no admin dialog owns the input.
func (f *Flow) ClaimText(ctx context.Context, adminID int64, text string) (bool, error) {
	if !f.roles.IsAdmin(adminID) {
		return false, nil
	}

	type completion struct {
		kind      string // "add" or "edit"
		photoRef  string
		name      string
		productID int64
		field     string
		value     string
	}

	var (
		claimed bool
		reply   string
		done    *completion
	)

	trimmed := strings.TrimSpace(text)
	f.sessions.Update(adminID, func(st *session.State) {
		if st.Admin == nil {
			return
		}
		switch st.Flow {
		case session.FlowAdminAdd:
			claimed = true
			switch st.Admin.Step {
			case session.AdminStepName:
				if trimmed == "" {
					reply = msgNamePrompt
					return
				}
				st.Admin.Name = trimmed
				st.Admin.Step = session.AdminStepDesc
				reply = msgDescPrompt
			case session.AdminStepDesc:
				if trimmed == "" {
					reply = msgDescPrompt
					return
				}
				done = &completion{kind: "add", photoRef: st.Admin.PhotoRef, name: st.Admin.Name, value: trimmed}
				st.Reset()
			default:
				// Awaiting a photo; free text does not advance the dialog.
				reply = msgPhotoPrompt
			}
		case session.FlowAdminEdit:
			claimed = true
			if st.Admin.Step != session.AdminStepEditInput {
				reply = msgFieldPrompt
				return
			}
			if trimmed == "" {
				reply = msgValuePrompt
				return
			}
			done = &completion{kind: "edit", productID: st.Admin.ProductID, field: st.Admin.Field, value: trimmed}
			st.Reset()
		}
	})

	if !claimed {
		return false, nil
	}
	if done == nil {
		if reply == "" {
			return true, nil
		}
		return true, f.sender.SendText(ctx, adminID, reply, cancelRow())
	}

	switch done.kind {
	case "add":
		product, err := f.catalog.Add(ctx, done.name, done.value, done.photoRef)
		if err != nil {
			return true, errors.Join(err, f.sender.SendText(ctx, adminID, msgStorageFailed))
		}
		logger.SVCAdmin.Info("product added",
			slog.String("event", "admin.add"),
			slog.Int64("user_id", adminID),
			slog.Int64("product_id", product.ID),
		)
		return true, f.sender.SendText(ctx, adminID, msgAdded)
	default:
		field, err := domain.ParseField(done.field)
		if err != nil {
			return true, f.sender.SendText(ctx, adminID, msgStorageFailed)
		}
		if err := f.catalog.Update(ctx, done.productID, field, done.value); err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return true, f.sender.SendText(ctx, adminID, msgGone)
			}
			return true, errors.Join(err, f.sender.SendText(ctx, adminID, msgStorageFailed))
		}
		logger.SVCAdmin.Info("product updated",
			slog.String("event", "admin.edit"),
			slog.Int64("user_id", adminID),
			slog.Int64("product_id", done.productID),
			slog.String("field", done.field),
		)
		return true, f.sender.SendText(ctx, adminID, msgSaved)
	}
}

// List sends the catalog as "id: name" lines.
func (f *Flow) List(ctx context.Context, adminID int64) error {
	if !f.roles.IsAdmin(adminID) {
		return nil
	}
	products := f.catalog.List()
	if len(products) == 0 {
		return f.sender.SendText(ctx, adminID, msgCatalogEmpty)
	}
	lines := make([]string, 0, len(products))
	for _, p := range products {
		lines = append(lines, fmt.Sprintf("%d: %s", p.ID, p.Name))
	}
	return f.sender.SendText(ctx, adminID, strings.Join(lines, "\n"))
}

// StartDelete offers one control per product; picking one deletes it.
func (f *Flow) StartDelete(ctx context.Context, adminID int64) error {
	if !f.roles.IsAdmin(adminID) {
		return nil
	}
	return f.pickList(ctx, adminID, msgDeletePrompt, actions.AdminDelPick)
}

// Delete removes the picked product and persists the catalog.
func (f *Flow) Delete(ctx context.Context, adminID, productID int64) error {
	if !f.roles.IsAdmin(adminID) {
		return nil
	}
	if err := f.catalog.Remove(ctx, productID); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return f.sender.SendText(ctx, adminID, msgGone)
		}
		return errors.Join(err, f.sender.SendText(ctx, adminID, msgStorageFailed))
	}
	logger.SVCAdmin.Info("product removed",
		slog.String("event", "admin.delete"),
		slog.Int64("user_id", adminID),
		slog.Int64("product_id", productID),
	)
	return f.sender.SendText(ctx, adminID, msgDeleted)
}

// StartEdit offers one control per product; picking one opens the field choice.
func (f *Flow) StartEdit(ctx context.Context, adminID int64) error {
	if !f.roles.IsAdmin(adminID) {
		return nil
	}
	return f.pickList(ctx, adminID, msgEditPrompt, actions.AdminEditPick)
}

// PickEdit starts the edit dialog for the picked product.
func (f *Flow) PickEdit(ctx context.Context, adminID, productID int64) error {
	if !f.roles.IsAdmin(adminID) {
		return nil
	}
	if _, err := f.catalog.Get(productID); err != nil {
		return f.sender.SendText(ctx, adminID, msgGone)
	}
	f.sessions.Update(adminID, func(st *session.State) {
		st.StartAdminEdit(productID)
	})
	return f.sender.SendText(ctx, adminID, msgFieldPrompt,
		notify.Row{
			{Label: btnFieldName, Action: actions.AdminField, Data: string(domain.FieldName)},
			{Label: btnFieldDesc, Action: actions.AdminField, Data: string(domain.FieldDescription)},
		},
		cancelRow(),
	)
}

// PickField records the chosen field and asks for the replacement value.
func (f *Flow) PickField(ctx context.Context, adminID int64, field string) error {
	if !f.roles.IsAdmin(adminID) {
		return nil
	}
	if _, err := domain.ParseField(field); err != nil {
		return nil
	}
	picked := false
	f.sessions.Update(adminID, func(st *session.State) {
		if st.Flow != session.FlowAdminEdit || st.Admin == nil || st.Admin.Step != session.AdminStepEditField {
			return
		}
		st.Admin.Field = field
		st.Admin.Step = session.AdminStepEditInput
		picked = true
	})
	if !picked {
		return nil
	}
	return f.sender.SendText(ctx, adminID, msgValuePrompt, cancelRow())
}

// Cancel abandons whatever admin dialog is active.
func (f *Flow) Cancel(ctx context.Context, adminID int64) error {
	if !f.roles.IsAdmin(adminID) {
		return nil
	}
	active := false
	f.sessions.Update(adminID, func(st *session.State) {
		if st.Flow != session.FlowAdminAdd && st.Flow != session.FlowAdminEdit {
			return
		}
		st.Reset()
		active = true
	})
	if !active {
		return nil
	}
	return f.sender.SendText(ctx, adminID, msgCancelled)
}

// pickList sends one control per product carrying its id under the given action.
func (f *Flow) pickList(ctx context.Context, adminID int64, prompt, action string) error {
	products := f.catalog.List()
	if len(products) == 0 {
		return f.sender.SendText(ctx, adminID, msgCatalogEmpty)
	}
	rows := make([]notify.Row, 0, len(products)+1)
	for _, p := range products {
		rows = append(rows, notify.Row{{
			Label:  p.Name,
			Action: action,
			Data:   fmt.Sprintf("%d", p.ID),
		}})
	}
	rows = append(rows, cancelRow())
	return f.sender.SendText(ctx, adminID, prompt, rows...)
}

func cancelRow() notify.Row {
	return notify.Row{{Label: btnCancel, Action: actions.AdminCancel}}
}
