package bot

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/ribbonbot/core/logger"
	"github.com/m3rciful/ribbonbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/ribbonbot/core/telegram/helpers"
	"github.com/m3rciful/ribbonbot/core/telegram/keyboard"
	"github.com/m3rciful/ribbonbot/internal/actions"
	"github.com/m3rciful/ribbonbot/internal/admin"
	"github.com/m3rciful/ribbonbot/internal/auth"
	"github.com/m3rciful/ribbonbot/internal/catalog"
	"github.com/m3rciful/ribbonbot/internal/config"
	"github.com/m3rciful/ribbonbot/internal/order"
	"github.com/m3rciful/ribbonbot/internal/session"
)

const (
	btnCatalog  = "🎀 Каталог"
	btnAbout    = "ℹ️ О нас"
	btnContacts = "📞 Контакты"
	btnPrev     = "⬅️"
	btnNext     = "➡️"
	btnOrder    = "🛒 Заказать"

	btnAdminAdd    = "➕ Добавить букет"
	btnAdminList   = "📋 Список букетов"
	btnAdminDelete = "🗑 Удалить букет"
	btnAdminEdit   = "✏️ Редактировать букет"

	msgEmptyCatalog = "Каталог пуст. Загляните позже!"
	msgAdminMenu    = "Панель управления каталогом:"
	msgDecided      = "Заказ обработан."
)

// Handlers binds the dialog flows and the catalog view to telebot endpoints.
type Handlers struct {
	shop     config.ShopConfig
	catalog  *catalog.Repository
	sessions *session.Store
	orders   *order.Flow
	admins   *admin.Flow
	roles    *auth.Roles
}

// NewHandlers wires the transport handlers.
func NewHandlers(shop config.ShopConfig, cat *catalog.Repository, sessions *session.Store, orders *order.Flow, admins *admin.Flow, roles *auth.Roles) *Handlers {
	return &Handlers{
		shop:     shop,
		catalog:  cat,
		sessions: sessions,
		orders:   orders,
		admins:   admins,
		roles:    roles,
	}
}

// Start greets the user and shows the main menu.
func (h *Handlers) Start(c tele.Context) error {
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: btnCatalog, Unique: actions.MenuCatalog}},
		[]keyboard.InlineBtn{
			{Text: btnAbout, Unique: actions.MenuAbout},
			{Text: btnContacts, Unique: actions.MenuContacts},
		},
	)
	return tghelpers.SendHTML(c, h.shop.WelcomeText, markup)
}

// AdminMenu shows the catalog management menu. The route is registered
// admin-only, so the role check already happened in middleware.
func (h *Handlers) AdminMenu(c tele.Context) error {
	markup := keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: btnAdminAdd, Unique: actions.AdminAdd},
		{Text: btnAdminList, Unique: actions.AdminList},
		{Text: btnAdminDelete, Unique: actions.AdminDelete},
		{Text: btnAdminEdit, Unique: actions.AdminEdit},
	})
	return tghelpers.SendHTML(c, msgAdminMenu, markup)
}

// OpenCatalog starts browsing at the first product.
func (h *Handlers) OpenCatalog(c tele.Context) error {
	return h.showAt(c, 0)
}

// About sends the shop description.
func (h *Handlers) About(c tele.Context) error {
	return tghelpers.SendHTML(c, h.shop.AboutText)
}

// Contacts sends the contact details.
func (h *Handlers) Contacts(c tele.Context) error {
	return tghelpers.SendHTML(c, h.shop.ContactsText)
}

// Navigate moves the catalog cursor to the index carried in the payload.
func (h *Handlers) Navigate(c tele.Context) error {
	index, err := callbacks.PayloadInt(c)
	if err != nil {
		return h.showAt(c, 0)
	}
	return h.showAt(c, index)
}

// showAt renders the product card at the given index, clamped into the
// catalog bounds, and records the cursor in the session.
func (h *Handlers) showAt(c tele.Context, index int) error {
	total := h.catalog.Len()
	if total == 0 {
		return tghelpers.SendHTML(c, msgEmptyCatalog)
	}
	if index < 0 {
		index = 0
	}
	if index >= total {
		index = total - 1
	}

	product, ok := h.catalog.At(index)
	if !ok {
		// A concurrent delete shrank the catalog between Len and At.
		return tghelpers.SendHTML(c, msgEmptyCatalog)
	}

	h.sessions.Update(c.Sender().ID, func(st *session.State) {
		st.StartBrowsing(index)
	})

	var nav []keyboard.InlineBtn
	if index > 0 {
		nav = append(nav, keyboard.InlineBtn{Text: btnPrev, Unique: actions.Nav, Data: strconv.Itoa(index - 1)})
	}
	if index < total-1 {
		nav = append(nav, keyboard.InlineBtn{Text: btnNext, Unique: actions.Nav, Data: strconv.Itoa(index + 1)})
	}
	rows := [][]keyboard.InlineBtn{}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, []keyboard.InlineBtn{{
		Text:   btnOrder,
		Unique: actions.Order,
		Data:   strconv.FormatInt(product.ID, 10),
	}})

	caption := fmt.Sprintf("<b>🎀 %s</b>\n\n📝 %s", product.Name, product.Description)
	photo := &tele.Photo{File: fileFor(product.PhotoRef), Caption: caption}
	return tghelpers.SendPhoto(c, photo, keyboard.InlineButtonsRows(rows...))
}

// StartOrder begins the order dialog for the product in the payload.
func (h *Handlers) StartOrder(c tele.Context) error {
	productID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return fmt.Errorf("order payload: %w", err)
	}
	return h.orders.Start(tghelpers.BuildContext(c), c.Sender().ID, productID)
}

// SkipComment completes the comment step without a comment.
func (h *Handlers) SkipComment(c tele.Context) error {
	return h.orders.SkipComment(tghelpers.BuildContext(c), c.Sender().ID)
}

// Decide applies an accept/reject verdict and drops the decision controls
// from the admin's message once the verdict lands.
func (h *Handlers) Decide(c tele.Context) error {
	orderID, verdict, err := decidePayload(c)
	if err != nil {
		return fmt.Errorf("decide payload: %w", err)
	}

	applied, err := h.orders.Decide(tghelpers.BuildContext(c), c.Sender().ID, orderID, verdict)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}
	if _, editErr := c.Bot().EditReplyMarkup(c.Message(), nil); editErr != nil {
		logger.TG.Warn("decision markup cleanup failed",
			slog.String("event", "order.decide"),
			slog.Int64("order_id", orderID),
			slog.String("err", editErr.Error()),
		)
	}
	return tghelpers.SendText(c, msgDecided)
}

func decidePayload(c tele.Context) (int64, string, error) {
	parts, err := callbacks.PayloadParts(c, "|")
	if err != nil {
		return 0, "", err
	}
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("want 2 parts, got %d", len(parts))
	}
	orderID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", err
	}
	return orderID, parts[1], nil
}

// AdminAdd starts the add-product dialog.
func (h *Handlers) AdminAdd(c tele.Context) error {
	return h.admins.StartAdd(tghelpers.BuildContext(c), c.Sender().ID)
}

// AdminList sends the catalog as id/name lines.
func (h *Handlers) AdminList(c tele.Context) error {
	return h.admins.List(tghelpers.BuildContext(c), c.Sender().ID)
}

// AdminDelete offers the product pick list for deletion.
func (h *Handlers) AdminDelete(c tele.Context) error {
	return h.admins.StartDelete(tghelpers.BuildContext(c), c.Sender().ID)
}

// AdminDelPick deletes the picked product.
func (h *Handlers) AdminDelPick(c tele.Context) error {
	productID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return fmt.Errorf("delete payload: %w", err)
	}
	return h.admins.Delete(tghelpers.BuildContext(c), c.Sender().ID, productID)
}

// AdminEdit offers the product pick list for editing.
func (h *Handlers) AdminEdit(c tele.Context) error {
	return h.admins.StartEdit(tghelpers.BuildContext(c), c.Sender().ID)
}

// AdminEditPick opens the field choice for the picked product.
func (h *Handlers) AdminEditPick(c tele.Context) error {
	productID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return fmt.Errorf("edit payload: %w", err)
	}
	return h.admins.PickEdit(tghelpers.BuildContext(c), c.Sender().ID, productID)
}

// AdminField records the picked field and asks for the new value.
func (h *Handlers) AdminField(c tele.Context) error {
	field := callbacks.CallbackPayload(c)
	return h.admins.PickField(tghelpers.BuildContext(c), c.Sender().ID, field)
}

// AdminCancel abandons the active admin dialog.
func (h *Handlers) AdminCancel(c tele.Context) error {
	return h.admins.Cancel(tghelpers.BuildContext(c), c.Sender().ID)
}

// ClaimText offers free-form input to the admin dialog first, then the order
// dialog. Explicit callback actions never pass through here.
func (h *Handlers) ClaimText(c tele.Context) (bool, error) {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	text := c.Text()

	if claimed, err := h.admins.ClaimText(ctx, userID, text); claimed || err != nil {
		return claimed, err
	}
	return h.orders.ClaimText(ctx, userID, text)
}

// ClaimPhoto downloads the largest photo variant and offers it to the admin
// add dialog.
func (h *Handlers) ClaimPhoto(c tele.Context) (bool, error) {
	photo := c.Message().Photo
	if photo == nil {
		return false, nil
	}
	// Skip the download entirely when no dialog is waiting on a photo.
	if h.sessions.ActiveFlow(c.Sender().ID) != session.FlowAdminAdd {
		return false, nil
	}

	rc, err := c.Bot().File(&photo.File)
	if err != nil {
		return true, fmt.Errorf("download photo: %w", err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return true, fmt.Errorf("read photo: %w", err)
	}

	return h.admins.ClaimPhoto(tghelpers.BuildContext(c), c.Sender().ID, raw, photo.File.FilePath)
}
