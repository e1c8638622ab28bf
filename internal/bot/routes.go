package bot

import (
	tg "github.com/m3rciful/ribbonbot/core/telegram"
	"github.com/m3rciful/ribbonbot/core/telegram/commands"
	"github.com/m3rciful/ribbonbot/core/telegram/router"
	"github.com/m3rciful/ribbonbot/internal/actions"
)

// BuildRegistry registers all commands and callback actions.
func BuildRegistry(h *Handlers) *tg.Registry {
	reg := tg.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Главное меню",
		Aliases:     []string{"menu"},
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     h.AdminMenu,
		Description: "Управление каталогом",
		AdminOnly:   true,
		Hidden:      true,
	})

	_ = reg.RegisterCallback(actions.MenuCatalog, h.OpenCatalog)
	_ = reg.RegisterCallback(actions.MenuAbout, h.About)
	_ = reg.RegisterCallback(actions.MenuContacts, h.Contacts)
	_ = reg.RegisterCallback(actions.Nav, h.Navigate)
	_ = reg.RegisterCallback(actions.Order, h.StartOrder)
	_ = reg.RegisterCallback(actions.SkipComment, h.SkipComment)
	_ = reg.RegisterCallback(actions.Decide, h.Decide)
	_ = reg.RegisterCallback(actions.AdminAdd, h.AdminAdd)
	_ = reg.RegisterCallback(actions.AdminList, h.AdminList)
	_ = reg.RegisterCallback(actions.AdminDelete, h.AdminDelete)
	_ = reg.RegisterCallback(actions.AdminDelPick, h.AdminDelPick)
	_ = reg.RegisterCallback(actions.AdminEdit, h.AdminEdit)
	_ = reg.RegisterCallback(actions.AdminEditPick, h.AdminEditPick)
	_ = reg.RegisterCallback(actions.AdminField, h.AdminField)
	_ = reg.RegisterCallback(actions.AdminCancel, h.AdminCancel)

	return reg
}

// BuildRoutes wires commands, the callback router, and the dialog-aware
// text/photo routes.
func BuildRoutes(h *Handlers, reg *tg.Registry) []tg.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		IsAdmin: h.roles.IsAdmin,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(h, reg, router.TextOptions{})...)
	return routes
}
