// Package actions declares the callback action codes shared between the
// dialog flows that embed them into controls and the transport layer that
// registers their handlers.
package actions

const (
	// MenuCatalog opens the product catalog from the main menu.
	MenuCatalog = "menu_catalog"
	// MenuAbout shows the about text.
	MenuAbout = "menu_about"
	// MenuContacts shows the contacts text.
	MenuContacts = "menu_contacts"

	// Nav moves the catalog cursor; payload is the target index.
	Nav = "shop_nav"
	// Order starts an order dialog; payload is the product id.
	Order = "shop_order"
	// SkipComment completes the comment step with the "-" placeholder.
	SkipComment = "order_skip"
	// Decide resolves a submitted order; payload is "<orderID>|<verdict>".
	Decide = "order_decide"

	// AdminAdd starts the add-product flow.
	AdminAdd = "admin_add"
	// AdminList sends the id: name catalog enumeration.
	AdminList = "admin_list"
	// AdminDelete presents the delete selection list.
	AdminDelete = "admin_delete"
	// AdminEdit presents the edit selection list.
	AdminEdit = "admin_edit"
	// AdminDelPick removes the selected product; payload is the product id.
	AdminDelPick = "admin_del"
	// AdminEditPick selects a product to edit; payload is the product id.
	AdminEditPick = "admin_edit_pick"
	// AdminField selects which field to edit; payload is the field name.
	AdminField = "admin_field"
	// AdminCancel abandons the active admin draft.
	AdminCancel = "admin_cancel"

	// VerdictAccept and VerdictReject are the Decide payload verdicts.
	VerdictAccept = "accept"
	VerdictReject = "reject"
)
