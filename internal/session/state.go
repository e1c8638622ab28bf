// Package session owns the per-identity conversational state.
//
// Every chat participant holds at most one active flow at a time; the state
// is an explicit typed variant instead of a set of loosely coupled maps, so
// the router never has to infer dialog progress from which fields happen to
// be populated.
package session

// Flow identifies which dialog currently owns a participant's input.
type Flow int

const (
	// FlowIdle indicates no active conversation.
	FlowIdle Flow = iota
	// FlowBrowsing indicates the participant is paging through the catalog.
	FlowBrowsing
	// FlowOrdering indicates an order draft is being collected.
	FlowOrdering
	// FlowAdminAdd indicates the admin add dialog is active.
	FlowAdminAdd
	// FlowAdminEdit indicates the admin edit dialog is active.
	FlowAdminEdit
)

// String returns the flow name for logging.
func (f Flow) String() string {
	switch f {
	case FlowIdle:
		return "idle"
	case FlowBrowsing:
		return "browsing"
	case FlowOrdering:
		return "ordering"
	case FlowAdminAdd:
		return "admin_add"
	case FlowAdminEdit:
		return "admin_edit"
	}
	return "unknown"
}

// BrowseState is the catalog cursor for one participant.
type BrowseState struct {
	Index int
}

// OrderStep enumerates the order dialog progression.
type OrderStep int

const (
	// OrderStepQuantity awaits a positive integer quantity.
	OrderStepQuantity OrderStep = iota
	// OrderStepName awaits the customer's name.
	OrderStepName
	// OrderStepPhone awaits a phone number starting with '+'.
	OrderStepPhone
	// OrderStepComment awaits a free-text comment or an explicit skip.
	OrderStepComment
)

// OrderDraft accumulates order fields across the dialog. Fields are populated
// strictly in Step order; the draft is consumed atomically once the comment
// step completes.
type OrderDraft struct {
	ProductID    int64
	Step         OrderStep
	Quantity     int
	CustomerName string
	Phone        string
	Comment      string
}

// AdminStep enumerates the admin dialog progression across both the add and
// edit flows.
type AdminStep int

const (
	// AdminStepPhoto awaits a product photo upload.
	AdminStepPhoto AdminStep = iota
	// AdminStepName awaits the new product name.
	AdminStepName
	// AdminStepDesc awaits the new product description.
	AdminStepDesc
	// AdminStepEditField awaits the field-choice callback.
	AdminStepEditField
	// AdminStepEditInput awaits the replacement value.
	AdminStepEditInput
)

// AdminDraft carries intermediate state for the admin add and edit flows.
type AdminDraft struct {
	Step      AdminStep
	PhotoRef  string
	Name      string
	ProductID int64
	Field     string
}

// State is the typed variant held per identity. Exactly one of the pointer
// fields is non-nil for a non-idle flow.
type State struct {
	Flow   Flow
	Browse *BrowseState
	Order  *OrderDraft
	Admin  *AdminDraft
}

// Reset returns the state to idle, dropping any draft.
func (s *State) Reset() {
	s.Flow = FlowIdle
	s.Browse = nil
	s.Order = nil
	s.Admin = nil
}

// StartBrowsing replaces the active variant with a catalog cursor.
func (s *State) StartBrowsing(index int) {
	s.Reset()
	s.Flow = FlowBrowsing
	s.Browse = &BrowseState{Index: index}
}

// StartOrder replaces the active variant with a fresh order draft.
func (s *State) StartOrder(productID int64) {
	s.Reset()
	s.Flow = FlowOrdering
	s.Order = &OrderDraft{ProductID: productID, Step: OrderStepQuantity}
}

// StartAdminAdd replaces the active variant with an add-flow draft.
func (s *State) StartAdminAdd() {
	s.Reset()
	s.Flow = FlowAdminAdd
	s.Admin = &AdminDraft{Step: AdminStepPhoto}
}

// StartAdminEdit replaces the active variant with an edit-flow draft.
func (s *State) StartAdminEdit(productID int64) {
	s.Reset()
	s.Flow = FlowAdminEdit
	s.Admin = &AdminDraft{Step: AdminStepEditField, ProductID: productID}
}

// clone produces a deep copy safe to hand out without the entry lock.
func (s State) clone() State {
	out := State{Flow: s.Flow}
	if s.Browse != nil {
		b := *s.Browse
		out.Browse = &b
	}
	if s.Order != nil {
		o := *s.Order
		out.Order = &o
	}
	if s.Admin != nil {
		a := *s.Admin
		out.Admin = &a
	}
	return out
}
