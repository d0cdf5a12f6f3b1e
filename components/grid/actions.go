package grid

// MenuAction is an entry in a panel's header menu.
type MenuAction string

const (
	ActionView   MenuAction = "view"
	ActionEdit   MenuAction = "edit"
	ActionClone  MenuAction = "clone"
	ActionDelete MenuAction = "delete"
)

var (
	viewMenuActions = []MenuAction{ActionView}
	editMenuActions = []MenuAction{ActionEdit, ActionClone, ActionDelete}
)

// ViewMenuActions are available on every dashboard.
func ViewMenuActions() []MenuAction {
	return append([]MenuAction(nil), viewMenuActions...)
}

// EditMenuActions change the dashboard structure.
func EditMenuActions() []MenuAction {
	return append([]MenuAction(nil), editMenuActions...)
}

// WidgetActions composes the header menu for the lock state.
func WidgetActions(locked bool) []MenuAction {
	actions := ViewMenuActions()
	if locked {
		return actions
	}
	return append(actions, editMenuActions...)
}
