package tui

// ViewType represents which dashboard section is active.
type ViewType int

const (
	ViewHome ViewType = iota
	ViewMessages
	ViewEvents
	ViewReports
)

// String returns the section name shown in the tab bar.
func (v ViewType) String() string {
	switch v {
	case ViewMessages:
		return "Messages"
	case ViewEvents:
		return "Events"
	case ViewReports:
		return "Reports"
	default:
		return "Home"
	}
}

// sections lists the navigable sections in home-screen order.
var sections = []ViewType{ViewMessages, ViewEvents, ViewReports}
