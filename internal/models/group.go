package models

// GroupColors are the color tags a group may carry. Presentation maps these
// to actual theme colors; the ledger only validates membership in the list.
var GroupColors = []string{
	"blue", "green", "violet", "orange", "pink",
	"teal", "red", "yellow", "indigo",
}

// GroupIcons are the icon tags a group may carry.
var GroupIcons = []string{
	"users", "home", "briefcase", "coffee", "heart",
	"plane", "car", "shopping-bag", "utensils",
}

// Group represents a named collection of users sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Parivar", "Roommates").
	Name string `json:"name"`

	// Description is a short free-form description.
	Description string `json:"description"`

	// LeaderID is the id of the member who leads the group.
	// Invariant: always the id of some member in MemberIDs.
	LeaderID string `json:"leader_id"`

	// MemberIDs is the ordered list of member user ids. Details are
	// resolved through the user registry, never duplicated here.
	MemberIDs []string `json:"member_ids"`

	// Color is the group's color tag (one of GroupColors).
	Color string `json:"color"`

	// Icon is the group's icon tag (one of GroupIcons).
	Icon string `json:"icon"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`
}

// HasMember reports whether the given user id is a member of the group.
func (g *Group) HasMember(userID string) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ValidGroupColor reports whether color is one of the known color tags.
func ValidGroupColor(color string) bool {
	for _, c := range GroupColors {
		if c == color {
			return true
		}
	}
	return false
}

// ValidGroupIcon reports whether icon is one of the known icon tags.
func ValidGroupIcon(icon string) bool {
	for _, i := range GroupIcons {
		if i == icon {
			return true
		}
	}
	return false
}
