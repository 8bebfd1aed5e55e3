// Package navigation holds the dashboard's static menus.
package navigation

// Item is a menu node. Leaves carry a Path; groups carry Children.
type Item struct {
	Title    string `json:"title"`
	Icon     string `json:"icon,omitempty"`
	Path     string `json:"path,omitempty"`
	Children []Item `json:"children,omitempty"`
}

// Vertical returns the sidebar menu.
func Vertical() []Item {
	return []Item{
		{
			Title: "Kullanıcı",
			Icon:  "tabler:user",
			Children: []Item{
				{Title: "Tablo", Path: "/apps/user/list"},
				{Title: "Görüntüle", Children: userViewItems()},
			},
		},
		{Title: "Roller", Icon: "tabler:settings", Path: "/apps/roles"},
	}
}

// Horizontal returns the top bar menu.
func Horizontal() []Item {
	return []Item{
		{
			Title: "User",
			Icon:  "tabler:user",
			Children: []Item{
				{Title: "List", Path: "/apps/user/list"},
				{Title: "View", Children: userViewItems()},
			},
		},
		{Title: "Roles", Icon: "tabler:settings", Path: "/apps/roles"},
	}
}

func userViewItems() []Item {
	return []Item{
		{Title: "Account", Path: "/apps/user/view/account"},
		{Title: "Security", Path: "/apps/user/view/security"},
		{Title: "Billing & Plans", Path: "/apps/user/view/billing-plan"},
		{Title: "Notifications", Path: "/apps/user/view/notification"},
		{Title: "Connection", Path: "/apps/user/view/connection"},
	}
}

// UserMenu returns the entries of the avatar dropdown, in display order.
// Signing out is not a destination and is not listed.
func UserMenu() []Item {
	return []Item{
		{Title: "My Profile", Icon: "tabler:user-check", Path: "/pages/user-profile/profile"},
		{Title: "Settings", Icon: "tabler:settings", Path: "/pages/account-settings/account"},
		{Title: "Billing", Icon: "tabler:credit-card", Path: "/pages/account-settings/billing"},
		{Title: "Help", Icon: "tabler:lifebuoy", Path: "/pages/help-center"},
		{Title: "FAQ", Icon: "tabler:info-circle", Path: "/pages/faq"},
		{Title: "Pricing", Icon: "tabler:currency-dollar", Path: "/pages/pricing"},
	}
}

// Paths returns every leaf path in depth-first order.
func Paths(items []Item) []string {
	var paths []string
	for _, item := range items {
		if item.Path != "" {
			paths = append(paths, item.Path)
		}
		paths = append(paths, Paths(item.Children)...)
	}
	return paths
}

// Find returns the titles leading to path, outermost first.
func Find(items []Item, path string) ([]string, bool) {
	for _, item := range items {
		if item.Path != "" && item.Path == path {
			return []string{item.Title}, true
		}
		if trail, ok := Find(item.Children, path); ok {
			return append([]string{item.Title}, trail...), true
		}
	}
	return nil, false
}
