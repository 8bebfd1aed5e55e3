// Package catalog provides the fixed list of destinations the app-bar
// search runs over.
package catalog

import (
	"fmt"
	"os"
	"slices"

	"github.com/poiesic/dashboard/core"
	"gopkg.in/yaml.v3"
)

var builtin = []core.Entry{
	{Id: 11, URL: "/apps/user/list", Icon: "tabler:users", Title: "User List", Category: core.CategoryAppsPages},
	{Id: 12, URL: "/apps/user/view/account", Icon: "tabler:user", Title: "User View - Account", Category: core.CategoryAppsPages},
	{Id: 13, URL: "/apps/user/view/security", Icon: "tabler:lock", Title: "User View - Security", Category: core.CategoryAppsPages},
	{Id: 14, URL: "/apps/user/view/billing-plan", Icon: "tabler:currency-dollar", Title: "User View - Billing & Plans", Category: core.CategoryAppsPages},
	{Id: 15, URL: "/apps/user/view/notification", Icon: "tabler:bell", Title: "User View - Notification", Category: core.CategoryAppsPages},
	{Id: 16, URL: "/apps/user/view/connection", Icon: "tabler:link", Title: "User View - Connection", Category: core.CategoryAppsPages},
	{Id: 17, URL: "/apps/roles", Icon: "tabler:shield", Title: "Roles", Category: core.CategoryAppsPages},
}

// Default returns a copy of the built-in catalog.
func Default() []core.Entry {
	return slices.Clone(builtin)
}

// Load reads a catalog from a YAML file holding a list of entries.
// The result is validated with core.ValidateCatalog.
func Load(path string) ([]core.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) ([]core.Entry, error) {
	var entries []core.Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := core.ValidateCatalog(entries); err != nil {
		return nil, err
	}
	return entries, nil
}
