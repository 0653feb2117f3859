package menu

// Default returns the sample catalog served when no menu file is configured.
func Default() Config {
	return Config{
		Title: "Sidebar",
		Logo:  "/images/favicon.svg",
		Items: []Item{
			{ID: "dashboard", Label: "Dashboard", Icon: "📊", Section: "Main"},
			{ID: "users", Label: "Users", Icon: "👥", Section: "Main", Badge: "12"},
			{ID: "projects", Label: "Projects", Icon: "📂", Section: "Main"},
			{ID: "analytics", Label: "Analytics", Icon: "📈", Section: "Main"},
			{ID: "settings", Label: "Settings", Icon: "⚙️", Section: "System"},
			{ID: "profile", Label: "Profile", Icon: "👤", Section: "System"},
			{ID: "help", Label: "Help", Icon: "❓", Section: "Support"},
			{ID: "billing", Label: "Billing", Icon: "💳", Section: "Support", Disabled: true},
		},
		Footer: &Footer{
			Company: "Sidebar",
			Version: "v0.0.0",
		},
	}
}
