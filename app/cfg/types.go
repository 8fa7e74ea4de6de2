package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	Port          string
	CronSecret    string
	CheckSchedule string

	// Telegram configuration
	TelegramToken  string
	TelegramAPIURL string

	// Portal configuration
	PortalURL     string
	PortalProfile string
	Headless      bool
	BrowserPath   string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
