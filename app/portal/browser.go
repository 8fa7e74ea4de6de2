package portal

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// SessionProvider opens browser sessions against the portal. The
// Playwright-backed provider is the only production implementation;
// selection and tuning happen through configuration.
type SessionProvider interface {
	NewSession() (*Session, error)
}

// Session owns one browser process and page. Close tears the whole stack
// down and must run on every exit path, success or failure.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

func (s *Session) Page() playwright.Page {
	return s.page
}

func (s *Session) Close() {
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.context != nil {
		_ = s.context.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.pw != nil {
		_ = s.pw.Stop()
	}
}

// PlaywrightProvider launches Chromium through the Playwright driver.
type PlaywrightProvider struct {
	Headless       bool
	ExecutablePath string
	UserAgent      string
}

func (p PlaywrightProvider) NewSession() (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(p.Headless),
		Args: []string{
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-gpu",
			"--disable-blink-features=AutomationControlled",
		},
	}
	if p.ExecutablePath != "" {
		opts.ExecutablePath = playwright.String(p.ExecutablePath)
	}

	browser, err := pw.Chromium.Launch(opts)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1920, Height: 1080},
	}
	if p.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(p.UserAgent)
	}

	context, err := browser.NewContext(ctxOpts)
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		_ = context.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &Session{pw: pw, browser: browser, context: context, page: page}, nil
}
