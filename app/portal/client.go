package portal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Portal dates are dd/mm/yyyy.
const dateLayout = "02/01/2006"

// Client drives a browser session through the portal's search form. Every
// call opens a fresh session and always tears it down before returning.
type Client struct {
	profile   Profile
	provider  SessionProvider
	extractor *Extractor
}

func NewClient(profile Profile, provider SessionProvider) *Client {
	return &Client{
		profile:   profile,
		provider:  provider,
		extractor: NewExtractor(profile),
	}
}

// SearchByDate submits the form with both opening-date bounds set to date
// and returns one summary per well-formed result row. A portal timeout is
// reported as ErrPortalTimeout, never swallowed into an empty success.
func (c *Client) SearchByDate(date time.Time) ([]RecordSummary, error) {
	session, err := c.provider.NewSession()
	if err != nil {
		return nil, err
	}
	defer session.Close()

	formatted := date.Format(dateLayout)
	frame, err := c.submitSearch(session, func(frame playwright.FrameLocator) error {
		if err := frame.Locator(inputByName(c.profile.DateStartField)).Fill(formatted); err != nil {
			return fmt.Errorf("failed to fill start date: %w", err)
		}
		if err := frame.Locator(inputByName(c.profile.DateEndField)).Fill(formatted); err != nil {
			return fmt.Errorf("failed to fill end date: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows, err := frame.Locator(c.profile.ResultsTable + " tbody tr").All()
	if err != nil {
		return nil, fmt.Errorf("failed to read result rows: %w", err)
	}

	var summaries []RecordSummary
	for _, row := range rows {
		cells, err := row.Locator("td").AllInnerTexts()
		if err != nil {
			return nil, fmt.Errorf("failed to read result cells: %w", err)
		}
		// Header and malformed rows have fewer cells
		if len(cells) < c.profile.MinColumns {
			continue
		}
		summaries = append(summaries, RecordSummary{
			Number: cleanText(cells[c.profile.NumberColumn]),
			Agency: cleanText(cells[c.profile.AgencyColumn]),
			Status: cleanText(cells[c.profile.StatusColumn]),
			Object: cleanText(cells[c.profile.ObjectColumn]),
		})
	}

	slog.Debug("Portal search completed", "date", formatted, "rows", len(summaries))

	return summaries, nil
}

// FetchDetail searches for an exact bidding number, opens the first
// result's link and parses the detail page.
func (c *Client) FetchDetail(number string) (DetailSnapshot, error) {
	session, err := c.provider.NewSession()
	if err != nil {
		return DetailSnapshot{}, err
	}
	defer session.Close()

	frame, err := c.submitSearch(session, func(frame playwright.FrameLocator) error {
		if err := frame.Locator(inputByName(c.profile.NumberField)).Fill(number); err != nil {
			return fmt.Errorf("failed to fill bidding number: %w", err)
		}
		return nil
	})
	if err != nil {
		return DetailSnapshot{}, err
	}

	firstLink := frame.Locator(c.profile.ResultsTable + " tbody tr").First().Locator("td a").First()
	if err := firstLink.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(c.waitMillis())}); err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return DetailSnapshot{}, fmt.Errorf("%w for %q", ErrNoResults, number)
		}
		return DetailSnapshot{}, fmt.Errorf("failed to open first result: %w", err)
	}

	if err := frame.Locator(c.profile.DetailBlock).WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(c.waitMillis()),
	}); err != nil {
		return DetailSnapshot{}, c.wrapTimeout(err, "detail block did not appear")
	}

	markup, err := frame.Locator("body").InnerHTML()
	if err != nil {
		return DetailSnapshot{}, fmt.Errorf("failed to read detail markup: %w", err)
	}

	return c.extractor.Run([]byte(markup))
}

// submitSearch opens the form page, fills it through the callback, clicks
// search and waits for the results table inside the portal's iframe.
func (c *Client) submitSearch(session *Session, fill func(playwright.FrameLocator) error) (playwright.FrameLocator, error) {
	page := session.Page()

	if _, err := page.Goto(c.profile.FormURL, playwright.PageGotoOptions{
		Timeout: playwright.Float(float64(c.profile.NavTimeout) * 1000),
	}); err != nil {
		return nil, c.wrapTimeout(err, "failed to open search form")
	}

	frame := page.FrameLocator(c.profile.FrameSelector)

	if err := fill(frame); err != nil {
		return nil, c.wrapTimeout(err, "failed to fill search form")
	}

	if err := frame.Locator(c.profile.SearchButton).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(c.waitMillis()),
	}); err != nil {
		return nil, c.wrapTimeout(err, "failed to submit search")
	}

	if err := frame.Locator(c.profile.ResultsTable).WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(c.waitMillis()),
	}); err != nil {
		return nil, c.wrapTimeout(err, "results table did not appear")
	}

	return frame, nil
}

func (c *Client) waitMillis() float64 {
	return float64(c.profile.WaitTimeout) * 1000
}

func (c *Client) wrapTimeout(err error, msg string) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s", ErrPortalTimeout, msg)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func inputByName(name string) string {
	return fmt.Sprintf("input[name='%s']", name)
}
