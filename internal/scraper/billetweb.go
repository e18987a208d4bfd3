package scraper

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/fresque-scraper/internal/config"
	"github.com/pfrederiksen/fresque-scraper/internal/event"
	"github.com/pfrederiksen/fresque-scraper/internal/reject"
)

const (
	billetwebEventLinks = "a.naviguate"
	billetwebLocation   = "#page_block_location > div > div.location_info > div.address > a"
	billetwebTitle      = "#description_block > div.event_title.center > div.event_name.custom_font"
	billetwebTime       = "#description_block > div.event_title.center > span > a > div"
	billetwebDesc       = "#description"

	// Links to the multi-session overview rather than to an event
	billetwebMultiOverview = "multi_event.php?&multi"
	// Virtual events carry an address link with an empty query
	billetwebNoAddress = "http://maps.google.fr/maps?q="
)

// billetwebLinks follows the listing iframe and lists its event pages
func (s *Scraper) billetwebLinks(ctx context.Context, src config.Source) ([]string, error) {
	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	doc, err := s.fetch(ctx, src.URL, src.Family)
	if err != nil {
		return nil, err
	}

	frame := doc.Find(fmt.Sprintf("iframe#%s, iframe[name=%q]", src.Iframe, src.Iframe)).First()
	srcAttr, ok := frame.Attr("src")
	if !ok || strings.TrimSpace(srcAttr) == "" {
		return nil, fmt.Errorf("iframe %s not found", src.Iframe)
	}
	frameURL, err := base.Parse(strings.TrimSpace(srcAttr))
	if err != nil {
		return nil, fmt.Errorf("invalid iframe src: %w", err)
	}

	frameDoc, err := s.fetch(ctx, frameURL.String(), src.Family)
	if err != nil {
		return nil, fmt.Errorf("fetching iframe: %w", err)
	}

	return collectLinks(frameDoc, billetwebEventLinks, frameURL, func(u *url.URL) bool {
		return !strings.Contains(u.String(), billetwebMultiOverview)
	}), nil
}

func parseBilletwebEvent(doc *goquery.Document, link string) (event.Candidate, error) {
	var c event.Candidate

	c.PageID = billetwebPageID(link)
	if c.PageID == "" {
		return c, reject.NewField(reject.MissingField, link, "id")
	}

	addressLink := doc.Find(billetwebLocation).First()
	if addressLink.Length() == 0 {
		return c, reject.NewField(reject.MissingField, link, "location")
	}

	c.Title = textOf(doc.Find(billetwebTitle))
	if event.IsGiftCard(c.Title) {
		return c, reject.New(reject.NotAnEvent, c.Title).WithDetail("gift card")
	}

	c.DateText = textOf(doc.Find(billetwebTime))

	href, _ := addressLink.Attr("href")
	if href == billetwebNoAddress || event.IsOnline(c.Title) {
		c.Online = true
	} else {
		c.LocationText = textOf(addressLink)
	}

	description := doc.Find(billetwebDesc)
	if description.Length() == 0 {
		return c, reject.NewField(reject.MissingField, link, "description")
	}
	c.Description = textOf(description)

	c.SoldOut = event.IsSoldOutTitle(c.Title)

	return c, nil
}

// billetwebPageID extracts the session id from an event link. Billetweb
// links carry it in a multi parameter, either in the query string or
// appended to the path with '&'. Otherwise the last path segment is used.
func billetwebPageID(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if m := u.Query().Get("multi"); m != "" {
		return m
	}

	segment := path.Base(u.Path)
	if slug, rest, ok := strings.Cut(segment, "&"); ok {
		if vals, err := url.ParseQuery(rest); err == nil {
			if m := vals.Get("multi"); m != "" {
				return m
			}
		}
		segment = slug
	}

	if segment == "/" || segment == "." {
		return ""
	}
	return segment
}
