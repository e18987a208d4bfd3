package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/fresque-scraper/internal/config"
	"github.com/pfrederiksen/fresque-scraper/internal/event"
	"github.com/pfrederiksen/fresque-scraper/internal/reject"
)

// Wix event widget selectors
const (
	fecCardLinks      = `li[data-hook="events-card"] div[data-hook="title"] a`
	fecDate           = `p[data-hook="event-full-date"]`
	fecLocation       = `p[data-hook="event-full-location"]`
	fecAboutText      = `div[data-hook="about-section-text"]`
	fecAbout          = `div[data-hook="about-section"]`
	fecSoldOut        = `div[data-hook="event-sold-out"]`
	fecEventPathToken = "/event-details/"
)

// fecLinks lists the event pages of a FEC listing. Cards pointing at
// another site cannot be extracted and are skipped.
func (s *Scraper) fecLinks(ctx context.Context, src config.Source) ([]string, error) {
	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	doc, err := s.fetch(ctx, src.URL, src.Family)
	if err != nil {
		return nil, err
	}

	return collectLinks(doc, fecCardLinks, base, func(u *url.URL) bool {
		return sameSite(u, base)
	}), nil
}

func parseFECEvent(doc *goquery.Document, link string) (event.Candidate, error) {
	var c event.Candidate

	_, pageID, _ := strings.Cut(link, fecEventPathToken)
	pageID = strings.Trim(pageID, "/")
	if pageID == "" {
		return c, reject.NewField(reject.MissingField, link, "id")
	}
	c.PageID = pageID

	c.Title = textOf(doc.Find("h1"))
	c.DateText = textOf(doc.Find(fecDate))

	locationSel := doc.Find(fecLocation)
	if locationSel.Length() > 0 && event.IsOnline(textOf(locationSel)) {
		c.Online = true
	} else {
		if locationSel.Length() == 0 {
			return c, reject.NewField(reject.MissingField, link, "location")
		}
		c.LocationText = textOf(locationSel)
	}

	description := doc.Find(fecAboutText)
	if description.Length() == 0 {
		description = doc.Find(fecAbout)
	}
	if description.Length() == 0 {
		return c, reject.NewField(reject.MissingField, link, "description")
	}
	c.Description = textOf(description)

	c.SoldOut = doc.Find(fecSoldOut).Length() > 0

	return c, nil
}
