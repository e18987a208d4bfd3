package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/fresque-scraper/internal/config"
	"github.com/pfrederiksen/fresque-scraper/internal/event"
	"github.com/pfrederiksen/fresque-scraper/internal/logger"
	"github.com/pfrederiksen/fresque-scraper/internal/metrics"
)

const (
	UserAgent = config.DefaultUserAgent
	Timeout   = 30 * time.Second
)

// Page languages requested per family. The date extractors expect French
// month names from FEC and English separators from Billetweb.
var acceptLanguage = map[event.Family]string{
	event.FamilyFEC:       "fr-FR,fr;q=0.9",
	event.FamilyBilletweb: "en-US,en;q=0.9",
}

// Result is the outcome of scraping one event page. Err is a rejection
// (see package reject) when the page does not describe a usable event, or
// a plain error when the page could not be fetched.
type Result struct {
	Link      string
	Candidate event.Candidate
	Err       error
}

// Scraper fetches and parses listing and event pages
type Scraper struct {
	client  *resty.Client
	metrics *metrics.Metrics
}

// New creates a Scraper. Empty arguments fall back to UserAgent and Timeout.
func New(userAgent string, timeout time.Duration, m *metrics.Metrics) *Scraper {
	if userAgent == "" {
		userAgent = UserAgent
	}
	if timeout <= 0 {
		timeout = Timeout
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)

	return &Scraper{client: client, metrics: m}
}

// Handler receives each event page result as soon as the page is read.
// A non-nil return stops the scrape and is returned by Scrape.
type Handler func(Result) error

// Scrape visits every event linked from src's listing page, calling handle
// for each one before the next page is fetched. An error is returned when
// the listing itself cannot be read, when ctx is done, or when handle
// fails; per-event failures are reported through the results.
func (s *Scraper) Scrape(ctx context.Context, src config.Source, handle Handler) error {
	logger.Info("Processing page", logger.Fields{
		"source": src.Name,
		"family": string(src.Family),
		"url":    src.URL,
	})

	var links []string
	var err error
	switch src.Family {
	case event.FamilyFEC:
		links, err = s.fecLinks(ctx, src)
	case event.FamilyBilletweb:
		links, err = s.billetwebLinks(ctx, src)
	default:
		return fmt.Errorf("unsupported family: %s", src.Family)
	}
	if err != nil {
		return fmt.Errorf("scraping %s: %w", src.Name, err)
	}

	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return err
		}

		logger.Debug("Processing event page", logger.Fields{"link": link})
		c, pageErr := s.scrapeEvent(ctx, src, link)
		if err := handle(Result{Link: link, Candidate: c, Err: pageErr}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scraper) scrapeEvent(ctx context.Context, src config.Source, link string) (event.Candidate, error) {
	doc, err := s.fetch(ctx, link, src.Family)
	if err != nil {
		return event.Candidate{}, err
	}

	var c event.Candidate
	if src.Family == event.FamilyFEC {
		c, err = parseFECEvent(doc, link)
	} else {
		c, err = parseBilletwebEvent(doc, link)
	}
	if err != nil {
		return c, err
	}

	c.Family = src.Family
	c.SourceID = src.ID
	c.WorkshopType = src.ID
	c.Link = link
	if c.TicketsLink == "" {
		c.TicketsLink = link
	}
	return c, nil
}

// fetch retrieves pageURL and parses it as HTML
func (s *Scraper) fetch(ctx context.Context, pageURL string, family event.Family) (*goquery.Document, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Accept-Language", acceptLanguage[family]).
		Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}
	s.metrics.PageFetched(string(family))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// collectLinks resolves the href of every match of selector against base,
// dropping duplicates and entries rejected by keep.
func collectLinks(doc *goquery.Document, selector string, base *url.URL, keep func(*url.URL) bool) []string {
	seen := make(map[string]bool)
	links := make([]string, 0)

	doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		u, err := base.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		if keep != nil && !keep(u) {
			return
		}
		link := u.String()
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	})

	return links
}

// textOf returns the trimmed text of sel with <br> rendered as a newline
func textOf(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	clone := sel.First().Clone()
	clone.Find("br").Each(func(i int, br *goquery.Selection) {
		br.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: "\n"})
	})
	return strings.TrimSpace(clone.Text())
}

func sameSite(a, b *url.URL) bool {
	return strings.TrimPrefix(strings.ToLower(a.Hostname()), "www.") ==
		strings.TrimPrefix(strings.ToLower(b.Hostname()), "www.")
}
