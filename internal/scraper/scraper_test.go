package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/fresque-scraper/internal/config"
	"github.com/pfrederiksen/fresque-scraper/internal/event"
	"github.com/pfrederiksen/fresque-scraper/internal/metrics"
	"github.com/pfrederiksen/fresque-scraper/internal/reject"
)

func collect(s *Scraper, src config.Source) ([]Result, error) {
	var results []Result
	err := s.Scrape(context.Background(), src, func(r Result) error {
		results = append(results, r)
		return nil
	})
	return results, err
}

func mustDoc(t *testing.T, content string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		t.Fatalf("parsing HTML: %v", err)
	}
	return doc
}

const fecEventPage = `
<html><body>
	<h1> Fresque de l'Économie Circulaire </h1>
	<p data-hook="event-full-date">15 juil., 18:00 – 21:00 UTC+2</p>
	<p data-hook="event-full-location">Maison des associations, 12 rue Saint-Denis<br>75001 Paris, France</p>
	<div data-hook="about-section-text">Venez découvrir l'économie circulaire.</div>
</body></html>`

func TestParseFECEvent(t *testing.T) {
	link := "https://www.lafresquedeleconomiecirculaire.com/event-details/atelier-paris-2025-07-15"

	c, err := parseFECEvent(mustDoc(t, fecEventPage), link)
	if err != nil {
		t.Fatalf("parseFECEvent() error = %v", err)
	}

	if c.PageID != "atelier-paris-2025-07-15" {
		t.Errorf("PageID = %q", c.PageID)
	}
	if c.Title != "Fresque de l'Économie Circulaire" {
		t.Errorf("Title = %q", c.Title)
	}
	if c.DateText != "15 juil., 18:00 – 21:00 UTC+2" {
		t.Errorf("DateText = %q", c.DateText)
	}
	if c.LocationText != "Maison des associations, 12 rue Saint-Denis\n75001 Paris, France" {
		t.Errorf("LocationText = %q", c.LocationText)
	}
	if c.Online || c.SoldOut {
		t.Errorf("Online = %v, SoldOut = %v, want both false", c.Online, c.SoldOut)
	}
	if c.Description != "Venez découvrir l'économie circulaire." {
		t.Errorf("Description = %q", c.Description)
	}
}

func TestParseFECEvent_Variants(t *testing.T) {
	link := "https://www.lafresquedeleconomiecirculaire.com/event-details/abc"

	t.Run("online and sold out", func(t *testing.T) {
		doc := mustDoc(t, `<html><body>
			<h1>Atelier</h1>
			<p data-hook="event-full-location">En ligne</p>
			<div data-hook="about-section">Sur Zoom</div>
			<div data-hook="event-sold-out">Complet</div>
		</body></html>`)

		c, err := parseFECEvent(doc, link)
		if err != nil {
			t.Fatalf("parseFECEvent() error = %v", err)
		}
		if !c.Online || c.LocationText != "" {
			t.Errorf("Online = %v, LocationText = %q", c.Online, c.LocationText)
		}
		if !c.SoldOut {
			t.Error("SoldOut = false, want true")
		}
		if c.Description != "Sur Zoom" {
			t.Errorf("Description = %q, want fallback section", c.Description)
		}
		if c.DateText != "" {
			t.Errorf("DateText = %q, want empty when missing", c.DateText)
		}
	})

	tests := []struct {
		name      string
		link      string
		content   string
		wantField string
	}{
		{
			name:      "no id",
			link:      "https://www.lafresquedeleconomiecirculaire.com/event-details/",
			content:   fecEventPage,
			wantField: "id",
		},
		{
			name:      "no description",
			link:      link,
			content:   `<h1>A</h1><p data-hook="event-full-location">Paris</p>`,
			wantField: "description",
		},
		{
			name:      "no location",
			link:      link,
			content:   `<h1>A</h1><div data-hook="about-section">x</div>`,
			wantField: "location",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFECEvent(mustDoc(t, tt.content), tt.link)
			var rerr *reject.Error
			if !errors.As(err, &rerr) {
				t.Fatalf("parseFECEvent() error = %v, want *reject.Error", err)
			}
			if rerr.Kind != reject.MissingField || rerr.Field != tt.wantField {
				t.Errorf("got %v, want missing field %q", rerr, tt.wantField)
			}
		})
	}
}

const billetwebEventPage = `
<html><body>
	<div id="description_block">
		<div class="event_title center">
			<div class="event_name custom_font">Fresque Océane</div>
			<span><a href="#"><div>Thu Feb 12, 2026 from 07:17 PM to 09:00 PM</div></a></span>
		</div>
	</div>
	<div id="page_block_location"><div><div class="location_info"><div class="address">
		<a href="http://maps.google.fr/maps?q=Cafe+des+Sciences">Café des Sciences<br>3 rue de la Paix, 75002 Paris</a>
	</div></div></div></div>
	<div id="description">Atelier de 3h.</div>
</body></html>`

func TestParseBilletwebEvent(t *testing.T) {
	c, err := parseBilletwebEvent(mustDoc(t, billetwebEventPage), "https://www.billetweb.fr/fresque-oceane&multi=11433")
	if err != nil {
		t.Fatalf("parseBilletwebEvent() error = %v", err)
	}

	if c.PageID != "11433" {
		t.Errorf("PageID = %q, want 11433", c.PageID)
	}
	if c.Title != "Fresque Océane" {
		t.Errorf("Title = %q", c.Title)
	}
	if c.DateText != "Thu Feb 12, 2026 from 07:17 PM to 09:00 PM" {
		t.Errorf("DateText = %q", c.DateText)
	}
	if c.LocationText != "Café des Sciences\n3 rue de la Paix, 75002 Paris" {
		t.Errorf("LocationText = %q", c.LocationText)
	}
	if c.Online {
		t.Error("Online = true, want false")
	}
	if c.Description != "Atelier de 3h." {
		t.Errorf("Description = %q", c.Description)
	}
}

func TestParseBilletwebEvent_Online(t *testing.T) {
	page := strings.Replace(billetwebEventPage, "http://maps.google.fr/maps?q=Cafe+des+Sciences", "http://maps.google.fr/maps?q=", 1)
	page = strings.Replace(page, "Fresque Océane", "Fresque Océane - COMPLET", 1)

	c, err := parseBilletwebEvent(mustDoc(t, page), "https://www.billetweb.fr/fresque-oceane&multi=1")
	if err != nil {
		t.Fatalf("parseBilletwebEvent() error = %v", err)
	}
	if !c.Online || c.LocationText != "" {
		t.Errorf("Online = %v, LocationText = %q", c.Online, c.LocationText)
	}
	if !c.SoldOut {
		t.Error("SoldOut = false, want true from title")
	}
}

func TestParseBilletwebEvent_Rejections(t *testing.T) {
	link := "https://www.billetweb.fr/fresque-oceane&multi=1"

	tests := []struct {
		name     string
		content  string
		wantKind reject.Kind
	}{
		{
			name:     "gift card",
			content:  strings.Replace(billetwebEventPage, "Fresque Océane", "Carte cadeau", 1),
			wantKind: reject.NotAnEvent,
		},
		{
			name:     "no location block",
			content:  `<div id="description">x</div>`,
			wantKind: reject.MissingField,
		},
		{
			name:     "no description",
			content:  strings.Replace(billetwebEventPage, `id="description"`, `id="other"`, 1),
			wantKind: reject.MissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseBilletwebEvent(mustDoc(t, tt.content), link)
			if !errors.Is(err, tt.wantKind) {
				t.Errorf("parseBilletwebEvent() error = %v, want %v", err, tt.wantKind)
			}
		})
	}
}

func TestBilletwebPageID(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://www.billetweb.fr/fresque-oceane&multi=11433", "11433"},
		{"https://www.billetweb.fr/shop.php?event=fresque&multi=42", "42"},
		{"https://www.billetweb.fr/fresque-oceane-paris", "fresque-oceane-paris"},
		{"https://www.billetweb.fr/fresque-oceane&language=fr", "fresque-oceane"},
		{"https://www.billetweb.fr/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			if got := billetwebPageID(tt.link); got != tt.want {
				t.Errorf("billetwebPageID(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

func TestScrape_FEC(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "test-agent") {
			t.Errorf("User-Agent = %q, want test-agent", ua)
		}
		if lang := r.Header.Get("Accept-Language"); !strings.HasPrefix(lang, "fr") {
			t.Errorf("Accept-Language = %q, want French for fec", lang)
		}
		fmt.Fprintf(w, `<html><body><ul>
			<li data-hook="events-card"><div data-hook="title"><a href="/event-details/one">One</a></div></li>
			<li data-hook="events-card"><div data-hook="title"><a href="/event-details/one">One again</a></div></li>
			<li data-hook="events-card"><div data-hook="title"><a href="https://elsewhere.example/event-details/two">Two</a></div></li>
			<li data-hook="events-card"><div data-hook="title"><a href="%s/event-details/missing">Missing</a></div></li>
		</ul></body></html>`, server.URL)
	})
	mux.HandleFunc("/event-details/one", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fecEventPage)
	})
	mux.HandleFunc("/event-details/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	server = httptest.NewServer(mux)
	defer server.Close()

	m := metrics.New()
	s := New("test-agent", 0, m)
	src := config.Source{Name: "fec", Family: event.FamilyFEC, URL: server.URL + "/", ID: 300}

	results, err := collect(s, src)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (duplicate and external links dropped)", len(results))
	}

	ok := results[0]
	if ok.Err != nil {
		t.Fatalf("first result error = %v", ok.Err)
	}
	if ok.Candidate.SourceID != 300 || ok.Candidate.WorkshopType != 300 || ok.Candidate.Family != event.FamilyFEC {
		t.Errorf("unexpected candidate identity: %+v", ok.Candidate)
	}
	if ok.Candidate.RecordID() != "300-one" {
		t.Errorf("RecordID() = %q, want 300-one", ok.Candidate.RecordID())
	}
	if ok.Candidate.TicketsLink != ok.Link || ok.Candidate.Link != ok.Link {
		t.Errorf("links = %q / %q, want %q", ok.Candidate.Link, ok.Candidate.TicketsLink, ok.Link)
	}

	failed := results[1]
	if failed.Err == nil || reject.IsRejection(failed.Err) {
		t.Errorf("second result error = %v, want fetch error", failed.Err)
	}

	// listing plus one successful event page
	if got := m.Pages("fec"); got != 2 {
		t.Errorf("pages fetched = %v, want 2", got)
	}
}

func TestScrape_Billetweb(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pro/fresqueoceane", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><iframe id="event15247" src="/frame/15247"></iframe></body></html>`)
	})
	mux.HandleFunc("/frame/15247", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a class="naviguate" href="/multi_event.php?&multi=999">All sessions</a>
			<a class="naviguate" href="/fresque-oceane&multi=11433">Session</a>
		</body></html>`)
	})
	mux.HandleFunc("/fresque-oceane&multi=11433", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, billetwebEventPage)
	})

	var (
		mu        sync.Mutex
		languages []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		languages = append(languages, r.Header.Get("Accept-Language"))
		mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	defer server.Close()

	s := New("", 0, nil)
	src := config.Source{
		Name:   "oceane",
		Family: event.FamilyBilletweb,
		URL:    server.URL + "/pro/fresqueoceane",
		Iframe: "event15247",
		ID:     1,
	}

	results, err := collect(s, src)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (overview link skipped)", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("result error = %v", results[0].Err)
	}
	if got := results[0].Candidate.RecordID(); got != "1-11433" {
		t.Errorf("RecordID() = %q, want 1-11433", got)
	}

	mu.Lock()
	defer mu.Unlock()
	// listing, iframe and event page are all requested in English
	if len(languages) != 3 {
		t.Fatalf("got %d requests, want 3", len(languages))
	}
	for _, lang := range languages {
		if !strings.HasPrefix(lang, "en") {
			t.Errorf("Accept-Language = %q, want English for billetweb", lang)
		}
	}
}

func TestScrape_ListingErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `<html><body><p>no iframe here</p></body></html>`)
	}))
	defer server.Close()

	s := New("", 0, nil)

	tests := []struct {
		name string
		src  config.Source
	}{
		{"listing unavailable", config.Source{Name: "x", Family: event.FamilyFEC, URL: server.URL + "/down"}},
		{"iframe missing", config.Source{Name: "y", Family: event.FamilyBilletweb, URL: server.URL + "/", Iframe: "event1"}},
		{"unknown family", config.Source{Name: "z", Family: "eventbrite", URL: server.URL}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := collect(s, tt.src); err == nil {
				t.Error("Scrape() expected error")
			}
		})
	}
}

func TestTextOf(t *testing.T) {
	doc := mustDoc(t, `<p id="a">  Line one<br>Line two<br/>Line three  </p>`)
	if got := textOf(doc.Find("#a")); got != "Line one\nLine two\nLine three" {
		t.Errorf("textOf() = %q", got)
	}
	if got := textOf(doc.Find("#missing")); got != "" {
		t.Errorf("textOf(missing) = %q, want empty", got)
	}
	// the source document is left untouched
	if doc.Find("#a br").Length() != 2 {
		t.Error("textOf() modified the document")
	}
}

func TestScrape_HandlerStops(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			fmt.Fprint(w, `<html><body><ul>
				<li data-hook="events-card"><div data-hook="title"><a href="/event-details/one">One</a></div></li>
				<li data-hook="events-card"><div data-hook="title"><a href="/event-details/two">Two</a></div></li>
			</ul></body></html>`)
			return
		}
		fmt.Fprint(w, fecEventPage)
	}))
	defer server.Close()

	stop := errors.New("stop")
	calls := 0
	err := New("", 0, nil).Scrape(context.Background(),
		config.Source{Name: "fec", Family: event.FamilyFEC, URL: server.URL + "/", ID: 300},
		func(r Result) error {
			calls++
			return stop
		})

	if !errors.Is(err, stop) {
		t.Errorf("Scrape() error = %v, want handler error", err)
	}
	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
}
