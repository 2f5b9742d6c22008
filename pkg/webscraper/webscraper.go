// Package webscraper fetches a web page and extracts its title and
// paragraph text, so articles can be loaded by URL.
package webscraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

var ErrInvalidLink = errors.New("link is not a valid http(s) url")
var ErrNoContent = errors.New("page has no readable paragraphs")

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/113.0.0.0 Safari/537.36"

// pages past this size are cut off before parsing
const maxPageSize = 10 << 20 // 10 MiB

type Scraper struct {
	httpCli *http.Client
	maxBody int64
}

func New() *Scraper {
	return &Scraper{
		httpCli: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxBody: maxPageSize,
	}
}

// Scrape downloads link and returns the page title and its paragraphs
// joined by blank lines.
func (s *Scraper) Scrape(ctx context.Context, link string) (title string, body string, err error) {
	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", "", ErrInvalidLink
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpCli.Do(req)
	if err != nil {
		return "", "", errors.Wrap(err, "fetch page")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, s.maxBody))
	if err != nil {
		return "", "", errors.Wrap(err, "parse page")
	}

	title = pageTitle(doc, u)
	body = pageBody(doc)
	if body == "" {
		return "", "", ErrNoContent
	}
	return title, body, nil
}

func pageTitle(doc *goquery.Document, u *url.URL) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if og = strings.TrimSpace(og); og != "" {
			return og
		}
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return u.Hostname()
}

func pageBody(doc *goquery.Document) string {
	root := doc.Find("article")
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var paragraphs []string
	root.Find("p").Each(func(_ int, sel *goquery.Selection) {
		for _, node := range sel.Nodes {
			if p := strings.TrimSpace(nodeText(node)); p != "" {
				paragraphs = append(paragraphs, p)
			}
		}
	})
	return strings.Join(paragraphs, "\n\n")
}

// nodeText collects text nodes below n, skipping script and style subtrees.
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return ""
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}
