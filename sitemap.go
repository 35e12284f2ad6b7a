package quotemill

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

const sitemapItemCap = 500

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// handleSitemap lists the embed page of every rendered item, newest first
// per type.
func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	urls := []sitemapURL{
		{Loc: BuildURL(a.Config.URL)},
	}
	for _, name := range a.Registry.Names() {
		items, err := a.Store.ListRenderedByType(ctx, name, sitemapItemCap)
		if err != nil {
			return err
		}
		for i := range items {
			item := &items[i]
			entry := sitemapURL{Loc: PublicArtifactURLs(a.Config.URL, item).Embed}
			if item.RenderedAt != nil {
				entry.LastMod = item.RenderedAt.UTC().Format("2006-01-02")
			}
			urls = append(urls, entry)
		}
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
