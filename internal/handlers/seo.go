package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"techmarks/internal/logger"
	"techmarks/internal/services"

	"github.com/gin-gonic/gin"
)

type SEOHandler struct {
	svc *services.BookmarkService
	log logger.Logger
}

func NewSEOHandler(svc *services.BookmarkService, log logger.Logger) *SEOHandler {
	return &SEOHandler{svc: svc, log: log}
}

// RobotsTxt 返回 robots.txt 内容
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /bookmark-create
Disallow: /bookmark-edit/
Disallow: /user/
Disallow: /login
Disallow: /signup

Sitemap: %s/sitemap.xml
`, siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML lists the bookmark list and every category page.
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	categories, err := h.svc.MasterCategories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		h.log.Error("sitemap failed", logger.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}

	now := time.Now().Format("2006-01-02")
	set := sitemapURLSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: siteURL + "/bookmarks", LastMod: now, ChangeFreq: "hourly", Priority: "1.0"},
		},
	}
	for _, category := range categories {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        fmt.Sprintf("%s/bookmarks/category/%d", siteURL, category.ID),
			LastMod:    now,
			ChangeFreq: "daily",
			Priority:   "0.8",
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}
