package frontoffice

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gorm.io/gorm"

	"blockpress/cache"
	"blockpress/models"
)

const dateLayout = "2006-01-02"

// markdown renderer for paragraph blocks
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
)

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.SiteName}}</title></head>
<body>
<h1>{{.SiteName}}</h1>
<ul>
{{range .Pages}}<li><a href="/p/{{.ID}}">{{.Title}}</a> &mdash; {{.Author}}, {{.PublicationDate}}</li>
{{end}}</ul>
</body>
</html>
`))

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}} &middot; {{.SiteName}}</title></head>
<body>
<article>
<h1>{{.Title}}</h1>
<p class="byline">{{.Author}}, {{.PublicationDate}}</p>
{{range .Blocks}}{{.}}
{{end}}</article>
<p><a href="/">{{.SiteName}}</a></p>
</body>
</html>
`))

type FrontofficeModule struct {
	db    *gorm.DB
	cache *cache.Store
}

// NewFrontofficeModule serves the public read-only views of published
// pages. cacheStore may be nil to disable response caching.
func NewFrontofficeModule(db *gorm.DB, cacheStore *cache.Store) *FrontofficeModule {
	return &FrontofficeModule{db: db, cache: cacheStore}
}

func (m *FrontofficeModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/", m.index)
	if m.cache != nil {
		router.GET("/p/:id", m.cache.Middleware(), m.page)
	} else {
		router.GET("/p/:id", m.page)
	}
}

type listedPage struct {
	ID              int
	Title           string
	Author          string
	PublicationDate string
}

func (m *FrontofficeModule) siteName() string {
	var site models.Site
	if err := m.db.First(&site).Error; err != nil {
		return "Blockpress"
	}
	return site.Name
}

func (m *FrontofficeModule) index(c *gin.Context) {
	today := time.Now().Format(dateLayout)

	var pages []listedPage
	err := m.db.Table("pages").
		Select("pages.id, pages.title, pages.publication_date, users.name AS author").
		Joins("JOIN users ON users.id = pages.author_id").
		Where("pages.publication_date <> '' AND pages.publication_date <= ?", today).
		Order("pages.publication_date DESC").
		Scan(&pages).Error
	if err != nil {
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, gin.H{"SiteName": m.siteName(), "Pages": pages}); err != nil {
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (m *FrontofficeModule) page(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "page not found")
		return
	}

	var page models.Page
	if err := m.db.First(&page, id).Error; err != nil {
		c.String(http.StatusNotFound, "page not found")
		return
	}

	// the front office never shows drafts or future pages
	if page.PublicationDate == "" || page.PublicationDate > time.Now().Format(dateLayout) {
		c.String(http.StatusNotFound, "page not found")
		return
	}

	var author models.User
	if err := m.db.First(&author, page.AuthorID).Error; err != nil {
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}

	var blocks []models.Block
	if err := m.db.Where("page_id = ?", page.ID).Order("position").Find(&blocks).Error; err != nil {
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}

	rendered := make([]template.HTML, 0, len(blocks))
	for _, b := range blocks {
		rendered = append(rendered, renderBlock(b))
	}

	var buf bytes.Buffer
	err = pageTmpl.Execute(&buf, gin.H{
		"SiteName":        m.siteName(),
		"Title":           page.Title,
		"Author":          author.Name,
		"PublicationDate": page.PublicationDate,
		"Blocks":          rendered,
	})
	if err != nil {
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func renderBlock(b models.Block) template.HTML {
	switch b.Type {
	case models.BlockHeader:
		return template.HTML("<h2>" + template.HTMLEscapeString(b.Content) + "</h2>")
	case models.BlockImage:
		return template.HTML(`<img src="` + template.HTMLEscapeString(b.Content) + `" alt="">`)
	default:
		return template.HTML(renderMarkdown(b.Content))
	}
}

func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		// on error fall back to the raw text so the page still renders
		return template.HTMLEscapeString(content)
	}
	return buf.String()
}
