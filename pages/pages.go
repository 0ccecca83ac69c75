package pages

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"blockpress/auth"
	"blockpress/cache"
	"blockpress/models"
)

const dateLayout = "2006-01-02"

type PageModule struct {
	db    *gorm.DB
	auth  *auth.AuthModule
	cache *cache.Store
}

// NewPageModule wires the page API. cacheStore may be nil when no
// front-office cache is configured.
func NewPageModule(db *gorm.DB, authModule *auth.AuthModule, cacheStore *cache.Store) *PageModule {
	return &PageModule{db: db, auth: authModule, cache: cacheStore}
}

func (m *PageModule) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/pages/published", m.listPublished)
		api.GET("/pages", m.auth.RequireAuth, m.listAll)
		api.GET("/pages/:id", m.auth.LoadUser, m.getPage)
		api.POST("/pages", m.auth.RequireAuth, m.createPage)
		api.PUT("/pages/:id", m.auth.RequireAuth, m.updatePage)
		api.DELETE("/pages/:id", m.auth.RequireAuth, m.deletePage)
	}
}

// PageSummary is a page row joined with its author's display name.
type PageSummary struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	AuthorID        int    `json:"authorId"`
	Author          string `json:"author"`
	CreationDate    string `json:"creation_date"`
	PublicationDate string `json:"publication_date"`
}

// PageDetail is a page with its ordered blocks.
type PageDetail struct {
	models.Page
	Author string         `json:"author,omitempty"`
	Blocks []models.Block `json:"blocks"`
}

type pageInput struct {
	Title           *string       `json:"title"`
	AuthorID        *int          `json:"authorId"`
	CreationDate    *string       `json:"creation_date"`
	PublicationDate *string       `json:"publication_date"`
	Blocks          *[]BlockInput `json:"blocks"`
}

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

func (in *pageInput) fieldErrors() []gin.H {
	var errs []gin.H
	if in.Title == nil || *in.Title == "" {
		errs = append(errs, gin.H{"path": "title", "msg": "Title is required"})
	}
	if in.AuthorID == nil {
		errs = append(errs, gin.H{"path": "authorId", "msg": "AuthorId must be an integer"})
	}
	if in.CreationDate == nil || !validDate(*in.CreationDate) {
		errs = append(errs, gin.H{"path": "creation_date", "msg": "Creation Date not valid"})
	}
	if in.PublicationDate == nil || (*in.PublicationDate != "" && !validDate(*in.PublicationDate)) {
		errs = append(errs, gin.H{"path": "publication_date", "msg": "Publication Date not valid"})
	}
	if in.Blocks == nil {
		errs = append(errs, gin.H{"path": "blocks", "msg": "Blocks must be an array of blocks"})
	}
	return errs
}

// published means a publication date is set and not in the future
// (date granularity).
func isPublished(p *models.Page) bool {
	if p.PublicationDate == "" {
		return false
	}
	pub, err := time.Parse(dateLayout, p.PublicationDate)
	if err != nil {
		return false
	}
	today, _ := time.Parse(dateLayout, time.Now().Format(dateLayout))
	return !pub.After(today)
}

func (m *PageModule) listPublished(c *gin.Context) {
	today := time.Now().Format(dateLayout)

	var result []PageSummary
	err := m.db.Table("pages").
		Select("pages.id, pages.title, pages.author_id, pages.creation_date, pages.publication_date, users.name AS author").
		Joins("JOIN users ON users.id = pages.author_id").
		Where("pages.publication_date <> '' AND pages.publication_date <= ?", today).
		Scan(&result).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while loading pages"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (m *PageModule) listAll(c *gin.Context) {
	var result []PageSummary
	err := m.db.Table("pages").
		Select("pages.id, pages.title, pages.author_id, pages.creation_date, pages.publication_date, users.name AS author").
		Joins("JOIN users ON users.id = pages.author_id").
		Scan(&result).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while loading pages"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (m *PageModule) getPage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Page not found."})
		return
	}

	var page models.Page
	if err := m.db.First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not found."})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while loading the page"})
		}
		return
	}

	// drafts are visible to authenticated users only
	if !isPublished(&page) {
		if _, ok := auth.CurrentUser(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
	}

	var author models.User
	if err := m.db.First(&author, page.AuthorID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while loading the page"})
		return
	}

	var blocks []models.Block
	if err := m.db.Where("page_id = ?", page.ID).Order("position").Find(&blocks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while loading the page"})
		return
	}

	c.JSON(http.StatusOK, PageDetail{Page: page, Author: author.Name, Blocks: blocks})
}

// publicationOrderValid writes the 422 response and returns false when
// a set publication date precedes the creation date.
func publicationOrderValid(c *gin.Context, page *models.Page) bool {
	if page.PublicationDate == "" {
		return true
	}
	pub, _ := time.Parse(dateLayout, page.PublicationDate)
	created, _ := time.Parse(dateLayout, page.CreationDate)
	if pub.Before(created) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Publication date cannot be earlier than Creation date"})
		return false
	}
	return true
}

// validateBlocks runs the semantic block checks shared by create and
// update: block shapes, page composition and image resolution. It
// writes the error response and returns false on failure.
func (m *PageModule) validateBlocks(c *gin.Context, blocks []BlockInput) bool {
	if !shapesValid(blocks) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid blocks."})
		return false
	}

	if !compositionValid(blocks) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Page must contain at least an header and another type of block."})
		return false
	}

	for _, b := range blocks {
		if b.Type != models.BlockImage {
			continue
		}
		var image models.Image
		if err := m.db.Where("url = ?", b.Content).First(&image).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Image not found."})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while resolving images"})
			}
			return false
		}
	}

	return true
}

// resolveAuthor fills page.AuthorID: admins may assign any existing
// user, everyone else authors their own pages. It writes the error
// response and returns false on failure.
func (m *PageModule) resolveAuthor(c *gin.Context, page *models.Page, requested int, caller *models.User) bool {
	if caller.Admin && requested != caller.ID {
		var author models.User
		if err := m.db.First(&author, requested).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while resolving the author"})
			}
			return false
		}
		page.AuthorID = requested
		return true
	}

	page.AuthorID = caller.ID
	return true
}

func (m *PageModule) createPage(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	var in pageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []gin.H{{"msg": "Request body is not valid JSON"}}})
		return
	}

	if errs := in.fieldErrors(); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}

	page := models.Page{
		Title:           *in.Title,
		CreationDate:    *in.CreationDate,
		PublicationDate: *in.PublicationDate,
	}

	if !publicationOrderValid(c, &page) {
		return
	}
	if !m.validateBlocks(c, *in.Blocks) {
		return
	}
	if !m.resolveAuthor(c, &page, *in.AuthorID, user) {
		return
	}

	rows := make([]models.Block, len(*in.Blocks))
	for i, b := range *in.Blocks {
		rows[i] = models.Block{Type: b.Type, Content: b.Content}
	}
	rows = Renumber(rows)

	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&page).Error; err != nil {
			return err
		}
		for i := range rows {
			rows[i].PageID = page.ID
			if err := tx.Create(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Database error during the creation of the page %s.", page.Title)})
		return
	}

	c.JSON(http.StatusCreated, PageDetail{Page: page, Blocks: rows})
}

func (m *PageModule) updatePage(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []gin.H{{"path": "id", "msg": "Id must be an integer"}}})
		return
	}

	var in pageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []gin.H{{"msg": "Request body is not valid JSON"}}})
		return
	}

	if errs := in.fieldErrors(); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}

	var stored models.Page
	if err := m.db.First(&stored, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not found."})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while loading the page"})
		}
		return
	}

	if *in.CreationDate != stored.CreationDate {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Creation date cannot be changed."})
		return
	}

	page := models.Page{
		ID:              stored.ID,
		Title:           *in.Title,
		CreationDate:    stored.CreationDate,
		PublicationDate: *in.PublicationDate,
	}

	if !publicationOrderValid(c, &page) {
		return
	}

	if stored.AuthorID != user.ID && !user.Admin {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not Authorized."})
		return
	}

	if !m.validateBlocks(c, *in.Blocks) {
		return
	}
	if !m.resolveAuthor(c, &page, *in.AuthorID, user) {
		return
	}

	rows := make([]models.Block, len(*in.Blocks))
	for i, b := range *in.Blocks {
		rows[i] = models.Block{PageID: page.ID, Type: b.Type, Content: b.Content}
	}
	rows = Renumber(rows)

	// The whole block set is replaced; the transaction keeps readers
	// from ever observing a page with no blocks.
	var changes int64
	err = m.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Page{}).Where("id = ?", page.ID).Updates(map[string]interface{}{
			"title":            page.Title,
			"author_id":        page.AuthorID,
			"publication_date": page.PublicationDate,
		})
		if res.Error != nil {
			return res.Error
		}
		changes = res.RowsAffected

		if err := tx.Where("page_id = ?", page.ID).Delete(&models.Block{}).Error; err != nil {
			return err
		}
		for i := range rows {
			if err := tx.Create(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Database error during the update of the page %d.", page.ID)})
		return
	}

	if m.cache != nil {
		m.cache.ClearPage(page.ID)
	}

	c.JSON(http.StatusOK, gin.H{"changes": changes})
}

func (m *PageModule) deletePage(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []gin.H{{"path": "id", "msg": "Id must be an integer"}}})
		return
	}

	var page models.Page
	if err := m.db.First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not found."})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while loading the page"})
		}
		return
	}

	if page.AuthorID != user.ID && !user.Admin {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not Authorized"})
		return
	}

	var changes int64
	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("page_id = ?", page.ID).Delete(&models.Block{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Page{}, page.ID)
		if res.Error != nil {
			return res.Error
		}
		changes = res.RowsAffected
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Database error during the deletion of the page %d.", page.ID)})
		return
	}

	if m.cache != nil {
		m.cache.ClearPage(page.ID)
	}

	c.JSON(http.StatusOK, gin.H{"changes": changes})
}
