package site

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"blockpress/auth"
	"blockpress/models"
)

type SiteModule struct {
	db   *gorm.DB
	auth *auth.AuthModule
}

func NewSiteModule(db *gorm.DB, authModule *auth.AuthModule) *SiteModule {
	return &SiteModule{db: db, auth: authModule}
}

func (s *SiteModule) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/site-name", s.getSiteName)
		api.PUT("/site-name", s.auth.RequireAuth, s.updateSiteName)
		api.GET("/images", s.auth.RequireAuth, s.listImages)
		api.GET("/users", s.auth.RequireAuth, s.requireAdmin, s.listUsers)
	}
}

// requireAdmin runs after RequireAuth and aborts for non-admin callers.
func (s *SiteModule) requireAdmin(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok || !user.Admin {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not Authorized"})
		return
	}
	c.Next()
}

func (s *SiteModule) getSiteName(c *gin.Context) {
	var site models.Site
	if err := s.db.First(&site).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while loading the site name"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": site.Name})
}

func (s *SiteModule) updateSiteName(c *gin.Context) {
	var input struct {
		Name string `json:"name"`
	}

	if err := c.ShouldBindJSON(&input); err != nil || input.Name == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []gin.H{
			{"path": "name", "msg": "Name must be a string. It's required field."},
		}})
		return
	}

	user, _ := auth.CurrentUser(c)
	if !user.Admin {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not Authorized"})
		return
	}

	var site models.Site
	if err := s.db.First(&site).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error during the update of the site name"})
		return
	}

	site.Name = input.Name
	result := s.db.Save(&site)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error during the update of the site name"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"changes": result.RowsAffected})
}

func (s *SiteModule) listImages(c *gin.Context) {
	var images []models.Image
	if err := s.db.Find(&images).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while loading images"})
		return
	}

	c.JSON(http.StatusOK, images)
}

func (s *SiteModule) listUsers(c *gin.Context) {
	var users []models.User
	if err := s.db.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error while loading users"})
		return
	}

	// the user list exposes id and name only
	result := make([]gin.H, len(users))
	for i, u := range users {
		result[i] = gin.H{"id": u.ID, "name": u.Name}
	}

	c.JSON(http.StatusOK, result)
}
