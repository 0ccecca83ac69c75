package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"blockpress/models"
)

const userKey = "user"

type AuthModule struct {
	db *gorm.DB
}

func NewAuthModule(db *gorm.DB) *AuthModule {
	return &AuthModule{db: db}
}

func (a *AuthModule) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/sessions", a.login)
		api.GET("/sessions/current", a.currentSession)
		api.DELETE("/sessions/current", a.logout)
	}
}

// RequireAuth aborts with 401 unless the session resolves to a user.
// The resolved user is stored in the gin context.
func (a *AuthModule) RequireAuth(c *gin.Context) {
	user, ok := a.resolveUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	c.Set(userKey, user)
	c.Next()
}

// LoadUser resolves the session user when present but never aborts.
// Handlers that serve both public and draft content use it.
func (a *AuthModule) LoadUser(c *gin.Context) {
	if user, ok := a.resolveUser(c); ok {
		c.Set(userKey, user)
	}
	c.Next()
}

// CurrentUser returns the user resolved by RequireAuth or LoadUser.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(userKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// The session persists the user id only; every request re-resolves the
// full record so role changes take effect immediately.
func (a *AuthModule) resolveUser(c *gin.Context) (*models.User, bool) {
	session := sessions.Default(c)
	userID := session.Get("user_id")
	if userID == nil {
		return nil, false
	}

	id, ok := userID.(int)
	if !ok {
		return nil, false
	}

	var user models.User
	if err := a.db.First(&user, id).Error; err != nil {
		return nil, false
	}

	return &user, true
}

func (a *AuthModule) login(c *gin.Context) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []gin.H{{"msg": "Username and password are required"}}})
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", credentials.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Wrong username and/or password."})
		return
	}

	if !CheckPasswordHash(credentials.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Wrong username and/or password."})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error during the login"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (a *AuthModule) currentSession(c *gin.Context) {
	user, ok := a.resolveUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated user!"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (a *AuthModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.Status(http.StatusOK)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
