package database

import (
	"gorm.io/gorm"

	"blockpress/auth"
	"blockpress/models"
)

func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Page{},
		&models.Block{},
		&models.Image{},
		&models.Site{},
	)
}

// Seed populates the reference data the application expects: the site
// row, the image catalog and an initial user set. It is a no-op when
// users already exist.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	users := []struct {
		name     string
		username string
		password string
		admin    bool
	}{
		{"Alice", "alice", "password", true},
		{"Bob", "bob", "password", false},
		{"Carla", "carla", "password", false},
		{"Dan", "dan", "password", true},
	}

	for _, u := range users {
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			return err
		}
		user := models.User{
			Name:         u.name,
			Username:     u.username,
			PasswordHash: hash,
			Admin:        u.admin,
		}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
	}

	images := []string{
		"/static/images/lake.jpg",
		"/static/images/forest.jpg",
		"/static/images/city.jpg",
		"/static/images/desert.jpg",
	}
	for _, url := range images {
		if err := db.Create(&models.Image{URL: url}).Error; err != nil {
			return err
		}
	}

	return db.Create(&models.Site{Name: "Blockpress"}).Error
}
