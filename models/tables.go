package models

// Block type codes as stored and sent over the wire.
const (
	BlockHeader    = "h"
	BlockParagraph = "p"
	BlockImage     = "img"
)

type User struct {
	ID           int    `gorm:"primary_key;autoIncrement" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	Username     string `gorm:"unique;not null;index" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"` // json:"-" prevents password from being exposed in API
	Admin        bool   `gorm:"default:false" json:"admin"`
}

type Page struct {
	ID       int    `gorm:"primary_key;autoIncrement" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	AuthorID int    `gorm:"not null;index" json:"authorId"`
	// Dates are YYYY-MM-DD strings; an empty PublicationDate marks a draft.
	CreationDate    string `gorm:"not null" json:"creation_date"`
	PublicationDate string `json:"publication_date"`
}

type Block struct {
	ID      int    `gorm:"primary_key;autoIncrement" json:"id"`
	PageID  int    `gorm:"not null;index" json:"pageId"`
	Type    string `gorm:"not null" json:"type"`
	Content string `gorm:"type:text;not null" json:"content"`
	// 1-based, contiguous within a page.
	Position int `gorm:"not null" json:"position"`
}

type Image struct {
	ID  int    `gorm:"primary_key;autoIncrement" json:"id"`
	URL string `gorm:"unique;not null" json:"url"`
}

// Site holds the single site-wide settings row.
type Site struct {
	ID   int    `gorm:"primary_key;autoIncrement" json:"-"`
	Name string `gorm:"not null" json:"name"`
}
