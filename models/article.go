package models

import (
	"time"
)

// Categories is the fixed taxonomy, in the order fleet fetches run.
var Categories = []string{
	CategoryBusiness,
	CategoryEntertainment,
	CategoryGeneral,
	CategoryHealth,
	CategoryScience,
	CategorySports,
	CategoryTechnology,
}

const (
	CategoryBusiness      = "business"
	CategoryEntertainment = "entertainment"
	CategoryGeneral       = "general"
	CategoryHealth        = "health"
	CategoryScience       = "science"
	CategorySports        = "sports"
	CategoryTechnology    = "technology"
)

const (
	StatusActive   = "active"
	StatusArchived = "archived"
	StatusDeleted  = "deleted"
)

const (
	DefaultLanguage = "en"
	DefaultCountry  = "us"
)

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusArchived, StatusDeleted:
		return true
	}
	return false
}

// Source identifies the outlet an article came from, as reported upstream.
type Source struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty" gorm:"index"`
}

// Article is the canonical stored unit. URL is the identity key: ingestion
// never overwrites an existing URL, and "deletion" is a status transition.
type Article struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:500;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Content     string     `gorm:"type:text" json:"content,omitempty"`
	URL         string     `gorm:"size:2048;uniqueIndex;not null" json:"url"`
	URLToImage  string     `gorm:"size:2048" json:"urlToImage,omitempty"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `gorm:"index:idx_articles_category_published,priority:2;index:idx_articles_language_published,priority:2;index:idx_articles_status_published,priority:2" json:"publishedAt,omitempty"`

	Source Source `gorm:"embedded;embeddedPrefix:source_" json:"source"`

	Category string `gorm:"size:32;not null;default:general;index:idx_articles_category_published,priority:1" json:"category"`
	Language string `gorm:"size:8;not null;default:en;index:idx_articles_language_published,priority:1" json:"language"`
	Country  string `gorm:"size:8;not null;default:us" json:"country"`
	Status   string `gorm:"size:16;not null;default:active;index:idx_articles_status_published,priority:1" json:"status"`

	SavedBy []User        `gorm:"many2many:article_saves" json:"savedBy,omitempty"`
	ReadBy  []ReadReceipt `gorm:"foreignKey:ArticleID" json:"readBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReadReceipt records that a user has read an article. The composite
// unique index keeps at most one receipt per user per article.
type ReadReceipt struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ArticleID uint      `gorm:"not null;uniqueIndex:idx_read_receipts_article_user" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_read_receipts_article_user" json:"user"`
	ReadAt    time.Time `json:"readAt"`
}
