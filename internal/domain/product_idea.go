package domain

import (
	"strconv"
	"time"
)

// ProductIdea is a row of the read-only ideas store (seeded from Product
// Hunt launches). Vector match procedures return the same columns plus a
// similarity.
type ProductIdea struct {
	ID             int64     `gorm:"column:id;primaryKey" json:"id"`
	Name           string    `gorm:"column:name" json:"name"`
	Description    string    `gorm:"column:description" json:"description"`
	Category       string    `gorm:"column:category" json:"category"`
	Difficulty     string    `gorm:"column:difficulty" json:"difficulty"`
	TargetAudience string    `gorm:"column:target_audience" json:"target_audience"`
	Tags           []string  `gorm:"column:tags;serializer:json;type:jsonb" json:"tags"`
	Upvotes        int       `gorm:"column:upvotes" json:"upvotes"`
	Similarity     float64   `gorm:"column:similarity;->" json:"similarity"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ProductIdea) TableName() string { return "product_ideas" }

func (p *ProductIdea) Idea() Idea {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return Idea{
		ID:             strconv.FormatInt(p.ID, 10),
		Title:          p.Name,
		Description:    p.Description,
		Category:       p.Category,
		Difficulty:     ParseDifficulty(p.Difficulty),
		TargetAudience: p.TargetAudience,
		Tags:           tags,
		Upvotes:        p.Upvotes,
		Source:         SourceProductHunt,
		Similarity:     p.Similarity,
		CreatedAt:      p.CreatedAt,
	}
}
