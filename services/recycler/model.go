package recycler

import "time"

type Recycler struct {
	ID         string     `gorm:"column:id;primaryKey" json:"id"`
	Name       string     `gorm:"column:name" json:"name"`
	Email      string     `gorm:"column:email;uniqueIndex" json:"email"`
	Verified   bool       `gorm:"column:verified" json:"verified"`
	VerifiedAt *time.Time `gorm:"column:verified_at" json:"verifiedAt,omitempty"`
	PhotoKey   string     `gorm:"column:photo_key" json:"-"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

func (Recycler) TableName() string { return "recyclers" }

type Verification struct {
	RecyclerID string     `json:"recyclerId"`
	Verified   bool       `json:"verified"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
}

type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
