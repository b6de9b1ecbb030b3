package domain

import "time"

// Classroom is a class owned by its author and joined via a short code.
// The code is generated at creation and never changes; the author is a
// member from the moment the classroom exists.
type Classroom struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"uniqueIndex:idx_code,size:191;not null" json:"code"`
	Title       string    `gorm:"size:191;not null" json:"title"`
	Subject     string    `gorm:"size:191;not null" json:"subject"`
	SubCode     string    `gorm:"size:191;not null" json:"subCode"`
	Cover       string    `gorm:"size:512" json:"cover"`
	AuthorID    uint      `gorm:"index;not null" json:"authorId"`
	JoinedUsers []User    `gorm:"many2many:classroom_members;" json:"joinedUsers"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"-"`
}

// IsAuthor reports whether userID owns the classroom.
func (c *Classroom) IsAuthor(userID uint) bool {
	return c.AuthorID == userID
}

// IsMember reports whether userID appears in the membership list.
// JoinedUsers must have been loaded for this to be meaningful.
func (c *Classroom) IsMember(userID uint) bool {
	for _, u := range c.JoinedUsers {
		if u.ID == userID {
			return true
		}
	}
	return false
}
