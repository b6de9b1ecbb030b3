package setup

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/divyansh1004/Manthan/internal/domain"
)

// MigrateDB brings the schema up to date. AutoMigrate creates the users,
// classrooms and classroom_members tables together with the unique indexes
// on username, email and code declared on the models.
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Classroom{}); err != nil {
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}
	return nil
}
