package repository

import (
	"time"

	newsletterdomain "newsletterbox-backend/internal/newsletter/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// newsletterRepository implements NewsletterRepository interface
type newsletterRepository struct {
	db *gorm.DB
}

// NewNewsletterRepository creates a new instance of newsletterRepository
func NewNewsletterRepository(db *gorm.DB) NewsletterRepository {
	return &newsletterRepository{
		db: db,
	}
}

func (r *newsletterRepository) Save(entry *newsletterdomain.Newsletter) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	// Duplicate deliveries of the same provider message are dropped.
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "message_id"}},
		DoNothing: true,
	}).Create(entry).Error
}

func (r *newsletterRepository) ListByAccount(accountID string, limit, offset int) ([]*newsletterdomain.Newsletter, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []*newsletterdomain.Newsletter
	err := r.db.Where("account_id = ?", accountID).
		Order("received_at desc").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *newsletterRepository) ListRecent(limit, offset int) ([]*newsletterdomain.Newsletter, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []*newsletterdomain.Newsletter
	err := r.db.Order("received_at desc").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
