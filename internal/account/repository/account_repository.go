package repository

import (
	"time"

	accountdomain "newsletterbox-backend/internal/account/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new instance of accountRepository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{
		db: db,
	}
}

// UpsertByIdentity creates or refreshes the account row for (userID, email).
// A refresh token is preserved when the provider did not re-issue one.
func (r *accountRepository) UpsertByIdentity(userID, email, provider string, accessToken, refreshToken string) (*accountdomain.Account, error) {
	var account accountdomain.Account
	err := r.db.Where("user_id = ? AND email = ?", userID, email).First(&account).Error

	now := time.Now()
	if err == gorm.ErrRecordNotFound {
		account = accountdomain.Account{
			ID:           uuid.New().String(),
			UserID:       userID,
			Email:        email,
			Provider:     provider,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			IsConnected:  true,
			Cadence: accountdomain.CadenceConfig{
				Enabled:      false,
				ScheduleType: accountdomain.ScheduleDisabled,
				Hour:         accountdomain.HourUnset,
				LastUpdated:  now,
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := r.db.Create(&account).Error; err != nil {
			return nil, err
		}
		return &account, nil
	} else if err != nil {
		return nil, err
	}

	account.AccessToken = accessToken
	if refreshToken != "" {
		account.RefreshToken = refreshToken
	}
	account.Provider = provider
	account.IsConnected = true
	account.UpdatedAt = now
	if err := r.db.Save(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindByID(id string) (*accountdomain.Account, error) {
	var account accountdomain.Account
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) ListConnected() ([]*accountdomain.Account, error) {
	var accounts []*accountdomain.Account
	err := r.db.Where("is_connected = ?", true).Order("created_at asc").Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepository) UpdateLastSync(id string, at time.Time) error {
	return r.db.Model(&accountdomain.Account{}).Where("id = ?", id).
		Updates(map[string]interface{}{"last_sync_at": at, "updated_at": time.Now()}).Error
}

func (r *accountRepository) UpdateCadence(id string, cadence accountdomain.CadenceConfig) error {
	cadence.LastUpdated = time.Now()
	return r.db.Model(&accountdomain.Account{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"cadence_enabled":    cadence.Enabled,
			"schedule_type":      cadence.ScheduleType,
			"schedule_hour":      cadence.Hour,
			"cadence_updated_at": cadence.LastUpdated,
			"updated_at":         time.Now(),
		}).Error
}

func (r *accountRepository) UpdateTokens(id string, accessToken, refreshToken string) error {
	updates := map[string]interface{}{"access_token": accessToken, "updated_at": time.Now()}
	if refreshToken != "" {
		updates["refresh_token"] = refreshToken
	}
	return r.db.Model(&accountdomain.Account{}).Where("id = ?", id).Updates(updates).Error
}

func (r *accountRepository) UpdateIMAPHost(id string, host string) error {
	return r.db.Model(&accountdomain.Account{}).Where("id = ?", id).
		Updates(map[string]interface{}{"imap_host": host, "updated_at": time.Now()}).Error
}

func (r *accountRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&accountdomain.Account{}).Error
}
