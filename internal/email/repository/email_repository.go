package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"onebox-backend/internal/email/domain"
)

const defaultPageSize = 50

// emailRepository implements EmailRepository on top of gorm/postgres
type emailRepository struct {
	db *gorm.DB
}

// NewEmailRepository creates a new instance of emailRepository
func NewEmailRepository(db *gorm.DB) EmailRepository {
	return &emailRepository{db: db}
}

func (r *emailRepository) Create(ctx context.Context, email *domain.Email) error {
	err := r.db.WithContext(ctx).Create(email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create email: %w", err)
	}
	return nil
}

func (r *emailRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&domain.Email{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update email: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *emailRepository) GetByID(ctx context.Context, id string) (*domain.Email, error) {
	var email domain.Email
	err := r.db.WithContext(ctx).First(&email, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get email: %w", err)
	}
	return &email, nil
}

func (r *emailRepository) ExistsByAccountAndUID(ctx context.Context, accountID string, uid uint32) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Email{}).
		Where("account_id = ? AND uid = ?", accountID, uid).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

func (r *emailRepository) Search(ctx context.Context, q domain.SearchQuery) ([]*domain.Email, int64, error) {
	db := r.db.WithContext(ctx).Model(&domain.Email{})

	if q.Query != "" {
		like := "%" + q.Query + "%"
		db = db.Where(
			"subject ILIKE ? OR body ILIKE ? OR from_name ILIKE ? OR from_address ILIKE ?",
			like, like, like, like,
		)
	}
	if q.AccountID != "" {
		db = db.Where("account_id = ?", q.AccountID)
	}
	if q.Folder != "" {
		db = db.Where("folder = ?", q.Folder)
	}
	if q.Category != "" {
		db = db.Where("category = ?", q.Category)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count emails: %w", err)
	}

	size := q.Size
	if size <= 0 {
		size = defaultPageSize
	}

	var emails []*domain.Email
	err := db.Order("date DESC").Offset(q.From).Limit(size).Find(&emails).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search emails: %w", err)
	}
	return emails, total, nil
}

func (r *emailRepository) CountByCategory(ctx context.Context) (map[domain.Category]int64, error) {
	var rows []struct {
		Category domain.Category
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Email{}).
		Select("category, count(*) as count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count emails by category: %w", err)
	}

	counts := make(map[domain.Category]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}
