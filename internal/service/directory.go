package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indicae/backend/internal/models"
	"github.com/indicae/backend/internal/types"
)

// DirectoryService handles the profile directory: the set of all user
// profiles visible to an authenticated session.
type DirectoryService struct {
	db *gorm.DB
}

var _ IDirectoryService = (*DirectoryService)(nil)

// NewDirectoryService creates a new DirectoryService instance
func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{
		db: db,
	}
}

// ListProfiles returns every profile except the caller's own. Backs the
// directory's full reload; there is no incremental variant.
func (s *DirectoryService) ListProfiles(ctx context.Context, excludeUserID uuid.UUID) ([]*models.Profile, error) {
	var profiles []models.Profile
	query := s.db.WithContext(ctx)
	if excludeUserID != uuid.Nil {
		query = query.Where("user_id <> ?", excludeUserID)
	}
	if err := query.Order("first_name, last_name").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return toProfilePtrs(profiles), nil
}

// GetProfile retrieves a user's profile
func (s *DirectoryService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfilesByUserIDs resolves many profiles in one query, keyed by user id.
// Callers batching counterpart lookups depend on this staying a single
// round-trip. Missing ids are simply absent from the result map.
func (s *DirectoryService) GetProfilesByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*models.Profile, error) {
	result := make(map[uuid.UUID]*models.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var profiles []models.Profile
	if err := s.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for i := range profiles {
		result[profiles[i].UserID] = &profiles[i]
	}
	return result, nil
}

// UpdateProfile updates a user's profile
func (s *DirectoryService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}

	if req.Name != "" {
		profile.FirstName, profile.LastName = splitName(req.Name)
	}
	if req.DOB != nil {
		profile.DOB = *req.DOB
	}
	if req.City != nil {
		profile.City = *req.City
	}
	if req.State != nil {
		profile.State = *req.State
	}
	if req.Education != nil {
		profile.Education = *req.Education
	}
	if req.SoftSkills != nil {
		profile.SoftSkills = *req.SoftSkills
	}
	if req.HardSkills != nil {
		profile.HardSkills = *req.HardSkills
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, err
	}

	return &profile, nil
}

// SearchProfiles searches profiles by display name
func (s *DirectoryService) SearchProfiles(ctx context.Context, query string, selfID uuid.UUID) ([]*models.Profile, error) {
	var profiles []models.Profile
	dbQuery := s.db.WithContext(ctx).Where("user_id <> ?", selfID)
	if query != "" {
		pattern := "%" + query + "%"
		dbQuery = dbQuery.Where(
			s.db.Where("first_name LIKE ?", pattern).Or("last_name LIKE ?", pattern),
		)
	}
	if err := dbQuery.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return toProfilePtrs(profiles), nil
}

// SearchBySkill returns profiles listing the given skill among their soft or
// hard skills. Skills are stored as JSON arrays, so matching is a substring
// check on the serialized column; exact enough for the directory screen.
func (s *DirectoryService) SearchBySkill(ctx context.Context, skill string, selfID uuid.UUID) ([]*models.Profile, error) {
	var profiles []models.Profile
	pattern := "%\"" + skill + "\"%"
	err := s.db.WithContext(ctx).
		Where("user_id <> ?", selfID).
		Where(s.db.Where("soft_skills LIKE ?", pattern).Or("hard_skills LIKE ?", pattern)).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return toProfilePtrs(profiles), nil
}

func toProfilePtrs(profiles []models.Profile) []*models.Profile {
	result := make([]*models.Profile, len(profiles))
	for i := range profiles {
		result[i] = &profiles[i]
	}
	return result
}
