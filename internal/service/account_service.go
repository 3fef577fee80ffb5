package service

import (
	"context"
	"strings"

	"turfdesk/internal/domain"
	"turfdesk/internal/models"

	"github.com/rs/zerolog"
)

// AccountService signs the desk in and keeps the turf profile. Profile edits
// are pushed to the report service so the next invoice picks them up.
type AccountService struct {
	data    domain.DataService
	reports *ReportService
	logger  *zerolog.Logger
}

func NewAccountService(data domain.DataService, reports *ReportService, logger *zerolog.Logger) *AccountService {
	return &AccountService{data: data, reports: reports, logger: logger}
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*models.Profile, error) {
	if err := requireText("email", email); err != nil {
		return nil, err
	}
	if err := requireText("password", password); err != nil {
		return nil, err
	}
	profile, err := s.data.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}
	s.apply(profile)
	s.logger.Info().Str("email", profile.Email).Msg("Signed in")
	return profile, nil
}

// Register opens a turf account. Every field is required.
func (s *AccountService) Register(ctx context.Context, reg *models.Registration) (*models.Profile, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.TurfName = strings.TrimSpace(reg.TurfName)
	reg.Email = strings.TrimSpace(reg.Email)
	for _, f := range []struct{ field, value string }{
		{"name", reg.Name},
		{"turf name", reg.TurfName},
		{"email", reg.Email},
		{"password", reg.Password},
	} {
		if err := requireText(f.field, f.value); err != nil {
			return nil, err
		}
	}
	if !strings.Contains(reg.Email, "@") {
		return nil, invalidf("invalid email %q", reg.Email)
	}

	profile, err := s.data.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	s.apply(profile)
	s.logger.Info().Str("email", profile.Email).Str("turf", profile.TurfName).Msg("Turf registered")
	return profile, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if err := requireText("name", profile.Name); err != nil {
		return nil, err
	}
	profile.Name = strings.TrimSpace(profile.Name)
	profile.TurfName = strings.TrimSpace(profile.TurfName)

	updated, err := s.data.UpdateProfile(ctx, profile)
	if err != nil {
		return nil, err
	}
	s.apply(updated)
	s.logger.Info().Str("turf", updated.TurfName).Msg("Profile updated")
	return updated, nil
}

// apply copies the printable fields onto the invoice business. Blank fields
// keep what the config set; the UPI id only comes from config.
func (s *AccountService) apply(profile *models.Profile) {
	if s.reports == nil || profile == nil {
		return
	}
	biz := s.reports.Business()
	if profile.TurfName != "" {
		biz.TurfName = profile.TurfName
	}
	if profile.Address != "" {
		biz.Address = profile.Address
	}
	if profile.Phone != "" {
		biz.Phone = profile.Phone
	}
	s.reports.SetBusiness(biz)
}
