package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"turfdesk/internal/domain"
	"turfdesk/internal/models"
)

func parseDate(date string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return time.Time{}, invalidf("invalid date %q, expected YYYY-MM-DD", date)
	}
	return t, nil
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalidf("%s is required", field)
	}
	return nil
}

// findSpace looks a space up in the data service list.
func findSpace(ctx context.Context, data domain.DataService, id string) (*models.Space, error) {
	spaces, err := data.GetSpaces(ctx)
	if err != nil {
		return nil, err
	}
	for i := range spaces {
		if spaces[i].ID == id {
			return &spaces[i], nil
		}
	}
	return nil, fmt.Errorf("space %s: %w", id, ErrNotFound)
}
