package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"turfdesk/internal/domain"
	"turfdesk/internal/export"
	"turfdesk/internal/models"

	"github.com/rs/zerolog"
)

const (
	ReportPDF  = "pdf"
	ReportXLSX = "xlsx"
)

// ReportService turns data service stats into printable reports and renders
// per-booking invoices and share links.
type ReportService struct {
	data       domain.DataService
	exportsDir string
	logger     *zerolog.Logger

	mu       sync.RWMutex
	business models.Business
}

func NewReportService(data domain.DataService, business models.Business, exportsDir string, logger *zerolog.Logger) *ReportService {
	return &ReportService{
		data:       data,
		business:   business,
		exportsDir: exportsDir,
		logger:     logger,
	}
}

func (s *ReportService) Business() models.Business {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.business
}

func (s *ReportService) SetBusiness(biz models.Business) {
	s.mu.Lock()
	s.business = biz
	s.mu.Unlock()
}

// Stats loads the figures for [start, end]. Both dates are inclusive.
func (s *ReportService) Stats(ctx context.Context, start, end string) (*models.Stats, error) {
	from, err := parseDate(start)
	if err != nil {
		return nil, err
	}
	to, err := parseDate(end)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, invalidf("start date %s is after end date %s", start, end)
	}
	return s.data.GetStats(ctx, start, end)
}

// Export renders the period report as pdf or xlsx and returns the bytes with
// a suggested file name.
func (s *ReportService) Export(ctx context.Context, start, end, format string) ([]byte, string, error) {
	format = strings.ToLower(format)
	if format != ReportPDF && format != ReportXLSX {
		return nil, "", invalidf("unknown report format %q", format)
	}
	stats, err := s.Stats(ctx, start, end)
	if err != nil {
		return nil, "", err
	}

	var data []byte
	if format == ReportPDF {
		data, err = export.ReportPDF(stats, start, end, s.Business())
	} else {
		data, err = export.ReportXLSX(stats, start, end)
	}
	if err != nil {
		return nil, "", fmt.Errorf("export %s report: %w", format, err)
	}
	return data, export.ReportFileName(start, end, format), nil
}

// SaveReports writes both report formats for the period into the exports
// directory. Stats are fetched once.
func (s *ReportService) SaveReports(ctx context.Context, start, end string) ([]string, error) {
	stats, err := s.Stats(ctx, start, end)
	if err != nil {
		return nil, err
	}

	pdf, err := export.ReportPDF(stats, start, end, s.Business())
	if err != nil {
		return nil, fmt.Errorf("export pdf report: %w", err)
	}
	xlsx, err := export.ReportXLSX(stats, start, end)
	if err != nil {
		return nil, fmt.Errorf("export xlsx report: %w", err)
	}

	files := []struct {
		ext  string
		data []byte
	}{{ReportPDF, pdf}, {ReportXLSX, xlsx}}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path, err := export.SaveFile(s.exportsDir, export.ReportFileName(start, end, f.ext), f.data)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	s.logger.Info().Str("start", start).Str("end", end).Strs("files", paths).Msg("Reports saved")
	return paths, nil
}

// Invoice renders the bill of one booking.
func (s *ReportService) Invoice(ctx context.Context, bookingID, format string) ([]byte, string, error) {
	if format == "" {
		format = export.FormatA4
	}
	booking, err := s.data.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	data, err := export.Invoice(booking, format, s.Business())
	if err != nil {
		if errors.Is(err, export.ErrUnknownFormat) {
			return nil, "", invalid(err)
		}
		return nil, "", err
	}
	return data, export.InvoiceFileName(booking), nil
}

func (s *ReportService) ShareLink(ctx context.Context, bookingID string) (string, error) {
	booking, err := s.data.GetBooking(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(booking.CustomerMobile) == "" {
		return "", invalidf("booking %s has no customer mobile", bookingID)
	}
	return export.ShareLink(booking, s.Business().TurfName), nil
}
