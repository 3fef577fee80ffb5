package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"turfdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newReports(data *mockData, dir string) *ReportService {
	return NewReportService(data, models.Business{TurfName: "Green Arena", UPIID: "arena@upi"}, dir, testLogger())
}

func TestReportService_Stats(t *testing.T) {
	ctx := context.Background()
	data := new(mockData)
	svc := newReports(data, t.TempDir())

	_, err := svc.Stats(ctx, "2025-03-10", "2025-03-01")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Stats(ctx, "2025-03-01", "soon")
	assert.ErrorIs(t, err, ErrValidation)
	data.AssertNotCalled(t, "GetStats", mock.Anything, mock.Anything, mock.Anything)

	data.On("GetStats", mock.Anything, "2025-03-01", "2025-03-01").Return(&models.Stats{}, nil).Once()
	_, err = svc.Stats(ctx, "2025-03-01", "2025-03-01")
	require.NoError(t, err)
}

func TestReportService_ExportAndSave(t *testing.T) {
	ctx := context.Background()
	data := new(mockData)
	dir := filepath.Join(t.TempDir(), "exports")
	svc := newReports(data, dir)
	data.On("GetStats", mock.Anything, "2025-03-01", "2025-03-31").Return(&models.Stats{}, nil)

	pdf, name, err := svc.Export(ctx, "2025-03-01", "2025-03-31", "PDF")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Equal(t, "Report_2025-03-01_to_2025-03-31.pdf", name)

	_, _, err = svc.Export(ctx, "2025-03-01", "2025-03-31", "csv")
	assert.ErrorIs(t, err, ErrValidation)

	paths, err := svc.SaveReports(ctx, "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	assert.True(t, strings.HasSuffix(paths[1], ".xlsx"))
}

func TestReportService_InvoiceAndShare(t *testing.T) {
	ctx := context.Background()
	data := new(mockData)
	svc := newReports(data, t.TempDir())
	booking := &models.Booking{
		ID: "b1", CustomerName: "Ravi", CustomerMobile: "9876543210", Date: day,
		Slots: []string{slotA}, TotalAmount: 500, PaidAmount: 100, Status: models.StatusActive,
	}
	data.On("GetBooking", mock.Anything, "b1").Return(booking, nil)
	data.On("GetBooking", mock.Anything, "b2").Return(&models.Booking{ID: "b2"}, nil)

	pdf, name, err := svc.Invoice(ctx, "b1", "")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.True(t, strings.HasPrefix(name, "Invoice_Ravi_"))

	_, _, err = svc.Invoice(ctx, "b1", "letter")
	assert.ErrorIs(t, err, ErrValidation)

	link, err := svc.ShareLink(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/919876543210?text="))
	assert.Contains(t, link, "Green%20Arena")

	_, err = svc.ShareLink(ctx, "b2")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAccountService(t *testing.T) {
	ctx := context.Background()
	data := new(mockData)
	reports := newReports(data, t.TempDir())
	svc := NewAccountService(data, reports, testLogger())

	_, err := svc.Login(ctx, "", "x")
	assert.ErrorIs(t, err, ErrValidation)

	data.On("Login", mock.Anything, "desk@arena.in", "secret").Return(&models.Profile{
		Email: "desk@arena.in", TurfName: "Arena One", Phone: "9000000000",
	}, nil).Once()
	_, err = svc.Login(ctx, " desk@arena.in ", "secret")
	require.NoError(t, err)

	biz := reports.Business()
	assert.Equal(t, "Arena One", biz.TurfName)
	assert.Equal(t, "9000000000", biz.Phone)
	assert.Equal(t, "arena@upi", biz.UPIID)

	data.On("UpdateProfile", mock.Anything, mock.Anything).Return(&models.Profile{Name: "Owner", Address: "MG Road"}, nil).Once()
	_, err = svc.UpdateProfile(ctx, &models.Profile{Name: " Owner ", Address: "MG Road"})
	require.NoError(t, err)
	assert.Equal(t, "MG Road", reports.Business().Address)
	assert.Equal(t, "Arena One", reports.Business().TurfName)

	_, err = svc.UpdateProfile(ctx, &models.Profile{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAccountService_Register(t *testing.T) {
	ctx := context.Background()
	data := new(mockData)
	reports := newReports(data, t.TempDir())
	svc := NewAccountService(data, reports, testLogger())

	cases := []struct {
		name string
		reg  models.Registration
	}{
		{"NoName", models.Registration{TurfName: "Arena", Email: "a@b.in", Password: "pw"}},
		{"NoTurf", models.Registration{Name: "Owner", Email: "a@b.in", Password: "pw"}},
		{"NoPassword", models.Registration{Name: "Owner", TurfName: "Arena", Email: "a@b.in"}},
		{"BadEmail", models.Registration{Name: "Owner", TurfName: "Arena", Email: "owner", Password: "pw"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, &tc.reg)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	data.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)

	want := &models.Registration{Name: "Owner", TurfName: "Night Arena", Email: "owner@arena.in", Password: "pw"}
	data.On("Register", mock.Anything, want).Return(&models.Profile{
		Name: "Owner", Email: "owner@arena.in", TurfName: "Night Arena",
	}, nil).Once()

	profile, err := svc.Register(ctx, &models.Registration{Name: " Owner ", TurfName: "Night Arena ", Email: " owner@arena.in", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "owner@arena.in", profile.Email)
	assert.Equal(t, "Night Arena", reports.Business().TurfName)
	data.AssertExpectations(t)
}
