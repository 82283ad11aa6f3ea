package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/cmcs/claimserver/types"
)

func TestPaymentReportProducesPDF(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, status := range []int{types.StatusManagerApproved, types.StatusPaid, types.StatusSubmitted} {
		claim, _, err := f.service.Submit(ctx, f.lecturer.ID, 20, "", nil)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		claim.StatusID = status
		if _, err := f.claims.Update(ctx, claim); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	reports := NewReportService(f.claims, f.users)
	pdf, err := reports.PaymentReport(ctx)
	if err != nil {
		t.Fatalf("payment report: %v", err)
	}
	if len(pdf) == 0 || !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got %d bytes", len(pdf))
	}
}

func TestUserReportProducesPDF(t *testing.T) {
	f := newFixture()
	reports := NewReportService(f.claims, f.users)

	for _, role := range []string{"", types.RoleLecturer} {
		pdf, err := reports.UserReport(context.Background(), role)
		if err != nil {
			t.Fatalf("user report (role %q): %v", role, err)
		}
		if len(pdf) == 0 || !bytes.HasPrefix(pdf, []byte("%PDF")) {
			t.Fatalf("expected a PDF document for role %q", role)
		}
	}
}

func TestPaymentReportEmptyStillRenders(t *testing.T) {
	f := newFixture()
	reports := NewReportService(f.claims, f.users)

	pdf, err := reports.PaymentReport(context.Background())
	if err != nil {
		t.Fatalf("payment report: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("expected a PDF document")
	}
}
