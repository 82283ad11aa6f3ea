package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/cmcs/claimserver/types"
)

// ReportService renders read-only PDF projections of claims and users.
// Generating a report never mutates anything.
type ReportService struct {
	claims ClaimStore
	users  UserStore
}

func NewReportService(claims ClaimStore, users UserStore) *ReportService {
	return &ReportService{claims: claims, users: users}
}

// PaymentReport renders the settlement report: every manager-approved
// or paid claim with a grand total row.
func (s *ReportService) PaymentReport(ctx context.Context) ([]byte, error) {
	claims, err := s.claims.ListByStatus(ctx, types.StatusManagerApproved, types.StatusPaid)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	writeReportTitle(pdf, "Claim Payment Report")

	headers := []string{"Claim ID", "Lecturer", "Hours", "Rate", "Total", "Status", "Submitted"}
	widths := []float64{25, 70, 25, 30, 35, 55, 37}
	writeTableHeader(pdf, headers, widths)

	pdf.SetFont("Helvetica", "", 10)
	var grandTotal float64
	for _, claim := range claims {
		lecturer := ""
		if claim.User != nil {
			lecturer = claim.User.FullName()
		}
		cells := []string{
			fmt.Sprintf("%d", claim.ID),
			lecturer,
			fmt.Sprintf("%.2f", claim.HoursWorked),
			fmt.Sprintf("R %.2f", claim.HourlyRate),
			fmt.Sprintf("R %.2f", claim.TotalAmount),
			claim.StatusName,
			claim.SubmissionDate.Format("2006-01-02"),
		}
		writeTableRow(pdf, cells, widths)
		grandTotal += claim.TotalAmount
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3], 8, "Grand Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 8, fmt.Sprintf("R %.2f", grandTotal), "1", 0, "L", false, 0, "")
	pdf.CellFormat(widths[5]+widths[6], 8, "", "1", 1, "L", false, 0, "")

	return renderPDF(pdf)
}

// UserReport renders the account directory, optionally restricted to
// one role.
func (s *ReportService) UserReport(ctx context.Context, role string) ([]byte, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if role != "" {
		filtered := users[:0]
		for _, user := range users {
			if user.Role == role {
				filtered = append(filtered, user)
			}
		}
		users = filtered
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	title := "User Directory"
	if role != "" {
		title = fmt.Sprintf("User Directory - %s", role)
	}
	writeReportTitle(pdf, title)

	headers := []string{"ID", "Name", "Email", "Phone", "Role", "Hourly Rate"}
	widths := []float64{20, 60, 75, 45, 40, 37}
	writeTableHeader(pdf, headers, widths)

	pdf.SetFont("Helvetica", "", 10)
	for _, user := range users {
		cells := []string{
			fmt.Sprintf("%d", user.ID),
			user.FullName(),
			user.Email,
			user.PhoneNumber,
			user.Role,
			fmt.Sprintf("R %.2f", user.HourlyRate),
		}
		writeTableRow(pdf, cells, widths)
	}

	return renderPDF(pdf)
}

func writeReportTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func writeTableHeader(pdf *fpdf.Fpdf, headers []string, widths []float64) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

func writeTableRow(pdf *fpdf.Fpdf, cells []string, widths []float64) {
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 8, cell, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func renderPDF(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
