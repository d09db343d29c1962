package payroll

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// GeneratePayslipPDF renders a payslip for a paid salary and returns the
// file path. When an encryption key is configured the plaintext PDF is
// replaced with an encrypted copy.
func (s *Service) GeneratePayslipPDF(ctx context.Context, salaryID string) (string, error) {
	rec, err := s.store.SalaryByID(ctx, salaryID)
	if err != nil {
		return "", err
	}
	if rec.PaymentStatus != PaymentPaid {
		return "", ErrPayslipUnavailable
	}
	emp, err := s.store.EmployeeInfo(ctx, rec.EmployeeID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.payslipDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.payslipDir, rec.ID+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s %s", emp.FirstName, emp.LastName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", emp.Email))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %02d/%d", rec.Month, rec.Year))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Salary Type: %s", emp.SalaryType))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Present: %d  Absent: %d  Half Days: %d", rec.PresentDays, rec.AbsentDays, rec.HalfDays))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Gross: %.2f", rec.GrossSalary))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Bonus: %.2f  Incentives: %.2f  Overtime: %.2f", rec.Bonus, rec.Incentives, rec.OvertimeAmount))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Deductions: %.2f", rec.TotalDeductions))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Net Pay: %.2f", rec.NetSalary))

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}

	if s.crypto != nil && s.crypto.Configured() {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		encrypted, err := s.crypto.Encrypt(data)
		if err != nil {
			return "", err
		}
		encryptedPath := filePath + ".enc"
		if err := os.WriteFile(encryptedPath, encrypted, 0o600); err != nil {
			return "", err
		}
		if err := os.Remove(filePath); err != nil {
			return "", err
		}
		return encryptedPath, nil
	}

	return filePath, nil
}

// ReadPayslip loads a previously generated payslip, transparently
// decrypting when the stored copy is the encrypted variant.
func (s *Service) ReadPayslip(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".enc" {
		if s.crypto == nil || !s.crypto.Configured() {
			return nil, fmt.Errorf("payslip is encrypted but no key is configured")
		}
		return s.crypto.Decrypt(data)
	}
	return data, nil
}
