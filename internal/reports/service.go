package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
	"github.com/grcworks/requirement-gathering-backend/internal/progress"
	"github.com/grcworks/requirement-gathering-backend/internal/tenant"
)

// Export formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// Report is a rendered download.
type Report struct {
	FileName    string
	ContentType string
	Data        []byte
}

type Service struct {
	progress *progress.Service
	tenants  *tenant.Repository
}

func NewService(progressSvc *progress.Service, tenants *tenant.Repository) *Service {
	return &Service{progress: progressSvc, tenants: tenants}
}

// TenantProgressReport renders one tenant's completion aggregates in the
// requested format.
func (s *Service) TenantProgressReport(tenantID uint, format string) (*Report, error) {
	tn, err := s.tenants.GetByID(tenantID)
	if err != nil {
		return nil, err
	}
	prog, err := s.progress.GetTenantProgress(tenantID)
	if err != nil {
		return nil, err
	}

	stamp := time.Now().Format("2006-01-02")
	base := fmt.Sprintf("tenant-progress-%d-%s", tenantID, stamp)

	switch format {
	case FormatCSV, "":
		data, err := renderCSV(tn, prog)
		if err != nil {
			return nil, err
		}
		return &Report{FileName: base + ".csv", ContentType: "text/csv", Data: data}, nil
	case FormatExcel:
		data, err := renderExcel(tn, prog)
		if err != nil {
			return nil, err
		}
		return &Report{
			FileName:    base + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	case FormatPDF:
		data, err := renderPDF(tn, prog)
		if err != nil {
			return nil, err
		}
		return &Report{FileName: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, apperrors.Validationf("unknown report format %q", format)
	}
}

func renderCSV(tn *tenant.Tenant, prog *progress.TenantProgress) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"Tenant", tn.Name},
		{"Overall completion", strconv.Itoa(prog.OverallCompletion) + "%"},
		{"Answered", strconv.Itoa(prog.Answered)},
		{"Total questions", strconv.Itoa(prog.TotalQuestions)},
		{},
		{"Domain", "Answered", "Total", "Percent"},
	}
	for _, d := range prog.Domains {
		rows = append(rows, []string{
			d.DomainName,
			strconv.Itoa(d.Answered),
			strconv.Itoa(d.TotalQuestions),
			strconv.Itoa(d.Percent) + "%",
		})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, apperrors.Upstreamf("render csv: %v", err)
	}
	return buf.Bytes(), nil
}

func renderExcel(tn *tenant.Tenant, prog *progress.TenantProgress) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Progress"
	f.SetSheetName("Sheet1", sheet)

	cells := []struct {
		ref string
		val interface{}
	}{
		{"A1", "Tenant"}, {"B1", tn.Name},
		{"A2", "Overall completion"}, {"B2", fmt.Sprintf("%d%%", prog.OverallCompletion)},
		{"A3", "Answered"}, {"B3", prog.Answered},
		{"A4", "Total questions"}, {"B4", prog.TotalQuestions},
		{"A6", "Domain"}, {"B6", "Answered"}, {"C6", "Total"}, {"D6", "Percent"},
	}
	for _, cell := range cells {
		if err := f.SetCellValue(sheet, cell.ref, cell.val); err != nil {
			return nil, apperrors.Upstreamf("render excel: %v", err)
		}
	}

	for i, d := range prog.Domains {
		row := 7 + i
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), d.DomainName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), d.Answered)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), d.TotalQuestions)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), fmt.Sprintf("%d%%", d.Percent))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperrors.Upstreamf("render excel: %v", err)
	}
	return buf.Bytes(), nil
}

func renderPDF(tn *tenant.Tenant, prog *progress.TenantProgress) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Tenant Progress Report")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Tenant: %s", tn.Name))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Overall completion: %d%% (%d of %d answered)",
		prog.OverallCompletion, prog.Answered, prog.TotalQuestions))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(70, 8, "Domain", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Answered", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Percent", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, d := range prog.Domains {
		pdf.CellFormat(70, 8, d.DomainName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, strconv.Itoa(d.Answered), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, strconv.Itoa(d.TotalQuestions), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%d%%", d.Percent), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperrors.Upstreamf("render pdf: %v", err)
	}
	return buf.Bytes(), nil
}
