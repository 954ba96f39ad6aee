package service

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/Aashish23092/tax-slip-engine/dto"
)

const (
	summarySheet   = "Summary"
	documentsSheet = "Documents"
	moneyFormat    = "#,##0.00;-#,##0.00"
)

// ExportPreviewXLSX renders a preview and its source documents as a
// workbook. Every figure is copied from the preview, none is recomputed.
func ExportPreviewXLSX(preview *dto.TaxReturnPreview, docs []dto.ParsedDocument) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(documentsSheet); err != nil {
		return nil, err
	}

	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(moneyFormat)})
	if err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	rows := summaryRows(preview)
	for i, r := range rows {
		row := i + 1
		_ = f.SetCellValue(summarySheet, cellName(1, row), r.label)
		if r.heading {
			_ = f.SetCellStyle(summarySheet, cellName(1, row), cellName(1, row), bold)
			continue
		}
		if r.text != "" {
			_ = f.SetCellValue(summarySheet, cellName(2, row), r.text)
			continue
		}
		_ = f.SetCellValue(summarySheet, cellName(2, row), r.amount)
		_ = f.SetCellStyle(summarySheet, cellName(2, row), cellName(2, row), money)
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 34)
	_ = f.SetColWidth(summarySheet, "B", "B", 18)

	headers := []string{"File", "Type", "Uploaded", "Confidence", "Needs Review", "Admin Notes"}
	for i, h := range headers {
		_ = f.SetCellValue(documentsSheet, cellName(i+1, 1), h)
	}
	_ = f.SetCellStyle(documentsSheet, "A1", cellName(len(headers), 1), bold)
	for i, d := range docs {
		row := i + 2
		_ = f.SetCellValue(documentsSheet, cellName(1, row), d.FileName)
		_ = f.SetCellValue(documentsSheet, cellName(2, row), d.Type.Label("en"))
		_ = f.SetCellValue(documentsSheet, cellName(3, row), d.UploadDate.Format("2006-01-02"))
		_ = f.SetCellValue(documentsSheet, cellName(4, row), d.Confidence)
		_ = f.SetCellValue(documentsSheet, cellName(5, row), yesNo(d.NeedsReview))
		_ = f.SetCellValue(documentsSheet, cellName(6, row), d.AdminNotes)
	}
	_ = f.SetColWidth(documentsSheet, "A", "A", 28)
	_ = f.SetColWidth(documentsSheet, "B", "B", 40)
	_ = f.SetColWidth(documentsSheet, "F", "F", 48)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

type summaryRow struct {
	label   string
	heading bool
	text    string
	amount  float64
}

func summaryRows(p *dto.TaxReturnPreview) []summaryRow {
	heading := func(l string) summaryRow { return summaryRow{label: l, heading: true} }
	amount := func(l string, v float64) summaryRow { return summaryRow{label: l, amount: v} }
	text := func(l, v string) summaryRow { return summaryRow{label: l, text: v} }

	rows := []summaryRow{
		heading("Taxpayer"),
		text("Taxpayer ID", p.TaxpayerID),
		text("Name", p.PersonalInfo.Name),
		text("Province", p.PersonalInfo.Province),
		text("Tax year", strconv.Itoa(p.Year)),
		text("Status", string(p.Status)),

		heading("Income"),
		amount("Employment income", p.Income.EmploymentIncome),
		amount("Investment income", p.Income.InvestmentIncome),
		amount("Self-employment income", p.Income.SelfEmploymentIncome),
		amount("Other income", p.Income.OtherIncome),
		amount("Total income", p.Income.TotalIncome),

		heading("Deductions"),
		amount("RRSP contributions", p.Deductions.RetirementContributions),
		amount("Union dues", p.Deductions.UnionDues),
		amount("Child care expenses", p.Deductions.ChildCareExpenses),
		amount("Moving expenses", p.Deductions.MovingExpenses),
		amount("Total deductions", p.Deductions.TotalDeductions),

		heading("Non-refundable credit amounts"),
		amount("Basic personal amount", p.Credits.BasicPersonalAmount),
		amount("Canada employment amount", p.Credits.EmploymentAmount),
		amount("Tuition", p.Credits.TuitionTransfer),
		amount("Medical expenses", p.Credits.MedicalExpenses),
		amount("Donations", p.Credits.Donations),
		amount("CPP/QPP, EI and QPIP contributions", p.Credits.Contributions),
		amount("Total credit amounts", p.Credits.TotalCredits),
	}
	for _, j := range []struct {
		name string
		tax  dto.JurisdictionTax
	}{{"Federal tax", p.FederalTax}, {"Provincial tax", p.ProvincialTax}} {
		rows = append(rows,
			heading(j.name),
			amount("Taxable income", j.tax.TaxableIncome),
			amount("Tax before credits", j.tax.TaxBeforeCredit),
			amount("Credits applied", j.tax.CreditsApplied),
			amount("Tax payable", j.tax.TaxPayable),
			amount("Tax withheld", j.tax.TaxWithheld),
			amount("Refund (-) or owing", j.tax.RefundOrOwing),
		)
	}
	return append(rows, heading("Total"), amount("Total refund (-) or owing", p.TotalRefundOrOwing))
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func strPtr(s string) *string { return &s }
