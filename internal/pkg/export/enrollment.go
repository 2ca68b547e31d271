package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	platformName = "323 Network - Community Platform"
	proofFooter  = "This document serves as proof of enrollment and terms acceptance."
)

// EnrollmentPDF renders the complete enrollment record as a PDF.
func EnrollmentPDF(data EnrollmentData) (*Document, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 20

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentWidth, 10, tr("COMPLETE ENROLLMENT DATA"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentWidth, 7, tr(platformName), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	writeSection := func(title string) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(contentWidth, 8, tr(title), "B", 1, "L", false, 0, "")
		pdf.Ln(2)
	}
	writeField := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(55, 6, tr(label+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(contentWidth-55, 6, tr(value), "", "L", false)
	}

	enrollment := data.Enrollment

	writeSection("STUDENT INFORMATION")
	writeField("Name", enrollment.User.Name)
	writeField("Email", enrollment.User.Email)
	writeField("User ID", fmt.Sprintf("%d", enrollment.User.ID))
	pdf.Ln(4)

	writeSection("ENROLLED PROGRAM")
	writeField("Program", enrollment.Program.Title())
	writeField("Enrolled at", formatTime(enrollment.EnrolledAt))
	writeField("Status", enrollmentStatus(enrollment.EnrolledAt))
	pdf.Ln(4)

	writeSection("PAYMENT INFORMATION")
	if data.Payment != nil {
		writeField("Amount", formatAmount(data.Payment.Amount, data.Payment.Currency))
		writeField("Payment status", data.Payment.ConfirmedStatus())
		writeField("Order ID", orNA(data.Payment.ParcelowOrderID))
		writeField("Payment ID", data.Payment.ID)
		writeField("Paid at", formatTime(&data.Payment.UpdatedAt))
	} else {
		writeField("Payment", "No payment on record")
	}
	pdf.Ln(4)

	writeSection("SYSTEM TERMS ACCEPTANCE")
	if len(data.AcceptedTerms) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(contentWidth, 6, tr("No system terms accepted."), "", "L", false)
	}
	for _, acceptance := range data.AcceptedTerms {
		writeField(termTypeLabel(acceptance.Term.TermType), fmt.Sprintf(
			"v%s, accepted %s (IP %s)",
			acceptance.Term.Version,
			acceptance.AcceptedAt.UTC().Format("2006-01-02 15:04:05 MST"),
			orNA(acceptance.IPAddress),
		))
	}
	pdf.Ln(4)

	if data.ProgramTerms != nil {
		writeSection("PROGRAM-SPECIFIC TERMS ACCEPTANCE")
		writeField("Status", acceptedLabel(data.ProgramTerms.Accepted))
		writeField("Accepted at", formatTime(data.ProgramTerms.AcceptedAt))
		writeField("IP", data.ProgramTerms.IP)
		writeField("Browser", data.ProgramTerms.UserAgent)
		pdf.Ln(4)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(contentWidth, 5, tr(proofFooter), "", "C", false)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.MultiCell(contentWidth, 5, tr(fmt.Sprintf("Generated at %s", time.Now().UTC().Format("2006-01-02 15:04:05 MST"))), "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render enrollment pdf: %w", err)
	}

	return &Document{
		Filename:    exportFilename("enrollment", enrollment.User.Name, "pdf"),
		ContentType: "application/pdf",
		Data:        buf.Bytes(),
	}, nil
}

// EnrollmentCSV renders the enrollment record as a two-column CSV with
// the same sections as the PDF export.
func EnrollmentCSV(data EnrollmentData) (*Document, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	enrollment := data.Enrollment

	rows := [][]string{
		{"Campo", "Valor"},
		{"=== INFORMAÇÕES DO ALUNO ===", ""},
		{"Nome", enrollment.User.Name},
		{"Email", enrollment.User.Email},
		{"ID do Usuário", fmt.Sprintf("%d", enrollment.User.ID)},
		{"", ""},
		{"=== PROGRAMA MATRICULADO ===", ""},
		{"Programa", enrollment.Program.Title()},
		{"Data de Matrícula", formatTime(enrollment.EnrolledAt)},
		{"Status", enrollmentStatus(enrollment.EnrolledAt)},
		{"", ""},
		{"=== INFORMAÇÕES DE PAGAMENTO ===", ""},
	}
	if data.Payment != nil {
		rows = append(rows,
			[]string{"Valor", formatAmount(data.Payment.Amount, data.Payment.Currency)},
			[]string{"Status do Pagamento", data.Payment.ConfirmedStatus()},
			[]string{"ID do Pedido (Parcelow)", orNA(data.Payment.ParcelowOrderID)},
			[]string{"Payment ID", data.Payment.ID},
			[]string{"Data do Pagamento", formatTime(&data.Payment.UpdatedAt)},
		)
	} else {
		rows = append(rows, []string{"Pagamento", "Nenhum pagamento registrado"})
	}

	rows = append(rows,
		[]string{"", ""},
		[]string{"=== SYSTEM TERMS ACCEPTANCE ===", ""},
	)
	if len(data.AcceptedTerms) == 0 {
		rows = append(rows, []string{"Termos", "Nenhum termo aceito"})
	}
	for _, acceptance := range data.AcceptedTerms {
		rows = append(rows, []string{
			termTypeLabel(acceptance.Term.TermType),
			fmt.Sprintf("v%s, aceito em %s (IP %s)",
				acceptance.Term.Version,
				acceptance.AcceptedAt.UTC().Format("2006-01-02 15:04:05 MST"),
				orNA(acceptance.IPAddress)),
		})
	}

	if data.ProgramTerms != nil {
		rows = append(rows,
			[]string{"", ""},
			[]string{"=== ACEITE DE TERMOS ESPECÍFICOS DO PROGRAMA ===", ""},
			[]string{"Status", acceptedLabel(data.ProgramTerms.Accepted)},
			[]string{"Aceito em", formatTime(data.ProgramTerms.AcceptedAt)},
			[]string{"IP", data.ProgramTerms.IP},
			[]string{"Navegador", data.ProgramTerms.UserAgent},
		)
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("render enrollment csv: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("render enrollment csv: %w", err)
	}

	return &Document{
		Filename:    exportFilename("matricula", enrollment.User.Name, "csv"),
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}, nil
}

func enrollmentStatus(enrolledAt *time.Time) string {
	if enrolledAt != nil {
		return "Matriculado"
	}
	return "Pendente"
}

func acceptedLabel(accepted bool) string {
	if accepted {
		return "Aceito"
	}
	return "Não aceito"
}

func exportFilename(prefix, name, ext string) string {
	safe := strings.Join(strings.Fields(name), "_")
	if safe == "" {
		safe = "unknown"
	}
	return fmt.Sprintf("%s_%s_%s.%s", prefix, safe, time.Now().UTC().Format("2006-01-02"), ext)
}
