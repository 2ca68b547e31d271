package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/323network/platform/app/models"
)

// TermAcceptanceProofPDF renders a signed-terms proof for one acceptance.
func TermAcceptanceProofPDF(acceptance *models.TermAcceptance) (*Document, error) {
	pdf, tr, contentWidth := newProofPage("COMPROVANTE DE ASSINATURA")

	writeProofSection(pdf, tr, "INFORMAÇÕES DO DOCUMENTO")
	termType := termTypeLabelPT(acceptance.Term.TermType)
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("Tipo: %s", termType))
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("Título: %s", acceptance.Term.Title))
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("Versão: %s", acceptance.Term.Version))
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("ID do Documento: %s", acceptance.ID))
	pdf.Ln(6)

	writeProofSection(pdf, tr, "DADOS DO USUÁRIO")
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("Nome: %s", acceptance.User.Name))
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("Email: %s", acceptance.User.Email))
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("ID do Usuário: %d", acceptance.UserID))
	pdf.Ln(6)

	writeProofSection(pdf, tr, "DETALHES DA ASSINATURA")
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("Data e Hora: %s", acceptance.AcceptedAt.UTC().Format("Monday, January 2, 2006 15:04:05 MST")))
	ip := acceptance.IPAddress
	if ip == "" {
		ip = "Não registrado"
	}
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("Endereço IP: %s", ip))
	if acceptance.UserAgent != "" {
		writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("Navegador: %s", acceptance.UserAgent))
	}
	pdf.Ln(6)

	writeVerificationHash(pdf, tr, contentWidth, fmt.Sprintf("%s-%d-%s", acceptance.ID, acceptance.UserID, acceptance.AcceptedAt.UTC().Format(time.RFC3339)))
	writeProofFooter(pdf, tr, contentWidth)

	data, err := renderPDF(pdf)
	if err != nil {
		return nil, fmt.Errorf("render term acceptance proof: %w", err)
	}

	filename := fmt.Sprintf("assinatura_%s_%s_%s.pdf",
		strings.Join(strings.Fields(strings.ToLower(termType)), "_"),
		strings.Join(strings.Fields(acceptance.User.Name), "_"),
		time.Now().UTC().Format("2006-01-02"))

	return &Document{Filename: filename, ContentType: "application/pdf", Data: data}, nil
}

// PaymentProofPDF renders a payment receipt for a paid enrollment.
func PaymentProofPDF(enrollment *models.ProgramEnrollment, payment *models.ServicePayment) (*Document, error) {
	if payment == nil || !payment.IsPaid() {
		return nil, fmt.Errorf("payment has not been confirmed yet")
	}

	pdf, tr, contentWidth := newProofPage("COMPROVANTE DE PAGAMENTO")

	writeProofSection(pdf, tr, "DADOS DO PAGAMENTO")
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("ID da Transação: %s", enrollment.ID))
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("ID do Pedido (Parcelow): %s", orNA(payment.ParcelowOrderID)))
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("Data do Pagamento: %s", payment.UpdatedAt.UTC().Format("Monday, January 2, 2006 15:04:05 MST")))
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("Status: %s", strings.ToUpper(payment.ConfirmedStatus())))
	pdf.Ln(6)

	writeProofSection(pdf, tr, "PROGRAMA ADQUIRIDO")
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("Programa: %s", enrollment.Program.Title()))
	pdf.Ln(6)

	writeProofSection(pdf, tr, "DADOS DO CLIENTE")
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("Nome: %s", enrollment.User.Name))
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("Email: %s", enrollment.User.Email))
	pdf.Ln(6)

	writeProofSection(pdf, tr, "VALORES")
	writeProofLine(pdf, tr, contentWidth, fmt.Sprintf("Valor Pago: %s", formatAmount(payment.Amount, payment.Currency)))
	pdf.Ln(6)

	writeVerificationHash(pdf, tr, contentWidth, fmt.Sprintf("%s-%d-%s", enrollment.ID, enrollment.UserID, payment.UpdatedAt.UTC().Format(time.RFC3339)))
	writeProofFooter(pdf, tr, contentWidth)

	data, err := renderPDF(pdf)
	if err != nil {
		return nil, fmt.Errorf("render payment proof: %w", err)
	}

	filename := fmt.Sprintf("pagamento_%s_%s.pdf",
		strings.Join(strings.Fields(enrollment.User.Name), "_"),
		time.Now().UTC().Format("2006-01-02"))

	return &Document{Filename: filename, ContentType: "application/pdf", Data: data}, nil
}

func termTypeLabelPT(termType string) string {
	if termType == models.TermTypeTermsOfService {
		return "Termos de Serviço"
	}
	return "Política de Privacidade"
}

func newProofPage(title string) (*fpdf.Fpdf, func(string) string, float64) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 25)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 20

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(contentWidth, 12, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentWidth, 6, tr(platformName), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	return pdf, tr, contentWidth
}

func writeProofSection(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

func writeProofLine(pdf *fpdf.Fpdf, tr func(string) string, width float64, text string) {
	pdf.MultiCell(width, 6, tr(text), "", "L", false)
}

func writeVerificationHash(pdf *fpdf.Fpdf, tr func(string) string, width float64, payload string) {
	writeProofSection(pdf, tr, "VERIFICAÇÃO DE AUTENTICIDADE")
	pdf.SetFont("Helvetica", "", 8)
	hash := base64.StdEncoding.EncodeToString([]byte(payload))
	pdf.MultiCell(width, 4, tr(fmt.Sprintf("Hash: %s", hash)), "", "L", false)
	pdf.Ln(6)
}

func writeProofFooter(pdf *fpdf.Fpdf, tr func(string) string, width float64) {
	_, pageHeight := pdf.GetPageSize()
	pdf.SetY(pageHeight - 35)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.MultiCell(width, 5, tr("Este documento foi gerado eletronicamente pela 323 Network"), "", "C", false)
	pdf.MultiCell(width, 5, tr(fmt.Sprintf("Gerado em: %s", time.Now().UTC().Format("2006-01-02 15:04:05 MST"))), "", "C", false)
	pdf.MultiCell(width, 5, tr("Para verificar a autenticidade, entre em contato com suporte@323network.com"), "", "C", false)
	pdf.SetTextColor(0, 0, 0)
}

func renderPDF(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
