package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/323network/platform/app/models"
)

// Document is a generated file ready for download or archiving.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProgramTermsAcceptance is the acceptance trail for program-specific
// terms; only present when the program carries its own terms.
type ProgramTermsAcceptance struct {
	Accepted   bool
	AcceptedAt *time.Time
	IP         string
	UserAgent  string
}

// EnrollmentData bundles everything the enrollment export renders.
type EnrollmentData struct {
	Enrollment    *models.ProgramEnrollment
	Payment       *models.ServicePayment
	AcceptedTerms []models.TermAcceptance
	ProgramTerms  *ProgramTermsAcceptance
}

// BuildEnrollmentData assembles the export input from loaded rows,
// deriving the program-terms section the same way the acceptance trail
// is stored on the enrollment itself.
func BuildEnrollmentData(enrollment *models.ProgramEnrollment, payment *models.ServicePayment, acceptedTerms []models.TermAcceptance) EnrollmentData {
	data := EnrollmentData{
		Enrollment:    enrollment,
		Payment:       payment,
		AcceptedTerms: acceptedTerms,
	}
	if enrollment.Program.HasOwnTerms() {
		data.ProgramTerms = &ProgramTermsAcceptance{
			Accepted:   enrollment.TermsAccepted,
			AcceptedAt: enrollment.TermsAcceptedAt,
			IP:         orNA(enrollment.TermsIP),
			UserAgent:  orNA(enrollment.TermsUserAgent),
		}
	}
	return data
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.UTC().Format("Monday, January 2, 2006 15:04:05 MST")
}

func formatAmount(cents int64, currency string) string {
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%s %.2f", currency, float64(cents)/100)
}

func termTypeLabel(termType string) string {
	if termType == models.TermTypeTermsOfService {
		return "Terms of Service"
	}
	return "Privacy Policy"
}
