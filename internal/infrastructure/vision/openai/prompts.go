package openai

import "github.com/mkravets/docvision/internal/core/domain"

func classificationInstruction() string {
	return "You are an immigration document classifier. Only reply with one of: passport, driver_license, or ead_card."
}

const passportInstruction = `Extract the fields from the passport image and return them in the following JSON format:
{
  "document_type": "passport",
  "document_content": {
    "full_name": "...",
    "date_of_birth": "...",
    "country": "...",
    "issue_date": "...",
    "expiration_date": "..."
  }
}`

const driverLicenseInstruction = `Extract the fields from the driver's license image and return them in the following JSON format:
{
  "document_type": "driver_license",
  "document_content": {
    "license_number": "...",
    "first_name": "...",
    "last_name": "...",
    "date_of_birth": "...",
    "issue_date": "...",
    "expiration_date": "..."
  }
}`

const eadCardInstruction = `Extract the fields from the image and return them in the following JSON format:
{
  "document_type": "ead_card",
  "document_content": {
    "card_number": "...",
    "category": "...",
    "card_expires_date": "...",
    "first_name": "...",
    "last_name": "..."
  }
}`

// extractionInstruction picks the schema template for a label. Unknown and any
// future label fall back to the generic instruction so extraction always runs.
func extractionInstruction(docType domain.DocumentType) string {
	switch docType {
	case domain.TypePassport:
		return passportInstruction
	case domain.TypeDriverLicense:
		return driverLicenseInstruction
	case domain.TypeEADCard:
		return eadCardInstruction
	default:
		return "Extract key fields as JSON."
	}
}
