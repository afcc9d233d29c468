package notification

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"os"
)

// SendReceiptVoidAlert notifies the finance webhook that a receipt was
// voided. Fire-and-forget: failures are logged, never surfaced to the
// cashier flow.
func SendReceiptVoidAlert(receiptNo, studentName, voidedBy string) {
	url := os.Getenv("FINANCE_WEBHOOK_URL")
	if url == "" {
		return
	}

	payload := map[string]string{
		"message":   "Alert: fee receipt voided",
		"receiptNo": receiptNo,
		"student":   studentName,
		"voidedBy":  voidedBy,
	}
	body, _ := json.Marshal(payload)

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		log.Printf("failed to send void alert webhook: %v", err)
		return
	}
	defer resp.Body.Close()
}
