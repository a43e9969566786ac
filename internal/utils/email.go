package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/wneessen/go-mail"

	"greencart_back_end/internal/models"
)

func SendConfirmationEmail(to, subject, htmlBody string) error {
	msg := mail.NewMsg()

	if err := msg.From("noreply@greencart.shop"); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande,
// avec un QR de suivi intégré en base64.
func GenerateOrderConfirmationHTML(order models.Order) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f</td>
			</tr>`, item.Name, item.Quantity, item.OfferPrice, item.OfferPrice*float64(item.Quantity))
	}

	qrHTML := ""
	if qr, err := GenerateTrackingQR(order.ID); err == nil {
		qrHTML = fmt.Sprintf(`<p>Suivez votre commande :</p><img src="%s" alt="QR suivi" width="128" height="128">`, qr)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmation de votre commande</h2>
		<p>Bonjour,</p>
		<p>Votre paiement a bien été reçu, votre commande est confirmée.</p>

		<h3>Détails de la commande %s</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
		</table>

		<p><strong>Montant total (taxes incluses) : %.2f</strong></p>
		%s

		<p>Merci pour votre confiance,<br>L'équipe GreenCart</p>
	</div>
</body>
</html>`, order.ID, itemsHTML, order.Amount, qrHTML)
}
