// Package notification holds the outbound channels used to reach customers
// and the shop: an SMTP mailer and a WhatsApp Cloud API client.
package notification
