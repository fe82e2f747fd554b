package order

import (
	"strings"

	"github.com/haikalarif/portofolio-freelance/internal/format"
)

const (
	messageGreeting     = "Halo, saya tertarik memesan:"
	messageAddonHeading = "*Add-On yang dipilih:*"
	messageClosing      = "Mohon informasi lebih lanjut. Terima kasih!"
	addonBullet         = "✓"
)

// Composer renders order messages with a given currency formatter.
type Composer struct {
	Money *format.Formatter
}

// Compose renders the order message with the Rupiah formatter.
func Compose(packageName string, packagePrice int64, addons []AddonEntry, total int64) string {
	return Composer{Money: format.Rupiah()}.Compose(packageName, packagePrice, addons, total)
}

// Compose renders the plain-text message for an order. The output is deterministic for
// identical inputs and is not escaped for any markup.
func (c Composer) Compose(packageName string, packagePrice int64, addons []AddonEntry, total int64) string {
	money := c.Money
	if money == nil {
		money = format.Rupiah()
	}

	var b strings.Builder
	b.WriteString(messageGreeting)
	b.WriteString("\n\n")
	b.WriteString("*Paket:* ")
	b.WriteString(packageName)
	b.WriteString("\n")
	b.WriteString("*Harga Paket:* ")
	b.WriteString(money.Format(packagePrice))
	b.WriteString("\n")

	if len(addons) > 0 {
		b.WriteString("\n")
		b.WriteString(messageAddonHeading)
		b.WriteString("\n")
		for _, a := range addons {
			b.WriteString(addonBullet)
			b.WriteString(" ")
			b.WriteString(a.Name)
			b.WriteString(" (")
			b.WriteString(money.Format(a.Price))
			b.WriteString(")\n")
		}
	}

	b.WriteString("\n*Total Estimasi:* ")
	b.WriteString(money.Format(total))
	b.WriteString("\n\n")
	b.WriteString(messageClosing)
	return b.String()
}
