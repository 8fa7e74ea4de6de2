package notify

import (
	"fmt"
	"strings"
	"time"

	"licitamonitor/app/database"
)

// Message templates follow the portal's language. Markdown emphasis marks
// the key fields; the bidding number is monospaced so it survives
// Telegram's line wrapping intact.

func FormatChange(c database.Change) string {
	if c.Kind == database.ChangeUpdated {
		return formatUpdated(c)
	}
	return formatNew(c)
}

func formatNew(c database.Change) string {
	return fmt.Sprintf("📢 *Nova Licitação Encontrada!*\n\n"+
		"*Número:* `%s`\n"+
		"*Órgão:* %s\n"+
		"*Objeto:* %s\n"+
		"*Status:* %s",
		c.Number, c.Agency, c.Object, c.NewStatus)
}

func formatUpdated(c database.Change) string {
	return fmt.Sprintf("🔄 *Atualização de Licitação!*\n\n"+
		"*Número:* `%s`\n"+
		"*Órgão:* %s\n"+
		"*Status alterado de:* %s\n"+
		"*Novo Status:* %s",
		c.Number, c.Agency, c.OldStatus, c.NewStatus)
}

func FormatWelcome() string {
	return "✅ Olá! Você se inscreveu com sucesso no Monitor de Licitações BA."
}

// FormatDailySummary renders the test-broadcast digest of the records
// checked on day.
func FormatDailySummary(day time.Time, biddings []database.Bidding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Resumo das Licitações de Hoje (%s)*\n\n", day.Format("02/01/2006"))
	for _, bidding := range biddings {
		fmt.Fprintf(&b, "• `%s` (%s)\n", bidding.Number, bidding.Status)
	}
	return b.String()
}
