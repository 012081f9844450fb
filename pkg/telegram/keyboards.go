package telegram

import (
	"fmt"

	"recibo/pkg/recibo"

	"github.com/go-telegram/bot/models"
)

// mainMenuKeyboard returns main menu keyboard with quick actions
func mainMenuKeyboard() models.ReplyMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{
				{Text: "📊 Total de hoje"},
			},
			{
				{Text: "🗑 Apagar comprovante"},
				{Text: "💳 Meu plano"},
			},
			{
				{Text: "❓ Ajuda"},
			},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: false,
	}
}

// deleteSelectionKeyboard returns numbered buttons for today's entries,
// rows of up to five, plus a cancel button.
func deleteSelectionKeyboard(count int) models.ReplyMarkup {
	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton

	for i := 1; i <= count; i++ {
		row = append(row, models.InlineKeyboardButton{
			Text:         fmt.Sprintf("%d", i),
			CallbackData: fmt.Sprintf("del:%d", i),
		})
		if len(row) == 5 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, []models.InlineKeyboardButton{
		{Text: "❌ Cancelar", CallbackData: "del:cancel"},
	})

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// planSelectionKeyboard returns the purchasable plans with prices.
func planSelectionKeyboard() models.ReplyMarkup {
	var rows [][]models.InlineKeyboardButton
	for _, plan := range recibo.PaidPlans {
		info := plan.Info()
		label := fmt.Sprintf("%s — %s/mês", info.Display, FormatAmount(info.Price))
		if info.Unlimited {
			label += " (ilimitado)"
		} else {
			label += fmt.Sprintf(" (%d comprovantes)", info.MonthlyLimit)
		}
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: label, CallbackData: "plan:" + string(plan)},
		})
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}
