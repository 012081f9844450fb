package telegram

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"recibo/pkg/recibo"
	"recibo/pkg/services"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// handleStart handles /start command - welcomes user and creates their subscription
func (b *Bot) handleStart(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("start").Inc()
	if update.Message == nil || update.Message.From == nil {
		return
	}

	user := update.Message.From
	chatID := update.Message.Chat.ID

	sub, err := b.manager.GetOrCreateSubscription(ctx, chatID)
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to get or create subscription", "err", err, "chat_id", chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Ocorreu um erro. Tente novamente mais tarde.",
		})
		return
	}

	// Clear any previous state
	b.stateManager.Clear(chatID)

	welcomeText := fmt.Sprintf(
		"👋 Olá, %s!\n\n"+
			"Me envie fotos ou PDFs de comprovantes PIX e eu registro os valores e somo o total do dia.\n\n"+
			"Use os botões abaixo ou /ajuda para ver os comandos:",
		user.FirstName,
	)

	b.logger.Print(ctx, "user started bot", "chat_id", chatID, "username", user.Username, "plan", sub.Plan)

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        welcomeText,
		ReplyMarkup: mainMenuKeyboard(),
	})
}

// handleHelp handles /ajuda command
func (b *Bot) handleHelp(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("ajuda").Inc()
	if update.Message == nil || update.Message.From == nil {
		return
	}

	helpText := `📚 <b>Comandos disponíveis:</b>

📸 Envie uma <b>foto ou PDF</b> de um comprovante e eu extraio o valor automaticamente.

/total - Total e lista de comprovantes de hoje
/apagar - Apagar um comprovante de hoje
/apagar N - Apagar o comprovante número N
/editar VALOR - Corrigir o valor do último comprovante
/limpar - Apagar todos os comprovantes de hoje
/plano - Ver seu plano e uso atual
/assinar - Assinar um plano pago via PIX

💡 Use os botões do menu para acesso rápido.`

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        helpText,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: mainMenuKeyboard(),
	})
}

// handleMessage handles text messages (keyboard buttons) and receipt media
func (b *Bot) handleMessage(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID

	// Photos and documents are receipt submissions
	if len(update.Message.Photo) > 0 {
		// Telegram sends several sizes, the last one is the largest
		photo := update.Message.Photo[len(update.Message.Photo)-1]
		b.handleReceipt(ctx, botAPI, chatID, photo.FileID, photo.FileUniqueID, services.MediaImage)
		return
	}
	if doc := update.Message.Document; doc != nil {
		kind, ok := documentKind(doc.MimeType)
		if !ok {
			_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:      chatID,
				Text:        "Só consigo ler comprovantes em imagem ou PDF.",
				ReplyMarkup: mainMenuKeyboard(),
			})
			return
		}
		b.handleReceipt(ctx, botAPI, chatID, doc.FileID, doc.FileUniqueID, kind)
		return
	}

	// Handle keyboard buttons
	if b.handleKeyboardButton(ctx, botAPI, update) {
		return
	}

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "Me envie uma foto ou PDF de um comprovante, ou use /ajuda.",
		ReplyMarkup: mainMenuKeyboard(),
	})
}

// handleKeyboardButton handles keyboard button presses
// Returns true if button was handled, false otherwise
func (b *Bot) handleKeyboardButton(ctx context.Context, botAPI *bot.Bot, update *models.Update) bool {
	switch update.Message.Text {
	case "📊 Total de hoje":
		b.handleTotal(ctx, botAPI, update)
		return true
	case "🗑 Apagar comprovante":
		b.handleDelete(ctx, botAPI, update)
		return true
	case "💳 Meu plano":
		b.handlePlan(ctx, botAPI, update)
		return true
	case "❓ Ajuda":
		b.handleHelp(ctx, botAPI, update)
		return true
	default:
		return false
	}
}

// documentKind maps a document mime type to the vision media kind.
func documentKind(mimeType string) (services.MediaKind, bool) {
	switch {
	case mimeType == "application/pdf":
		return services.MediaPDF, true
	case strings.HasPrefix(mimeType, "image/"):
		return services.MediaImage, true
	default:
		return "", false
	}
}

// handleReceipt runs the full ingestion pipeline for one submitted file:
// dedup, usage gate, download, extraction, ledger append, reply.
func (b *Bot) handleReceipt(ctx context.Context, botAPI *bot.Bot, chatID int64, fileID, fileUniqueID string, kind services.MediaKind) {
	now := time.Now()

	duplicate, err := b.manager.IsDuplicate(ctx, chatID, fileUniqueID)
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to check duplicate", "err", err, "chat_id", chatID)
		b.sendReceiptError(ctx, botAPI, chatID)
		return
	}
	if duplicate {
		receiptsProcessed.WithLabelValues("duplicate").Inc()
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        "⚠️ Este comprovante já foi registrado.",
			ReplyMarkup: mainMenuKeyboard(),
		})
		return
	}

	decision, err := b.manager.EvaluateUsage(ctx, chatID, now)
	if err != nil {
		errorsTotal.WithLabelValues("usage_gate").Inc()
		b.logger.Error(ctx, "failed to evaluate usage", "err", err, "chat_id", chatID)
		b.sendReceiptError(ctx, botAPI, chatID)
		return
	}
	if !decision.Allowed {
		receiptsProcessed.WithLabelValues("limit").Inc()
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        decision.Message,
			ReplyMarkup: mainMenuKeyboard(),
		})
		return
	}
	// Allowed with a message means a grace or expiry warning
	if decision.Message != "" {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   decision.Message,
		})
	}

	file, err := b.downloadTgFile(ctx, botAPI, fileID)
	if err != nil {
		errorsTotal.WithLabelValues("download_file").Inc()
		b.logger.Error(ctx, "failed to download receipt file", "err", err, "chat_id", chatID)
		b.sendReceiptError(ctx, botAPI, chatID)
		return
	}

	startTime := time.Now()
	extraction, err := b.vision.Extract(ctx, file, kind)
	visionDuration.Observe(time.Since(startTime).Seconds())

	if err != nil {
		receiptsProcessed.WithLabelValues("error").Inc()
		errorsTotal.WithLabelValues("vision").Inc()
		b.logger.Error(ctx, "failed to extract receipt", "err", err, "chat_id", chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        "Não consegui processar o comprovante agora. Tente novamente em instantes.",
			ReplyMarkup: mainMenuKeyboard(),
		})
		return
	}

	if extraction.Amount == nil {
		receiptsProcessed.WithLabelValues("no_amount").Inc()
		b.logger.Print(ctx, "no amount recognized in receipt", "chat_id", chatID, "kind", string(kind))
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        "🤔 Não consegui identificar o valor neste comprovante. Nada foi registrado.",
			ReplyMarkup: mainMenuKeyboard(),
		})
		return
	}

	var bank, payerName *string
	if extraction.Bank != "" {
		bank = &extraction.Bank
	}
	if extraction.PayerName != "" {
		payerName = &extraction.PayerName
	}

	created, err := b.manager.AppendTransaction(ctx, chatID, *extraction.Amount, bank, payerName, fileUniqueID, extraction.RawText)
	if err != nil {
		receiptsProcessed.WithLabelValues("error").Inc()
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to save transaction", "err", err, "chat_id", chatID)
		b.sendReceiptError(ctx, botAPI, chatID)
		return
	}
	transactionsCreated.Inc()

	if decision.Plan.Paid() {
		if err := b.manager.IncrementUsage(ctx, chatID); err != nil {
			errorsTotal.WithLabelValues("database").Inc()
			b.logger.Error(ctx, "failed to increment usage", "err", err, "chat_id", chatID)
		}
	}

	summary, err := b.manager.AggregateToday(ctx, chatID, now)
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to aggregate total", "err", err, "chat_id", chatID)
		summary = recibo.Summary{Total: created.Amount, Count: 1}
	}

	receiptsProcessed.WithLabelValues("ok").Inc()
	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        formatReceiptReply(NewTransaction(created), summary),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: mainMenuKeyboard(),
	})
}

func (b *Bot) sendReceiptError(ctx context.Context, botAPI *bot.Bot, chatID int64) {
	receiptsProcessed.WithLabelValues("error").Inc()
	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "Ocorreu um erro ao processar o comprovante. Tente novamente.",
		ReplyMarkup: mainMenuKeyboard(),
	})
}

// downloadTgFile downloads a Telegram file by file ID into memory
func (b *Bot) downloadTgFile(ctx context.Context, botAPI *bot.Bot, fileID string) ([]byte, error) {
	file, err := botAPI.GetFile(ctx, &bot.GetFileParams{
		FileID: fileID,
	})
	if err != nil {
		b.logger.Error(ctx, "failed to get file", "err", err)
		return nil, err
	}

	fileURL := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", botAPI.Token(), file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		b.logger.Error(ctx, "failed to download file from telegram", "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram file download status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// handleTotal handles /total command - today's list and running total
func (b *Bot) handleTotal(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("total").Inc()
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	now := time.Now()

	transactions, err := b.manager.ListToday(ctx, chatID, now)
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to list transactions", "err", err, "chat_id", chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Erro ao buscar os comprovantes de hoje.",
		})
		return
	}

	summary, err := b.manager.AggregateToday(ctx, chatID, now)
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to aggregate total", "err", err, "chat_id", chatID)
		return
	}

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        formatDaySummary(NewTransactions(transactions), summary),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: mainMenuKeyboard(),
	})
}

// handleDelete handles /apagar command. With a numeric argument it deletes
// that position directly, without one it shows today's list with numbered
// buttons.
func (b *Bot) handleDelete(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("apagar").Inc()
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	arg := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/apagar"))
	arg = strings.TrimSpace(strings.TrimPrefix(arg, "🗑 Apagar comprovante"))

	if arg != "" {
		position, err := strconv.Atoi(arg)
		if err != nil {
			_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "Uso: /apagar ou /apagar N (número do comprovante na lista).",
			})
			return
		}
		b.deleteByPosition(ctx, botAPI, chatID, &position)
		return
	}

	transactions, err := b.manager.ListToday(ctx, chatID, time.Now())
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to list transactions", "err", err, "chat_id", chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Erro ao buscar os comprovantes de hoje.",
		})
		return
	}

	if len(transactions) == 0 {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        "Nenhum comprovante registrado hoje.",
			ReplyMarkup: mainMenuKeyboard(),
		})
		return
	}

	views := NewTransactions(transactions)
	var sb strings.Builder
	sb.WriteString("🗑 <b>Qual comprovante apagar?</b>\n\n")
	for i, t := range views {
		sb.WriteString(formatTransactionLine(i+1, t))
		sb.WriteString("\n")
	}

	sent, err := botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        sb.String(),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: deleteSelectionKeyboard(len(views)),
	})
	if err != nil {
		b.logger.Error(ctx, "failed to send delete prompt", "err", err, "chat_id", chatID)
		return
	}

	b.stateManager.Set(chatID, PendingDeleteSelection, sent.ID)
}

// deleteByPosition removes one entry and reports the new total.
func (b *Bot) deleteByPosition(ctx context.Context, botAPI *bot.Bot, chatID int64, position *int) {
	now := time.Now()

	deleted, err := b.manager.DeleteByPosition(ctx, chatID, position, now)
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to delete transaction", "err", err, "chat_id", chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Erro ao apagar o comprovante.",
		})
		return
	}

	if deleted == nil {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        "Não encontrei esse comprovante na lista de hoje.",
			ReplyMarkup: mainMenuKeyboard(),
		})
		return
	}

	summary, err := b.manager.AggregateToday(ctx, chatID, now)
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to aggregate total", "err", err, "chat_id", chatID)
		return
	}

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("🗑 Comprovante de <b>%s</b> apagado.\n\n💰 Total de hoje: <b>%s</b> (%d comprovante(s))",
			FormatAmount(deleted.Amount), FormatAmount(summary.Total), summary.Count),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: mainMenuKeyboard(),
	})
}

// handleEdit handles /editar command - corrects the last recorded amount
func (b *Bot) handleEdit(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("editar").Inc()
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	arg := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/editar"))

	if arg == "" {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "Uso: /editar VALOR\nExemplo: <code>/editar 45,90</code>",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	amount, err := ParseAmount(arg)
	if err != nil {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "Valor inválido. Exemplo: <code>/editar 45,90</code>",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	updated, err := b.manager.UpdateLastAmount(ctx, chatID, amount, time.Now())
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to update amount", "err", err, "chat_id", chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Erro ao corrigir o valor.",
		})
		return
	}

	if updated == nil {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        "Nenhum comprovante registrado hoje para corrigir.",
			ReplyMarkup: mainMenuKeyboard(),
		})
		return
	}

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        fmt.Sprintf("✏️ Último comprovante corrigido para <b>%s</b>.", FormatAmount(updated.Amount)),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: mainMenuKeyboard(),
	})
}

// handleClear handles /limpar command - wipes today's ledger
func (b *Bot) handleClear(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("limpar").Inc()
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID

	count, err := b.manager.ClearToday(ctx, chatID, time.Now())
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to clear transactions", "err", err, "chat_id", chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Erro ao limpar os comprovantes de hoje.",
		})
		return
	}

	text := "Nenhum comprovante registrado hoje."
	if count > 0 {
		text = fmt.Sprintf("🧹 %d comprovante(s) de hoje apagado(s).", count)
	}

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: mainMenuKeyboard(),
	})
}

// handlePlan handles /plano command - current plan, usage and validity
func (b *Bot) handlePlan(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("plano").Inc()
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID

	decision, err := b.manager.EvaluateUsage(ctx, chatID, time.Now())
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to evaluate usage", "err", err, "chat_id", chatID)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Erro ao consultar seu plano.",
		})
		return
	}

	var periodEnd string
	if sub, err := b.manager.GetOrCreateSubscription(ctx, chatID); err == nil && sub.PeriodEnd != nil {
		periodEnd = sub.PeriodEnd.Format("02/01/2006")
	}

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        formatPlanStatus(decision, periodEnd),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: mainMenuKeyboard(),
	})
}

// handleSubscribe handles /assinar command - shows purchasable plans
func (b *Bot) handleSubscribe(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("assinar").Inc()
	if update.Message == nil || update.Message.From == nil {
		return
	}

	_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        "💳 <b>Escolha um plano:</b>\n\nO pagamento é via PIX e a ativação é automática.",
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: planSelectionKeyboard(),
	})
}

// handleCallback handles callback queries from inline keyboards
func (b *Bot) handleCallback(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery

	// Extract chatID from callback message
	var chatID int64
	if msg := callback.Message.Message; msg != nil {
		chatID = msg.Chat.ID
	} else {
		b.logger.Error(ctx, "callback message is nil")
		return
	}

	b.logger.Print(ctx, "callback received", "data", callback.Data, "from", callback.From.Username)

	parts := strings.SplitN(callback.Data, ":", 2)
	if len(parts) < 2 {
		return
	}

	action := parts[0]
	value := parts[1]

	switch action {
	case "del":
		callbacksProcessed.WithLabelValues("del").Inc()
		b.handleDeleteAction(ctx, botAPI, callback, chatID, value)
	case "plan":
		callbacksProcessed.WithLabelValues("plan").Inc()
		b.handlePlanAction(ctx, botAPI, callback, chatID, value)
	default:
		_, _ = botAPI.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: callback.ID,
			Text:            "Ação desconhecida",
		})
	}
}

// handleDeleteAction resolves a numbered delete prompt answer.
func (b *Bot) handleDeleteAction(ctx context.Context, botAPI *bot.Bot, callback *models.CallbackQuery, chatID int64, value string) {
	_, _ = botAPI.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callback.ID,
	})

	// Drop the prompt message either way
	if prompt := b.stateManager.Get(chatID); prompt != nil && prompt.Kind == PendingDeleteSelection {
		_, _ = botAPI.DeleteMessage(ctx, &bot.DeleteMessageParams{
			ChatID:    chatID,
			MessageID: prompt.MessageID,
		})
	}
	b.stateManager.Clear(chatID)

	if value == "cancel" {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        "Cancelado.",
			ReplyMarkup: mainMenuKeyboard(),
		})
		return
	}

	position, err := strconv.Atoi(value)
	if err != nil {
		b.logger.Error(ctx, "invalid delete callback value", "value", value, "chat_id", chatID)
		return
	}

	b.deleteByPosition(ctx, botAPI, chatID, &position)
}

// handlePlanAction creates a PIX charge for the selected plan and sends the
// QR code with the copy-paste payload.
func (b *Bot) handlePlanAction(ctx context.Context, botAPI *bot.Bot, callback *models.CallbackQuery, chatID int64, value string) {
	plan, ok := recibo.ParsePlan(value)
	if !ok || !plan.Paid() {
		_, _ = botAPI.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: callback.ID,
			Text:            "Plano inválido",
			ShowAlert:       true,
		})
		return
	}

	_, _ = botAPI.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callback.ID,
		Text:            "Gerando cobrança PIX...",
	})

	payment, err := b.manager.CreateCharge(ctx, chatID, plan)
	if err != nil {
		errorsTotal.WithLabelValues("gateway").Inc()
		b.logger.Error(ctx, "failed to create charge", "err", err, "chat_id", chatID, "plan", value)
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Erro ao gerar a cobrança PIX. Tente novamente.",
		})
		return
	}
	paymentsCreated.Inc()

	info := plan.Info()
	caption := fmt.Sprintf(
		"💳 <b>Assinatura %s</b> — %s\n\nEscaneie o QR code ou use o código PIX copia e cola abaixo. A ativação é automática após o pagamento.",
		info.Display, FormatAmount(info.Price),
	)

	sent := false
	if payment.QRCodeBase64 != nil {
		if img, decErr := base64.StdEncoding.DecodeString(*payment.QRCodeBase64); decErr == nil {
			_, err = botAPI.SendPhoto(ctx, &bot.SendPhotoParams{
				ChatID:    chatID,
				Photo:     &models.InputFileUpload{Filename: "pix.png", Data: bytes.NewReader(img)},
				Caption:   caption,
				ParseMode: models.ParseModeHTML,
			})
			sent = err == nil
		}
	}
	if !sent {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      caption,
			ParseMode: models.ParseModeHTML,
		})
	}

	if payment.QRCode != nil {
		_, _ = botAPI.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      fmt.Sprintf("<code>%s</code>", *payment.QRCode),
			ParseMode: models.ParseModeHTML,
		})
	}
}
