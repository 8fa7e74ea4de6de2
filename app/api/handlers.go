package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"licitamonitor/app/cfg"
	"licitamonitor/app/database"
	"licitamonitor/app/notify"
)

const flashCookie = "flash"

func NewHandler(biddingRepo database.BiddingRepository, subscriberRepo database.SubscriberRepository,
	fetcher DetailFetcher, runner CheckRunner, sender MessageSender) *Handler {
	return &Handler{
		biddingRepo:    biddingRepo,
		subscriberRepo: subscriberRepo,
		fetcher:        fetcher,
		runner:         runner,
		sender:         sender,
	}
}

func (h *Handler) Index(c *gin.Context) {
	now := time.Now().In(time.Local)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	biddings, err := h.biddingRepo.ListCheckedSince(dayStart.UTC())
	if err != nil {
		slog.Error("Database error", "operation", "list_biddings", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Flash":    readFlash(c),
		"Today":    now.Format("02/01/2006"),
		"Biddings": biddings,
	})
}

func (h *Handler) Subscribe(c *gin.Context) {
	chatID := c.PostForm("chat_id")
	if !isAllDigits(chatID) {
		redirectWithFlash(c, "Chat ID inválido. Informe apenas números.")
		return
	}

	existing, err := h.subscriberRepo.GetByChatID(chatID)
	if err != nil {
		slog.Error("Database error", "operation", "get_subscriber", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if existing != nil {
		redirectWithFlash(c, "Este Chat ID já está inscrito.")
		return
	}

	if err := h.subscriberRepo.Insert(chatID); err != nil {
		slog.Error("Database error", "operation", "insert_subscriber", "error", err)
		redirectWithFlash(c, "Não foi possível completar a inscrição. Tente novamente.")
		return
	}

	if err := h.sender.Send(chatID, notify.FormatWelcome()); err != nil {
		slog.Warn("Failed to send welcome message", "chat_id", chatID, "error", err)
	}

	redirectWithFlash(c, "Inscrição realizada com sucesso!")
}

// DetailsRedirect turns the lookup form's query parameter into the
// canonical details path.
func (h *Handler) DetailsRedirect(c *gin.Context) {
	number := c.Query("number")
	if number == "" {
		redirectWithFlash(c, "Informe o número da licitação.")
		return
	}
	c.Redirect(http.StatusFound, "/details/"+url.PathEscape(number))
}

func (h *Handler) Details(c *gin.Context) {
	number := c.Param("number")

	snapshot, err := h.fetcher.FetchDetail(number)
	if err != nil {
		slog.Warn("Failed to fetch bidding detail", "number", number, "error", err)
		redirectWithFlash(c, "Não foi possível consultar a licitação "+number+".")
		return
	}

	c.HTML(http.StatusOK, "details.html", gin.H{
		"Number": number,
		"Fields": snapshot.Fields,
		"Events": snapshot.Events,
	})
}

func (h *Handler) RunCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Minute)
	defer cancel()

	date := time.Now().In(time.Local)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("02/01/2006", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "invalid date, expected DD/MM/YYYY"})
			return
		}
		date = parsed
	}

	result, err := h.runner.RunCheck(ctx, date)
	if err != nil {
		slog.Error("Check run failed", "date", date.Format("02/01/2006"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}

	if result.Scraped == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "no records found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"scraped": result.Scraped,
		"new":     result.New,
		"updated": result.Updated,
	})
}

func (h *Handler) Broadcast(c *gin.Context) {
	now := time.Now().In(time.Local)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	biddings, err := h.biddingRepo.ListCheckedSince(dayStart.UTC())
	if err != nil {
		slog.Error("Database error", "operation", "list_biddings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}

	if len(biddings) == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "no records found"})
		return
	}

	h.sender.Broadcast(notify.FormatDailySummary(now, biddings))
	c.JSON(http.StatusOK, gin.H{"status": "ok", "records": len(biddings)})
}

func (h *Handler) Clear(c *gin.Context) {
	deleted, err := h.biddingRepo.DeleteAll()
	if err != nil {
		slog.Error("Database error", "operation", "delete_biddings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}

	slog.Info("Bidding records cleared", "deleted", deleted)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "deleted": deleted})
}

func (h *Handler) Health(c *gin.Context) {
	health := gin.H{
		"version":   cfg.GetVersion(),
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if biddingCount, err := h.biddingRepo.GetCount(); err == nil {
		health["biddings"] = biddingCount
	}
	if subscriberCount, err := h.subscriberRepo.GetCount(); err == nil {
		health["subscribers"] = subscriberCount
	}

	c.JSON(http.StatusOK, health)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Flash messages ride on a short-lived cookie so a redirect can carry
// feedback back to the index page.
func redirectWithFlash(c *gin.Context, message string) {
	c.SetCookie(flashCookie, url.QueryEscape(message), 10, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func readFlash(c *gin.Context) string {
	raw, err := c.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	message, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return message
}
