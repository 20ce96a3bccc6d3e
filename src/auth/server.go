package auth

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/cryptiklemur/discordarr/src/config"
	"github.com/cryptiklemur/discordarr/src/data"
	"github.com/cryptiklemur/discordarr/src/overseerr"
)

const linkPage = `<!doctype html>
<html><head><title>Link your account</title></head>
<body>
<h2>Link your Overseerr account</h2>
<form method="post" action="/link">
  <input type="hidden" name="token" value="%s">
  <label>Email <input type="email" name="email" required></label><br>
  <label>Password <input type="password" name="password" required></label><br>
  <button type="submit">Link account</button>
</form>
</body></html>`

// New builds the link-handshake web server. It serves exactly two routes: the
// form behind the token URL the bot hands out, and the submit endpoint that
// verifies Overseerr credentials and writes the Discord id back.
func New(cfg config.Config, rdb *redis.Client, ov *overseerr.Client) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{cfg.PublicURL},
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	h := linkHandler{rdb: rdb, overseerr: ov, secret: []byte(cfg.JWTSecret)}
	r.GET("/link", h.form)
	r.POST("/link", h.submit)

	return r
}

type linkHandler struct {
	rdb       *redis.Client
	overseerr *overseerr.Client
	secret    []byte
}

func (h linkHandler) form(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		c.String(http.StatusBadRequest, "Missing token. Use /link in Discord to get a fresh URL.")
		return
	}
	if _, err := ParseLinkToken(raw, h.secret); err != nil {
		c.String(http.StatusUnauthorized, "This link has expired. Use /link in Discord to get a fresh one.")
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, linkPage, raw)
}

func (h linkHandler) submit(c *gin.Context) {
	var req struct {
		Token    string `form:"token" binding:"required"`
		Email    string `form:"email" binding:"required"`
		Password string `form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, "Missing fields.")
		return
	}

	claims, err := ParseLinkToken(req.Token, h.secret)
	if err != nil {
		c.String(http.StatusUnauthorized, "This link has expired. Use /link in Discord to get a fresh one.")
		return
	}

	// One-shot session: consuming it here invalidates the URL even if the
	// token itself has not expired yet.
	discordID, err := data.GetAndDelLinkSession(c, h.rdb, claims.SessionID)
	if err != nil || discordID != claims.DiscordUserID {
		c.String(http.StatusUnauthorized, "This link has already been used. Use /link in Discord to get a fresh one.")
		return
	}

	user, err := h.overseerr.Login(c, req.Email, req.Password)
	if err != nil {
		log.Printf("auth: overseerr login for %s: %v", claims.DiscordUserID, err)
		c.String(http.StatusUnauthorized, "Invalid Overseerr credentials.")
		return
	}

	if err := h.overseerr.UpdateUserNotificationSettings(c, user.ID, discordID); err != nil {
		log.Printf("auth: update notification settings for user %d: %v", user.ID, err)
		c.String(http.StatusInternalServerError, "Failed to save the link. Please try again.")
		return
	}

	// Stale zero-permission entries would otherwise linger for the cache TTL.
	if err := data.InvalidatePermissions(c, h.rdb, discordID); err != nil {
		log.Printf("auth: invalidate permission cache for %s: %v", discordID, err)
	}

	log.Printf("auth: linked discord user %s to overseerr user %d", discordID, user.ID)
	c.String(http.StatusOK, "Account linked. You can close this page and head back to Discord.")
}
