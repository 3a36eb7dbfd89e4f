package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Handler pairs clients against the single configured password. No user
// table: the password hash comes from config, and each login mints a
// token for a fresh client id.
type Handler struct {
	PasswordHash string // bcrypt hash; empty disables auth entirely
	Tokens       TokenService
}

func NewHandler(passwordHash string, tokens TokenService) *Handler {
	return &Handler{PasswordHash: passwordHash, Tokens: tokens}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.login)
}

// Enabled reports whether a password has been configured. When false the
// server skips the auth middleware.
func (h *Handler) Enabled() bool { return h.PasswordHash != "" }

type loginReq struct {
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	if !h.Enabled() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "auth not configured"})
		return
	}

	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong password"})
		return
	}

	token, exp, err := h.Tokens.Sign(uuid.NewString())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": exp})
}

// HashPassword is used by the CLI when setting the pairing password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
