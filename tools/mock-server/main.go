// Package main implements a mock SecondHandPlatform backend for local
// development. It serves the login and listing endpoints against an
// in-memory store seeded from a JSON fixture, so the CLI can be exercised
// without the real backend and its database.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	domain "github.com/Yuyang-Ding1102/SecondHandPlatform/pkg/types"
)

const tokenTTL = 24 * time.Hour

// response mirrors the backend's envelope: { success, message?, data? }.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type server struct {
	log    *slog.Logger
	secret []byte

	mu    sync.Mutex
	items []domain.Listing
}

func main() {
	port := flag.Int("port", 8080, "port to listen on")
	fixtureFile := flag.String("fixture", "", "path to a JSON fixture of listings (default: built-in sample)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	items, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "items", len(items))

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		logger.Error("failed to generate signing secret", "error", err)
		os.Exit(1)
	}
	logger.Info("signing secret generated", "secret", hex.EncodeToString(secret[:4])+"…")

	s := &server{log: logger, secret: secret, items: items}

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock SecondHandPlatform server", "addr", addr)
	if err := s.router().Start(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func (s *server) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(s.requestLogger)

	e.POST("/login", s.handleLogin)

	authed := e.Group("", s.requireAuth)
	authed.GET("/mylistings", s.handleMyListings)
	authed.PUT("/item/:id", s.handleUpdateItem)
	authed.DELETE("/item/:id", s.handleDeleteItem)

	return e
}

func (s *server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.log.Debug("request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"query", c.Request().URL.RawQuery,
		)
		return next(c)
	}
}

// requireAuth validates the bearer token issued by handleLogin.
func (s *server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			return c.JSON(http.StatusUnauthorized, response{Message: "Missing or invalid token"})
		}

		_, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			s.log.Warn("rejected token", "error", err)
			return c.JSON(http.StatusUnauthorized, response{Message: "Missing or invalid token"})
		}
		return next(c)
	}
}

func (s *server) handleLogin(c echo.Context) error {
	var creds struct {
		UserName string `json:"userName"`
		Password string `json:"password"`
	}
	if err := c.Bind(&creds); err != nil || creds.UserName == "" || creds.Password == "" {
		return c.JSON(http.StatusBadRequest, response{Message: "userName and password are required"})
	}

	// Any non-empty credentials are accepted; this is a development tool.
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": creds.UserName,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, response{Message: "could not sign token"})
	}

	s.log.Info("issued token", "user", creds.UserName)
	return c.JSON(http.StatusOK, map[string]string{"token": signed})
}

func (s *server) handleMyListings(c echo.Context) error {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 6)
	if page < 1 || pageSize < 1 {
		return c.JSON(http.StatusBadRequest, response{Message: "page and page_size must be positive"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.items)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	posts := []domain.Listing{}
	if start < total {
		posts = append(posts, s.items[start:end]...)
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data: map[string]any{
			"posts":       posts,
			"total_count": total,
			"page":        page,
			"page_size":   pageSize,
			"total_pages": totalPages,
		},
	})
}

func (s *server) handleUpdateItem(c echo.Context) error {
	var upd struct {
		Title       string  `json:"title"`
		Price       float64 `json:"price"`
		Description string  `json:"description"`
	}
	if err := c.Bind(&upd); err != nil {
		return c.JSON(http.StatusBadRequest, response{Message: "invalid request body"})
	}
	if upd.Price < 0 {
		return c.JSON(http.StatusBadRequest, response{Message: "Price must not be negative"})
	}

	id := domain.ID(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Title = upd.Title
			s.items[i].Price = upd.Price
			s.items[i].Description = upd.Description
			return c.JSON(http.StatusOK, response{
				Success: true,
				Message: "Item updated successfully",
				Data:    s.items[i],
			})
		}
	}
	return c.JSON(http.StatusNotFound, response{Message: "Item not found"})
}

func (s *server) handleDeleteItem(c echo.Context) error {
	id := domain.ID(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return c.JSON(http.StatusOK, response{Success: true, Message: "Item deleted"})
		}
	}
	return c.JSON(http.StatusNotFound, response{Message: "Item not found"})
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// loadFixture reads listings from path, or returns the built-in sample
// set when path is empty. Entries without an id get one assigned.
func loadFixture(path string) ([]domain.Listing, error) {
	if path == "" {
		return sampleListings(), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var items []domain.Listing
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = domain.ID(uuid.NewString())
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Title < items[j].Title })
	return items, nil
}

func sampleListings() []domain.Listing {
	titles := []struct {
		title string
		price float64
		desc  string
	}{
		{"Vintage Film Camera", 150, "A well-maintained classic camera."},
		{"CS Textbook", 45, "Essential for your intro classes."},
		{"Desk Lamp", 12, "Warm light, USB powered."},
		{"Bike Helmet", 20, "Worn twice."},
		{"Monitor Stand", 18, "Fits up to 27 inch."},
		{"Mechanical Keyboard", 65, "Brown switches, great condition."},
		{"Mini Fridge", 80, "Perfect for a dorm room."},
		{"Acoustic Guitar", 120, "Comes with a soft case."},
	}
	items := make([]domain.Listing, 0, len(titles))
	for _, t := range titles {
		items = append(items, domain.Listing{
			ID:          domain.ID(uuid.NewString()),
			Title:       t.title,
			Price:       t.price,
			Description: t.desc,
		})
	}
	return items
}
