// Package shopapitest runs an in-process stand-in for the storefront REST
// backend so client and page tests exercise real HTTP round-trips. It mimics
// the external API's surface and error payloads; it is a fixture, not a
// backend implementation.
package shopapitest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User mirrors the backend's user record.
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

// Product mirrors the backend's product record and wire shape.
type Product struct {
	ID          int     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null"                 json:"name"`
	Description string  `json:"description"`
	Price       float64 `gorm:"not null"                 json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
}

// Server is the running fixture. URL points at the listening httptest server.
type Server struct {
	URL    string
	DB     *gorm.DB
	Secret []byte

	ts *httptest.Server
}

// NewServer boots the fixture on an in-memory sqlite database and registers
// cleanup with t.
func NewServer(t *testing.T) *Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&User{}, &Product{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	s := &Server{DB: db, Secret: []byte("test-secret")}

	e := echo.New()
	e.POST("/users/register", s.register)
	e.POST("/users/login", s.login)
	e.GET("/products", s.listProducts)
	e.POST("/products", s.createProduct, s.requireAdmin)
	e.PUT("/products/:id", s.updateProduct, s.requireAdmin)
	e.DELETE("/products/:id", s.deleteProduct, s.requireAdmin)

	s.ts = httptest.NewServer(e)
	s.URL = s.ts.URL
	t.Cleanup(s.ts.Close)
	return s
}

// SeedUser inserts a user with a bcrypt-hashed password.
func (s *Server) SeedUser(t *testing.T, username, email, password, role string) User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := User{Username: username, Email: email, PasswordHash: string(hash), Role: role}
	if err := s.DB.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedProduct inserts a product directly.
func (s *Server) SeedProduct(t *testing.T, p Product) Product {
	t.Helper()
	if err := s.DB.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

// IssueToken signs a token the way the backend does: HS256 with username,
// role and exp claims.
func (s *Server) IssueToken(t *testing.T, username, role string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"username": username,
		"role":     role,
		"exp":      exp.Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func (s *Server) register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payload"})
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing required fields"})
	}

	var existing User
	if err := s.DB.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error; err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"message": "user already exists"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "hash failure"})
	}
	u := User{Username: req.Username, Email: req.Email, PasswordHash: string(hash), Role: "user"}
	if err := s.DB.Create(&u).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error()})
	}
	return c.JSON(http.StatusCreated, u)
}

func (s *Server) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payload"})
	}

	var user User
	if err := s.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password"})
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password"})
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	raw, err := token.SignedString(s.Secret)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not create token"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": raw})
}

func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token is missing!"})
		}

		claims := jwt.MapClaims{}
		tkn, err := jwt.ParseWithClaims(parts[1], claims, func(*jwt.Token) (any, error) {
			return s.Secret, nil
		})
		if err != nil || !tkn.Valid {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token"})
		}
		if role, _ := claims["role"].(string); role != "admin" {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Admin access required"})
		}
		return next(c)
	}
}

func (s *Server) listProducts(c echo.Context) error {
	q := s.DB.Model(&Product{}).Order("id DESC")
	if cat := c.QueryParam("category"); cat != "" {
		q = q.Where("category = ?", cat)
	}
	if search := c.QueryParam("search"); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	var items []Product
	if err := q.Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"products": items})
}

func (s *Server) createProduct(c echo.Context) error {
	var req Product
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}
	if req.Name == "" || req.Price == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required fields"})
	}
	req.ID = 0
	if err := s.DB.Create(&req).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, req)
}

func (s *Server) updateProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var prod Product
	if err := s.DB.First(&prod, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	var req Product
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}
	prod.Name = req.Name
	prod.Description = req.Description
	prod.Price = req.Price
	prod.Stock = req.Stock
	prod.Category = req.Category
	prod.ImageURL = req.ImageURL

	if err := s.DB.Save(&prod).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, prod)
}

func (s *Server) deleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	res := s.DB.Delete(&Product{}, id)
	if res.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": res.Error.Error()})
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Product " + strconv.Itoa(id) + " deleted"})
}
