package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"budget_buddy/internal/domain"
	"budget_buddy/internal/middleware"
	"budget_buddy/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

var testTokenCfg = utils.TokenConfig{Secret: testSecret, TTL: time.Hour}

// newTestDB opens a per-test in-memory database and migrates the schema.
// The shared-cache DSN keeps every pooled connection on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "open test database")
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Expense{}, &domain.Card{}))
	return db
}

// newTestRouter wires the routes against a redis client pointing at a closed
// port, so cache reads fail and every handler falls through to the database.
// Tests exercising cache hits pass a live client via newTestRouterWithRedis.
func newTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	return newTestRouterWithRedis(t, db, redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))
}

// newTestRouterWithRedis wires the same routes as cmd/server against a test
// database and the given redis client
func newTestRouterWithRedis(t *testing.T, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/", HealthHandler())

	r.POST("/auth/register", RegisterHandler(db, testTokenCfg))
	r.POST("/auth/login", LoginHandler(db, testTokenCfg))

	authGroup := r.Group("/auth")
	authGroup.Use(middleware.JWTAuthMiddleware(testSecret))
	authGroup.GET("/me", MeHandler(db))
	authGroup.PATCH("/me", UpdateProfileHandler(db, rdb))

	expenseGroup := r.Group("/expenses")
	expenseGroup.Use(middleware.JWTAuthMiddleware(testSecret), func(c *gin.Context) {
		c.Set("redisClient", rdb)
		c.Next()
	})
	expenseGroup.POST("", CreateExpenseHandler(db))
	expenseGroup.GET("", ListExpensesHandler(db))
	expenseGroup.GET("/summary", CategoryBreakdownHandler(db, rdb))
	expenseGroup.GET("/summary/overview", OverviewHandler(db, rdb))
	expenseGroup.PATCH("/:id", UpdateExpenseHandler(db))
	expenseGroup.DELETE("/:id", DeleteExpenseHandler(db))

	cardGroup := r.Group("/cards")
	cardGroup.Use(middleware.JWTAuthMiddleware(testSecret))
	cardGroup.POST("", CreateCardHandler(db))
	cardGroup.GET("", ListCardsHandler(db))
	cardGroup.GET("/alerts", CardsDueTomorrowHandler(db))
	cardGroup.DELETE("/:id", DeleteCardHandler(db))

	return r
}

// doJSON performs a request with an optional bearer token and JSON body
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorded JSON response into a generic map
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// registerUser creates an account through the API and returns its token
func registerUser(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{"email": email, "password": "hunter2secret"})
	require.Equal(t, http.StatusCreated, w.Code, "register %s: %s", email, w.Body.String())
	body := decodeBody(t, w)
	token, ok := body["token"].(string)
	require.True(t, ok, "register response carries a token")
	return token
}

// expensePath builds the item path for an expense id
func expensePath(id uint) string {
	return fmt.Sprintf("/expenses/%d", id)
}

// addExpense creates an expense through the API and returns its id
func addExpense(t *testing.T, r *gin.Engine, token, category string, amount float64, occurredOn string) uint {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/expenses", token, gin.H{
		"category":   category,
		"amount":     amount,
		"occurredOn": occurredOn,
	})
	require.Equal(t, http.StatusCreated, w.Code, "create expense: %s", w.Body.String())
	body := decodeBody(t, w)
	expense := body["expense"].(map[string]any)
	return uint(expense["id"].(float64))
}
