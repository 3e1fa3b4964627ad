package api

import (
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCachedRouter wires the routes against a live in-process redis
func newCachedRouter(t *testing.T) *gin.Engine {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return newTestRouterWithRedis(t, newTestDB(t), rdb)
}

// fetchOverview returns the full overview response body, cached flag included
func fetchOverview(t *testing.T, r *gin.Engine, token, month string) map[string]any {
	t.Helper()
	w := doJSON(t, r, http.MethodGet, "/expenses/summary/overview?month="+month, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeBody(t, w)
}

func TestOverviewSecondFetchComesFromCache(t *testing.T) {
	r := newCachedRouter(t)
	token := registerUser(t, r, "cai@example.com")
	addExpense(t, r, token, "food", 40, "2024-03-10")

	body := fetchOverview(t, r, token, "2024-03")
	assert.Equal(t, false, body["cached"])
	body = fetchOverview(t, r, token, "2024-03")
	assert.Equal(t, true, body["cached"])
	assert.Equal(t, 40.0, body["overview"].(map[string]any)["total"])
}

func TestOverviewCacheInvalidatedOnBudgetChange(t *testing.T) {
	r := newCachedRouter(t)
	token := registerUser(t, r, "dre@example.com")
	setBudget(t, r, token, 100)
	addExpense(t, r, token, "food", 90, "2024-03-10")

	// Prime the cache: 90/100 is a WARNING
	body := fetchOverview(t, r, token, "2024-03")
	ov := body["overview"].(map[string]any)
	require.Equal(t, 100.0, ov["budget"])
	require.Equal(t, "WARNING", ov["alert"])
	require.Equal(t, true, fetchOverview(t, r, token, "2024-03")["cached"])

	// Lowering the budget must invalidate the cached overview
	setBudget(t, r, token, 50)
	body = fetchOverview(t, r, token, "2024-03")
	assert.Equal(t, false, body["cached"])
	ov = body["overview"].(map[string]any)
	assert.Equal(t, 50.0, ov["budget"])
	assert.Equal(t, "OVERLIMIT", ov["alert"])
	assert.Equal(t, -40.0, ov["remaining"])
}

func TestOverviewCacheInvalidatedOnExpenseMutations(t *testing.T) {
	r := newCachedRouter(t)
	token := registerUser(t, r, "noa@example.com")
	id := addExpense(t, r, token, "food", 10, "2024-03-10")

	// Prime the cache
	require.Equal(t, 10.0, fetchOverview(t, r, token, "2024-03")["overview"].(map[string]any)["total"])
	require.Equal(t, true, fetchOverview(t, r, token, "2024-03")["cached"])

	// Creating another expense drops the month's cached overview
	addExpense(t, r, token, "food", 5, "2024-03-20")
	body := fetchOverview(t, r, token, "2024-03")
	assert.Equal(t, false, body["cached"])
	assert.Equal(t, 15.0, body["overview"].(map[string]any)["total"])

	// Updating an expense drops it again
	w := doJSON(t, r, http.MethodPatch, expensePath(id), token, gin.H{"amount": 20.0})
	require.Equal(t, http.StatusOK, w.Code)
	body = fetchOverview(t, r, token, "2024-03")
	assert.Equal(t, false, body["cached"])
	assert.Equal(t, 25.0, body["overview"].(map[string]any)["total"])

	// Deleting an expense drops it too
	w = doJSON(t, r, http.MethodDelete, expensePath(id), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	body = fetchOverview(t, r, token, "2024-03")
	assert.Equal(t, false, body["cached"])
	assert.Equal(t, 5.0, body["overview"].(map[string]any)["total"])
}

func TestBreakdownCacheInvalidatedOnExpenseCreate(t *testing.T) {
	r := newCachedRouter(t)
	token := registerUser(t, r, "kit@example.com")
	addExpense(t, r, token, "food", 10, "2024-03-10")

	// Prime the month and all-time breakdown caches
	w := doJSON(t, r, http.MethodGet, "/expenses/summary?month=2024-03", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodGet, "/expenses/summary?month=2024-03", token, nil)
	require.Equal(t, true, decodeBody(t, w)["cached"])

	// A new category must show up after the next mutation
	addExpense(t, r, token, "travel", 30, "2024-03-12")
	w = doJSON(t, r, http.MethodGet, "/expenses/summary?month=2024-03", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["cached"])
	assert.Len(t, body["summary"].([]any), 2)
}
