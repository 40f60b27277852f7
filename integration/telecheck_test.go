package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akeren/telecheck/config"
	"github.com/akeren/telecheck/config/router"
	"github.com/akeren/telecheck/domain"
	"github.com/akeren/telecheck/domain/checks"
	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/internal/models"
	"github.com/akeren/telecheck/pkg/constants"
	"github.com/akeren/telecheck/pkg/kvstore"
	"github.com/akeren/telecheck/pkg/notify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const adminEmail = "admin@telecheck.test"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type TeleCheckAPITestSuite struct {
	suite.Suite
	db        *gorm.DB
	server    *httptest.Server
	baseURL   string
	logger    *log.Logger
	recorder  *notify.Recorder
	appConfig *config.ApplicationConfig
}

func (suite *TeleCheckAPITestSuite) SetupSuite() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	err = suite.db.AutoMigrate(models.ModelRegistry...)
	suite.Require().NoError(err)

	suite.logger = log.NewLoggerWithJSONOutput()
	suite.recorder = notify.NewRecorder()

	store := kvstore.NewSQLStore(suite.db)

	suite.appConfig = &config.ApplicationConfig{
		DB:           suite.db,
		Store:        store,
		StoreBackend: kvstore.BackendSQL,
		Notifier:     suite.recorder,
		Logger:       suite.logger,
		Config: &config.AppConfig{
			AppEnv:         "test",
			AdminEmail:     adminEmail,
			MaxBulkNumbers: 5,
			CheckDelay:     time.Millisecond,
		},
	}

	suite.appConfig.RouterService = router.CreateRouterService(suite.logger, store, &router.RouterConfig{
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    30 * time.Second,
	})

	domain.SetupCoreDomain(suite.appConfig, domain.WithLookup(&checks.ScriptedLookup{
		Outcomes: map[string]models.CheckStatus{
			"+123456789":    models.CheckStatusFound,
			"+447911123456": models.CheckStatusNotFound,
		},
	}))

	suite.server = httptest.NewServer(suite.appConfig.RouterService.GetEngine())
	suite.baseURL = suite.server.URL
}

func (suite *TeleCheckAPITestSuite) TearDownSuite() {
	if suite.server != nil {
		suite.server.Close()
	}
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		sqlDB.Close()
	}
}

func (suite *TeleCheckAPITestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM kv_entries")
}

func (suite *TeleCheckAPITestSuite) do(method, path, sessionID string, body any) *http.Response {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, suite.baseURL+path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(constants.SessionIDHeader, sessionID)
	}

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	return resp
}

func (suite *TeleCheckAPITestSuite) decode(resp *http.Response, data any) envelope {
	defer resp.Body.Close()

	var env envelope
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))
	if data != nil && len(env.Data) > 0 {
		suite.Require().NoError(json.Unmarshal(env.Data, data))
	}
	return env
}

func (suite *TeleCheckAPITestSuite) register(sessionID, email string) map[string]any {
	var session map[string]any
	resp := suite.do(http.MethodPost, "/v1/access/session", sessionID, map[string]string{"email": email})
	suite.Require().Equal(http.StatusOK, resp.StatusCode)
	suite.decode(resp, &session)
	return session
}

func (suite *TeleCheckAPITestSuite) TestHealthCheck() {
	resp, err := http.Get(suite.baseURL + "/health")
	suite.Require().NoError(err)

	suite.Equal(http.StatusOK, resp.StatusCode)

	var data map[string]any
	env := suite.decode(resp, &data)

	suite.Equal(200, env.Code)
	suite.Contains(env.Message, "health check completed")
	suite.Equal(float64(1), data["store"])
	suite.Equal(float64(1), data["database"])
	suite.Equal(kvstore.BackendSQL, data["store_backend"])
}

func (suite *TeleCheckAPITestSuite) TestFreshSessionNeedsEntry() {
	resp := suite.do(http.MethodGet, "/v1/access/session", "", nil)
	sessionID := resp.Header.Get(constants.SessionIDHeader)
	suite.NotEmpty(sessionID)

	var session map[string]any
	suite.decode(resp, &session)

	suite.Equal(sessionID, session["sessionId"])
	suite.Equal("needs_entry", session["status"])
	suite.Equal("request_access", session["view"])
}

func (suite *TeleCheckAPITestSuite) TestAccessWorkflow() {
	admin := uuid.NewString()
	visitor := uuid.NewString()

	session := suite.register(visitor, "Someone@Example.com")
	suite.Equal("pending_approval", session["status"])
	suite.Equal("pending_approval", session["view"])

	resp := suite.do(http.MethodPost, "/v1/checks", visitor, map[string]string{"phoneNumbers": "+123456789"})
	suite.Equal(http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = suite.do(http.MethodGet, "/v1/access/roster", visitor, nil)
	suite.Equal(http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	session = suite.register(admin, adminEmail)
	suite.Equal("approved", session["status"])
	suite.Equal("admin", session["view"])

	var roster struct {
		Records []map[string]any `json:"records"`
		Pending int              `json:"pending"`
	}
	suite.decode(suite.do(http.MethodGet, "/v1/access/roster", admin, nil), &roster)
	suite.Len(roster.Records, 2)
	suite.Equal(1, roster.Pending)

	resp = suite.do(http.MethodPost, "/v1/access/roster/approve", admin, map[string]string{"email": "someone@example.com"})
	suite.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var current map[string]any
	suite.decode(suite.do(http.MethodGet, "/v1/access/session", visitor, nil), &current)
	suite.Equal("approved", current["status"])
	suite.Equal("checker", current["view"])

	resp = suite.do(http.MethodPost, "/v1/access/roster/revoke", admin, map[string]string{"email": adminEmail})
	suite.Equal(http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = suite.do(http.MethodPost, "/v1/access/roster/promote", admin, map[string]string{"email": "someone@example.com"})
	suite.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (suite *TeleCheckAPITestSuite) TestInvalidEmailRejected() {
	resp := suite.do(http.MethodPost, "/v1/access/session", uuid.NewString(), map[string]string{"email": "not-an-email"})
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func (suite *TeleCheckAPITestSuite) TestBulkCheckAndExport() {
	admin := uuid.NewString()
	suite.register(admin, adminEmail)

	var result struct {
		Results []models.CheckResult `json:"results"`
		Summary checks.Summary       `json:"summary"`
	}
	resp := suite.do(http.MethodPost, "/v1/checks", admin, map[string]string{"phoneNumbers": "+123456789, invalid, +447911123456"})
	suite.Require().Equal(http.StatusOK, resp.StatusCode)
	env := suite.decode(resp, &result)

	suite.Equal("Bulk Check Complete", env.Message)
	suite.Require().Len(result.Results, 3)
	suite.Equal("+447911123456", result.Results[0].PhoneNumber)
	suite.Equal(models.CheckStatusError, result.Results[1].Status)
	suite.Equal("+123456789", result.Results[2].PhoneNumber)
	suite.Equal(checks.Summary{Total: 3, Found: 1, NotFound: 1, Errors: 1}, result.Summary)

	last, ok := suite.recorder.Last()
	suite.Require().True(ok)
	suite.Equal("Bulk Check Complete", last.Title)

	var stored struct {
		Results []models.CheckResult `json:"results"`
	}
	suite.decode(suite.do(http.MethodGet, "/v1/checks/results", admin, nil), &stored)
	suite.Len(stored.Results, 3)

	resp = suite.do(http.MethodPost, "/v1/exports", admin, map[string][]string{"statuses": {"found", "not_found"}})
	suite.Require().Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(resp.Header.Get("Content-Disposition"), "telecheck_results_")
	suite.Equal("2", resp.Header.Get("X-Export-Rows"))

	content, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	suite.Require().NoError(err)

	wb, err := excelize.OpenReader(bytes.NewReader(content))
	suite.Require().NoError(err)
	defer wb.Close()

	rows, err := wb.GetRows("TeleCheck Results")
	suite.Require().NoError(err)
	suite.Equal([][]string{
		{"Phone Number", "Status", "Message"},
		{"+447911123456", "Not Found", result.Results[0].Message},
		{"+123456789", "Found", result.Results[2].Message},
	}, rows)
}

func (suite *TeleCheckAPITestSuite) TestBulkCheckRejections() {
	admin := uuid.NewString()
	suite.register(admin, adminEmail)

	resp := suite.do(http.MethodPost, "/v1/checks", admin, map[string]string{"phoneNumbers": " ;, "})
	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	var notification router.NotificationData
	env := suite.decode(resp, &notification)
	suite.Equal("Please enter valid phone numbers to check.", env.Message)
	suite.Equal("No Numbers Entered", notification.Title)
	suite.Equal("destructive", notification.Variant)

	resp = suite.do(http.MethodPost, "/v1/checks", admin, map[string]string{"phoneNumbers": "+11111,+22222,+33333,+44444,+55555,+66666"})
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.decode(resp, &notification)
	suite.Equal("Too Many Numbers", notification.Title)
}

func (suite *TeleCheckAPITestSuite) TestRejectedCheckDiscardsPreviousRun() {
	admin := uuid.NewString()
	suite.register(admin, adminEmail)

	resp := suite.do(http.MethodPost, "/v1/checks", admin, map[string]string{"phoneNumbers": "+123456789"})
	suite.Require().Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = suite.do(http.MethodPost, "/v1/checks", admin, map[string]string{"phoneNumbers": " ;, "})
	suite.Require().Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = suite.do(http.MethodPost, "/v1/exports", admin, nil)
	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	var notification router.NotificationData
	suite.decode(resp, &notification)
	suite.Equal("No Results to Export", notification.Title)
}

func (suite *TeleCheckAPITestSuite) TestExportWithoutResults() {
	admin := uuid.NewString()
	suite.register(admin, adminEmail)

	resp := suite.do(http.MethodPost, "/v1/exports", admin, nil)
	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	var notification router.NotificationData
	suite.decode(resp, &notification)
	suite.Equal("No Results to Export", notification.Title)
}

func (suite *TeleCheckAPITestSuite) TestStreamingCheck() {
	admin := uuid.NewString()
	suite.register(admin, adminEmail)

	resp := suite.do(http.MethodPost, "/v1/checks/stream", admin, map[string]string{"phoneNumbers": "+123456789\n+447911123456"})
	defer resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(resp.Header.Get("Content-Type"), "text/event-stream")

	body, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)

	stream := string(body)
	suite.Equal(1, strings.Count(stream, "event:start"))
	suite.Equal(2, strings.Count(stream, "event:progress"))
	suite.Equal(1, strings.Count(stream, "event:complete"))
	suite.Contains(stream, "Checked 2/2 numbers...")
}

func (suite *TeleCheckAPITestSuite) TestDevReset() {
	admin := uuid.NewString()
	suite.register(admin, adminEmail)

	resp := suite.do(http.MethodPost, "/v1/dev/reset", admin, nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var session map[string]any
	suite.decode(suite.do(http.MethodGet, "/v1/access/session", admin, nil), &session)
	suite.Equal("needs_entry", session["status"])
}

func TestTeleCheckAPITestSuite(t *testing.T) {
	suite.Run(t, new(TeleCheckAPITestSuite))
}
