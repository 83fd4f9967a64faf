package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/suitetest-api/internal/config"
	"github.com/noah-isme/suitetest-api/internal/handler"
	"github.com/noah-isme/suitetest-api/internal/middleware"
	"github.com/noah-isme/suitetest-api/internal/models"
	"github.com/noah-isme/suitetest-api/internal/repository"
	"github.com/noah-isme/suitetest-api/internal/router"
	"github.com/noah-isme/suitetest-api/internal/service"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

// setupApp wires the full stack on SQLite. The stand-in auth middleware reads
// the caller from X-Test-User and X-Test-Role.
func setupApp(t *testing.T) testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	tests := repository.NewTestRepository(db)
	users := repository.NewUserRepository(db)
	progress := repository.NewProgressRepository(db)
	results := repository.NewResultRepository(db)

	testService := service.NewTestService(service.TestServiceDeps{
		Tests:     tests,
		Questions: repository.NewQuestionRepository(db),
		Users:     users,
		Progress:  progress,
		Results:   results,
		Activity:  service.NewActivityService(repository.NewActivityLogRepository(db), logger),
	}, validate, logger)
	progressService := service.NewProgressService(tests, users, progress, results, logger)
	submissionService := service.NewSubmissionService(repository.NewSubmissionRepository(db), nil, nil, logger)
	resultService := service.NewResultService(tests, results, nil, logger)
	departmentService := service.NewDepartmentService(repository.NewDepartmentRepository(db), validate, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "SuiteTest", AppEnv: "test", RateLimitMax: 100}, router.Dependencies{
		TestHandler:       handler.NewTestHandler(testService, logger),
		ProgressHandler:   handler.NewProgressHandler(progressService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		ResultHandler:     handler.NewResultHandler(resultService, logger),
		DepartmentHandler: handler.NewDepartmentHandler(departmentService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			if id, err := strconv.ParseUint(c.Get("X-Test-User"), 10, 64); err == nil {
				c.Locals(middleware.LocalUserID, uint(id))
			}
			c.Locals(middleware.LocalUserRole, c.Get("X-Test-Role"))
			return c.Next()
		},
	})

	return testEnv{app: app, db: db}
}

func (e testEnv) user(t *testing.T, name, role string, departmentID *uint) models.User {
	t.Helper()
	user := models.User{
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Role:         role,
		DepartmentID: departmentID,
	}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

func (e testEnv) department(t *testing.T, name string) models.Department {
	t.Helper()
	department := models.Department{DepartmentName: name, IsActive: true}
	require.NoError(t, e.db.Create(&department).Error)
	return department
}

type response struct {
	status int
	body   map[string]interface{}
	raw    []byte
}

func (e testEnv) do(t *testing.T, method, path string, as models.User, payload interface{}) response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if as.ID != 0 {
		req.Header.Set("X-Test-User", strconv.FormatUint(uint64(as.ID), 10))
		req.Header.Set("X-Test-Role", as.Role)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	decoded := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return response{status: resp.StatusCode, body: decoded, raw: raw}
}

func createPayload(departmentID uint) map[string]interface{} {
	return map[string]interface{}{
		"title":         "Go Basics",
		"description":   "Fundamentals",
		"time_limit":    20,
		"department_id": departmentID,
		"questions": []map[string]interface{}{
			{"question_text": "Pick A", "question_type": "multiple_choice", "options": []string{"A", "B", "C"}, "correct_answer": "A", "explanation": "A is right"},
			{"question_text": "Go is compiled", "question_type": "true_false", "options": "true, false", "correct_answer": "true"},
			{"question_text": "Describe goroutines", "question_type": "free_text"},
		},
	}
}

func (e testEnv) createTest(t *testing.T, owner models.User, departmentID uint) uint {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/tests/create", owner, createPayload(departmentID))
	require.Equal(t, http.StatusCreated, resp.status, string(resp.raw))
	return uint(resp.body["testId"].(float64))
}

func (e testEnv) questionIDs(t *testing.T, testID uint) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, e.db.Model(&models.Question{}).Where("test_id = ?", testID).Order("id ASC").Pluck("id", &ids).Error)
	return ids
}
