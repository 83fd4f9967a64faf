package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/suitetest-api/internal/models"
)

func TestSubmitContractAndDuplicate(t *testing.T) {
	env := setupApp(t)
	sales := env.department(t, "Sales")
	owner := env.user(t, "Erin Owner", models.RoleEmployer, nil)
	candidate := env.user(t, "Cody Candidate", models.RoleCandidate, &sales.ID)
	testID := env.createTest(t, owner, sales.ID)
	ids := env.questionIDs(t, testID)
	require.Len(t, ids, 3)

	resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/tests/%d/take", testID), candidate, nil)
	require.Equal(t, http.StatusOK, resp.status)

	answers := map[string]interface{}{
		strconv.FormatUint(uint64(ids[0]), 10): "A",
		strconv.FormatUint(uint64(ids[1]), 10): "false",
		strconv.FormatUint(uint64(ids[2]), 10): "They are cheap threads",
	}
	path := fmt.Sprintf("/api/tests/%d/submit", testID)

	resp = env.do(t, http.MethodPost, path, candidate, map[string]interface{}{"answers": answers})
	require.Equal(t, http.StatusCreated, resp.status, string(resp.raw))

	schemaPath, err := filepath.Abs(filepath.Join("testdata", "submit_response.schema.json"))
	require.NoError(t, err)
	schema, err := jsonschema.NewCompiler().Compile("file://" + filepath.ToSlash(schemaPath))
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(resp.raw, &payload))
	require.NoError(t, schema.Validate(payload))

	submission := resp.body["submission"].(map[string]interface{})
	require.Equal(t, float64(50), submission["score"])
	require.Equal(t, float64(2), submission["total_questions"])
	require.Equal(t, float64(1), submission["correct_answers"])
	require.Equal(t, "Fair", submission["remarks"])

	resp = env.do(t, http.MethodPost, path, candidate, map[string]interface{}{"answers": answers})
	require.Equal(t, http.StatusForbidden, resp.status)
	require.Equal(t, "You have already submitted this test.", resp.body["message"])

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/tests/%d/status", testID), candidate, nil)
	require.Equal(t, "completed", resp.body["status"])
	require.Equal(t, float64(50), resp.body["result"].(map[string]interface{})["score"])

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/tests/%d/take", testID), candidate, nil)
	require.Equal(t, http.StatusForbidden, resp.status)
}

func TestSubmitRequiresAnswers(t *testing.T) {
	env := setupApp(t)
	sales := env.department(t, "Sales")
	owner := env.user(t, "Erin Owner", models.RoleEmployer, nil)
	candidate := env.user(t, "Cody Candidate", models.RoleCandidate, &sales.ID)
	testID := env.createTest(t, owner, sales.ID)

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/tests/%d/submit", testID), candidate, map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, resp.status)
	require.Equal(t, "Answers are required", resp.body["message"])

	resp = env.do(t, http.MethodPost, "/api/tests/404/submit", candidate, map[string]interface{}{"answers": map[string]string{}})
	require.Equal(t, http.StatusNotFound, resp.status)
}
