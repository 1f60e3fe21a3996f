package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"deliverysim/internal/httpapi"
	"deliverysim/internal/httpapi/episodes"
	"deliverysim/internal/scenario"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testScenarioBody() []byte {
	raw := scenario.Raw{
		OrderGenerator: scenario.RawOrderGenerator{Type: "poisson", TotalOrders: 2, TimeWindow: 50, LambdaRate: 0.5},
		SimpyEnv:       scenario.RawSimpyEnv{MaxTimeStep: 2000},
		GridMap:        scenario.RawGridMap{Size: 20},
		Drivers:        scenario.RawDrivers{Num: 2, Vel: [2]float64{1, 1}, MaxDelayPercentage: 0.2, MaxCapacity: 5},
		Establishments: scenario.RawEstablishments{
			Num: 2, PrepareTime: [2]float64{2, 4}, OperatingRadius: [2]float64{3, 5},
			ProductionCapacity: [2]float64{2, 2}, PercentageAllocationDriver: 1,
		},
		RewardObjective: 1,
	}
	body, _ := json.Marshal(raw)
	return body
}

func TestCreateEpisodeAndStep(t *testing.T) {
	router := httpapi.NewRouter(episodes.NewRegistry(), nil, nil)

	createReq := httptest.NewRequest(http.MethodPost, "/api/episodes", bytes.NewReader(testScenarioBody()))
	createReq.Header.Set("Content-Type", "application/json")
	createRec := httptest.NewRecorder()
	router.ServeHTTP(createRec, createReq)

	if createRec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", createRec.Code, createRec.Body.String())
	}

	var created struct {
		EpisodeID string `json:"episode_id"`
	}
	if err := json.Unmarshal(createRec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if created.EpisodeID == "" {
		t.Fatal("expected a non-empty episode id")
	}

	stepBody, _ := json.Marshal(map[string]int{"action": 0})
	stepReq := httptest.NewRequest(http.MethodPost, "/api/episodes/"+created.EpisodeID+"/step", bytes.NewReader(stepBody))
	stepReq.Header.Set("Content-Type", "application/json")
	stepRec := httptest.NewRecorder()
	router.ServeHTTP(stepRec, stepReq)

	if stepRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", stepRec.Code, stepRec.Body.String())
	}
}

func TestStepUnknownEpisodeReturns404(t *testing.T) {
	router := httpapi.NewRouter(episodes.NewRegistry(), nil, nil)

	stepBody, _ := json.Marshal(map[string]int{"action": 0})
	req := httptest.NewRequest(http.MethodPost, "/api/episodes/does-not-exist/step", bytes.NewReader(stepBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := httpapi.NewRouter(episodes.NewRegistry(), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
