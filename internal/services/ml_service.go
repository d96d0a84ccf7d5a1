package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rumi097/Nutriguide/internal/models"
)

var errMLNotConfigured = fmt.Errorf("ML service URL is not configured")

// HTTPMLService calls the external prediction service. Every request is
// bounded by the client timeout in addition to the caller's context, so a
// slow service degrades to the local fallback instead of hanging the
// request.
type HTTPMLService struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPMLService(rawURL string, timeout time.Duration) *HTTPMLService {
	return &HTTPMLService{
		baseURL:    normalizeServiceURL(rawURL),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func normalizeServiceURL(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	return "https://" + trimmed
}

type predictRequest struct {
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	Height        float64 `json:"height"`
	Weight        float64 `json:"weight"`
	ActivityLevel string  `json:"activity_level"`
	FitnessGoal   string  `json:"fitness_goal"`
}

type predictResponse struct {
	Success         bool          `json:"success"`
	DailyCalories   int           `json:"daily_calories"`
	Macronutrients  models.Macros `json:"macronutrients"`
	BMI             float64       `json:"bmi"`
	BMR             float64       `json:"bmr"`
	Recommendations []string      `json:"recommendations"`
}

func (s *HTTPMLService) Predict(ctx context.Context, input ProfileInput) (*models.NutritionResult, error) {
	if s.baseURL == "" {
		return nil, errMLNotConfigured
	}

	payload, err := json.Marshal(predictRequest{
		Age:           input.Age,
		Gender:        input.Gender,
		Height:        input.HeightCM,
		Weight:        input.WeightKG,
		ActivityLevel: input.ActivityLevel,
		FitnessGoal:   input.FitnessGoal,
	})
	if err != nil {
		return nil, fmt.Errorf("encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predict call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("predict call: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode predict response: %w", err)
	}
	if !decoded.Success {
		return nil, fmt.Errorf("predict call: service reported failure")
	}

	recommendations := decoded.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}

	return &models.NutritionResult{
		DailyCalories:   decoded.DailyCalories,
		Macros:          decoded.Macronutrients,
		BMI:             decoded.BMI,
		BMR:             decoded.BMR,
		Recommendations: recommendations,
	}, nil
}
